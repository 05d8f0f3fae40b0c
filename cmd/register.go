package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/pocketfuldev/artag/internal/registry"
)

var (
	registerVersion string
	registerBump    string
	registerForce   bool
)

var registerCmd = &cobra.Command{
	Use:   "register <artifact> [ref]",
	Short: "Register a new version of an artifact",
	Long: `Register creates a version tag for an artifact at a commit.
If [ref] is omitted, HEAD is used. If --version is omitted, the next
version is computed from the greatest existing version by bumping
--part (default patch).`,
	Example: `  artag register model1
  artag register model1 HEAD~2 --version v3
  artag register model1 --part minor`,
	Args: cobra.RangeArgs(1, 2),
	Run:  runRegister,
}

func init() {
	rootCmd.AddCommand(registerCmd)
	registerCmd.Flags().StringVar(&registerVersion, "version", "", "explicit version (otherwise computed by bump)")
	registerCmd.Flags().StringVar(&registerBump, "part", "patch", "version part to bump: major, minor, or patch")
	registerCmd.Flags().BoolVar(&registerForce, "force", false, "register even if the artifact is deprecated")
}

func runRegister(c *cobra.Command, args []string) {
	artifact := args[0]
	ref := "HEAD"
	if len(args) == 2 {
		ref = args[1]
	}

	ctx := context.Background()
	repo := openRepo()
	cfg := loadConfig()
	state := assembleState(ctx, repo, cfg, scope())

	commit, err := repo.ResolveRef(ref)
	if err != nil {
		dieOnError(registry.RepositoryError(err, "resolving ref %s", ref))
	}

	m := &registry.Mutator{State: state}
	plan, err := m.Register(artifact, commit, registerVersion, registry.BumpPart(registerBump), registerForce)
	if err != nil {
		dieOnError(err)
	}
	apply(ctx, repo, plan)
}
