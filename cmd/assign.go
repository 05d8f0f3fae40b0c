package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/pocketfuldev/artag/internal/registry"
)

var (
	assignVersion string
	assignRef     string
)

var assignCmd = &cobra.Command{
	Use:   "assign <artifact> <stage>",
	Short: "Assign a stage to a version of an artifact",
	Long: `Assign points a stage at a version. Pass exactly one of
--version (an already registered version) or --ref (a commit-ish to
register a new version at, then assign in the same operation).`,
	Example: `  artag assign model1 production --version v3
  artag assign model1 staging --ref HEAD`,
	Args: cobra.ExactArgs(2),
	Run:  runAssign,
}

func init() {
	rootCmd.AddCommand(assignCmd)
	assignCmd.Flags().StringVar(&assignVersion, "version", "", "version to assign (mutually exclusive with --ref)")
	assignCmd.Flags().StringVar(&assignRef, "ref", "", "commit-ish to register and assign (mutually exclusive with --version)")
}

func runAssign(c *cobra.Command, args []string) {
	artifact, stage := args[0], args[1]

	ctx := context.Background()
	repo := openRepo()
	cfg := loadConfig()
	state := assembleState(ctx, repo, cfg, scope())

	var refCommit string
	if assignRef != "" {
		commit, err := repo.ResolveRef(assignRef)
		if err != nil {
			dieOnError(registry.RepositoryError(err, "resolving ref %s", assignRef))
		}
		refCommit = commit
	}

	m := &registry.Mutator{State: state}
	plan, err := m.Assign(artifact, stage, assignVersion, assignRef, refCommit)
	if err != nil {
		dieOnError(err)
	}
	apply(ctx, repo, plan)
}
