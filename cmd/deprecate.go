package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/pocketfuldev/artag/internal/registry"
)

var deprecateCmd = &cobra.Command{
	Use:   "deprecate <artifact>",
	Short: "Mark an artifact as deprecated",
	Long: `Deprecate is idempotent: it only writes a tag when the artifact
isn't already deprecated. The deprecation clears on the next
registration or assignment for the artifact.`,
	Args: cobra.ExactArgs(1),
	Run:  runDeprecate,
}

func init() {
	rootCmd.AddCommand(deprecateCmd)
}

func runDeprecate(c *cobra.Command, args []string) {
	artifact := args[0]

	ctx := context.Background()
	repo := openRepo()
	cfg := loadConfig()
	state := assembleState(ctx, repo, cfg, scope())

	commit, err := repo.ResolveRef("HEAD")
	if err != nil {
		dieOnError(registry.RepositoryError(err, "resolving HEAD"))
	}

	m := &registry.Mutator{State: state}
	plan, err := m.Deprecate(artifact, commit)
	if err != nil {
		dieOnError(err)
	}
	if len(plan.Writes) == 0 {
		return
	}
	apply(ctx, repo, plan)
}
