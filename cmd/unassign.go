package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/pocketfuldev/artag/internal/registry"
)

var unassignCmd = &cobra.Command{
	Use:   "unassign <artifact> <stage>",
	Short: "Remove a stage's current assignment",
	Args:  cobra.ExactArgs(2),
	Run:   runUnassign,
}

func init() {
	rootCmd.AddCommand(unassignCmd)
}

func runUnassign(c *cobra.Command, args []string) {
	artifact, stage := args[0], args[1]

	ctx := context.Background()
	repo := openRepo()
	cfg := loadConfig()
	state := assembleState(ctx, repo, cfg, scope())

	m := &registry.Mutator{State: state}
	plan, err := m.Unassign(artifact, stage)
	if err != nil {
		dieOnError(err)
	}
	apply(ctx, repo, plan)
}
