package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/pocketfuldev/artag/internal/registry"
)

var (
	annotateVersion string
	annotateStage   string
)

var annotateCmd = &cobra.Command{
	Use:   "annotate <artifact> <message>",
	Short: "Attach a free-text note to a version or a stage",
	Long: `Annotate records a message against a registered version or the
version currently holding a stage. Pass exactly one of --version or
--stage.`,
	Args: cobra.ExactArgs(2),
	Run:  runAnnotate,
}

func init() {
	rootCmd.AddCommand(annotateCmd)
	annotateCmd.Flags().StringVar(&annotateVersion, "version", "", "version to annotate")
	annotateCmd.Flags().StringVar(&annotateStage, "stage", "", "stage whose current version to annotate")
}

func runAnnotate(c *cobra.Command, args []string) {
	artifact, message := args[0], args[1]

	ctx := context.Background()
	repo := openRepo()
	cfg := loadConfig()
	state := assembleState(ctx, repo, cfg, scope())

	m := &registry.Mutator{State: state}
	plan, err := m.Annotate(artifact, annotateVersion, annotateStage, message)
	if err != nil {
		dieOnError(err)
	}
	apply(ctx, repo, plan)
}
