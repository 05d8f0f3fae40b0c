package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var whichCmd = &cobra.Command{
	Use:   "which <artifact> <stage>",
	Short: "Print the version currently assigned to a stage",
	Long: `With multi_version_stage enabled in configuration, which prints
every version currently holding the stage, ordered per the configured
sort.`,
	Args: cobra.ExactArgs(2),
	Run:  runWhich,
}

func init() {
	rootCmd.AddCommand(whichCmd)
	addScopeFlags(whichCmd)
}

func runWhich(c *cobra.Command, args []string) {
	ctx := context.Background()
	repo := openRepo()
	cfg := loadConfig()
	state := assembleState(ctx, repo, cfg, scope())

	artifact, stage := args[0], args[1]

	if cfg.MultiVersionStage {
		versions, err := state.WhichAll(artifact, stage)
		if err != nil {
			dieOnError(err)
		}
		fmt.Println(strings.Join(versions, ","))
		return
	}

	v, ok := state.Which(artifact, stage)
	if !ok {
		fmt.Println("<none>")
		return
	}
	fmt.Println(v)
}
