package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var showAll bool

var showCmd = &cobra.Command{
	Use:   "show [artifact]",
	Short: "Show the registry's current state",
	Long: `With no argument, show lists every artifact with its latest
version and current stage assignments. With an artifact name, show
lists that artifact's versions and the stages each currently holds.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showAll, "all", false, "include deregistered versions")
	addScopeFlags(showCmd)
}

func runShow(c *cobra.Command, args []string) {
	ctx := context.Background()
	repo := openRepo()
	cfg := loadConfig()
	state := assembleState(ctx, repo, cfg, scope())

	if len(args) == 0 {
		for _, row := range state.Show() {
			fmt.Printf("%s\tlatest=%s\tdeprecated=%t", row.Name, orNone(row.Latest), row.Deprecated)
			for stage, v := range row.Stages {
				fmt.Printf("\t%s=%s", stage, v)
			}
			fmt.Println()
		}
		return
	}

	rows, err := state.ShowArtifact(args[0])
	if err != nil {
		dieOnError(err)
	}
	for _, row := range rows {
		if row.Deregistered && !showAll {
			continue
		}
		fmt.Printf("%s\tcommit=%s\tregistered=%t\tderegistered=%t\tdeprecated=%t\tstages=%v\n",
			row.Version, row.Commit, row.Registered, row.Deregistered, row.Deprecated, row.CurrentStages)
	}
}

func orNone(s string) string {
	if s == "" {
		return "<none>"
	}
	return s
}
