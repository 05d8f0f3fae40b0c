package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var latestCmd = &cobra.Command{
	Use:   "latest <artifact>",
	Short: "Print the greatest registered, non-deprecated version",
	Args:  cobra.ExactArgs(1),
	Run:   runLatest,
}

func init() {
	rootCmd.AddCommand(latestCmd)
	addScopeFlags(latestCmd)
}

func runLatest(c *cobra.Command, args []string) {
	ctx := context.Background()
	repo := openRepo()
	cfg := loadConfig()
	state := assembleState(ctx, repo, cfg, scope())

	v, err := state.Latest(args[0])
	if err != nil {
		dieOnError(err)
	}
	fmt.Println(v)
}
