package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var describeCmd = &cobra.Command{
	Use:   "describe <artifact>",
	Short: "Print the latest index metadata observed for an artifact",
	Args:  cobra.ExactArgs(1),
	Run:   runDescribe,
}

func init() {
	rootCmd.AddCommand(describeCmd)
	addScopeFlags(describeCmd)
}

func runDescribe(c *cobra.Command, args []string) {
	ctx := context.Background()
	repo := openRepo()
	cfg := loadConfig()
	state := assembleState(ctx, repo, cfg, scope())

	meta, err := state.Describe(args[0])
	if err != nil {
		dieOnError(err)
	}
	fmt.Printf("type=%s\tpath=%s\tvirtual=%t\tlabels=%v\tdescription=%s\n",
		meta.Type, meta.Path, meta.Virtual, meta.Labels, meta.Description)
	for k, v := range meta.Custom {
		fmt.Printf("  %s=%v\n", k, v)
	}
}
