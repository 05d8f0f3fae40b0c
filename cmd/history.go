package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history [artifact]",
	Short: "Show the raw event history in display order",
	Long: `History lists every event in (timestamp, seq, tag name) order.
A (artifact, stage) pair whose currency was ever set by a legacy
simple-form tag is collapsed into a single Conflict marker entry rather
than its individual assignment rows.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	addScopeFlags(historyCmd)
}

func runHistory(c *cobra.Command, args []string) {
	ctx := context.Background()
	repo := openRepo()
	cfg := loadConfig()
	state := assembleState(ctx, repo, cfg, scope())

	artifact := ""
	if len(args) == 1 {
		artifact = args[0]
	}

	for _, e := range state.History(artifact) {
		marker := ""
		if e.Conflict {
			marker = " [conflict]"
		}
		if e.Orphan {
			marker += " [orphan]"
		}
		fmt.Printf("%s\t%s\t%s%s\n", e.Timestamp.Format("2006-01-02T15:04:05Z07:00"), e.Kind, e.Ref, marker)
	}
}
