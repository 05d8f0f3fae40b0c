package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var checkRefCmd = &cobra.Command{
	Use:   "check-ref <ref>",
	Short: "Classify a tag name and print the event it parses to",
	Args:  cobra.ExactArgs(1),
	Run:   runCheckRef,
}

func init() {
	rootCmd.AddCommand(checkRefCmd)
	addScopeFlags(checkRefCmd)
}

func runCheckRef(c *cobra.Command, args []string) {
	ctx := context.Background()
	repo := openRepo()
	cfg := loadConfig()
	state := assembleState(ctx, repo, cfg, scope())

	result := state.CheckRef(args[0])
	if !result.Recognized {
		fmt.Println("unrecognized")
		return
	}
	e := result.Event
	fmt.Printf("kind=%s artifact=%s version=%s stage=%s seq=%d conflict=%t orphan=%t\n",
		e.Kind, e.Artifact, e.Version, e.Stage, e.Seq, e.Conflict, e.Orphan)
}
