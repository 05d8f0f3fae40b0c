package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pocketfuldev/artag/internal/registry"
)

var (
	versionsFormat string
	versionsSort   string
	versionsLimit  int
)

// versionsCmd lists an artifact's versions with filtering and formatting
// options, generalizing the teacher's environment-scoped version list.
var versionsCmd = &cobra.Command{
	Use:   "versions <artifact>",
	Short: "List an artifact's versions with filtering and formatting",
	Example: `  artag versions model1
  artag versions model1 --sort date
  artag versions model1 --format json --limit 5`,
	Args: cobra.ExactArgs(1),
	Run:  runVersions,
}

func init() {
	rootCmd.AddCommand(versionsCmd)
	versionsCmd.Flags().StringVar(&versionsFormat, "format", "table", "output format (table, json, compact)")
	versionsCmd.Flags().StringVar(&versionsSort, "sort", "version", "sort order (version, date)")
	versionsCmd.Flags().IntVar(&versionsLimit, "limit", 0, "maximum number of results (0 = unlimited)")
	addScopeFlags(versionsCmd)
}

func runVersions(c *cobra.Command, args []string) {
	ctx := context.Background()
	repo := openRepo()
	cfg := loadConfig()
	state := assembleState(ctx, repo, cfg, scope())

	rows, err := state.ShowArtifact(args[0])
	if err != nil {
		dieOnError(err)
	}

	if versionsSort == "date" {
		sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	} else {
		sort.Slice(rows, func(i, j int) bool {
			cmp, err := registry.CompareVersions(rows[i].Version, rows[j].Version, cfg.VersionConvention)
			if err != nil {
				return rows[i].Version > rows[j].Version
			}
			return cmp > 0
		})
	}
	if versionsLimit > 0 && len(rows) > versionsLimit {
		rows = rows[:versionsLimit]
	}

	switch versionsFormat {
	case "json":
		printVersionsJSON(rows)
	case "compact":
		for _, r := range rows {
			fmt.Printf("%s (%s)\n", r.Version, r.Commit)
		}
	default:
		if len(rows) == 0 {
			fmt.Println("No versions found")
			return
		}
		fmt.Printf("%-15s %-20s %-10s %-10s %s\n", "Version", "Date", "Registered", "Deprecated", "Stages")
		fmt.Println(strings.Repeat("-", 70))
		for _, r := range rows {
			dateStr := "unknown"
			if !r.CreatedAt.IsZero() {
				dateStr = r.CreatedAt.Format("2006-01-02 15:04")
			}
			fmt.Printf("%-15s %-20s %-10t %-10t %v\n", r.Version, dateStr, r.Registered, r.Deprecated, r.CurrentStages)
		}
	}
}

func printVersionsJSON(rows []registry.VersionSummary) {
	fmt.Fprintln(os.Stdout, "[")
	for i, r := range rows {
		fmt.Printf("  {\"version\": %q, \"commit\": %q, \"registered\": %t, \"deprecated\": %t}", r.Version, r.Commit, r.Registered, r.Deprecated)
		if i < len(rows)-1 {
			fmt.Println(",")
		} else {
			fmt.Println()
		}
	}
	fmt.Println("]")
}
