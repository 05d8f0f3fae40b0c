package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pocketfuldev/artag/internal/registry"
)

var diffShowCommits bool

// diffCmd represents the diff command
var diffCmd = &cobra.Command{
	Use:   "diff <artifact> <version1> [version2]",
	Short: "Compare two versions and report the semantic bump between them",
	Long: `Compare two registered versions of an artifact and report whether the
change between them is an upgrade, a downgrade, or no change at all.

If only one version is given, it is compared against the most recently
registered earlier version.`,
	Example: `  artag diff model1 v1.2.3 v1.2.4
  artag diff model1 v1.2.4 --commits`,
	Args: cobra.RangeArgs(2, 3),
	Run:  runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)
	diffCmd.Flags().BoolVar(&diffShowCommits, "commits", false, "show commits between the two versions")
	addScopeFlags(diffCmd)
}

func runDiff(c *cobra.Command, args []string) {
	ctx := context.Background()
	repo := openRepo()
	cfg := loadConfig()
	state := assembleState(ctx, repo, cfg, scope())

	artifact := args[0]
	rows, err := state.ShowArtifact(artifact)
	if err != nil {
		dieOnError(err)
	}

	var v1, v2 string
	if len(args) == 3 {
		v1, v2 = args[1], args[2]
	} else {
		v2 = args[1]
		v1 = previousVersion(rows, v2)
		if v1 == "" {
			fmt.Printf("%s: no earlier registered version to compare against\n", v2)
			return
		}
	}

	commit1, ok1 := commitForVersion(rows, v1)
	commit2, ok2 := commitForVersion(rows, v2)
	if !ok1 || !ok2 {
		dieOnError(registry.NotFoundError(artifact, "version %s or %s not found", v1, v2))
		return
	}

	cmp, err := registry.CompareVersions(v1, v2, cfg.VersionConvention)
	if err != nil {
		dieOnError(err)
	}
	fmt.Printf("%s -> %s: %s\n", v1, v2, bumpLabel(cmp))

	if diffShowCommits {
		commits, err := repo.CommitsBetween(commit1, commit2)
		if err != nil {
			dieOnError(err)
		}
		fmt.Printf("\ncommits between %s and %s:\n", v1, v2)
		if len(commits) == 0 {
			fmt.Println("  (none)")
		}
		for _, c := range commits {
			fmt.Printf("  %s (%s)\n", c.SHA[:12], c.Author)
		}
	}
}

func commitForVersion(rows []registry.VersionSummary, version string) (string, bool) {
	for _, r := range rows {
		if r.Version == version {
			return r.Commit, true
		}
	}
	return "", false
}

// previousVersion returns the chronologically previous registered
// version before current, or "" if current is the earliest.
func previousVersion(rows []registry.VersionSummary, current string) string {
	var currentCreated, bestCreated bool
	var best string
	var currentTime, bestTime = rows[0].CreatedAt, rows[0].CreatedAt
	for _, r := range rows {
		if r.Version == current {
			currentTime = r.CreatedAt
			currentCreated = true
		}
	}
	if !currentCreated {
		return ""
	}
	for _, r := range rows {
		if r.Version == current || r.CreatedAt.After(currentTime) || r.CreatedAt.Equal(currentTime) {
			continue
		}
		if !bestCreated || r.CreatedAt.After(bestTime) {
			best = r.Version
			bestTime = r.CreatedAt
			bestCreated = true
		}
	}
	return best
}

func bumpLabel(cmp int) string {
	switch {
	case cmp == 0:
		return "no change"
	case cmp > 0:
		return "downgrade"
	default:
		return "upgrade"
	}
}
