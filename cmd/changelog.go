package cmd

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pocketfuldev/artag/internal/registry"
)

var (
	changelogFormat       string
	changelogConventional bool
	changelogOutput       string
	changelogGroupByType  bool
)

// changelogCmd represents the changelog command
var changelogCmd = &cobra.Command{
	Use:   "changelog <artifact> [from] [to]",
	Short: "Generate a changelog from the commits between two versions",
	Long: `Generate a changelog from the commits reachable between two registered
versions of an artifact.

If only one version is given, it is used as the end of the range and
the range starts at the artifact's previously registered version. If
no versions are given, the range covers the two most recently
registered versions.`,
	Example: `  artag changelog model1
  artag changelog model1 v1.2.0 v1.3.0
  artag changelog model1 v1.3.0 --conventional-commits
  artag changelog model1 --format json --output changelog.json`,
	Args: cobra.RangeArgs(1, 3),
	Run:  runChangelog,
}

type changelogEntry struct {
	Type        string
	Scope       string
	Description string
	Hash        string
	Breaking    bool
}

func init() {
	rootCmd.AddCommand(changelogCmd)

	changelogCmd.Flags().StringVar(&changelogFormat, "format", "markdown", "output format (markdown, json, text)")
	changelogCmd.Flags().BoolVar(&changelogConventional, "conventional-commits", false, "parse conventional commit messages")
	changelogCmd.Flags().StringVar(&changelogOutput, "output", "", "write to file (default: stdout)")
	changelogCmd.Flags().BoolVar(&changelogGroupByType, "group-by-type", true, "group entries by type")
	addScopeFlags(changelogCmd)
}

func runChangelog(c *cobra.Command, args []string) {
	ctx := context.Background()
	repo := openRepo()
	cfg := loadConfig()
	state := assembleState(ctx, repo, cfg, scope())

	artifact := args[0]
	rows, err := state.ShowArtifact(artifact)
	if err != nil {
		dieOnError(err)
	}

	var fromVersion, toVersion string
	switch len(args) {
	case 3:
		fromVersion, toVersion = args[1], args[2]
	case 2:
		toVersion = args[1]
		fromVersion = previousVersion(rows, toVersion)
	default:
		toVersion, err = state.Latest(artifact)
		if err != nil {
			dieOnError(err)
		}
		fromVersion = previousVersion(rows, toVersion)
	}

	fromCommit, _ := commitForVersion(rows, fromVersion)
	toCommit, ok := commitForVersion(rows, toVersion)
	if !ok {
		dieOnError(registry.NotFoundError(artifact, "version %s not found", toVersion))
		return
	}

	commits, err := repo.CommitsBetween(fromCommit, toCommit)
	if err != nil {
		dieOnError(err)
	}

	entries := make([]changelogEntry, 0, len(commits))
	grouped := make(map[string][]changelogEntry)
	for _, c := range commits {
		e := parseCommit(c)
		entries = append(entries, e)
		if changelogGroupByType {
			grouped[e.Type] = append(grouped[e.Type], e)
		}
	}

	title := fmt.Sprintf("Changelog for %s", artifact)
	if fromVersion != "" {
		title += fmt.Sprintf(" (%s -> %s)", fromVersion, toVersion)
	} else {
		title += fmt.Sprintf(" (%s)", toVersion)
	}

	var output string
	switch changelogFormat {
	case "json":
		output = formatChangelogJSON(title, entries)
	case "text":
		output = formatChangelogText(title, entries)
	default:
		output = formatChangelogMarkdown(title, entries, grouped)
	}

	if changelogOutput != "" {
		if err := os.WriteFile(changelogOutput, []byte(output), 0o644); err != nil {
			dieOnError(fmt.Errorf("writing changelog: %w", err))
		}
		fmt.Printf("changelog written to %s\n", changelogOutput)
		return
	}
	fmt.Print(output)
}

var conventionalRegex = regexp.MustCompile(`^(\w+)(\([^)]+\))?(!)?: (.+)$`)

func parseCommit(c registry.CommitRef) changelogEntry {
	e := changelogEntry{Hash: c.SHA, Description: c.Subject}
	if !changelogConventional {
		e.Type = detectCommitType(c.Subject)
		return e
	}
	if m := conventionalRegex.FindStringSubmatch(c.Subject); len(m) >= 5 {
		e.Type = m[1]
		e.Scope = strings.Trim(m[2], "()")
		e.Breaking = m[3] == "!"
		e.Description = m[4]
		return e
	}
	e.Type = detectCommitType(c.Subject)
	return e
}

func detectCommitType(message string) string {
	m := strings.ToLower(message)
	switch {
	case strings.HasPrefix(m, "feat") || (strings.Contains(m, "add ") && !strings.Contains(m, "test")):
		return "feat"
	case strings.HasPrefix(m, "fix") || strings.Contains(m, "bug"):
		return "fix"
	case strings.Contains(m, "doc"):
		return "docs"
	case strings.Contains(m, "refactor"):
		return "refactor"
	case strings.Contains(m, "test"):
		return "test"
	case strings.Contains(m, "chore") || strings.Contains(m, "update"):
		return "chore"
	default:
		return "other"
	}
}

func formatChangelogMarkdown(title string, entries []changelogEntry, grouped map[string][]changelogEntry) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", title))

	if changelogGroupByType && len(grouped) > 0 {
		order := []string{"feat", "fix", "refactor", "docs", "test", "chore", "other"}
		titles := map[string]string{
			"feat": "Features", "fix": "Bug Fixes", "refactor": "Refactoring",
			"docs": "Documentation", "test": "Tests", "chore": "Chores", "other": "Other Changes",
		}
		for _, key := range order {
			group := grouped[key]
			if len(group) == 0 {
				continue
			}
			sb.WriteString(fmt.Sprintf("## %s\n\n", titles[key]))
			for _, e := range group {
				sb.WriteString(formatChangelogEntry(e))
			}
			sb.WriteString("\n")
		}
		return sb.String()
	}

	for _, e := range entries {
		sb.WriteString(formatChangelogEntry(e))
	}
	return sb.String()
}

func formatChangelogEntry(e changelogEntry) string {
	var sb strings.Builder
	sb.WriteString("- ")
	if e.Scope != "" {
		sb.WriteString(fmt.Sprintf("**%s**: ", e.Scope))
	}
	sb.WriteString(e.Description)
	if e.Breaking {
		sb.WriteString(" **BREAKING**")
	}
	hash := e.Hash
	if len(hash) > 8 {
		hash = hash[:8]
	}
	sb.WriteString(fmt.Sprintf(" (%s)\n", hash))
	return sb.String()
}

func formatChangelogJSON(title string, entries []changelogEntry) string {
	var sb strings.Builder
	sb.WriteString("{\n")
	fmt.Fprintf(&sb, "  \"title\": %q,\n", title)
	sb.WriteString("  \"entries\": [\n")
	for i, e := range entries {
		fmt.Fprintf(&sb, "    {\"type\": %q, \"scope\": %q, \"description\": %q, \"hash\": %q, \"breaking\": %t}", e.Type, e.Scope, e.Description, e.Hash, e.Breaking)
		if i < len(entries)-1 {
			sb.WriteString(",\n")
		} else {
			sb.WriteString("\n")
		}
	}
	sb.WriteString("  ]\n}\n")
	return sb.String()
}

func formatChangelogText(title string, entries []changelogEntry) string {
	var sb strings.Builder
	sb.WriteString(title + "\n")
	sb.WriteString(strings.Repeat("=", len(title)) + "\n\n")
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("* %s", e.Description))
		if e.Scope != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", e.Scope))
		}
		if e.Breaking {
			sb.WriteString(" [BREAKING]")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
