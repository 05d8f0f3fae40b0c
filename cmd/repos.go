package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pocketfuldev/artag/internal/registry"
)

// reposCmd represents the repos command
var reposCmd = &cobra.Command{
	Use:   "repos",
	Short: "List the artifacts declared in the working tree's index",
	Long: `List every artifact declared in artifacts.yaml at the current working
tree, independent of any registered versions. Run 'artag init' first if
no index exists yet.`,
	Run: runRepos,
}

func init() {
	rootCmd.AddCommand(reposCmd)
}

func runRepos(c *cobra.Command, args []string) {
	repo := openRepo()

	data, err := repo.ReadFileAt("", "artifacts.yaml")
	if err != nil {
		fmt.Println("no artifacts.yaml found in the working tree; run 'artag init' to discover artifacts")
		return
	}

	meta, err := registry.ParseIndex(data)
	if err != nil {
		dieOnError(err)
	}
	if len(meta) == 0 {
		fmt.Println("artifacts.yaml declares no artifacts")
		return
	}

	names := make([]string, 0, len(meta))
	for name := range meta {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Printf("found %d declared artifacts:\n\n", len(names))
	for _, name := range names {
		m := meta[name]
		fmt.Printf("  %s\n", name)
		fmt.Printf("    type: %s\n", m.Type)
		fmt.Printf("    path: %s\n", m.Path)
		if len(m.Labels) > 0 {
			fmt.Printf("    labels: %v\n", m.Labels)
		}
	}
}
