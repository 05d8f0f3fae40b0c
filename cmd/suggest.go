package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pocketfuldev/artag/internal/registry"
)

var suggestAutoRegister bool

// suggestCmd represents the suggest command
var suggestCmd = &cobra.Command{
	Use:   "suggest <artifact>",
	Short: "Suggest a version bump based on the current branch name",
	Long: `Suggest a version bump for an artifact based on the naming convention
of the current branch:

  feature/*, feat/*           minor bump (new functionality)
  hotfix/*, fix/*, bugfix/*   patch bump (bug fixes)
  chore/*                     patch bump (maintenance)
  everything else             patch bump (default)`,
	Example: `  artag suggest model1
  artag suggest model1 --register`,
	Args: cobra.ExactArgs(1),
	Run:  runSuggest,
}

func init() {
	rootCmd.AddCommand(suggestCmd)
	suggestCmd.Flags().BoolVar(&suggestAutoRegister, "register", false, "register the suggested bump against HEAD")
}

func runSuggest(c *cobra.Command, args []string) {
	artifact := args[0]
	repo := openRepo()

	branchRef, err := repo.ResolveRef("HEAD")
	if err != nil {
		dieOnError(err)
	}
	branch, err := repo.CurrentBranch()
	if err != nil {
		dieOnError(err)
	}
	part := bumpPartForBranch(branch)

	fmt.Printf("branch: %s\n", branch)
	fmt.Printf("suggested bump: %s\n", part)

	if !suggestAutoRegister {
		fmt.Printf("\nrun: artag register %s --part %s\n", artifact, part)
		return
	}

	ctx := context.Background()
	cfg := loadConfig()
	state := assembleState(ctx, repo, cfg, scope())
	m := &registry.Mutator{State: state}

	plan, err := m.Register(artifact, branchRef, "", part, false)
	if err != nil {
		dieOnError(err)
	}
	apply(ctx, repo, plan)
}

func bumpPartForBranch(branch string) registry.BumpPart {
	name := strings.ToLower(branch)
	switch {
	case strings.HasPrefix(name, "feature/"), strings.HasPrefix(name, "feat/"):
		return registry.BumpMinor
	case strings.HasPrefix(name, "hotfix/"), strings.HasPrefix(name, "fix/"), strings.HasPrefix(name, "bugfix/"):
		return registry.BumpPatch
	case strings.HasPrefix(name, "chore/"):
		return registry.BumpPatch
	default:
		return registry.BumpPatch
	}
}
