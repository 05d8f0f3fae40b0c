package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pocketfuldev/artag/internal/config"
	"github.com/pocketfuldev/artag/internal/gitio"
	"github.com/pocketfuldev/artag/internal/logging"
	"github.com/pocketfuldev/artag/internal/registry"
)

var (
	cfgFile    string
	repoPath   string
	verbose    bool
	structured bool
	version    = "dev"
)

var logger *zap.Logger

// SetVersion sets the version reported by `artag --version`.
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "artag",
	Short: "A Git-native artifact registry",
	Long: `artag turns an ordinary Git repository into an artifact registry.
Artifacts are versioned and assigned to lifecycle stages by creating
annotated Git tags in a standard naming scheme; downstream automation
(CI/CD, webhooks) is triggered by tag pushes.`,
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(registry.ExitCode(err))
	}
}

func init() {
	cobra.OnInitialize(initLogger)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.gto or $HOME/.gto)")
	rootCmd.PersistentFlags().StringVar(&repoPath, "repo", ".", "path to the git repository")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&structured, "log-json", false, "emit structured JSON logs")
}

func initLogger() {
	l, err := logging.New(verbose, structured)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(2)
	}
	logger = l
}

// loadConfig loads .gto + environment into a registry.Config, exiting on
// a ConfigError.
func loadConfig() registry.Config {
	cfg, _, err := config.Load(cfgFile)
	if err != nil {
		dieOnError(err)
	}
	return cfg
}

// openRepo opens the target repository, exiting with a RepositoryError
// exit code on failure.
func openRepo() *gitio.Repo {
	repo, err := gitio.Open(repoPath)
	if err != nil {
		dieOnError(registry.RepositoryError(err, "opening repository at %s", repoPath))
	}
	return repo
}

// assembleState runs the full Collector -> Assemble pipeline for scope
// against the opened repository, under cfg.
func assembleState(ctx context.Context, repo *gitio.Repo, cfg registry.Config, scope registry.Scope) *registry.RegistryState {
	collector := &registry.Collector{
		Source: repo,
		Config: cfg,
		Warn:   logging.WarnFunc(logger),
	}
	events, err := collector.Collect(ctx, scope)
	if err != nil {
		dieOnError(err)
	}
	return registry.Assemble(events, cfg)
}

var (
	allBranches bool
	allCommits  bool
)

// scope is the collection scope selected by --all-branches/--all-commits,
// defaulting to HEAD's ancestry.
func scope() registry.Scope {
	switch {
	case allBranches:
		return registry.Scope{Kind: registry.ScopeAllBranches}
	case allCommits:
		return registry.Scope{Kind: registry.ScopeAllCommits}
	default:
		return registry.Scope{Kind: registry.ScopeHead}
	}
}

func addScopeFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&allBranches, "all-branches", false, "scan tags and commits across all branches")
	cmd.Flags().BoolVar(&allCommits, "all-commits", false, "scan every reachable commit, not just HEAD's ancestry")
}

// dieOnError prints a user-facing error and exits with the code spec.md
// §6 assigns to its kind.
func dieOnError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(registry.ExitCode(err))
}

// apply writes plan to the repository, exiting on failure, then reports
// each tag created or deleted.
func apply(ctx context.Context, repo *gitio.Repo, plan registry.MutationPlan) {
	if err := repo.Apply(ctx, plan, repo.Signature()); err != nil {
		dieOnError(registry.RepositoryError(err, "applying tag plan"))
	}
	for _, w := range plan.Writes {
		fmt.Printf("created tag %s\n", w.Name)
	}
	for _, d := range plan.Deletes {
		fmt.Printf("deleted tag %s\n", d.Name)
	}
}
