package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/pocketfuldev/artag/internal/registry"
)

var deregisterPurge bool

var deregisterCmd = &cobra.Command{
	Use:   "deregister <artifact> <version>",
	Short: "Deregister a version of an artifact",
	Long: `Deregister marks a version as no longer current by writing a
"<artifact>@<version>!" tag. The version stays visible to "show --all"
but is excluded from "latest". Pass --purge to delete the registration
tag and every stage tag that touched the version instead.`,
	Args: cobra.ExactArgs(2),
	Run:  runDeregister,
}

func init() {
	rootCmd.AddCommand(deregisterCmd)
	deregisterCmd.Flags().BoolVar(&deregisterPurge, "purge", false, "delete tags instead of writing a deregistration marker")
}

func runDeregister(c *cobra.Command, args []string) {
	artifact, version := args[0], args[1]

	ctx := context.Background()
	repo := openRepo()
	cfg := loadConfig()
	state := assembleState(ctx, repo, cfg, scope())

	m := &registry.Mutator{State: state}
	var plan registry.MutationPlan
	var err error
	if deregisterPurge {
		plan, err = m.DeletePlanForVersion(artifact, version)
	} else {
		plan, err = m.Deregister(artifact, version)
	}
	if err != nil {
		dieOnError(err)
	}
	apply(ctx, repo, plan)
}
