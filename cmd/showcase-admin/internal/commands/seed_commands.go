package commands

import (
	"context"
	"fmt"

	"showcase-platform/internal/seed"

	"github.com/spf13/cobra"
)

// InitSeedCommand registers "seed".
func InitSeedCommand(rootCmd *cobra.Command) {
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Load users, cohorts and profiles from a YAML file",
		Example: `  showcase-admin seed -f fixtures/fall-2024.yaml
  showcase-admin seed -f fixtures/fall-2024.yaml --dry-run`,
		RunE: runSeedCmd,
	}
	seedCmd.Flags().StringP("file", "f", "", "Path to the seed YAML file")
	seedCmd.Flags().Bool("dry-run", false, "Validate the file without writing")
	_ = seedCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(seedCmd)
}

func runSeedCmd(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("file")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	f, err := seed.ParseFile(path)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if dryRun {
		fmt.Fprintf(out, "%s: %d users, %d cohorts\n", path, len(f.Users), len(f.Cohorts))
		return nil
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*commandTimeout)
	defer cancel()
	e, err := openEnvironment(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	academyModule, err := e.academy()
	if err != nil {
		return err
	}
	res, err := seed.NewSeeder(e.provisioner(), academyModule.Cohorts(), academyModule.Profiles(), e.log).Apply(ctx, f)
	if res != nil {
		fmt.Fprintf(out, "users created: %d (skipped %d), cohorts: %d, student profiles: %d, instructor profiles: %d\n",
			res.Users, res.SkippedUsers, res.Cohorts, res.StudentProfiles, res.InstructorProfiles)
	}
	return err
}
