package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cjnuk/dskit/pkg/presenter"
	"github.com/cjnuk/dskit/pkg/project"
)

var repairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Fix configuration issues, safe ones automatically",
	Long: `Applies the safe subset of fixes (duplicate list entries) automatically
and proposes the rest one by one: enum corrections, unknown key removal,
and dangling component references. A unified diff is shown before
anything is written. --yes approves every proposal.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		wd, err := workingDir()
		if err != nil {
			return err
		}
		root, err := pluginRoot()
		if err != nil {
			return err
		}

		file, err := project.Load(wd)
		if err != nil {
			return err
		}

		autoApprove, _ := cmd.Flags().GetBool("yes")
		validator := project.NewValidator(wd, root)

		rep := validator.Validate(file)
		presenter.Report(rep)

		result, err := validator.Repair(ctx, file, project.RepairOptions{
			AutoApprove: autoApprove,
			Confirm:     presenter.Confirm,
		})
		if err != nil {
			return err
		}

		for _, applied := range result.Applied {
			presenter.Success(applied)
		}
		for _, skipped := range result.Skipped {
			presenter.Info(fmt.Sprintf("left unchanged: %s", skipped))
		}
		if !result.Changed {
			presenter.Info("nothing to write")
			return nil
		}

		presenter.Section("pending changes")
		presenter.Info(result.Diff)
		if !autoApprove && !presenter.Confirm("write these changes?") {
			presenter.Info("aborted, no changes written")
			return nil
		}

		if err := project.WriteRepaired(file, result, presenter.Confirm); err != nil {
			return err
		}
		presenter.Success(fmt.Sprintf("wrote %s", file.Path))
		return nil
	},
}

func init() {
	repairCmd.Flags().Bool("yes", false, "approve every proposed fix without prompting")
	rootCmd.AddCommand(repairCmd)
}
