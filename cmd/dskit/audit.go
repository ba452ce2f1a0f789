package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cjnuk/dskit/pkg/presenter"
	"github.com/cjnuk/dskit/pkg/project"
	"github.com/cjnuk/dskit/pkg/report"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Validate the project configuration and report issues",
	Long: `Runs the full validation pass over .dskit/config.yaml and prints a
severity-tagged report. The exit code reflects the status: 0 HEALTHY,
1 NEEDS REPAIR, 2 CRITICAL.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
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

		rep := project.NewValidator(wd, root).Validate(file)

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			out, err := rep.JSON()
			if err != nil {
				return err
			}
			fmt.Println(out)
		} else {
			presenter.Report(rep)
		}

		switch rep.Status() {
		case report.StatusCritical:
			os.Exit(2)
		case report.StatusNeedsRepair:
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	auditCmd.Flags().Bool("json", false, "emit the report as JSON")
	rootCmd.AddCommand(auditCmd)
}
