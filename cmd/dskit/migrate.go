package main

import (
	"fmt"
	"strings"

	"github.com/aymanbagabas/go-udiff"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cjnuk/dskit/pkg/presenter"
	"github.com/cjnuk/dskit/pkg/project"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Upgrade the configuration to the current schema",
	Long: `Migrates a v1 (flat framework/testing) or v2 (single testing string)
configuration to the current schema. Required fields with no computable
default are prompted for. The resulting record is shown as a diff and
written only after confirmation.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		wd, err := workingDir()
		if err != nil {
			return err
		}

		file, err := project.Load(wd)
		if err != nil {
			return err
		}
		if file.State == project.StateValid {
			presenter.Info("configuration already uses the current schema")
			return nil
		}

		autoApprove, _ := cmd.Flags().GetBool("yes")

		migrator := project.NewMigrator(func(field string, options []string) (string, error) {
			value := presenter.Prompt(fmt.Sprintf("value for %s", field), options...)
			if value == "" {
				return "", errors.Errorf("no value supplied for %s", field)
			}
			if len(options) > 0 && !validEnum(value, options) {
				return "", errors.Errorf("invalid value %q for %s, expected one of [%s]",
					value, field, strings.Join(options, ", "))
			}
			return value, nil
		})

		cfg, err := migrator.Migrate(ctx, file)
		if err != nil {
			return err
		}

		newRaw, err := yaml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to render migrated configuration")
		}

		presenter.Section("pending migration")
		presenter.Info(udiff.Unified(file.Path, file.Path+" (migrated)", string(file.Raw), string(newRaw)))
		if !autoApprove && !presenter.Confirm("write the migrated configuration?") {
			presenter.Info("aborted, no changes written")
			return nil
		}

		result := &project.RepairResult{Changed: true, NewRaw: newRaw}
		if err := project.WriteRepaired(file, result, presenter.Confirm); err != nil {
			return err
		}
		presenter.Success(fmt.Sprintf("migrated %s to schema version %d", file.Path, project.CurrentVersion))
		return nil
	},
}

func init() {
	migrateCmd.Flags().Bool("yes", false, "write without the final confirmation prompt")
	rootCmd.AddCommand(migrateCmd)
}
