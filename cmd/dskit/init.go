package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/cjnuk/dskit/pkg/presenter"
	"github.com/cjnuk/dskit/pkg/project"
	projecttypes "github.com/cjnuk/dskit/pkg/types/project"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the project configuration record",
	Long: `Creates .dskit/config.yaml for the current project. Values come from
flags; anything missing is prompted for interactively. An existing record
is never overwritten without --force.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		wd, err := workingDir()
		if err != nil {
			return err
		}

		force, _ := cmd.Flags().GetBool("force")
		path := project.Path(wd)
		if _, err := os.Stat(path); err == nil && !force {
			return errors.Errorf("%s already exists; use --force to overwrite", path)
		}

		cfg := &projecttypes.Config{Version: project.CurrentVersion}

		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			name = presenter.Prompt("project name")
		}
		if name == "" {
			return errors.New("project name is required")
		}
		cfg.Project.Name = name

		fields := []struct {
			flag  string
			label string
			valid []string
			set   func(string)
		}{
			{"type", "project type", projecttypes.ProjectTypes(), func(v string) { cfg.Project.Type = projecttypes.ProjectType(v) }},
			{"framework", "framework", projecttypes.Frameworks(), func(v string) { cfg.Stack.Framework = projecttypes.Framework(v) }},
			{"ui-library", "UI library", projecttypes.UILibraries(), func(v string) { cfg.Stack.UILibrary = projecttypes.UILibrary(v) }},
			{"state-management", "state management", projecttypes.StateManagements(), func(v string) { cfg.Stack.StateManagement = projecttypes.StateManagement(v) }},
			{"unit", "unit test runner", projecttypes.UnitRunners(), func(v string) { cfg.Stack.Testing.Unit = v }},
			{"e2e", "e2e test runner", projecttypes.E2ERunners(), func(v string) { cfg.Stack.Testing.E2E = v }},
		}
		for _, field := range fields {
			value, _ := cmd.Flags().GetString(field.flag)
			if value == "" {
				value = presenter.Prompt(field.label, field.valid...)
			}
			if !validEnum(value, field.valid) {
				return errors.Errorf("invalid %s %q, expected one of [%s]",
					field.label, value, strings.Join(field.valid, ", "))
			}
			field.set(value)
		}

		if err := project.Save(wd, cfg); err != nil {
			return err
		}
		presenter.Success(fmt.Sprintf("created %s", path))
		return nil
	},
}

func validEnum(value string, valid []string) bool {
	for _, candidate := range valid {
		if value == candidate {
			return true
		}
	}
	return false
}

func init() {
	initCmd.Flags().Bool("force", false, "overwrite an existing configuration")
	initCmd.Flags().String("name", "", "project name")
	initCmd.Flags().String("type", "", "project type (application, marketing, hybrid)")
	initCmd.Flags().String("framework", "", "framework (next, remix, vite)")
	initCmd.Flags().String("ui-library", "", "UI library (shadcn, radix, custom)")
	initCmd.Flags().String("state-management", "", "state management (zustand, redux, jotai, context, none)")
	initCmd.Flags().String("unit", "", "unit test runner (vitest, jest)")
	initCmd.Flags().String("e2e", "", "e2e test runner (playwright, cypress, none)")
	rootCmd.AddCommand(initCmd)
}
