package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cjnuk/dskit/pkg/presenter"
	"github.com/cjnuk/dskit/pkg/skills"
)

var skillsCmd = &cobra.Command{
	Use:   "skills",
	Short: "Inspect the skill registry",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

var skillsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered skills and their trigger phrases",
	RunE: func(cmd *cobra.Command, _ []string) error {
		registry, _, err := buildRegistry(cmd.Context())
		if err != nil {
			return err
		}

		all := registry.Skills()
		if len(all) == 0 {
			presenter.Info("no skills found")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tAGENT\tTRIGGERS\tDESCRIPTION")
		for _, skill := range all {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				skill.Name, skill.Agent, strings.Join(skill.Triggers, ", "), skill.Description)
		}
		w.Flush()

		printCollisions(registry)
		return nil
	},
}

var skillsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a skill definition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, _, err := buildRegistry(cmd.Context())
		if err != nil {
			return err
		}

		resolved, err := registry.Resolve(args[0])
		if err != nil {
			return err
		}
		skill := resolved.Skill

		presenter.Section(skill.Name)
		presenter.Info(skill.Description)
		presenter.Info(fmt.Sprintf("agent: %s", skill.Agent))
		presenter.Info(fmt.Sprintf("directory: %s", skill.Directory))
		if len(skill.Triggers) > 0 {
			presenter.Info(fmt.Sprintf("triggers: %s", strings.Join(skill.Triggers, ", ")))
		}
		for _, arg := range skill.Arguments {
			required := ""
			if arg.Required {
				required = " (required)"
			}
			presenter.Info(fmt.Sprintf("argument: %s%s - %s", arg.Name, required, arg.Description))
		}
		if len(resolved.Manifest.PrimaryFiles) > 0 {
			presenter.Info(fmt.Sprintf("primary files: %s", strings.Join(resolved.Manifest.PrimaryFiles, ", ")))
		}
		for _, cf := range resolved.Manifest.ConditionalFiles {
			presenter.Info(fmt.Sprintf("conditional: %s when %s", cf.Path, cf.When))
		}
		return nil
	},
}

func printCollisions(registry *skills.Registry) {
	for _, collision := range registry.Collisions() {
		presenter.Warning(fmt.Sprintf("trigger %q registered by multiple skills (%s); phrase disabled",
			collision.Phrase, strings.Join(collision.Skills, ", ")))
	}
}

func init() {
	skillsCmd.AddCommand(skillsListCmd)
	skillsCmd.AddCommand(skillsShowCmd)
	skillsCmd.AddCommand(skillsWatchCmd)
	rootCmd.AddCommand(skillsCmd)
}
