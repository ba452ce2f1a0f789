package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cjnuk/dskit/pkg/agents"
	"github.com/cjnuk/dskit/pkg/presenter"
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "Inspect agent definitions",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

func newAgentProcessor() (*agents.Processor, error) {
	root, err := pluginRoot()
	if err != nil {
		return nil, err
	}
	wd, err := workingDir()
	if err != nil {
		return nil, err
	}
	return agents.NewProcessor(agents.WithRoots(wd, root))
}

var agentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available agents",
	RunE: func(cmd *cobra.Command, _ []string) error {
		processor, err := newAgentProcessor()
		if err != nil {
			return err
		}
		all, err := processor.ListAgents(cmd.Context())
		if err != nil {
			return err
		}
		if len(all) == 0 {
			presenter.Info("no agents found")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tPRIMARY FILES\tDESCRIPTION")
		for _, agent := range all {
			fmt.Fprintf(w, "%s\t%d\t%s\n",
				agent.Metadata.Name, len(agent.Metadata.PrimaryFiles), agent.Metadata.Description)
		}
		return w.Flush()
	},
}

var agentsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show an agent definition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		processor, err := newAgentProcessor()
		if err != nil {
			return err
		}
		agent, err := processor.LoadAgent(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		presenter.Section(agent.Metadata.Name)
		presenter.Info(agent.Metadata.Description)
		presenter.Info(fmt.Sprintf("path: %s", agent.Path))
		presenter.Info(fmt.Sprintf("primary files: %s", strings.Join(agent.Metadata.PrimaryFiles, ", ")))
		for _, cf := range agent.Metadata.ConditionalFiles {
			presenter.Info(fmt.Sprintf("conditional: %s when %s", cf.Path, cf.When))
		}
		return nil
	},
}

func init() {
	agentsCmd.AddCommand(agentsListCmd)
	agentsCmd.AddCommand(agentsShowCmd)
	rootCmd.AddCommand(agentsCmd)
}
