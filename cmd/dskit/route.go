package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cjnuk/dskit/pkg/knowledge"
	"github.com/cjnuk/dskit/pkg/presenter"
)

type routeOutput struct {
	Skill     string               `json:"skill"`
	Agent     string               `json:"agent"`
	Args      string               `json:"args,omitempty"`
	Documents []knowledge.Document `json:"documents"`
}

var routeCmd = &cobra.Command{
	Use:   "route <request...>",
	Short: "Route a request to a skill and load its knowledge",
	Long: `Route free text through the full pipeline: trigger matching, skill
resolution, and knowledge loading. The explicit command surface
'/skill-name [args]' bypasses trigger matching.

Examples:
  dskit route "fix accessibility issues"
  dskit route "/ds-audit"
  dskit route --feature virtualization "create a data table"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		input := strings.Join(args, " ")
		features, _ := cmd.Flags().GetStringSlice("feature")
		asJSON, _ := cmd.Flags().GetBool("json")

		registry, resolver, err := buildRegistry(ctx)
		if err != nil {
			return err
		}

		resolved, cmdArgs, err := registry.Route(input)
		if err != nil {
			return err
		}

		pctx := loadProjectContext(ctx, features)
		loader := knowledge.NewLoader(resolver)
		docs, err := loader.Load(ctx, resolved.Manifest, resolved.Skill.Directory, pctx)
		if err != nil {
			return err
		}

		if asJSON {
			out := routeOutput{
				Skill:     resolved.Skill.Name,
				Agent:     resolved.Agent.Metadata.Name,
				Args:      cmdArgs,
				Documents: docs,
			}
			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}

		presenter.Info(fmt.Sprintf("skill: %s", resolved.Skill.Name))
		presenter.Info(fmt.Sprintf("agent: %s", resolved.Agent.Metadata.Name))
		if cmdArgs != "" {
			presenter.Info(fmt.Sprintf("args: %s", cmdArgs))
		}
		for _, doc := range docs {
			presenter.Separator()
			presenter.Info(fmt.Sprintf("%s (%s)", doc.LogicalPath, doc.Level))
			presenter.Separator()
			fmt.Print(doc.Content)
			if !strings.HasSuffix(doc.Content, "\n") {
				fmt.Println()
			}
		}
		return nil
	},
}

func init() {
	routeCmd.Flags().StringSlice("feature", nil, "request-scoped feature hints for conditional knowledge")
	routeCmd.Flags().Bool("json", false, "emit the routing result as JSON")
	rootCmd.AddCommand(routeCmd)
}
