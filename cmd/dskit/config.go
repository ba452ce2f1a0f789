package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cjnuk/dskit/pkg/project"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Work with the project configuration schema",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

var configSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of the configuration record",
	RunE: func(_ *cobra.Command, _ []string) error {
		schema, err := project.JSONSchema()
		if err != nil {
			return err
		}
		fmt.Println(schema)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configSchemaCmd)
	rootCmd.AddCommand(configCmd)
}
