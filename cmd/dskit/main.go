// Command dskit is the routing runtime of the design-system assistant
// plugin: it maps free-text requests to skills, resolves skills to agents
// and knowledge manifests, loads knowledge content with layered
// precedence, and validates, repairs, and migrates the per-project
// configuration record.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cjnuk/dskit/pkg/logger"
	"github.com/cjnuk/dskit/pkg/presenter"
)

func init() {
	viper.SetEnvPrefix("DSKIT")
	viper.AutomaticEnv()

	// Tool settings only. The per-project record at .dskit/config.yaml is
	// owned by pkg/project and never feeds viper.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.dskit")
	_ = viper.ReadInConfig()

	viper.SetDefault("log_level", "warn")
	viper.SetDefault("log_format", "text")
	viper.SetDefault("routing.fallback", "design-system")
}

var rootCmd = &cobra.Command{
	Use:   "dskit",
	Short: "Design-system assistant plugin runtime",
	Long: `dskit routes free-text requests to design-system skills, loads the
knowledge files their agents need, and keeps the per-project
configuration record valid.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := logger.SetLogLevel(viper.GetString("log_level")); err != nil {
			return err
		}
		logger.SetLogFormat(viper.GetString("log_format"))
		presenter.SetQuiet(viper.GetBool("quiet"))

		ctx := logger.WithLogger(cmd.Context(), logrus.NewEntry(logger.L.Logger))
		cmd.SetContext(ctx)

		cmd.Flags().Visit(func(flag *pflag.Flag) {
			logger.G(ctx).WithField("flag."+flag.Name, flag.Value.String()).Debug("flag set")
		})
		return nil
	},
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

func main() {
	flags := rootCmd.PersistentFlags()
	flags.String("plugin-root", "", "installed plugin root (default $HOME/.dskit/plugin)")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text or json)")
	flags.Bool("quiet", false, "suppress informational output")

	viper.BindPFlag("plugin_root", flags.Lookup("plugin-root"))
	viper.BindPFlag("log_level", flags.Lookup("log-level"))
	viper.BindPFlag("log_format", flags.Lookup("log-format"))
	viper.BindPFlag("quiet", flags.Lookup("quiet"))

	if err := rootCmd.Execute(); err != nil {
		presenter.Error(err, "")
		os.Exit(1)
	}
}
