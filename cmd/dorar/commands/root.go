// Package commands implements the CLI commands for dorar.
package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/dorar/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "dorar",
	Short: "Turn dorar.net encyclopedia pages into footnoted Markdown",
	Long: `dorar crawls the dorar.net encyclopedias and writes Markdown with
footnotes, one file per surah, per canonical section or per grammar branch.

Examples:
  # One file per surah, first two surahs only
  dorar tafseer --limit 2

  # One file per recurring commentary section, plus an index
  dorar sections -o tafseer_sections --rules rules.yaml

  # The Arabic language encyclopedia, one file per branch
  dorar arabia --separator-level 3

  # Convert a saved page without touching the network
  dorar convert page.html`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)
	config.SetDefaults(viper.GetViper())

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default $HOME/.dorar.yaml)")
	flags.Bool("debug", false, "enable debug logging")
	flags.BoolP("quiet", "q", false, "suppress progress output")
	flags.Bool("json-logs", false, "write logs as JSON")

	flags.String("base-url", "https://dorar.net", "site root")
	flags.StringP("output", "o", "output", "output directory")
	flags.Duration("delay", 2*time.Second, "delay after every request")
	flags.Duration("timeout", 20*time.Second, "request timeout")
	flags.String("user-agent", "", "override the browser user agent")
	flags.String("fetch-mode", "static", "fetch mode: static, dynamic, auto")
	flags.Int("limit", 0, "process only the first N surahs or branches (0=all)")
	flags.Int("max-pages", 0, "max chained pages per surah (0=unlimited)")
	flags.Bool("skip-existing", true, "leave files from an earlier run untouched")
	flags.String("manifest", "json", "run manifest format: json, yaml")

	bind := map[string]string{
		"config":        "config",
		"debug":         "debug",
		"quiet":         "quiet",
		"json_logs":     "json-logs",
		"base_url":      "base-url",
		"output_dir":    "output",
		"delay":         "delay",
		"timeout":       "timeout",
		"user_agent":    "user-agent",
		"fetch_mode":    "fetch-mode",
		"limit":         "limit",
		"max_pages":     "max-pages",
		"skip_existing": "skip-existing",
		"manifest":      "manifest",
	}
	for key, flag := range bind {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".dorar")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("DORAR")
	viper.AutomaticEnv()

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// logError prints an error message to stderr.
func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// logInfo prints a progress line to stderr unless quiet.
func logInfo(format string, args ...any) {
	if !viper.GetBool("quiet") {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
