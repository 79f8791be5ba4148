// Package cli implements the claimsift command line.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/claimsift/internal/ingest"
)

// Version is set at build time with -ldflags
var Version = "v0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "claimsift",
	Short: "claimsift - extract and classify factual claims from forum post dumps",
	Long: `claimsift splits a JSON dump of forum posts into chunks, groups the chunks
into character-budgeted batches and asks a locally hosted language model to
extract the most significant factual claims from each batch.

Claims are labelled True, False, Misleading or Unverifiable and written to a
combined report in the workspace.

Run without a subcommand to process ./reddit_search_output.json.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runDefault,
}

// Execute runs the root command
func Execute() error {
	// .env first so it is visible to viper's env lookups
	_ = godotenv.Load()
	return rootCmd.ExecuteContext(context.Background())
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "claimsift %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.claimsift/config.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	flags.String("workdir", ".", "workspace root holding chunks/, batches/ and analysis_results/")
	flags.StringP("input", "i", "", "input post dump, a file path or http(s) URL (default: reddit_search_output.json)")
	flags.Duration("timeout", 0, "overall run timeout, 0 for none")
	flags.String("metrics-file", "", "write run metrics in Prometheus text format to this path")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (console, json)")
	flags.Bool("no-color", false, "disable colored output")

	// Bind flags to viper
	bindFlag("output.verbose", "verbose")
	bindFlag("workspace.root", "workdir")
	bindFlag("input.path", "input")
	bindFlag("metrics.textfile_path", "metrics-file")
	bindFlag("logging.level", "log-level")
	bindFlag("logging.format", "log-format")
	bindFlag("output.no_color", "no-color")

	rootCmd.AddCommand(versionCmd)
}

func bindFlag(key, flag string) {
	_ = viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag))
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".claimsift"))
		}
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match CLAIMSIFT_*
	viper.SetEnvPrefix("CLAIMSIFT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	registerDefaults(viper.GetViper())

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// runDefault runs the full pipeline when the input exists and otherwise
// explains what is missing without failing
func runDefault(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	if !ingest.IsURL(cfg.Input.Path) {
		if _, err := os.Stat(cfg.Input.Path); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Input %s not found; nothing to analyze.\n", cfg.Input.Path)
			fmt.Fprintln(cmd.ErrOrStderr(), "Pass --input or run 'claimsift --help' for usage.")
			return nil
		}
	}

	return runPipeline(cmd, cfg)
}
