// Package main provides the labbot CLI: the coursework chat bot and the
// tools to manage its roster spreadsheet.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ideamans/go-sheettable/internal/config"
	"github.com/ideamans/go-sheettable/internal/logging"
)

var (
	// configFile is set by the --config flag.
	configFile string

	// envFile is set by the --env-file flag.
	envFile string

	// jsonOutput switches list and get commands to JSON.
	jsonOutput bool

	// cfg and logger are initialized on startup.
	cfg    *config.Config
	logger *zap.Logger
)

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "labbot",
	Short: "Labbot collects coursework links in chat",
	Long: `Labbot is a chat bot that asks students for links to their coursework
and records them in a spreadsheet next to the student and teacher rosters.

Configuration is read from a YAML file (--config) and LABBOT_* environment
variables, which take precedence. A .env file is loaded first when present.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logger == nil {
			return nil
		}
		_ = logging.Sync(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "labbot.yaml", "config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(studentCmd)
	rootCmd.AddCommand(teacherCmd)
	rootCmd.AddCommand(worksCmd)
}

var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "labbot", version)
	},
}

// setup loads the environment file, the configuration and the logger.
func setup(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	loaded, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg = loaded

	logger, err = logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	return nil
}
