// Package cli implements the rangefan command-line client. It talks to
// a running coordinator over HTTP: submitting ranges, listing workers,
// and initiating a drain.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// Execute runs the root command with the provided context
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

// newRootCmd creates the root command
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rangefan",
		Short: "rangefan - client for the range fan-out coordinator",
		Long: `rangefan is the command-line client for a rangefan coordinator.
It submits numeric ranges for processing, inspects the worker pool,
and initiates graceful shutdown.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.rangefan.yaml)")
	rootCmd.PersistentFlags().String("coordinator", "http://localhost:9080", "coordinator base URL")
	rootCmd.PersistentFlags().StringP("output", "o", "", "output format (json, yaml, table)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output with debug logging")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	rootCmd.PersistentFlags().Duration("timeout", 30*time.Second, "timeout for operations")

	viper.BindPFlag("coordinator", rootCmd.PersistentFlags().Lookup("coordinator"))
	viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("no-color", rootCmd.PersistentFlags().Lookup("no-color"))
	viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSubmitCmd())
	rootCmd.AddCommand(newWorkersCmd())
	rootCmd.AddCommand(newBatchesCmd())
	rootCmd.AddCommand(newDrainCmd())

	return rootCmd
}

// initConfig initializes configuration and logging
func initConfig(cmd *cobra.Command) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".rangefan")
	}

	viper.SetEnvPrefix("RANGEFAN")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// It's okay if config file doesn't exist
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	setupLogging(cmd)

	return nil
}

// setupLogging configures structured logging with slog
func setupLogging(cmd *cobra.Command) {
	verbose, _ := cmd.Flags().GetBool("verbose")

	logLevel := slog.LevelWarn
	if verbose {
		logLevel = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))

	if verbose {
		slog.Debug("verbose logging enabled")
		if viper.ConfigFileUsed() != "" {
			slog.Debug("loaded configuration", "file", viper.ConfigFileUsed())
		}
	}
}

// coordinatorURL resolves the coordinator base URL from flags, env, and
// config file.
func coordinatorURL() string {
	if url := viper.GetString("coordinator"); url != "" {
		return url
	}
	return "http://localhost:9080"
}

// requestTimeout resolves the per-operation timeout.
func requestTimeout() time.Duration {
	if d := viper.GetDuration("timeout"); d > 0 {
		return d
	}
	return 30 * time.Second
}
