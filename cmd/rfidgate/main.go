package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/rfidgate/internal/cli"
	"github.com/Veraticus/rfidgate/internal/common"
	"github.com/Veraticus/rfidgate/internal/config"
)

var (
	cfgFile string
	version = "dev"
	rootCmd = &cobra.Command{
		Use:   "rfidgate",
		Short: "🏷️  RFID access control monitor",
		Long: `rfidgate: watches an RFID reader over a serial link, decides whether each
presented tag is allowed in, and keeps a journal of every decision.

Tags start out provisional. Authorize them from the monitor to let them through.`,
		PersistentPreRunE: initConfig,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
)

func init() {
	config.SetDefaults(viper.GetViper())

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/rfidgate/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().String("port", "", "serial port of the reader")

	// Bind flags to viper
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("serial.port", rootCmd.PersistentFlags().Lookup("port"))

	// Add commands
	rootCmd.AddCommand(monitorCmd())
	rootCmd.AddCommand(portsCmd())
	rootCmd.AddCommand(replayCmd())
	rootCmd.AddCommand(sendCmd())
	rootCmd.AddCommand(simulateCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	// Set up signal handling
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received interrupt signal, shutting down gracefully...")
		cancel()
	}()

	cmd, err := rootCmd.ExecuteContextC(ctx)
	cancel() // Always cleanup

	if err != nil {
		reportError(os.Stderr, cmd, err)
		os.Exit(1)
	}
}

// reportError logs the full error chain and prints the operator-facing message.
func reportError(w io.Writer, cmd *cobra.Command, err error) {
	name := rootCmd.Name()
	if cmd != nil {
		name = cmd.CommandPath()
	}
	common.LogError(err, "Command failed", common.Fields{
		"command":   name,
		"transport": common.IsTransport(err),
	})
	fmt.Fprintln(w, cli.FormatError(common.UserMessage(err))) //nolint:forbidigo // User-facing output
}

func initConfig(_ *cobra.Command, _ []string) error {
	// Set up config file
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		dir, err := config.Dir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}

		// Search for config in standard locations
		viper.AddConfigPath(dir)
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// Environment variables, e.g. RFIDGATE_SERIAL_PORT
	viper.SetEnvPrefix("RFIDGATE")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	// Set up logging
	if err := setupLogging(); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	return nil
}

func setupLogging() error {
	return common.SetupLogger(os.Stderr, viper.GetString("logging.level"), viper.GetString("logging.format"))
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			slog.Info("rfidgate version", "version", version)
		},
	}
}
