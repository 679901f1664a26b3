package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/printwatch/cli/internal/config"
)

var (
	// Global configuration state, loaded before every command runs
	cfg *config.Config

	// Command line flags
	cfgFile string
	version = "1.0.0" // This will be set during build
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "printwatch",
	Short: "Printwatch CLI - watch 3D printer telemetry for anomalies",
	Long: `Printwatch is a command-line toolkit for 3D printer telemetry. It can
simulate a printer (simulate), flag anomalies on a live telemetry stream
(watch), and relay the stream to browser dashboards over WebSocket (bridge).

A typical pipeline:

  printwatch simulate | printwatch watch | printwatch bridge`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		cfg = loaded
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

// isInteractive reports whether stdin is attached to a terminal, which
// decides whether prompting for a credential is even possible.
func isInteractive() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"Config file (default: .printwatch/config.yaml, then ~/.printwatch/config.yaml)")
}
