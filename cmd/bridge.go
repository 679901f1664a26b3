package cmd

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/printwatch/cli/internal/bridge"
)

var bridgeListen string

// bridgeCmd represents the bridge command
var bridgeCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Broadcast stdin lines to WebSocket dashboards",
	Long: `Read JSON lines from stdin and broadcast each one to every connected
WebSocket client. Browser dashboards connect to ws://localhost:8765 by
default and receive the stream live.

The bridge exits when stdin closes (the upstream run ended) or on
interrupt.

Examples:
  printwatch simulate | printwatch bridge
  printwatch simulate | printwatch watch --output json | printwatch bridge --listen :9000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		listen := bridgeListen
		if listen == "" {
			listen = cfg.ListenAddr
		}

		server := bridge.NewServer(func(format string, args ...any) {
			cmd.PrintErrf(format+"\n", args...)
		})
		return server.Run(ctx, os.Stdin, listen)
	},
}

func init() {
	bridgeCmd.Flags().StringVar(&bridgeListen, "listen", "", "Listen address (default: from config, :8765)")

	rootCmd.AddCommand(bridgeCmd)
}
