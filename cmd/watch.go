package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/muesli/termenv"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/spf13/cobra"

	"github.com/printwatch/cli/internal/anomaly"
	"github.com/printwatch/cli/internal/telemetry"
)

var (
	// Watch command flags
	watchOutput string
	watchStrict bool
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Flag anomalies on a telemetry stream",
	Long: `Read telemetry JSON lines from stdin and emit anomaly events when a
signal deviates from its own recent behavior (exponentially weighted
z-scores with run-length escalation).

Output is JSON lines when piped, or colorized text on a terminal.
Severe flow or nozzle anomalies additionally emit a PAUSE_PRINT control
record.

Examples:
  printwatch simulate | printwatch watch
  printwatch simulate | printwatch watch --strict --output json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWatch()
	},
}

func runWatch() error {
	detector := anomaly.NewDetector(anomaly.Options{
		Alpha:          cfg.Alpha,
		WarnZ:          cfg.WarnZ,
		AlertZ:         cfg.AlertZ,
		RunLengthAlert: cfg.RunLengthAlert,
		DedupCooldown:  time.Duration(cfg.DedupCooldownS * float64(time.Second)),
		TrendWindow:    cfg.TrendWindow,
	})

	var schema *jsonschema.Schema
	if watchStrict {
		compiled, err := telemetry.CompileSampleSchema()
		if err != nil {
			return err
		}
		schema = compiled
	}

	asText := watchOutputText()
	enc := json.NewEncoder(os.Stdout)

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		if schema != nil {
			if err := telemetry.ValidateLine(schema, line); err != nil {
				fmt.Fprintf(os.Stderr, "skipping bad sample: %v\n", err)
				continue
			}
		}

		var sample telemetry.Sample
		if err := json.Unmarshal(line, &sample); err != nil {
			// Tolerate stray non-telemetry lines on the stream.
			continue
		}

		events, controls := detector.Observe(sample)
		for _, event := range events {
			if asText {
				printEventText(event)
				continue
			}
			if err := enc.Encode(event); err != nil {
				return nil
			}
		}
		for _, control := range controls {
			if asText {
				fmt.Printf("        control: %s (%s)\n", control.Action, control.Reason)
				continue
			}
			if err := enc.Encode(control); err != nil {
				return nil
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read telemetry stream: %w", err)
	}
	return nil
}

// watchOutputText decides between text and JSON output: explicit flag
// first, otherwise text only when stdout is a terminal.
func watchOutputText() bool {
	switch watchOutput {
	case "text":
		return true
	case "json":
		return false
	}
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

func printEventText(event anomaly.Event) {
	severity := termenv.String(string(event.Severity))
	switch event.Severity {
	case anomaly.SeverityAlert:
		severity = severity.Foreground(termenv.ANSIRed).Bold()
	case anomaly.SeverityWarn:
		severity = severity.Foreground(termenv.ANSIYellow)
	}

	fmt.Printf("%7.1fs [%s] %s z=%+.2f value=%.4f  %s\n",
		event.TSec, severity, event.Signal, event.Zscore, event.Value, event.Message)
	for _, suggestion := range event.Suggestions {
		fmt.Printf("        - %s\n", suggestion)
	}
}

func init() {
	watchCmd.Flags().StringVar(&watchOutput, "output", "", "Output format: text, json (default: text on a terminal)")
	watchCmd.Flags().BoolVar(&watchStrict, "strict", false, "Validate each line against the sample schema, reporting rejects")

	rootCmd.AddCommand(watchCmd)
}
