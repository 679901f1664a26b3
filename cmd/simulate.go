package cmd

import (
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/printwatch/cli/internal/telemetry"
)

var (
	// Simulate command flags
	simDuration time.Duration
	simTickHz   float64
	simNoFaults bool
	simSeed     int64
)

// simulateCmd represents the simulate command
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Emit synthetic printer telemetry as JSON lines",
	Long: `Generate physically plausible 3D printer telemetry on stdout, one JSON
record per line at roughly 10 Hz. A built-in fault schedule injects
failure modes (under-extrusion, bed temp oscillation, stick-slip, nozzle
temp drift) at fixed windows so downstream detectors have something to
find.

Examples:
  # Stream telemetry into the anomaly watcher
  printwatch simulate | printwatch watch

  # A clean two-minute run, reproducible
  printwatch simulate --no-faults --duration 2m --seed 42`,
	RunE: func(cmd *cobra.Command, args []string) error {
		schedule := telemetry.DefaultSchedule()
		if simNoFaults {
			schedule = nil
		}

		var rng *rand.Rand
		if simSeed != 0 {
			rng = rand.New(rand.NewSource(simSeed))
		}

		tickHz := simTickHz
		if tickHz == 0 {
			tickHz = cfg.TickHz
		}

		sim := telemetry.NewSimulator(schedule, rng)
		return sim.Run(cmd.Context(), os.Stdout, tickHz, simDuration)
	},
}

func init() {
	simulateCmd.Flags().DurationVar(&simDuration, "duration", 0, "Stop after this long (default: run until interrupted)")
	simulateCmd.Flags().Float64Var(&simTickHz, "tick-hz", 0, "Samples per second (default: from config, 10)")
	simulateCmd.Flags().BoolVar(&simNoFaults, "no-faults", false, "Disable the fault schedule for a clean run")
	simulateCmd.Flags().Int64Var(&simSeed, "seed", 0, "Seed for reproducible noise (0 = from clock)")

	rootCmd.AddCommand(simulateCmd)
}
