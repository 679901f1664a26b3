package anomaly

import (
	"fmt"

	"github.com/printwatch/cli/internal/telemetry"
)

// Diagnose turns a deviation into a human-friendly guess plus suggested
// tweaks, compact enough to paste to an LLM for deeper analysis. The
// recent window feeds trend heuristics (currently bed oscillation).
func Diagnose(signal string, z float64, recent []float64) (string, []string) {
	direction := "high"
	if z < 0 {
		direction = "low"
	}

	switch signal {
	case telemetry.SignalExtruderFlow:
		if z < 0 {
			return "Possible under-extrusion (flow low).", []string{
				"Increase nozzle temp +5 C",
				"Reduce print speed -10%",
				"Check for partial clog / filament path",
			}
		}
		return "Possible over-extrusion (flow high).", []string{
			"Reduce extrusion multiplier -5-10%",
			"Lower nozzle temp -5 C if over-melting",
		}

	case telemetry.SignalNozzleTemp:
		if z < 0 {
			return "Nozzle temp below trend (heater lag / draft).", []string{
				"Raise nozzle temp +3-5 C",
				"Reduce fan / shield from drafts",
				"Check heater PID / power",
			}
		}
		return "Nozzle temp above trend.", []string{
			"Lower nozzle temp -3-5 C",
			"Verify fan RPM / PID gains",
		}

	case telemetry.SignalBedTemp:
		if oscillating(recent) {
			return "Bed temp oscillating (PID/drafts).", []string{
				"Tune bed PID",
				"Cover enclosure / reduce drafts",
				"Allow more warm-up time",
			}
		}
		return fmt.Sprintf("Bed temp %s vs trend.", direction), []string{
			"Adjust bed temp +/-3 C",
			"Check enclosure / drafts / PID",
		}

	case telemetry.SignalPrintSpeed:
		if z > 0 {
			return "Print speed above trend (could trigger flow/adhesion issues).", []string{
				"Consider -10% speed",
				"Verify extrusion keeps up",
			}
		}
		return "Print speed below trend.", []string{
			"Check if speed reductions are intentional",
			"Re-balance temp vs. speed",
		}
	}

	return fmt.Sprintf("%s %s vs expected.", signal, direction), []string{"Inspect recent changes"}
}

// oscillating reports whether the recent window looks like a PID
// oscillation: a high ratio of sign changes in the first differences.
func oscillating(recent []float64) bool {
	if len(recent) < 20 {
		return false
	}
	diffs := make([]float64, len(recent)-1)
	for i := range diffs {
		diffs[i] = recent[i+1] - recent[i]
	}
	signChanges := 0
	for i := 0; i+1 < len(diffs); i++ {
		if diffs[i]*diffs[i+1] < 0 {
			signChanges++
		}
	}
	return float64(signChanges) > float64(len(diffs))*0.35
}
