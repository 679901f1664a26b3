package anomaly

import (
	"fmt"
	"math"
	"time"

	"github.com/printwatch/cli/internal/telemetry"
)

// Severity grades an anomaly event.
type Severity string

const (
	SeverityWarn  Severity = "WARN"
	SeverityAlert Severity = "ALERT"
)

// PausePrint is the control action emitted on severe flow or nozzle
// anomalies.
const PausePrint = "PAUSE_PRINT"

// Event is one anomaly on the output stream, compact enough to hand to
// the analysis API as-is.
type Event struct {
	TS          string   `json:"ts"`
	TSec        float64  `json:"t_sec"`
	Severity    Severity `json:"severity"`
	Signal      string   `json:"signal"`
	Value       float64  `json:"value"`
	Zscore      float64  `json:"zscore"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions"`
}

// Control is a control-action record emitted alongside severe events.
type Control struct {
	TS     string  `json:"ts"`
	TSec   float64 `json:"t_sec"`
	Action string  `json:"control_action"`
	Reason string  `json:"reason"`
}

// Options tunes a Detector. Zero values fall back to the calibrated
// defaults.
type Options struct {
	// Signals to watch; defaults to the four load-bearing ones.
	Signals []string
	// Alpha is the EWMA smoothing factor.
	Alpha float64
	// WarnZ and AlertZ are the soft and strong |z| thresholds.
	WarnZ  float64
	AlertZ float64
	// RunLengthAlert escalates sustained moderate deviation to ALERT.
	RunLengthAlert int
	// DedupCooldown is the minimum gap between identical events.
	DedupCooldown time.Duration
	// TrendWindow is how many recent values feed trend heuristics.
	TrendWindow int
	// Now is the clock used for dedup; defaults to time.Now.
	Now func() time.Time
}

// DefaultSignals are the signals the detector watches out of the box.
func DefaultSignals() []string {
	return []string{
		telemetry.SignalNozzleTemp,
		telemetry.SignalBedTemp,
		telemetry.SignalExtruderFlow,
		telemetry.SignalPrintSpeed,
	}
}

// Detector watches a telemetry stream and flags deviations from each
// signal's own recent behavior. It keeps per-signal streaming state and
// is not safe for concurrent use.
type Detector struct {
	opts     Options
	stats    map[string]*EWStats
	runs     map[string]*RunLength
	recents  map[string][]float64
	lastEmit map[string]time.Time
}

// NewDetector creates a detector for the configured signals.
func NewDetector(opts Options) *Detector {
	if len(opts.Signals) == 0 {
		opts.Signals = DefaultSignals()
	}
	if opts.Alpha == 0 {
		opts.Alpha = 0.05
	}
	if opts.WarnZ == 0 {
		opts.WarnZ = 3.0
	}
	if opts.AlertZ == 0 {
		opts.AlertZ = 4.5
	}
	if opts.RunLengthAlert == 0 {
		opts.RunLengthAlert = 6
	}
	if opts.DedupCooldown == 0 {
		opts.DedupCooldown = 3 * time.Second
	}
	if opts.TrendWindow == 0 {
		opts.TrendWindow = 80
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	d := &Detector{
		opts:     opts,
		stats:    make(map[string]*EWStats, len(opts.Signals)),
		runs:     make(map[string]*RunLength, len(opts.Signals)),
		recents:  make(map[string][]float64, len(opts.Signals)),
		lastEmit: make(map[string]time.Time),
	}
	for _, s := range opts.Signals {
		d.stats[s] = NewEWStats(opts.Alpha)
		d.runs[s] = NewRunLength(opts.WarnZ)
	}
	return d
}

// Observe processes one telemetry sample and returns the anomaly events
// and control actions it triggers, usually none.
func (d *Detector) Observe(sample telemetry.Sample) ([]Event, []Control) {
	var events []Event
	var controls []Control

	for _, signal := range d.opts.Signals {
		x, ok := sample.Signals[signal]
		if !ok {
			continue
		}

		d.stats[signal].Update(x)
		z := d.stats[signal].Zscore(x)
		d.pushRecent(signal, x)
		runLength := d.runs[signal].Update(z)

		var severity Severity
		switch {
		case math.Abs(z) >= d.opts.AlertZ || runLength >= d.opts.RunLengthAlert:
			severity = SeverityAlert
		case math.Abs(z) >= d.opts.WarnZ:
			severity = SeverityWarn
		default:
			continue
		}

		direction := "HIGH"
		if z < 0 {
			direction = "LOW"
		}
		key := fmt.Sprintf("%s:%s:%s", severity, signal, direction)
		now := d.opts.Now()
		if last, ok := d.lastEmit[key]; ok && now.Sub(last) < d.opts.DedupCooldown {
			continue
		}
		d.lastEmit[key] = now

		message, suggestions := Diagnose(signal, z, d.recents[signal])
		events = append(events, Event{
			TS:          sample.TS,
			TSec:        sample.TSec,
			Severity:    severity,
			Signal:      signal,
			Value:       math.Round(x*1e4) / 1e4,
			Zscore:      math.Round(z*1e2) / 1e2,
			Message:     message,
			Suggestions: suggestions,
		})

		if severity == SeverityAlert &&
			(signal == telemetry.SignalExtruderFlow || signal == telemetry.SignalNozzleTemp) {
			controls = append(controls, Control{
				TS:     sample.TS,
				TSec:   sample.TSec,
				Action: PausePrint,
				Reason: fmt.Sprintf("%s severe anomaly", signal),
			})
		}
	}
	return events, controls
}

func (d *Detector) pushRecent(signal string, x float64) {
	recent := append(d.recents[signal], x)
	if len(recent) > d.opts.TrendWindow {
		recent = recent[len(recent)-d.opts.TrendWindow:]
	}
	d.recents[signal] = recent
}
