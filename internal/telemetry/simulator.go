package telemetry

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Fault is a named failure mode the simulator can inject.
type Fault string

const (
	FaultUnderExtrusion   Fault = "UNDER_EXTRUSION"
	FaultOverExtrusion    Fault = "OVER_EXTRUSION"
	FaultNozzleTempDrift  Fault = "NOZZLE_TEMP_DRIFT_DOWN"
	FaultBedTempOscillate Fault = "BED_TEMP_OSCILLATE"
	FaultYAxisStickSlip   Fault = "Y_AXIS_STICK_SLIP"
	FaultAmbientBreeze    Fault = "AMBIENT_BREEZE"
)

// FaultWindow activates a set of faults between Start and End seconds
// of simulated time, inclusive.
type FaultWindow struct {
	Start  float64
	End    float64
	Faults []Fault
}

// DefaultSchedule returns the stock demo schedule: a few overlapping
// fault windows spread over roughly two minutes.
func DefaultSchedule() []FaultWindow {
	return []FaultWindow{
		{Start: 15, End: 30, Faults: []Fault{FaultUnderExtrusion}},
		{Start: 45, End: 65, Faults: []Fault{FaultBedTempOscillate}},
		{Start: 75, End: 95, Faults: []Fault{FaultYAxisStickSlip, FaultAmbientBreeze}},
		{Start: 110, End: 130, Faults: []Fault{FaultNozzleTempDrift}},
	}
}

// baseline holds the healthy operating points (PLA-ish profile).
var baseline = map[string]float64{
	SignalNozzleTemp:    205.0,
	SignalBedTemp:       60.0,
	SignalExtruderFlow:  6.0,
	SignalMotorCurrentX: 0.8,
	SignalMotorCurrentY: 0.8,
	SignalMotorCurrentZ: 0.9,
	SignalVibrationRMS:  0.02,
	SignalPrintSpeed:    50.0,
	SignalLayerHeight:   0.2,
	SignalAmbientTemp:   24.0,
}

// noise holds physically plausible per-signal noise scales.
var noise = map[string]float64{
	SignalNozzleTemp:    0.4,
	SignalBedTemp:       0.2,
	SignalExtruderFlow:  0.15,
	SignalMotorCurrentX: 0.03,
	SignalMotorCurrentY: 0.03,
	SignalMotorCurrentZ: 0.04,
	SignalVibrationRMS:  0.004,
	SignalPrintSpeed:    0.8,
	SignalLayerHeight:   0.0, // constant during a layer
	SignalAmbientTemp:   0.05,
}

// Simulator generates a stream of plausible printer telemetry with
// injectable faults. One Simulator is one print run; every sample
// carries its run ID.
type Simulator struct {
	runID    string
	schedule []FaultWindow
	rng      *rand.Rand
	drift    map[Fault]float64
}

// NewSimulator creates a simulator with the given fault schedule. A nil
// schedule produces a clean run; a nil rng is seeded from the clock.
func NewSimulator(schedule []FaultWindow, rng *rand.Rand) *Simulator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Simulator{
		runID:    uuid.NewString(),
		schedule: schedule,
		rng:      rng,
		drift:    map[Fault]float64{},
	}
}

// RunID returns the identifier stamped on every sample of this run.
func (s *Simulator) RunID() string {
	return s.runID
}

// ActiveFaults returns the faults scheduled at simulated time t.
func (s *Simulator) ActiveFaults(t float64) []Fault {
	seen := map[Fault]bool{}
	var active []Fault
	for _, w := range s.schedule {
		if t < w.Start || t > w.End {
			continue
		}
		for _, f := range w.Faults {
			if !seen[f] {
				seen[f] = true
				active = append(active, f)
			}
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i] < active[j] })
	return active
}

// Sample produces the telemetry record for simulated time t.
func (s *Simulator) Sample(t float64, now time.Time) Sample {
	state := s.tick(t)
	faults := s.ActiveFaults(t)
	s.applyFaults(t, state, faults)

	names := make([]string, len(faults))
	for i, f := range faults {
		names[i] = string(f)
	}

	signals := make(map[string]float64, len(state))
	for k, v := range state {
		signals[k] = math.Round(v*1e5) / 1e5
	}

	return Sample{
		TS:           Timestamp(now),
		TSec:         math.Round(t*1e3) / 1e3,
		LayerIndex:   int(t / layerSeconds),
		RunID:        s.runID,
		FaultsActive: names,
		Signals:      signals,
	}
}

// tick produces the healthy state for time t: baseline plus noise, a
// gentle wobble on flow and vibration, and speed coupling into motor
// current and vibration.
func (s *Simulator) tick(t float64) map[string]float64 {
	state := make(map[string]float64, len(baseline))
	for k, base := range baseline {
		wobble := 0.0
		switch k {
		case SignalExtruderFlow:
			wobble = 0.03 * math.Sin(2*math.Pi*0.8*t)
		case SignalVibrationRMS:
			wobble = 0.03 * math.Sin(2*math.Pi*3.2*t)
		}
		state[k] = base + s.rng.NormFloat64()*noise[k] + wobble
	}

	// Faster print means slightly higher current and vibration.
	speedFactor := 1.0 + 0.004*(state[SignalPrintSpeed]-baseline[SignalPrintSpeed])
	state[SignalMotorCurrentX] *= speedFactor
	state[SignalMotorCurrentY] *= speedFactor
	state[SignalVibrationRMS] *= speedFactor

	state[SignalExtruderFlow] = math.Max(0, state[SignalExtruderFlow])
	state[SignalVibrationRMS] = math.Max(0, state[SignalVibrationRMS])
	return state
}

// applyFaults mutates state in place for the active faults. Faults are
// additive and combine into compound scenarios.
func (s *Simulator) applyFaults(t float64, state map[string]float64, faults []Fault) {
	for _, f := range faults {
		switch f {
		case FaultUnderExtrusion:
			// Partial clog: flow drops, X current up slightly, vibration up.
			state[SignalExtruderFlow] *= 0.7 + 0.05*math.Sin(1.7*t)
			state[SignalMotorCurrentX] *= 1.06
			state[SignalVibrationRMS] *= 1.3
		case FaultOverExtrusion:
			state[SignalExtruderFlow] *= 1.25
			state[SignalMotorCurrentX] *= 1.04
		case FaultNozzleTempDrift:
			// Heater can't keep up: temp slowly walks down while active.
			s.drift[f] -= 0.05
			state[SignalNozzleTemp] += s.drift[f]
		case FaultBedTempOscillate:
			// Bad PID: bed temp oscillates at ~0.1 Hz.
			state[SignalBedTemp] += 1.5 * math.Sin(2*math.Pi*0.1*t)
		case FaultYAxisStickSlip:
			// Friction spikes: Y current and vibration spike quasi-periodically.
			state[SignalMotorCurrentY] *= 1.0 + 0.25*math.Max(0, math.Sin(4.0*t))
			state[SignalVibrationRMS] *= 1.0 + 0.6*math.Max(0, math.Sin(4.0*t-0.8))
		case FaultAmbientBreeze:
			s.drift[f] -= 0.02
			state[SignalAmbientTemp] += s.drift[f]
			state[SignalNozzleTemp] -= 0.05
			state[SignalBedTemp] -= 0.03
		}
	}
}

// Run emits samples to w as JSON lines at tickHz until the duration
// elapses (zero means forever), the context is cancelled, or the
// downstream writer closes.
func (s *Simulator) Run(ctx context.Context, w io.Writer, tickHz float64, duration time.Duration) error {
	if tickHz <= 0 {
		tickHz = 10
	}
	interval := time.Duration(float64(time.Second) / tickHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	enc := json.NewEncoder(w)
	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			t := now.Sub(start).Seconds()
			if duration > 0 && now.Sub(start) > duration {
				return nil
			}
			if err := enc.Encode(s.Sample(t, now)); err != nil {
				// Downstream closed (bridge exited or pipeline ended).
				return nil
			}
		}
	}
}
