package telemetry

import (
	"encoding/json"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSampleFields(t *testing.T) {
	sim := NewSimulator(DefaultSchedule(), rand.New(rand.NewSource(1)))
	now := time.Date(2026, 8, 29, 10, 30, 0, 250_000_000, time.UTC)

	sample := sim.Sample(27.5, now)

	assert.Equal(t, "2026-08-29T10:30:00.250Z", sample.TS)
	assert.Equal(t, 27.5, sample.TSec)
	assert.Equal(t, 2, sample.LayerIndex, "layers advance every 12 seconds")
	assert.Equal(t, sim.RunID(), sample.RunID)
	_, err := uuid.Parse(sample.RunID)
	assert.NoError(t, err)
	assert.Len(t, sample.Signals, len(baseline))
	assert.Equal(t, []string{"UNDER_EXTRUSION"}, sample.FaultsActive)
}

func TestActiveFaults(t *testing.T) {
	sim := NewSimulator(DefaultSchedule(), rand.New(rand.NewSource(1)))

	tests := []struct {
		name     string
		t        float64
		expected []Fault
	}{
		{name: "Before first window", t: 5, expected: nil},
		{name: "Under-extrusion window", t: 20, expected: []Fault{FaultUnderExtrusion}},
		{name: "Window edge is inclusive", t: 30, expected: []Fault{FaultUnderExtrusion}},
		{name: "Between windows", t: 40, expected: nil},
		{name: "Overlapping faults sorted", t: 80, expected: []Fault{FaultAmbientBreeze, FaultYAxisStickSlip}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sim.ActiveFaults(tt.t))
		})
	}
}

func TestUnderExtrusionLowersFlow(t *testing.T) {
	schedule := []FaultWindow{{Start: 0, End: 100, Faults: []Fault{FaultUnderExtrusion}}}
	faulty := NewSimulator(schedule, rand.New(rand.NewSource(7)))
	clean := NewSimulator(nil, rand.New(rand.NewSource(7)))

	now := time.Now()
	var faultySum, cleanSum float64
	for i := 0; i < 50; i++ {
		tt := float64(i) * 0.1
		faultySum += faulty.Sample(tt, now).Signals[SignalExtruderFlow]
		cleanSum += clean.Sample(tt, now).Signals[SignalExtruderFlow]
	}

	// The clog multiplier is 0.7±0.05, far outside the noise band.
	assert.Less(t, faultySum, cleanSum*0.85)
}

func TestSignalsStayNonNegative(t *testing.T) {
	sim := NewSimulator(nil, rand.New(rand.NewSource(3)))
	now := time.Now()
	for i := 0; i < 200; i++ {
		sample := sim.Sample(float64(i)*0.1, now)
		assert.GreaterOrEqual(t, sample.Signals[SignalExtruderFlow], 0.0)
		assert.GreaterOrEqual(t, sample.Signals[SignalVibrationRMS], 0.0)
	}
}

func TestCleanRunHasNoFaults(t *testing.T) {
	sim := NewSimulator(nil, rand.New(rand.NewSource(1)))
	sample := sim.Sample(50, time.Now())
	assert.Empty(t, sample.FaultsActive)

	// The empty list still marshals as [], not null.
	data, err := json.Marshal(sample)
	assert.NoError(t, err)
	assert.Contains(t, string(data), `"faults_active":[]`)
}

func TestSimulatedSamplePassesSchema(t *testing.T) {
	schema, err := CompileSampleSchema()
	assert.NoError(t, err)

	sim := NewSimulator(DefaultSchedule(), rand.New(rand.NewSource(9)))
	for _, tt := range []float64{0, 20, 80, 120} {
		data, err := json.Marshal(sim.Sample(tt, time.Now()))
		assert.NoError(t, err)
		assert.NoError(t, ValidateLine(schema, data))
	}
}
