package anomaly

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEWStatsSeedsOnFirstSample(t *testing.T) {
	s := NewEWStats(0.05)
	mean, variance := s.Update(100)
	assert.Equal(t, 100.0, mean)
	assert.Equal(t, 0.0, variance)
	assert.InDelta(t, 0.0, s.Zscore(100), 1e-9)
}

func TestEWStatsUpdate(t *testing.T) {
	s := NewEWStats(0.05)
	s.Update(100)

	mean, variance := s.Update(110)
	// mean' = 0.05*110 + 0.95*100, var' = 0.05 * (110-100)^2
	assert.InDelta(t, 100.5, mean, 1e-9)
	assert.InDelta(t, 5.0, variance, 1e-9)
	assert.InDelta(t, 4.2485, s.Zscore(110), 1e-3)
}

func TestEWStatsConstantStreamHasZeroVariance(t *testing.T) {
	s := NewEWStats(0.05)
	var variance float64
	for i := 0; i < 100; i++ {
		_, variance = s.Update(42)
	}
	assert.Equal(t, 0.0, variance)
	assert.InDelta(t, 0.0, s.Zscore(42), 1e-9)
}

func TestRunLength(t *testing.T) {
	r := NewRunLength(3.0)
	assert.Equal(t, 1, r.Update(3.5))
	assert.Equal(t, 2, r.Update(-4.0), "negative deviations count too")
	assert.Equal(t, 0, r.Update(1.0), "a sample back inside the threshold resets the run")
	assert.Equal(t, 1, r.Update(3.0))
}
