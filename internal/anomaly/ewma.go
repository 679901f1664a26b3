package anomaly

import "math"

// eps keeps z-scores finite while the variance estimate is still zero.
const eps = 1e-9

// EWStats tracks an exponentially weighted mean and variance
// (Welford-style) over a stream of samples.
type EWStats struct {
	alpha float64
	mean  float64
	vari  float64
	seen  bool
}

// NewEWStats creates stats with the given smoothing factor. Values in
// the 0.02-0.1 range adapt quickly to normal behavior without chasing
// every spike.
func NewEWStats(alpha float64) *EWStats {
	return &EWStats{alpha: alpha}
}

// Update folds one observation into the estimates and returns the
// updated mean and variance. The first observation seeds the mean with
// zero variance.
func (s *EWStats) Update(x float64) (mean, variance float64) {
	if !s.seen {
		s.mean = x
		s.vari = 0
		s.seen = true
		return s.mean, s.vari
	}
	prev := s.mean
	s.mean = s.alpha*x + (1-s.alpha)*s.mean
	resid := x - prev
	s.vari = s.alpha*(resid*resid) + (1-s.alpha)*s.vari
	return s.mean, s.vari
}

// Zscore returns how many estimated standard deviations x sits from
// the current mean.
func (s *EWStats) Zscore(x float64) float64 {
	return (x - s.mean) / math.Sqrt(s.vari+eps)
}

// RunLength counts consecutive samples beyond |z| >= threshold.
type RunLength struct {
	threshold float64
	count     int
}

// NewRunLength creates a counter for the given |z| threshold.
func NewRunLength(threshold float64) *RunLength {
	return &RunLength{threshold: threshold}
}

// Update advances the counter for one z-score and returns the current
// run length. Any sample back inside the threshold resets it.
func (r *RunLength) Update(z float64) int {
	if math.Abs(z) >= r.threshold {
		r.count++
	} else {
		r.count = 0
	}
	return r.count
}
