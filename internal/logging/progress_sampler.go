package logging

// ProgressSampler thins progress logging to one line per step of percent.
// It is not safe for concurrent use; each encode owns its own sampler.
type ProgressSampler struct {
	step float64
	last int
	done bool
}

// NewProgressSampler returns a sampler reporting every step percent. A step
// <= 0 defaults to 5.
func NewProgressSampler(step float64) *ProgressSampler {
	if step <= 0 {
		step = 5
	}
	return &ProgressSampler{step: step, last: -1}
}

// Crossed reports whether percent entered a step bucket that has not been
// reported yet. Reaching 100 is reported exactly once; negative values
// never are.
func (s *ProgressSampler) Crossed(percent float64) bool {
	if s == nil {
		return true
	}
	if percent < 0 || s.done {
		return false
	}
	if percent >= 100 {
		s.done = true
		return true
	}
	bucket := int(percent / s.step)
	if bucket <= s.last {
		return false
	}
	s.last = bucket
	return true
}
