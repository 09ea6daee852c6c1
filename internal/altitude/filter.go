package altitude

// LowPass is a single-pole exponential smoothing filter with an explicit
// reset. Reset discards history so a gap in samples is never bridged by a
// stale internal value.
type LowPass struct {
	value float64
}

// Reset sets the filter output directly to v.
func (f *LowPass) Reset(v float64) {
	f.value = v
}

// Apply blends one step toward sample with the given gain (0..1) and returns
// the new output.
func (f *LowPass) Apply(sample, gain float64) float64 {
	if gain < 0 {
		gain = 0
	}
	if gain > 1 {
		gain = 1
	}
	f.value += gain * (sample - f.value)
	return f.value
}

// Get returns the current filter output.
func (f *LowPass) Get() float64 {
	return f.value
}
