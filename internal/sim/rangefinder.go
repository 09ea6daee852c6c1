package sim

import (
	"time"

	"subnav-ng/internal/rangefinder"
)

// Rangefinder is a simulated downward range sensor driven by a Vehicle
// profile. It reports perfect confidence except during a periodic dropout
// window, which exercises the health gate downstream.
type Rangefinder struct {
	Vehicle     Vehicle
	Orientation rangefinder.Orientation

	// Fraction of each period (0..1) during which the sensor reports poor
	// signal quality. Zero disables dropouts.
	DropoutFrac float64

	clock   func() time.Time
	tracker *rangefinder.Tracker
}

// NewRangefinder builds a sim sensor with a 20..700 cm advertised range.
func NewRangefinder(v Vehicle, o rangefinder.Orientation) *Rangefinder {
	return &Rangefinder{
		Vehicle:     v,
		Orientation: o,
		clock:       time.Now,
		tracker:     rangefinder.NewTracker(20, 700, 500*time.Millisecond),
	}
}

func (r *Rangefinder) Update() {
	now := r.clock()
	dist := int(r.Vehicle.RangeToSeafloorCm(now))
	quality := 100
	if r.DropoutFrac > 0 {
		p := r.Vehicle.period()
		frac := float64(now.UnixNano()%p.Nanoseconds()) / float64(p.Nanoseconds())
		if frac < r.DropoutFrac {
			quality = 20
		}
	}
	r.tracker.Set(now, dist, quality)
}

func (r *Rangefinder) HasOrientation(o rangefinder.Orientation) bool {
	return o == r.Orientation
}

func (r *Rangefinder) Status(o rangefinder.Orientation) rangefinder.Status {
	if o != r.Orientation {
		return rangefinder.StatusNotConnected
	}
	return r.tracker.Status()
}

func (r *Rangefinder) ValidCount(o rangefinder.Orientation) uint {
	if o != r.Orientation {
		return 0
	}
	return r.tracker.ValidCount()
}

func (r *Rangefinder) SignalQualityPct(o rangefinder.Orientation) int {
	if o != r.Orientation {
		return rangefinder.QualityUnknown
	}
	return r.tracker.SignalQualityPct()
}

func (r *Rangefinder) DistanceCm(o rangefinder.Orientation) int {
	if o != r.Orientation {
		return 0
	}
	return r.tracker.DistanceCm()
}

func (r *Rangefinder) MinDistanceCm(o rangefinder.Orientation) int {
	if o != r.Orientation {
		return 0
	}
	return r.tracker.MinCm
}

func (r *Rangefinder) MaxDistanceCm(o rangefinder.Orientation) int {
	if o != r.Orientation {
		return 0
	}
	return r.tracker.MaxCm
}
