// Package sim provides deterministic vehicle, seafloor, and sensor profiles
// so the full altitude pipeline can run and be tested without hardware.
package sim

import (
	"math"
	"time"
)

// Vehicle describes a deterministic dive profile: depth and attitude are
// sinusoids around configured centers, and the seafloor below is a gentle
// swell. Everything derives from wall-clock phase, so two calls at the same
// instant agree.
type Vehicle struct {
	// Mean vehicle depth below the surface, cm (positive down).
	DepthCm float64
	// Peak-to-center depth excursion, cm.
	DepthAmpCm float64
	// Mean seafloor depth below the surface, cm.
	SeafloorDepthCm float64
	// Peak-to-center seafloor excursion, cm.
	SeafloorAmpCm float64
	// Attitude excursions, degrees.
	RollAmpDeg  float64
	PitchAmpDeg float64
	// Period of the dive profile.
	Period time.Duration
}

func (v Vehicle) period() time.Duration {
	if v.Period <= 0 {
		return 120 * time.Second
	}
	return v.Period
}

func (v Vehicle) phase(now time.Time) float64 {
	p := v.period()
	return 2 * math.Pi * float64(now.UnixNano()%p.Nanoseconds()) / float64(p.Nanoseconds())
}

// VerticalPositionCm is the inertial-frame vertical position, up positive.
// A vehicle at depth reads negative.
func (v Vehicle) VerticalPositionCm(now time.Time) float64 {
	return -(v.DepthCm + v.DepthAmpCm*math.Sin(v.phase(now)))
}

// SeafloorCm is the seafloor's vertical position, up positive. The seafloor
// swell runs at half the dive period so the two never stay in sync.
func (v Vehicle) SeafloorCm(now time.Time) float64 {
	return -(v.SeafloorDepthCm + v.SeafloorAmpCm*math.Sin(v.phase(now)/2))
}

// RangeToSeafloorCm is the true distance from vehicle to seafloor, cm.
func (v Vehicle) RangeToSeafloorCm(now time.Time) float64 {
	d := v.VerticalPositionCm(now) - v.SeafloorCm(now)
	if d < 0 {
		return 0
	}
	return d
}

// Attitude returns roll and pitch in degrees. Roll and pitch run at
// different fractions of the period so the tilt factor keeps changing.
func (v Vehicle) Attitude(now time.Time) (rollDeg, pitchDeg float64) {
	w := v.phase(now)
	return v.RollAmpDeg * math.Sin(3 * w), v.PitchAmpDeg * math.Sin(2 * w)
}
