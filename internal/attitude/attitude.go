// Package attitude provides the vehicle tilt view the altitude pipeline
// needs: the vertical (z,z) component of the body-to-NED rotation, which is
// 1.0 when level and falls off as the vehicle tilts.
package attitude

import (
	"math"
	"sync"
)

// Provider exposes the body-to-NED rotation element along the down axis.
type Provider interface {
	BodyToNEDZZ() float64
}

// Level is a fixed, perfectly level Provider. Useful when no attitude
// estimator is wired in; tilt correction then degrades to a no-op.
type Level struct{}

func (Level) BodyToNEDZZ() float64 { return 1.0 }

// Estimator holds the latest roll/pitch estimate and derives the rotation
// component from it. It has one writer (whatever feeds attitude in) and many
// readers, so the state sits behind an RWMutex.
type Estimator struct {
	mu       sync.RWMutex
	rollRad  float64
	pitchRad float64
	valid    bool
}

func NewEstimator() *Estimator {
	return &Estimator{}
}

// SetEulerDeg stores a roll/pitch estimate in degrees.
func (e *Estimator) SetEulerDeg(rollDeg, pitchDeg float64) {
	e.mu.Lock()
	e.rollRad = rollDeg * math.Pi / 180.0
	e.pitchRad = pitchDeg * math.Pi / 180.0
	e.valid = true
	e.mu.Unlock()
}

// SetFromAccel derives roll/pitch from a gravity vector measured in the body
// frame (any units, must be non-zero).
func (e *Estimator) SetFromAccel(ax, ay, az float64) {
	if ax == 0 && ay == 0 && az == 0 {
		return
	}
	roll := math.Atan2(ay, az)
	pitch := math.Atan2(-ax, math.Sqrt(ay*ay+az*az))
	e.mu.Lock()
	e.rollRad = roll
	e.pitchRad = pitch
	e.valid = true
	e.mu.Unlock()
}

// EulerDeg returns the current roll/pitch in degrees.
func (e *Estimator) EulerDeg() (rollDeg, pitchDeg float64, valid bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.rollRad * 180 / math.Pi, e.pitchRad * 180 / math.Pi, e.valid
}

// BodyToNEDZZ returns cos(roll)*cos(pitch), the (z,z) element of the
// body-to-NED rotation matrix. Before any estimate arrives it reports level.
func (e *Estimator) BodyToNEDZZ() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.valid {
		return 1.0
	}
	return math.Cos(e.rollRad) * math.Cos(e.pitchRad)
}
