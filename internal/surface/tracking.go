// Package surface implements seafloor tracking on top of the altitude
// pipeline: it latches a target rangefinder distance on the first usable
// reading and steers the vertical position-offset target so the vehicle holds
// that distance above the terrain.
//
// Tracking starts in the reset state, waiting for a good rangefinder reading.
// A glitch must not re-latch the target: if the pilot is holding 1 m above
// the seafloor and the next reading says 1.1 m, the right move is 10 cm down,
// not a new 1.1 m target. Callers therefore Reset only on real discontinuities
// (pilot takeover, hitting surface or bottom).
package surface

import (
	"log"
	"sync"
	"time"

	"github.com/felixge/pidctrl"
)

// PositionController is the vertical offset interface tracking drives.
type PositionController interface {
	PosOffsetZCm() float64
	SetPosOffsetZCm(v float64)
	SetPosOffsetTargetZCm(v float64)
}

// RangeEstimator is the altitude pipeline view tracking reads.
type RangeEstimator interface {
	AltOK(now time.Time) bool
	FilteredAltCm() float64
}

// PIDConfig tunes the rangefinder-error controller. The PID absorbs the
// long-ish data delay of acoustic rangefinders.
type PIDConfig struct {
	P float64
	I float64
	D float64
	// Output clamp, cm of offset-target change per update.
	MaxStepCm float64
}

func (c *PIDConfig) applyDefaults() {
	if c.P == 0 {
		c.P = 1.0
	}
	if c.MaxStepCm == 0 {
		c.MaxStepCm = 100
	}
}

// Tracking holds the surface-tracking state machine.
type Tracking struct {
	alt RangeEstimator
	pos PositionController
	pid *pidctrl.PIDController

	mu                  sync.Mutex
	enabled             bool
	resetTarget         bool
	targetRangefinderCm float64
}

func New(cfg PIDConfig, alt RangeEstimator, pos PositionController) *Tracking {
	cfg.applyDefaults()
	pid := pidctrl.NewPIDController(cfg.P, cfg.I, cfg.D)
	pid.SetOutputLimits(-cfg.MaxStepCm, cfg.MaxStepCm)
	return &Tracking{
		alt:         alt,
		pos:         pos,
		pid:         pid,
		resetTarget: true,
	}
}

// Enable turns tracking on or off and always re-enters the reset state.
func (t *Tracking) Enable(enabled bool, now time.Time) {
	t.mu.Lock()
	t.enabled = enabled
	t.resetTarget = true
	t.mu.Unlock()

	if enabled && !t.alt.AltOK(now) {
		log.Printf("surface: holding depth, waiting for a rangefinder reading")
	}
}

// Reset discards the current target; the next usable reading latches a new one.
func (t *Tracking) Reset() {
	t.mu.Lock()
	t.resetTarget = true
	t.mu.Unlock()
}

// HasTarget reports whether a target rangefinder distance is latched.
func (t *Tracking) HasTarget() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.resetTarget
}

// TargetRangefinderCm returns the latched target (0 while in reset).
func (t *Tracking) TargetRangefinderCm() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.resetTarget {
		return 0
	}
	return t.targetRangefinderCm
}

// ApplyDeltaOrReset shifts the latched target by deltaCm (pilot climbed or
// descended while in control). With no target latched it just resets.
func (t *Tracking) ApplyDeltaOrReset(deltaCm float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.resetTarget {
		return
	}
	t.targetRangefinderCm += deltaCm
	t.pid.Set(t.targetRangefinderCm)
}

// setTarget latches a new target and clears both position offsets so the
// offset ramp starts from zero.
func (t *Tracking) setTarget(newTargetCm float64) {
	t.targetRangefinderCm = newTargetCm
	t.pid.Set(newTargetCm)
	t.pos.SetPosOffsetZCm(0)
	t.pos.SetPosOffsetTargetZCm(0)
	t.resetTarget = false
	log.Printf("surface: rangefinder target is %g m", newTargetCm*0.01)
}

// UpdateSurfaceOffset runs one tracking cycle. While disabled both offsets
// are held at zero. While enabled but the rangefinder is unusable the last
// offset target stands; tracking resumes on the next usable reading.
func (t *Tracking) UpdateSurfaceOffset(now time.Time, dt time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.enabled {
		t.pos.SetPosOffsetZCm(0)
		t.pos.SetPosOffsetTargetZCm(0)
		return
	}
	if !t.alt.AltOK(now) {
		return
	}

	if t.resetTarget {
		t.setTarget(t.alt.FilteredAltCm())
	}

	// Offset target that keeps a constant distance above the seafloor.
	step := t.pid.UpdateDuration(t.alt.FilteredAltCm(), dt)
	t.pos.SetPosOffsetTargetZCm(t.pos.PosOffsetZCm() + step)
}
