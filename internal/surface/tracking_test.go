package surface

import (
	"testing"
	"time"
)

type fakeAlt struct {
	ok       bool
	filtered float64
}

func (f *fakeAlt) AltOK(now time.Time) bool { return f.ok }
func (f *fakeAlt) FilteredAltCm() float64   { return f.filtered }

type fakePos struct {
	z      float64
	target float64
}

func (f *fakePos) PosOffsetZCm() float64           { return f.z }
func (f *fakePos) SetPosOffsetZCm(v float64)       { f.z = v }
func (f *fakePos) SetPosOffsetTargetZCm(v float64) { f.target = v }

func newTestTracking(alt *fakeAlt, pos *fakePos) *Tracking {
	return New(PIDConfig{P: 1.0, MaxStepCm: 100}, alt, pos)
}

func TestDisabledZeroesOffsets(t *testing.T) {
	alt := &fakeAlt{ok: true, filtered: 100}
	pos := &fakePos{z: 30, target: 40}
	tr := newTestTracking(alt, pos)

	tr.UpdateSurfaceOffset(time.Unix(100, 0), 100*time.Millisecond)
	if pos.z != 0 || pos.target != 0 {
		t.Fatalf("offsets=%v/%v want zeroed while disabled", pos.z, pos.target)
	}
	if tr.HasTarget() {
		t.Fatalf("target latched while disabled")
	}
}

func TestHoldsDepthWithoutUsableReading(t *testing.T) {
	alt := &fakeAlt{ok: false, filtered: 100}
	pos := &fakePos{z: 5, target: 5}
	tr := newTestTracking(alt, pos)
	now := time.Unix(100, 0)
	tr.Enable(true, now)

	tr.UpdateSurfaceOffset(now, 100*time.Millisecond)
	if tr.HasTarget() {
		t.Fatalf("target latched without a usable reading")
	}
	if pos.z != 5 || pos.target != 5 {
		t.Fatalf("offsets=%v/%v want untouched while holding depth", pos.z, pos.target)
	}
}

func TestLatchesTargetOnFirstUsableReading(t *testing.T) {
	alt := &fakeAlt{ok: true, filtered: 100}
	pos := &fakePos{z: 30, target: 40}
	tr := newTestTracking(alt, pos)
	now := time.Unix(100, 0)
	tr.Enable(true, now)

	tr.UpdateSurfaceOffset(now, 100*time.Millisecond)
	if !tr.HasTarget() {
		t.Fatalf("expected target latched")
	}
	if got := tr.TargetRangefinderCm(); got != 100 {
		t.Fatalf("target=%v want 100", got)
	}
	// Latching starts the offset ramp from zero, and at the target distance
	// the controller commands no movement.
	if pos.z != 0 || pos.target != 0 {
		t.Fatalf("offsets=%v/%v want 0/0 right after latch", pos.z, pos.target)
	}
}

func TestStepsTowardLatchedDistance(t *testing.T) {
	alt := &fakeAlt{ok: true, filtered: 100}
	pos := &fakePos{}
	tr := newTestTracking(alt, pos)
	now := time.Unix(100, 0)
	tr.Enable(true, now)

	tr.UpdateSurfaceOffset(now, 100*time.Millisecond)

	// Terrain rose 10 cm: vehicle is too close, offset target must climb.
	alt.filtered = 90
	tr.UpdateSurfaceOffset(now.Add(100*time.Millisecond), 100*time.Millisecond)
	if pos.target != 10 {
		t.Fatalf("offset target=%v want +10 (P=1, error=10)", pos.target)
	}

	// A glitch does not re-latch: the target distance stands.
	if got := tr.TargetRangefinderCm(); got != 100 {
		t.Fatalf("target=%v want 100 unchanged", got)
	}
}

func TestUnusableReadingHoldsLastOffsetTarget(t *testing.T) {
	alt := &fakeAlt{ok: true, filtered: 100}
	pos := &fakePos{}
	tr := newTestTracking(alt, pos)
	now := time.Unix(100, 0)
	tr.Enable(true, now)

	tr.UpdateSurfaceOffset(now, 100*time.Millisecond)
	alt.filtered = 90
	tr.UpdateSurfaceOffset(now.Add(100*time.Millisecond), 100*time.Millisecond)
	held := pos.target

	alt.ok = false
	tr.UpdateSurfaceOffset(now.Add(200*time.Millisecond), 100*time.Millisecond)
	if pos.target != held {
		t.Fatalf("offset target=%v want held at %v while rangefinder unusable", pos.target, held)
	}
	if !tr.HasTarget() {
		t.Fatalf("target dropped on a transient rangefinder gap")
	}
}

func TestApplyDeltaShiftsTarget(t *testing.T) {
	alt := &fakeAlt{ok: true, filtered: 100}
	pos := &fakePos{}
	tr := newTestTracking(alt, pos)
	now := time.Unix(100, 0)
	tr.Enable(true, now)
	tr.UpdateSurfaceOffset(now, 100*time.Millisecond)

	tr.ApplyDeltaOrReset(25)
	if got := tr.TargetRangefinderCm(); got != 125 {
		t.Fatalf("target=%v want 125 after +25 delta", got)
	}

	tr.Reset()
	if tr.HasTarget() {
		t.Fatalf("expected reset state")
	}
	if got := tr.TargetRangefinderCm(); got != 0 {
		t.Fatalf("target=%v want 0 in reset state", got)
	}

	// With no target latched a delta is a no-op.
	tr.ApplyDeltaOrReset(25)
	if tr.HasTarget() {
		t.Fatalf("delta latched a target from reset state")
	}
}

func TestEnableReentersResetState(t *testing.T) {
	alt := &fakeAlt{ok: true, filtered: 100}
	pos := &fakePos{}
	tr := newTestTracking(alt, pos)
	now := time.Unix(100, 0)
	tr.Enable(true, now)
	tr.UpdateSurfaceOffset(now, 100*time.Millisecond)
	if !tr.HasTarget() {
		t.Fatalf("expected target latched")
	}

	tr.Enable(true, now.Add(time.Second))
	if tr.HasTarget() {
		t.Fatalf("re-enable kept the old target")
	}
}
