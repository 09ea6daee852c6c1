package nav

import "testing"

func TestWaypointTerrainOffset(t *testing.T) {
	w := NewWaypoint(true)

	if got := w.TerrainOffset(); got.Enabled || got.Healthy || got.OffsetCm != 0 {
		t.Fatalf("initial offset=%+v want zero value", got)
	}

	w.SetTerrainOffset(true, true, -1300)
	got := w.TerrainOffset()
	if !got.Enabled || !got.Healthy || got.OffsetCm != -1300 {
		t.Fatalf("offset=%+v want enabled/healthy/-1300", got)
	}
}

func TestWaypointUseFlag(t *testing.T) {
	w := NewWaypoint(true)
	if !w.RangefinderUsed() {
		t.Fatalf("expected use flag set")
	}
	w.SetRangefinderUse(false)
	if w.RangefinderUsed() {
		t.Fatalf("expected use flag cleared")
	}

	if NewWaypoint(false).RangefinderUsed() {
		t.Fatalf("expected use flag cleared from constructor")
	}
}

func TestCircleTerrainOffset(t *testing.T) {
	c := NewCircle()
	c.SetTerrainOffset(true, false, 250)
	got := c.TerrainOffset()
	if !got.Enabled || got.Healthy || got.OffsetCm != 250 {
		t.Fatalf("offset=%+v want enabled/unhealthy/250", got)
	}
}

func TestPosControlSlew(t *testing.T) {
	p := NewPosControl()
	p.SetPosOffsetTargetZCm(25)

	p.Step()
	if got := p.PosOffsetZCm(); got != 10 {
		t.Fatalf("offset=%v want 10 after one step", got)
	}
	p.Step()
	if got := p.PosOffsetZCm(); got != 20 {
		t.Fatalf("offset=%v want 20 after two steps", got)
	}
	p.Step()
	if got := p.PosOffsetZCm(); got != 25 {
		t.Fatalf("offset=%v want 25 (reached target)", got)
	}
	p.Step()
	if got := p.PosOffsetZCm(); got != 25 {
		t.Fatalf("offset=%v want 25 (hold at target)", got)
	}

	// Slews down too.
	p.SetPosOffsetTargetZCm(0)
	p.Step()
	if got := p.PosOffsetZCm(); got != 15 {
		t.Fatalf("offset=%v want 15 slewing down", got)
	}
}
