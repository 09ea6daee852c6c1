package attitude

import (
	"math"
	"testing"
)

func TestLevelProvider(t *testing.T) {
	if got := (Level{}).BodyToNEDZZ(); got != 1.0 {
		t.Fatalf("level zz=%v want 1.0", got)
	}
}

func TestEstimatorLevelBeforeFirstEstimate(t *testing.T) {
	e := NewEstimator()
	if got := e.BodyToNEDZZ(); got != 1.0 {
		t.Fatalf("zz=%v want 1.0 before first estimate", got)
	}
	if _, _, valid := e.EulerDeg(); valid {
		t.Fatalf("estimate marked valid before first set")
	}
}

func TestEstimatorEulerDeg(t *testing.T) {
	e := NewEstimator()

	e.SetEulerDeg(0, 0)
	if got := e.BodyToNEDZZ(); math.Abs(got-1.0) > 1e-12 {
		t.Fatalf("zz=%v want 1.0 when level", got)
	}

	e.SetEulerDeg(45, 0)
	if got := e.BodyToNEDZZ(); math.Abs(got-math.Sqrt2/2) > 1e-12 {
		t.Fatalf("zz=%v want sqrt(2)/2 at 45 deg roll", got)
	}

	e.SetEulerDeg(30, 30)
	want := math.Cos(30*math.Pi/180) * math.Cos(30*math.Pi/180)
	if got := e.BodyToNEDZZ(); math.Abs(got-want) > 1e-12 {
		t.Fatalf("zz=%v want %v", got, want)
	}

	roll, pitch, valid := e.EulerDeg()
	if !valid || math.Abs(roll-30) > 1e-9 || math.Abs(pitch-30) > 1e-9 {
		t.Fatalf("euler=%v,%v,%v want 30,30,true", roll, pitch, valid)
	}
}

func TestEstimatorFromAccel(t *testing.T) {
	e := NewEstimator()

	// Pure gravity along body z: level.
	e.SetFromAccel(0, 0, 1)
	if got := e.BodyToNEDZZ(); math.Abs(got-1.0) > 1e-12 {
		t.Fatalf("zz=%v want 1.0 for level gravity vector", got)
	}

	// 45 degrees of roll.
	e.SetFromAccel(0, 1, 1)
	if got := e.BodyToNEDZZ(); math.Abs(got-math.Sqrt2/2) > 1e-9 {
		t.Fatalf("zz=%v want sqrt(2)/2", got)
	}

	// A zero vector is ignored.
	e.SetFromAccel(0, 0, 0)
	if got := e.BodyToNEDZZ(); math.Abs(got-math.Sqrt2/2) > 1e-9 {
		t.Fatalf("zero accel vector overwrote the estimate: zz=%v", got)
	}
}
