package altitude

import "testing"

func TestLowPassResetAndApply(t *testing.T) {
	var f LowPass

	f.Reset(100)
	if f.Get() != 100 {
		t.Fatalf("get=%v want 100 after reset", f.Get())
	}

	got := f.Apply(200, 0.05)
	if got != 105 {
		t.Fatalf("apply=%v want 105", got)
	}
	if f.Get() != got {
		t.Fatalf("get=%v want %v", f.Get(), got)
	}

	// Reset discards history entirely.
	f.Reset(42)
	if f.Get() != 42 {
		t.Fatalf("get=%v want 42 after second reset", f.Get())
	}
}

func TestLowPassGainClamp(t *testing.T) {
	var f LowPass

	f.Reset(100)
	if got := f.Apply(200, -0.5); got != 100 {
		t.Fatalf("negative gain moved output: %v", got)
	}
	if got := f.Apply(200, 2.0); got != 200 {
		t.Fatalf("gain>1 not clamped: %v", got)
	}
}
