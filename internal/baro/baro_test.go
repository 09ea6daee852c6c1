package baro

import (
	"fmt"
	"testing"
)

type stubSource struct {
	mbar float64
	err  error
}

func (s *stubSource) ReadPressureMbar() (float64, error) { return s.mbar, s.err }

// mbarAtDepthCm returns the ambient pressure at the given depth below a
// 1013.25 mbar surface, for the default seawater density.
func mbarAtDepthCm(depthCm float64) float64 {
	return defaultSurfacePressureMbar + depthCm/100.0*DefaultWaterDensityKgM3*gravityMS2/paPerMbar
}

func TestAltitudeFromPressure(t *testing.T) {
	src := &stubSource{mbar: mbarAtDepthCm(500)}
	s, err := NewSensor(src, 0)
	if err != nil {
		t.Fatalf("NewSensor: %v", err)
	}
	s.Update()
	if !s.Healthy() {
		t.Fatalf("expected healthy sensor")
	}
	if got := s.AltitudeCm(); got < -501 || got > -499 {
		t.Fatalf("altitude=%d want ~-500 at 5 m depth", got)
	}

	src.mbar = defaultSurfacePressureMbar
	s.Update()
	if got := s.AltitudeCm(); got != 0 {
		t.Fatalf("altitude=%d want 0 at the surface", got)
	}
}

func TestCalibrateRezeros(t *testing.T) {
	// Sensor bias: reads 20 mbar high at the true surface.
	src := &stubSource{mbar: defaultSurfacePressureMbar + 20}
	s, err := NewSensor(src, 0)
	if err != nil {
		t.Fatalf("NewSensor: %v", err)
	}
	s.Update()
	if got := s.AltitudeCm(); got >= 0 {
		t.Fatalf("altitude=%d want negative before calibration", got)
	}

	s.Calibrate()
	if got := s.AltitudeCm(); got != 0 {
		t.Fatalf("altitude=%d want 0 after calibration", got)
	}
	if got := s.SurfacePressureMbar(); got != src.mbar {
		t.Fatalf("surface=%v want %v", got, src.mbar)
	}
}

func TestUpdateFailureKeepsLastPressure(t *testing.T) {
	src := &stubSource{mbar: mbarAtDepthCm(300)}
	s, err := NewSensor(src, 0)
	if err != nil {
		t.Fatalf("NewSensor: %v", err)
	}
	s.Update()
	last := s.PressureMbar()

	src.err = fmt.Errorf("i2c read failed")
	s.Update()
	if s.Healthy() {
		t.Fatalf("expected unhealthy after read error")
	}
	if s.PressureMbar() != last {
		t.Fatalf("pressure=%v want last good %v", s.PressureMbar(), last)
	}

	// An implausible reading is also rejected.
	src.err = nil
	src.mbar = -1
	s.Update()
	if s.Healthy() {
		t.Fatalf("expected unhealthy on non-positive pressure")
	}
}

func TestNewSensorNilSource(t *testing.T) {
	if _, err := NewSensor(nil, 0); err == nil {
		t.Fatalf("expected error for nil source")
	}
}
