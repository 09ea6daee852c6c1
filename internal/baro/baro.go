// Package baro converts ambient pressure into a vertical altitude relative to
// the surface. Underwater the reading is hydrostatic depth (negative
// altitude); a positive altitude means the surface reference is wrong and the
// sensor needs recalibration.
package baro

import "fmt"

const (
	// Standard sea-level pressure, used before the first calibration.
	defaultSurfacePressureMbar = 1013.25

	// Nominal seawater density. Freshwater operators override via config.
	DefaultWaterDensityKgM3 = 1029.0

	gravityMS2 = 9.80665

	// 1 mbar = 100 Pa.
	paPerMbar = 100.0
)

// PressureSource is a non-blocking read of the most recent ambient pressure.
type PressureSource interface {
	ReadPressureMbar() (float64, error)
}

// Sensor owns the surface-pressure reference and derives altitude from a
// PressureSource. Update is called once per control cycle; the getters return
// the cached result of the last Update.
type Sensor struct {
	src PressureSource

	surfacePressureMbar float64
	waterDensityKgM3    float64

	pressureMbar float64
	healthy      bool
}

func NewSensor(src PressureSource, waterDensityKgM3 float64) (*Sensor, error) {
	if src == nil {
		return nil, fmt.Errorf("baro: pressure source is nil")
	}
	if waterDensityKgM3 <= 0 {
		waterDensityKgM3 = DefaultWaterDensityKgM3
	}
	return &Sensor{
		src:                 src,
		surfacePressureMbar: defaultSurfacePressureMbar,
		waterDensityKgM3:    waterDensityKgM3,
	}, nil
}

// Update refreshes the cached pressure. A failed or implausible read marks
// the sensor unhealthy for this cycle but keeps the last pressure value.
func (s *Sensor) Update() {
	p, err := s.src.ReadPressureMbar()
	if err != nil || p <= 0 {
		s.healthy = false
		return
	}
	s.pressureMbar = p
	s.healthy = true
}

// AltitudeCm returns the altitude relative to the calibrated surface in
// centimeters. Below the surface the value is negative.
func (s *Sensor) AltitudeCm() int {
	dPa := (s.surfacePressureMbar - s.pressureMbar) * paPerMbar
	meters := dPa / (s.waterDensityKgM3 * gravityMS2)
	return int(meters * 100)
}

// Calibrate adopts the current pressure as the surface reference. Safe to
// call repeatedly; each call simply re-zeros on the latest reading.
func (s *Sensor) Calibrate() {
	if s.pressureMbar > 0 {
		s.surfacePressureMbar = s.pressureMbar
	}
}

// Healthy reports whether the last Update produced a usable pressure.
func (s *Sensor) Healthy() bool { return s.healthy }

// PressureMbar returns the last cached pressure.
func (s *Sensor) PressureMbar() float64 { return s.pressureMbar }

// SurfacePressureMbar returns the current surface reference.
func (s *Sensor) SurfacePressureMbar() float64 { return s.surfacePressureMbar }
