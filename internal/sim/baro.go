package sim

import "time"

const (
	surfacePressureMbar = 1013.25
	waterDensityKgM3    = 1029.0
	gravityMS2          = 9.80665
)

// Pressure is a simulated depth-sensor pressure source: hydrostatic pressure
// for the Vehicle's current depth.
type Pressure struct {
	Vehicle Vehicle

	// BiasMbar models a mis-calibrated surface reference; positive bias makes
	// the vehicle read shallower than it is (and above the surface when near
	// it), which is what triggers barometer recalibration downstream.
	BiasMbar float64

	clock func() time.Time
}

func NewPressure(v Vehicle) *Pressure {
	return &Pressure{Vehicle: v, clock: time.Now}
}

func (p *Pressure) ReadPressureMbar() (float64, error) {
	depthM := -p.Vehicle.VerticalPositionCm(p.clock()) / 100.0
	hydroPa := waterDensityKgM3 * gravityMS2 * depthM
	return surfacePressureMbar + hydroPa/100.0 - p.BiasMbar, nil
}
