// Package hcsr04 drives an HC-SR04 style ultrasonic rangefinder: a trigger
// pulse starts a ping, and the echo line goes high for the time of flight.
// Linux only (GPIO character device); other platforms get a stub that fails
// at construction so the pipeline falls back to its disabled contract.
//
// The sensor reports no signal quality, so quality is always "unknown",
// which the health gate treats as passing.
package hcsr04

import (
	"time"

	"subnav-ng/internal/rangefinder"
)

// Speed of sound in air at ~20 C. The HC-SR04 is an in-air sensor; for
// underwater vehicles it only makes sense on a surface skid or bench rig.
const speedOfSoundMPerS = 343.0

// Config describes the wiring and advertised range.
type Config struct {
	Chip        string // e.g. /dev/gpiochip0
	TriggerPin  int    // BCM line offset
	EchoPin     int    // BCM line offset
	Orientation rangefinder.Orientation
	MinCm       int
	MaxCm       int
}

func (c *Config) applyDefaults() {
	if c.Chip == "" {
		c.Chip = "/dev/gpiochip0"
	}
	if c.MinCm <= 0 {
		c.MinCm = 2
	}
	if c.MaxCm <= 0 {
		c.MaxCm = 400
	}
}

// pulseToCm converts an echo pulse width to centimeters. The sound travels
// out and back, so the one-way distance is half the flight time.
func pulseToCm(d time.Duration) int {
	meters := d.Seconds() * speedOfSoundMPerS / 2
	return int(meters * 100)
}

// Device implements rangefinder.Source over a measure function supplied by
// the platform backend.
type Device struct {
	cfg     Config
	clock   func() time.Time
	tracker *rangefinder.Tracker
	measure func() (time.Duration, error)
	close   func() error
}

func (d *Device) Close() error {
	if d == nil || d.close == nil {
		return nil
	}
	return d.close()
}

// Update fires one ping and records the result.
func (d *Device) Update() {
	now := d.clock()
	pulse, err := d.measure()
	if err != nil {
		d.tracker.Miss(now)
		return
	}
	d.tracker.Set(now, pulseToCm(pulse), rangefinder.QualityUnknown)
}

func (d *Device) HasOrientation(o rangefinder.Orientation) bool {
	return o == d.cfg.Orientation
}

func (d *Device) Status(o rangefinder.Orientation) rangefinder.Status {
	if o != d.cfg.Orientation {
		return rangefinder.StatusNotConnected
	}
	return d.tracker.Status()
}

func (d *Device) ValidCount(o rangefinder.Orientation) uint {
	if o != d.cfg.Orientation {
		return 0
	}
	return d.tracker.ValidCount()
}

func (d *Device) SignalQualityPct(o rangefinder.Orientation) int {
	return rangefinder.QualityUnknown
}

func (d *Device) DistanceCm(o rangefinder.Orientation) int {
	if o != d.cfg.Orientation {
		return 0
	}
	return d.tracker.DistanceCm()
}

func (d *Device) MinDistanceCm(o rangefinder.Orientation) int {
	if o != d.cfg.Orientation {
		return 0
	}
	return d.cfg.MinCm
}

func (d *Device) MaxDistanceCm(o rangefinder.Orientation) int {
	if o != d.cfg.Orientation {
		return 0
	}
	return d.cfg.MaxCm
}
