// Package altitude fuses a depth barometer and a downward rangefinder into a
// terrain offset for the navigation controllers.
//
// Per control cycle: the barometer is read and re-calibrated if it claims the
// vehicle is above the surface, the rangefinder sample is gated by status /
// consecutive-count / signal-quality checks, the raw distance is corrected for
// vehicle tilt, a stale-aware low-pass filter smooths the corrected altitude,
// and (vertical position - filtered altitude) is published to the waypoint and
// circle consumers.
package altitude

import (
	"math"
	"sync"
	"time"

	"subnav-ng/internal/attitude"
	"subnav-ng/internal/baro"
	"subnav-ng/internal/rangefinder"
)

const (
	// Consecutive good samples required before the reading is trusted.
	DefaultHealthMinCount = 10

	// Signal quality must exceed this (or be unreported) to count as healthy.
	DefaultMinSignalQualityPct = 90

	// Gain for the terrain filter blend step.
	DefaultFilterGain = 0.05

	// A healthy-sample gap longer than this resets the filter.
	DefaultTimeout = 1 * time.Second

	// Tilt correction factor never drops below cos(45 deg); beyond that the
	// reading is left under-corrected rather than inflated without bound.
	DefaultTiltFloor = 0.707
)

// Config tunes the health gate and filter. Zero values take the defaults.
type Config struct {
	Orientation         rangefinder.Orientation
	HealthMinCount      uint
	MinSignalQualityPct int
	FilterGain          float64
	Timeout             time.Duration
	TiltFloor           float64
}

func (c *Config) applyDefaults() {
	if c.HealthMinCount == 0 {
		c.HealthMinCount = DefaultHealthMinCount
	}
	if c.MinSignalQualityPct == 0 {
		c.MinSignalQualityPct = DefaultMinSignalQualityPct
	}
	if c.FilterGain == 0 {
		c.FilterGain = DefaultFilterGain
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.TiltFloor == 0 {
		c.TiltFloor = DefaultTiltFloor
	}
}

// State is the per-cycle output of the pipeline. Mutated only by
// ReadRangefinder; everyone else gets copies.
type State struct {
	Enabled       bool
	Healthy       bool
	AltCm         int
	MinCm         int
	MaxCm         int
	FilteredAltCm float64
	LastHealthyAt time.Time
}

// Consumer accepts the published terrain offset.
type Consumer interface {
	SetTerrainOffset(enabled, healthy bool, offsetCm float64)
}

// WaypointConsumer additionally reports whether it actually uses the
// rangefinder offset; the circle consumer's enable flag is gated on that.
type WaypointConsumer interface {
	Consumer
	RangefinderUsed() bool
}

// PositionSource is the inertial estimator's vertical position (up positive).
type PositionSource interface {
	VerticalPositionCm() float64
}

// Service runs the altitude pipeline. Single writer (the control loop); the
// read accessors may be called from other goroutines.
type Service struct {
	cfg Config

	rf     rangefinder.Source
	baro   *baro.Sensor
	att    attitude.Provider
	pos    PositionSource
	wp     WaypointConsumer
	circle Consumer

	mu    sync.RWMutex
	state State
	filt  LowPass
}

// New probes the rangefinder for the configured orientation; a sensor that
// cannot report in that orientation leaves the pipeline permanently disabled.
func New(cfg Config, rf rangefinder.Source, b *baro.Sensor, att attitude.Provider, pos PositionSource, wp WaypointConsumer, circle Consumer) *Service {
	cfg.applyDefaults()
	if rf == nil {
		rf = rangefinder.Disabled{}
	}
	if att == nil {
		att = attitude.Level{}
	}
	s := &Service{
		cfg:    cfg,
		rf:     rf,
		baro:   b,
		att:    att,
		pos:    pos,
		wp:     wp,
		circle: circle,
	}
	s.state.Enabled = rf.HasOrientation(cfg.Orientation)
	return s
}

// ReadBarometer refreshes the depth sensor and triggers its self-calibration
// when the implied altitude is above the surface; even a few meters of
// ambient pressure drift should never read positive near the surface. The
// returned health flag is for the orchestrating loop to record.
func (s *Service) ReadBarometer() bool {
	if s.baro == nil {
		return false
	}
	s.baro.Update()
	if s.baro.AltitudeCm() > 0 {
		s.baro.Calibrate()
	}
	return s.baro.Healthy()
}

// ReadRangefinder runs one sampling cycle at the given time: health gate,
// tilt correction, filter update, and publication to both nav consumers.
func (s *Service) ReadRangefinder(now time.Time) {
	s.mu.Lock()

	if !s.state.Enabled {
		s.state.Healthy = false
		s.state.AltCm = 0
	} else {
		o := s.cfg.Orientation
		s.rf.Update()

		quality := s.rf.SignalQualityPct(o)
		s.state.Healthy = s.rf.Status(o) == rangefinder.StatusGood &&
			s.rf.ValidCount(o) >= s.cfg.HealthMinCount &&
			(quality == rangefinder.QualityUnknown || quality > s.cfg.MinSignalQualityPct)

		s.state.AltCm = correctForTilt(s.rf.DistanceCm(o), s.att.BodyToNEDZZ(), s.cfg.TiltFloor)
		s.state.MinCm = s.rf.MinDistanceCm(o)
		s.state.MaxCm = s.rf.MaxDistanceCm(o)

		if s.state.Healthy {
			if now.Sub(s.state.LastHealthyAt) > s.cfg.Timeout {
				// Long gap: start over instead of blending into stale history.
				s.filt.Reset(float64(s.state.AltCm))
			} else {
				s.filt.Apply(float64(s.state.AltCm), s.cfg.FilterGain)
			}
			s.state.LastHealthyAt = now
		}
		s.state.FilteredAltCm = s.filt.Get()
	}

	enabled := s.state.Enabled
	healthy := s.state.Healthy
	var offsetCm float64
	if s.pos != nil {
		offsetCm = s.pos.VerticalPositionCm() - s.filt.Get()
	}
	s.mu.Unlock()

	// Publish outside the lock; consumers may be queried concurrently.
	if s.wp != nil {
		s.wp.SetTerrainOffset(enabled, healthy, offsetCm)
		if s.circle != nil {
			s.circle.SetTerrainOffset(enabled && s.wp.RangefinderUsed(), healthy, offsetCm)
		}
	} else if s.circle != nil {
		s.circle.SetTerrainOffset(false, healthy, offsetCm)
	}
}

// AltOK reports whether the rangefinder altitude is usable right now. Uses
// the same timeout constant as the filter reset so the two views agree.
func (s *Service) AltOK(now time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Enabled && s.state.Healthy && now.Sub(s.state.LastHealthyAt) < s.cfg.Timeout
}

// State returns a copy of the current pipeline state.
func (s *Service) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// FilteredAltCm returns the current filter output.
func (s *Service) FilteredAltCm() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.FilteredAltCm
}

// correctForTilt rescales a raw range by the cosine of vehicle tilt, floored
// so extreme tilt cannot blow the reading up.
func correctForTilt(rawCm int, bodyToNEDZZ, floor float64) int {
	return int(float64(rawCm) * math.Max(floor, bodyToNEDZZ))
}
