// Package web serves a small JSON status surface for the altitude pipeline:
// current sensor state, published terrain offsets, and recent logs. It is a
// debugging/verification aid, not a control interface.
package web

import (
	"sync/atomic"
	"time"
)

type Status struct {
	startUnixNano int64
	cycles        uint64
	lastTickNano  int64
	altitude      atomic.Value // AltitudeSnapshot
	baro          atomic.Value // BaroSnapshot
	terrain       atomic.Value // TerrainSnapshot
	surface       atomic.Value // SurfaceSnapshot
}

func NewStatus() *Status {
	s := &Status{}
	atomic.StoreInt64(&s.startUnixNano, time.Now().UTC().UnixNano())
	s.altitude.Store(AltitudeSnapshot{})
	s.baro.Store(BaroSnapshot{})
	s.terrain.Store(TerrainSnapshot{})
	s.surface.Store(SurfaceSnapshot{})
	return s
}

// AltitudeSnapshot mirrors the pipeline's per-cycle state.
type AltitudeSnapshot struct {
	Enabled        bool    `json:"enabled"`
	Healthy        bool    `json:"healthy"`
	Usable         bool    `json:"usable"`
	AltCm          int     `json:"alt_cm"`
	MinCm          int     `json:"min_cm"`
	MaxCm          int     `json:"max_cm"`
	FilteredAltCm  float64 `json:"filtered_alt_cm"`
	LastHealthyUTC string  `json:"last_healthy_utc,omitempty"`
}

type BaroSnapshot struct {
	Healthy             bool    `json:"healthy"`
	PressureMbar        float64 `json:"pressure_mbar"`
	SurfacePressureMbar float64 `json:"surface_pressure_mbar"`
	AltitudeCm          int     `json:"altitude_cm"`
}

// ConsumerSnapshot is one navigation consumer's last received triple.
type ConsumerSnapshot struct {
	Enabled  bool    `json:"enabled"`
	Healthy  bool    `json:"healthy"`
	OffsetCm float64 `json:"offset_cm"`
}

type TerrainSnapshot struct {
	Waypoint ConsumerSnapshot `json:"waypoint"`
	Circle   ConsumerSnapshot `json:"circle"`
}

type SurfaceSnapshot struct {
	Enabled             bool    `json:"enabled"`
	HasTarget           bool    `json:"has_target"`
	TargetRangefinderCm float64 `json:"target_rangefinder_cm"`
	PosOffsetZCm        float64 `json:"pos_offset_z_cm"`
	PosOffsetTargetZCm  float64 `json:"pos_offset_target_z_cm"`
}

func (s *Status) SetAltitude(a AltitudeSnapshot) { s.altitude.Store(a) }
func (s *Status) SetBaro(b BaroSnapshot)         { s.baro.Store(b) }
func (s *Status) SetTerrain(t TerrainSnapshot)   { s.terrain.Store(t) }
func (s *Status) SetSurface(sf SurfaceSnapshot)  { s.surface.Store(sf) }

// MarkCycle records one completed control-loop tick.
func (s *Status) MarkCycle(nowUTC time.Time) {
	if nowUTC.IsZero() {
		nowUTC = time.Now().UTC()
	}
	atomic.StoreInt64(&s.lastTickNano, nowUTC.UnixNano())
	atomic.AddUint64(&s.cycles, 1)
}

type StatusSnapshot struct {
	Service     string           `json:"service"`
	NowUTC      string           `json:"now_utc"`
	UptimeSec   int64            `json:"uptime_sec"`
	Cycles      uint64           `json:"cycles"`
	LastTickUTC string           `json:"last_tick_utc,omitempty"`
	Altitude    AltitudeSnapshot `json:"altitude"`
	Baro        BaroSnapshot     `json:"baro"`
	Terrain     TerrainSnapshot  `json:"terrain"`
	Surface     SurfaceSnapshot  `json:"surface"`
}

func (s *Status) Snapshot(nowUTC time.Time) StatusSnapshot {
	if nowUTC.IsZero() {
		nowUTC = time.Now().UTC()
	}
	start := time.Unix(0, atomic.LoadInt64(&s.startUnixNano)).UTC()
	lastTick := atomic.LoadInt64(&s.lastTickNano)

	snap := StatusSnapshot{
		Service:   "subnav-ng",
		NowUTC:    nowUTC.UTC().Format(time.RFC3339Nano),
		UptimeSec: int64(nowUTC.Sub(start).Seconds()),
		Cycles:    atomic.LoadUint64(&s.cycles),
		Altitude:  s.altitude.Load().(AltitudeSnapshot),
		Baro:      s.baro.Load().(BaroSnapshot),
		Terrain:   s.terrain.Load().(TerrainSnapshot),
		Surface:   s.surface.Load().(SurfaceSnapshot),
	}
	if lastTick != 0 {
		snap.LastTickUTC = time.Unix(0, lastTick).UTC().Format(time.RFC3339Nano)
	}
	return snap
}
