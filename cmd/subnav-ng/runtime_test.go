package main

import (
	"testing"
	"time"

	"subnav-ng/internal/config"
	"subnav-ng/internal/web"
)

func simConfig(t *testing.T) config.Config {
	t.Helper()
	var cfg config.Config
	cfg.Surface.Enable = true
	if err := config.DefaultAndValidate(&cfg); err != nil {
		t.Fatalf("defaults: %v", err)
	}
	return cfg
}

func TestRuntimeRunsOnSimulatedSensors(t *testing.T) {
	cfg := simConfig(t)
	status := web.NewStatus()

	rt, err := newRuntime(cfg, status)
	if err != nil {
		t.Fatalf("newRuntime: %v", err)
	}
	defer rt.close()

	now := time.Now().UTC()
	const ticks = 15
	for i := 0; i < ticks; i++ {
		rt.tick(now)
		now = now.Add(cfg.Loop.Interval)
	}

	snap := status.Snapshot(now)
	if snap.Cycles != ticks {
		t.Fatalf("cycles=%d want %d", snap.Cycles, ticks)
	}
	if !snap.Altitude.Enabled {
		t.Fatalf("altitude pipeline not enabled: %+v", snap.Altitude)
	}
	// 15 good samples clears the 10-sample gate.
	if !snap.Altitude.Healthy || !snap.Altitude.Usable {
		t.Fatalf("altitude=%+v want healthy and usable", snap.Altitude)
	}
	if snap.Altitude.AltCm <= 0 {
		t.Fatalf("alt_cm=%d want a positive range to the seafloor", snap.Altitude.AltCm)
	}
	if !snap.Baro.Healthy {
		t.Fatalf("baro=%+v want healthy", snap.Baro)
	}
	// The vehicle is submerged: depth must read negative and the surface
	// reference must not have been recalibrated.
	if snap.Baro.AltitudeCm >= 0 {
		t.Fatalf("baro altitude=%d want negative at depth", snap.Baro.AltitudeCm)
	}
	if !snap.Terrain.Waypoint.Enabled || !snap.Terrain.Waypoint.Healthy {
		t.Fatalf("wp terrain=%+v want enabled/healthy", snap.Terrain.Waypoint)
	}
	if snap.Terrain.Waypoint.OffsetCm >= 0 {
		t.Fatalf("wp offset=%v want negative (seafloor below origin)", snap.Terrain.Waypoint.OffsetCm)
	}
	if snap.Terrain.Circle != snap.Terrain.Waypoint {
		t.Fatalf("circle=%+v want same triple as waypoint", snap.Terrain.Circle)
	}
	if !snap.Surface.Enabled || !snap.Surface.HasTarget {
		t.Fatalf("surface=%+v want enabled with a latched target", snap.Surface)
	}
	if snap.Surface.TargetRangefinderCm <= 0 {
		t.Fatalf("surface target=%v want positive", snap.Surface.TargetRangefinderCm)
	}
}

func TestRuntimeDisabledRangefinder(t *testing.T) {
	cfg := simConfig(t)
	cfg.Rangefinder.Driver = "none"
	status := web.NewStatus()

	rt, err := newRuntime(cfg, status)
	if err != nil {
		t.Fatalf("newRuntime: %v", err)
	}
	defer rt.close()

	now := time.Now().UTC()
	for i := 0; i < 5; i++ {
		rt.tick(now)
		now = now.Add(cfg.Loop.Interval)
	}

	snap := status.Snapshot(now)
	if snap.Altitude.Enabled || snap.Altitude.Healthy || snap.Altitude.Usable {
		t.Fatalf("altitude=%+v want disabled", snap.Altitude)
	}
	if snap.Altitude.AltCm != 0 {
		t.Fatalf("alt_cm=%d want 0 while disabled", snap.Altitude.AltCm)
	}
	if snap.Terrain.Waypoint.Enabled || snap.Terrain.Circle.Enabled {
		t.Fatalf("terrain=%+v want disabled consumers", snap.Terrain)
	}
	// Surface tracking never latches without a usable rangefinder.
	if snap.Surface.HasTarget {
		t.Fatalf("surface=%+v want no target", snap.Surface)
	}
}
