package main

import (
	"fmt"
	"log"
	"time"

	"subnav-ng/internal/altitude"
	"subnav-ng/internal/attitude"
	"subnav-ng/internal/baro"
	"subnav-ng/internal/config"
	"subnav-ng/internal/i2c"
	"subnav-ng/internal/nav"
	"subnav-ng/internal/rangefinder"
	"subnav-ng/internal/rangefinder/hcsr04"
	"subnav-ng/internal/rangefinder/ping"
	"subnav-ng/internal/sensors/ms5837"
	"subnav-ng/internal/sim"
	"subnav-ng/internal/surface"
	"subnav-ng/internal/web"
)

// runtime wires the sensor drivers, the altitude pipeline, and the consumers
// together and owns the per-tick sequencing.
type runtime struct {
	cfg    config.Config
	status *web.Status

	vehicle *sim.Vehicle // nil when running on real sensors
	att     *attitude.Estimator
	baro    *baro.Sensor
	rf      rangefinder.Source

	wp     *nav.Waypoint
	circle *nav.Circle
	posCtl *nav.PosControl

	alt      *altitude.Service
	tracking *surface.Tracking

	closers  []func() error
	lastTick time.Time
}

// baroPosition uses the calibrated depth reading as the vertical position
// source. On vehicles with a full inertial estimator this is where it would
// plug in.
type baroPosition struct {
	b *baro.Sensor
}

func (p baroPosition) VerticalPositionCm() float64 {
	return float64(p.b.AltitudeCm())
}

// simPosition reads the true vertical position from the simulated vehicle.
type simPosition struct {
	v *sim.Vehicle
}

func (p simPosition) VerticalPositionCm() float64 {
	return p.v.VerticalPositionCm(time.Now())
}

func newRuntime(cfg config.Config, status *web.Status) (*runtime, error) {
	r := &runtime{cfg: cfg, status: status}

	orientation, ok := rangefinder.ParseOrientation(cfg.Altitude.Orientation)
	if !ok {
		return nil, fmt.Errorf("unknown rangefinder orientation %q", cfg.Altitude.Orientation)
	}

	simNeeded := cfg.Rangefinder.Driver == "sim" || cfg.Baro.Driver == "sim"
	if simNeeded {
		r.vehicle = &sim.Vehicle{
			DepthCm:         cfg.Sim.DepthCm,
			DepthAmpCm:      cfg.Sim.DepthAmpCm,
			SeafloorDepthCm: cfg.Sim.SeafloorDepthCm,
			SeafloorAmpCm:   cfg.Sim.SeafloorAmpCm,
			RollAmpDeg:      cfg.Sim.RollAmpDeg,
			PitchAmpDeg:     cfg.Sim.PitchAmpDeg,
			Period:          cfg.Sim.Period,
		}
	}

	r.att = attitude.NewEstimator()

	// Barometer (depth sensor).
	var pressure baro.PressureSource
	switch cfg.Baro.Driver {
	case "sim":
		pressure = sim.NewPressure(*r.vehicle)
	case "ms5837":
		bus, err := i2c.Open(fmt.Sprintf("/dev/i2c-%d", cfg.Baro.I2CBus))
		if err != nil {
			return nil, fmt.Errorf("baro: open i2c bus: %w", err)
		}
		r.closers = append(r.closers, bus.Close)
		dev, err := ms5837.New(bus.Dev(cfg.Baro.Addr))
		if err != nil {
			return nil, fmt.Errorf("baro: %w", err)
		}
		pressure = dev
	}
	b, err := baro.NewSensor(pressure, cfg.Baro.WaterDensityKgM3)
	if err != nil {
		return nil, err
	}
	r.baro = b

	// Rangefinder.
	switch cfg.Rangefinder.Driver {
	case "sim":
		simRF := sim.NewRangefinder(*r.vehicle, orientation)
		simRF.DropoutFrac = cfg.Sim.DropoutFrac
		r.rf = simRF
	case "ping":
		dev, err := ping.New(ping.Config{
			Port:        cfg.Rangefinder.Ping.Port,
			Baud:        cfg.Rangefinder.Ping.Baud,
			Orientation: orientation,
			MinCm:       cfg.Rangefinder.Ping.MinCm,
			MaxCm:       cfg.Rangefinder.Ping.MaxCm,
		})
		if err != nil {
			return nil, err
		}
		r.closers = append(r.closers, dev.Close)
		r.rf = dev
	case "hcsr04":
		dev, err := hcsr04.New(hcsr04.Config{
			Chip:        cfg.Rangefinder.HCSR04.Chip,
			TriggerPin:  cfg.Rangefinder.HCSR04.TriggerPin,
			EchoPin:     cfg.Rangefinder.HCSR04.EchoPin,
			Orientation: orientation,
			MinCm:       cfg.Rangefinder.HCSR04.MinCm,
			MaxCm:       cfg.Rangefinder.HCSR04.MaxCm,
		})
		if err != nil {
			return nil, err
		}
		r.closers = append(r.closers, dev.Close)
		r.rf = dev
	case "none":
		r.rf = rangefinder.Disabled{}
	}

	// Navigation consumers.
	r.wp = nav.NewWaypoint(*cfg.Nav.WaypointUseRangefinder)
	r.circle = nav.NewCircle()
	r.posCtl = nav.NewPosControl()

	var pos altitude.PositionSource
	if r.vehicle != nil {
		pos = simPosition{v: r.vehicle}
	} else {
		pos = baroPosition{b: r.baro}
	}

	r.alt = altitude.New(altitude.Config{
		Orientation:         orientation,
		HealthMinCount:      cfg.Altitude.HealthMinCount,
		MinSignalQualityPct: cfg.Altitude.MinSignalQualityPct,
		FilterGain:          cfg.Altitude.FilterGain,
		Timeout:             cfg.Altitude.Timeout,
		TiltFloor:           cfg.Altitude.TiltFloor,
	}, r.rf, r.baro, r.att, pos, r.wp, r.circle)

	r.tracking = surface.New(surface.PIDConfig{
		P:         cfg.Surface.PID.P,
		I:         cfg.Surface.PID.I,
		D:         cfg.Surface.PID.D,
		MaxStepCm: cfg.Surface.PID.MaxStepCm,
	}, r.alt, r.posCtl)

	if cfg.Surface.Enable {
		r.tracking.Enable(true, time.Now())
	}

	state := r.alt.State()
	log.Printf("altitude pipeline: rangefinder=%s orientation=%s enabled=%v",
		cfg.Rangefinder.Driver, orientation, state.Enabled)

	return r, nil
}

// tick runs one control cycle.
func (r *runtime) tick(now time.Time) {
	dt := now.Sub(r.lastTick)
	if r.lastTick.IsZero() || dt <= 0 {
		dt = r.cfg.Loop.Interval
	}
	r.lastTick = now

	if r.vehicle != nil {
		roll, pitch := r.vehicle.Attitude(now)
		r.att.SetEulerDeg(roll, pitch)
	}

	baroHealthy := r.alt.ReadBarometer()
	r.alt.ReadRangefinder(now)

	if r.cfg.Surface.Enable {
		r.tracking.UpdateSurfaceOffset(now, dt)
		r.posCtl.Step()
	}

	r.publishStatus(now, baroHealthy)
	r.status.MarkCycle(now)
}

func (r *runtime) publishStatus(now time.Time, baroHealthy bool) {
	state := r.alt.State()
	altSnap := web.AltitudeSnapshot{
		Enabled:       state.Enabled,
		Healthy:       state.Healthy,
		Usable:        r.alt.AltOK(now),
		AltCm:         state.AltCm,
		MinCm:         state.MinCm,
		MaxCm:         state.MaxCm,
		FilteredAltCm: state.FilteredAltCm,
	}
	if !state.LastHealthyAt.IsZero() {
		altSnap.LastHealthyUTC = state.LastHealthyAt.UTC().Format(time.RFC3339Nano)
	}
	r.status.SetAltitude(altSnap)

	r.status.SetBaro(web.BaroSnapshot{
		Healthy:             baroHealthy,
		PressureMbar:        r.baro.PressureMbar(),
		SurfacePressureMbar: r.baro.SurfacePressureMbar(),
		AltitudeCm:          r.baro.AltitudeCm(),
	})

	wpOff := r.wp.TerrainOffset()
	circleOff := r.circle.TerrainOffset()
	r.status.SetTerrain(web.TerrainSnapshot{
		Waypoint: web.ConsumerSnapshot{Enabled: wpOff.Enabled, Healthy: wpOff.Healthy, OffsetCm: wpOff.OffsetCm},
		Circle:   web.ConsumerSnapshot{Enabled: circleOff.Enabled, Healthy: circleOff.Healthy, OffsetCm: circleOff.OffsetCm},
	})

	r.status.SetSurface(web.SurfaceSnapshot{
		Enabled:             r.cfg.Surface.Enable,
		HasTarget:           r.tracking.HasTarget(),
		TargetRangefinderCm: r.tracking.TargetRangefinderCm(),
		PosOffsetZCm:        r.posCtl.PosOffsetZCm(),
		PosOffsetTargetZCm:  r.posCtl.PosOffsetTargetZCm(),
	})
}

func (r *runtime) close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		_ = r.closers[i]()
	}
}
