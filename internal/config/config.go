// Package config loads and validates the YAML service configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Loop        LoopConfig        `yaml:"loop"`
	Altitude    AltitudeConfig    `yaml:"altitude"`
	Rangefinder RangefinderConfig `yaml:"rangefinder"`
	Baro        BaroConfig        `yaml:"baro"`
	Nav         NavConfig         `yaml:"nav"`
	Surface     SurfaceConfig     `yaml:"surface"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
	Web         WebConfig         `yaml:"web"`
	Sim         SimConfig         `yaml:"sim"`
}

type LoopConfig struct {
	Interval time.Duration `yaml:"interval"`
}

type AltitudeConfig struct {
	Orientation         string        `yaml:"orientation"`
	HealthMinCount      uint          `yaml:"health_min_count"`
	MinSignalQualityPct int           `yaml:"min_signal_quality_pct"`
	FilterGain          float64       `yaml:"filter_gain"`
	Timeout             time.Duration `yaml:"timeout"`
	TiltFloor           float64       `yaml:"tilt_floor"`
}

type RangefinderConfig struct {
	Driver string       `yaml:"driver"` // sim, ping, hcsr04, none
	Ping   PingConfig   `yaml:"ping"`
	HCSR04 HCSR04Config `yaml:"hcsr04"`
}

type PingConfig struct {
	Port  string `yaml:"port"`
	Baud  int    `yaml:"baud"`
	MinCm int    `yaml:"min_cm"`
	MaxCm int    `yaml:"max_cm"`
}

type HCSR04Config struct {
	Chip       string `yaml:"chip"`
	TriggerPin int    `yaml:"trigger_pin"`
	EchoPin    int    `yaml:"echo_pin"`
	MinCm      int    `yaml:"min_cm"`
	MaxCm      int    `yaml:"max_cm"`
}

type BaroConfig struct {
	Driver           string  `yaml:"driver"` // sim, ms5837
	I2CBus           int     `yaml:"i2c_bus"`
	Addr             uint16  `yaml:"addr"`
	WaterDensityKgM3 float64 `yaml:"water_density_kgm3"`
}

type NavConfig struct {
	// nil means the default (true): the waypoint controller acts on the
	// rangefinder terrain offset.
	WaypointUseRangefinder *bool `yaml:"waypoint_use_rangefinder"`
}

type SurfaceConfig struct {
	Enable bool      `yaml:"enable"`
	PID    PIDConfig `yaml:"pid"`
}

type PIDConfig struct {
	P         float64 `yaml:"p"`
	I         float64 `yaml:"i"`
	D         float64 `yaml:"d"`
	MaxStepCm float64 `yaml:"max_step_cm"`
}

type TelemetryConfig struct {
	Dest     string        `yaml:"dest"`
	Interval time.Duration `yaml:"interval"`
}

type WebConfig struct {
	Listen string `yaml:"listen"`
}

type SimConfig struct {
	DepthCm         float64       `yaml:"depth_cm"`
	DepthAmpCm      float64       `yaml:"depth_amp_cm"`
	SeafloorDepthCm float64       `yaml:"seafloor_depth_cm"`
	SeafloorAmpCm   float64       `yaml:"seafloor_amp_cm"`
	RollAmpDeg      float64       `yaml:"roll_amp_deg"`
	PitchAmpDeg     float64       `yaml:"pitch_amp_deg"`
	Period          time.Duration `yaml:"period"`
	DropoutFrac     float64       `yaml:"dropout_frac"`
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}
	if err := DefaultAndValidate(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultAndValidate fills zero values with defaults and rejects settings the
// pipeline cannot run with.
func DefaultAndValidate(cfg *Config) error {
	if cfg.Loop.Interval <= 0 {
		cfg.Loop.Interval = 100 * time.Millisecond
	}

	switch cfg.Altitude.Orientation {
	case "", "down", "forward", "up":
	default:
		return fmt.Errorf("altitude.orientation must be one of down, forward, up")
	}
	if cfg.Altitude.Orientation == "" {
		cfg.Altitude.Orientation = "down"
	}
	if cfg.Altitude.HealthMinCount == 0 {
		cfg.Altitude.HealthMinCount = 10
	}
	if cfg.Altitude.MinSignalQualityPct == 0 {
		cfg.Altitude.MinSignalQualityPct = 90
	}
	if cfg.Altitude.MinSignalQualityPct < 0 || cfg.Altitude.MinSignalQualityPct > 100 {
		return fmt.Errorf("altitude.min_signal_quality_pct must be in [0,100]")
	}
	if cfg.Altitude.FilterGain == 0 {
		cfg.Altitude.FilterGain = 0.05
	}
	if cfg.Altitude.FilterGain < 0 || cfg.Altitude.FilterGain > 1 {
		return fmt.Errorf("altitude.filter_gain must be in (0,1]")
	}
	if cfg.Altitude.Timeout <= 0 {
		cfg.Altitude.Timeout = 1 * time.Second
	}
	if cfg.Altitude.TiltFloor == 0 {
		cfg.Altitude.TiltFloor = 0.707
	}
	if cfg.Altitude.TiltFloor < 0 || cfg.Altitude.TiltFloor > 1 {
		return fmt.Errorf("altitude.tilt_floor must be in (0,1]")
	}

	switch cfg.Rangefinder.Driver {
	case "":
		cfg.Rangefinder.Driver = "sim"
	case "sim", "none":
	case "ping":
		if cfg.Rangefinder.Ping.Port == "" {
			return fmt.Errorf("rangefinder.ping.port is required when rangefinder.driver is 'ping'")
		}
		if cfg.Rangefinder.Ping.Baud == 0 {
			cfg.Rangefinder.Ping.Baud = 115200
		}
	case "hcsr04":
		if cfg.Rangefinder.HCSR04.TriggerPin <= 0 || cfg.Rangefinder.HCSR04.EchoPin <= 0 {
			return fmt.Errorf("rangefinder.hcsr04.trigger_pin and echo_pin are required when rangefinder.driver is 'hcsr04'")
		}
	default:
		return fmt.Errorf("rangefinder.driver must be one of sim, ping, hcsr04, none")
	}

	switch cfg.Baro.Driver {
	case "":
		cfg.Baro.Driver = "sim"
	case "sim":
	case "ms5837":
		if cfg.Baro.I2CBus == 0 {
			cfg.Baro.I2CBus = 1
		}
		if cfg.Baro.Addr == 0 {
			cfg.Baro.Addr = 0x76
		}
	default:
		return fmt.Errorf("baro.driver must be one of sim, ms5837")
	}
	if cfg.Baro.WaterDensityKgM3 == 0 {
		cfg.Baro.WaterDensityKgM3 = 1029
	}
	if cfg.Baro.WaterDensityKgM3 < 0 {
		return fmt.Errorf("baro.water_density_kgm3 must be > 0")
	}

	if cfg.Nav.WaypointUseRangefinder == nil {
		use := true
		cfg.Nav.WaypointUseRangefinder = &use
	}

	if cfg.Surface.PID.P == 0 {
		cfg.Surface.PID.P = 1.0
	}
	if cfg.Surface.PID.MaxStepCm == 0 {
		cfg.Surface.PID.MaxStepCm = 100
	}

	if cfg.Telemetry.Dest != "" && cfg.Telemetry.Interval <= 0 {
		cfg.Telemetry.Interval = 1 * time.Second
	}

	if cfg.Web.Listen == "" {
		cfg.Web.Listen = ":8080"
	}

	// Simulator defaults (safe even when unused).
	if cfg.Sim.DepthCm == 0 {
		cfg.Sim.DepthCm = 800
	}
	if cfg.Sim.DepthAmpCm == 0 {
		cfg.Sim.DepthAmpCm = 150
	}
	if cfg.Sim.SeafloorDepthCm == 0 {
		cfg.Sim.SeafloorDepthCm = 1200
	}
	if cfg.Sim.SeafloorAmpCm == 0 {
		cfg.Sim.SeafloorAmpCm = 50
	}
	if cfg.Sim.Period <= 0 {
		cfg.Sim.Period = 120 * time.Second
	}
	if cfg.Sim.DropoutFrac < 0 || cfg.Sim.DropoutFrac >= 1 {
		return fmt.Errorf("sim.dropout_frac must be in [0,1)")
	}

	return nil
}
