// Package ping drives a Blue Robotics Ping1D echosounder over a serial port.
//
// The wire protocol frames every message as
//
//	'B' 'R' | payload len (u16 LE) | message id (u16 LE) | src | dst | payload | checksum (u16 LE)
//
// where the checksum is the additive sum of every preceding byte. Update
// polls the device for a distance_simple report (distance in mm plus a
// confidence percentage, which maps directly onto signal quality).
package ping

import (
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"

	"subnav-ng/internal/rangefinder"
)

const (
	msgGeneralRequest = 6
	msgDistanceSimple = 1211

	headerLen   = 8
	checksumLen = 2

	distanceSimplePayloadLen = 5

	defaultBaud = 115200
)

// Config describes the attached device.
type Config struct {
	Port        string
	Baud        int
	Orientation rangefinder.Orientation
	MinCm       int
	MaxCm       int
	ReadTimeout time.Duration
}

// Device implements rangefinder.Source for the mount orientation it was
// configured with.
type Device struct {
	cfg     Config
	port    io.ReadWriteCloser
	clock   func() time.Time
	tracker *rangefinder.Tracker

	// Unconsumed bytes from the previous read.
	buf []byte
}

// New opens the serial port and returns the driver.
func New(cfg Config) (*Device, error) {
	if cfg.Port == "" {
		return nil, fmt.Errorf("ping: port is required")
	}
	if cfg.Baud <= 0 {
		cfg.Baud = defaultBaud
	}
	if cfg.MinCm <= 0 {
		cfg.MinCm = 30
	}
	if cfg.MaxCm <= 0 {
		cfg.MaxCm = 5000
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 50 * time.Millisecond
	}

	mode := &serial.Mode{
		BaudRate: cfg.Baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(cfg.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("ping: open %s: %w", cfg.Port, err)
	}
	if err := port.SetReadTimeout(cfg.ReadTimeout); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("ping: set read timeout: %w", err)
	}

	return newWithPort(cfg, port), nil
}

func newWithPort(cfg Config, port io.ReadWriteCloser) *Device {
	return &Device{
		cfg:     cfg,
		port:    port,
		clock:   time.Now,
		tracker: rangefinder.NewTracker(cfg.MinCm, cfg.MaxCm, 500*time.Millisecond),
	}
}

func (d *Device) Close() error {
	if d == nil || d.port == nil {
		return nil
	}
	return d.port.Close()
}

// Update polls the sonar once. A failed poll is recorded as a miss; the
// tracker decides when misses degrade the status.
func (d *Device) Update() {
	now := d.clock()

	req := encodeFrame(msgGeneralRequest, requestPayload(msgDistanceSimple))
	if _, err := d.port.Write(req); err != nil {
		d.tracker.Miss(now)
		return
	}

	mm, confidence, err := d.readDistance()
	if err != nil {
		d.tracker.Miss(now)
		return
	}
	d.tracker.Set(now, int(mm/10), confidence)
}

// readDistance reads from the port until a distance_simple frame parses or
// the read times out.
func (d *Device) readDistance() (mm uint32, confidencePct int, err error) {
	tmp := make([]byte, 256)
	for attempts := 0; attempts < 4; attempts++ {
		n, rerr := d.port.Read(tmp)
		if n > 0 {
			d.buf = append(d.buf, tmp[:n]...)
			if id, payload, ok := scanFrame(&d.buf); ok {
				if id != msgDistanceSimple {
					continue
				}
				return parseDistanceSimple(payload)
			}
		}
		if rerr != nil {
			return 0, 0, rerr
		}
		if n == 0 {
			// Timeout with no data.
			break
		}
	}
	return 0, 0, fmt.Errorf("ping: no distance frame")
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
	if o != d.cfg.Orientation {
		return rangefinder.QualityUnknown
	}
	return d.tracker.SignalQualityPct()
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
