//go:build linux

package hcsr04

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"

	"subnav-ng/internal/rangefinder"
)

const (
	triggerPulse = 10 * time.Microsecond
	echoTimeout  = 60 * time.Millisecond
)

// New requests the trigger and echo lines from the GPIO character device.
// Echo edges are delivered by the kernel with event timestamps, so the pulse
// width does not depend on userspace scheduling.
func New(cfg Config) (*Device, error) {
	cfg.applyDefaults()
	if cfg.TriggerPin <= 0 || cfg.EchoPin <= 0 {
		return nil, fmt.Errorf("hcsr04: trigger and echo pins are required")
	}

	chip, err := gpiocdev.NewChip(cfg.Chip)
	if err != nil {
		return nil, fmt.Errorf("hcsr04: open %s: %w", cfg.Chip, err)
	}

	trig, err := chip.RequestLine(cfg.TriggerPin,
		gpiocdev.AsOutput(0),
		gpiocdev.WithConsumer("subnav-ng-rangefinder"))
	if err != nil {
		_ = chip.Close()
		return nil, fmt.Errorf("hcsr04: request trigger line %d: %w", cfg.TriggerPin, err)
	}

	events := make(chan gpiocdev.LineEvent, 8)
	echo, err := chip.RequestLine(cfg.EchoPin,
		gpiocdev.AsInput,
		gpiocdev.WithBothEdges,
		gpiocdev.WithConsumer("subnav-ng-rangefinder"),
		gpiocdev.WithEventHandler(func(evt gpiocdev.LineEvent) {
			select {
			case events <- evt:
			default:
			}
		}))
	if err != nil {
		_ = trig.Close()
		_ = chip.Close()
		return nil, fmt.Errorf("hcsr04: request echo line %d: %w", cfg.EchoPin, err)
	}

	b := &backend{chip: chip, trig: trig, echo: echo, events: events}
	return &Device{
		cfg:     cfg,
		clock:   time.Now,
		tracker: rangefinder.NewTracker(cfg.MinCm, cfg.MaxCm, 500*time.Millisecond),
		measure: b.measure,
		close:   b.closeAll,
	}, nil
}

type backend struct {
	chip   *gpiocdev.Chip
	trig   *gpiocdev.Line
	echo   *gpiocdev.Line
	events chan gpiocdev.LineEvent
}

func (b *backend) closeAll() error {
	_ = b.echo.Close()
	_ = b.trig.Close()
	return b.chip.Close()
}

// measure fires the trigger and times the echo pulse from the kernel edge
// timestamps.
func (b *backend) measure() (time.Duration, error) {
	// Drop stale edges from a previous ping.
	for {
		select {
		case <-b.events:
			continue
		default:
		}
		break
	}

	if err := b.trig.SetValue(1); err != nil {
		return 0, fmt.Errorf("hcsr04: trigger high: %w", err)
	}
	time.Sleep(triggerPulse)
	if err := b.trig.SetValue(0); err != nil {
		return 0, fmt.Errorf("hcsr04: trigger low: %w", err)
	}

	var riseAt time.Duration
	deadline := time.NewTimer(echoTimeout)
	defer deadline.Stop()

	for {
		select {
		case evt := <-b.events:
			switch evt.Type {
			case gpiocdev.LineEventRisingEdge:
				riseAt = evt.Timestamp
			case gpiocdev.LineEventFallingEdge:
				if riseAt == 0 {
					continue
				}
				pulse := evt.Timestamp - riseAt
				if pulse <= 0 {
					return 0, fmt.Errorf("hcsr04: non-positive pulse %s", pulse)
				}
				return pulse, nil
			}
		case <-deadline.C:
			return 0, fmt.Errorf("hcsr04: echo timeout")
		}
	}
}
