// Package ms5837 drives the MS5837-30BA pressure/temperature sensor (the
// usual depth sensor on small underwater vehicles).
//
// The device is command-based: trigger a D1 (pressure) or D2 (temperature)
// conversion, wait for it, then read the 24-bit ADC result. Calibration
// coefficients come from PROM and are checked with the datasheet CRC4.
package ms5837

import (
	"encoding/binary"
	"fmt"
	"time"
)

var sleep = time.Sleep

const (
	addrDefault = 0x76

	cmdReset   = 0x1E
	cmdADCRead = 0x00
	cmdPROM    = 0xA0

	// OSR 8192 conversions; worst-case conversion time is just over 18 ms.
	cmdConvertD1 = 0x4A
	cmdConvertD2 = 0x5A

	convDelay = 20 * time.Millisecond

	promWords = 7
)

type cmdIO interface {
	Command(cmd byte) error
	ReadCommand(cmd byte, dst []byte) error
}

type Device struct {
	dev cmdIO

	// PROM calibration coefficients C1..C6.
	c [promWords]uint16
}

func DefaultAddress() uint16 { return addrDefault }

// New resets the sensor, loads its PROM, and verifies the CRC.
func New(dev cmdIO) (*Device, error) {
	if dev == nil {
		return nil, fmt.Errorf("ms5837: dev is nil")
	}
	d := &Device{dev: dev}

	if err := d.dev.Command(cmdReset); err != nil {
		return nil, fmt.Errorf("ms5837: reset failed: %w", err)
	}
	// PROM reload after reset takes a few milliseconds.
	sleep(10 * time.Millisecond)

	for i := 0; i < promWords; i++ {
		var buf [2]byte
		if err := d.dev.ReadCommand(cmdPROM+byte(2*i), buf[:]); err != nil {
			return nil, fmt.Errorf("ms5837: prom read %d failed: %w", i, err)
		}
		d.c[i] = binary.BigEndian.Uint16(buf[:])
	}

	want := byte(d.c[0] >> 12)
	if got := crc4(d.c); got != want {
		return nil, fmt.Errorf("ms5837: prom crc=0x%X want 0x%X", got, want)
	}
	// All-zero PROM passes CRC trivially; reject it.
	if d.c[1] == 0 || d.c[2] == 0 {
		return nil, fmt.Errorf("ms5837: prom calibration invalid (C1=%d C2=%d)", d.c[1], d.c[2])
	}

	return d, nil
}

// Read performs one temperature-compensated measurement.
func (d *Device) Read() (tempC float64, pressMbar float64, err error) {
	d1, err := d.convert(cmdConvertD1)
	if err != nil {
		return 0, 0, err
	}
	d2, err := d.convert(cmdConvertD2)
	if err != nil {
		return 0, 0, err
	}
	t, p := compensate(d.c, d1, d2)
	return t, p, nil
}

// ReadPressureMbar satisfies baro.PressureSource.
func (d *Device) ReadPressureMbar() (float64, error) {
	_, p, err := d.Read()
	return p, err
}

func (d *Device) convert(cmd byte) (uint32, error) {
	if err := d.dev.Command(cmd); err != nil {
		return 0, fmt.Errorf("ms5837: convert 0x%02X failed: %w", cmd, err)
	}
	sleep(convDelay)
	var buf [3]byte
	if err := d.dev.ReadCommand(cmdADCRead, buf[:]); err != nil {
		return 0, fmt.Errorf("ms5837: adc read failed: %w", err)
	}
	return uint32(buf[0])<<16 | uint32(buf[1])<<8 | uint32(buf[2]), nil
}

// compensate applies the MS5837-30BA first- and second-order algorithm.
// Returns temperature in C and pressure in mbar.
func compensate(c [promWords]uint16, d1, d2 uint32) (tempC float64, pressMbar float64) {
	dT := int64(d2) - int64(c[5])*(1<<8)
	temp := 2000 + dT*int64(c[6])/(1<<23)

	off := int64(c[2])*(1<<16) + int64(c[4])*dT/(1<<7)
	sens := int64(c[1])*(1<<15) + int64(c[3])*dT/(1<<8)

	// Second-order correction.
	var ti, offi, sensi int64
	if temp < 2000 {
		ti = 3 * dT * dT / (1 << 33)
		offi = 3 * (temp - 2000) * (temp - 2000) / 2
		sensi = 5 * (temp - 2000) * (temp - 2000) / 8
		if temp < -1500 {
			offi += 7 * (temp + 1500) * (temp + 1500)
			sensi += 4 * (temp + 1500) * (temp + 1500)
		}
	} else {
		ti = 2 * dT * dT / (1 << 37)
		offi = (temp - 2000) * (temp - 2000) / 16
	}

	temp -= ti
	off -= offi
	sens -= sensi

	// P comes out in 0.1 mbar steps.
	p := (int64(d1)*sens/(1<<21) - off) / (1 << 13)

	return float64(temp) / 100.0, float64(p) / 10.0
}

// crc4 is the datasheet PROM checksum. The CRC nibble itself (top 4 bits of
// word 0) is masked out and an eighth zero word is appended.
func crc4(prom [promWords]uint16) byte {
	var words [8]uint16
	copy(words[:], prom[:])
	words[0] &= 0x0FFF
	words[7] = 0

	var rem uint16
	for cnt := 0; cnt < 16; cnt++ {
		if cnt%2 == 1 {
			rem ^= words[cnt>>1] & 0x00FF
		} else {
			rem ^= words[cnt>>1] >> 8
		}
		for nbit := 8; nbit > 0; nbit-- {
			if rem&0x8000 != 0 {
				rem = (rem << 1) ^ 0x3000
			} else {
				rem <<= 1
			}
		}
	}
	return byte((rem >> 12) & 0xF)
}
