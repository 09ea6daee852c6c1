//go:build !linux

package hcsr04

import "fmt"

// New is unsupported off Linux; callers fall back to the disabled source.
func New(cfg Config) (*Device, error) {
	return nil, fmt.Errorf("hcsr04: unsupported OS (need linux)")
}
