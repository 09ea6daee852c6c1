package nav

import "sync"

// PosControl is a minimal vertical position-offset controller. Surface
// tracking writes an offset target; the depth controller (out of scope here)
// slews the applied offset toward it. We model the slew as a simple bounded
// step per cycle so the applied offset is observable and testable.
type PosControl struct {
	// Max applied-offset change per Step call, cm.
	SlewCmPerStep float64

	mu              sync.Mutex
	offsetZCm       float64
	offsetTargetZCm float64
}

func NewPosControl() *PosControl {
	return &PosControl{SlewCmPerStep: 10}
}

func (p *PosControl) PosOffsetZCm() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.offsetZCm
}

func (p *PosControl) PosOffsetTargetZCm() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.offsetTargetZCm
}

func (p *PosControl) SetPosOffsetZCm(v float64) {
	p.mu.Lock()
	p.offsetZCm = v
	p.mu.Unlock()
}

func (p *PosControl) SetPosOffsetTargetZCm(v float64) {
	p.mu.Lock()
	p.offsetTargetZCm = v
	p.mu.Unlock()
}

// Step moves the applied offset toward the target by at most SlewCmPerStep.
func (p *PosControl) Step() {
	p.mu.Lock()
	defer p.mu.Unlock()
	d := p.offsetTargetZCm - p.offsetZCm
	if d > p.SlewCmPerStep {
		d = p.SlewCmPerStep
	} else if d < -p.SlewCmPerStep {
		d = -p.SlewCmPerStep
	}
	p.offsetZCm += d
}
