// Package nav holds the navigation-side consumers of the terrain offset: the
// waypoint controller, the circle controller, and the vertical position
// offset controller that surface tracking drives.
package nav

import (
	"sync"

	"github.com/tevino/abool/v2"
)

// TerrainOffset is the last published (enabled, healthy, offset) triple.
type TerrainOffset struct {
	Enabled  bool
	Healthy  bool
	OffsetCm float64
}

// Waypoint is the waypoint navigation controller's terrain-offset input.
// The use flag is operator/config controlled and may be flipped from other
// goroutines, so it lives in an atomic bool.
type Waypoint struct {
	use *abool.AtomicBool

	mu     sync.RWMutex
	offset TerrainOffset
}

func NewWaypoint(useRangefinder bool) *Waypoint {
	return &Waypoint{use: abool.NewBool(useRangefinder)}
}

// SetTerrainOffset stores the published triple from the altitude pipeline.
func (w *Waypoint) SetTerrainOffset(enabled, healthy bool, offsetCm float64) {
	w.mu.Lock()
	w.offset = TerrainOffset{Enabled: enabled, Healthy: healthy, OffsetCm: offsetCm}
	w.mu.Unlock()
}

// TerrainOffset returns the last published triple.
func (w *Waypoint) TerrainOffset() TerrainOffset {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.offset
}

// RangefinderUsed reports whether this controller is configured to act on the
// rangefinder offset at all. The circle controller's enable flag is gated on
// this.
func (w *Waypoint) RangefinderUsed() bool {
	return w.use.IsSet()
}

// SetRangefinderUse flips the use flag at runtime.
func (w *Waypoint) SetRangefinderUse(use bool) {
	w.use.SetTo(use)
}
