package nav

import "sync"

// Circle is the circle navigation controller's terrain-offset input. It is a
// plain sink; the publisher computes its enable flag (pipeline enabled AND
// the waypoint controller actually using the offset).
type Circle struct {
	mu     sync.RWMutex
	offset TerrainOffset
}

func NewCircle() *Circle {
	return &Circle{}
}

func (c *Circle) SetTerrainOffset(enabled, healthy bool, offsetCm float64) {
	c.mu.Lock()
	c.offset = TerrainOffset{Enabled: enabled, Healthy: healthy, OffsetCm: offsetCm}
	c.mu.Unlock()
}

func (c *Circle) TerrainOffset() TerrainOffset {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.offset
}
