// Package rangefinder defines the driver-facing surface for proximity range
// sensors and small helpers shared by the concrete drivers.
package rangefinder

// Orientation is the mounting direction of a range sensor. The altitude
// pipeline only ever reads the Down variant, but drivers advertise whichever
// orientation they are mounted in.
type Orientation int

const (
	OrientationDown Orientation = iota
	OrientationForward
	OrientationUp
)

func (o Orientation) String() string {
	switch o {
	case OrientationDown:
		return "down"
	case OrientationForward:
		return "forward"
	case OrientationUp:
		return "up"
	}
	return "unknown"
}

// ParseOrientation maps the config spelling to an Orientation.
func ParseOrientation(s string) (Orientation, bool) {
	switch s {
	case "down", "":
		return OrientationDown, true
	case "forward":
		return OrientationForward, true
	case "up":
		return OrientationUp, true
	}
	return OrientationDown, false
}

// Status is the driver's view of the most recent sample.
type Status int

const (
	StatusNotConnected Status = iota
	StatusNoData
	StatusOutOfRangeLow
	StatusOutOfRangeHigh
	StatusGood
)

func (s Status) String() string {
	switch s {
	case StatusNotConnected:
		return "not_connected"
	case StatusNoData:
		return "no_data"
	case StatusOutOfRangeLow:
		return "out_of_range_low"
	case StatusOutOfRangeHigh:
		return "out_of_range_high"
	case StatusGood:
		return "good"
	}
	return "unknown"
}

// QualityUnknown is reported by drivers that cannot measure signal quality.
const QualityUnknown = -1

// Source is a non-blocking, best-effort range sensor. Update refreshes the
// cached sample; the per-orientation getters return the most recent cached
// values and never block. A Source reports for at most one mounted
// orientation; queries for any other orientation return zero values and
// StatusNotConnected.
type Source interface {
	Update()
	HasOrientation(o Orientation) bool
	Status(o Orientation) Status
	ValidCount(o Orientation) uint
	SignalQualityPct(o Orientation) int
	DistanceCm(o Orientation) int
	MinDistanceCm(o Orientation) int
	MaxDistanceCm(o Orientation) int
}

// Disabled is the no-op Source used when no rangefinder is configured.
// It advertises no orientation, so the pipeline stays permanently unhealthy
// with a zero reading.
type Disabled struct{}

func (Disabled) Update()                           {}
func (Disabled) HasOrientation(Orientation) bool   { return false }
func (Disabled) Status(Orientation) Status         { return StatusNotConnected }
func (Disabled) ValidCount(Orientation) uint       { return 0 }
func (Disabled) SignalQualityPct(Orientation) int  { return QualityUnknown }
func (Disabled) DistanceCm(Orientation) int        { return 0 }
func (Disabled) MinDistanceCm(Orientation) int     { return 0 }
func (Disabled) MaxDistanceCm(Orientation) int     { return 0 }
