package rangefinder

import "time"

// maxValidCount caps the consecutive-good counter so it cannot wrap.
const maxValidCount = 10000

// Tracker turns a stream of raw samples into the Status/ValidCount contract
// the Source interface promises: consecutive in-range samples increment the
// counter, any out-of-range or missing sample clears it, and a sample older
// than the staleness window degrades to NoData.
//
// Drivers embed one Tracker per mounted orientation and feed it from their
// Update path. Tracker is not safe for concurrent use; drivers serialize
// access the same way they serialize Update.
type Tracker struct {
	MinCm     int
	MaxCm     int
	Staleness time.Duration

	status     Status
	validCount uint
	distanceCm int
	qualityPct int
	lastSample time.Time
}

// NewTracker returns a Tracker for a sensor with the given advertised range.
func NewTracker(minCm, maxCm int, staleness time.Duration) *Tracker {
	if staleness <= 0 {
		staleness = 500 * time.Millisecond
	}
	return &Tracker{
		MinCm:      minCm,
		MaxCm:      maxCm,
		Staleness:  staleness,
		status:     StatusNoData,
		qualityPct: QualityUnknown,
	}
}

// Set records a new raw sample. qualityPct is 0..100 or QualityUnknown.
func (t *Tracker) Set(now time.Time, distanceCm int, qualityPct int) {
	t.lastSample = now
	t.distanceCm = distanceCm
	t.qualityPct = qualityPct

	switch {
	case distanceCm < t.MinCm:
		t.status = StatusOutOfRangeLow
		t.validCount = 0
	case distanceCm > t.MaxCm:
		t.status = StatusOutOfRangeHigh
		t.validCount = 0
	default:
		t.status = StatusGood
		if t.validCount < maxValidCount {
			t.validCount++
		}
	}
}

// Miss records a failed read attempt.
func (t *Tracker) Miss(now time.Time) {
	if t.lastSample.IsZero() || now.Sub(t.lastSample) > t.Staleness {
		t.status = StatusNoData
		t.validCount = 0
	}
}

// Tick expires a stale sample even when the driver saw no read attempt.
func (t *Tracker) Tick(now time.Time) {
	if t.status == StatusGood && now.Sub(t.lastSample) > t.Staleness {
		t.status = StatusNoData
		t.validCount = 0
	}
}

func (t *Tracker) Status() Status        { return t.status }
func (t *Tracker) ValidCount() uint      { return t.validCount }
func (t *Tracker) DistanceCm() int       { return t.distanceCm }
func (t *Tracker) SignalQualityPct() int { return t.qualityPct }
