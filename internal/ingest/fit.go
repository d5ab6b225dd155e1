package ingest

import (
	"errors"
	"io"
	"math"

	"github.com/glasgowwebguy/UltraPlan-Application-sub000/internal/pace"

	"github.com/tormoder/fit"
)

var ErrNoActivityRecords = errors.New("fit file contains no usable records")

// Raw FIT field scaling, per the FIT profile:
// distance meters (scale 100), speed m/s (scale 1000),
// altitude meters (scale 5, offset 500).
const (
	fitDistanceScale = 100.0
	fitSpeedScale    = 1000.0
	fitAltScale      = 5.0
	fitAltOffset     = 500.0

	invalidUint32 = 0xFFFFFFFF
	invalidUint16 = 0xFFFF
	invalidUint8  = 0xFF

	metersPerMile = 1609.344
)

// ParseFIT decodes a FIT recording into distance-ordered activity
// records. Records without a valid distance and speed are dropped;
// missing heart rate and power stay nil, never NaN.
func ParseFIT(r io.Reader) ([]pace.ActivityRecord, error) {
	decoded, err := fit.Decode(r)
	if err != nil {
		return nil, err
	}
	activity, err := decoded.Activity()
	if err != nil {
		return nil, err
	}

	var records []pace.ActivityRecord
	lastDistance := math.Inf(-1)
	for _, msg := range activity.Records {
		rec, ok := recordFromFIT(msg)
		if !ok {
			continue
		}
		// Keep the distance-ordering guarantee the engine relies on.
		if rec.Distance < lastDistance {
			continue
		}
		lastDistance = rec.Distance
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, ErrNoActivityRecords
	}
	return records, nil
}

func recordFromFIT(msg *fit.RecordMsg) (pace.ActivityRecord, bool) {
	if msg == nil || msg.Distance == invalidUint32 {
		return pace.ActivityRecord{}, false
	}
	if msg.Speed == invalidUint16 || msg.Speed == 0 {
		return pace.ActivityRecord{}, false
	}

	distanceMiles := float64(msg.Distance) / fitDistanceScale / metersPerMile
	speedMps := float64(msg.Speed) / fitSpeedScale
	paceMinPerMile := metersPerMile / speedMps / 60

	if !finite(distanceMiles) || !finite(paceMinPerMile) || paceMinPerMile <= 0 {
		return pace.ActivityRecord{}, false
	}

	rec := pace.ActivityRecord{
		Distance: distanceMiles,
		Pace:     paceMinPerMile,
	}
	if msg.Altitude != invalidUint16 && msg.Altitude != 0 {
		rec.Elevation = float64(msg.Altitude)/fitAltScale - fitAltOffset
	}
	if msg.HeartRate != invalidUint8 && msg.HeartRate != 0 {
		hr := float64(msg.HeartRate)
		rec.HeartRate = &hr
	}
	if msg.Power != invalidUint16 && msg.Power != 0 {
		power := float64(msg.Power)
		rec.Power = &power
	}
	return rec, true
}
