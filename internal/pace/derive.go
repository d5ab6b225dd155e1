package pace

import (
	"fmt"
	"math"

	"github.com/glasgowwebguy/UltraPlan-Application-sub000/internal/shared/geo"
)

// extrapolationBound caps how far linear extrapolation within a bucket
// may push the predicted pace away from the bucket's observed average.
const extrapolationBound = 0.5

// SegmentElevation computes gain, loss and average grade for the track
// slice spanning a segment's cumulative-distance range.
func SegmentElevation(track []geo.TrackPoint, startMiles, endMiles float64) ElevationDetails {
	var details ElevationDetails
	var prev *geo.TrackPoint
	first := true
	for i := range track {
		p := track[i]
		if p.Distance < startMiles || p.Distance > endMiles {
			continue
		}
		if first {
			details.StartElevation = p.Elevation
			first = false
		}
		details.EndElevation = p.Elevation
		if prev != nil {
			delta := p.Elevation - prev.Elevation
			if delta > 0 {
				details.GainMeters += delta
			} else {
				details.LossMeters -= delta
			}
		}
		prev = &track[i]
	}

	span := endMiles - startMiles
	if span > 0 && !first {
		details.AvgGradePercent = (details.EndElevation - details.StartElevation) / (span * metersPerMile) * 100
	}
	return details
}

// DeriveSegmentPace predicts a pace for one segment from the gradient
// profile of a historical activity. It never returns NaN or Inf: any
// degenerate intermediate collapses to fallbackPace at low confidence.
func DeriveSegmentPace(seg SegmentSpec, profile []GradientBucket, track []geo.TrackPoint, fallbackPace float64) PaceDerivation {
	elev := SegmentElevation(track, seg.StartMiles, seg.EndMiles)

	if seg.DistanceMiles <= 0 || !hasSamples(profile) {
		return fallbackDerivation(elev, fallbackPace, "no usable historical samples or zero-length segment")
	}

	grade := elev.AvgGradePercent
	bucket, interpolated := matchBucket(profile, grade)
	if bucket == nil {
		return fallbackDerivation(elev, fallbackPace, "no populated gradient bucket")
	}

	predicted := bucket.AvgPace
	if !interpolated {
		slope := bucketSlope(profile, bucket)
		predicted += slope * (grade - bucket.MidGrade)
		lo, hi := bucket.AvgPace*(1-extrapolationBound), bucket.AvgPace*(1+extrapolationBound)
		predicted = math.Min(math.Max(predicted, lo), hi)
	}
	if !isFinite(predicted) || predicted <= 0 {
		return fallbackDerivation(elev, fallbackPace, "derived pace was not finite")
	}

	confidence := ConfidenceLow
	gradeDelta := math.Abs(grade - bucket.MidGrade)
	switch {
	case bucket.Samples >= 10 && gradeDelta < 2:
		confidence = ConfidenceHigh
	case bucket.Samples >= minBucketSamples:
		confidence = ConfidenceMedium
	}

	reasoning := fmt.Sprintf("avg grade %.1f%%, %.0fm gain / %.0fm loss over %.1fmi; matched bucket %.1f%% with %d samples",
		grade, elev.GainMeters, elev.LossMeters, seg.DistanceMiles, bucket.MidGrade, bucket.Samples)
	if interpolated {
		reasoning += " (interpolated between adjacent buckets)"
	}

	derivation := PaceDerivation{
		PaceMinPerMile: predicted,
		Confidence:     confidence,
		Reasoning:      reasoning,
		Elevation:      elev,
	}
	if bucket.HRSamples > 0 {
		derivation.SuggestedHRZone = &Zone{Low: bucket.AvgHeartRate * 0.95, High: bucket.AvgHeartRate * 1.05}
	}
	if bucket.PowerSamples > 0 {
		derivation.SuggestedPowerZone = &Zone{Low: bucket.AvgPower * 0.95, High: bucket.AvgPower * 1.05}
	}
	return derivation
}

func fallbackDerivation(elev ElevationDetails, fallbackPace float64, why string) PaceDerivation {
	if !isFinite(fallbackPace) || fallbackPace <= 0 {
		fallbackPace = 12.0
	}
	return PaceDerivation{
		PaceMinPerMile: fallbackPace,
		Confidence:     ConfidenceLow,
		Reasoning:      "fallback flat pace: " + why,
		Elevation:      elev,
	}
}

func hasSamples(profile []GradientBucket) bool {
	for _, b := range profile {
		if b.Samples > 0 {
			return true
		}
	}
	return false
}

// matchBucket finds the bucket covering grade. When that bucket is
// empty, the nearest populated buckets on each side are blended into a
// synthetic bucket at the target grade; with only one side populated
// that side is used directly.
func matchBucket(profile []GradientBucket, grade float64) (*GradientBucket, bool) {
	idx := bucketFor(grade)
	if idx < len(profile) && profile[idx].Samples > 0 {
		return &profile[idx], false
	}

	var lower, upper *GradientBucket
	for i := idx - 1; i >= 0; i-- {
		if profile[i].Samples > 0 {
			lower = &profile[i]
			break
		}
	}
	for i := idx + 1; i < len(profile); i++ {
		if profile[i].Samples > 0 {
			upper = &profile[i]
			break
		}
	}

	switch {
	case lower != nil && upper != nil:
		span := upper.MidGrade - lower.MidGrade
		t := 0.5
		if span != 0 {
			t = (grade - lower.MidGrade) / span
		}
		blended := GradientBucket{
			MidGrade:     grade,
			AvgPace:      lower.AvgPace + t*(upper.AvgPace-lower.AvgPace),
			Samples:      minInt(lower.Samples, upper.Samples),
			HRSamples:    minInt(lower.HRSamples, upper.HRSamples),
			PowerSamples: minInt(lower.PowerSamples, upper.PowerSamples),
		}
		if blended.HRSamples > 0 {
			blended.AvgHeartRate = lower.AvgHeartRate + t*(upper.AvgHeartRate-lower.AvgHeartRate)
		}
		if blended.PowerSamples > 0 {
			blended.AvgPower = lower.AvgPower + t*(upper.AvgPower-lower.AvgPower)
		}
		return &blended, true
	case lower != nil:
		return lower, false
	case upper != nil:
		return upper, false
	}
	return nil, false
}

// bucketSlope estimates min/mile per grade point from the nearest
// populated neighbours, falling back to zero when the bucket stands
// alone.
func bucketSlope(profile []GradientBucket, bucket *GradientBucket) float64 {
	var prev, next *GradientBucket
	for i := range profile {
		b := &profile[i]
		if b.Samples == 0 || b == bucket {
			continue
		}
		if b.MidGrade < bucket.MidGrade {
			prev = b
		} else if next == nil {
			next = b
		}
	}

	ref := next
	if ref == nil {
		ref = prev
	}
	if ref == nil || ref.MidGrade == bucket.MidGrade {
		return 0
	}
	return (ref.AvgPace - bucket.AvgPace) / (ref.MidGrade - bucket.MidGrade)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
