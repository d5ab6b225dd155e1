package pace

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

const metersPerMile = 1609.344

// minBucketSamples is the floor below which a bucket is flagged low
// confidence.
const minBucketSamples = 3

// bucketEdges quantize grade percent into the nine ranges the pace
// model interpolates over. Open ends use a representative grade of ±18.
var bucketEdges = []struct {
	min, max, mid float64
}{
	{math.Inf(-1), -15, -18},
	{-15, -6, -10.5},
	{-6, -1, -3.5},
	{-1, 1, 0},
	{1, 3, 2},
	{3, 6, 4.5},
	{6, 10, 8},
	{10, 15, 12.5},
	{15, math.Inf(1), 18},
}

// BuildGradientProfile groups the activity's point-to-point intervals by
// grade and averages pace, heart rate and power per bucket. The result
// is a sorted array covering every bucket; unpopulated buckets carry
// zero samples so lookup code can interpolate across them.
func BuildGradientProfile(activity []ActivityRecord) []GradientBucket {
	paces := make([][]float64, len(bucketEdges))
	hrs := make([][]float64, len(bucketEdges))
	powers := make([][]float64, len(bucketEdges))

	for i := 1; i < len(activity); i++ {
		prev, cur := activity[i-1], activity[i]
		distDelta := cur.Distance - prev.Distance
		if distDelta <= 0 || !isFinite(distDelta) || !isFinite(cur.Pace) || cur.Pace <= 0 {
			continue
		}
		grade := (cur.Elevation - prev.Elevation) / (distDelta * metersPerMile) * 100
		if !isFinite(grade) {
			continue
		}

		b := bucketFor(grade)
		paces[b] = append(paces[b], cur.Pace)
		if cur.HeartRate != nil && *cur.HeartRate > 0 {
			hrs[b] = append(hrs[b], *cur.HeartRate)
		}
		if cur.Power != nil && *cur.Power > 0 {
			powers[b] = append(powers[b], *cur.Power)
		}
	}

	profile := make([]GradientBucket, len(bucketEdges))
	for i, edge := range bucketEdges {
		bucket := GradientBucket{
			MinGrade: edge.min,
			MaxGrade: edge.max,
			MidGrade: edge.mid,
			Samples:  len(paces[i]),
		}
		if bucket.Samples > 0 {
			bucket.AvgPace = stat.Mean(paces[i], nil)
		}
		if len(hrs[i]) > 0 {
			bucket.AvgHeartRate = stat.Mean(hrs[i], nil)
			bucket.HRSamples = len(hrs[i])
		}
		if len(powers[i]) > 0 {
			bucket.AvgPower = stat.Mean(powers[i], nil)
			bucket.PowerSamples = len(powers[i])
		}
		bucket.LowConfidence = bucket.Samples < minBucketSamples
		profile[i] = bucket
	}
	return profile
}

func bucketFor(grade float64) int {
	for i, edge := range bucketEdges {
		if grade >= edge.min && grade < edge.max {
			return i
		}
	}
	return len(bucketEdges) - 1
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
