// Package fatigue models expected pace degradation over cumulative
// distance. The fatigue factor is the assumed percent slowdown per 10
// units of distance.
package fatigue

import (
	"math"

	"gonum.org/v1/gonum/integrate"
)

// CurvePoint is one sample of the projected slowdown curve. Recomputed
// each call, never cached.
type CurvePoint struct {
	Distance           float64 `json:"distance"`
	FatigueMultiplier  float64 `json:"fatigue_multiplier"`
	ExpectedPace       float64 `json:"expected_pace"`
	PercentDegradation float64 `json:"percent_degradation"`
}

// integrationSteps fixes the trapezoidal grid for the time integral.
// 100 steps keeps the error against the closed form under a fraction of
// a second at ultramarathon distances; trapezoidal rather than closed
// form so the model stays correct if it ever becomes piecewise.
const integrationSteps = 100

// Multiplier returns the pace multiplier at a cumulative distance for a
// given fatigue factor (percent per 10 units).
func Multiplier(distance, fatigueFactor float64) float64 {
	if distance <= 0 {
		return 1
	}
	return 1 + (distance/10)*(fatigueFactor/100)
}

// GenerateCurve samples the fatigue curve evenly from 0 to totalDistance.
// numPoints <= 0 defaults to ceil(totalDistance). Zero or negative total
// distance yields an empty curve.
func GenerateCurve(basePace, totalDistance, fatigueFactor float64, numPoints int) []CurvePoint {
	if totalDistance <= 0 || basePace <= 0 {
		return nil
	}
	if numPoints <= 0 {
		numPoints = int(math.Ceil(totalDistance))
	}
	if numPoints < 2 {
		numPoints = 2
	}

	curve := make([]CurvePoint, numPoints)
	step := totalDistance / float64(numPoints-1)
	for i := range curve {
		d := float64(i) * step
		m := Multiplier(d, fatigueFactor)
		curve[i] = CurvePoint{
			Distance:           d,
			FatigueMultiplier:  m,
			ExpectedPace:       basePace * m,
			PercentDegradation: (m - 1) * 100,
		}
	}
	return curve
}

// TotalTimeWithFatigue integrates expected pace over distance and
// returns total minutes. Degenerate inputs return 0.
func TotalTimeWithFatigue(basePace, totalDistance, fatigueFactor float64) float64 {
	if basePace <= 0 || totalDistance <= 0 {
		return 0
	}

	xs := make([]float64, integrationSteps+1)
	ys := make([]float64, integrationSteps+1)
	step := totalDistance / integrationSteps
	for i := range xs {
		xs[i] = float64(i) * step
		ys[i] = basePace * Multiplier(xs[i], fatigueFactor)
	}
	return integrate.Trapezoidal(xs, ys)
}

// ActualFadeRate compares the average pace of the first and second half
// of an observed series and normalizes the relative slowdown to a
// percent-per-10-units rate. Degenerate series return 0.
func ActualFadeRate(paces, distances []float64) float64 {
	if len(paces) < 2 || len(paces) != len(distances) {
		return 0
	}
	total := distances[len(distances)-1]
	if total <= 0 {
		return 0
	}

	half := total / 2
	var firstSum, secondSum float64
	var firstN, secondN int
	for i, d := range distances {
		if d <= half {
			firstSum += paces[i]
			firstN++
		} else {
			secondSum += paces[i]
			secondN++
		}
	}
	if firstN == 0 || secondN == 0 || firstSum <= 0 {
		return 0
	}

	firstAvg := firstSum / float64(firstN)
	secondAvg := secondSum / float64(secondN)
	// The half-averages sit roughly total/2 apart on the course.
	slowdownPercent := (secondAvg - firstAvg) / firstAvg * 100
	return slowdownPercent / (half / 10)
}
