// Package splits compares a completed activity against the planned
// checkpoint segments: split pace, heart rate, elevation and
// grade-adjusted pace, plus threshold-rule insights over the whole run.
package splits

import (
	"fmt"
	"math"

	"github.com/glasgowwebguy/UltraPlan-Application-sub000/internal/fatigue"
	"github.com/glasgowwebguy/UltraPlan-Application-sub000/internal/pace"
	"github.com/glasgowwebguy/UltraPlan-Application-sub000/internal/shared/geo"

	"gonum.org/v1/gonum/stat"
)

// PlannedSegment is one checkpoint segment with its predicted pace.
type PlannedSegment struct {
	Order              int     `json:"order"`
	CheckpointName     string  `json:"checkpoint_name"`
	DistanceMiles      float64 `json:"distance_miles"`
	CumulativeMiles    float64 `json:"cumulative_miles"`
	PlannedPaceMinMile float64 `json:"planned_pace_min_mile"`
	AvgGradePercent    float64 `json:"avg_grade_percent"`
}

// SplitResult is the per-checkpoint comparison of plan versus actual.
type SplitResult struct {
	Order           int     `json:"order"`
	CheckpointName  string  `json:"checkpoint_name"`
	DistanceMiles   float64 `json:"distance_miles"`
	PlannedPace     float64 `json:"planned_pace"`
	ActualPace      float64 `json:"actual_pace"`
	PlannedTimeMin  float64 `json:"planned_time_min"`
	ActualTimeMin   float64 `json:"actual_time_min"`
	VariancePercent float64 `json:"variance_percent"`
	AvgHeartRate    float64 `json:"avg_heart_rate,omitempty"`
	ElevationGainM  float64 `json:"elevation_gain_m"`
	PlannedGAP      float64 `json:"planned_gap"`
	ActualGAP       float64 `json:"actual_gap"`
}

// InsightCategory buckets qualitative findings.
type InsightCategory string

const (
	InsightPacing    InsightCategory = "pacing"
	InsightNutrition InsightCategory = "nutrition"
	InsightStrategy  InsightCategory = "strategy"
)

type Insight struct {
	Category InsightCategory `json:"category"`
	Message  string          `json:"message"`
}

// RaceAnalytics is the analyzer's full output: plain values for the UI
// or export layers.
type RaceAnalytics struct {
	Splits           []SplitResult `json:"splits"`
	Insights         []Insight     `json:"insights"`
	ActualFadeRate   float64       `json:"actual_fade_rate"`
	NegativeSplit    bool          `json:"negative_split"`
	AvgVariancePct   float64       `json:"avg_variance_pct"`
	PacingConsistent bool          `json:"pacing_consistent"`
}

// gapAnchors is the fixed grade-to-pace-cost curve, normalized to 1.0 on
// the flat. Gentle descents run cheaper than flat; past roughly -15% the
// braking cost takes over.
var gapAnchors = []struct {
	grade, factor float64
}{
	{-20, 1.05},
	{-15, 0.97},
	{-10, 0.90},
	{-5, 0.93},
	{0, 1.00},
	{5, 1.17},
	{10, 1.35},
	{15, 1.56},
	{20, 1.80},
}

// GradeFactor interpolates the pace-cost multiplier for a grade percent.
// Grades beyond the anchor range clamp to the end anchors.
func GradeFactor(gradePercent float64) float64 {
	anchors := gapAnchors
	if gradePercent <= anchors[0].grade {
		return anchors[0].factor
	}
	if gradePercent >= anchors[len(anchors)-1].grade {
		return anchors[len(anchors)-1].factor
	}
	for i := 1; i < len(anchors); i++ {
		if gradePercent <= anchors[i].grade {
			lo, hi := anchors[i-1], anchors[i]
			t := (gradePercent - lo.grade) / (hi.grade - lo.grade)
			return lo.factor + t*(hi.factor-lo.factor)
		}
	}
	return 1
}

// GradeAdjustedPace converts an observed pace on a grade to its
// flat-ground equivalent.
func GradeAdjustedPace(paceMinPerMile, gradePercent float64) float64 {
	factor := GradeFactor(gradePercent)
	if factor <= 0 {
		return paceMinPerMile
	}
	return paceMinPerMile / factor
}

// Analyze aligns the actual activity to the planned checkpoints by
// cumulative distance and produces per-split comparisons plus run-level
// insights. Empty inputs yield empty analytics.
func Analyze(plan []PlannedSegment, actual []pace.ActivityRecord) RaceAnalytics {
	var analytics RaceAnalytics
	if len(plan) == 0 || len(actual) == 0 {
		return analytics
	}

	prevCumulative := 0.0
	prevIdx := 0
	var variances []float64
	for _, seg := range plan {
		endIdx := indexAtDistance(actual, seg.CumulativeMiles, prevIdx)
		split := buildSplit(seg, actual[prevIdx:endIdx+1], prevCumulative)
		analytics.Splits = append(analytics.Splits, split)
		variances = append(variances, split.VariancePercent)
		prevCumulative = seg.CumulativeMiles
		prevIdx = endIdx
	}

	paces := make([]float64, len(actual))
	distances := make([]float64, len(actual))
	for i, r := range actual {
		paces[i] = r.Pace
		distances[i] = r.Distance
	}
	analytics.ActualFadeRate = fatigue.ActualFadeRate(paces, distances)
	analytics.NegativeSplit = analytics.ActualFadeRate < 0

	if len(variances) > 0 {
		analytics.AvgVariancePct = stat.Mean(variances, nil)
		analytics.PacingConsistent = stat.StdDev(variances, nil) < 10
	}

	analytics.Insights = buildInsights(analytics)
	return analytics
}

// AnalyzeWithTrack refines checkpoint alignment through the course
// track: checkpoints with GPS coordinates are matched to their nearest
// track point and the matched point's cumulative distance replaces the
// declared one before the distance-based alignment runs. Checkpoints
// without coordinates keep their declared cumulative distance.
func AnalyzeWithTrack(plan []PlannedSegment, actual []pace.ActivityRecord, track []geo.TrackPoint, checkpoints []geo.Checkpoint) RaceAnalytics {
	if len(track) > 0 && len(checkpoints) == len(plan) {
		adjusted := make([]PlannedSegment, len(plan))
		copy(adjusted, plan)
		searchFrom := 0
		for i, cp := range checkpoints {
			if cp.Lat == nil || cp.Lng == nil {
				continue
			}
			idx := geo.FindClosestTrackPoint(*cp.Lat, *cp.Lng, track, searchFrom)
			if idx < 0 {
				continue
			}
			adjusted[i].CumulativeMiles = track[idx].Distance
			searchFrom = idx
		}
		plan = adjusted
	}
	return Analyze(plan, actual)
}

// indexAtDistance finds the actual-activity record closest to a target
// cumulative distance, scanning forward from a known lower bound.
func indexAtDistance(records []pace.ActivityRecord, target float64, from int) int {
	best := from
	bestDelta := math.Abs(records[from].Distance - target)
	for i := from + 1; i < len(records); i++ {
		delta := math.Abs(records[i].Distance - target)
		if delta <= bestDelta {
			best = i
			bestDelta = delta
			continue
		}
		// Records are distance-ordered; once the delta grows, stop.
		break
	}
	return best
}

func buildSplit(seg PlannedSegment, records []pace.ActivityRecord, startCumulative float64) SplitResult {
	split := SplitResult{
		Order:          seg.Order,
		CheckpointName: seg.CheckpointName,
		DistanceMiles:  seg.DistanceMiles,
		PlannedPace:    seg.PlannedPaceMinMile,
		PlannedTimeMin: seg.PlannedPaceMinMile * seg.DistanceMiles,
		PlannedGAP:     GradeAdjustedPace(seg.PlannedPaceMinMile, seg.AvgGradePercent),
	}
	if len(records) == 0 {
		return split
	}

	var paceSum, hrSum float64
	var paceN, hrN int
	for i, r := range records {
		if r.Pace > 0 {
			paceSum += r.Pace
			paceN++
		}
		if r.HeartRate != nil && *r.HeartRate > 0 {
			hrSum += *r.HeartRate
			hrN++
		}
		if i > 0 {
			delta := r.Elevation - records[i-1].Elevation
			if delta > 0 {
				split.ElevationGainM += delta
			}
		}
	}
	if paceN > 0 {
		split.ActualPace = paceSum / float64(paceN)
	}
	if hrN > 0 {
		split.AvgHeartRate = hrSum / float64(hrN)
	}

	actualDistance := records[len(records)-1].Distance - startCumulative
	if actualDistance > 0 && split.ActualPace > 0 {
		split.ActualTimeMin = split.ActualPace * actualDistance
	}
	if split.PlannedPace > 0 && split.ActualPace > 0 {
		split.VariancePercent = (split.ActualPace - split.PlannedPace) / split.PlannedPace * 100
	}
	split.ActualGAP = GradeAdjustedPace(split.ActualPace, seg.AvgGradePercent)
	return split
}

func buildInsights(a RaceAnalytics) []Insight {
	var insights []Insight

	switch {
	case a.NegativeSplit:
		insights = append(insights, Insight{InsightPacing, "Negative split: the second half ran faster than the first. Pacing discipline held."})
	case a.ActualFadeRate > 5:
		insights = append(insights, Insight{InsightPacing,
			fmt.Sprintf("Heavy fade of %.1f%% per 10 miles. Start slower or revisit the fatigue factor in the plan.", a.ActualFadeRate)})
	case a.ActualFadeRate > 2:
		insights = append(insights, Insight{InsightPacing,
			fmt.Sprintf("Moderate fade of %.1f%% per 10 miles, typical for the distance.", a.ActualFadeRate)})
	}

	if a.ActualFadeRate > 5 {
		insights = append(insights, Insight{InsightNutrition,
			"A fade this steep often tracks under-fueling; compare the energy plan against what was actually eaten."})
	}

	if !a.PacingConsistent && len(a.Splits) > 1 {
		insights = append(insights, Insight{InsightStrategy,
			"Split variance was erratic between checkpoints; consider pacing off grade-adjusted effort instead of raw pace."})
	}
	if a.AvgVariancePct > 10 {
		insights = append(insights, Insight{InsightStrategy,
			fmt.Sprintf("Ran %.0f%% slower than plan on average; the conservative tier may be the honest baseline.", a.AvgVariancePct)})
	} else if a.AvgVariancePct < -10 {
		insights = append(insights, Insight{InsightStrategy,
			fmt.Sprintf("Ran %.0f%% faster than plan; the aggressive tier was within reach.", -a.AvgVariancePct)})
	}
	return insights
}
