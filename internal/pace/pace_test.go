package pace

import (
	"math"
	"strings"
	"testing"

	"github.com/glasgowwebguy/UltraPlan-Application-sub000/internal/shared/geo"
)

func f64(v float64) *float64 { return &v }

// syntheticActivity builds records at a fixed grade with a fixed pace.
// count intervals, 0.1mi apart.
func syntheticActivity(gradePercent, paceMinPerMile float64, count int, hr, power *float64) []ActivityRecord {
	const step = 0.1
	records := make([]ActivityRecord, count+1)
	elev := 1000.0
	for i := range records {
		records[i] = ActivityRecord{
			Distance:  float64(i) * step,
			Elevation: elev,
			Pace:      paceMinPerMile,
			HeartRate: hr,
			Power:     power,
		}
		elev += gradePercent / 100 * step * metersPerMile
	}
	return records
}

func TestBuildGradientProfileBucketsFlat(t *testing.T) {
	activity := syntheticActivity(0, 10.0, 20, f64(145), nil)
	profile := BuildGradientProfile(activity)
	if len(profile) != len(bucketEdges) {
		t.Fatalf("expected %d buckets, got %d", len(bucketEdges), len(profile))
	}

	flat := profile[bucketFor(0)]
	if flat.Samples != 20 {
		t.Fatalf("expected 20 flat samples, got %d", flat.Samples)
	}
	if math.Abs(flat.AvgPace-10.0) > 1e-9 {
		t.Fatalf("expected avg pace 10, got %v", flat.AvgPace)
	}
	if flat.HRSamples != 20 || math.Abs(flat.AvgHeartRate-145) > 1e-9 {
		t.Fatalf("heart rate not aggregated: %+v", flat)
	}
	if flat.PowerSamples != 0 {
		t.Fatalf("power should be empty when never recorded")
	}
	if flat.LowConfidence {
		t.Fatalf("20 samples should not be low confidence")
	}
}

func TestBuildGradientProfileSparseBucketFlagged(t *testing.T) {
	activity := syntheticActivity(8, 14.0, 2, nil, nil)
	profile := BuildGradientProfile(activity)
	climb := profile[bucketFor(8)]
	if climb.Samples != 2 {
		t.Fatalf("expected 2 samples, got %d", climb.Samples)
	}
	if !climb.LowConfidence {
		t.Fatalf("2 samples must be flagged low confidence")
	}
}

func TestBuildGradientProfileSkipsBadRecords(t *testing.T) {
	activity := []ActivityRecord{
		{Distance: 0, Elevation: 100, Pace: 10},
		{Distance: 0, Elevation: 100, Pace: 10},              // zero distance delta
		{Distance: 0.1, Elevation: 100, Pace: math.Inf(1)},   // non-finite pace
		{Distance: 0.2, Elevation: 100, Pace: -3},            // negative pace
		{Distance: 0.3, Elevation: 100, Pace: 9},             // the only good interval
	}
	profile := BuildGradientProfile(activity)
	total := 0
	for _, b := range profile {
		total += b.Samples
	}
	if total != 1 {
		t.Fatalf("expected 1 usable interval, got %d", total)
	}
}

func trackForGrade(gradePercent float64, miles float64) []geo.TrackPoint {
	const step = 0.1
	n := int(miles/step) + 1
	points := make([]geo.TrackPoint, n)
	elev := 500.0
	for i := range points {
		points[i] = geo.TrackPoint{Distance: float64(i) * step, Elevation: elev, Lat: 40, Lng: -105}
		elev += gradePercent / 100 * step * metersPerMile
	}
	return points
}

func TestDeriveSegmentPaceMatchesBucket(t *testing.T) {
	activity := syntheticActivity(0, 10.0, 30, f64(150), f64(210))
	profile := BuildGradientProfile(activity)
	track := trackForGrade(0, 5)

	seg := SegmentSpec{Name: "Flats", DistanceMiles: 5, StartMiles: 0, EndMiles: 5}
	d := DeriveSegmentPace(seg, profile, track, 12.0)

	if math.Abs(d.PaceMinPerMile-10.0) > 0.5 {
		t.Fatalf("expected pace near 10, got %v", d.PaceMinPerMile)
	}
	if d.Confidence != ConfidenceHigh {
		t.Fatalf("30 samples at matching grade should be high confidence, got %s", d.Confidence)
	}
	if d.SuggestedHRZone == nil || d.SuggestedHRZone.Low >= d.SuggestedHRZone.High {
		t.Fatalf("expected HR zone, got %+v", d.SuggestedHRZone)
	}
	if d.SuggestedPowerZone == nil {
		t.Fatalf("expected power zone when power recorded")
	}
	if !strings.Contains(d.Reasoning, "samples") {
		t.Fatalf("reasoning must cite sample count: %q", d.Reasoning)
	}
}

func TestDeriveSegmentPaceInterpolatesEmptyBucket(t *testing.T) {
	// History only on flats (10 min/mi) and steep climbs (16 min/mi);
	// the 4.5% bucket is empty and must be interpolated.
	activity := append(syntheticActivity(0, 10.0, 15, nil, nil), syntheticActivity(8, 16.0, 15, nil, nil)...)
	// Fix distances so the second half continues the first.
	for i := range activity {
		activity[i].Distance = float64(i) * 0.1
	}
	profile := BuildGradientProfile(activity)
	if profile[bucketFor(4.5)].Samples != 0 {
		t.Fatalf("test premise broken: 4.5%% bucket should be empty")
	}

	track := trackForGrade(4.5, 3)
	seg := SegmentSpec{Name: "Rollers", DistanceMiles: 3, StartMiles: 0, EndMiles: 3}
	d := DeriveSegmentPace(seg, profile, track, 12.0)

	if d.PaceMinPerMile <= 10.0 || d.PaceMinPerMile >= 16.0 {
		t.Fatalf("interpolated pace should sit between the neighbours, got %v", d.PaceMinPerMile)
	}
	if !strings.Contains(d.Reasoning, "interpolated") {
		t.Fatalf("reasoning should note interpolation: %q", d.Reasoning)
	}
}

func TestDeriveSegmentPaceFallbacks(t *testing.T) {
	track := trackForGrade(0, 2)
	seg := SegmentSpec{Name: "Empty", DistanceMiles: 2, StartMiles: 0, EndMiles: 2}

	d := DeriveSegmentPace(seg, BuildGradientProfile(nil), track, 11.0)
	if d.Confidence != ConfidenceLow {
		t.Fatalf("empty activity must be low confidence")
	}
	if d.PaceMinPerMile != 11.0 {
		t.Fatalf("expected fallback pace, got %v", d.PaceMinPerMile)
	}

	zero := SegmentSpec{Name: "Zero", DistanceMiles: 0, StartMiles: 3, EndMiles: 3}
	d = DeriveSegmentPace(zero, BuildGradientProfile(syntheticActivity(0, 10, 20, nil, nil)), track, 11.0)
	if d.Confidence != ConfidenceLow || d.PaceMinPerMile != 11.0 {
		t.Fatalf("zero-length segment must fall back, got %+v", d)
	}

	if math.IsNaN(d.PaceMinPerMile) || math.IsInf(d.PaceMinPerMile, 0) {
		t.Fatalf("derivation must never carry NaN/Inf")
	}
}

func TestSegmentElevation(t *testing.T) {
	track := trackForGrade(5, 4)
	elev := SegmentElevation(track, 1, 3)
	if elev.GainMeters <= 0 {
		t.Fatalf("expected gain on a climbing track")
	}
	if elev.LossMeters != 0 {
		t.Fatalf("expected no loss on a monotone climb, got %v", elev.LossMeters)
	}
	if math.Abs(elev.AvgGradePercent-5) > 0.5 {
		t.Fatalf("expected ~5%% grade, got %v", elev.AvgGradePercent)
	}

	empty := SegmentElevation(nil, 0, 5)
	if empty.GainMeters != 0 || empty.AvgGradePercent != 0 {
		t.Fatalf("empty track must yield zero elevation details")
	}
}

func TestGeneratePaceOptions(t *testing.T) {
	hr := &Zone{Low: 140, High: 155}
	options := GeneratePaceOptions(10.0, ConfidenceMedium, "test", hr, nil)

	if len(options) != 3 {
		t.Fatalf("expected 3 tiers, got %d", len(options))
	}
	if options[0].Name != "aggressive" || options[1].Name != "balanced" || options[2].Name != "conservative" {
		t.Fatalf("tier order must be aggressive, balanced, conservative")
	}
	if options[0].PaceMinPerMile >= options[1].PaceMinPerMile || options[1].PaceMinPerMile >= options[2].PaceMinPerMile {
		t.Fatalf("aggressive must be fastest: %v %v %v",
			options[0].PaceMinPerMile, options[1].PaceMinPerMile, options[2].PaceMinPerMile)
	}
	if math.Abs(options[1].PaceMinPerMile-10.0) > 1e-9 {
		t.Fatalf("balanced tier must keep the base pace")
	}

	// Faster tier, higher target zone.
	if options[0].HRZone.Low <= options[1].HRZone.Low {
		t.Fatalf("aggressive HR zone should sit above balanced")
	}
	if options[2].HRZone.Low >= options[1].HRZone.Low {
		t.Fatalf("conservative HR zone should sit below balanced")
	}
	for _, o := range options {
		if o.PowerZone != nil {
			t.Fatalf("power zone must stay nil when source had no power")
		}
	}
}
