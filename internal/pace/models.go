package pace

// ActivityRecord is one sample of a parsed historical activity, ordered
// by ascending distance (miles). Pace is min/mile. HeartRate and Power
// are nil when the recording device did not capture them, never NaN.
type ActivityRecord struct {
	Distance  float64  `json:"distance"`
	Elevation float64  `json:"elevation"`
	Pace      float64  `json:"pace"`
	HeartRate *float64 `json:"heart_rate,omitempty"`
	Power     *float64 `json:"power,omitempty"`
}

// Confidence grades how well a derivation is supported by historical
// samples. Typed so downstream thresholding can't be broken by a typo.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// GradientBucket aggregates observed pace and effort for one quantized
// grade range. Recomputed on demand from the activity, never persisted.
type GradientBucket struct {
	MinGrade float64 `json:"min_grade"`
	MaxGrade float64 `json:"max_grade"`
	MidGrade float64 `json:"mid_grade"`

	AvgPace      float64 `json:"avg_pace"`
	AvgHeartRate float64 `json:"avg_heart_rate"`
	AvgPower     float64 `json:"avg_power"`

	Samples       int  `json:"samples"`
	HRSamples     int  `json:"hr_samples"`
	PowerSamples  int  `json:"power_samples"`
	LowConfidence bool `json:"low_confidence"`
}

// Zone is a suggested effort range (bpm for heart rate, watts for power).
type Zone struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// ElevationDetails describes the terrain of one segment's track slice.
type ElevationDetails struct {
	GainMeters      float64 `json:"gain_meters"`
	LossMeters      float64 `json:"loss_meters"`
	AvgGradePercent float64 `json:"avg_grade_percent"`
	StartElevation  float64 `json:"start_elevation"`
	EndElevation    float64 `json:"end_elevation"`
}

// PaceDerivation is the engine's prediction for one segment. Always
// replaced wholesale on recompute, never mutated in place.
type PaceDerivation struct {
	PaceMinPerMile     float64          `json:"pace_min_per_mile"`
	Confidence         Confidence       `json:"confidence"`
	Reasoning          string           `json:"reasoning"`
	Elevation          ElevationDetails `json:"elevation"`
	SuggestedHRZone    *Zone            `json:"suggested_hr_zone,omitempty"`
	SuggestedPowerZone *Zone            `json:"suggested_power_zone,omitempty"`
}

// SegmentSpec is the slice of course a derivation is asked for: the
// cumulative-distance range between two checkpoints.
type SegmentSpec struct {
	Name          string
	DistanceMiles float64
	StartMiles    float64
	EndMiles      float64
}

// PaceStrategy is one of the three risk tiers expanded from a base
// derivation. Generated fresh each call.
type PaceStrategy struct {
	Name           string     `json:"name"`
	Multiplier     float64    `json:"multiplier"`
	PaceMinPerMile float64    `json:"pace_min_per_mile"`
	Description    string     `json:"description"`
	BestFor        string     `json:"best_for"`
	Confidence     Confidence `json:"confidence"`
	Reasoning      string     `json:"reasoning"`
	HRZone         *Zone      `json:"hr_zone,omitempty"`
	PowerZone      *Zone      `json:"power_zone,omitempty"`
}
