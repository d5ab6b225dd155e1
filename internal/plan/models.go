package plan

import (
	"time"

	"github.com/glasgowwebguy/UltraPlan-Application-sub000/internal/energy"
	"github.com/glasgowwebguy/UltraPlan-Application-sub000/internal/pace"
)

// SegmentPlan is one checkpoint segment with everything the engine
// derived for it.
type SegmentPlan struct {
	SegmentID          string              `json:"segment_id"`
	Order              int                 `json:"order"`
	CheckpointName     string              `json:"checkpoint_name"`
	DistanceMiles      float64             `json:"distance_miles"`
	CumulativeMiles    float64             `json:"cumulative_miles"`
	Derivation         pace.PaceDerivation `json:"derivation"`
	Strategies         []pace.PaceStrategy `json:"strategies"`
	FatigueMultiplier  float64             `json:"fatigue_multiplier"`
	AdjustedPaceMinMi  float64             `json:"adjusted_pace_min_mi"`
	TimeMinutes        float64             `json:"time_minutes"`
	CumulativeTimeMin  float64             `json:"cumulative_time_min"`
	Energy             energy.Calculation  `json:"energy"`
}

// Plan is the full computed race plan: a plain serializable value the
// UI renders directly.
type Plan struct {
	RaceID           string        `json:"race_id"`
	Version          int           `json:"version"`
	ComputedAt       time.Time     `json:"computed_at"`
	Segments         []SegmentPlan `json:"segments"`
	TotalTimeMinutes float64       `json:"total_time_minutes"`
	TotalMiles       float64       `json:"total_miles"`
	BonkRisk         energy.BonkRisk `json:"overall_bonk_risk"`
}

// recomputeEvent is what subscribers receive over the notify hub.
type recomputeEvent struct {
	RaceID     string    `json:"race_id"`
	Version    int       `json:"version"`
	ComputedAt time.Time `json:"computed_at"`
}
