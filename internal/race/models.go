package race

import (
	"time"

	"github.com/glasgowwebguy/UltraPlan-Application-sub000/internal/shared/geo"
)

type Race struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	DistanceMiles      float64   `json:"distance_miles"`
	FatigueFactor      float64   `json:"fatigue_factor"`
	FlatPaceMinPerMile float64   `json:"flat_pace_min_per_mile"`
	BodyWeightKg       float64   `json:"body_weight_kg"`
	Trained            bool      `json:"trained"`
	PlanVersion        int       `json:"plan_version"`
	CreatedAt          time.Time `json:"created_at"`
}

// Segment is one checkpoint boundary of a race. CumulativeDistance must
// be non-decreasing across the ordered list; every consumer relies on
// that, so the service rejects writes that would break it.
type Segment struct {
	ID                 string          `json:"id"`
	RaceID             string          `json:"race_id"`
	Order              int             `json:"order"`
	CheckpointName     string          `json:"checkpoint_name"`
	SegmentDistance    float64         `json:"segment_distance"`
	CumulativeDistance float64         `json:"cumulative_distance"`
	Latitude           *float64        `json:"latitude,omitempty"`
	Longitude          *float64        `json:"longitude,omitempty"`
	CustomPace         *float64        `json:"custom_pace,omitempty"`
	TerrainFactor      *float64        `json:"terrain_factor,omitempty"`
	Nutrition          []NutritionItem `json:"nutrition,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}

// Checkpoint is the segment's view for the geo matcher.
func (s Segment) Checkpoint() geo.Checkpoint {
	return geo.Checkpoint{Order: s.Order, Name: s.CheckpointName, Lat: s.Latitude, Lng: s.Longitude}
}

type NutritionItem struct {
	ID               string  `json:"id"`
	SegmentID        string  `json:"segment_id"`
	Name             string  `json:"name"`
	CarbsPerServing  float64 `json:"carbs_per_serving"`
	SodiumPerServing float64 `json:"sodium_per_serving"`
	WaterPerServing  float64 `json:"water_per_serving"`
	Quantity         int     `json:"quantity"`
}

// TotalCarbsGrams is what the energy model charges for this item.
func (n NutritionItem) TotalCarbsGrams() float64 {
	return n.CarbsPerServing * float64(n.Quantity)
}

// ActivityRole distinguishes the historical recording that feeds the
// pace model from the completed-race recording the analyzer compares
// against.
type ActivityRole string

const (
	RoleHistory ActivityRole = "history"
	RoleResult  ActivityRole = "result"
)
