// Package energy tracks calories burned versus consumed and estimated
// glycogen depletion across a race, segment by segment. The model is a
// pure fold: each call consumes the previous segment's carry and
// returns the next one; ordering across segments is a correctness
// requirement the caller owns.
package energy

import (
	"fmt"
	"math"
)

// BonkRisk classifies the likelihood of glycogen collapse.
type BonkRisk string

const (
	RiskNone     BonkRisk = "none"
	RiskLow      BonkRisk = "low"
	RiskModerate BonkRisk = "moderate"
	RiskHigh     BonkRisk = "high"
)

// Tuned physiology constants. Treated as configuration to validate
// against reference ranges, not values to re-derive; see the package
// tests for the ranges they are held to.
const (
	kcalPerGramCarb = 4.0

	// Flat-ground running cost, kcal per kg per km.
	flatKcalPerKgKm = 1.036

	// Vertical cost per kg per meter climbed; eccentric descent costs
	// roughly a third of the concentric climb.
	climbKcalPerKgM   = 0.0094
	descentKcalPerKgM = 0.0035

	// Share of a calorie deficit supplied by glycogen (the rest is fat).
	glycogenDeficitShare = 0.8

	// Whole-body glycogen storage, grams per kg body weight, and the
	// uplift for a trained athlete's elevated storage.
	glycogenGramsPerKg = 7.1
	trainedMultiplier  = 1.15

	// Default gut absorption ceiling when the caller supplies none.
	DefaultAbsorptionKcalPerHour = 250.0

	milesPerKm = 0.621371
)

// trendWindow is how many trailing segment deficits feed the worsening
// trend check.
const trendWindow = 3

// Athlete carries the rider-supplied metrics the model needs. A missing
// or non-positive body weight is a caller contract violation; the
// handler layer rejects before the fold is ever run.
type Athlete struct {
	BodyWeightKg          float64 `json:"body_weight_kg"`
	Trained               bool    `json:"trained"`
	AbsorptionKcalPerHour float64 `json:"absorption_kcal_per_hour,omitempty"`
}

// GlycogenCapacityGrams is the athlete's estimated full store.
func (a Athlete) GlycogenCapacityGrams() float64 {
	capacity := a.BodyWeightKg * glycogenGramsPerKg
	if a.Trained {
		capacity *= trainedMultiplier
	}
	return capacity
}

func (a Athlete) absorptionCeiling() float64 {
	if a.AbsorptionKcalPerHour > 0 {
		return a.AbsorptionKcalPerHour
	}
	return DefaultAbsorptionKcalPerHour
}

// SegmentInput is everything the fold needs about one segment.
type SegmentInput struct {
	Name           string
	DistanceMiles  float64
	TimeMinutes    float64
	ElevationGainM float64
	ElevationLossM float64
	CarbsGrams     float64
}

// Carry is the running state threaded between segments. NewCarry seeds
// it; each Calculation embeds the next one.
type Carry struct {
	CaloriesBurned         float64   `json:"calories_burned"`
	CaloriesConsumed       float64   `json:"calories_consumed"`
	GlycogenRemainingGrams float64   `json:"glycogen_remaining_grams"`
	DistanceMiles          float64   `json:"distance_miles"`
	TimeHours              float64   `json:"time_hours"`
	recentDeficits         []float64 // trailing per-segment deficits for the trend check
}

// NewCarry seeds the fold with a full glycogen store.
func NewCarry(athlete Athlete) Carry {
	return Carry{GlycogenRemainingGrams: athlete.GlycogenCapacityGrams()}
}

// Calculation is the per-segment output plus the carry for the next
// call. Plain serializable values, no behavior.
type Calculation struct {
	SegmentName             string   `json:"segment_name"`
	SegmentCaloriesBurned   float64  `json:"segment_calories_burned"`
	SegmentCaloriesConsumed float64  `json:"segment_calories_consumed"`
	SegmentDeficit          float64  `json:"segment_deficit"`
	EstimatedGlycogenPct    float64  `json:"estimated_glycogen_pct"`
	BonkRisk                BonkRisk `json:"bonk_risk"`
	TimeToBonkMinutes       *float64 `json:"time_to_bonk_minutes,omitempty"`
	Warnings                []string `json:"warnings,omitempty"`
	Tips                    []string `json:"tips,omitempty"`
	Next                    Carry    `json:"cumulative"`
}

// SegmentBalance computes one step of the fold.
func SegmentBalance(seg SegmentInput, carry Carry, athlete Athlete) Calculation {
	burned := segmentCalories(seg, athlete)
	consumed := seg.CarbsGrams * kcalPerGramCarb

	// Absorption is capped: eating beyond what the gut can process in
	// the segment's duration does not slow depletion further.
	hours := seg.TimeMinutes / 60
	absorbed := math.Min(consumed, athlete.absorptionCeiling()*hours)

	deficit := burned - absorbed
	if deficit < 0 {
		deficit = 0
	}
	glycogenBurnGrams := deficit * glycogenDeficitShare / kcalPerGramCarb

	next := carry
	next.CaloriesBurned += burned
	next.CaloriesConsumed += consumed
	next.GlycogenRemainingGrams = math.Max(0, carry.GlycogenRemainingGrams-glycogenBurnGrams)
	next.DistanceMiles += seg.DistanceMiles
	next.TimeHours += hours
	next.recentDeficits = appendDeficit(carry.recentDeficits, deficit)

	capacity := athlete.GlycogenCapacityGrams()
	pct := 0.0
	if capacity > 0 {
		pct = next.GlycogenRemainingGrams / capacity * 100
	}

	risk := classifyRisk(pct)
	if worsening(next.recentDeficits) {
		risk = escalate(risk)
	}

	calc := Calculation{
		SegmentName:             seg.Name,
		SegmentCaloriesBurned:   burned,
		SegmentCaloriesConsumed: consumed,
		SegmentDeficit:          deficit,
		EstimatedGlycogenPct:    pct,
		BonkRisk:                risk,
		Next:                    next,
	}

	// Linear projection at the current depletion rate; only meaningful
	// when the store is actually shrinking.
	if glycogenBurnGrams > 0 && seg.TimeMinutes > 0 && next.GlycogenRemainingGrams > 0 {
		rate := glycogenBurnGrams / seg.TimeMinutes
		minutes := next.GlycogenRemainingGrams / rate
		calc.TimeToBonkMinutes = &minutes
	}

	calc.Warnings, calc.Tips = adviseSegment(seg, calc, capacity)
	return calc
}

func segmentCalories(seg SegmentInput, athlete Athlete) float64 {
	km := seg.DistanceMiles / milesPerKm
	flat := athlete.BodyWeightKg * km * flatKcalPerKgKm
	climb := athlete.BodyWeightKg * seg.ElevationGainM * climbKcalPerKgM
	descent := athlete.BodyWeightKg * seg.ElevationLossM * descentKcalPerKgM
	return flat + climb + descent
}

func classifyRisk(glycogenPct float64) BonkRisk {
	switch {
	case glycogenPct >= 50:
		return RiskNone
	case glycogenPct >= 30:
		return RiskLow
	case glycogenPct >= 15:
		return RiskModerate
	default:
		return RiskHigh
	}
}

func escalate(risk BonkRisk) BonkRisk {
	switch risk {
	case RiskNone:
		return RiskLow
	case RiskLow:
		return RiskModerate
	default:
		return RiskHigh
	}
}

func appendDeficit(recent []float64, deficit float64) []float64 {
	out := make([]float64, 0, trendWindow)
	start := 0
	if len(recent) >= trendWindow {
		start = len(recent) - trendWindow + 1
	}
	out = append(out, recent[start:]...)
	return append(out, deficit)
}

// worsening reports whether the trailing deficits are strictly
// increasing across the full window.
func worsening(deficits []float64) bool {
	if len(deficits) < trendWindow {
		return false
	}
	for i := 1; i < len(deficits); i++ {
		if deficits[i] <= deficits[i-1] {
			return false
		}
	}
	return true
}

func adviseSegment(seg SegmentInput, calc Calculation, capacity float64) (warnings, tips []string) {
	if capacity > 0 && calc.SegmentDeficit*glycogenDeficitShare/kcalPerGramCarb > capacity*0.15 {
		warnings = append(warnings, fmt.Sprintf("high glycogen depletion on %s", seg.Name))
	}
	if calc.BonkRisk == RiskHigh {
		warnings = append(warnings, "glycogen critically low entering the next segment")
	}
	if calc.SegmentCaloriesConsumed == 0 && seg.TimeMinutes >= 45 {
		tips = append(tips, fmt.Sprintf("plan carbohydrate intake on %s: over 45 minutes with nothing scheduled", seg.Name))
	}
	if calc.BonkRisk == RiskModerate || calc.BonkRisk == RiskHigh {
		tips = append(tips, "front-load intake on runnable terrain; absorption lags by 30-60 minutes")
	}
	return warnings, tips
}
