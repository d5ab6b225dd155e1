package pace

// Tier multipliers. Aggressive is faster (riskier), conservative slower.
const (
	aggressiveMultiplier   = 0.93
	balancedMultiplier     = 1.0
	conservativeMultiplier = 1.08
)

// StrategyMultiplier resolves a tier name to its pace multiplier.
func StrategyMultiplier(name string) (float64, bool) {
	switch name {
	case "aggressive":
		return aggressiveMultiplier, true
	case "balanced":
		return balancedMultiplier, true
	case "conservative":
		return conservativeMultiplier, true
	}
	return 0, false
}

// GeneratePaceOptions expands one derived pace into the three fixed risk
// tiers. Effort zones are recomputed from each tier's pace rather than
// copied from the base: running the same hill faster costs more. Pure
// function, fixed output order.
func GeneratePaceOptions(basePace float64, confidence Confidence, reasoning string, hrZone, powerZone *Zone) []PaceStrategy {
	tiers := []struct {
		name        string
		multiplier  float64
		description string
		bestFor     string
	}{
		{
			name:        "aggressive",
			multiplier:  aggressiveMultiplier,
			description: "Push the derived pace by 7%. Higher blow-up risk late in the race.",
			bestFor:     "Racing for a placement or a stretch goal on a course you know",
		},
		{
			name:        "balanced",
			multiplier:  balancedMultiplier,
			description: "Hold the pace your history supports on this terrain.",
			bestFor:     "A realistic goal time with margin for rough patches",
		},
		{
			name:        "conservative",
			multiplier:  conservativeMultiplier,
			description: "Back off 8% to protect the late miles.",
			bestFor:     "First attempt at the distance or a hot, exposed course",
		},
	}

	options := make([]PaceStrategy, 0, len(tiers))
	for _, tier := range tiers {
		options = append(options, PaceStrategy{
			Name:           tier.name,
			Multiplier:     tier.multiplier,
			PaceMinPerMile: basePace * tier.multiplier,
			Description:    tier.description,
			BestFor:        tier.bestFor,
			Confidence:     confidence,
			Reasoning:      reasoning,
			HRZone:         scaleZone(hrZone, tier.multiplier),
			PowerZone:      scaleZone(powerZone, tier.multiplier),
		})
	}
	return options
}

// scaleZone shifts an effort range inversely with the pace multiplier: a
// 0.93x pace tier raises the target zone, a 1.08x tier lowers it.
func scaleZone(zone *Zone, paceMultiplier float64) *Zone {
	if zone == nil || paceMultiplier <= 0 {
		return nil
	}
	effort := 1 / paceMultiplier
	return &Zone{Low: zone.Low * effort, High: zone.High * effort}
}
