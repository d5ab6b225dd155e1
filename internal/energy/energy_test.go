package energy

import (
	"testing"
)

var athlete = Athlete{BodyWeightKg: 70, Trained: true}

func hillSegment(name string, carbs float64) SegmentInput {
	return SegmentInput{
		Name:           name,
		DistanceMiles:  8,
		TimeMinutes:    100,
		ElevationGainM: 300,
		ElevationLossM: 150,
		CarbsGrams:     carbs,
	}
}

func TestGlycogenNonIncreasingWithoutIntake(t *testing.T) {
	carry := NewCarry(athlete)
	for i := 0; i < 5; i++ {
		calc := SegmentBalance(hillSegment("seg", 0), carry, athlete)
		if calc.Next.GlycogenRemainingGrams > carry.GlycogenRemainingGrams {
			t.Fatalf("glycogen increased without intake: %v -> %v",
				carry.GlycogenRemainingGrams, calc.Next.GlycogenRemainingGrams)
		}
		carry = calc.Next
	}
}

func TestIntakeReducesDepletion(t *testing.T) {
	carry := NewCarry(athlete)
	fasted := SegmentBalance(hillSegment("seg", 0), carry, athlete)
	fed := SegmentBalance(hillSegment("seg", 60), carry, athlete)

	if fed.Next.GlycogenRemainingGrams <= fasted.Next.GlycogenRemainingGrams {
		t.Fatalf("carbohydrate intake must slow depletion: fed %v, fasted %v",
			fed.Next.GlycogenRemainingGrams, fasted.Next.GlycogenRemainingGrams)
	}
}

func TestAbsorptionCeilingCapsCredit(t *testing.T) {
	carry := NewCarry(athlete)
	// 100 minutes at the default 250 kcal/h ceiling absorbs at most
	// ~417 kcal; 200g of carbs is 800 kcal.
	moderate := SegmentBalance(hillSegment("seg", 110), carry, athlete) // 440 kcal, just above ceiling
	gorged := SegmentBalance(hillSegment("seg", 200), carry, athlete)

	if gorged.Next.GlycogenRemainingGrams != moderate.Next.GlycogenRemainingGrams {
		t.Fatalf("intake beyond the absorption ceiling must not slow depletion further: %v vs %v",
			gorged.Next.GlycogenRemainingGrams, moderate.Next.GlycogenRemainingGrams)
	}
	if gorged.Next.CaloriesConsumed <= moderate.Next.CaloriesConsumed {
		t.Fatalf("consumed calories still count what was eaten")
	}
}

func TestBonkRiskThresholds(t *testing.T) {
	cases := []struct {
		pct  float64
		want BonkRisk
	}{
		{80, RiskNone},
		{50, RiskNone},
		{40, RiskLow},
		{20, RiskModerate},
		{10, RiskHigh},
	}
	for _, tc := range cases {
		if got := classifyRisk(tc.pct); got != tc.want {
			t.Fatalf("pct %v: expected %s, got %s", tc.pct, tc.want, got)
		}
	}
}

func TestWorseningTrendEscalates(t *testing.T) {
	carry := NewCarry(athlete)

	// Three segments with strictly growing deficits.
	sizes := []float64{4, 6, 8}
	var calc Calculation
	for i, mi := range sizes {
		seg := SegmentInput{Name: "seg", DistanceMiles: mi, TimeMinutes: mi * 12, ElevationGainM: 50 * float64(i+1)}
		calc = SegmentBalance(seg, carry, athlete)
		carry = calc.Next
	}

	base := classifyRisk(calc.EstimatedGlycogenPct)
	if calc.BonkRisk == base {
		t.Fatalf("worsening deficit trend must escalate risk above %s", base)
	}
}

func TestTimeToBonkProjection(t *testing.T) {
	carry := NewCarry(athlete)
	calc := SegmentBalance(hillSegment("seg", 0), carry, athlete)
	if calc.TimeToBonkMinutes == nil {
		t.Fatalf("depleting segment must project time to bonk")
	}
	if *calc.TimeToBonkMinutes <= 0 {
		t.Fatalf("projection must be positive, got %v", *calc.TimeToBonkMinutes)
	}

	// An all-downhill crawl with heavy fueling runs a surplus: no
	// projection.
	rest := SegmentInput{Name: "rest", DistanceMiles: 0.5, TimeMinutes: 60, CarbsGrams: 100}
	calc = SegmentBalance(rest, carry, athlete)
	if calc.TimeToBonkMinutes != nil {
		t.Fatalf("no projection when the store is not shrinking")
	}
}

func TestFoldThreadsCumulativeTotals(t *testing.T) {
	carry := NewCarry(athlete)
	segments := []SegmentInput{
		hillSegment("a", 30),
		hillSegment("b", 30),
		hillSegment("c", 30),
	}

	var burned, consumed, miles float64
	for _, seg := range segments {
		calc := SegmentBalance(seg, carry, athlete)
		burned += calc.SegmentCaloriesBurned
		consumed += calc.SegmentCaloriesConsumed
		miles += seg.DistanceMiles
		carry = calc.Next
	}

	if diff := carry.CaloriesBurned - burned; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("carry burned %v != summed %v", carry.CaloriesBurned, burned)
	}
	if diff := carry.CaloriesConsumed - consumed; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("carry consumed %v != summed %v", carry.CaloriesConsumed, consumed)
	}
	if carry.DistanceMiles != miles {
		t.Fatalf("carry distance %v != %v", carry.DistanceMiles, miles)
	}
}

func TestEccentricCostSmallerThanClimb(t *testing.T) {
	climb := SegmentInput{Name: "up", DistanceMiles: 5, TimeMinutes: 70, ElevationGainM: 400}
	descent := SegmentInput{Name: "down", DistanceMiles: 5, TimeMinutes: 50, ElevationLossM: 400}

	carry := NewCarry(athlete)
	up := SegmentBalance(climb, carry, athlete)
	down := SegmentBalance(descent, carry, athlete)

	flatOnly := SegmentBalance(SegmentInput{Name: "flat", DistanceMiles: 5, TimeMinutes: 60}, carry, athlete)
	if down.SegmentCaloriesBurned <= flatOnly.SegmentCaloriesBurned {
		t.Fatalf("descending still costs more than flat")
	}
	if up.SegmentCaloriesBurned <= down.SegmentCaloriesBurned {
		t.Fatalf("climbing must cost more than descending")
	}
}

func TestGlycogenCapacityScalesWithWeight(t *testing.T) {
	light := Athlete{BodyWeightKg: 55}
	heavy := Athlete{BodyWeightKg: 90}
	if light.GlycogenCapacityGrams() >= heavy.GlycogenCapacityGrams() {
		t.Fatalf("capacity must scale with body weight")
	}
	trained := Athlete{BodyWeightKg: 55, Trained: true}
	if trained.GlycogenCapacityGrams() <= light.GlycogenCapacityGrams() {
		t.Fatalf("trained storage must exceed untrained")
	}
}
