package fatigue

import (
	"math"
	"testing"
)

func TestMultiplier(t *testing.T) {
	if m := Multiplier(0, 3); m != 1 {
		t.Fatalf("expected 1 at zero distance, got %v", m)
	}
	if m := Multiplier(10, 3); math.Abs(m-1.03) > 1e-9 {
		t.Fatalf("expected 1.03 at 10 units, got %v", m)
	}
	if m := Multiplier(100, 3); math.Abs(m-1.30) > 1e-9 {
		t.Fatalf("expected 1.30 at 100 units, got %v", m)
	}
}

func TestGenerateCurveZeroFactorIsNoOp(t *testing.T) {
	curve := GenerateCurve(10, 50, 0, 0)
	if len(curve) == 0 {
		t.Fatalf("expected curve points")
	}
	for _, p := range curve {
		if p.ExpectedPace != 10 {
			t.Fatalf("zero factor must keep pace constant, got %v at %v", p.ExpectedPace, p.Distance)
		}
		if p.PercentDegradation != 0 {
			t.Fatalf("zero factor must show zero degradation")
		}
	}
}

func TestGenerateCurveShape(t *testing.T) {
	curve := GenerateCurve(10, 100, 3, 0)
	if len(curve) != 100 {
		t.Fatalf("expected ceil(totalDistance) points, got %d", len(curve))
	}
	if curve[0].Distance != 0 {
		t.Fatalf("curve must start at 0")
	}
	if math.Abs(curve[len(curve)-1].Distance-100) > 1e-9 {
		t.Fatalf("curve must end at total distance")
	}
	for i := 1; i < len(curve); i++ {
		if curve[i].ExpectedPace <= curve[i-1].ExpectedPace {
			t.Fatalf("expected pace must increase with distance when factor > 0")
		}
	}

	if c := GenerateCurve(10, 0, 3, 0); c != nil {
		t.Fatalf("zero distance must yield empty curve")
	}
}

func TestTotalTimeWithFatigueBounds(t *testing.T) {
	// 10 min/mi over 100 miles at 3%/10mi: always above the flat 1000
	// minutes, bounded by the 30% end-state degradation.
	total := TotalTimeWithFatigue(10, 100, 3)
	if total <= 1000 {
		t.Fatalf("fatigue must add time, got %v", total)
	}
	if total >= 1300 {
		t.Fatalf("total bounded by max degradation, got %v", total)
	}
	// Closed form for the linear model is 1150.
	if math.Abs(total-1150) > 1 {
		t.Fatalf("expected ~1150 minutes, got %v", total)
	}
}

func TestTotalTimeMonotonic(t *testing.T) {
	base := TotalTimeWithFatigue(10, 50, 2)
	if TotalTimeWithFatigue(10, 60, 2) <= base {
		t.Fatalf("total time must increase with distance")
	}
	if TotalTimeWithFatigue(10, 50, 3) <= base {
		t.Fatalf("total time must increase with fatigue factor")
	}
	if TotalTimeWithFatigue(10, 0, 3) != 0 {
		t.Fatalf("degenerate distance must return 0")
	}
	if TotalTimeWithFatigue(0, 50, 3) != 0 {
		t.Fatalf("degenerate pace must return 0")
	}
}

func TestActualFadeRateRoundTrip(t *testing.T) {
	const factor = 3.0
	curve := GenerateCurve(10, 50, factor, 200)
	paces := make([]float64, len(curve))
	distances := make([]float64, len(curve))
	for i, p := range curve {
		paces[i] = p.ExpectedPace
		distances[i] = p.Distance
	}

	rate := ActualFadeRate(paces, distances)
	if math.Abs(rate-factor)/factor > 0.05 {
		t.Fatalf("recovered fade rate %v not within 5%% of %v", rate, factor)
	}
}

func TestActualFadeRateDegenerate(t *testing.T) {
	if r := ActualFadeRate(nil, nil); r != 0 {
		t.Fatalf("empty series must return 0")
	}
	if r := ActualFadeRate([]float64{10}, []float64{5}); r != 0 {
		t.Fatalf("single point must return 0")
	}
	if r := ActualFadeRate([]float64{10, 10}, []float64{0, 0}); r != 0 {
		t.Fatalf("zero total distance must return 0")
	}
}
