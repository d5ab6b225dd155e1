package plan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/glasgowwebguy/UltraPlan-Application-sub000/internal/config"
	"github.com/glasgowwebguy/UltraPlan-Application-sub000/internal/energy"
	"github.com/glasgowwebguy/UltraPlan-Application-sub000/internal/fatigue"
	"github.com/glasgowwebguy/UltraPlan-Application-sub000/internal/notify"
	"github.com/glasgowwebguy/UltraPlan-Application-sub000/internal/pace"
	"github.com/glasgowwebguy/UltraPlan-Application-sub000/internal/race"
	"github.com/glasgowwebguy/UltraPlan-Application-sub000/internal/shared/geo"
	"github.com/glasgowwebguy/UltraPlan-Application-sub000/internal/splits"

	"github.com/redis/go-redis/v9"
)

// ErrMissingBodyWeight flags the caller contract violation of asking
// for energy accounting without a valid athlete weight.
var ErrMissingBodyWeight = errors.New("race has no valid body weight; energy model cannot run")

// ErrNoResult means the analysis endpoint was called before a result
// recording was uploaded.
var ErrNoResult = errors.New("no result recording uploaded")

// ErrUnknownStrategy is returned for a strategy query value outside the
// three fixed tiers.
var ErrUnknownStrategy = errors.New("strategy must be aggressive, balanced or conservative")

// Options are what-if overrides for a single plan computation. The zero
// value means the stored race settings; any override bypasses the cache.
type Options struct {
	Strategy      string
	FatigueFactor float64
}

func (o Options) zero() bool {
	return o.Strategy == "" && o.FatigueFactor <= 0
}

type Service struct {
	races *race.Service
	redis *redis.Client
	hub   *notify.Hub
	cfg   config.Config
}

func NewService(races *race.Service, redisClient *redis.Client, hub *notify.Hub, cfg config.Config) *Service {
	return &Service{races: races, redis: redisClient, hub: hub, cfg: cfg}
}

// Get returns the computed plan for a race, serving from the redis
// cache when the race's plan version still matches. The cache is an
// optimization only: results are identical without redis.
func (s *Service) Get(ctx context.Context, raceID string) (Plan, error) {
	return s.GetWithOptions(ctx, raceID, Options{})
}

// GetWithOptions computes a plan with what-if overrides applied. Plans
// with overrides are never cached and never notify subscribers.
func (s *Service) GetWithOptions(ctx context.Context, raceID string, opts Options) (Plan, error) {
	if opts.Strategy != "" {
		if _, ok := pace.StrategyMultiplier(opts.Strategy); !ok {
			return Plan{}, ErrUnknownStrategy
		}
	}

	r, err := s.races.GetRace(ctx, raceID)
	if err != nil {
		return Plan{}, err
	}
	if !opts.zero() {
		return s.build(ctx, r, opts)
	}

	key := cacheKey(r.ID, r.PlanVersion)
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, key).Bytes(); err == nil {
			var p Plan
			if json.Unmarshal(cached, &p) == nil {
				return p, nil
			}
		}
	}

	p, err := s.build(ctx, r, Options{})
	if err != nil {
		return Plan{}, err
	}

	if s.redis != nil {
		if payload, err := json.Marshal(p); err == nil {
			ttl := time.Duration(s.cfg.PlanCacheTTLSeconds) * time.Second
			_ = s.redis.Set(ctx, key, payload, ttl).Err()
		}
	}
	if s.hub != nil {
		event, _ := json.Marshal(recomputeEvent{RaceID: p.RaceID, Version: p.Version, ComputedAt: p.ComputedAt})
		s.hub.PlanRecomputed(p.RaceID, event)
	}
	return p, nil
}

func cacheKey(raceID string, version int) string {
	return fmt.Sprintf("plan:%s:v%d", raceID, version)
}

// build recomputes the whole plan: per-segment pace derivation, tiered
// strategies, fatigue-adjusted times and the energy fold. Idempotent
// for identical inputs.
func (s *Service) build(ctx context.Context, r race.Race, opts Options) (Plan, error) {
	if r.BodyWeightKg <= 0 {
		return Plan{}, ErrMissingBodyWeight
	}

	segments, err := s.races.Segments(ctx, r.ID)
	if err != nil {
		return Plan{}, err
	}
	if len(segments) == 0 {
		// No declared checkpoints: the whole course is one segment.
		segments = []race.Segment{{
			ID:                 "whole-course",
			RaceID:             r.ID,
			Order:              1,
			CheckpointName:     "Finish",
			SegmentDistance:    r.DistanceMiles,
			CumulativeDistance: r.DistanceMiles,
		}}
	}

	track, err := s.races.Course(ctx, r.ID)
	if err != nil {
		track = nil // course upload is optional
	}
	history, err := s.races.Activity(ctx, r.ID, race.RoleHistory)
	if err != nil {
		history = nil // historical recording is optional
	}
	profile := pace.BuildGradientProfile(history)

	fallback := r.FlatPaceMinPerMile
	if fallback <= 0 {
		fallback = s.cfg.FlatPaceMinPerMile
	}
	fatigueFactor := r.FatigueFactor
	if opts.FatigueFactor > 0 {
		fatigueFactor = opts.FatigueFactor
	}
	if fatigueFactor <= 0 {
		fatigueFactor = s.cfg.DefaultFatigueFactor
	}
	strategyMult := 1.0
	if opts.Strategy != "" {
		strategyMult, _ = pace.StrategyMultiplier(opts.Strategy)
	}

	athlete := energy.Athlete{
		BodyWeightKg:          r.BodyWeightKg,
		Trained:               r.Trained,
		AbsorptionKcalPerHour: s.cfg.AbsorptionKcalPerHour,
	}

	p := Plan{
		RaceID:     r.ID,
		Version:    r.PlanVersion,
		ComputedAt: time.Now().UTC(),
		BonkRisk:   energy.RiskNone,
	}

	carry := energy.NewCarry(athlete)
	prevCumulative := 0.0
	cumulativeTime := 0.0
	for _, seg := range segments {
		spec := pace.SegmentSpec{
			Name:          seg.CheckpointName,
			DistanceMiles: seg.SegmentDistance,
			StartMiles:    prevCumulative,
			EndMiles:      seg.CumulativeDistance,
		}
		derivation := pace.DeriveSegmentPace(spec, profile, track, fallback)
		if seg.CustomPace != nil && *seg.CustomPace > 0 {
			derivation.PaceMinPerMile = *seg.CustomPace
			derivation.Reasoning = "user-specified pace: " + derivation.Reasoning
		}

		adjusted := derivation.PaceMinPerMile * strategyMult
		if seg.TerrainFactor != nil && *seg.TerrainFactor > 0 {
			adjusted *= *seg.TerrainFactor
		}

		// Fatigue applies at the segment midpoint so long segments are
		// not charged the end-state multiplier for their whole length.
		mid := prevCumulative + seg.SegmentDistance/2
		multiplier := fatigue.Multiplier(mid, fatigueFactor)
		adjusted *= multiplier

		segTime := adjusted * seg.SegmentDistance
		cumulativeTime += segTime

		carbs := 0.0
		for _, item := range seg.Nutrition {
			carbs += item.TotalCarbsGrams()
		}
		calc := energy.SegmentBalance(energy.SegmentInput{
			Name:           seg.CheckpointName,
			DistanceMiles:  seg.SegmentDistance,
			TimeMinutes:    segTime,
			ElevationGainM: derivation.Elevation.GainMeters,
			ElevationLossM: derivation.Elevation.LossMeters,
			CarbsGrams:     carbs,
		}, carry, athlete)
		carry = calc.Next

		p.Segments = append(p.Segments, SegmentPlan{
			SegmentID:         seg.ID,
			Order:             seg.Order,
			CheckpointName:    seg.CheckpointName,
			DistanceMiles:     seg.SegmentDistance,
			CumulativeMiles:   seg.CumulativeDistance,
			Derivation:        derivation,
			Strategies:        pace.GeneratePaceOptions(derivation.PaceMinPerMile, derivation.Confidence, derivation.Reasoning, derivation.SuggestedHRZone, derivation.SuggestedPowerZone),
			FatigueMultiplier: multiplier,
			AdjustedPaceMinMi: adjusted,
			TimeMinutes:       segTime,
			CumulativeTimeMin: cumulativeTime,
			Energy:            calc,
		})

		if riskAbove(calc.BonkRisk, p.BonkRisk) {
			p.BonkRisk = calc.BonkRisk
		}
		prevCumulative = seg.CumulativeDistance
		p.TotalMiles += seg.SegmentDistance
	}
	p.TotalTimeMinutes = cumulativeTime
	return p, nil
}

var riskRank = map[energy.BonkRisk]int{
	energy.RiskNone:     0,
	energy.RiskLow:      1,
	energy.RiskModerate: 2,
	energy.RiskHigh:     3,
}

func riskAbove(a, b energy.BonkRisk) bool {
	return riskRank[a] > riskRank[b]
}

// FatigueCurve samples the projected slowdown for a race. Query
// overrides fall back to the race's stored pace and factor.
func (s *Service) FatigueCurve(ctx context.Context, raceID string, basePace, factor float64) ([]fatigue.CurvePoint, error) {
	r, err := s.races.GetRace(ctx, raceID)
	if err != nil {
		return nil, err
	}
	if basePace <= 0 {
		basePace = r.FlatPaceMinPerMile
	}
	if basePace <= 0 {
		basePace = s.cfg.FlatPaceMinPerMile
	}
	if factor <= 0 {
		factor = r.FatigueFactor
	}
	if factor <= 0 {
		factor = s.cfg.DefaultFatigueFactor
	}
	return fatigue.GenerateCurve(basePace, r.DistanceMiles, factor, 0), nil
}

// Analysis compares the stored result recording against the computed
// plan and returns splits plus insights.
func (s *Service) Analysis(ctx context.Context, raceID string) (splits.RaceAnalytics, error) {
	p, err := s.Get(ctx, raceID)
	if err != nil {
		return splits.RaceAnalytics{}, err
	}
	actual, err := s.races.Activity(ctx, raceID, race.RoleResult)
	if err != nil {
		return splits.RaceAnalytics{}, ErrNoResult
	}

	planned := make([]splits.PlannedSegment, 0, len(p.Segments))
	for _, sp := range p.Segments {
		planned = append(planned, splits.PlannedSegment{
			Order:              sp.Order,
			CheckpointName:     sp.CheckpointName,
			DistanceMiles:      sp.DistanceMiles,
			CumulativeMiles:    sp.CumulativeMiles,
			PlannedPaceMinMile: sp.AdjustedPaceMinMi,
			AvgGradePercent:    sp.Derivation.Elevation.AvgGradePercent,
		})
	}

	track, err := s.races.Course(ctx, raceID)
	if err != nil {
		track = nil
	}
	checkpoints, err := s.checkpoints(ctx, raceID, len(planned))
	if err != nil {
		checkpoints = nil
	}
	return splits.AnalyzeWithTrack(planned, actual, track, checkpoints), nil
}

func (s *Service) checkpoints(ctx context.Context, raceID string, want int) ([]geo.Checkpoint, error) {
	segments, err := s.races.Segments(ctx, raceID)
	if err != nil || len(segments) != want {
		return nil, err
	}
	checkpoints := make([]geo.Checkpoint, 0, len(segments))
	for _, seg := range segments {
		checkpoints = append(checkpoints, seg.Checkpoint())
	}
	return checkpoints, nil
}
