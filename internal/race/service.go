package race

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/glasgowwebguy/UltraPlan-Application-sub000/internal/db"
	"github.com/glasgowwebguy/UltraPlan-Application-sub000/internal/pace"
	"github.com/glasgowwebguy/UltraPlan-Application-sub000/internal/shared/geo"

	"github.com/google/uuid"
)

// ErrSegmentOrder is returned when a segment write would break the
// non-decreasing cumulative-distance invariant.
var ErrSegmentOrder = errors.New("cumulative distance must be non-decreasing across segment order")

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) CreateRace(ctx context.Context, input Race) (Race, error) {
	input.ID = uuid.NewString()
	row := s.db.QueryRow(ctx, `
		INSERT INTO races (id, name, distance_miles, fatigue_factor, flat_pace_min_per_mile, body_weight_kg, trained, plan_version)
		VALUES ($1,$2,$3,$4,$5,$6,$7,1)
		RETURNING plan_version, created_at
	`, input.ID, input.Name, input.DistanceMiles, input.FatigueFactor, input.FlatPaceMinPerMile, input.BodyWeightKg, input.Trained)
	if err := row.Scan(&input.PlanVersion, &input.CreatedAt); err != nil {
		return Race{}, err
	}
	return input, nil
}

func (s *Service) GetRace(ctx context.Context, id string) (Race, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, distance_miles, fatigue_factor, flat_pace_min_per_mile,
		       COALESCE(body_weight_kg,0), trained, plan_version, created_at
		FROM races WHERE id=$1
	`, id)
	var r Race
	if err := row.Scan(&r.ID, &r.Name, &r.DistanceMiles, &r.FatigueFactor, &r.FlatPaceMinPerMile,
		&r.BodyWeightKg, &r.Trained, &r.PlanVersion, &r.CreatedAt); err != nil {
		return Race{}, err
	}
	return r, nil
}

func (s *Service) DeleteRace(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM races WHERE id=$1`, id)
	return err
}

// bumpPlanVersion invalidates any cached plan for the race. Called on
// every write that changes plan inputs.
func (s *Service) bumpPlanVersion(ctx context.Context, raceID string) error {
	_, err := s.db.Exec(ctx, `UPDATE races SET plan_version = plan_version + 1 WHERE id=$1`, raceID)
	return err
}

func (s *Service) CreateSegment(ctx context.Context, input Segment) (Segment, error) {
	if err := s.checkSegmentOrder(ctx, input); err != nil {
		return Segment{}, err
	}

	input.ID = uuid.NewString()
	row := s.db.QueryRow(ctx, `
		INSERT INTO race_segments (id, race_id, segment_order, checkpoint_name, segment_distance, cumulative_distance, latitude, longitude, custom_pace, terrain_factor)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING created_at
	`, input.ID, input.RaceID, input.Order, input.CheckpointName, input.SegmentDistance,
		input.CumulativeDistance, input.Latitude, input.Longitude, input.CustomPace, input.TerrainFactor)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Segment{}, err
	}

	if err := s.replaceNutrition(ctx, input.ID, input.Nutrition); err != nil {
		return Segment{}, err
	}
	if err := s.bumpPlanVersion(ctx, input.RaceID); err != nil {
		return Segment{}, err
	}
	return input, nil
}

func (s *Service) UpdateSegment(ctx context.Context, id string, patch Segment) (Segment, error) {
	seg, err := s.GetSegment(ctx, id)
	if err != nil {
		return Segment{}, err
	}
	if patch.CheckpointName != "" {
		seg.CheckpointName = patch.CheckpointName
	}
	if patch.Order != 0 {
		seg.Order = patch.Order
	}
	if patch.SegmentDistance != 0 {
		seg.SegmentDistance = patch.SegmentDistance
	}
	if patch.CumulativeDistance != 0 {
		seg.CumulativeDistance = patch.CumulativeDistance
	}
	if patch.Latitude != nil {
		seg.Latitude = patch.Latitude
	}
	if patch.Longitude != nil {
		seg.Longitude = patch.Longitude
	}
	if patch.CustomPace != nil {
		seg.CustomPace = patch.CustomPace
	}
	if patch.TerrainFactor != nil {
		seg.TerrainFactor = patch.TerrainFactor
	}
	if patch.Nutrition != nil {
		seg.Nutrition = patch.Nutrition
	}

	if err := s.checkSegmentOrder(ctx, seg); err != nil {
		return Segment{}, err
	}

	_, err = s.db.Exec(ctx, `
		UPDATE race_segments
		SET segment_order=$2, checkpoint_name=$3, segment_distance=$4, cumulative_distance=$5,
		    latitude=$6, longitude=$7, custom_pace=$8, terrain_factor=$9
		WHERE id=$1
	`, seg.ID, seg.Order, seg.CheckpointName, seg.SegmentDistance, seg.CumulativeDistance,
		seg.Latitude, seg.Longitude, seg.CustomPace, seg.TerrainFactor)
	if err != nil {
		return Segment{}, err
	}

	if patch.Nutrition != nil {
		if err := s.replaceNutrition(ctx, seg.ID, seg.Nutrition); err != nil {
			return Segment{}, err
		}
	}
	if err := s.bumpPlanVersion(ctx, seg.RaceID); err != nil {
		return Segment{}, err
	}
	return seg, nil
}

// checkSegmentOrder enforces the ordering invariant against the
// segment's neighbours: nothing earlier in the order may sit further
// down the course, nothing later may sit before it.
func (s *Service) checkSegmentOrder(ctx context.Context, seg Segment) error {
	var maxBefore, minAfter *float64
	row := s.db.QueryRow(ctx, `
		SELECT MAX(cumulative_distance) FILTER (WHERE segment_order < $2 AND id <> $3),
		       MIN(cumulative_distance) FILTER (WHERE segment_order > $2 AND id <> $3)
		FROM race_segments WHERE race_id=$1
	`, seg.RaceID, seg.Order, seg.ID)
	if err := row.Scan(&maxBefore, &minAfter); err != nil {
		return err
	}
	if maxBefore != nil && seg.CumulativeDistance < *maxBefore {
		return ErrSegmentOrder
	}
	if minAfter != nil && seg.CumulativeDistance > *minAfter {
		return ErrSegmentOrder
	}
	return nil
}

func (s *Service) GetSegment(ctx context.Context, id string) (Segment, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, race_id, segment_order, checkpoint_name, segment_distance, cumulative_distance,
		       latitude, longitude, custom_pace, terrain_factor, created_at
		FROM race_segments WHERE id=$1
	`, id)
	var seg Segment
	if err := row.Scan(&seg.ID, &seg.RaceID, &seg.Order, &seg.CheckpointName, &seg.SegmentDistance,
		&seg.CumulativeDistance, &seg.Latitude, &seg.Longitude, &seg.CustomPace, &seg.TerrainFactor, &seg.CreatedAt); err != nil {
		return Segment{}, err
	}
	items, err := s.nutritionFor(ctx, seg.ID)
	if err != nil {
		return Segment{}, err
	}
	seg.Nutrition = items
	return seg, nil
}

func (s *Service) Segments(ctx context.Context, raceID string) ([]Segment, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, race_id, segment_order, checkpoint_name, segment_distance, cumulative_distance,
		       latitude, longitude, custom_pace, terrain_factor, created_at
		FROM race_segments WHERE race_id=$1
		ORDER BY segment_order
	`, raceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var segments []Segment
	for rows.Next() {
		var seg Segment
		if err := rows.Scan(&seg.ID, &seg.RaceID, &seg.Order, &seg.CheckpointName, &seg.SegmentDistance,
			&seg.CumulativeDistance, &seg.Latitude, &seg.Longitude, &seg.CustomPace, &seg.TerrainFactor, &seg.CreatedAt); err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range segments {
		items, err := s.nutritionFor(ctx, segments[i].ID)
		if err != nil {
			return nil, err
		}
		segments[i].Nutrition = items
	}
	return segments, nil
}

func (s *Service) DeleteSegment(ctx context.Context, id string) error {
	seg, err := s.GetSegment(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(ctx, `DELETE FROM race_segments WHERE id=$1`, id); err != nil {
		return err
	}
	return s.bumpPlanVersion(ctx, seg.RaceID)
}

func (s *Service) replaceNutrition(ctx context.Context, segmentID string, items []NutritionItem) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM segment_nutrition WHERE segment_id=$1`, segmentID); err != nil {
		return err
	}
	for _, item := range items {
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		_, err := s.db.Exec(ctx, `
			INSERT INTO segment_nutrition (id, segment_id, name, carbs_per_serving, sodium_per_serving, water_per_serving, quantity)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`, item.ID, segmentID, item.Name, item.CarbsPerServing, item.SodiumPerServing, item.WaterPerServing, item.Quantity)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) nutritionFor(ctx context.Context, segmentID string) ([]NutritionItem, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, segment_id, name, carbs_per_serving, sodium_per_serving, water_per_serving, quantity
		FROM segment_nutrition WHERE segment_id=$1
		ORDER BY name
	`, segmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []NutritionItem
	for rows.Next() {
		var item NutritionItem
		if err := rows.Scan(&item.ID, &item.SegmentID, &item.Name, &item.CarbsPerServing,
			&item.SodiumPerServing, &item.WaterPerServing, &item.Quantity); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// SaveCourse stores the parsed GPX track for a race as a single blob,
// replacing any previous upload.
func (s *Service) SaveCourse(ctx context.Context, raceID string, points []geo.TrackPoint) error {
	payload, err := json.Marshal(points)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO race_courses (race_id, points)
		VALUES ($1,$2)
		ON CONFLICT (race_id) DO UPDATE SET points=EXCLUDED.points, uploaded_at=now()
	`, raceID, payload)
	if err != nil {
		return err
	}
	return s.bumpPlanVersion(ctx, raceID)
}

func (s *Service) Course(ctx context.Context, raceID string) ([]geo.TrackPoint, error) {
	var payload []byte
	if err := s.db.QueryRow(ctx, `SELECT points FROM race_courses WHERE race_id=$1`, raceID).Scan(&payload); err != nil {
		return nil, err
	}
	var points []geo.TrackPoint
	if err := json.Unmarshal(payload, &points); err != nil {
		return nil, err
	}
	return points, nil
}

// SaveActivity stores a parsed FIT recording under its role. One
// recording per role per race.
func (s *Service) SaveActivity(ctx context.Context, raceID string, role ActivityRole, records []pace.ActivityRecord) error {
	payload, err := json.Marshal(records)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO race_activities (race_id, role, records)
		VALUES ($1,$2,$3)
		ON CONFLICT (race_id, role) DO UPDATE SET records=EXCLUDED.records, uploaded_at=now()
	`, raceID, string(role), payload)
	if err != nil {
		return err
	}
	return s.bumpPlanVersion(ctx, raceID)
}

func (s *Service) Activity(ctx context.Context, raceID string, role ActivityRole) ([]pace.ActivityRecord, error) {
	var payload []byte
	if err := s.db.QueryRow(ctx, `SELECT records FROM race_activities WHERE race_id=$1 AND role=$2`, raceID, string(role)).Scan(&payload); err != nil {
		return nil, err
	}
	var records []pace.ActivityRecord
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, err
	}
	return records, nil
}
