package geo

import "math"

// earthRadiusMiles is used for all great-circle math. Distances are kept
// in miles internally; callers convert at the boundary if they need km.
const earthRadiusMiles = 3959.0

// TrackPoint is one point of a parsed course track, ordered by ascending
// cumulative distance (miles). Elevation stays in meters.
type TrackPoint struct {
	Distance  float64 `json:"distance"`
	Elevation float64 `json:"elevation"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
}

// Checkpoint is the minimal view of a race segment the matcher needs.
// Lat/Lng are nil when the user never placed the checkpoint on the map.
type Checkpoint struct {
	Order int
	Name  string
	Lat   *float64
	Lng   *float64
}

// TrackSlice is a contiguous run of track points between two checkpoints.
type TrackSlice struct {
	Points         []TrackPoint `json:"points"`
	SegmentIndex   int          `json:"segment_index"`
	CheckpointName string       `json:"checkpoint_name,omitempty"`
}

// HaversineMiles returns the great-circle distance between two lat/lng
// pairs. Inputs outside [-90,90]/[-180,180] are passed through unchecked;
// validation is the caller's job.
func HaversineMiles(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMiles * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Early-exit bounds for FindClosestTrackPoint. Once the best match is
// within closeEnough and the next candidate regresses past twice the
// best distance, the scan stops. Known limitation: a self-intersecting
// track (out-and-back) can hide a closer point further along; kept
// as-is because changing it changes checkpoint matching on existing
// plans.
const closeEnough = 50.0

// FindClosestTrackPoint scans points from searchStart and returns the
// index of the point nearest to the target coordinate. Returns -1 for an
// empty slice or an out-of-range start index.
func FindClosestTrackPoint(targetLat, targetLng float64, points []TrackPoint, searchStart int) int {
	if len(points) == 0 || searchStart >= len(points) {
		return -1
	}
	if searchStart < 0 {
		searchStart = 0
	}

	best := searchStart
	bestDist := HaversineMiles(targetLat, targetLng, points[searchStart].Lat, points[searchStart].Lng)

	for i := searchStart + 1; i < len(points); i++ {
		d := HaversineMiles(targetLat, targetLng, points[i].Lat, points[i].Lng)
		if d < bestDist {
			bestDist = d
			best = i
			continue
		}
		if bestDist < closeEnough && d > bestDist*2 {
			break
		}
	}
	return best
}

// SplitTrackByCheckpoints slices the track into contiguous sub-tracks at
// the positions of the GPS-placed checkpoints. Checkpoints without
// coordinates are skipped here; the caller falls back to cumulative
// distance for those. With no matchable checkpoints the whole track
// comes back as a single slice.
func SplitTrackByCheckpoints(points []TrackPoint, checkpoints []Checkpoint) []TrackSlice {
	if len(points) == 0 {
		return nil
	}

	located := make([]Checkpoint, 0, len(checkpoints))
	for _, cp := range checkpoints {
		if cp.Lat != nil && cp.Lng != nil {
			located = append(located, cp)
		}
	}
	sortCheckpointsByOrder(located)

	if len(located) == 0 {
		return []TrackSlice{{Points: points, SegmentIndex: 0}}
	}

	type match struct {
		index int
		cp    Checkpoint
	}
	matches := make([]match, 0, len(located))
	searchFrom := 0
	for _, cp := range located {
		idx := FindClosestTrackPoint(*cp.Lat, *cp.Lng, points, searchFrom)
		if idx < 0 {
			continue
		}
		matches = append(matches, match{index: idx, cp: cp})
		searchFrom = idx
	}

	// Matches can land out of order on noisy tracks; re-sort by index so
	// the slices stay contiguous.
	for i := 1; i < len(matches); i++ {
		for j := i; j > 0 && matches[j].index < matches[j-1].index; j-- {
			matches[j], matches[j-1] = matches[j-1], matches[j]
		}
	}

	var slices []TrackSlice
	prev := 0
	segIdx := 0
	for _, m := range matches {
		if m.index <= prev {
			// Checkpoint collapsed onto its predecessor (or the track
			// start): no empty slice.
			continue
		}
		end := m.index
		if end >= len(points) {
			end = len(points) - 1
		}
		slices = append(slices, TrackSlice{
			Points:         points[prev : end+1],
			SegmentIndex:   segIdx,
			CheckpointName: m.cp.Name,
		})
		prev = end
		segIdx++
	}
	if prev < len(points)-1 {
		slices = append(slices, TrackSlice{Points: points[prev:], SegmentIndex: segIdx})
	}
	return slices
}

func sortCheckpointsByOrder(cps []Checkpoint) {
	for i := 1; i < len(cps); i++ {
		for j := i; j > 0 && cps[j].Order < cps[j-1].Order; j-- {
			cps[j], cps[j-1] = cps[j-1], cps[j]
		}
	}
}

// SampleTrackPoints decimates a dense track, emitting a point every time
// the accumulated great-circle distance reaches interval miles. The
// final point is always kept. Deterministic: same input, same output.
func SampleTrackPoints(points []TrackPoint, interval float64) []TrackPoint {
	if len(points) == 0 {
		return nil
	}
	if interval <= 0 || len(points) == 1 {
		return points
	}

	sampled := []TrackPoint{points[0]}
	accumulated := 0.0
	for i := 1; i < len(points)-1; i++ {
		accumulated += HaversineMiles(points[i-1].Lat, points[i-1].Lng, points[i].Lat, points[i].Lng)
		if accumulated >= interval {
			sampled = append(sampled, points[i])
			accumulated = 0
		}
	}
	sampled = append(sampled, points[len(points)-1])
	return sampled
}
