// Package ingest is the parsing boundary between uploaded files and the
// engine: GPX tracks become geo.TrackPoint sequences and FIT recordings
// become pace.ActivityRecord sequences. All non-finite or malformed
// values are filtered here so the engine never sees them.
package ingest

import (
	"encoding/xml"
	"errors"
	"io"
	"math"

	"github.com/glasgowwebguy/UltraPlan-Application-sub000/internal/shared/geo"
)

var ErrNoTrackPoints = errors.New("gpx contains no usable track points")

type gpxDoc struct {
	Tracks []gpxTrk `xml:"trk"`
}

type gpxTrk struct {
	Segments []gpxTrkSeg `xml:"trkseg"`
}

type gpxTrkSeg struct {
	Points []gpxTrkPt `xml:"trkpt"`
}

type gpxTrkPt struct {
	Lat float64  `xml:"lat,attr"`
	Lon float64  `xml:"lon,attr"`
	Ele *float64 `xml:"ele"`
}

// ParseGPX decodes a GPX document into distance-ordered track points.
// Cumulative distance is rebuilt from the coordinates; missing
// elevations default to 0 and points with non-finite values are
// dropped.
func ParseGPX(r io.Reader) ([]geo.TrackPoint, error) {
	var doc gpxDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}

	var points []geo.TrackPoint
	cumulative := 0.0
	for _, trk := range doc.Tracks {
		for _, seg := range trk.Segments {
			for _, pt := range seg.Points {
				elevation := 0.0
				if pt.Ele != nil {
					elevation = *pt.Ele
				}
				if !finite(pt.Lat) || !finite(pt.Lon) || !finite(elevation) {
					continue
				}
				if pt.Lat < -90 || pt.Lat > 90 || pt.Lon < -180 || pt.Lon > 180 {
					continue
				}

				if len(points) > 0 {
					prev := points[len(points)-1]
					cumulative += geo.HaversineMiles(prev.Lat, prev.Lng, pt.Lat, pt.Lon)
				}
				points = append(points, geo.TrackPoint{
					Distance:  cumulative,
					Elevation: elevation,
					Lat:       pt.Lat,
					Lng:       pt.Lon,
				})
			}
		}
	}

	if len(points) == 0 {
		return nil, ErrNoTrackPoints
	}
	return points, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
