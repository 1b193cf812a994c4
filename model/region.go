package model

import "fmt"

// MaxPolygonPoints bounds the number of vertices in a GeoPolygon.
const MaxPolygonPoints = 20

// GeoPoint is a WGS84 latitude/longitude in degrees.
type GeoPoint struct {
	Latitude  float64
	Longitude float64
}

// NewGeoPoint validates lat in [-90, 90] and lon in [-180, 180].
func NewGeoPoint(lat, lon float64) (GeoPoint, error) {
	if lat < -90 || lat > 90 {
		return GeoPoint{}, fmt.Errorf("%w: latitude %g outside [-90, 90]", ErrInvalidGeometry, lat)
	}
	if lon < -180 || lon > 180 {
		return GeoPoint{}, fmt.Errorf("%w: longitude %g outside [-180, 180]", ErrInvalidGeometry, lon)
	}
	return GeoPoint{Latitude: lat, Longitude: lon}, nil
}

// GeoPolygon is a closed area described by up to MaxPolygonPoints vertices.
// An empty polygon is allowed; otherwise at least three points are needed.
type GeoPolygon struct {
	points []GeoPoint
}

// NewGeoPolygon validates the vertex count.
func NewGeoPolygon(points ...GeoPoint) (GeoPolygon, error) {
	if len(points) > MaxPolygonPoints {
		return GeoPolygon{}, fmt.Errorf("%w: polygon has %d points, max %d", ErrInvalidGeometry, len(points), MaxPolygonPoints)
	}
	if len(points) > 0 && len(points) < 3 {
		return GeoPolygon{}, fmt.Errorf("%w: polygon needs at least 3 points, got %d", ErrInvalidGeometry, len(points))
	}
	return GeoPolygon{points: append([]GeoPoint(nil), points...)}, nil
}

// AddPoint appends a vertex, refusing to exceed MaxPolygonPoints.
func (p *GeoPolygon) AddPoint(pt GeoPoint) error {
	if len(p.points) >= MaxPolygonPoints {
		return fmt.Errorf("%w: polygon already has %d points", ErrInvalidGeometry, MaxPolygonPoints)
	}
	p.points = append(p.points, pt)
	return nil
}

// Points returns a copy of the vertices.
func (p GeoPolygon) Points() []GeoPoint { return append([]GeoPoint(nil), p.points...) }

// Len returns the vertex count.
func (p GeoPolygon) Len() int { return len(p.points) }

// BoundingBox returns (minLat, minLon, maxLat, maxLon). An empty polygon
// yields all zeros.
func (p GeoPolygon) BoundingBox() (minLat, minLon, maxLat, maxLon float64) {
	if len(p.points) == 0 {
		return 0, 0, 0, 0
	}
	minLat, maxLat = p.points[0].Latitude, p.points[0].Latitude
	minLon, maxLon = p.points[0].Longitude, p.points[0].Longitude
	for _, pt := range p.points[1:] {
		minLat = min(minLat, pt.Latitude)
		maxLat = max(maxLat, pt.Latitude)
		minLon = min(minLon, pt.Longitude)
		maxLon = max(maxLon, pt.Longitude)
	}
	return minLat, minLon, maxLat, maxLon
}

// Center is the centre of the bounding box.
func (p GeoPolygon) Center() GeoPoint {
	minLat, minLon, maxLat, maxLon := p.BoundingBox()
	return GeoPoint{Latitude: (minLat + maxLat) / 2, Longitude: (minLon + maxLon) / 2}
}

// PolygonFromBoundingBox builds a four-vertex rectangle.
func PolygonFromBoundingBox(minLat, minLon, maxLat, maxLon float64) (GeoPolygon, error) {
	corners := [][2]float64{{minLat, minLon}, {minLat, maxLon}, {maxLat, maxLon}, {maxLat, minLon}}
	pts := make([]GeoPoint, 0, len(corners))
	for _, c := range corners {
		pt, err := NewGeoPoint(c[0], c[1])
		if err != nil {
			return GeoPolygon{}, err
		}
		pts = append(pts, pt)
	}
	return NewGeoPolygon(pts...)
}

// GeographicRegion is a named area of interest for a requirement or KPI.
type GeographicRegion struct {
	Name        string
	Description string
	Polygon     GeoPolygon
	IsGlobal    bool
}

// GlobalRegion covers the whole Earth.
func GlobalRegion() *GeographicRegion {
	poly, _ := PolygonFromBoundingBox(-90, -180, 90, 180)
	return &GeographicRegion{
		Name:        "Global",
		Description: "Global coverage",
		Polygon:     poly,
		IsGlobal:    true,
	}
}

// PointOfInterest builds a small ±0.1° box around lat/lon.
func PointOfInterest(lat, lon float64, name string) (*GeographicRegion, error) {
	if _, err := NewGeoPoint(lat, lon); err != nil {
		return nil, err
	}
	const d = 0.1
	poly, err := PolygonFromBoundingBox(
		max(lat-d, -90), max(lon-d, -180),
		min(lat+d, 90), min(lon+d, 180),
	)
	if err != nil {
		return nil, err
	}
	return &GeographicRegion{
		Name:        name,
		Description: fmt.Sprintf("Point of interest at %.4f, %.4f", lat, lon),
		Polygon:     poly,
	}, nil
}
