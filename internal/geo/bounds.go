// Package geo keeps the map viewport pinned to the campus bounding rectangle
// and turns organizer taps into event coordinates.
package geo

import (
	"math"
	"time"
)

// Advisory shown when the viewport drifts off campus, and how long the UI
// keeps it on screen before auto-dismissing.
const (
	OffCampusAdvisory   = "events only available on campus"
	AdvisoryDisplayTime = 3 * time.Second
)

// Pitch angles for the 2D/3D toggle. There are no intermediate states.
const (
	PitchFlat   = 0.0
	PitchTilted = 45.0
)

// Mode is the explicit UI mode of the map screen.
type Mode int

const (
	// ModeIdle is the default browsing mode.
	ModeIdle Mode = iota
	// ModePlacingLocation is active while an organizer picks a coordinate
	// for a new event.
	ModePlacingLocation
)

// Coordinate is a tapped or reported map position.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Rect is the fixed campus bounding rectangle.
type Rect struct {
	MinLat float64 `yaml:"min_lat" json:"min_lat"`
	MaxLat float64 `yaml:"max_lat" json:"max_lat"`
	MinLon float64 `yaml:"min_lon" json:"min_lon"`
	MaxLon float64 `yaml:"max_lon" json:"max_lon"`
}

// Contains reports whether c lies within the rectangle, borders included.
func (r Rect) Contains(c Coordinate) bool {
	return c.Latitude >= r.MinLat && c.Latitude <= r.MaxLat &&
		c.Longitude >= r.MinLon && c.Longitude <= r.MaxLon
}

// Center returns the rectangle's midpoint.
func (r Rect) Center() Coordinate {
	return Coordinate{
		Latitude:  (r.MinLat + r.MaxLat) / 2,
		Longitude: (r.MinLon + r.MaxLon) / 2,
	}
}

// Region is the map's reported viewport: a center plus latitude/longitude spans.
type Region struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	LatitudeDelta  float64 `json:"latitude_delta"`
	LongitudeDelta float64 `json:"longitude_delta"`
}

// Center returns the region's center coordinate.
func (r Region) Center() Coordinate {
	return Coordinate{Latitude: r.Latitude, Longitude: r.Longitude}
}

// Camera is a command for the map display to animate toward.
type Camera struct {
	Center  Coordinate `json:"center"`
	Zoom    float64    `json:"zoom"`
	Pitch   float64    `json:"pitch"`
	Heading float64    `json:"heading"`
}

// Correction is the guard's response to a viewport that drifted off campus.
// Advisory is empty when the drift was caused by the guard's own camera command.
type Correction struct {
	Camera      Camera
	Advisory    string
	AdvisoryFor time.Duration
}

// Guard clamps the visible viewport to a campus rectangle. Panning outside the
// rectangle is corrected after the gesture completes (snap back), not blocked.
//
// Guard is not safe for concurrent use; the map screen drives it from a single
// event loop and a newer viewport report always supersedes older state.
type Guard struct {
	rect   Rect
	buffer float64

	mode         Mode
	tilted       bool
	suppressNext bool
}

// NewGuard builds a guard for the given rectangle. buffer scales the initial
// viewport spans so the whole campus is visible with margin; values <= 0 fall
// back to the campus config default.
func NewGuard(rect Rect, buffer float64) *Guard {
	if buffer <= 0 {
		buffer = DefaultBufferFactor
	}

	return &Guard{rect: rect, buffer: buffer}
}

// InitialRegion returns the viewport for first render: centered on the campus
// midpoint with the rectangle's spans scaled by the buffer factor.
func (g *Guard) InitialRegion() Region {
	center := g.rect.Center()

	return Region{
		Latitude:       center.Latitude,
		Longitude:      center.Longitude,
		LatitudeDelta:  (g.rect.MaxLat - g.rect.MinLat) * g.buffer,
		LongitudeDelta: (g.rect.MaxLon - g.rect.MinLon) * g.buffer,
	}
}

// ViewportChanged inspects the map's reported region after a pan/zoom gesture.
// If the center left the campus rectangle it returns a correction that recenters
// the map at the current zoom level, preserving pitch and heading. The returned
// correction itself moves the camera, so the next off-campus report is expected
// and must not re-surface the advisory; the one-shot suppression flag covers it.
func (g *Guard) ViewportChanged(region Region, pitch, heading float64) (*Correction, bool) {
	if g.rect.Contains(region.Center()) {
		g.suppressNext = false
		return nil, false
	}

	suppressed := g.suppressNext
	g.suppressNext = true

	corr := &Correction{
		Camera: Camera{
			Center:  g.rect.Center(),
			Zoom:    ZoomForLatitudeDelta(region.LatitudeDelta),
			Pitch:   pitch,
			Heading: heading,
		},
	}
	if !suppressed {
		corr.Advisory = OffCampusAdvisory
		corr.AdvisoryFor = AdvisoryDisplayTime
	}

	return corr, true
}

// ZoomForLatitudeDelta converts a viewport latitude span to a tile zoom level.
func ZoomForLatitudeDelta(latitudeDelta float64) float64 {
	if latitudeDelta <= 0 {
		return 0
	}

	return math.Log2(360 / latitudeDelta)
}

// Mode returns the current UI mode.
func (g *Guard) Mode() Mode { return g.mode }

// BeginPlacing enters location-selection mode for a new event.
func (g *Guard) BeginPlacing() { g.mode = ModePlacingLocation }

// CancelPlacing leaves location-selection mode without a pick.
func (g *Guard) CancelPlacing() { g.mode = ModeIdle }

// SelectLocation handles a map tap while placing a new event. It returns the
// tapped coordinate and exits placement mode. The coordinate is intentionally
// not validated against the rectangle: viewport correction is cosmetic,
// placement is authoritative, and an organizer may place an event just outside.
// Taps outside placement mode are ignored.
func (g *Guard) SelectLocation(c Coordinate) (Coordinate, bool) {
	if g.mode != ModePlacingLocation {
		return Coordinate{}, false
	}

	g.mode = ModeIdle

	return c, true
}

// ToggleTilt flips the 2D/3D flag and returns the pitch angle to animate
// toward. The toggle's own camera animation reports a viewport change, so the
// advisory is suppressed for the next correction.
func (g *Guard) ToggleTilt() float64 {
	g.tilted = !g.tilted
	g.suppressNext = true

	if g.tilted {
		return PitchTilted
	}

	return PitchFlat
}
