package domain

import (
	"github.com/paulmach/orb"
)

// RoutingType tags a segment with the travel mode used to reach its route
// point. It is an opaque categorical value: the core passes it through
// unchanged and attaches no meaning beyond equality.
type RoutingType string

const (
	RoutingTypeHike  RoutingType = "Hike"
	RoutingTypeBike  RoutingType = "Bike"
	RoutingTypeDrive RoutingType = "Drive"
	RoutingTypeNone  RoutingType = "None"
)

// Segment is a contiguous sub-path of a route.
//
// Latlngs holds the path geometry (two points minimum for a real segment;
// a zero-length anchor segment repeats a single point). RoutePoint is the
// anchor the segment leads to.
type Segment struct {
	Latlngs     orb.LineString
	RoutePoint  orb.Point
	RoutingType RoutingType
}

// Marker is a titled waypoint attached to a route, independent of the
// route's path geometry.
type Marker struct {
	Latlng orb.Point
	Title  string
	Type   string
}

// Route is a named, ordered path made of segments plus attached markers.
// Names are unique within a collection; uniqueness is enforced by the
// collection manager, not here.
type Route struct {
	Name      string
	IsVisible bool
	Segments  []*Segment
	Markers   []Marker
}

// FirstLatLng returns the route's logical start point: the first point of
// the first segment. ok is false when the route has no segment geometry.
func (r *Route) FirstLatLng() (orb.Point, bool) {
	if len(r.Segments) == 0 || len(r.Segments[0].Latlngs) == 0 {
		return orb.Point{}, false
	}
	return r.Segments[0].Latlngs[0], true
}

// LastLatLng returns the last point of the last segment. ok is false when
// the route has no segment geometry; callers must guard before using the
// point.
func (r *Route) LastLatLng() (orb.Point, bool) {
	if len(r.Segments) == 0 {
		return orb.Point{}, false
	}
	last := r.Segments[len(r.Segments)-1]
	if len(last.Latlngs) == 0 {
		return orb.Point{}, false
	}
	return last.Latlngs[len(last.Latlngs)-1], true
}

// Copy returns a deep copy of the route. Mutating the copy never aliases
// the original's segments, point lists, or markers.
func (r *Route) Copy() *Route {
	out := &Route{
		Name:      r.Name,
		IsVisible: r.IsVisible,
		Segments:  make([]*Segment, 0, len(r.Segments)),
		Markers:   make([]Marker, len(r.Markers)),
	}
	for _, s := range r.Segments {
		out.Segments = append(out.Segments, s.Copy())
	}
	copy(out.Markers, r.Markers)
	return out
}

// Copy returns a deep copy of the segment.
func (s *Segment) Copy() *Segment {
	ls := make(orb.LineString, len(s.Latlngs))
	copy(ls, s.Latlngs)
	return &Segment{
		Latlngs:     ls,
		RoutePoint:  s.RoutePoint,
		RoutingType: s.RoutingType,
	}
}

// Reversed returns a new route traversing the same path end-to-start:
// segment order is reversed and so is the point order within each segment.
// Each segment keeps the routing type of the geometry it carries, and its
// route point moves to the new far end, so directionality stays consistent
// end-to-end. The receiver is never mutated.
func (r *Route) Reversed() *Route {
	out := &Route{
		Name:      r.Name,
		IsVisible: r.IsVisible,
		Segments:  make([]*Segment, 0, len(r.Segments)),
		Markers:   make([]Marker, len(r.Markers)),
	}
	copy(out.Markers, r.Markers)

	for i := len(r.Segments) - 1; i >= 0; i-- {
		src := r.Segments[i]
		ls := make(orb.LineString, len(src.Latlngs))
		for j, p := range src.Latlngs {
			ls[len(src.Latlngs)-1-j] = p
		}
		seg := &Segment{Latlngs: ls, RoutingType: src.RoutingType}
		if len(ls) > 0 {
			seg.RoutePoint = ls[len(ls)-1]
		}
		out.Segments = append(out.Segments, seg)
	}
	return out
}
