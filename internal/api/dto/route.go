package dto

import (
	"github.com/paulmach/orb"

	"route-collection-service/internal/domain"
)

// LatLng is the wire form of a geographic point.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (p LatLng) toPoint() orb.Point { return orb.Point{p.Lng, p.Lat} }

func fromPoint(pt orb.Point) LatLng { return LatLng{Lat: pt.Lat(), Lng: pt.Lon()} }

// SegmentPayload is the wire form of one route segment.
type SegmentPayload struct {
	Latlngs     []LatLng `json:"latlngs"`
	RoutePoint  LatLng   `json:"routePoint"`
	RoutingType string   `json:"routingType"`
}

// MarkerPayload is the wire form of one waypoint marker.
type MarkerPayload struct {
	Latlng LatLng `json:"latlng"`
	Title  string `json:"title"`
	Type   string `json:"type"`
}

// RoutePayload is the route descriptor exchanged on import and export.
type RoutePayload struct {
	Name     string           `json:"name,omitempty"`
	Segments []SegmentPayload `json:"segments"`
	Markers  []MarkerPayload  `json:"markers"`
}

func (p RoutePayload) ToDomain() *domain.Route {
	r := &domain.Route{
		Name:     p.Name,
		Segments: make([]*domain.Segment, 0, len(p.Segments)),
		Markers:  make([]domain.Marker, 0, len(p.Markers)),
	}
	for _, s := range p.Segments {
		seg := &domain.Segment{
			Latlngs:     make(orb.LineString, 0, len(s.Latlngs)),
			RoutePoint:  s.RoutePoint.toPoint(),
			RoutingType: domain.RoutingType(s.RoutingType),
		}
		for _, ll := range s.Latlngs {
			seg.Latlngs = append(seg.Latlngs, ll.toPoint())
		}
		r.Segments = append(r.Segments, seg)
	}
	for _, m := range p.Markers {
		r.Markers = append(r.Markers, domain.Marker{
			Latlng: m.Latlng.toPoint(),
			Title:  m.Title,
			Type:   m.Type,
		})
	}
	return r
}

func FromDomain(r *domain.Route) RoutePayload {
	p := RoutePayload{
		Name:     r.Name,
		Segments: make([]SegmentPayload, 0, len(r.Segments)),
		Markers:  make([]MarkerPayload, 0, len(r.Markers)),
	}
	for _, s := range r.Segments {
		sp := SegmentPayload{
			Latlngs:     make([]LatLng, 0, len(s.Latlngs)),
			RoutePoint:  fromPoint(s.RoutePoint),
			RoutingType: string(s.RoutingType),
		}
		for _, pt := range s.Latlngs {
			sp.Latlngs = append(sp.Latlngs, fromPoint(pt))
		}
		p.Segments = append(p.Segments, sp)
	}
	for _, m := range r.Markers {
		p.Markers = append(p.Markers, MarkerPayload{
			Latlng: fromPoint(m.Latlng),
			Title:  m.Title,
			Type:   m.Type,
		})
	}
	return p
}

// RouteSummary describes one managed route for listing endpoints.
type RouteSummary struct {
	Name         string `json:"name"`
	Visible      bool   `json:"visible"`
	State        string `json:"state"`
	Selected     bool   `json:"selected"`
	SegmentCount int    `json:"segment_count"`
	MarkerCount  int    `json:"marker_count"`
}

type ListRoutesResponse struct {
	Routes []RouteSummary `json:"routes"`
}

type ExportResponse struct {
	Routes []RoutePayload `json:"routes"`
}

type ImportRequest struct {
	Routes []RoutePayload `json:"routes"`
}

type SelectRequest struct {
	Name string `json:"name"`
}

type SplitRequest struct {
	SegmentIndex int `json:"segment_index"`
}

type MergeRequest struct {
	IsFirst bool `json:"is_first"`
}

type SnapshotRequest struct {
	Name string `json:"name"`
}

type ListSnapshotsResponse struct {
	Snapshots []string `json:"snapshots"`
}
