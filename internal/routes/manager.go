package routes

import (
	"context"
	"errors"
	"log"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"route-collection-service/internal/domain"
	"route-collection-service/internal/ports"
)

// MergeDistanceMeters is the proximity bound for automatic route joining.
const MergeDistanceMeters = 50.0

// splitRouteSuffix names the postfix route produced by a split. Collisions
// are resolved by the usual numeric-suffix probe during import.
const splitRouteSuffix = " (split)"

// defaultRouteName seeds name generation when a route arrives unnamed.
const defaultRouteName = "Route"

var (
	// ErrSelectionEmpty is returned by merge/split when no route is selected.
	ErrSelectionEmpty = errors.New("no route selected")
	// ErrNoCandidateFound is returned by merge when no other route's endpoint
	// is within the merge distance.
	ErrNoCandidateFound = errors.New("no mergeable route within distance")
	// ErrSegmentNotFound is returned by split when the segment does not
	// belong to the selected route.
	ErrSegmentNotFound = errors.New("segment not in selected route")
	// ErrRouteEmpty is returned when an operation needs segment geometry the
	// selected route does not have.
	ErrRouteEmpty = errors.New("selected route has no segments")
)

var trailingNumberPattern = regexp.MustCompile(` \d+$`)

// CollectionManager owns the ordered collection of route layers and the
// single selection.
//
// Invariants: route names are pairwise distinct at all times; at most one
// layer is in the Edit state; the selection is always an element of the
// collection or nil. Iteration order is insertion order, which is also the
// tie-break order for closest-route searches.
//
// All operations run to completion under one mutex, preserving the
// no-overlapping-mutation model even when called from concurrent HTTP
// handlers.
type CollectionManager struct {
	mu       sync.Mutex
	layers   []*RouteLayer
	byName   map[string]*RouteLayer
	selected *RouteLayer

	factory  *RouteLayerFactory
	renderer ports.MapRenderer
	notifier ports.ChangeNotifier
}

func NewCollectionManager(factory *RouteLayerFactory, renderer ports.MapRenderer, notifier ports.ChangeNotifier) *CollectionManager {
	return &CollectionManager{
		byName:   map[string]*RouteLayer{},
		factory:  factory,
		renderer: renderer,
		notifier: notifier,
	}
}

// Layers returns the managed layers in insertion order.
func (m *CollectionManager) Layers() []*RouteLayer {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*RouteLayer, len(m.layers))
	copy(out, m.layers)
	return out
}

// Selected returns the layer currently eligible for editing, or nil.
func (m *CollectionManager) Selected() *RouteLayer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selected
}

// LayerByName returns the layer owning the named route, or nil.
func (m *CollectionManager) LayerByName(name string) *RouteLayer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byName[name]
}

// AddRoute wraps the route in a new layer, appends it to the collection,
// attaches it to the renderer, and selects it. A colliding or empty name is
// replaced by a generated one.
func (m *CollectionManager) AddRoute(ctx context.Context, route *domain.Route) *RouteLayer {
	if route == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.nameAvailable(route.Name) {
		route.Name = m.createRouteName(route.Name)
	}

	layer := m.factory.CreateRouteLayer(route)
	m.appendLayer(ctx, layer)
	m.selectLayer(ctx, layer)
	m.publish(ctx, ports.EventRouteAdded, layer.Name())
	return layer
}

// RemoveRoute removes the named route from the collection. Unknown names
// are a silent no-op. If the route held the selection, the selection is
// cleared first; no other route is promoted.
func (m *CollectionManager) RemoveRoute(ctx context.Context, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLayer(ctx, m.byName[name])
}

// IsNameAvailable reports whether name is non-empty and unused.
func (m *CollectionManager) IsNameAvailable(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.nameAvailable(name)
}

// CreateRouteName derives an unused route name from base: any trailing
// " <number>" is stripped, then " 1", " 2", ... are probed and the first
// available candidate is returned.
func (m *CollectionManager) CreateRouteName(base string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createRouteName(base)
}

// ChangeRouteState is the single click-to-activate affordance: a selected
// visible layer is deselected and hidden; an invisible layer is shown first
// and selected; any other layer simply becomes the selection.
func (m *CollectionManager) ChangeRouteState(ctx context.Context, layer *RouteLayer) {
	if layer == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.byName[layer.Name()] != layer {
		return
	}

	if m.selected == layer && layer.route.IsVisible {
		m.selected = nil
		layer.SetHiddenState()
		m.detach(layer)
		m.publish(ctx, ports.EventSelectionChanged, "")
		return
	}

	if !layer.route.IsVisible {
		m.attach(layer)
	}
	m.selectLayer(ctx, layer)
}

// GetData exports deep copies of all visible routes in insertion order.
func (m *CollectionManager) GetData() []*domain.Route {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*domain.Route, 0, len(m.layers))
	for _, l := range m.layers {
		if !l.route.IsVisible {
			continue
		}
		out = append(out, l.route.Copy())
	}
	return out
}

// SetData imports route descriptors into the collection.
//
// A single marker-only route imported into a non-empty collection does not
// create a new route: its markers are merged into the selected route (first
// route when none is selected) through a hide/restore cycle that preserves
// the prior editing sub-mode. Any other import wraps each route in a new
// layer under a non-colliding name; the last imported route ends up
// selected.
func (m *CollectionManager) SetData(ctx context.Context, data []*domain.Route) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setData(ctx, data)
}

func (m *CollectionManager) setData(ctx context.Context, data []*domain.Route) {
	if len(data) == 0 {
		return
	}

	if len(data) == 1 && len(data[0].Segments) == 0 && len(m.layers) > 0 {
		target := m.selected
		if target == nil {
			target = m.layers[0]
		}

		// Cycle through hidden so the renderer sees one consistent update
		// instead of per-marker redraws.
		mode := target.EditMode()
		target.SetHiddenState()
		m.detach(target)
		target.route.Markers = append(target.route.Markers, data[0].Markers...)
		m.attach(target)
		m.selectLayer(ctx, target)
		if mode != EditModeNone {
			target.SetEditMode(mode)
		}
		target.RaiseDataChanged()
		return
	}

	for _, r := range data {
		name := r.Name
		if !m.nameAvailable(name) {
			name = m.createRouteName(name)
		}

		layer := m.factory.CreateRouteLayerFromData(r)
		layer.route.Name = name
		m.appendLayer(ctx, layer)
		m.selectLayer(ctx, layer)
		m.publish(ctx, ports.EventRouteAdded, name)
	}
}

// SplitSelectedRouteAt splits the selected route after the given segment.
//
// Segments past the split point move into a new route. The new route starts
// with a synthetic zero-length bridging segment pinned at the split point
// (routing type copied from the first moved segment) so the break stays
// geometrically continuous. The shortened original route keeps the
// selection and Edit state.
func (m *CollectionManager) SplitSelectedRouteAt(ctx context.Context, seg *domain.Segment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.selected == nil {
		return ErrSelectionEmpty
	}

	idx := -1
	for i, s := range m.selected.route.Segments {
		if s == seg {
			idx = i
			break
		}
	}
	return m.splitSelectedAt(ctx, idx)
}

// SplitSelectedRouteAtIndex is the position-addressed form of
// SplitSelectedRouteAt for callers that do not hold segment references.
func (m *CollectionManager) SplitSelectedRouteAtIndex(ctx context.Context, idx int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.selected == nil {
		return ErrSelectionEmpty
	}
	if idx < 0 || idx >= len(m.selected.route.Segments) {
		return ErrSegmentNotFound
	}
	return m.splitSelectedAt(ctx, idx)
}

func (m *CollectionManager) splitSelectedAt(ctx context.Context, idx int) error {
	selected := m.selected
	route := selected.route

	if idx < 0 {
		return ErrSegmentNotFound
	}
	if len(route.Segments[idx].Latlngs) == 0 {
		return ErrRouteEmpty
	}

	selected.SetHiddenState()
	m.detach(selected)

	postfix := route.Segments[idx+1:]
	route.Segments = route.Segments[:idx+1]

	splitPoint := route.Segments[idx].Latlngs[len(route.Segments[idx].Latlngs)-1]
	bridgeType := route.Segments[idx].RoutingType
	if len(postfix) > 0 {
		bridgeType = postfix[0].RoutingType
	}
	bridge := &domain.Segment{
		Latlngs:     orb.LineString{splitPoint, splitPoint},
		RoutePoint:  splitPoint,
		RoutingType: bridgeType,
	}

	newRoute := &domain.Route{
		Name:     route.Name + splitRouteSuffix,
		Segments: append([]*domain.Segment{bridge}, postfix...),
	}
	m.setData(ctx, []*domain.Route{newRoute})

	m.attach(selected)
	m.selectLayer(ctx, selected)
	selected.RaiseDataChanged()
	return nil
}

// GetClosestRoute returns the first other route (insertion order) with an
// endpoint within the merge distance of the selected route's start point
// (isFirst) or end point. It returns nil when there is no selection, no
// geometry, or no candidate in range.
func (m *CollectionManager) GetClosestRoute(isFirst bool) *RouteLayer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closestRoute(isFirst)
}

func (m *CollectionManager) closestRoute(isFirst bool) *RouteLayer {
	if m.selected == nil {
		return nil
	}

	var endpoint orb.Point
	var ok bool
	if isFirst {
		endpoint, ok = m.selected.route.FirstLatLng()
	} else {
		endpoint, ok = m.selected.route.LastLatLng()
	}
	if !ok {
		return nil
	}

	// First match wins; no distance minimization across candidates.
	for _, l := range m.layers {
		if l == m.selected {
			continue
		}
		first, okFirst := l.route.FirstLatLng()
		last, okLast := l.route.LastLatLng()
		if !okFirst || !okLast {
			continue
		}
		if geo.DistanceHaversine(endpoint, first) <= MergeDistanceMeters ||
			geo.DistanceHaversine(endpoint, last) <= MergeDistanceMeters {
			return l
		}
	}
	return nil
}

// MergeSelectedRouteToClosest absorbs the closest route into the selected
// one, extending its front (isFirst) or back. The absorbed route leaves the
// collection, its markers are concatenated onto the selected route, and its
// geometry is reversed first when its orientation does not line up with the
// splice direction.
func (m *CollectionManager) MergeSelectedRouteToClosest(ctx context.Context, isFirst bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.selected == nil {
		return ErrSelectionEmpty
	}
	selected := m.selected
	if _, ok := selected.route.FirstLatLng(); !ok {
		return ErrRouteEmpty
	}

	closest := m.closestRoute(isFirst)
	if closest == nil {
		return ErrNoCandidateFound
	}

	selected.SetHiddenState()
	m.detach(selected)

	absorbed := closest.route.Copy()
	m.removeLayer(ctx, closest)

	selected.route.Markers = append(selected.route.Markers, absorbed.Markers...)

	if isFirst {
		selStart, _ := selected.route.FirstLatLng()
		absStart, _ := absorbed.FirstLatLng()
		// The absorbed route must end where the selected route starts.
		if geo.DistanceHaversine(absStart, selStart) <= MergeDistanceMeters {
			absorbed = absorbed.Reversed()
		}
		absEnd, _ := absorbed.LastLatLng()

		rest := selected.route.Segments
		if len(rest) > 1 {
			// Drop the start anchor; the junction takes its place.
			rest = rest[1:]
		}
		rest[0].Latlngs = prependPoint(absEnd, rest[0].Latlngs)
		selected.route.Segments = append(absorbed.Segments, rest...)
	} else {
		selEnd, _ := selected.route.LastLatLng()
		absEnd, _ := absorbed.LastLatLng()
		// The absorbed route must start where the selected route ends.
		if geo.DistanceHaversine(absEnd, selEnd) <= MergeDistanceMeters {
			absorbed = absorbed.Reversed()
		}

		tail := absorbed.Segments
		if len(tail) > 1 {
			tail = tail[1:]
		}
		tail[0].Latlngs = prependPoint(selEnd, tail[0].Latlngs)
		selected.route.Segments = append(selected.route.Segments, tail...)
	}

	m.attach(selected)
	m.selectLayer(ctx, selected)
	selected.RaiseDataChanged()
	return nil
}

// internal helpers; callers hold m.mu.

func (m *CollectionManager) nameAvailable(name string) bool {
	if name == "" {
		return false
	}
	_, taken := m.byName[name]
	return !taken
}

func (m *CollectionManager) createRouteName(base string) string {
	if base == "" {
		base = defaultRouteName
	}
	base = trailingNumberPattern.ReplaceAllString(base, "")

	for i := 1; ; i++ {
		candidate := base + " " + strconv.Itoa(i)
		if m.nameAvailable(candidate) {
			return candidate
		}
	}
}

func (m *CollectionManager) appendLayer(_ context.Context, layer *RouteLayer) {
	name := layer.Name()
	// Data-changed notifications outlive the call that created the layer,
	// so they carry their own context.
	layer.onDataChanged = func() {
		m.publish(context.Background(), ports.EventDataChanged, name)
	}
	m.layers = append(m.layers, layer)
	m.byName[name] = layer
	m.attach(layer)
}

func (m *CollectionManager) removeLayer(ctx context.Context, layer *RouteLayer) {
	if layer == nil {
		return
	}
	if m.selected == layer {
		m.selected = nil
		m.publish(ctx, ports.EventSelectionChanged, "")
	}

	m.detach(layer)
	delete(m.byName, layer.Name())
	for i, l := range m.layers {
		if l == layer {
			m.layers = append(m.layers[:i], m.layers[i+1:]...)
			break
		}
	}
	m.publish(ctx, ports.EventRouteRemoved, layer.Name())
}

// selectLayer makes layer the selection, demoting the previous one to
// ReadOnly. This is the only path into the Edit state.
func (m *CollectionManager) selectLayer(ctx context.Context, layer *RouteLayer) {
	if m.selected == layer {
		layer.SetEditRouteState()
		return
	}
	if m.selected != nil {
		m.selected.SetReadOnlyState()
	}
	m.selected = layer
	layer.SetEditRouteState()
	m.publish(ctx, ports.EventSelectionChanged, layer.Name())
}

func (m *CollectionManager) attach(layer *RouteLayer) {
	if m.renderer != nil {
		m.renderer.AddLayer(layer)
	}
}

func (m *CollectionManager) detach(layer *RouteLayer) {
	if m.renderer != nil {
		m.renderer.RemoveLayer(layer)
	}
}

func (m *CollectionManager) publish(ctx context.Context, kind, routeName string) {
	if m.notifier == nil {
		return
	}
	ev := ports.ChangeEvent{
		ID:        uuid.NewString(),
		Kind:      kind,
		RouteName: routeName,
		At:        time.Now().UTC(),
	}
	if err := m.notifier.Notify(ctx, ev); err != nil {
		log.Printf("notify failed: kind=%s route=%s err=%v", kind, routeName, err)
	}
}

func prependPoint(p orb.Point, ls orb.LineString) orb.LineString {
	out := make(orb.LineString, 0, len(ls)+1)
	out = append(out, p)
	return append(out, ls...)
}
