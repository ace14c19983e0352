package routes

import (
	"context"
	"testing"

	"github.com/paulmach/orb"

	"route-collection-service/internal/domain"
	"route-collection-service/internal/ports"
)

// Test coordinates around a base point; one degree of latitude is roughly
// 111 km, so 0.0001 deg is about 11 m and 0.01 deg is far outside the merge
// distance.
var (
	p1 = orb.Point{35.0000, 32.0000}
	p2 = orb.Point{35.0100, 32.0100}
	p3 = orb.Point{35.0100, 32.0101} // ~11 m from p2
	p4 = orb.Point{35.0200, 32.0200}
)

func testSegment(points ...orb.Point) *domain.Segment {
	return &domain.Segment{
		Latlngs:     orb.LineString(points),
		RoutePoint:  points[len(points)-1],
		RoutingType: domain.RoutingTypeHike,
	}
}

type recordingNotifier struct {
	events []ports.ChangeEvent
}

func (n *recordingNotifier) Notify(_ context.Context, ev ports.ChangeEvent) error {
	n.events = append(n.events, ev)
	return nil
}

func (n *recordingNotifier) kinds() []string {
	out := make([]string, 0, len(n.events))
	for _, ev := range n.events {
		out = append(out, ev.Kind)
	}
	return out
}

func newTestManager() (*CollectionManager, *recordingNotifier) {
	notifier := &recordingNotifier{}
	return NewCollectionManager(&RouteLayerFactory{}, nil, notifier), notifier
}

func TestAddRouteNamesStayDistinct(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		m.AddRoute(ctx, &domain.Route{Name: "Trail"})
	}

	seen := map[string]bool{}
	for _, l := range m.Layers() {
		if seen[l.Name()] {
			t.Fatalf("duplicate route name %q", l.Name())
		}
		seen[l.Name()] = true
	}
	if len(seen) != 4 {
		t.Fatalf("expected 4 routes, got %d", len(seen))
	}
}

func TestCreateRouteName(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	m.AddRoute(ctx, &domain.Route{Name: "Route 1"})
	m.AddRoute(ctx, &domain.Route{Name: "Route 2"})

	if got := m.CreateRouteName("Route"); got != "Route 3" {
		t.Errorf("CreateRouteName(Route) = %q, want %q", got, "Route 3")
	}
	// A trailing number on the base is stripped before probing.
	if got := m.CreateRouteName("Route 1"); got != "Route 3" {
		t.Errorf("CreateRouteName(Route 1) = %q, want %q", got, "Route 3")
	}
}

func TestIsNameAvailable(t *testing.T) {
	m, _ := newTestManager()
	m.AddRoute(context.Background(), &domain.Route{Name: "Trail"})

	if m.IsNameAvailable("Trail") {
		t.Error("taken name reported available")
	}
	if m.IsNameAvailable("") {
		t.Error("empty name reported available")
	}
	if !m.IsNameAvailable("Other") {
		t.Error("unused name reported unavailable")
	}
}

func TestNewRouteIsSelectedAndEditable(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	a := m.AddRoute(ctx, &domain.Route{Name: "A"})
	if m.Selected() != a || a.State() != LayerEdit {
		t.Fatal("new route must be selected and in edit state")
	}

	b := m.AddRoute(ctx, &domain.Route{Name: "B"})
	if m.Selected() != b {
		t.Fatal("latest route must take the selection")
	}
	if a.State() != LayerReadOnly {
		t.Fatalf("previous selection state = %v, want readonly", a.State())
	}

	edits := 0
	for _, l := range m.Layers() {
		if l.State() == LayerEdit {
			edits++
		}
	}
	if edits != 1 {
		t.Fatalf("layers in edit state = %d, want 1", edits)
	}
}

func TestRemoveSelectedRouteClearsSelection(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	m.AddRoute(ctx, &domain.Route{Name: "A"})
	m.AddRoute(ctx, &domain.Route{Name: "B"})

	m.RemoveRoute(ctx, "B")

	if m.Selected() != nil {
		t.Error("selection must be cleared, not promoted")
	}
	if m.LayerByName("B") != nil {
		t.Error("removed route still present")
	}
	if len(m.Layers()) != 1 {
		t.Fatalf("expected 1 route, got %d", len(m.Layers()))
	}
}

func TestRemoveUnknownRouteIsNoOp(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	a := m.AddRoute(ctx, &domain.Route{Name: "A"})
	m.RemoveRoute(ctx, "missing")

	if len(m.Layers()) != 1 || m.Selected() != a {
		t.Fatal("removing an unknown name must change nothing")
	}
}

func TestChangeRouteStateToggle(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	a := m.AddRoute(ctx, &domain.Route{Name: "A"})

	// Selected and visible: deactivate.
	m.ChangeRouteState(ctx, a)
	if m.Selected() != nil {
		t.Fatal("toggling the selected route must deselect it")
	}
	if a.State() != LayerHidden || a.route.IsVisible {
		t.Fatal("toggled route must be hidden")
	}

	// Hidden: show and select again.
	m.ChangeRouteState(ctx, a)
	if m.Selected() != a || a.State() != LayerEdit || !a.route.IsVisible {
		t.Fatal("toggling a hidden route must show and select it")
	}
}

func TestChangeRouteStateSwitchesSelection(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	a := m.AddRoute(ctx, &domain.Route{Name: "A"})
	b := m.AddRoute(ctx, &domain.Route{Name: "B"})

	m.ChangeRouteState(ctx, a)

	if m.Selected() != a || a.State() != LayerEdit {
		t.Fatal("clicked route must become the selection")
	}
	if b.State() != LayerReadOnly {
		t.Fatalf("demoted route state = %v, want readonly", b.State())
	}
}

func TestGetDataReturnsOnlyVisibleRoutes(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	m.AddRoute(ctx, &domain.Route{Name: "A", Segments: []*domain.Segment{testSegment(p1, p2)}})
	b := m.AddRoute(ctx, &domain.Route{Name: "B"})
	m.ChangeRouteState(ctx, b) // hides B

	data := m.GetData()
	if len(data) != 1 || data[0].Name != "A" {
		t.Fatalf("GetData = %d routes, want only A", len(data))
	}

	// Export is a copy: mutating it must not touch the collection.
	data[0].Segments[0].Latlngs[0] = orb.Point{0, 0}
	start, _ := m.LayerByName("A").Snapshot().FirstLatLng()
	if start != p1 {
		t.Error("exported data aliases live route geometry")
	}
}

func TestSetDataImportsRoutesWithFreshNames(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	m.AddRoute(ctx, &domain.Route{Name: "Trail"})
	m.SetData(ctx, []*domain.Route{
		{Name: "Trail", Segments: []*domain.Segment{testSegment(p1, p2)}},
		{Segments: []*domain.Segment{testSegment(p2, p4)}},
	})

	if len(m.Layers()) != 3 {
		t.Fatalf("expected 3 routes, got %d", len(m.Layers()))
	}
	if m.LayerByName("Trail 1") == nil {
		t.Error("colliding import was not renamed with a numeric suffix")
	}
	// The last imported route ends up selected.
	sel := m.Selected()
	if sel == nil || sel.Name() != "Route 1" {
		t.Fatalf("selected = %v, want last imported route", sel)
	}
}

func TestSetDataMarkerOnlyImportMergesIntoSelected(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	r := m.AddRoute(ctx, &domain.Route{
		Name:     "Trail",
		Segments: []*domain.Segment{testSegment(p1, p2)},
		Markers:  []domain.Marker{{Latlng: p1, Title: "start"}},
	})
	r.SetEditMode(EditModePOI)

	m.SetData(ctx, []*domain.Route{
		{Markers: []domain.Marker{{Latlng: p2, Title: "spring"}}},
	})

	if len(m.Layers()) != 1 {
		t.Fatalf("marker-only import created a route: %d layers", len(m.Layers()))
	}
	snap := r.Snapshot()
	if len(snap.Markers) != 2 {
		t.Fatalf("marker count = %d, want 2", len(snap.Markers))
	}
	if r.State() != LayerEdit || r.EditMode() != EditModePOI {
		t.Errorf("edit mode not restored: state=%v mode=%v", r.State(), r.EditMode())
	}
	if m.Selected() != r {
		t.Error("target route must hold the selection after the merge")
	}
}

func TestSetDataMarkerOnlyImportIntoEmptyCollection(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	m.SetData(ctx, []*domain.Route{
		{Markers: []domain.Marker{{Latlng: p1, Title: "solo"}}},
	})

	// No existing route to merge into: a new route is created.
	if len(m.Layers()) != 1 {
		t.Fatalf("expected 1 route, got %d", len(m.Layers()))
	}
}

func TestSplitSelectedRoute(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	mid := orb.Point{35.0050, 32.0050}
	segs := []*domain.Segment{
		testSegment(p1, p1),
		testSegment(p1, mid),
		testSegment(mid, p2),
		testSegment(p2, p4),
	}
	segs[2].RoutingType = domain.RoutingTypeBike
	original := m.AddRoute(ctx, &domain.Route{Name: "Trail", Segments: segs})

	if err := m.SplitSelectedRouteAtIndex(ctx, 1); err != nil {
		t.Fatalf("split failed: %v", err)
	}

	if len(m.Layers()) != 2 {
		t.Fatalf("expected 2 routes after split, got %d", len(m.Layers()))
	}
	part := m.LayerByName("Trail (split)")
	if part == nil {
		t.Fatal("postfix route missing")
	}

	origSnap := original.Snapshot()
	partSnap := part.Snapshot()

	// N segments split into counts summing to N+1 (extra bridge segment).
	if got := len(origSnap.Segments) + len(partSnap.Segments); got != 5 {
		t.Fatalf("segment counts sum = %d, want 5", got)
	}

	// The shortened route ends at the split point.
	last, _ := origSnap.LastLatLng()
	if last != mid {
		t.Errorf("original route end = %v, want split point %v", last, mid)
	}

	// The bridge is a zero-length segment at the split point carrying the
	// first moved segment's routing type.
	bridge := partSnap.Segments[0]
	if len(bridge.Latlngs) != 2 || bridge.Latlngs[0] != mid || bridge.Latlngs[1] != mid {
		t.Errorf("bridge latlngs = %v, want [%v %v]", bridge.Latlngs, mid, mid)
	}
	if bridge.RoutingType != domain.RoutingTypeBike {
		t.Errorf("bridge routingType = %v, want Bike", bridge.RoutingType)
	}

	// The original route keeps the selection and Edit state.
	if m.Selected() != original || original.State() != LayerEdit {
		t.Error("original route must stay selected in edit state")
	}
}

func TestSplitErrors(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	if err := m.SplitSelectedRouteAtIndex(ctx, 0); err != ErrSelectionEmpty {
		t.Errorf("split without selection = %v, want ErrSelectionEmpty", err)
	}

	m.AddRoute(ctx, &domain.Route{Name: "Trail", Segments: []*domain.Segment{testSegment(p1, p2)}})
	if err := m.SplitSelectedRouteAtIndex(ctx, 5); err != ErrSegmentNotFound {
		t.Errorf("split at bad index = %v, want ErrSegmentNotFound", err)
	}
	if err := m.SplitSelectedRouteAt(ctx, testSegment(p1, p2)); err != ErrSegmentNotFound {
		t.Errorf("split at foreign segment = %v, want ErrSegmentNotFound", err)
	}
}

func TestGetClosestRoute(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	m.AddRoute(ctx, &domain.Route{Name: "Far", Segments: []*domain.Segment{testSegment(p4, orb.Point{35.03, 32.03})}})
	m.AddRoute(ctx, &domain.Route{Name: "Near", Segments: []*domain.Segment{testSegment(p3, p4)}})
	selected := m.AddRoute(ctx, &domain.Route{Name: "Sel", Segments: []*domain.Segment{testSegment(p1, p2)}})

	// Selected route's end p2 is ~11 m from Near's start p3.
	got := m.GetClosestRoute(false)
	if got == nil || got.Name() != "Near" {
		t.Fatalf("GetClosestRoute(false) = %v, want Near", got)
	}
	if got == selected {
		t.Fatal("closest route must never be the selected route itself")
	}

	// Selected route's start p1 is far from everything.
	if got := m.GetClosestRoute(true); got != nil {
		t.Fatalf("GetClosestRoute(true) = %v, want nil", got.Name())
	}
}

func TestGetClosestRouteInsertionOrderTieBreak(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	// Both candidates are within the merge distance; the earlier insertion
	// wins even though the second is nearer.
	m.AddRoute(ctx, &domain.Route{Name: "First", Segments: []*domain.Segment{testSegment(p3, p4)}})
	m.AddRoute(ctx, &domain.Route{Name: "Second", Segments: []*domain.Segment{testSegment(p2, p4)}})
	m.AddRoute(ctx, &domain.Route{Name: "Sel", Segments: []*domain.Segment{testSegment(p1, p2)}})

	got := m.GetClosestRoute(false)
	if got == nil || got.Name() != "First" {
		t.Fatalf("tie-break winner = %v, want First", got)
	}
}

func TestGetClosestRouteSkipsEmptyRoutes(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	m.AddRoute(ctx, &domain.Route{Name: "Empty"})
	m.AddRoute(ctx, &domain.Route{Name: "Sel", Segments: []*domain.Segment{testSegment(p1, p2)}})

	if got := m.GetClosestRoute(false); got != nil {
		t.Fatalf("GetClosestRoute = %v, want nil", got.Name())
	}
}

func TestMergeToClosestBack(t *testing.T) {
	m, notifier := newTestManager()
	ctx := context.Background()

	a := m.AddRoute(ctx, &domain.Route{
		Name:     "A",
		Segments: []*domain.Segment{testSegment(p1, p2)},
		Markers:  []domain.Marker{{Title: "a"}},
	})
	m.AddRoute(ctx, &domain.Route{
		Name:     "B",
		Segments: []*domain.Segment{testSegment(p3, p4)},
		Markers:  []domain.Marker{{Title: "b1"}, {Title: "b2"}},
	})
	m.ChangeRouteState(ctx, a)

	if err := m.MergeSelectedRouteToClosest(ctx, false); err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	if m.LayerByName("B") != nil {
		t.Fatal("absorbed route still in collection")
	}
	if len(m.Layers()) != 1 {
		t.Fatalf("expected 1 route, got %d", len(m.Layers()))
	}

	snap := a.Snapshot()
	if len(snap.Markers) != 3 {
		t.Errorf("marker count = %d, want sum of both routes (3)", len(snap.Markers))
	}
	if len(snap.Segments) != 2 {
		t.Fatalf("segment count = %d, want 2", len(snap.Segments))
	}

	// Endpoints already aligned: no reversal, B's segment is appended with
	// the junction point spliced in front.
	if snap.Segments[0].Latlngs[0] != p1 {
		t.Error("selected route's own geometry moved")
	}
	tail := snap.Segments[1].Latlngs
	if tail[0] != p2 || tail[1] != p3 || tail[len(tail)-1] != p4 {
		t.Errorf("spliced tail = %v, want junction %v then B's points", tail, p2)
	}

	if m.Selected() != a || a.State() != LayerEdit {
		t.Error("selected route must stay selected in edit state")
	}

	sawRemoval := false
	for _, k := range notifier.kinds() {
		if k == ports.EventRouteRemoved {
			sawRemoval = true
		}
	}
	if !sawRemoval {
		t.Error("merge must publish the absorbed route's removal")
	}
}

func TestMergeToClosestBackReversesMisorientedCandidate(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	a := m.AddRoute(ctx, &domain.Route{Name: "A", Segments: []*domain.Segment{testSegment(p1, p2)}})
	// B runs toward the junction: its end p3 is the proximal point.
	m.AddRoute(ctx, &domain.Route{Name: "B", Segments: []*domain.Segment{testSegment(p4, p3)}})
	m.ChangeRouteState(ctx, a)

	if err := m.MergeSelectedRouteToClosest(ctx, false); err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	snap := a.Snapshot()
	last, _ := snap.LastLatLng()
	if last != p4 {
		t.Fatalf("merged route end = %v, want %v (candidate reversed)", last, p4)
	}
}

func TestMergeToClosestFront(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	// A starts at p3 with a start anchor; B ends at p2, ~11 m away.
	m.AddRoute(ctx, &domain.Route{Name: "B", Segments: []*domain.Segment{testSegment(p1, p2)}})
	a := m.AddRoute(ctx, &domain.Route{Name: "A", Segments: []*domain.Segment{
		testSegment(p3, p3),
		testSegment(p3, p4),
	}})

	if err := m.MergeSelectedRouteToClosest(ctx, true); err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	snap := a.Snapshot()
	if len(snap.Segments) != 2 {
		t.Fatalf("segment count = %d, want 2 (anchor dropped)", len(snap.Segments))
	}

	first, _ := snap.FirstLatLng()
	last, _ := snap.LastLatLng()
	if first != p1 {
		t.Errorf("merged route start = %v, want B's start %v", first, p1)
	}
	if last != p4 {
		t.Errorf("merged route end = %v, want %v", last, p4)
	}

	// The junction point is spliced before A's remaining geometry.
	if snap.Segments[1].Latlngs[0] != p2 {
		t.Errorf("junction point = %v, want %v", snap.Segments[1].Latlngs[0], p2)
	}
}

func TestMergeErrors(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	if err := m.MergeSelectedRouteToClosest(ctx, false); err != ErrSelectionEmpty {
		t.Errorf("merge without selection = %v, want ErrSelectionEmpty", err)
	}

	m.AddRoute(ctx, &domain.Route{Name: "Lonely", Segments: []*domain.Segment{testSegment(p1, p2)}})
	if err := m.MergeSelectedRouteToClosest(ctx, false); err != ErrNoCandidateFound {
		t.Errorf("merge without candidate = %v, want ErrNoCandidateFound", err)
	}

	m.AddRoute(ctx, &domain.Route{Name: "NoGeometry"})
	if err := m.MergeSelectedRouteToClosest(ctx, false); err != ErrRouteEmpty {
		t.Errorf("merge with empty selection geometry = %v, want ErrRouteEmpty", err)
	}
}
