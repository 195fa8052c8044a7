package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"modelpaint/internal/scene"
)

// recordingOverlays counts overlay churn so tests can assert that selection
// visuals are created and destroyed in step with membership.
type recordingOverlays struct {
	added   []*scene.Object
	removed []*scene.Object
}

func (r *recordingOverlays) AddOverlay(o *scene.Object)    { r.added = append(r.added, o) }
func (r *recordingOverlays) RemoveOverlay(o *scene.Object) { r.removed = append(r.removed, o) }

// testScene builds a root with n selectable mesh groups laid out along the
// z axis, nearest first, so rays down +z hit them in index order.
func testScene(n int) (*scene.Object, []*scene.Object) {
	selectable := true
	root := scene.NewObject("root", scene.KindGroup)
	root.Selectable = &selectable

	objects := make([]*scene.Object, 0, n)
	for i := 0; i < n; i++ {
		group := scene.NewObject("group", scene.KindGroup)
		mesh := scene.NewObject("mesh", scene.KindMesh)
		z := float64(i+1) * 3
		mesh.Bounds = scene.NewAABB(
			r3.Vec{X: -1, Y: -1, Z: z},
			r3.Vec{X: 1, Y: 1, Z: z + 1},
		)
		group.AddChild(mesh)
		root.AddChild(group)
		objects = append(objects, group)
	}
	return root, objects
}

func newTestEngine(n int) (*Engine, []*scene.Object, *recordingOverlays) {
	root, objects := testScene(n)
	overlays := &recordingOverlays{}
	e := NewEngine(scene.AABBRaycaster{}, overlays)
	e.RefreshSelectableObjects(root.Children)
	return e, objects, overlays
}

func names(objects []*scene.Object) []string {
	out := make([]string, len(objects))
	for i, o := range objects {
		out[i] = o.Name
	}
	return out
}

func TestSelectObjectReplaceAndAdditive(t *testing.T) {
	e, objs, _ := newTestEngine(3)

	e.SelectObject(objs[0], true)
	assert.Equal(t, []*scene.Object{objs[0]}, e.Selected())
	assert.Equal(t, objs[0], e.Primary())

	// Additive select grows the set and moves primary.
	e.SelectObject(objs[1], false)
	assert.Equal(t, []*scene.Object{objs[0], objs[1]}, e.Selected())
	assert.Equal(t, objs[1], e.Primary())

	// Replace collapses back to one member.
	e.SelectObject(objs[2], true)
	assert.Equal(t, []*scene.Object{objs[2]}, e.Selected())
	assert.Equal(t, objs[2], e.Primary())
}

func TestReselectWithoutReplaceIsNoOp(t *testing.T) {
	e, objs, _ := newTestEngine(2)

	e.SelectObject(objs[0], false)
	e.SelectObject(objs[1], false)

	var fired int
	e.OnChange(func([]*scene.Object, *scene.Object) { fired++ })

	e.SelectObject(objs[0], false)
	assert.Zero(t, fired)
	assert.Equal(t, objs[1], e.Primary(), "primary must not move on a redundant select")
	assert.Len(t, e.Selected(), 2)
}

func TestSelectIgnoresNonSelectable(t *testing.T) {
	e, _, _ := newTestEngine(1)

	e.SelectObject(nil, true)
	assert.Empty(t, e.Selected())

	undeclared := scene.NewObject("loose", scene.KindMesh)
	e.SelectObject(undeclared, true)
	assert.Empty(t, e.Selected())
	assert.Nil(t, e.Primary())
}

func TestToggleObject(t *testing.T) {
	e, objs, _ := newTestEngine(2)

	e.ToggleObject(objs[0])
	assert.True(t, e.IsSelected(objs[0]))

	e.ToggleObject(objs[1])
	assert.True(t, e.IsSelected(objs[1]))
	assert.Equal(t, objs[1], e.Primary())

	e.ToggleObject(objs[0])
	assert.False(t, e.IsSelected(objs[0]))
	assert.Equal(t, objs[1], e.Primary())
}

func TestSelectRange(t *testing.T) {
	e, objs, _ := newTestEngine(4)
	ordered := e.Candidates()

	e.SelectRange(objs[1], objs[3], ordered)
	assert.Equal(t, []*scene.Object{objs[1], objs[2], objs[3]}, e.Selected())
	assert.Equal(t, objs[3], e.Primary())

	// Reversed endpoints span the same range.
	e.SelectRange(objs[2], objs[0], ordered)
	assert.Equal(t, []*scene.Object{objs[0], objs[1], objs[2]}, e.Selected())
}

func TestSelectRangeMissingEndpointIsNoOp(t *testing.T) {
	e, objs, _ := newTestEngine(3)
	e.SelectObject(objs[0], true)

	stranger := scene.NewObject("stranger", scene.KindGroup)
	e.SelectRange(objs[1], stranger, e.Candidates())

	assert.Equal(t, []*scene.Object{objs[0]}, e.Selected())
}

func TestDeselectReassignsPrimaryToMostRecent(t *testing.T) {
	e, objs, _ := newTestEngine(3)

	e.SelectObject(objs[0], false)
	e.SelectObject(objs[1], false)
	e.SelectObject(objs[2], false)
	require.Equal(t, objs[2], e.Primary())

	// Deselecting the primary hands primacy to the most recently selected
	// remaining member.
	e.DeselectObject(objs[2])
	assert.Equal(t, objs[1], e.Primary())

	// Deselecting a non-primary member leaves the primary alone.
	e.DeselectObject(objs[0])
	assert.Equal(t, objs[1], e.Primary())

	e.DeselectObject(objs[1])
	assert.Nil(t, e.Primary())
	assert.Empty(t, e.Selected())
}

func TestDeselectNilTargetsPrimary(t *testing.T) {
	e, objs, _ := newTestEngine(2)
	e.SelectObject(objs[0], false)
	e.SelectObject(objs[1], false)

	e.DeselectObject(nil)
	assert.False(t, e.IsSelected(objs[1]))
	assert.Equal(t, objs[0], e.Primary())

	// With nothing selected this is a silent no-op.
	e.DeselectAll()
	e.DeselectObject(nil)
	assert.Nil(t, e.Primary())
}

func TestDeselectUnknownObjectIsNoOp(t *testing.T) {
	e, objs, _ := newTestEngine(2)
	e.SelectObject(objs[0], true)

	var fired int
	e.OnChange(func([]*scene.Object, *scene.Object) { fired++ })
	e.DeselectObject(objs[1])

	assert.Zero(t, fired)
	assert.Equal(t, objs[0], e.Primary())
}

func TestPrimaryNilExactlyWhenEmpty(t *testing.T) {
	e, objs, _ := newTestEngine(4)

	// Exercise a mixed op sequence and check the invariant after each step.
	check := func() {
		t.Helper()
		if len(e.Selected()) == 0 {
			assert.Nil(t, e.Primary())
		} else {
			require.NotNil(t, e.Primary())
			assert.True(t, e.IsSelected(e.Primary()), "primary must be a member")
		}
	}

	ops := []func(){
		func() { e.SelectObject(objs[0], false) },
		func() { e.ToggleObject(objs[1]) },
		func() { e.SelectObject(objs[2], true) },
		func() { e.ToggleObject(objs[2]) },
		func() { e.SelectRange(objs[0], objs[3], e.Candidates()) },
		func() { e.DeselectObject(nil) },
		func() { e.DeselectAll() },
		func() { e.SelectObject(objs[1], false) },
		func() { e.DeleteSelected() },
	}
	check()
	for _, op := range ops {
		op()
		check()
	}
}

func TestSelectionVisualsTrackMembership(t *testing.T) {
	e, objs, overlays := newTestEngine(2)

	e.SelectObject(objs[0], false)
	e.SelectObject(objs[1], false)
	require.Len(t, overlays.added, 2)
	assert.Equal(t, objs[0].Name+"-selection", overlays.added[0].Name)
	assert.Equal(t, scene.KindHelper, overlays.added[0].Kind)
	assert.False(t, scene.SelectableFlag(overlays.added[0]),
		"selection visuals must never be pickable")

	e.DeselectObject(objs[0])
	require.Len(t, overlays.removed, 1)
	assert.Equal(t, overlays.added[0], overlays.removed[0])

	e.DeselectAll()
	assert.Len(t, overlays.removed, 2)
}

func TestDeleteSelected(t *testing.T) {
	e, objs, _ := newTestEngine(3)
	root := objs[0].Parent

	e.SelectObject(objs[0], false)
	e.SelectObject(objs[1], false)

	// Deleting tolerates members whose renderer resources were already
	// released elsewhere.
	objs[1].Release()

	e.DeleteSelected()

	assert.Empty(t, e.Selected())
	assert.Nil(t, e.Primary())
	assert.Equal(t, []*scene.Object{objs[2]}, root.Children)
	assert.True(t, objs[0].Released())
	assert.True(t, objs[1].Released())

	// Deleted objects leave the candidate list immediately.
	assert.Equal(t, []*scene.Object{objs[2]}, e.Candidates())
}

func TestDeleteSelectedWithEmptySelection(t *testing.T) {
	e, objs, _ := newTestEngine(2)
	e.DeleteSelected()
	assert.Len(t, e.Candidates(), 2)
	assert.NotNil(t, objs[0].Parent, "nothing selected, nothing removed")
}

func TestResolvePickReturnsNearestSelectableRoot(t *testing.T) {
	e, objs, _ := newTestEngine(3)

	// A ray down +z passes through every group; the nearest wins, and the
	// hit mesh maps back to its selectable group root.
	picked := e.ResolvePick(r3.Vec{}, r3.Vec{Z: 1})
	assert.Equal(t, objs[0], picked)

	// A ray that misses everything resolves to nil.
	assert.Nil(t, e.ResolvePick(r3.Vec{X: 50}, r3.Vec{Z: 1}))
}

func TestResolvePickSuppressedWhileDragging(t *testing.T) {
	e, objs, _ := newTestEngine(2)
	gizmo := NewGizmo()
	orbit := NewOrbit()
	e.BindTransformTool(gizmo, orbit)

	e.SelectObject(objs[0], true)
	require.NotNil(t, e.ResolvePick(r3.Vec{}, r3.Vec{Z: 1}))

	gizmo.SetDragging(true)
	assert.True(t, e.Dragging())
	assert.Nil(t, e.ResolvePick(r3.Vec{}, r3.Vec{Z: 1}))
	assert.False(t, orbit.Enabled(), "orbit is disabled for the drag")

	gizmo.SetDragging(false)
	assert.NotNil(t, e.ResolvePick(r3.Vec{}, r3.Vec{Z: 1}))
	assert.True(t, orbit.Enabled(), "orbit is restored after the drag")
}

func TestResolvePickExcludesGizmoObjects(t *testing.T) {
	root, objs := testScene(1)
	e := NewEngine(scene.AABBRaycaster{}, &recordingOverlays{})

	// Park a gizmo handle mesh inside the candidate's subtree, off to the
	// side, so a ray can hit the tool without touching the model.
	gizmo := NewGizmo()
	handle := gizmo.GizmoObjects()[0]
	handleMesh := scene.NewObject("handle-mesh", scene.KindMesh)
	handleMesh.Bounds = scene.NewAABB(
		r3.Vec{X: 9, Y: -1, Z: 1},
		r3.Vec{X: 11, Y: 1, Z: 2},
	)
	handle.AddChild(handleMesh)
	objs[0].AddChild(handle)

	e.RefreshSelectableObjects(root.Children)
	e.BindTransformTool(gizmo, NewOrbit())

	// Hitting only the handle must not resolve to its host object.
	assert.Nil(t, e.ResolvePick(r3.Vec{X: 10}, r3.Vec{Z: 1}))

	// Hitting the model itself still works with the tool bound.
	assert.Equal(t, objs[0], e.ResolvePick(r3.Vec{}, r3.Vec{Z: 1}))
}

func TestResolvePickWithNoCandidates(t *testing.T) {
	e := NewEngine(scene.AABBRaycaster{}, &recordingOverlays{})
	assert.Nil(t, e.ResolvePick(r3.Vec{}, r3.Vec{Z: 1}))
}

func TestCycleWrapsBothDirections(t *testing.T) {
	e, objs, _ := newTestEngine(3)

	// With no primary, cycling starts at the first candidate.
	e.Cycle(1)
	assert.Equal(t, objs[0], e.Primary())

	e.Cycle(1)
	assert.Equal(t, objs[1], e.Primary())

	e.Cycle(1)
	e.Cycle(1)
	assert.Equal(t, objs[0], e.Primary(), "forward cycle wraps to the start")

	e.Cycle(-1)
	assert.Equal(t, objs[2], e.Primary(), "backward cycle wraps to the end")

	// Cycling always replaces: exactly one object stays selected.
	assert.Len(t, e.Selected(), 1)
}

func TestCycleWithNoCandidates(t *testing.T) {
	e := NewEngine(scene.AABBRaycaster{}, &recordingOverlays{})
	e.Cycle(1)
	assert.Nil(t, e.Primary())
}

func TestRefreshSelectableObjectsFiltering(t *testing.T) {
	selectable, notSelectable := true, false
	root := scene.NewObject("root", scene.KindGroup)
	root.Selectable = &selectable

	body := scene.NewObject("body", scene.KindGroup)
	body.AddChild(scene.NewObject("shell", scene.KindMesh))
	root.AddChild(body)

	light := scene.NewObject("key-light", scene.KindLight)
	root.AddChild(light)

	grid := scene.NewObject("grid", scene.KindHelper)
	root.AddChild(grid)

	locked := scene.NewObject("locked", scene.KindGroup)
	locked.Selectable = &notSelectable
	locked.AddChild(scene.NewObject("mesh", scene.KindMesh))
	root.AddChild(locked)

	empty := scene.NewObject("empty-group", scene.KindGroup)
	root.AddChild(empty)

	e := NewEngine(scene.AABBRaycaster{}, &recordingOverlays{})
	e.RefreshSelectableObjects(root.Children)

	assert.Equal(t, []string{"body"}, names(e.Candidates()))
}

func TestBindTransformToolFollowsPrimary(t *testing.T) {
	e, objs, _ := newTestEngine(2)
	gizmo := NewGizmo()
	e.BindTransformTool(gizmo, NewOrbit())
	assert.Nil(t, gizmo.Target())

	e.SelectObject(objs[0], true)
	assert.Equal(t, objs[0], gizmo.Target())

	e.SelectObject(objs[1], false)
	assert.Equal(t, objs[1], gizmo.Target())

	e.DeselectObject(objs[1])
	assert.Equal(t, objs[0], gizmo.Target())

	e.DeselectAll()
	assert.Nil(t, gizmo.Target())
}

func TestChangeListenerSnapshots(t *testing.T) {
	e, objs, _ := newTestEngine(2)

	var gotSelected []*scene.Object
	var gotPrimary *scene.Object
	e.OnChange(func(selected []*scene.Object, primary *scene.Object) {
		gotSelected = selected
		gotPrimary = primary
	})

	e.SelectObject(objs[0], false)
	assert.Equal(t, []*scene.Object{objs[0]}, gotSelected)
	assert.Equal(t, objs[0], gotPrimary)

	e.DeselectAll()
	assert.Empty(t, gotSelected)
	assert.Nil(t, gotPrimary)
}

func TestDisposeDetachesTool(t *testing.T) {
	e, objs, overlays := newTestEngine(1)
	gizmo := NewGizmo()
	e.BindTransformTool(gizmo, NewOrbit())
	e.SelectObject(objs[0], true)
	require.Equal(t, objs[0], gizmo.Target())

	e.Dispose()
	assert.Nil(t, gizmo.Target())
	assert.Len(t, overlays.removed, 1)
}
