package easel

import (
	"slices"

	"github.com/gogpu/gg"
)

// ActiveSelection is the temporary container standing for several selected
// objects. Members stay in the canvas object list; only their plane changes
// while they are selected, and it is restored when they leave.
type ActiveSelection struct {
	Group
}

// NewActiveSelection returns an active selection over objs. Only top-level
// canvas objects may be members; others are ignored.
func NewActiveSelection(objs ...*Object) *Object {
	as := &ActiveSelection{Group: Group{Layout: LayoutFitContent}}
	o := NewObject(as)
	o.Fill = Paint{}
	o.StrokeWidth = 0
	as.Add(o, objs...)
	return o
}

func (*ActiveSelection) Type() string { return "activeSelection" }

// Add appends members. Objects nested in groups, already selected, or the
// selection itself are skipped.
func (as *ActiveSelection) Add(o *Object, objs ...*Object) int {
	var added []*Object
	for _, child := range objs {
		if child == nil || child == o || child.parent != nil || child.group == o || child.IsActiveSelection() {
			continue
		}
		if o.canvas == nil && child.canvas != nil {
			o.canvas = child.canvas
		}
		as.enter(o, child)
		// membership does not change ownership
		child.parent = nil
		added = append(added, child)
	}
	as.objects = append(as.objects, added...)
	as.sortByStack(o)
	as.layout(o)
	return len(as.objects)
}

// Remove takes objs out of the selection, restoring their scene geometry.
func (as *ActiveSelection) Remove(o *Object, objs ...*Object) []*Object {
	var removed []*Object
	for _, child := range objs {
		if as.exit(o, child) {
			removed = append(removed, child)
		}
	}
	if len(removed) > 0 {
		as.layout(o)
	}
	return removed
}

// exit moves child back to the scene plane.
func (as *ActiveSelection) exit(o, child *Object) bool {
	i := slices.Index(as.objects, child)
	if i < 0 {
		return false
	}
	as.objects = slices.Delete(as.objects, i, i+1)
	m := child.CalcTransformMatrix()
	child.group = nil
	applyTransformToObject(child, m)
	child.SetCoords()
	return true
}

// release restores every member to the scene plane and empties the
// selection.
func (as *ActiveSelection) release(o *Object) {
	for _, child := range slices.Clone(as.objects) {
		as.exit(o, child)
	}
}

// sortByStack orders members by their canvas stacking order.
func (as *ActiveSelection) sortByStack(o *Object) {
	if o.canvas == nil {
		return
	}
	objs := o.canvas.objects
	slices.SortStableFunc(as.objects, func(a, b *Object) int {
		return slices.Index(objs, a) - slices.Index(objs, b)
	})
}

// Contains reports whether child is a member.
func (as *ActiveSelection) Contains(child *Object) bool {
	return slices.Contains(as.objects, child)
}

// Render draws nothing: members are painted by the canvas in stacking
// order.
func (as *ActiveSelection) Render(o *Object, dc *gg.Context, rs RenderState) {}

func (as *ActiveSelection) Props(o *Object, opts SerializeOptions) map[string]any {
	return as.Group.Props(o, opts)
}

func (as *ActiveSelection) SVG(o *Object) string { return as.Group.SVG(o) }

// ActiveSelectionOf returns the ActiveSelection shape of o, or nil.
func ActiveSelectionOf(o *Object) *ActiveSelection {
	if o == nil {
		return nil
	}
	if as, ok := o.shape.(*ActiveSelection); ok {
		return as
	}
	return nil
}
