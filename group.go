package easel

import (
	"slices"

	"github.com/gogpu/gg"
)

// Layout names for Group.Layout.
const (
	// LayoutFitContent resizes the group around its members whenever they
	// change.
	LayoutFitContent = "fit-content"
	// LayoutFixed keeps the group's size as set.
	LayoutFixed = "fixed"
)

// Group owns an ordered list of members drawn in its own plane. Member
// geometry is relative to the group's centre.
type Group struct {
	// Interactive lets members be selected individually.
	Interactive bool
	// SubTargetCheck makes hit-testing descend into members and report the
	// ones under the pointer as sub targets.
	SubTargetCheck bool
	// Layout is LayoutFitContent (default) or LayoutFixed.
	Layout string

	objects []*Object
}

// NewGroup gathers objs into a new group. The members keep their scene
// position: their geometry is re-expressed relative to the group, which is
// sized around them. Members that belong to a canvas or another group are
// detached first.
func NewGroup(objs ...*Object) *Object {
	g := &Group{Layout: LayoutFitContent}
	o := NewObject(g)
	o.Fill = Paint{}
	o.StrokeWidth = 0
	g.Add(o, objs...)
	return o
}

// newGroupInPlane builds a group over members already expressed in its
// plane, keeping the given size. Revival uses it.
func newGroupInPlane(g *Group, objs []*Object) *Object {
	o := NewObject(g)
	for _, child := range objs {
		child.parent = o
		child.group = o
	}
	g.objects = objs
	return o
}

func (g *Group) Type() string { return "group" }

// Add appends objs to the group owned by o and returns the new member count.
func (g *Group) Add(o *Object, objs ...*Object) int {
	return g.Insert(o, len(g.objects), objs...)
}

// Insert places objs at index i. Objects already in this group, o itself
// and ancestors of o are skipped.
func (g *Group) Insert(o *Object, i int, objs ...*Object) int {
	i = min(max(i, 0), len(g.objects))
	var added []*Object
	for _, child := range objs {
		if child == nil || child == o || child.parent == o || isAncestor(child, o) {
			continue
		}
		if child.canvas != nil && child.parent == nil {
			child.canvas.detach(child)
		}
		if child.parent != nil {
			if pg := child.parent.groupShape(); pg != nil {
				pg.remove(child.parent, child)
			}
		}
		g.enter(o, child)
		added = append(added, child)
	}
	g.objects = slices.Insert(g.objects, i, added...)
	if o.canvas != nil && o.canvas.debug {
		debugCheckChildCount(o)
	}
	g.layout(o)
	for _, child := range added {
		child.setCanvas(o.canvas)
		child.fire("added", &Event{Target: o})
		o.fire("object:added", &Event{Target: child})
	}
	return len(g.objects)
}

// Remove takes objs out of the group owned by o and returns those that were
// members. Removed objects keep their scene position.
func (g *Group) Remove(o *Object, objs ...*Object) []*Object {
	var removed []*Object
	for _, child := range objs {
		if g.remove(o, child) {
			removed = append(removed, child)
		}
	}
	return removed
}

// enter re-expresses child's scene geometry in o's plane.
func (g *Group) enter(o, child *Object) {
	m := child.CalcTransformMatrix()
	child.group = nil
	inv := invertAffine(o.CalcTransformMatrix())
	applyTransformToObject(child, multiplyAffine(inv, m))
	child.parent = o
	child.group = o
	child.SetCoords()
}

// remove detaches child from o, restoring scene-space geometry.
func (g *Group) remove(o, child *Object) bool {
	i := slices.Index(g.objects, child)
	if i < 0 {
		return false
	}
	g.objects = slices.Delete(g.objects, i, i+1)
	m := child.CalcTransformMatrix()
	child.parent = nil
	child.group = nil
	applyTransformToObject(child, m)
	child.SetCoords()
	g.layout(o)
	child.setCanvas(nil)
	child.fire("removed", &Event{Target: o})
	o.fire("object:removed", &Event{Target: child})
	return true
}

// layout resizes o around its members when the layout is fit-content. The
// group centre moves to the members' centre and members are shifted so they
// keep their scene position.
func (g *Group) layout(o *Object) {
	if g.Layout == LayoutFixed || len(g.objects) == 0 {
		return
	}
	var pts []Point
	for _, child := range g.objects {
		c := child.CalcACoords()
		pts = append(pts, c[:]...)
	}
	b := boundsOf(pts)
	shift := Pt(b.X+b.Width/2, b.Y+b.Height/2)
	newCenter := shift.Transform(o.CalcOwnMatrix(), false)
	for _, child := range g.objects {
		child.Left -= shift.X
		child.Top -= shift.Y
	}
	o.Width, o.Height = b.Width, b.Height
	o.SetPositionByOrigin(newCenter, OriginCenter, OriginCenter)
	o.SetCoords()
}

// TriggerLayout re-fits the group after members were changed directly.
func (g *Group) TriggerLayout(o *Object) { g.layout(o) }

func isAncestor(candidate, o *Object) bool {
	for p := o.parent; p != nil; p = p.parent {
		if p == candidate {
			return true
		}
	}
	return false
}

func (g *Group) Render(o *Object, dc *gg.Context, rs RenderState) {
	child := rs
	child.inGroup = true
	for _, c := range g.objects {
		c.render(dc, child)
	}
}

func (g *Group) Props(o *Object, opts SerializeOptions) map[string]any {
	objs := make([]any, 0, len(g.objects))
	for _, c := range g.objects {
		if c.ExcludeFromExport {
			continue
		}
		objs = append(objs, c.toObject(opts))
	}
	return map[string]any{
		"objects":        objs,
		"interactive":    g.Interactive,
		"subTargetCheck": g.SubTargetCheck,
		"layout":         g.Layout,
	}
}

func (g *Group) SVG(o *Object) string {
	var out []byte
	for _, c := range g.objects {
		if c.ExcludeFromExport {
			continue
		}
		out = append(out, c.toSVG(nil)...)
	}
	return string(out)
}

// GroupOf returns the Group shape of o, or nil.
func GroupOf(o *Object) *Group {
	if g, ok := o.shape.(*Group); ok {
		return g
	}
	return nil
}
