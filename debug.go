package easel

import (
	"fmt"
	"time"
)

// renderStats holds per-render timing. Only populated when the canvas is in
// debug mode.
type renderStats struct {
	clearTime   time.Duration
	objectsTime time.Duration
	overlayTime time.Duration
	painted     int
	culled      int
}

// debugLog reports render timing through the package logger.
func (c *StaticCanvas) debugLog(stats renderStats) {
	if !c.debug {
		return
	}
	total := stats.clearTime + stats.objectsTime + stats.overlayTime
	logger().Debug("render",
		"clear", stats.clearTime,
		"objects", stats.objectsTime,
		"overlay", stats.overlayTime,
		"total", total,
		"painted", stats.painted,
		"culled", stats.culled)
}

// debugCheckDisposed panics with a descriptive message when a disposed object
// is used in a tree operation. Callers skip this outside debug mode.
func debugCheckDisposed(o *Object, op string) {
	if o.disposed {
		panic(fmt.Sprintf("easel debug: %s on disposed %s object (ID was %d)", op, o.Type(), o.ID))
	}
}

// debugMaxGroupDepth is the nesting depth past which a warning is logged.
const debugMaxGroupDepth = 32

func debugCheckGroupDepth(o *Object) {
	depth := 0
	for p := o; p != nil; p = p.parent {
		depth++
	}
	if depth > debugMaxGroupDepth {
		logger().Warn("group depth exceeds threshold", "depth", depth, "threshold", debugMaxGroupDepth, "id", o.ID)
	}
}

// debugMaxChildCount is the group size past which a warning is logged.
const debugMaxChildCount = 1000

func debugCheckChildCount(g *Object) {
	if n := len(g.Objects()); n > debugMaxChildCount {
		logger().Warn("group child count exceeds threshold", "id", g.ID, "children", n, "threshold", debugMaxChildCount)
	}
}
