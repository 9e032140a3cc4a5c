package scene

// World is the root of the scene: a flat list of nodes.
type World struct {
	children   []*Node
	dynamic    bool
	recomputes int
}

// NewWorld returns an empty world.
func NewWorld() *World {
	return &World{}
}

// AddChild adds n to the world. Adding a node twice is a no-op and returns
// false.
func (w *World) AddChild(n *Node) bool {
	if n.inWorld {
		return false
	}
	n.inWorld = true
	n.dirty = true
	w.children = append(w.children, n)
	return true
}

// Children returns the nodes in insertion order.
func (w *World) Children() []*Node {
	return w.children
}

// ComputeGlobalPositions refreshes world space bounds of nodes that moved.
// Moved nodes are always refreshed, so force only refreshes the unmoved
// ones as well and counts the pass in Recomputes. The flag mirrors the
// engine boundary call.
func (w *World) ComputeGlobalPositions(force bool) {
	if force {
		w.recomputes++
	}
	for _, n := range w.children {
		if force || n.dirty {
			n.updateGlobal()
		}
	}
}

// Recomputes returns how many forced recomputations happened.
func (w *World) Recomputes() int {
	return w.recomputes
}

// SetDynamicObjects records whether objects may be moved while in contact.
// It is bookkeeping for the engine boundary: the penalty model resolves
// contact against current poses either way and never reads the flag.
func (w *World) SetDynamicObjects(enabled bool) {
	w.dynamic = enabled
}

func (w *World) DynamicObjects() bool {
	return w.dynamic
}

// Clear removes every node.
func (w *World) Clear() {
	for _, n := range w.children {
		n.inWorld = false
	}
	w.children = nil
}
