package adf

// DefaultMaxDepth bounds how deep the renderer descends into a tree.
// Real documents rarely nest past single digits.
const DefaultMaxDepth = 64

// DefaultPlaceholder is emitted where the depth guard cuts a branch off.
const DefaultPlaceholder = "…"

type depthGuard struct {
	max int
}

func newDepthGuard(max int) depthGuard {
	if max <= 0 {
		max = DefaultMaxDepth
	}
	return depthGuard{max: max}
}

// allow reports whether a node at depth may be rendered. The root is depth 0.
func (g depthGuard) allow(depth int) bool {
	return depth <= g.max
}
