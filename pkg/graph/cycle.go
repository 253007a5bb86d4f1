package graph

// HasCycles reports whether conns contain a directed cycle. Starting from
// every node that produces output, it follows each connection whose input
// node is the current node back to that connection's output node using
// white/gray/black DFS marking. Reaching a gray node means the walk came
// back around to a node still on the stack.
//
// Granularity is per node: two ports of the same node are never told apart.
func HasCycles(conns []Connection) bool {
	const (
		white = iota
		gray
		black
	)

	marks := make(map[string]int, len(conns))
	for _, c := range conns {
		marks[c.OutputNode] = white
	}

	var visit func(name string) bool // returns true if cycle found
	visit = func(name string) bool {
		marks[name] = gray
		for _, c := range conns {
			if c.InputNode != name {
				continue
			}
			switch marks[c.OutputNode] {
			case gray:
				return true
			case white:
				if visit(c.OutputNode) {
					return true
				}
			}
		}
		marks[name] = black
		return false
	}

	// Walk in connection order so results do not depend on map iteration.
	for _, c := range conns {
		if marks[c.OutputNode] == white && visit(c.OutputNode) {
			return true
		}
	}
	return false
}
