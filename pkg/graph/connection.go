package graph

// Connection wires the output of one child to an input port of another
// child within the same network.
type Connection struct {
	OutputNode string `json:"output"`
	InputNode  string `json:"input"`
	InputPort  string `json:"port"`
}

func (c Connection) String() string {
	return c.OutputNode + " -> " + c.InputNode + "." + c.InputPort
}

// Touches reports whether either end of c is the named node.
func (c Connection) Touches(name string) bool {
	return c.OutputNode == name || c.InputNode == name
}
