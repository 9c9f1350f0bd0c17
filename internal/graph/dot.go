package graph

import (
	"fmt"
	"io"
	"strings"
)

// Node is a profile and the parents it declares.
type Node struct {
	Name    string   `json:"name"`
	Parents []string `json:"parents"`
}

// WriteDOT writes nodes as a Graphviz digraph, one edge per declared parent.
// Nodes and parents are written in the order given.
func WriteDOT(w io.Writer, name string, nodes []Node) error {
	var b strings.Builder
	fmt.Fprintf(&b, "digraph %s {\n", name)
	for _, n := range nodes {
		fmt.Fprintf(&b, "  %s\n", quote(n.Name))
		for _, p := range n.Parents {
			fmt.Fprintf(&b, "  %s -> %s\n", quote(n.Name), quote(p))
		}
	}
	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(strings.ReplaceAll(s, `\`, `\\`), `"`, `\"`) + `"`
}
