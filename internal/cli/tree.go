package cli

import (
	"io"
	"strings"

	"github.com/ddddddO/gtree"

	"github.com/danieljhkim/stratum/internal/hash"
)

// renderTree draws the staged files as a directory tree rooted at label.
func renderTree(w io.Writer, label string, files []hash.Entry) error {
	root := gtree.NewRoot(label)
	dirs := map[string]*gtree.Node{"": root}

	for _, f := range files {
		parts := strings.Split(f.Path, "/")
		parent := root
		prefix := ""
		for _, part := range parts {
			if prefix == "" {
				prefix = part
			} else {
				prefix = prefix + "/" + part
			}
			node, ok := dirs[prefix]
			if !ok {
				node = parent.Add(part)
				dirs[prefix] = node
			}
			parent = node
		}
	}

	return gtree.OutputProgrammably(w, root)
}
