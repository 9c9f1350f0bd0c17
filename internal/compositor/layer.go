package compositor

import (
	"fmt"

	"github.com/danieljhkim/stratum/internal/profiles"
)

// Kind distinguishes main layers from end overlays.
type Kind string

const (
	// KindMain is a profile's main tree.
	KindMain Kind = "main"

	// KindEnd is a profile's end tree, applied after every main layer.
	KindEnd Kind = "end"
)

// Layer is one tree to merge into the staging tree.
type Layer struct {
	// Profile is the profile the tree belongs to.
	Profile string `json:"profile"`

	// Root is the absolute path of the tree.
	Root string `json:"root"`

	// Kind is main or end.
	Kind Kind `json:"kind"`
}

// String renders the layer as it appears in logs.
func (l Layer) String() string {
	if l.Kind == KindEnd {
		return l.Profile + profiles.EndSuffix
	}
	return l.Profile
}

// BuildLayers turns a resolver order (most specific first) into the full
// application sequence: main trees root-most first, then end trees most
// specific first, for profiles that have one.
func BuildLayers(order []string, repo profiles.Repo) ([]Layer, error) {
	layers := make([]Layer, 0, 2*len(order))

	for i := len(order) - 1; i >= 0; i-- {
		layers = append(layers, Layer{
			Profile: order[i],
			Root:    repo.Root(order[i]),
			Kind:    KindMain,
		})
	}

	for _, name := range order {
		ok, err := repo.HasEnd(name)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		layers = append(layers, Layer{
			Profile: name,
			Root:    repo.EndRoot(name),
			Kind:    KindEnd,
		})
	}

	if len(layers) == 0 {
		return nil, fmt.Errorf("nothing to compose")
	}
	return layers, nil
}
