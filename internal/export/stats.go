package export

import (
	"github.com/samcharles93/fbxcore/pkg/fbx"
)

// Stats summarises a document.
type Stats struct {
	Version uint32 `json:"version"`
	// Nodes counts every record, the synthetic root excluded.
	Nodes            int            `json:"nodes"`
	Roots            []string       `json:"roots"`
	MaxDepth         int            `json:"max_depth"`
	Properties       int            `json:"properties"`
	PropertyTypes    map[string]int `json:"property_types"`
	ArrayElements    uint64         `json:"array_elements"`
	CompressedArrays int            `json:"compressed_arrays"`
	PayloadBytes     int64          `json:"payload_bytes"`
}

// OutlineEntry is one line of a depth-limited outline.
type OutlineEntry struct {
	Depth      int    `json:"depth"`
	Name       string `json:"name"`
	Properties int    `json:"properties"`
	Children   int    `json:"children"`
}

// Collect walks doc once and fills Stats.
func Collect(doc *fbx.Document) (Stats, error) {
	st := Stats{PropertyTypes: map[string]int{}, Roots: []string{}}
	if doc == nil || doc.Released() {
		return st, fbx.ErrReleased
	}
	st.Version = doc.Version
	for _, idx := range doc.Roots() {
		st.Roots = append(st.Roots, string(doc.Node(idx).Name()))
	}
	err := doc.Walk(func(_ uint32, n *fbx.Node, depth int) error {
		st.Nodes++
		st.MaxDepth = max(st.MaxDepth, depth)
		props := n.Properties()
		st.Properties += len(props)
		for i := range props {
			p := &props[i]
			st.PropertyTypes[string(rune(p.Type))]++
			st.PayloadBytes += int64(len(p.Bytes()))
			if l, ok := p.ArrayLen(); ok {
				st.ArrayElements += uint64(l)
				if p.Array.Encoding != 0 {
					st.CompressedArrays++
				}
			}
		}
		return nil
	})
	return st, err
}

// Outline lists nodes down to maxDepth in preorder. A negative maxDepth
// lists every node.
func Outline(doc *fbx.Document, maxDepth int) ([]OutlineEntry, error) {
	if doc == nil {
		return nil, fbx.ErrReleased
	}
	var out []OutlineEntry
	err := doc.Walk(func(_ uint32, n *fbx.Node, depth int) error {
		if maxDepth >= 0 && depth > maxDepth {
			return nil
		}
		out = append(out, OutlineEntry{
			Depth:      depth,
			Name:       string(n.Name()),
			Properties: len(n.Properties()),
			Children:   len(n.Children()),
		})
		return nil
	})
	return out, err
}
