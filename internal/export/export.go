// Package export projects a decoded fbx.Document into JSON-friendly values
// and summary statistics.
package export

import (
	"io"

	"github.com/goccy/go-json"

	"github.com/samcharles93/fbxcore/pkg/fbx"
)

// Options controls the projection.
type Options struct {
	// Arrays includes decoded array elements. Without it arrays carry only
	// their declared length and encoding.
	Arrays bool
}

// Document is a flat, preorder list of the file's nodes. Roots and
// Children hold positions in Nodes, mirroring the index-addressed table
// of fbx.Document without its synthetic root.
type Document struct {
	Version uint32 `json:"version"`
	Roots   []int  `json:"roots"`
	Nodes   []Node `json:"nodes"`
}

type Node struct {
	Name       string     `json:"name"`
	Offset     int64      `json:"offset"`
	Depth      int        `json:"depth"`
	Parent     int        `json:"parent"` // -1 for top-level nodes
	Properties []Property `json:"properties,omitempty"`
	Children   []int      `json:"children,omitempty"`
}

// Property is one typed value. Value is absent for arrays unless
// Options.Arrays is set.
type Property struct {
	Type       string `json:"type"`
	Value      any    `json:"value,omitempty"`
	Length     *int   `json:"length,omitempty"`
	Compressed bool   `json:"compressed,omitempty"`
}

// Tree builds the projection of doc. It fails with fbx.ErrReleased on a
// closed document.
func Tree(doc *fbx.Document, opts Options) (*Document, error) {
	if doc == nil || doc.Released() {
		return nil, fbx.ErrReleased
	}
	out := &Document{
		Version: doc.Version,
		Roots:   []int{},
		Nodes:   make([]Node, 0, doc.Len()-1),
	}
	for _, idx := range doc.Roots() {
		out.Roots = append(out.Roots, out.add(doc, idx, -1, 0, opts))
	}
	return out, nil
}

// add appends the node at idx and its subtree in preorder and returns its
// position.
func (d *Document) add(doc *fbx.Document, idx uint32, parent, depth int, opts Options) int {
	n := doc.Node(idx)
	pos := len(d.Nodes)
	d.Nodes = append(d.Nodes, Node{
		Name:   string(n.Name()),
		Offset: n.Offset,
		Depth:  depth,
		Parent: parent,
	})
	if props := n.Properties(); len(props) > 0 {
		out := make([]Property, len(props))
		for i := range props {
			out[i] = property(&props[i], opts)
		}
		d.Nodes[pos].Properties = out
	}
	if kids := n.Children(); len(kids) > 0 {
		out := make([]int, 0, len(kids))
		for _, c := range kids {
			out = append(out, d.add(doc, c, pos, depth+1, opts))
		}
		d.Nodes[pos].Children = out
	}
	return pos
}

func property(p *fbx.Property, opts Options) Property {
	out := Property{Type: p.Type.String()}
	if n, ok := p.ArrayLen(); ok {
		out.Length = &n
		out.Compressed = p.Array.Encoding != 0
		if opts.Arrays {
			out.Value = arrayValue(p)
		}
		return out
	}
	switch p.Type {
	case fbx.TypeFloat32, fbx.TypeFloat64:
		out.Value, _ = p.Float()
	case fbx.TypeString:
		out.Value, _ = p.Text()
	case fbx.TypeRaw:
		out.Value = p.Bytes()
	default:
		out.Value, _ = p.Int()
	}
	return out
}

func arrayValue(p *fbx.Property) any {
	switch p.Type {
	case fbx.TypeBoolArray:
		v, _ := p.Bools()
		return v
	case fbx.TypeInt32Array:
		v, _ := p.Int32s()
		return v
	case fbx.TypeInt64Array:
		v, _ := p.Int64s()
		return v
	case fbx.TypeFloat32Array:
		v, _ := p.Float32s()
		return v
	case fbx.TypeFloat64Array:
		v, _ := p.Float64s()
		return v
	}
	return nil
}

// WriteJSON encodes the projection of doc to w.
func WriteJSON(w io.Writer, doc *fbx.Document, opts Options, indent bool) error {
	tree, err := Tree(doc, opts)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(tree)
}
