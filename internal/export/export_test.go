package export

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/samcharles93/fbxcore/internal/fbxtest"
	"github.com/samcharles93/fbxcore/pkg/fbx"
)

func parse(t *testing.T, nodes ...fbxtest.Node) *fbx.Document {
	t.Helper()
	data := fbxtest.File(7400, nodes...)
	doc, err := fbx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	t.Cleanup(func() { _ = doc.Close() })
	return doc
}

func sceneDoc(t *testing.T) *fbx.Document {
	t.Helper()
	z, err := fbxtest.Deflate(fbxtest.LE([]int32{0, 1, 2, -1}))
	if err != nil {
		t.Fatalf("deflate: %v", err)
	}
	return parse(t,
		fbxtest.Node{Name: "FBXHeaderExtension", Children: []fbxtest.Node{
			{Name: "FBXVersion", Props: []fbxtest.Prop{fbxtest.I32(7400)}},
		}},
		fbxtest.Node{Name: "Objects", Children: []fbxtest.Node{
			{Name: "Geometry", Props: []fbxtest.Prop{fbxtest.I64(42), fbxtest.String("Cube"), fbxtest.Raw([]byte{1, 2})}, Children: []fbxtest.Node{
				{Name: "Vertices", Props: []fbxtest.Prop{fbxtest.F64s(0.5, 1, 1.5)}},
				{Name: "PolygonVertexIndex", Props: []fbxtest.Prop{fbxtest.Compressed('i', 4, z, len(z))}},
			}},
		}},
	)
}

func TestTreeWithoutArrays(t *testing.T) {
	t.Parallel()

	tree, err := Tree(sceneDoc(t), Options{})
	if err != nil {
		t.Fatalf("tree: %v", err)
	}
	if tree.Version != 7400 || len(tree.Nodes) != 6 {
		t.Fatalf("unexpected tree: %+v", tree)
	}
	if len(tree.Roots) != 2 || tree.Roots[0] != 0 || tree.Roots[1] != 2 {
		t.Fatalf("roots: %v", tree.Roots)
	}
	objects := tree.Nodes[2]
	if objects.Name != "Objects" || objects.Parent != -1 || len(objects.Children) != 1 {
		t.Fatalf("objects: %+v", objects)
	}
	geom := tree.Nodes[objects.Children[0]]
	if geom.Name != "Geometry" || geom.Depth != 1 || geom.Parent != 2 || len(geom.Properties) != 3 || len(geom.Children) != 2 {
		t.Fatalf("geometry: %+v", geom)
	}
	if v, ok := geom.Properties[0].Value.(int64); !ok || v != 42 {
		t.Fatalf("int64 value: %#v", geom.Properties[0].Value)
	}
	if v, ok := geom.Properties[1].Value.(string); !ok || v != "Cube" {
		t.Fatalf("string value: %#v", geom.Properties[1].Value)
	}
	verts := tree.Nodes[geom.Children[0]].Properties[0]
	if verts.Type != "double_array" || verts.Value != nil || verts.Length == nil || *verts.Length != 3 {
		t.Fatalf("array without values: %+v", verts)
	}
	idx := tree.Nodes[geom.Children[1]].Properties[0]
	if !idx.Compressed || *idx.Length != 4 {
		t.Fatalf("compressed array: %+v", idx)
	}
}

func TestTreeWithArrays(t *testing.T) {
	t.Parallel()

	tree, err := Tree(sceneDoc(t), Options{Arrays: true})
	if err != nil {
		t.Fatalf("tree: %v", err)
	}
	verts, polys := tree.Nodes[4], tree.Nodes[5]
	if v, ok := verts.Properties[0].Value.([]float64); !ok || len(v) != 3 || v[2] != 1.5 {
		t.Fatalf("double array: %#v", verts.Properties[0].Value)
	}
	if v, ok := polys.Properties[0].Value.([]int32); !ok || len(v) != 4 || v[3] != -1 {
		t.Fatalf("inflated int array: %#v", polys.Properties[0].Value)
	}
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		opts   Options
		indent bool
	}{
		{Options{}, false},
		{Options{}, true},
		{Options{Arrays: true}, false},
		{Options{Arrays: true}, true},
	} {
		var buf bytes.Buffer
		if err := WriteJSON(&buf, sceneDoc(t), tc.opts, tc.indent); err != nil {
			t.Fatalf("write %+v indent=%v: %v", tc.opts, tc.indent, err)
		}
		var decoded Document
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(decoded.Nodes) != 6 || decoded.Nodes[1].Name != "FBXVersion" || decoded.Nodes[1].Parent != 0 {
			t.Fatalf("decoded: %+v", decoded)
		}
		if len(decoded.Nodes[1].Properties) != 1 {
			t.Fatalf("nested property lost: %+v", decoded.Nodes[1])
		}
	}

	var buf bytes.Buffer
	if err := WriteJSON(&buf, sceneDoc(t), Options{Arrays: true}, true); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{`"name": "Geometry"`, `"type": "int64"`, `"value": "AQI="`, `"compressed": true`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in:\n%s", want, out)
		}
	}
}

func TestTreeEmptyDocument(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteJSON(&buf, parse(t), Options{}, false); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != `{"version":7400,"roots":[],"nodes":[]}` {
		t.Fatalf("got %s", got)
	}
}

func TestCollect(t *testing.T) {
	t.Parallel()

	st, err := Collect(sceneDoc(t))
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if st.Nodes != 6 || st.MaxDepth != 2 || st.Properties != 6 {
		t.Fatalf("counts: %+v", st)
	}
	if st.PropertyTypes["I"] != 1 || st.PropertyTypes["d"] != 1 || st.PropertyTypes["i"] != 1 {
		t.Fatalf("histogram: %v", st.PropertyTypes)
	}
	if st.ArrayElements != 7 || st.CompressedArrays != 1 {
		t.Fatalf("arrays: %+v", st)
	}
	if strings.Join(st.Roots, ",") != "FBXHeaderExtension,Objects" {
		t.Fatalf("roots: %v", st.Roots)
	}
	// I + L + S("Cube") + R + 3 doubles + 4 ints
	if st.PayloadBytes != 4+8+4+2+24+16 {
		t.Fatalf("payload bytes: %d", st.PayloadBytes)
	}
}

func TestOutline(t *testing.T) {
	t.Parallel()

	doc := sceneDoc(t)
	top, err := Outline(doc, 0)
	if err != nil {
		t.Fatalf("outline: %v", err)
	}
	if len(top) != 2 || top[1].Name != "Objects" || top[1].Children != 1 {
		t.Fatalf("depth 0: %+v", top)
	}
	all, _ := Outline(doc, -1)
	if len(all) != 6 || all[4].Name != "Vertices" || all[4].Depth != 2 {
		t.Fatalf("full outline: %+v", all)
	}
}

func TestReleasedDocument(t *testing.T) {
	t.Parallel()

	doc := sceneDoc(t)
	_ = doc.Close()
	if _, err := Tree(doc, Options{}); !errors.Is(err, fbx.ErrReleased) {
		t.Fatalf("tree: %v", err)
	}
	if _, err := Collect(doc); !errors.Is(err, fbx.ErrReleased) {
		t.Fatalf("collect: %v", err)
	}
	if _, err := Outline(doc, 1); !errors.Is(err, fbx.ErrReleased) {
		t.Fatalf("outline: %v", err)
	}
}
