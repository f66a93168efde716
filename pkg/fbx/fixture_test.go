package fbx

import (
	"bytes"
	"testing"

	"github.com/samcharles93/fbxcore/internal/fbxtest"
)

func buildFile(nodes ...fbxtest.Node) []byte {
	return fbxtest.File(7400, nodes...)
}

func deflate(t testing.TB, data []byte) []byte {
	t.Helper()
	z, err := fbxtest.Deflate(data)
	if err != nil {
		t.Fatalf("deflate: %v", err)
	}
	return z
}

func parseBytes(t testing.TB, data []byte, opts ...Option) (*Document, error) {
	t.Helper()
	return Parse(bytes.NewReader(data), int64(len(data)), opts...)
}

func nodeName(t testing.TB, doc *Document, idx uint32) string {
	t.Helper()
	n := doc.Node(idx)
	if n == nil {
		t.Fatalf("node %d out of range (len %d)", idx, doc.Len())
	}
	return string(n.Name())
}
