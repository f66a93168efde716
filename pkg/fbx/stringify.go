package fbx

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// StringifyOptions controls the text dump.
type StringifyOptions struct {
	// OmitProperties renders names and nesting only.
	OmitProperties bool
}

const propertySeparator = ", "

// Stringify renders the document as indented-by-braces diagnostic text:
//
//	Name : prop, prop {
//	Child
//	}
//
// The output has no grammar meant for reading back.
func Stringify(doc *Document) (string, error) {
	var sb strings.Builder
	if err := WriteText(&sb, doc, StringifyOptions{}); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// StringifyWithoutProperties renders only names and nesting.
func StringifyWithoutProperties(doc *Document) (string, error) {
	var sb strings.Builder
	if err := WriteText(&sb, doc, StringifyOptions{OmitProperties: true}); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// WriteText streams the text rendering of doc to w.
func WriteText(w io.Writer, doc *Document, opts StringifyOptions) error {
	if doc == nil || doc.released {
		return ErrReleased
	}
	bw := bufio.NewWriter(w)
	t := textWriter{w: bw, doc: doc, opts: opts}
	for _, idx := range doc.Roots() {
		t.node(doc.nodes.Ptr(int(idx)))
	}
	if t.err != nil {
		return t.err
	}
	return bw.Flush()
}

type textWriter struct {
	w       *bufio.Writer
	doc     *Document
	opts    StringifyOptions
	scratch []byte
	err     error
}

func (t *textWriter) write(p []byte) {
	if t.err != nil {
		return
	}
	_, t.err = t.w.Write(p)
}

func (t *textWriter) writeString(s string) {
	if t.err != nil {
		return
	}
	_, t.err = t.w.WriteString(s)
}

func (t *textWriter) node(n *Node) {
	props := n.Properties()
	if t.opts.OmitProperties {
		props = nil
	}
	kids := n.Children()

	t.write(n.Name())
	if len(props) > 0 || len(kids) > 0 {
		t.writeString(" : ")
	}
	for i := range props {
		if i > 0 {
			t.writeString(propertySeparator)
		}
		t.scratch = appendProperty(t.scratch[:0], &props[i])
		t.write(t.scratch)
	}
	if len(kids) > 0 {
		t.writeString(" {\n")
		for _, c := range kids {
			t.node(t.doc.nodes.Ptr(int(c)))
		}
		t.writeString("}")
	}
	t.writeString("\n")
}

func appendProperty(buf []byte, p *Property) []byte {
	switch p.Type {
	case TypeBool, TypeInt16, TypeInt32, TypeInt64:
		v, _ := p.Int()
		return strconv.AppendInt(buf, v, 10)
	case TypeFloat32, TypeFloat64:
		v, _ := p.Float()
		return strconv.AppendFloat(buf, v, 'f', 4, 64)
	case TypeString:
		buf = append(buf, '"')
		buf = append(buf, p.data.Bytes()...)
		return append(buf, '"')
	case TypeRaw:
		return append(buf, "RAW_DATA"...)
	}
	if p.Type.IsArray() {
		buf = append(buf, p.Type.ArrayKind()...)
		buf = append(buf, "_array["...)
		buf = strconv.AppendUint(buf, uint64(p.Array.Length), 10)
		return append(buf, ']')
	}
	return buf
}
