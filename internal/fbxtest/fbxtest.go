// Package fbxtest builds binary FBX byte streams for tests.
package fbxtest

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/klauspost/compress/zlib"
)

const magic = "Kaydara FBX Binary  \x00"

// Prop is one encoded property: typecode plus payload bytes.
type Prop struct {
	Code    byte
	Payload []byte
}

type Node struct {
	Name     string
	Props    []Prop
	Children []Node
	// Sentinel forces a null record after a childless node.
	Sentinel bool
}

type builder struct {
	buf  bytes.Buffer
	wide bool
}

// File encodes nodes as a complete file of the given version, final null
// record included, using 13-byte record headers.
func File(version uint32, nodes ...Node) []byte {
	return encode(&builder{}, version, nodes)
}

// WideFile is File with 25-byte record headers holding 64-bit counters.
func WideFile(version uint32, nodes ...Node) []byte {
	return encode(&builder{wide: true}, version, nodes)
}

func encode(b *builder, version uint32, nodes []Node) []byte {
	b.buf.WriteString(magic)
	b.buf.Write([]byte{0x1A, 0x00})
	b.buf.Write(LE(version))
	for _, n := range nodes {
		b.node(n)
	}
	b.null()
	return b.buf.Bytes()
}

func (b *builder) headerSize() int {
	if b.wide {
		return 25
	}
	return 13
}

func (b *builder) null() {
	b.buf.Write(make([]byte, b.headerSize()))
}

func (b *builder) node(n Node) {
	start := b.buf.Len()
	b.null()
	b.buf.WriteString(n.Name)
	propStart := b.buf.Len()
	for _, p := range n.Props {
		b.buf.WriteByte(p.Code)
		b.buf.Write(p.Payload)
	}
	propLen := b.buf.Len() - propStart
	for _, c := range n.Children {
		b.node(c)
	}
	if len(n.Children) > 0 || n.Sentinel {
		b.null()
	}
	end := b.buf.Len()

	raw := b.buf.Bytes()[start:]
	if b.wide {
		binary.LittleEndian.PutUint64(raw[0:], uint64(end))
		binary.LittleEndian.PutUint64(raw[8:], uint64(len(n.Props)))
		binary.LittleEndian.PutUint64(raw[16:], uint64(propLen))
		raw[24] = byte(len(n.Name))
		return
	}
	binary.LittleEndian.PutUint32(raw[0:], uint32(end))
	binary.LittleEndian.PutUint32(raw[4:], uint32(len(n.Props)))
	binary.LittleEndian.PutUint32(raw[8:], uint32(propLen))
	raw[12] = byte(len(n.Name))
}

// LE encodes a fixed-size value little-endian.
func LE(v any) []byte {
	var b bytes.Buffer
	_ = binary.Write(&b, binary.LittleEndian, v)
	return b.Bytes()
}

func I16(v int16) Prop   { return Prop{'Y', LE(v)} }
func I32(v int32) Prop   { return Prop{'I', LE(v)} }
func I64(v int64) Prop   { return Prop{'L', LE(v)} }
func F32(v float32) Prop { return Prop{'F', LE(math.Float32bits(v))} }
func F64(v float64) Prop { return Prop{'D', LE(math.Float64bits(v))} }
func Char(v byte) Prop   { return Prop{'C', []byte{v}} }

func String(s string) Prop {
	return Prop{'S', append(LE(uint32(len(s))), s...)}
}

func Raw(p []byte) Prop {
	return Prop{'R', append(LE(uint32(len(p))), p...)}
}

// ArrayHeader is the 12-byte length, encoding, compressed length prefix.
func ArrayHeader(length, encoding, compressed uint32) []byte {
	return append(append(LE(length), LE(encoding)...), LE(compressed)...)
}

// Array encodes an uncompressed array of length elements.
func Array(code byte, length uint32, elems []byte) Prop {
	return Prop{code, append(ArrayHeader(length, 0, uint32(len(elems))), elems...)}
}

func F64s(vals ...float64) Prop {
	var b []byte
	for _, v := range vals {
		b = append(b, LE(math.Float64bits(v))...)
	}
	return Array('d', uint32(len(vals)), b)
}

func I32s(vals ...int32) Prop {
	var b []byte
	for _, v := range vals {
		b = append(b, LE(v)...)
	}
	return Array('i', uint32(len(vals)), b)
}

// Deflate wraps data in a zlib stream.
func Deflate(data []byte) ([]byte, error) {
	var b bytes.Buffer
	w := zlib.NewWriter(&b)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// Compressed encodes a zlib array whose header declares compressedLen and
// whose payload is the first compressedLen bytes of z.
func Compressed(code byte, length uint32, z []byte, compressedLen int) Prop {
	payload := z[:min(compressedLen, len(z))]
	return Prop{code, append(ArrayHeader(length, 1, uint32(compressedLen)), payload...)}
}
