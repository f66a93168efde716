package fbx

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Property is one typed value of a node.
//
// Scalars keep their little-endian bytes verbatim. Strings and raw blobs
// keep exactly their declared bytes, embedded zeros included. Array
// payloads live in Array.
type Property struct {
	Type  Typecode
	Array ArrayProperty
	data  Buffer
}

// ArrayProperty is the decoded form of an array payload.
type ArrayProperty struct {
	// Length is the element count declared in the file.
	Length uint32
	// Encoding is 0 for raw payloads and non-zero for zlib payloads.
	Encoding uint32
	// CompressedLength is the on-disk payload size when Encoding != 0.
	CompressedLength uint32

	data Buffer
}

// Bytes returns the decoded element bytes. When the payload was
// compressed its size is whatever the stream inflated to.
func (a *ArrayProperty) Bytes() []byte {
	return a.data.Bytes()
}

func (p *Property) release() {
	if p.Type.IsArray() {
		p.Array.data.Release()
	}
	p.data.Release()
}

// Bytes returns the raw payload: the scalar bytes, the string or blob
// bytes, or the decoded array bytes.
func (p *Property) Bytes() []byte {
	if p.Type.IsArray() {
		return p.Array.data.Bytes()
	}
	return p.data.Bytes()
}

// Text returns a string property's bytes as a Go string.
func (p *Property) Text() (string, bool) {
	if p.Type != TypeString {
		return "", false
	}
	return string(p.data.Bytes()), true
}

func (p *Property) Bool() (bool, bool) {
	if p.Type != TypeBool || p.data.Len() != 1 {
		return false, false
	}
	return p.data.Bytes()[0] != 0, true
}

func (p *Property) Int16() (int16, bool) {
	if p.Type != TypeInt16 || p.data.Len() != 2 {
		return 0, false
	}
	return int16(binary.LittleEndian.Uint16(p.data.Bytes())), true
}

func (p *Property) Int32() (int32, bool) {
	if p.Type != TypeInt32 || p.data.Len() != 4 {
		return 0, false
	}
	return int32(binary.LittleEndian.Uint32(p.data.Bytes())), true
}

func (p *Property) Int64() (int64, bool) {
	if p.Type != TypeInt64 || p.data.Len() != 8 {
		return 0, false
	}
	return int64(binary.LittleEndian.Uint64(p.data.Bytes())), true
}

func (p *Property) Float32() (float32, bool) {
	if p.Type != TypeFloat32 || p.data.Len() != 4 {
		return 0, false
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(p.data.Bytes())), true
}

func (p *Property) Float64() (float64, bool) {
	if p.Type != TypeFloat64 || p.data.Len() != 8 {
		return 0, false
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(p.data.Bytes())), true
}

// Int reports the value of any integer scalar (C, Y, I, L) widened to
// int64. C is read as a signed byte.
func (p *Property) Int() (int64, bool) {
	b := p.data.Bytes()
	switch {
	case p.Type == TypeBool && len(b) == 1:
		return int64(int8(b[0])), true
	case p.Type == TypeInt16:
		v, ok := p.Int16()
		return int64(v), ok
	case p.Type == TypeInt32:
		v, ok := p.Int32()
		return int64(v), ok
	case p.Type == TypeInt64:
		return p.Int64()
	}
	return 0, false
}

// Float reports the value of F or D widened to float64.
func (p *Property) Float() (float64, bool) {
	switch p.Type {
	case TypeFloat32:
		v, ok := p.Float32()
		return float64(v), ok
	case TypeFloat64:
		return p.Float64()
	}
	return 0, false
}

// ArrayLen is the element count declared for an array property.
func (p *Property) ArrayLen() (int, bool) {
	if !p.Type.IsArray() {
		return 0, false
	}
	return int(p.Array.Length), true
}

func (p *Property) elems(t Typecode) ([]byte, int, bool) {
	if p.Type != t {
		return nil, 0, false
	}
	b := p.Array.data.Bytes()
	return b, len(b) / t.ElemSize(), true
}

func (p *Property) Bools() ([]bool, bool) {
	b, n, ok := p.elems(TypeBoolArray)
	if !ok {
		return nil, false
	}
	out := make([]bool, n)
	for i := range out {
		out[i] = b[i] != 0
	}
	return out, true
}

func (p *Property) Int32s() ([]int32, bool) {
	b, n, ok := p.elems(TypeInt32Array)
	if !ok {
		return nil, false
	}
	out := make([]int32, n)
	for i := range out {
		out[i] = int32(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out, true
}

func (p *Property) Int64s() ([]int64, bool) {
	b, n, ok := p.elems(TypeInt64Array)
	if !ok {
		return nil, false
	}
	out := make([]int64, n)
	for i := range out {
		out[i] = int64(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return out, true
}

func (p *Property) Float32s() ([]float32, bool) {
	b, n, ok := p.elems(TypeFloat32Array)
	if !ok {
		return nil, false
	}
	out := make([]float32, n)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out, true
}

func (p *Property) Float64s() ([]float64, bool) {
	b, n, ok := p.elems(TypeFloat64Array)
	if !ok {
		return nil, false
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return out, true
}

// decodeProperty reads one typecode and its payload. The returned
// property is owned by the caller; on failure everything allocated for it
// has already been released.
func decodeProperty(r *reader, inf *inflater, alloc Allocator) (Property, error) {
	code, err := r.readU8()
	if err != nil {
		return Property{}, err
	}
	p := Property{
		Type: Typecode(code),
		data: newBuffer(alloc),
	}
	p.Array.data = newBuffer(alloc)

	switch {
	case p.Type.IsArray():
		err = decodeArray(r, inf, alloc, &p)
	case p.Type.ElemSize() > 0:
		err = r.readInto(&p.data, uint64(p.Type.ElemSize()))
	case p.Type == TypeString, p.Type == TypeRaw:
		var n uint32
		n, err = r.readU32()
		if err == nil {
			err = r.readInto(&p.data, uint64(n))
		}
	default:
		err = fmt.Errorf("%w: unknown typecode %q", ErrFormat, byte(code))
	}
	if err != nil {
		p.release()
		return Property{}, err
	}
	return p, nil
}

func decodeArray(r *reader, inf *inflater, alloc Allocator, p *Property) error {
	var hdr [arrayHeaderSize]byte
	if err := r.read(hdr[:]); err != nil {
		return err
	}
	p.Array.Length = binary.LittleEndian.Uint32(hdr[0:])
	p.Array.Encoding = binary.LittleEndian.Uint32(hdr[4:])
	p.Array.CompressedLength = binary.LittleEndian.Uint32(hdr[8:])

	if p.Array.Encoding == 0 {
		return r.readInto(&p.Array.data, uint64(p.Array.Length)*uint64(p.Type.ElemSize()))
	}

	encoded := newBuffer(alloc)
	defer encoded.Release()
	if err := r.readInto(&encoded, uint64(p.Array.CompressedLength)); err != nil {
		return err
	}
	return inf.inflate(encoded.Bytes(), &p.Array.data)
}
