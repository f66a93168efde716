// Package fbx decodes Autodesk FBX binary containers into a flat node table.
//
// A Document holds every node record of the file in one index-addressed
// table. Node 0 is a synthetic root with no header or name; the top-level
// records of the file are listed by Roots and mirrored as node 0's children.
// Every region a Document owns is obtained from an Allocator and returned to
// it exactly once by Close, including when a load fails partway.
package fbx

import "fmt"

const (
	// MagicString opens every binary FBX file. It is 21 bytes including
	// the trailing NUL.
	MagicString = "Kaydara FBX Binary  \x00"

	// HeaderSize is the fixed size of the file header: magic string,
	// two magic bytes and a little-endian version.
	HeaderSize = 27

	narrowRecordSize = 13
	wideRecordSize   = 25

	arrayHeaderSize = 12
)

// MagicNumber follows the magic string in the file header.
var MagicNumber = [2]byte{0x1A, 0x00}

// RootIndex is the table index of the synthetic root node.
const RootIndex = 0

// Typecode selects the decoding rule of a property.
type Typecode byte

const (
	TypeBool    Typecode = 'C'
	TypeInt16   Typecode = 'Y'
	TypeInt32   Typecode = 'I'
	TypeFloat32 Typecode = 'F'
	TypeInt64   Typecode = 'L'
	TypeFloat64 Typecode = 'D'

	TypeBoolArray    Typecode = 'b'
	TypeInt32Array   Typecode = 'i'
	TypeFloat32Array Typecode = 'f'
	TypeInt64Array   Typecode = 'l'
	TypeFloat64Array Typecode = 'd'

	TypeString Typecode = 'S'
	TypeRaw    Typecode = 'R'
)

// IsArray reports whether t is one of the array typecodes.
func (t Typecode) IsArray() bool {
	switch t {
	case TypeBoolArray, TypeInt32Array, TypeFloat32Array, TypeInt64Array, TypeFloat64Array:
		return true
	default:
		return false
	}
}

// ElemSize is the byte width of a scalar value or of one array element.
// It returns 0 for strings, raw blobs and unknown typecodes.
func (t Typecode) ElemSize() int {
	switch t {
	case TypeBool, TypeBoolArray:
		return 1
	case TypeInt16:
		return 2
	case TypeInt32, TypeFloat32, TypeInt32Array, TypeFloat32Array:
		return 4
	case TypeInt64, TypeFloat64, TypeInt64Array, TypeFloat64Array:
		return 8
	default:
		return 0
	}
}

// ArrayKind names the element kind of an array typecode as used in the
// text rendering ("int" for 'i', and so on).
func (t Typecode) ArrayKind() string {
	switch t {
	case TypeBoolArray:
		return "bool"
	case TypeInt32Array:
		return "int"
	case TypeFloat32Array:
		return "float"
	case TypeInt64Array:
		return "long"
	case TypeFloat64Array:
		return "double"
	default:
		return ""
	}
}

func (t Typecode) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeInt16:
		return "int16"
	case TypeInt32:
		return "int32"
	case TypeFloat32:
		return "float32"
	case TypeInt64:
		return "int64"
	case TypeFloat64:
		return "float64"
	case TypeString:
		return "string"
	case TypeRaw:
		return "raw"
	}
	if t.IsArray() {
		return t.ArrayKind() + "_array"
	}
	return fmt.Sprintf("typecode(%#02x)", byte(t))
}

// Valid reports whether t is a typecode the decoder understands.
func (t Typecode) Valid() bool {
	return t.ElemSize() > 0 || t == TypeString || t == TypeRaw
}

// FileHeader is the decoded 27-byte file header.
type FileHeader struct {
	Magic   [21]byte
	Number  [2]byte
	Version uint32
}

// RecordHeader is the fixed part of a node record. The three counters are
// stored as u32 (13 bytes in total) regardless of the file version. Wide
// records, enabled with WithWideRecords, store them as u64 (25 bytes).
type RecordHeader struct {
	EndOffset          uint64
	NumProperties      uint64
	PropertyListLength uint64
	NameLength         uint8
}

// IsSentinel reports whether every field is zero, which closes the
// current sibling list.
func (h RecordHeader) IsSentinel() bool {
	return h.EndOffset == 0 && h.NumProperties == 0 && h.PropertyListLength == 0 && h.NameLength == 0
}

func recordSize(wide bool) int {
	if wide {
		return wideRecordSize
	}
	return narrowRecordSize
}
