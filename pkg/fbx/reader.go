package fbx

import (
	"bufio"
	"encoding/binary"
	"io"
)

type reader struct {
	r    *bufio.Reader
	off  int64
	size int64
}

func newReader(rd io.Reader, size int64) *reader {
	return &reader{
		r:    bufio.NewReaderSize(rd, 64<<10),
		size: size,
	}
}

// fits fails with io.ErrUnexpectedEOF when n bytes cannot follow the
// current offset in a source of known size. It runs before any buffer for
// those bytes is allocated.
func (r *reader) fits(n uint64) error {
	if r.size <= 0 {
		return nil
	}
	if r.off > r.size || n > uint64(r.size-r.off) {
		return io.ErrUnexpectedEOF
	}
	return nil
}

func (r *reader) read(p []byte) error {
	n, err := io.ReadFull(r.r, p)
	r.off += int64(n)
	return err
}

func (r *reader) readU8() (uint8, error) {
	b, err := r.r.ReadByte()
	if err != nil {
		return 0, err
	}
	r.off++
	return b, nil
}

func (r *reader) readU32() (uint32, error) {
	var b [4]byte
	if err := r.read(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func (r *reader) readRecordHeader(size int) (RecordHeader, error) {
	var b [wideRecordSize]byte
	if err := r.read(b[:size]); err != nil {
		return RecordHeader{}, err
	}
	if size == wideRecordSize {
		return RecordHeader{
			EndOffset:          binary.LittleEndian.Uint64(b[0:]),
			NumProperties:      binary.LittleEndian.Uint64(b[8:]),
			PropertyListLength: binary.LittleEndian.Uint64(b[16:]),
			NameLength:         b[24],
		}, nil
	}
	return RecordHeader{
		EndOffset:          uint64(binary.LittleEndian.Uint32(b[0:])),
		NumProperties:      uint64(binary.LittleEndian.Uint32(b[4:])),
		PropertyListLength: uint64(binary.LittleEndian.Uint32(b[8:])),
		NameLength:         b[12],
	}, nil
}

// unsizedChunk is the first region handed out for a length read from a
// stream of unknown size. Larger lengths grow from it as bytes arrive.
const unsizedChunk = 1 << 20

// readInto fills a freshly allocated buffer with the next n bytes.
func (r *reader) readInto(buf *Buffer, n uint64) error {
	if err := r.fits(n); err != nil {
		return err
	}
	if n > uint64(int(^uint(0)>>1)) {
		return io.ErrUnexpectedEOF
	}
	if r.size <= 0 && n > unsizedChunk {
		return r.readGrowing(buf, int(n))
	}
	if err := buf.Alloc(int(n)); err != nil {
		return err
	}
	return r.read(buf.Bytes())
}

// readGrowing reads n bytes of unknown availability, doubling buf only
// after the previous region filled. A short stream fails holding at most
// twice the bytes it actually delivered.
func (r *reader) readGrowing(buf *Buffer, n int) error {
	if err := buf.Alloc(unsizedChunk); err != nil {
		return err
	}
	have := 0
	for {
		if err := r.read(buf.Bytes()[have:]); err != nil {
			return err
		}
		have = buf.Len()
		if have == n {
			return nil
		}
		next := min(n, 2*have)
		if err := buf.realloc(next, next); err != nil {
			return err
		}
	}
}

// trailing reports whether any byte follows the current offset.
func (r *reader) trailing() (int64, bool) {
	if r.size > 0 {
		return r.size - r.off, r.off < r.size
	}
	_, err := r.r.Peek(1)
	return -1, err == nil
}

func readFileHeader(r *reader) (FileHeader, error) {
	var raw [HeaderSize]byte
	if err := r.read(raw[:]); err != nil {
		return FileHeader{}, newError(KindIO, "file header", 0, err)
	}
	var h FileHeader
	copy(h.Magic[:], raw[0:21])
	copy(h.Number[:], raw[21:23])
	h.Version = binary.LittleEndian.Uint32(raw[23:27])

	if string(h.Magic[:]) != MagicString {
		return FileHeader{}, newError(KindFormat, "file header", 0, errBadMagic)
	}
	if h.Number != MagicNumber {
		return FileHeader{}, newError(KindFormat, "file header", 21, errBadMagicNumber)
	}
	return h, nil
}
