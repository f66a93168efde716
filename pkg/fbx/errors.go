package fbx

import (
	"errors"
	"strconv"
	"strings"
)

var (
	ErrIO            = errors.New("fbx: i/o failure")
	ErrFormat        = errors.New("fbx: invalid format")
	ErrDecompression = errors.New("fbx: decompression failure")
	ErrAllocation    = errors.New("fbx: allocation failure")
	ErrReleased      = errors.New("fbx: document released")
)

var (
	errBadMagic       = errors.New("bad magic string")
	errBadMagicNumber = errors.New("bad magic number")
	errTrailingBytes  = errors.New("bytes after final null record")
)

// Kind is the failure category of a load.
type Kind uint8

const (
	KindIO Kind = iota + 1
	KindFormat
	KindDecompression
	KindAllocation
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindFormat:
		return "format"
	case KindDecompression:
		return "decompression"
	case KindAllocation:
		return "allocation"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindIO:
		return ErrIO
	case KindFormat:
		return ErrFormat
	case KindDecompression:
		return ErrDecompression
	case KindAllocation:
		return ErrAllocation
	default:
		return nil
	}
}

// Error describes a failed load. It unwraps to both the sentinel of its
// Kind and the underlying cause.
type Error struct {
	Kind   Kind
	Op     string
	Offset int64
	Node   string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("fbx: ")
	b.WriteString(e.Kind.String())
	if e.Op != "" {
		b.WriteString(" error in ")
		b.WriteString(e.Op)
	}
	if e.Node != "" {
		b.WriteString(" of node ")
		b.WriteString(strconv.Quote(e.Node))
	}
	if e.Offset >= 0 {
		b.WriteString(" at offset ")
		b.WriteString(strconv.FormatInt(e.Offset, 10))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := e.Kind.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// KindOf returns the failure category of err, or 0 when err did not come
// from a load.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	switch {
	case errors.Is(err, ErrIO):
		return KindIO
	case errors.Is(err, ErrFormat):
		return KindFormat
	case errors.Is(err, ErrDecompression):
		return KindDecompression
	case errors.Is(err, ErrAllocation):
		return KindAllocation
	}
	return 0
}

func newError(kind Kind, op string, off int64, err error) *Error {
	return &Error{Kind: kind, Op: op, Offset: off, Err: err}
}

// classify turns a bare error from a lower layer into an *Error, keeping
// an existing classification when there is one.
func classify(err error, op string, off int64) *Error {
	var fe *Error
	if errors.As(err, &fe) {
		if fe.Op == "" {
			fe.Op = op
		}
		if fe.Offset < 0 {
			fe.Offset = off
		}
		return fe
	}
	switch {
	case errors.Is(err, ErrAllocation):
		return newError(KindAllocation, op, off, err)
	case errors.Is(err, ErrDecompression):
		return newError(KindDecompression, op, off, err)
	case errors.Is(err, ErrFormat):
		return newError(KindFormat, op, off, err)
	default:
		return newError(KindIO, op, off, err)
	}
}
