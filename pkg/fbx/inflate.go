package fbx

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/samcharles93/fbxcore/internal/logger"
)

// inflateChunk is the step by which decompressed output grows.
const inflateChunk = 1024

// inflater decompresses zlib-wrapped array payloads. One zlib reader is
// kept per load and reset for each payload.
type inflater struct {
	src bytes.Reader
	zr  io.ReadCloser
	log logger.Logger
}

func (f *inflater) reset(in []byte) error {
	f.src.Reset(in)
	if f.zr == nil {
		zr, err := zlib.NewReader(&f.src)
		if err != nil {
			return err
		}
		f.zr = zr
		return nil
	}
	return f.zr.(zlib.Resetter).Reset(&f.src, nil)
}

// inflate decompresses in into out, which must be empty. Success requires
// the decompressor to report the end of the stream; input that runs out
// first is a failure. On failure out may hold partial output and the
// caller owns its release.
func (f *inflater) inflate(in []byte, out *Buffer) error {
	if err := f.reset(in); err != nil {
		return decompressionError(err)
	}

	off := 0
	for {
		if off == out.Len() {
			if err := out.Resize(off + inflateChunk); err != nil {
				return err
			}
		}
		n, err := f.zr.Read(out.Bytes()[off:])
		off += n
		if err == io.EOF {
			break
		}
		if err != nil {
			return decompressionError(err)
		}
	}

	if err := out.Resize(off); err != nil {
		return err
	}
	if err := out.Trim(); err != nil {
		return err
	}
	f.log.Debug("inflated array", "compressed", len(in), "decompressed", off)
	return nil
}

func (f *inflater) close() {
	if f.zr != nil {
		_ = f.zr.Close()
		f.zr = nil
	}
}

func decompressionError(err error) error {
	switch {
	case errors.Is(err, zlib.ErrDictionary):
		return fmt.Errorf("%w: preset dictionary required", ErrDecompression)
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return fmt.Errorf("%w: input ended before end of stream", ErrDecompression)
	default:
		return fmt.Errorf("%w: %w", ErrDecompression, err)
	}
}
