package fbx

import (
	"bytes"
	"io"
	"os"

	"github.com/samcharles93/fbxcore/internal/logger"
)

type options struct {
	log         logger.Logger
	alloc       Allocator
	memoryLimit int64
	strict      bool
	wide        bool
}

// Option configures a load.
type Option func(*options)

// WithLogger sets the logger that receives parse tracing. The default
// discards everything.
func WithLogger(l logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithAllocator sets the allocator every owned region comes from.
func WithAllocator(a Allocator) Option {
	return func(o *options) { o.alloc = a }
}

// WithMemoryLimit caps the live bytes a single load may hold. Zero or a
// negative limit disables the cap.
func WithMemoryLimit(n int64) Option {
	return func(o *options) { o.memoryLimit = n }
}

// WithStrict makes bytes after the final null record a format error
// instead of an ignored footer.
func WithStrict(strict bool) Option {
	return func(o *options) { o.strict = strict }
}

// WithWideRecords reads node record headers with 64-bit counters (25
// bytes, as written by some 7.5+ exporters) instead of the 13-byte layout.
// The file version is not consulted.
func WithWideRecords(wide bool) Option {
	return func(o *options) { o.wide = wide }
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Discard()
	}
	if o.alloc == nil {
		o.alloc = HeapAllocator{}
	}
	if o.memoryLimit > 0 {
		o.alloc = NewLimitAllocator(o.alloc, o.memoryLimit)
	}
	return o
}

// Load opens path, memory-mapping it where the platform allows, and
// decodes it. On failure nothing is returned that needs closing.
func Load(path string, opts ...Option) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, newError(KindIO, "open", -1, err)
	}
	defer func() { _ = f.Close() }()

	st, err := f.Stat()
	if err != nil {
		return nil, newError(KindIO, "stat", -1, err)
	}
	size := st.Size()

	if data, unmap, err := mapFile(f, size); err == nil {
		defer func() { _ = unmap() }()
		return Parse(bytes.NewReader(data), size, opts...)
	}
	return Parse(f, size, opts...)
}

// Parse decodes an FBX binary stream. size is the total stream length
// when known and <= 0 otherwise. A known size lets oversized length
// fields fail before anything is allocated for them. Without it, lengths
// above 1 MiB are read in doubling steps, so a truncated stream costs at
// most twice what it delivered; WithMemoryLimit bounds the rest.
//
// Any failure tears down the partially built document before returning.
func Parse(r io.Reader, size int64, opts ...Option) (*Document, error) {
	o := buildOptions(opts)
	rd := newReader(r, size)

	hdr, err := readFileHeader(rd)
	if err != nil {
		o.log.Debug("rejected file header", "error", err)
		return nil, err
	}
	o.log.Debug("file header", "version", hdr.Version, "size", size, "wide_records", o.wide)

	doc := newDocument(hdr.Version, o.alloc)
	b := newBuilder(rd, doc, o.alloc, o.log, o.strict, o.wide)
	err = b.run()
	b.release()
	if err != nil {
		_ = doc.Close()
		o.log.Debug("load failed", "error", err)
		return nil, err
	}
	return doc, nil
}
