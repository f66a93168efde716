package fbx

import (
	"fmt"

	"github.com/samcharles93/fbxcore/internal/logger"
)

// builder turns the record stream into the node table.
//
// The stack holds the indices of the open scopes. Its top is always a
// placeholder slot reserved for the next record header; the slot below
// it is the parent that placeholder is linked under. A null record means
// the placeholder does not exist: it is discarded and the parent's scope
// closes. A record whose properties end at its end offset has no children
// and closes immediately. Both paths share popScope.
type builder struct {
	r       *reader
	doc     *Document
	alloc   Allocator
	inf     inflater
	log     logger.Logger
	strict  bool
	recSize int

	stack Array[uint32]
	done  bool
}

func newBuilder(r *reader, doc *Document, alloc Allocator, log logger.Logger, strict, wide bool) *builder {
	return &builder{
		r:       r,
		doc:     doc,
		alloc:   alloc,
		inf:     inflater{log: log},
		log:     log,
		strict:  strict,
		recSize: recordSize(wide),
		stack:   newArray[uint32](alloc),
	}
}

// release frees the builder's own state. The document is not touched.
func (b *builder) release() {
	b.stack.Release()
	b.inf.close()
}

func (b *builder) top() uint32 {
	idx, _ := b.stack.Last()
	return idx
}

func (b *builder) node(idx uint32) *Node {
	return b.doc.nodes.Ptr(int(idx))
}

func (b *builder) run() error {
	if err := b.doc.nodes.Push(newNode(b.alloc)); err != nil {
		return classify(err, "node table", b.r.off)
	}
	if err := b.stack.Push(RootIndex); err != nil {
		return classify(err, "node stack", b.r.off)
	}
	if err := b.reserve(); err != nil {
		return err
	}

	for !b.done {
		idx := b.top()
		off := b.r.off
		hdr, err := b.r.readRecordHeader(b.recSize)
		if err != nil {
			return classify(err, "record header", off)
		}
		n := b.node(idx)
		n.Header = hdr
		n.Offset = off

		if hdr.IsSentinel() {
			if err := b.discard(); err != nil {
				return err
			}
			b.popScope()
		} else {
			leaf, err := b.readRecord(idx)
			if err != nil {
				return err
			}
			if leaf {
				b.popScope()
			}
		}

		if !b.done {
			if err := b.reserve(); err != nil {
				return err
			}
		}
	}

	if rest, ok := b.r.trailing(); ok {
		if b.strict {
			return newError(KindFormat, "footer", b.r.off, fmt.Errorf("%w: %d", errTrailingBytes, rest))
		}
		b.log.Debug("ignoring bytes after final null record", "offset", b.r.off, "bytes", rest)
	}
	b.log.Debug("end of node records", "offset", b.r.off, "nodes", b.doc.nodes.Len(), "roots", b.doc.roots.Len())
	return nil
}

// reserve appends an empty slot for the next header, links it under the
// current top and makes it the new top.
func (b *builder) reserve() error {
	idx := uint32(b.doc.nodes.Len())
	if err := b.doc.nodes.Push(newNode(b.alloc)); err != nil {
		return classify(err, "node table", b.r.off)
	}
	if err := b.node(b.top()).children.Push(idx); err != nil {
		return classify(err, "children", b.r.off)
	}
	if err := b.stack.Push(idx); err != nil {
		return classify(err, "node stack", b.r.off)
	}
	return nil
}

// discard drops the placeholder on top of the stack: its table slot and
// its link from the parent. The placeholder is always the newest slot and
// the parent's newest child.
func (b *builder) discard() error {
	idx := b.top()
	b.stack.RemoveAt(b.stack.Len() - 1)

	last := b.doc.nodes.Len() - 1
	if int(idx) != last {
		return newError(KindFormat, "null record", b.r.off, fmt.Errorf("placeholder %d is not the last slot %d", idx, last))
	}
	b.node(idx).release()
	b.doc.nodes.RemoveAt(last)

	parent := b.node(b.top())
	if c, ok := parent.children.Last(); ok && c == idx {
		parent.children.RemoveAt(parent.children.Len() - 1)
	}
	return nil
}

// popScope closes the scope on top of the stack. Closing the synthetic
// root ends the parse.
func (b *builder) popScope() {
	idx := b.top()
	b.stack.RemoveAt(b.stack.Len() - 1)
	if b.stack.Len() == 0 {
		b.done = true
		return
	}
	b.log.Debug("close node", "index", idx, "depth", b.stack.Len())
}

// readRecord fills the slot at idx from a non-null header and reports
// whether the record has no children.
func (b *builder) readRecord(idx uint32) (bool, error) {
	hdr := b.node(idx).Header

	if err := b.r.readInto(&b.node(idx).name, uint64(hdr.NameLength)); err != nil {
		return false, classify(err, "node name", b.r.off)
	}
	name := string(b.node(idx).Name())
	depth := b.stack.Len() - 1
	b.log.Debug("open node", "index", idx, "name", name, "depth", depth, "properties", hdr.NumProperties)

	for i := uint64(0); i < hdr.NumProperties; i++ {
		off := b.r.off
		p, err := decodeProperty(b.r, &b.inf, b.alloc)
		if err != nil {
			fe := classify(err, fmt.Sprintf("property %d", i), off)
			fe.Node = name
			return false, fe
		}
		if err := b.node(idx).properties.Push(p); err != nil {
			p.release()
			fe := classify(err, fmt.Sprintf("property %d", i), off)
			fe.Node = name
			return false, fe
		}
	}

	if depth == 1 {
		if err := b.doc.roots.Push(idx); err != nil {
			return false, classify(err, "root list", b.r.off)
		}
	}
	return uint64(b.r.off) == hdr.EndOffset, nil
}
