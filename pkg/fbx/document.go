package fbx

// Node is one record of the node table.
type Node struct {
	Header RecordHeader
	// Offset is the file position of the record header.
	Offset int64

	name       Buffer
	properties Array[Property]
	children   Array[uint32]
}

func newNode(a Allocator) Node {
	return Node{
		name:       newBuffer(a),
		properties: newArray[Property](a),
		children:   newArray[uint32](a),
	}
}

// Name returns the record name. It is not necessarily valid UTF-8.
func (n *Node) Name() []byte {
	return n.name.Bytes()
}

// Properties returns the node's properties in file order.
func (n *Node) Properties() []Property {
	return n.properties.Slice()
}

// Property returns the i-th property, or nil when out of range.
func (n *Node) Property(i int) *Property {
	if i < 0 || i >= n.properties.Len() {
		return nil
	}
	return n.properties.Ptr(i)
}

// Children returns the table indices of the node's children in file order.
func (n *Node) Children() []uint32 {
	return n.children.Slice()
}

func (n *Node) release() {
	props := n.properties.Slice()
	for i := range props {
		props[i].release()
	}
	n.name.Release()
	n.properties.Release()
	n.children.Release()
}

// Document is a decoded FBX file.
type Document struct {
	Version uint32

	nodes    Array[Node]
	roots    Array[uint32]
	released bool
}

func newDocument(version uint32, a Allocator) *Document {
	return &Document{
		Version: version,
		nodes:   newArray[Node](a),
		roots:   newArray[uint32](a),
	}
}

// Len is the size of the node table, synthetic root included.
func (d *Document) Len() int {
	return d.nodes.Len()
}

// Node returns the node at table index i, or nil when out of range. The
// pointer stays valid until Close.
func (d *Document) Node(i uint32) *Node {
	if int(i) >= d.nodes.Len() {
		return nil
	}
	return d.nodes.Ptr(int(i))
}

// Roots returns the table indices of the top-level records in file order.
func (d *Document) Roots() []uint32 {
	return d.roots.Slice()
}

// Released reports whether Close has run.
func (d *Document) Released() bool {
	return d.released
}

// Child returns the index of the first child of parent named name.
func (d *Document) Child(parent uint32, name string) (uint32, bool) {
	p := d.Node(parent)
	if p == nil {
		return 0, false
	}
	for _, c := range p.Children() {
		if string(d.nodes.Ptr(int(c)).Name()) == name {
			return c, true
		}
	}
	return 0, false
}

// Find follows a path of names from the top-level records down, taking
// the first match at each level.
func (d *Document) Find(path ...string) (uint32, bool) {
	idx := uint32(RootIndex)
	if len(path) == 0 || d.Len() == 0 {
		return 0, false
	}
	for _, name := range path {
		next, ok := d.Child(idx, name)
		if !ok {
			return 0, false
		}
		idx = next
	}
	return idx, true
}

// WalkFunc is called for every node in depth-first preorder. Returning a
// non-nil error stops the walk and is returned by Walk.
type WalkFunc func(idx uint32, node *Node, depth int) error

// Walk visits every node reachable from the top-level records, in file
// order, without recursion.
func (d *Document) Walk(fn WalkFunc) error {
	if d.released {
		return ErrReleased
	}
	type frame struct {
		idx   uint32
		depth int
	}
	roots := d.Roots()
	stack := make([]frame, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{idx: roots[i], depth: 0})
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := d.nodes.Ptr(int(f.idx))
		if err := fn(f.idx, n, f.depth); err != nil {
			return err
		}
		kids := n.Children()
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, frame{idx: kids[i], depth: f.depth + 1})
		}
	}
	return nil
}

// Close releases every region the document owns, last node first, then
// the node table and the root list. Calling Close again does nothing.
func (d *Document) Close() error {
	if d == nil || d.released {
		return nil
	}
	for i := d.nodes.Len() - 1; i >= 0; i-- {
		d.nodes.Ptr(i).release()
	}
	d.nodes.Release()
	d.roots.Release()
	d.released = true
	return nil
}
