package memhost

import (
	"fmt"

	"github.com/vango-dev/didact/internal/errors"
	"github.com/vango-dev/didact/pkg/element"
	"github.com/vango-dev/didact/pkg/host"
)

// Option configures a Document.
type Option func(*Document)

// WithSink registers fn to observe every mutation as it happens.
func WithSink(fn func(Mutation)) Option {
	return func(d *Document) {
		d.sink = fn
	}
}

// WithoutLog disables the mutation log. The sink still sees mutations.
func WithoutLog() Option {
	return func(d *Document) {
		d.noLog = true
	}
}

// Document is an in-memory host tree. It implements host.Adapter and is
// not safe for concurrent use.
type Document struct {
	nextID NodeID
	nodes  map[NodeID]*Node
	root   *Node
	log    []Mutation
	noLog  bool
	sink   func(Mutation)
}

var (
	_ host.Adapter  = (*Document)(nil)
	_ host.Inserter = (*Document)(nil)
)

// New creates a document with an empty container node.
func New(opts ...Option) *Document {
	d := &Document{nodes: make(map[NodeID]*Node)}
	for _, opt := range opts {
		opt(d)
	}
	d.root = d.newNode(RootTag)
	return d
}

// Root returns the container node.
func (d *Document) Root() *Node {
	return d.root
}

// Node returns the live node with the given ID.
func (d *Document) Node(id NodeID) (*Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// Len returns the number of live nodes, including the root.
func (d *Document) Len() int {
	return len(d.nodes)
}

// Mutations returns a copy of the mutation log.
func (d *Document) Mutations() []Mutation {
	out := make([]Mutation, len(d.log))
	copy(out, d.log)
	return out
}

// TakeMutations returns the mutation log and clears it.
func (d *Document) TakeMutations() []Mutation {
	out := d.log
	d.log = nil
	return out
}

func (d *Document) newNode(tag string) *Node {
	d.nextID++
	n := &Node{id: d.nextID, tag: tag}
	d.nodes[n.id] = n
	return n
}

func (d *Document) record(m Mutation) {
	if !d.noLog {
		d.log = append(d.log, m)
	}
	if d.sink != nil {
		d.sink(m)
	}
}

func asNode(n host.Node) *Node {
	node, ok := n.(*Node)
	if !ok || node == nil {
		panic(fmt.Sprintf("memhost: foreign node handle %T", n))
	}
	return node
}

// CreateNode implements host.Adapter.
func (d *Document) CreateNode(tag string) host.Node {
	n := d.newNode(tag)
	d.record(Mutation{Op: OpCreate, Node: n.id, Name: tag})
	return n
}

// SetProperty implements host.Adapter.
func (d *Document) SetProperty(hn host.Node, name string, v element.Value) {
	n := asNode(hn)
	n.setProp(name, v)
	d.record(Mutation{Op: OpSetProp, Node: n.id, Name: name, Value: v})
}

// RemoveProperty implements host.Adapter.
func (d *Document) RemoveProperty(hn host.Node, name string) {
	n := asNode(hn)
	n.removeProp(name)
	d.record(Mutation{Op: OpRemoveProp, Node: n.id, Name: name})
}

// AddListener implements host.Adapter.
func (d *Document) AddListener(hn host.Node, event string, l *element.Listener) {
	n := asNode(hn)
	if n.listeners == nil {
		n.listeners = make(map[string][]*element.Listener)
	}
	n.listeners[event] = append(n.listeners[event], l)
	d.record(Mutation{Op: OpAddListener, Node: n.id, Name: event, Value: element.ListenerValue(l)})
}

// RemoveListener implements host.Adapter.
func (d *Document) RemoveListener(hn host.Node, event string, l *element.Listener) {
	n := asNode(hn)
	ls := n.listeners[event]
	for i, existing := range ls {
		if existing == l {
			n.listeners[event] = append(ls[:i], ls[i+1:]...)
			break
		}
	}
	if len(n.listeners[event]) == 0 {
		delete(n.listeners, event)
	}
	d.record(Mutation{Op: OpRemoveListener, Node: n.id, Name: event})
}

// AppendChild implements host.Adapter. A child that already has a parent
// is moved.
func (d *Document) AppendChild(hp, hc host.Node) {
	parent, child := asNode(hp), asNode(hc)
	if child.parent != nil {
		child.parent.detach(child)
	}
	child.parent = parent
	parent.children = append(parent.children, child)
	d.record(Mutation{Op: OpAppend, Node: child.id, Parent: parent.id})
}

// InsertBefore implements host.Inserter. It panics if ref is not a child
// of parent.
func (d *Document) InsertBefore(hp, hc, href host.Node) {
	if href == nil {
		d.AppendChild(hp, hc)
		return
	}
	parent, child, ref := asNode(hp), asNode(hc), asNode(href)
	if ref.parent != parent {
		panic(fmt.Sprintf("memhost: node %d is not a child of %d", ref.id, parent.id))
	}
	if child.parent != nil {
		child.parent.detach(child)
	}
	i := parent.indexOf(ref)
	child.parent = parent
	parent.children = append(parent.children, nil)
	copy(parent.children[i+1:], parent.children[i:])
	parent.children[i] = child
	d.record(Mutation{Op: OpInsert, Node: child.id, Parent: parent.id, Ref: ref.id})
}

// RemoveChild implements host.Adapter. It panics if child is not a child of
// parent. The removed subtree is forgotten and can no longer receive events.
func (d *Document) RemoveChild(hp, hc host.Node) {
	parent, child := asNode(hp), asNode(hc)
	if child.parent != parent || parent.indexOf(child) < 0 {
		panic(fmt.Sprintf("memhost: node %d is not a child of %d", child.id, parent.id))
	}
	parent.detach(child)
	d.forget(child)
	d.record(Mutation{Op: OpRemove, Node: child.id, Parent: parent.id})
}

func (n *Node) detach(child *Node) {
	if i := n.indexOf(child); i >= 0 {
		n.children = append(n.children[:i], n.children[i+1:]...)
	}
	child.parent = nil
}

func (d *Document) forget(n *Node) {
	delete(d.nodes, n.id)
	for _, c := range n.children {
		d.forget(c)
	}
}

// Dispatch delivers ev to the listeners bound on node id for ev.Type.
// It returns the number of listeners invoked.
func (d *Document) Dispatch(id NodeID, ev element.Event) (int, error) {
	n, ok := d.nodes[id]
	if !ok {
		return 0, errors.New(errors.CodeUnknownNode).WithDetailf("node %d", id)
	}
	ls := n.Listeners(ev.Type)
	for _, l := range ls {
		l.Invoke(ev)
	}
	return len(ls), nil
}
