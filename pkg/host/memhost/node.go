package memhost

import (
	"strings"

	"github.com/vango-dev/didact/pkg/element"
)

// NodeID identifies a node within a Document. IDs are never reused.
type NodeID uint64

// RootTag is the tag of a document's container node.
const RootTag = "#root"

// Node is a host node.
type Node struct {
	id        NodeID
	tag       string
	props     []element.Prop
	listeners map[string][]*element.Listener
	parent    *Node
	children  []*Node
}

// ID returns the node's identifier.
func (n *Node) ID() NodeID { return n.id }

// Tag returns the node's tag.
func (n *Node) Tag() string { return n.tag }

// IsText reports whether the node is a text node.
func (n *Node) IsText() bool { return n.tag == element.TextTag }

// Parent returns the parent node, or nil if detached.
func (n *Node) Parent() *Node { return n.parent }

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Prop returns a property value.
func (n *Node) Prop(name string) (element.Value, bool) {
	for _, p := range n.props {
		if p.Name == name {
			return p.Value, true
		}
	}
	return element.Value{}, false
}

// Props returns a copy of the properties in the order they were first set.
func (n *Node) Props() []element.Prop {
	out := make([]element.Prop, len(n.props))
	copy(out, n.props)
	return out
}

// Listeners returns the listeners bound for event.
func (n *Node) Listeners(event string) []*element.Listener {
	ls := n.listeners[event]
	out := make([]*element.Listener, len(ls))
	copy(out, ls)
	return out
}

// ListenerCount returns the total number of bound listeners.
func (n *Node) ListenerCount() int {
	total := 0
	for _, ls := range n.listeners {
		total += len(ls)
	}
	return total
}

// Text returns the concatenated text content of the subtree.
func (n *Node) Text() string {
	var b strings.Builder
	n.writeText(&b)
	return b.String()
}

func (n *Node) writeText(b *strings.Builder) {
	if n.IsText() {
		if v, ok := n.Prop(element.NodeValue); ok {
			b.WriteString(v.String())
		}
		return
	}
	for _, c := range n.children {
		c.writeText(b)
	}
}

// Find returns the first node in pre-order for which match returns true.
func (n *Node) Find(match func(*Node) bool) *Node {
	if match(n) {
		return n
	}
	for _, c := range n.children {
		if found := c.Find(match); found != nil {
			return found
		}
	}
	return nil
}

// FindTag returns the first node with the given tag.
func (n *Node) FindTag(tag string) *Node {
	return n.Find(func(c *Node) bool { return c.tag == tag })
}

// FindAll returns every node in pre-order for which match returns true.
func (n *Node) FindAll(match func(*Node) bool) []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(c *Node) {
		if match(c) {
			out = append(out, c)
		}
		for _, cc := range c.children {
			walk(cc)
		}
	}
	walk(n)
	return out
}

func (n *Node) setProp(name string, v element.Value) {
	for i := range n.props {
		if n.props[i].Name == name {
			n.props[i].Value = v
			return
		}
	}
	n.props = append(n.props, element.Prop{Name: name, Value: v})
}

func (n *Node) removeProp(name string) {
	for i := range n.props {
		if n.props[i].Name == name {
			n.props = append(n.props[:i], n.props[i+1:]...)
			return
		}
	}
}

func (n *Node) indexOf(child *Node) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}
