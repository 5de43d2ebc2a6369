package memhost

import (
	"fmt"

	"github.com/vango-dev/didact/pkg/element"
)

// Op is the kind of host mutation.
type Op uint8

const (
	OpCreate         Op = 0x01 // Node created (detached)
	OpSetProp        Op = 0x02 // Plain property set
	OpRemoveProp     Op = 0x03 // Plain property removed
	OpAddListener    Op = 0x04 // Listener bound
	OpRemoveListener Op = 0x05 // Listener unbound
	OpAppend         Op = 0x06 // Child appended to parent
	OpRemove         Op = 0x07 // Child removed from parent
	OpInsert         Op = 0x08 // Child inserted before a sibling
)

// String returns the string representation of the Op.
func (op Op) String() string {
	switch op {
	case OpCreate:
		return "Create"
	case OpSetProp:
		return "SetProp"
	case OpRemoveProp:
		return "RemoveProp"
	case OpAddListener:
		return "AddListener"
	case OpRemoveListener:
		return "RemoveListener"
	case OpAppend:
		return "Append"
	case OpRemove:
		return "Remove"
	case OpInsert:
		return "Insert"
	default:
		return "Unknown"
	}
}

// Mutation records one Adapter call.
type Mutation struct {
	Op     Op
	Node   NodeID        // Target node (the child for Append/Remove)
	Parent NodeID        // Parent for Append/Remove/Insert
	Ref    NodeID        // Reference sibling for Insert
	Name   string        // Tag for Create, property name, or event name
	Value  element.Value // New value for SetProp
}

// String renders the mutation for logs and test failures.
func (m Mutation) String() string {
	switch m.Op {
	case OpCreate:
		return fmt.Sprintf("create %d %s", m.Node, m.Name)
	case OpSetProp:
		return fmt.Sprintf("set %d %s=%q", m.Node, m.Name, m.Value.String())
	case OpRemoveProp:
		return fmt.Sprintf("unset %d %s", m.Node, m.Name)
	case OpAddListener:
		return fmt.Sprintf("listen %d %s", m.Node, m.Name)
	case OpRemoveListener:
		return fmt.Sprintf("unlisten %d %s", m.Node, m.Name)
	case OpAppend:
		return fmt.Sprintf("append %d -> %d", m.Node, m.Parent)
	case OpRemove:
		return fmt.Sprintf("remove %d <- %d", m.Node, m.Parent)
	case OpInsert:
		return fmt.Sprintf("insert %d -> %d before %d", m.Node, m.Parent, m.Ref)
	default:
		return fmt.Sprintf("unknown(%d) %d", m.Op, m.Node)
	}
}

// Structural reports whether the mutation changes the tree shape.
func (m Mutation) Structural() bool {
	return m.Op == OpAppend || m.Op == OpRemove || m.Op == OpInsert
}
