package host

import (
	"strings"
	"time"

	"github.com/vango-dev/didact/pkg/element"
)

// Node is an opaque handle to a platform node owned by an Adapter.
type Node any

// Adapter creates and mutates platform nodes.
//
// Property names passed to SetProperty and RemoveProperty are never
// listeners; event names passed to AddListener and RemoveListener are
// already stripped of the "on" prefix and lowercased.
type Adapter interface {
	// CreateNode creates a detached node. tag may be element.TextTag.
	CreateNode(tag string) Node

	SetProperty(n Node, name string, v element.Value)
	RemoveProperty(n Node, name string)

	AddListener(n Node, event string, l *element.Listener)
	RemoveListener(n Node, event string, l *element.Listener)

	AppendChild(parent, child Node)
	RemoveChild(parent, child Node)
}

// Inserter is an optional Adapter extension. When the adapter implements
// it, placements are inserted before the next committed sibling instead of
// appended, so the host child order follows the element order.
type Inserter interface {
	// InsertBefore inserts child into parent before ref. A nil ref appends.
	InsertBefore(parent, child, ref Node)
}

// Deadline reports how much of the current idle slice is left.
type Deadline interface {
	TimeRemaining() time.Duration
	DidTimeout() bool
}

// IdleScheduler runs callbacks when the host is idle.
type IdleScheduler interface {
	// RequestIdle schedules cb to run once with a fresh deadline.
	RequestIdle(cb func(Deadline))
}

// listenerPrefix marks a property as an event listener binding.
const listenerPrefix = "on"

// IsListener reports whether a property name binds an event listener.
func IsListener(name string) bool {
	return len(name) > len(listenerPrefix) && strings.HasPrefix(name, listenerPrefix)
}

// EventName returns the event name for a listener property ("onClick" → "click").
func EventName(name string) string {
	return strings.ToLower(strings.TrimPrefix(name, listenerPrefix))
}

// IsPlain reports whether a property is a plain attribute.
func IsPlain(name string) bool {
	return name != element.ChildrenProp && !IsListener(name)
}
