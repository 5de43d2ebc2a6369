package element

import (
	"fmt"
	"strconv"
)

// ValueKind is the Value type discriminator.
type ValueKind uint8

const (
	KindNull     ValueKind = iota // Absent or explicit nil
	KindString                    // UTF-8 string
	KindNumber                    // float64
	KindBool                      // true/false
	KindListener                  // Event listener handle
)

// String returns the string representation of the ValueKind.
func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindString:
		return "String"
	case KindNumber:
		return "Number"
	case KindBool:
		return "Bool"
	case KindListener:
		return "Listener"
	default:
		return "Unknown"
	}
}

// Event is delivered to listeners by the host.
type Event struct {
	Type  string            // Event name without the "on" prefix ("click")
	Value string            // Input value, if any
	Data  map[string]string // Host-specific extras
}

// Listener is an event handler handle. Listeners compare by identity: two
// handles wrapping the same function are still different listeners.
type Listener struct {
	fn func(Event)
}

// NewListener wraps fn in a listener handle.
func NewListener(fn func(Event)) *Listener {
	return &Listener{fn: fn}
}

// Invoke calls the wrapped handler. A nil listener is a no-op.
func (l *Listener) Invoke(ev Event) {
	if l == nil || l.fn == nil {
		return
	}
	l.fn(ev)
}

// Value is a typed property value.
type Value struct {
	kind ValueKind
	str  string
	num  float64
	b    bool
	l    *Listener
}

// Null returns the null value.
func Null() Value { return Value{} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number returns a numeric value.
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Handler returns a listener value wrapping fn.
func Handler(fn func(Event)) Value { return Value{kind: KindListener, l: NewListener(fn)} }

// ListenerValue returns a value holding an existing listener handle.
func ListenerValue(l *Listener) Value {
	if l == nil {
		return Null()
	}
	return Value{kind: KindListener, l: l}
}

// ValueOf converts a Go value to a Value.
// Supported: nil, Value, string, bool, all integer and float types,
// func(Event), func(), *Listener, and fmt.Stringer. Anything else is
// formatted with %v into a string.
func ValueOf(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null()
	case Value:
		return x
	case string:
		return String(x)
	case bool:
		return Bool(x)
	case int:
		return Number(float64(x))
	case int8:
		return Number(float64(x))
	case int16:
		return Number(float64(x))
	case int32:
		return Number(float64(x))
	case int64:
		return Number(float64(x))
	case uint:
		return Number(float64(x))
	case uint8:
		return Number(float64(x))
	case uint16:
		return Number(float64(x))
	case uint32:
		return Number(float64(x))
	case uint64:
		return Number(float64(x))
	case float32:
		return Number(float64(x))
	case float64:
		return Number(x)
	case func(Event):
		return Handler(x)
	case func():
		return Handler(func(Event) { x() })
	case *Listener:
		return ListenerValue(x)
	case fmt.Stringer:
		return String(x.String())
	default:
		return String(fmt.Sprintf("%v", v))
	}
}

// Kind returns the value's kind.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Str returns the string payload, or "" for other kinds.
func (v Value) Str() string { return v.str }

// Num returns the numeric payload, or 0 for other kinds.
func (v Value) Num() float64 { return v.num }

// Truth returns the boolean payload, or false for other kinds.
func (v Value) Truth() bool { return v.b }

// Listener returns the listener handle, or nil for other kinds.
func (v Value) Listener() *Listener { return v.l }

// Equal reports whether two values have the same kind and payload.
// Listeners are equal only if they are the same handle.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.b == o.b
	case KindListener:
		return v.l == o.l
	}
	return false
}

// String renders the value as host attribute text.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindListener:
		return "[listener]"
	default:
		return ""
	}
}
