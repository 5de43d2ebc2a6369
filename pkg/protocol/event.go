package protocol

import (
	"github.com/vango-dev/didact/pkg/element"
	"github.com/vango-dev/didact/pkg/host/memhost"
)

// Event is a host event forwarded by the client.
type Event struct {
	Node  memhost.NodeID // Target node
	Type  string         // Lowercase event name ("click", "input")
	Value string         // Current value of the target, if any
}

// Element converts the wire event to the value passed to listeners.
func (ev *Event) Element() element.Event {
	return element.Event{Type: ev.Type, Value: ev.Value}
}

// EncodeEvent encodes an Event to bytes.
func EncodeEvent(ev *Event) []byte {
	e := NewEncoderWithCap(8 + len(ev.Type) + len(ev.Value))
	EncodeEventTo(e, ev)
	return e.Bytes()
}

// EncodeEventTo encodes an Event using the provided encoder.
func EncodeEventTo(e *Encoder, ev *Event) {
	e.WriteUvarint(uint64(ev.Node))
	e.WriteString(ev.Type)
	e.WriteString(ev.Value)
}

// DecodeEvent decodes an Event from bytes.
func DecodeEvent(data []byte) (*Event, error) {
	return DecodeEventFrom(NewDecoder(data))
}

// DecodeEventFrom decodes an Event from a decoder.
func DecodeEventFrom(d *Decoder) (*Event, error) {
	node, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	typ, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	value, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	return &Event{Node: memhost.NodeID(node), Type: typ, Value: value}, nil
}
