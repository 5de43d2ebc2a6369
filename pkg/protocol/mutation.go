package protocol

import (
	"errors"
	"fmt"

	"github.com/vango-dev/didact/pkg/element"
	"github.com/vango-dev/didact/pkg/host/memhost"
)

// Mutation decoding errors.
var (
	ErrUnknownOp        = errors.New("protocol: unknown mutation op")
	ErrUnknownValueKind = errors.New("protocol: unknown value kind")
)

// Batch is the set of host mutations produced by one commit.
type Batch struct {
	Seq       uint64
	Mutations []memhost.Mutation
}

// EncodeBatch encodes a Batch to bytes.
func EncodeBatch(b *Batch) []byte {
	e := NewEncoderWithCap(16 + 12*len(b.Mutations))
	EncodeBatchTo(e, b)
	return e.Bytes()
}

// EncodeBatchTo encodes a Batch using the provided encoder.
func EncodeBatchTo(e *Encoder, b *Batch) {
	e.WriteUvarint(b.Seq)
	e.WriteUvarint(uint64(len(b.Mutations)))
	for i := range b.Mutations {
		encodeMutation(e, &b.Mutations[i])
	}
}

func encodeMutation(e *Encoder, m *memhost.Mutation) {
	e.WriteByte(byte(m.Op))
	e.WriteUvarint(uint64(m.Node))
	switch m.Op {
	case memhost.OpCreate, memhost.OpRemoveProp, memhost.OpAddListener, memhost.OpRemoveListener:
		e.WriteString(m.Name)
	case memhost.OpSetProp:
		e.WriteString(m.Name)
		encodeValue(e, m.Value)
	case memhost.OpAppend, memhost.OpRemove:
		e.WriteUvarint(uint64(m.Parent))
	case memhost.OpInsert:
		e.WriteUvarint(uint64(m.Parent))
		e.WriteUvarint(uint64(m.Ref))
	}
}

// Listener values never cross the wire and are sent as null.
func encodeValue(e *Encoder, v element.Value) {
	switch v.Kind() {
	case element.KindString:
		e.WriteByte(byte(element.KindString))
		e.WriteString(v.Str())
	case element.KindNumber:
		e.WriteByte(byte(element.KindNumber))
		e.WriteFloat64(v.Num())
	case element.KindBool:
		e.WriteByte(byte(element.KindBool))
		e.WriteBool(v.Truth())
	default:
		e.WriteByte(byte(element.KindNull))
	}
}

// DecodeBatch decodes a Batch from bytes.
func DecodeBatch(data []byte) (*Batch, error) {
	return DecodeBatchFrom(NewDecoder(data))
}

// DecodeBatchFrom decodes a Batch from a decoder.
func DecodeBatchFrom(d *Decoder) (*Batch, error) {
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	// Smallest mutation: op byte + one-byte node + one-byte operand.
	count, err := d.ReadCollectionCount(3)
	if err != nil {
		return nil, err
	}

	b := &Batch{Seq: seq, Mutations: make([]memhost.Mutation, 0, count)}
	for i := 0; i < count; i++ {
		m, err := decodeMutation(d)
		if err != nil {
			return nil, fmt.Errorf("mutation %d: %w", i, err)
		}
		b.Mutations = append(b.Mutations, m)
	}
	return b, nil
}

func decodeMutation(d *Decoder) (memhost.Mutation, error) {
	var m memhost.Mutation
	op, err := d.ReadByte()
	if err != nil {
		return m, err
	}
	m.Op = memhost.Op(op)
	node, err := d.ReadUvarint()
	if err != nil {
		return m, err
	}
	m.Node = memhost.NodeID(node)

	switch m.Op {
	case memhost.OpCreate, memhost.OpRemoveProp, memhost.OpAddListener, memhost.OpRemoveListener:
		m.Name, err = d.ReadString()
	case memhost.OpSetProp:
		if m.Name, err = d.ReadString(); err != nil {
			return m, err
		}
		m.Value, err = decodeValue(d)
	case memhost.OpAppend, memhost.OpRemove:
		var parent uint64
		parent, err = d.ReadUvarint()
		m.Parent = memhost.NodeID(parent)
	case memhost.OpInsert:
		var parent, ref uint64
		if parent, err = d.ReadUvarint(); err != nil {
			return m, err
		}
		ref, err = d.ReadUvarint()
		m.Parent, m.Ref = memhost.NodeID(parent), memhost.NodeID(ref)
	default:
		return m, fmt.Errorf("%w: 0x%02x", ErrUnknownOp, op)
	}
	return m, err
}

func decodeValue(d *Decoder) (element.Value, error) {
	kind, err := d.ReadByte()
	if err != nil {
		return element.Null(), err
	}
	switch element.ValueKind(kind) {
	case element.KindNull:
		return element.Null(), nil
	case element.KindString:
		s, err := d.ReadString()
		return element.String(s), err
	case element.KindNumber:
		n, err := d.ReadFloat64()
		return element.Number(n), err
	case element.KindBool:
		b, err := d.ReadBool()
		return element.Bool(b), err
	default:
		return element.Null(), fmt.Errorf("%w: 0x%02x", ErrUnknownValueKind, kind)
	}
}
