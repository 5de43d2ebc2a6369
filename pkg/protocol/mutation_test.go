package protocol

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/vango-dev/didact/pkg/element"
	"github.com/vango-dev/didact/pkg/host/memhost"
)

func TestBatchRoundTrip(t *testing.T) {
	doc := memhost.New()
	div := doc.CreateNode("div")
	doc.SetProperty(div, "class", element.String("card"))
	doc.SetProperty(div, "tabindex", element.Number(3))
	doc.SetProperty(div, "hidden", element.Bool(true))
	doc.SetProperty(div, "title", element.Null())
	doc.AddListener(div, "click", element.NewListener(func(element.Event) {}))
	text := doc.CreateNode(element.TextTag)
	doc.SetProperty(text, element.NodeValue, element.String("hi"))
	doc.AppendChild(doc.Root(), div)
	doc.InsertBefore(doc.Root(), text, div)
	doc.RemoveProperty(div, "title")
	doc.RemoveChild(doc.Root(), text)

	in := &Batch{Seq: 7, Mutations: doc.TakeMutations()}
	out, err := DecodeBatch(EncodeBatch(in))
	if err != nil {
		t.Fatalf("DecodeBatch() error: %v", err)
	}
	if out.Seq != 7 {
		t.Errorf("Seq = %d, want 7", out.Seq)
	}

	strs := func(ms []memhost.Mutation) []string {
		out := make([]string, len(ms))
		for i, m := range ms {
			out[i] = m.String()
		}
		return out
	}
	if diff := cmp.Diff(strs(in.Mutations), strs(out.Mutations)); diff != "" {
		t.Errorf("mutations (-want +got):\n%s", diff)
	}
	for i, m := range out.Mutations {
		if m.Op == memhost.OpSetProp && !m.Value.Equal(in.Mutations[i].Value) {
			t.Errorf("mutation %d value = %v, want %v", i, m.Value, in.Mutations[i].Value)
		}
	}
}

func TestBatchEmpty(t *testing.T) {
	out, err := DecodeBatch(EncodeBatch(&Batch{Seq: 1}))
	if err != nil {
		t.Fatalf("DecodeBatch() error: %v", err)
	}
	if len(out.Mutations) != 0 {
		t.Errorf("Mutations = %v, want none", out.Mutations)
	}
}

func TestBatchDecodeErrors(t *testing.T) {
	unknownOp := NewEncoder()
	unknownOp.WriteUvarint(1)
	unknownOp.WriteUvarint(1)
	unknownOp.WriteByte(0x7F)
	unknownOp.WriteUvarint(2)
	unknownOp.WriteUvarint(0)

	unknownKind := NewEncoder()
	unknownKind.WriteUvarint(1)
	unknownKind.WriteUvarint(1)
	unknownKind.WriteByte(byte(memhost.OpSetProp))
	unknownKind.WriteUvarint(2)
	unknownKind.WriteString("x")
	unknownKind.WriteByte(0x42)

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"unknown op", unknownOp.Bytes(), ErrUnknownOp},
		{"unknown value kind", unknownKind.Bytes(), ErrUnknownValueKind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeBatch(tt.data); !errors.Is(err, tt.want) {
				t.Errorf("DecodeBatch() error = %v, want %v", err, tt.want)
			}
		})
	}

	full := EncodeBatch(&Batch{Seq: 1, Mutations: []memhost.Mutation{
		{Op: memhost.OpCreate, Node: 2, Name: "div"},
	}})
	for i := 0; i < len(full); i++ {
		if _, err := DecodeBatch(full[:i]); err == nil {
			t.Errorf("DecodeBatch(truncated to %d) succeeded", i)
		}
	}
}
