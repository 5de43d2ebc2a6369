package element

import "testing"

type testComp struct{ name string }

func (c *testComp) ComponentName() string { return c.name }

func TestBuildNormalizesChildren(t *testing.T) {
	h1 := H("h1", nil, "Title")
	el := Build(Host("div"), []Prop{Attr("class", "card")},
		h1,
		"text",
		42,
		nil,
		[]*Element{H("p", nil), nil},
		true,
	)

	kids := el.Children()
	if len(kids) != 5 {
		t.Fatalf("len(children) = %d, want 5", len(kids))
	}
	if kids[0] != h1 {
		t.Error("element child should be kept as-is")
	}

	tests := []struct {
		idx  int
		want Value
	}{
		{1, String("text")},
		{2, Number(42)},
		{4, Bool(true)},
	}
	for _, tt := range tests {
		child := kids[tt.idx]
		if !child.Type.IsText() {
			t.Errorf("child[%d].Type = %v, want text", tt.idx, child.Type)
		}
		if got := child.Props.Lookup(NodeValue); !got.Equal(tt.want) {
			t.Errorf("child[%d] nodeValue = %v, want %v", tt.idx, got, tt.want)
		}
		if child.Props.Children == nil || len(child.Props.Children) != 0 {
			t.Errorf("child[%d] text element should have an empty child list", tt.idx)
		}
	}
	if kids[3].Type.Tag != "p" {
		t.Errorf("flattened child tag = %q, want p", kids[3].Type.Tag)
	}
}

func TestBuildAlwaysHasChildren(t *testing.T) {
	el := Build(Host("br"), nil)
	if el.Props.Children == nil {
		t.Error("Children should be an empty list, not nil")
	}
}

func TestPropsOrderAndReplace(t *testing.T) {
	p := NewProps(
		Attr("id", "a"),
		Attr("class", "x"),
		Attr("id", "b"),
		Attr(ChildrenProp, "ignored"),
	)

	if p.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", p.Len())
	}
	attrs := p.Attrs()
	if attrs[0].Name != "id" || attrs[1].Name != "class" {
		t.Errorf("order = %v, want [id class]", attrs)
	}
	if got := p.Lookup("id").Str(); got != "b" {
		t.Errorf("id = %q, want b", got)
	}
	if p.Has(ChildrenProp) {
		t.Error("children must not be stored as an attribute")
	}
}

func TestPropsWithDoesNotMutate(t *testing.T) {
	p := NewProps(Attr("id", "a"))
	q := p.With("id", String("b"))
	if p.Lookup("id").Str() != "a" {
		t.Error("With must not mutate the receiver")
	}
	if q.Lookup("id").Str() != "b" {
		t.Error("With should set the new value")
	}
}

func TestTypeEquality(t *testing.T) {
	a := &testComp{name: "A"}
	b := &testComp{name: "A"}

	if Host("div") != Host("div") {
		t.Error("same tags should be equal")
	}
	if Host("div") == Host("span") {
		t.Error("different tags should differ")
	}
	if Of(a) != Of(a) {
		t.Error("same component should be equal")
	}
	if Of(a) == Of(b) {
		t.Error("distinct components with the same name should differ")
	}
	if !Of(a).IsComponent() || Host("div").IsComponent() {
		t.Error("IsComponent mismatch")
	}
	if Of(a).String() != "<A>" {
		t.Errorf("String() = %q, want <A>", Of(a).String())
	}
}

func TestOn(t *testing.T) {
	called := 0
	p := On("click", func(Event) { called++ })
	if p.Name != "onClick" {
		t.Errorf("Name = %q, want onClick", p.Name)
	}
	if p.Value.Kind() != KindListener {
		t.Fatalf("Kind = %v, want Listener", p.Value.Kind())
	}
	p.Value.Listener().Invoke(Event{Type: "click"})
	if called != 1 {
		t.Errorf("called = %d, want 1", called)
	}
}
