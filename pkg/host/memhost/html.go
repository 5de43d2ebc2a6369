package memhost

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/vango-dev/didact/pkg/element"
)

// voidElements are elements that cannot have children.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// booleanAttrs are attributes that don't need a value.
// When true, they're rendered as just the attribute name.
var booleanAttrs = map[string]bool{
	"allowfullscreen": true,
	"async":           true,
	"autofocus":       true,
	"checked":         true,
	"controls":        true,
	"disabled":        true,
	"hidden":          true,
	"multiple":        true,
	"open":            true,
	"readonly":        true,
	"required":        true,
	"selected":        true,
}

// RendererConfig configures HTML serialization.
type RendererConfig struct {
	// NodeIDs adds a data-node attribute carrying each element's NodeID so a
	// remote client can address nodes in patches and events.
	NodeIDs bool
}

// Renderer serializes host nodes to HTML.
type Renderer struct {
	config RendererConfig
}

// NewRenderer creates a Renderer with the given configuration.
func NewRenderer(config RendererConfig) *Renderer {
	return &Renderer{config: config}
}

// RenderToString renders n to an HTML string. The root container renders
// only its children.
func (r *Renderer) RenderToString(n *Node) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToWriter(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter streams n to w.
func (r *Renderer) RenderToWriter(w io.Writer, n *Node) error {
	if n == nil {
		return nil
	}
	if n.tag == RootTag {
		for _, c := range n.children {
			if err := r.renderNode(w, c); err != nil {
				return err
			}
		}
		return nil
	}
	return r.renderNode(w, n)
}

// HTML renders n with the default configuration, ignoring write errors
// (writes to a buffer cannot fail).
func HTML(n *Node) string {
	s, _ := NewRenderer(RendererConfig{}).RenderToString(n)
	return s
}

func (r *Renderer) renderNode(w io.Writer, n *Node) error {
	if n.IsText() {
		v, _ := n.Prop(element.NodeValue)
		_, err := io.WriteString(w, escapeHTML(v.String()))
		return err
	}

	if _, err := fmt.Fprintf(w, "<%s", n.tag); err != nil {
		return err
	}
	if r.config.NodeIDs {
		if _, err := fmt.Fprintf(w, ` data-node="%d"`, n.id); err != nil {
			return err
		}
	}
	if err := r.renderAttributes(w, n); err != nil {
		return err
	}
	if _, err := io.WriteString(w, ">"); err != nil {
		return err
	}
	if voidElements[n.tag] {
		return nil
	}
	for _, c := range n.children {
		if err := r.renderNode(w, c); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "</%s>", n.tag)
	return err
}

func (r *Renderer) renderAttributes(w io.Writer, n *Node) error {
	for _, p := range n.props {
		key := p.Name
		if strings.HasPrefix(key, "_") {
			continue
		}
		switch key {
		case "className":
			key = "class"
		case "htmlFor":
			key = "for"
		}

		if booleanAttrs[key] && p.Value.Kind() == element.KindBool {
			if p.Value.Truth() {
				if _, err := fmt.Fprintf(w, " %s", key); err != nil {
					return err
				}
			}
			continue
		}
		if p.Value.IsNull() || p.Value.Kind() == element.KindListener {
			continue
		}
		if _, err := fmt.Fprintf(w, ` %s="%s"`, key, escapeAttr(p.Value.String())); err != nil {
			return err
		}
	}

	// Event markers so a client knows which events to forward.
	events := make([]string, 0, len(n.listeners))
	for event, ls := range n.listeners {
		if len(ls) > 0 {
			events = append(events, event)
		}
	}
	sort.Strings(events)
	for _, event := range events {
		if _, err := fmt.Fprintf(w, ` data-on-%s="true"`, event); err != nil {
			return err
		}
	}
	return nil
}

// escapeHTML escapes text for safe inclusion in HTML content.
func escapeHTML(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))

	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		case '\'':
			buf.WriteString("&#39;")
		default:
			buf.WriteRune(r)
		}
	}

	return buf.String()
}

// escapeAttr escapes text for safe inclusion in HTML attribute values.
// In addition to the standard HTML entities, it also escapes
// whitespace characters that could break attribute parsing.
func escapeAttr(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))

	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		case '\'':
			buf.WriteString("&#39;")
		case '\n':
			buf.WriteString("&#10;")
		case '\r':
			buf.WriteString("&#13;")
		case '\t':
			buf.WriteString("&#9;")
		default:
			buf.WriteRune(r)
		}
	}

	return buf.String()
}
