package resizable

import (
	"math"

	"github.com/cozy/prosemirror-go/model"
)

// ImageAttrs is the typed view of an image node's attributes.
type ImageAttrs struct {
	Src    string
	Alt    *string
	Title  *string
	Width  *int
	Height *int
}

// ImageAttrsOf reads the attributes of an image node.
func ImageAttrsOf(n *model.Node) ImageAttrs {
	if n == nil {
		return ImageAttrs{}
	}
	a := ImageAttrs{}
	a.Src, _ = n.Attrs["src"].(string)
	a.Alt = StringAttr(n.Attrs, "alt")
	a.Title = StringAttr(n.Attrs, "title")
	a.Width = IntAttr(n.Attrs, "width")
	a.Height = IntAttr(n.Attrs, "height")
	return a
}

// Map converts the attributes back to the node attribute map, with nil for
// unset optional values.
func (a ImageAttrs) Map() map[string]interface{} {
	m := map[string]interface{}{"src": a.Src, "alt": nil, "title": nil, "width": nil, "height": nil}
	if a.Alt != nil {
		m["alt"] = *a.Alt
	}
	if a.Title != nil {
		m["title"] = *a.Title
	}
	if a.Width != nil {
		m["width"] = *a.Width
	}
	if a.Height != nil {
		m["height"] = *a.Height
	}
	return m
}

// HasSize reports whether both dimensions are set.
func (a ImageAttrs) HasSize() bool {
	return a.Width != nil && a.Height != nil
}

// StringAttr returns attrs[key] when it is a string.
func StringAttr(attrs map[string]interface{}, key string) *string {
	if s, ok := attrs[key].(string); ok {
		return &s
	}
	return nil
}

// IntAttr returns attrs[key] as an int. Numbers decoded from JSON arrive as
// float64 and are rounded.
func IntAttr(attrs map[string]interface{}, key string) *int {
	var v int
	switch x := attrs[key].(type) {
	case int:
		v = x
	case int64:
		v = int(x)
	case float64:
		v = int(math.Round(x))
	default:
		return nil
	}
	return &v
}
