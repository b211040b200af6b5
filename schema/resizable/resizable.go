// Package resizable defines the document schema used by the editor widgets:
// the basic CommonMark-like nodes, lists, and a block image node whose width
// and height are persisted as attributes.
package resizable

import (
	"github.com/cozy/prosemirror-go/model"
	"github.com/cozy/prosemirror-go/schema/list"
)

// Node type names used by the widgets.
const (
	Doc            = "doc"
	Paragraph      = "paragraph"
	Blockquote     = "blockquote"
	HorizontalRule = "horizontal_rule"
	Heading        = "heading"
	CodeBlock      = "code_block"
	Text           = "text"
	Image          = "image"
	HardBreak      = "hard_break"
	BulletList     = "bullet_list"
	OrderedList    = "ordered_list"
	ListItem       = "list_item"
)

var (
	empty = ""
	falsy = false

	headingAttrs = map[string]*model.AttributeSpec{
		"level": {Default: 1},
	}
	codeAttrs = map[string]*model.AttributeSpec{
		"params": {Default: ""},
	}
	// A null width or height means the image renders at its natural size.
	imageAttrs = map[string]*model.AttributeSpec{
		"src":    {},
		"alt":    {Default: nil},
		"title":  {Default: nil},
		"width":  {Default: nil},
		"height": {Default: nil},
	}
	linkAttrs = map[string]*model.AttributeSpec{
		"href":  {},
		"title": {Default: nil},
	}
)

// ImageSpec is the resizable image node. It is a block leaf so that one
// node view owns the whole line.
func ImageSpec() *model.NodeSpec {
	return &model.NodeSpec{Key: Image, Group: "block", Attrs: imageAttrs}
}

// Nodes are the specs for the nodes of the schema, without lists.
var Nodes = []*model.NodeSpec{
	{Key: Doc, Content: "block+"},
	{Key: Paragraph, Content: "inline*", Group: "block"},
	{Key: Blockquote, Content: "block+", Group: "block"},
	{Key: HorizontalRule, Group: "block"},
	{Key: Heading, Content: "inline*", Group: "block", Attrs: headingAttrs},
	{Key: CodeBlock, Content: "text*", Marks: &empty, Group: "block", Attrs: codeAttrs},
	{Key: Text, Group: "inline"},
	ImageSpec(),
	{Key: HardBreak, Group: "inline", Inline: true},
}

// Marks are the specs for the marks of the schema.
var Marks = []*model.MarkSpec{
	{Key: "link", Attrs: linkAttrs, Inclusive: &falsy},
	{Key: "em"},
	{Key: "strong"},
	{Key: "code"},
}

// NewSchema builds a fresh schema. Most callers want Schema.
func NewSchema() (*model.Schema, error) {
	return model.NewSchema(&model.SchemaSpec{
		Nodes: list.AddListNodes(append([]*model.NodeSpec(nil), Nodes...), "paragraph block*", "block"),
		Marks: Marks,
	})
}

// Schema is the shared schema instance.
var Schema = mustSchema()

func mustSchema() *model.Schema {
	s, err := NewSchema()
	if err != nil {
		panic(err)
	}
	return s
}

// IsTextblock reports whether n holds inline content directly.
func IsTextblock(n *model.Node) bool {
	if n == nil || n.IsText() || !n.IsBlock() {
		return false
	}
	switch n.Type.Name {
	case Paragraph, Heading, CodeBlock:
		return true
	}
	return false
}
