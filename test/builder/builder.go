// Package builder provides a small DSL to build test documents in the
// widgets schema. Text arguments may contain <name> markers; their positions
// are recorded in the Tag map of the result.
//
//	d := builder.Doc(builder.P("hello /ta<a>b"))
//	caret := d.Tag["a"]
package builder

import (
	"regexp"

	"github.com/cozy/prosemirror-go/model"
	"github.com/shodgson/prosemirror-widgets/schema/resizable"
)

// Attrs are node attributes passed as a builder argument.
type Attrs = map[string]interface{}

// NodeWithTag is a built node plus the positions of its tags.
type NodeWithTag struct {
	*model.Node
	Tag map[string]int
}

// Flat is inline content produced by a mark builder.
type Flat struct {
	Nodes []*model.Node
	Tag   map[string]int
}

type NodeBuilder func(args ...interface{}) NodeWithTag
type MarkBuilder func(args ...interface{}) Flat

var tagRe = regexp.MustCompile(`<(\w+)>`)

// Schema is the schema the builders use.
var Schema = resizable.Schema

func flatten(args []interface{}, marks []*model.Mark) ([]*model.Node, map[string]int, Attrs) {
	var nodes []*model.Node
	tags := map[string]int{}
	var attrs Attrs
	pos := 0
	for _, arg := range args {
		switch v := arg.(type) {
		case Attrs:
			attrs = v
		case string:
			text := ""
			last := 0
			for _, m := range tagRe.FindAllStringSubmatchIndex(v, -1) {
				text += v[last:m[0]]
				tags[v[m[2]:m[3]]] = pos + len(text)
				last = m[1]
			}
			text += v[last:]
			if text != "" {
				nodes = append(nodes, Schema.Text(text).Mark(marks))
				pos += len(text)
			}
		case Flat:
			for k, p := range v.Tag {
				tags[k] = pos + p
			}
			for _, n := range v.Nodes {
				nodes = append(nodes, n)
				pos += n.NodeSize()
			}
		case NodeWithTag:
			for k, p := range v.Tag {
				tags[k] = pos + 1 + p
			}
			nodes = append(nodes, v.Node)
			pos += v.NodeSize()
		case *model.Node:
			nodes = append(nodes, v)
			pos += v.NodeSize()
		}
	}
	return nodes, tags, attrs
}

func block(name string, defaults Attrs) NodeBuilder {
	return func(args ...interface{}) NodeWithTag {
		nodes, tags, attrs := flatten(args, nil)
		merged := Attrs{}
		for k, v := range defaults {
			merged[k] = v
		}
		for k, v := range attrs {
			merged[k] = v
		}
		if len(merged) == 0 {
			merged = nil
		}
		var node *model.Node
		var err error
		if len(nodes) == 0 {
			node, err = Schema.Node(name, merged)
		} else {
			content := make([]interface{}, len(nodes))
			for i, n := range nodes {
				content[i] = n
			}
			node, err = Schema.Node(name, merged, content)
		}
		if err != nil {
			panic(err)
		}
		return NodeWithTag{Node: node, Tag: tags}
	}
}

func mark(name string) MarkBuilder {
	return func(args ...interface{}) Flat {
		m := Schema.Mark(name)
		nodes, tags, _ := flatten(args, m.AddToSet(nil))
		return Flat{Nodes: nodes, Tag: tags}
	}
}

var (
	Doc        = block(resizable.Doc, nil)
	P          = block(resizable.Paragraph, nil)
	Blockquote = block(resizable.Blockquote, nil)
	Pre        = block(resizable.CodeBlock, nil)
	H1         = block(resizable.Heading, Attrs{"level": 1})
	H2         = block(resizable.Heading, Attrs{"level": 2})
	H3         = block(resizable.Heading, Attrs{"level": 3})
	Ul         = block(resizable.BulletList, nil)
	Ol         = block(resizable.OrderedList, nil)
	Li         = block(resizable.ListItem, nil)
	Hr         = block(resizable.HorizontalRule, nil)
	Br         = block(resizable.HardBreak, nil)
	Img        = block(resizable.Image, Attrs{"src": "img.png"})
	Em         = mark("em")
	Strong     = mark("strong")
	Code       = mark("code")
)
