package editor

import (
	"fmt"
	"strconv"

	"github.com/cozy/prosemirror-go/model"
	"github.com/shodgson/prosemirror-widgets/dom"
	"golang.org/x/net/html"
)

// Render rebuilds the editor's DOM under the document root and returns the
// editor element. Node views contribute their own, persistent, elements.
func (ed *Editor) Render() *html.Node {
	root := dom.Element("div", "class", "ProseMirror")
	if ed.focused {
		dom.AddClass(root, "ProseMirror-focused")
	}
	ed.renderContent(ed.doc, 0, root)
	if ed.root != nil {
		dom.Detach(ed.root)
	}
	ed.root = root
	ed.document.Root.AppendChild(root)
	return root
}

// Root returns the element produced by the last Render.
func (ed *Editor) Root() *html.Node { return ed.root }

// renderContent appends the children of parent, whose content starts at
// start, to target.
func (ed *Editor) renderContent(parent *model.Node, start int, target *html.Node) {
	parent.Content.ForEach(func(child *model.Node, offset int, _ int) {
		pos := start + offset
		if v := ed.viewAt(pos); v != nil {
			el := v.Dom()
			dom.Detach(el)
			target.AppendChild(el)
			return
		}
		target.AppendChild(ed.renderNode(child, pos))
	})
}

func (ed *Editor) renderNode(n *model.Node, pos int) *html.Node {
	if n.IsText() {
		out := dom.Text(*n.Text)
		for i := len(n.Marks) - 1; i >= 0; i-- {
			wrap := markElement(n.Marks[i])
			wrap.AppendChild(out)
			out = wrap
		}
		return out
	}
	el := nodeElement(n)
	inner := el
	if n.Type.Name == "code_block" {
		inner = dom.Element("code")
		el.AppendChild(inner)
	}
	if !n.IsLeaf() {
		ed.renderContent(n, pos+1, inner)
	}
	return el
}

func nodeElement(n *model.Node) *html.Node {
	switch n.Type.Name {
	case "paragraph":
		return dom.Element("p")
	case "heading":
		level := 1
		switch v := n.Attrs["level"].(type) {
		case int:
			level = v
		case float64:
			level = int(v)
		}
		return dom.Element(fmt.Sprintf("h%d", level))
	case "blockquote":
		return dom.Element("blockquote")
	case "horizontal_rule":
		return dom.Element("hr")
	case "code_block":
		return dom.Element("pre")
	case "hard_break":
		return dom.Element("br")
	case "bullet_list":
		return dom.Element("ul")
	case "ordered_list":
		return dom.Element("ol")
	case "list_item":
		return dom.Element("li")
	case "image":
		img := dom.Element("img")
		for _, key := range []string{"src", "alt", "title", "width", "height"} {
			switch v := n.Attrs[key].(type) {
			case string:
				dom.SetAttr(img, key, v)
			case int:
				dom.SetAttr(img, key, strconv.Itoa(v))
			case float64:
				dom.SetAttr(img, key, strconv.Itoa(int(v)))
			}
		}
		return img
	}
	return dom.Element("div", "data-type", n.Type.Name)
}

func markElement(m *model.Mark) *html.Node {
	switch m.Type.Name {
	case "em":
		return dom.Element("em")
	case "strong":
		return dom.Element("strong")
	case "code":
		return dom.Element("code")
	case "link":
		a := dom.Element("a")
		if href := fmt.Sprint(m.Attrs["href"]); href != "" && href != "<nil>" {
			dom.SetAttr(a, "href", href)
		}
		return a
	}
	return dom.Element("span", "data-mark", m.Type.Name)
}
