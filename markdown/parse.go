package markdown

import (
	"fmt"
	"strings"

	"github.com/cozy/prosemirror-go/model"
	"github.com/shodgson/prosemirror-widgets/schema/resizable"
	"github.com/yuin/goldmark/ast"
)

// parser turns a goldmark syntax tree into widget nodes.
type parser struct {
	schema *model.Schema
	source []byte
}

func newParser(schema *model.Schema, source []byte) *parser {
	return &parser{schema: schema, source: source}
}

func (p *parser) document(root ast.Node) (*model.Node, error) {
	content, err := p.blockChildren(root)
	if err != nil {
		return nil, err
	}
	if len(content) == 0 {
		para, err := p.node(resizable.Paragraph, nil, nil)
		if err != nil {
			return nil, err
		}
		content = append(content, para)
	}
	return p.node(resizable.Doc, nil, content)
}

func (p *parser) blockChildren(parent ast.Node) ([]*model.Node, error) {
	var content []*model.Node
	for child := parent.FirstChild(); child != nil; child = child.NextSibling() {
		converted, err := p.block(child)
		if err != nil {
			return nil, err
		}
		content = append(content, converted...)
	}
	return content, nil
}

func (p *parser) block(node ast.Node) ([]*model.Node, error) {
	switch typed := node.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		return p.paragraph(typed)

	case *ast.Heading:
		inline, err := p.inlineChildren(typed, nil, false)
		if err != nil {
			return nil, err
		}
		return p.one(resizable.Heading, map[string]interface{}{"level": typed.Level}, inline)

	case *ast.ThematicBreak:
		return p.one(resizable.HorizontalRule, nil, nil)

	case *ast.FencedCodeBlock:
		language := strings.TrimSpace(string(typed.Language(p.source)))
		return p.codeBlock(typed, language)

	case *ast.CodeBlock:
		return p.codeBlock(typed, "")

	case *ast.Blockquote:
		content, err := p.blockChildren(typed)
		if err != nil {
			return nil, err
		}
		if len(content) == 0 {
			return nil, nil
		}
		return p.one(resizable.Blockquote, nil, content)

	case *ast.List:
		return p.list(typed)

	case *ast.HTMLBlock:
		raw := strings.TrimRight(p.lines(typed), "\n")
		if raw == "" {
			return nil, nil
		}
		return p.one(resizable.Paragraph, nil, []*model.Node{p.schema.Text(raw)})
	}

	if node.HasChildren() {
		return p.blockChildren(node)
	}
	return nil, nil
}

func (p *parser) codeBlock(node ast.Node, language string) ([]*model.Node, error) {
	code := strings.TrimRight(p.lines(node), "\n")
	var content []*model.Node
	if code != "" {
		content = append(content, p.schema.Text(code))
	}
	return p.one(resizable.CodeBlock, map[string]interface{}{"params": language}, content)
}

func (p *parser) list(node *ast.List) ([]*model.Node, error) {
	name := resizable.BulletList
	var attrs map[string]interface{}
	if node.IsOrdered() {
		name = resizable.OrderedList
		attrs = map[string]interface{}{"order": node.Start}
	}
	var items []*model.Node
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		content, err := p.blockChildren(child)
		if err != nil {
			return nil, err
		}
		if len(content) == 0 || content[0].Type.Name != resizable.Paragraph {
			para, err := p.node(resizable.Paragraph, nil, nil)
			if err != nil {
				return nil, err
			}
			content = append([]*model.Node{para}, content...)
		}
		item, err := p.node(resizable.ListItem, nil, content)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil, nil
	}
	return p.one(name, attrs, items)
}

// paragraph splits a paragraph around its images, which become blocks.
// Runs next to an image that hold only whitespace or line breaks are
// dropped.
func (p *parser) paragraph(node ast.Node) ([]*model.Node, error) {
	inline, err := p.inlineChildren(node, nil, true)
	if err != nil {
		return nil, err
	}
	var out, run []*model.Node
	hasImage := false
	flush := func() error {
		defer func() { run = nil }()
		if hasImage && blank(run) {
			return nil
		}
		para, err := p.node(resizable.Paragraph, nil, run)
		if err != nil {
			return err
		}
		out = append(out, para)
		return nil
	}
	for _, n := range inline {
		if n.Type.Name != resizable.Image {
			run = append(run, n)
			continue
		}
		hasImage = true
		if len(run) > 0 {
			if err := flush(); err != nil {
				return nil, err
			}
		}
		out = append(out, n)
	}
	if len(run) > 0 || !hasImage {
		if err := flush(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (p *parser) inlineChildren(parent ast.Node, marks []*model.Mark, images bool) ([]*model.Node, error) {
	var content []*model.Node
	for child := parent.FirstChild(); child != nil; child = child.NextSibling() {
		converted, err := p.inline(child, marks, images)
		if err != nil {
			return nil, err
		}
		for _, n := range converted {
			content = p.appendInline(content, n)
		}
	}
	return content, nil
}

// inline converts one inline node. With images false, as inside headings,
// images collapse to their alt text.
func (p *parser) inline(node ast.Node, marks []*model.Mark, images bool) ([]*model.Node, error) {
	switch typed := node.(type) {
	case *ast.Text:
		var content []*model.Node
		if value := string(typed.Segment.Value(p.source)); value != "" {
			content = append(content, p.text(value, marks))
		}
		if typed.HardLineBreak() {
			br, err := p.node(resizable.HardBreak, nil, nil)
			if err != nil {
				return nil, err
			}
			content = append(content, br)
		} else if typed.SoftLineBreak() {
			content = append(content, p.text(" ", marks))
		}
		return content, nil

	case *ast.String:
		if len(typed.Value) == 0 {
			return nil, nil
		}
		return []*model.Node{p.text(string(typed.Value), marks)}, nil

	case *ast.Emphasis:
		name := "em"
		if typed.Level >= 2 {
			name = "strong"
		}
		return p.inlineChildren(typed, p.mark(name, nil).AddToSet(marks), images)

	case *ast.CodeSpan:
		code := p.plainText(typed)
		if code == "" {
			return nil, nil
		}
		return []*model.Node{p.text(code, p.mark("code", nil).AddToSet(marks))}, nil

	case *ast.Link:
		href := strings.TrimSpace(string(typed.Destination))
		if href == "" {
			return p.inlineChildren(typed, marks, images)
		}
		attrs := map[string]interface{}{"href": href}
		if title := strings.TrimSpace(string(typed.Title)); title != "" {
			attrs["title"] = title
		}
		return p.inlineChildren(typed, p.mark("link", attrs).AddToSet(marks), images)

	case *ast.AutoLink:
		url := string(typed.URL(p.source))
		label := string(typed.Label(p.source))
		link := p.mark("link", map[string]interface{}{"href": url})
		return []*model.Node{p.text(label, link.AddToSet(marks))}, nil

	case *ast.Image:
		alt := p.plainText(typed)
		if !images {
			if alt, _, _ = SplitAlt(alt); alt == "" {
				return nil, nil
			}
			return []*model.Node{p.text(alt, marks)}, nil
		}
		img, err := p.image(typed, alt)
		if err != nil {
			return nil, err
		}
		return []*model.Node{img}, nil

	case *ast.RawHTML:
		var b strings.Builder
		for i := 0; i < typed.Segments.Len(); i++ {
			seg := typed.Segments.At(i)
			b.Write(seg.Value(p.source))
		}
		if b.Len() == 0 {
			return nil, nil
		}
		return []*model.Node{p.text(b.String(), marks)}, nil
	}

	if node.HasChildren() {
		return p.inlineChildren(node, marks, images)
	}
	return nil, nil
}

func (p *parser) image(node *ast.Image, rawAlt string) (*model.Node, error) {
	a := resizable.ImageAttrs{Src: string(node.Destination)}
	alt, width, height := SplitAlt(rawAlt)
	a.Width, a.Height = width, height
	if alt != "" {
		a.Alt = &alt
	}
	if title := string(node.Title); title != "" {
		a.Title = &title
	}
	return p.node(resizable.Image, a.Map(), nil)
}

// appendInline adds n to content, joining it with a preceding text node that
// carries the same marks.
func (p *parser) appendInline(content []*model.Node, n *model.Node) []*model.Node {
	if len(content) > 0 && n.IsText() {
		last := content[len(content)-1]
		if last.IsText() && model.SameMarkSet(last.Marks, n.Marks) {
			content[len(content)-1] = p.text(*last.Text+*n.Text, last.Marks)
			return content
		}
	}
	return append(content, n)
}

// plainText collects the text below node, ignoring markup.
func (p *parser) plainText(node ast.Node) string {
	var b strings.Builder
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch typed := n.(type) {
		case *ast.Text:
			b.Write(typed.Segment.Value(p.source))
			if typed.SoftLineBreak() || typed.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(typed.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// lines returns the raw source lines of a block such as a code block.
func (p *parser) lines(node ast.Node) string {
	var b strings.Builder
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(p.source))
	}
	return b.String()
}

func (p *parser) text(value string, marks []*model.Mark) *model.Node {
	return p.schema.Text(value, marks)
}

func (p *parser) mark(name string, attrs map[string]interface{}) *model.Mark {
	return p.schema.Mark(name, attrs)
}

func (p *parser) one(name string, attrs map[string]interface{}, content []*model.Node) ([]*model.Node, error) {
	n, err := p.node(name, attrs, content)
	if err != nil {
		return nil, err
	}
	return []*model.Node{n}, nil
}

func (p *parser) node(name string, attrs map[string]interface{}, content []*model.Node) (*model.Node, error) {
	n, err := p.schema.Node(name, attrs, content)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", name, err)
	}
	return n, nil
}

func blank(nodes []*model.Node) bool {
	for _, n := range nodes {
		if n.IsText() {
			if strings.TrimSpace(*n.Text) != "" {
				return false
			}
			continue
		}
		if n.Type.Name != resizable.HardBreak {
			return false
		}
	}
	return true
}
