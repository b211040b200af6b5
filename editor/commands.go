package editor

import (
	"fmt"

	"github.com/cozy/prosemirror-go/model"
)

// Chain builds one transaction out of several commands and dispatches it on
// Run, mirroring the editor.chain().focus()...run() style of the UI layer.
type Chain struct {
	ed    *Editor
	tr    *Transaction
	focus bool
}

// Chain starts a command chain on the current state.
func (ed *Editor) Chain() *Chain {
	return &Chain{ed: ed, tr: ed.Tr()}
}

// Transaction exposes the chain's transaction for custom steps.
func (c *Chain) Transaction() *Transaction { return c.tr }

// Run dispatches the accumulated transaction. A chain whose commands all
// turned out to be no-ops still dispatches, so selection changes land.
func (c *Chain) Run() error {
	if c.tr.err != nil {
		return c.tr.err
	}
	if c.focus {
		c.ed.Focus()
	}
	return c.ed.Dispatch(c.tr)
}

// Focus focuses the editor when the chain runs.
func (c *Chain) Focus() *Chain {
	c.focus = true
	return c
}

// DeleteRange deletes from..to.
func (c *Chain) DeleteRange(from, to int) *Chain {
	c.tr.Delete(from, to)
	return c
}

// DeleteSelection deletes the selected content.
func (c *Chain) DeleteSelection() *Chain {
	sel := c.tr.Selection()
	c.tr.Delete(sel.From, sel.To)
	return c
}

// SetTextSelection places a caret at pos.
func (c *Chain) SetTextSelection(pos int) *Chain {
	c.tr.SetSelection(pos, pos)
	return c
}

// SetNodeSelection selects the node starting at pos.
func (c *Chain) SetNodeSelection(pos int) *Chain {
	doc := c.tr.Doc()
	if pos < 0 || pos >= doc.Content.Size {
		c.tr.fail(fmt.Errorf("%w: node selection at %d", ErrPosition, pos))
		return c
	}
	node := doc.NodeAt(pos)
	if node == nil {
		c.tr.fail(fmt.Errorf("%w: node selection at %d", ErrNoNode, pos))
		return c
	}
	c.tr.SetSelection(pos, pos+node.NodeSize())
	return c
}

// InsertContent inserts text at the selection, replacing it.
func (c *Chain) InsertContent(text string) *Chain {
	sel := c.tr.Selection()
	c.tr.Delete(sel.From, sel.To)
	at := c.tr.Selection().From
	c.tr.InsertText(at, text)
	c.tr.SetSelection(at+len(text), at+len(text))
	return c
}

// InsertContentOfType inserts a node of the named type. Block nodes replace
// an empty textblock around the caret or go after the current block.
func (c *Chain) InsertContentOfType(typeName string, attrs map[string]interface{}) *Chain {
	node, err := c.tr.schema.Node(typeName, attrs)
	if err != nil {
		c.tr.fail(fmt.Errorf("create %s: %w", typeName, err))
		return c
	}
	if node.IsInline() {
		sel := c.tr.Selection()
		c.tr.ReplaceWith(sel.From, sel.To, node)
		return c
	}
	return c.insertBlock(node)
}

// InsertHorizontalRule inserts a divider after the current block.
func (c *Chain) InsertHorizontalRule() *Chain {
	return c.InsertContentOfType("horizontal_rule", nil)
}

func (c *Chain) insertBlock(node *model.Node) *Chain {
	tr := c.tr
	if tr.err != nil {
		return c
	}
	rp, err := tr.doc.Resolve(tr.Selection().From)
	if err != nil {
		tr.fail(fmt.Errorf("%w: %v", ErrPosition, err))
		return c
	}
	if !isTextblock(rp.Parent()) || rp.Depth == 0 {
		at := tr.Selection().From
		tr.Insert(at, node)
		return c
	}
	before, err := rp.Before()
	if err != nil {
		tr.fail(err)
		return c
	}
	after, err := rp.After()
	if err != nil {
		tr.fail(err)
		return c
	}
	if rp.Parent().Content.Size == 0 {
		para, err := tr.schema.Node("paragraph", nil)
		if err != nil {
			tr.fail(err)
			return c
		}
		tr.ReplaceWith(before, after, node, para)
		caret := before + node.NodeSize() + 1
		tr.SetSelection(caret, caret)
		return c
	}
	tr.Insert(after, node)
	return c
}

// SetBlockType turns the textblock around the caret into typeName, keeping
// its inline content.
func (c *Chain) SetBlockType(typeName string, attrs map[string]interface{}) *Chain {
	tr := c.tr
	if tr.err != nil {
		return c
	}
	rp, before, after, ok := c.textblockRange()
	if !ok {
		return c
	}
	parent := rp.Parent()
	content := inlineContent(parent, typeName == "code_block")
	var node *model.Node
	var err error
	if len(content) == 0 {
		node, err = tr.schema.Node(typeName, attrs)
	} else {
		node, err = tr.schema.Node(typeName, attrs, content)
	}
	if err != nil {
		tr.fail(fmt.Errorf("create %s: %w", typeName, err))
		return c
	}
	offset := rp.ParentOffset
	tr.ReplaceWith(before, after, node)
	caret := before + 1 + offset
	tr.SetSelection(caret, caret)
	return c
}

// WrapIn wraps the textblock around the caret in a blockquote or list, or
// unwraps it when it already is the only child of such a wrapper.
func (c *Chain) WrapIn(typeName string) *Chain {
	tr := c.tr
	if tr.err != nil {
		return c
	}
	rp, before, after, ok := c.textblockRange()
	if !ok {
		return c
	}
	if c.unwrap(rp, typeName) {
		return c
	}
	parent := rp.Parent()
	inner := parent
	depth := 1
	if typeName == "bullet_list" || typeName == "ordered_list" {
		if parent.Type.Name != "paragraph" {
			content := inlineContent(parent, false)
			var err error
			if len(content) == 0 {
				inner, err = tr.schema.Node("paragraph", nil)
			} else {
				inner, err = tr.schema.Node("paragraph", nil, content)
			}
			if err != nil {
				tr.fail(err)
				return c
			}
		}
		item, err := tr.schema.Node("list_item", nil, []interface{}{inner})
		if err != nil {
			tr.fail(err)
			return c
		}
		inner = item
		depth = 2
	}
	wrapper, err := tr.schema.Node(typeName, nil, []interface{}{inner})
	if err != nil {
		tr.fail(fmt.Errorf("wrap in %s: %w", typeName, err))
		return c
	}
	offset := rp.ParentOffset
	tr.ReplaceWith(before, after, wrapper)
	caret := before + depth + 1 + offset
	tr.SetSelection(caret, caret)
	return c
}

func (c *Chain) unwrap(rp *model.ResolvedPos, typeName string) bool {
	tr := c.tr
	wrapperDepth := rp.Depth - 1
	if typeName == "bullet_list" || typeName == "ordered_list" {
		wrapperDepth = rp.Depth - 2
	}
	if wrapperDepth < 1 {
		return false
	}
	wrapper := rp.Node(wrapperDepth)
	if wrapper.Type.Name != typeName || wrapper.ChildCount() != 1 {
		return false
	}
	if wrapperDepth == rp.Depth-2 && rp.Node(rp.Depth-1).ChildCount() != 1 {
		return false
	}
	before, err := rp.Before(wrapperDepth)
	if err != nil {
		return false
	}
	after, err := rp.After(wrapperDepth)
	if err != nil {
		return false
	}
	offset := rp.ParentOffset
	tr.ReplaceWith(before, after, rp.Parent())
	caret := before + 1 + offset
	tr.SetSelection(caret, caret)
	return true
}

// ToggleMark adds the named mark over the selection, or removes it when the
// whole selection already carries it. Carets are left alone.
func (c *Chain) ToggleMark(name string) *Chain {
	tr := c.tr
	if tr.err != nil {
		return c
	}
	sel := tr.Selection()
	if sel.Empty() {
		return c
	}
	mark := tr.schema.Mark(name)
	if rangeHasMark(tr.doc, sel.From, sel.To, mark.Type) {
		tr.RemoveMark(sel.From, sel.To, mark)
	} else {
		tr.AddMark(sel.From, sel.To, mark)
	}
	tr.SetSelection(sel.From, sel.To)
	return c
}

// UpdateAttributes merges attrs into every node of typeName touched by the
// selection, including the selection's ancestors.
func (c *Chain) UpdateAttributes(typeName string, attrs map[string]interface{}) *Chain {
	tr := c.tr
	if tr.err != nil {
		return c
	}
	sel := tr.Selection()
	var targets []int
	seen := map[int]bool{}
	if rp, err := tr.doc.Resolve(sel.From); err == nil {
		for d := rp.Depth; d > 0; d-- {
			if rp.Node(d).Type.Name == typeName {
				if before, err := rp.Before(d); err == nil && !seen[before] {
					seen[before] = true
					targets = append(targets, before)
				}
			}
		}
	}
	if sel.From < sel.To {
		tr.doc.NodesBetween(sel.From, sel.To, func(n *model.Node, pos int, _ *model.Node, _ int) bool {
			if n.Type.Name == typeName && !seen[pos] {
				seen[pos] = true
				targets = append(targets, pos)
			}
			return true
		})
	}
	if len(targets) == 0 {
		tr.fail(fmt.Errorf("%w: %s in selection", ErrNoNode, typeName))
		return c
	}
	for _, pos := range targets {
		tr.SetNodeAttrs(pos, attrs)
	}
	return c
}

func (c *Chain) textblockRange() (*model.ResolvedPos, int, int, bool) {
	tr := c.tr
	rp, err := tr.doc.Resolve(tr.Selection().From)
	if err != nil {
		tr.fail(fmt.Errorf("%w: %v", ErrPosition, err))
		return nil, 0, 0, false
	}
	if rp.Depth == 0 || !isTextblock(rp.Parent()) {
		tr.fail(fmt.Errorf("%w: caret is not in a textblock", ErrNoNode))
		return nil, 0, 0, false
	}
	before, err := rp.Before()
	if err != nil {
		tr.fail(err)
		return nil, 0, 0, false
	}
	after, err := rp.After()
	if err != nil {
		tr.fail(err)
		return nil, 0, 0, false
	}
	return rp, before, after, true
}

// inlineContent returns the children of a textblock as builder content.
// plain drops marks and non-text leaves, for blocks like code that allow
// only text.
func inlineContent(n *model.Node, plain bool) []interface{} {
	var out []interface{}
	n.Content.ForEach(func(child *model.Node, _ int, _ int) {
		if plain {
			if !child.IsText() {
				return
			}
			child = child.Mark([]*model.Mark{})
		}
		out = append(out, child)
	})
	return out
}

func rangeHasMark(doc *model.Node, from, to int, typ *model.MarkType) bool {
	found, missing := false, false
	doc.NodesBetween(from, to, func(n *model.Node, _ int, _ *model.Node, _ int) bool {
		if !n.IsText() {
			return true
		}
		has := false
		for _, m := range n.Marks {
			if m.Type == typ {
				has = true
			}
		}
		if has {
			found = true
		} else {
			missing = true
		}
		return true
	})
	return found && !missing
}
