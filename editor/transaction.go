package editor

import (
	"fmt"
	"strings"

	"github.com/cozy/prosemirror-go/model"
	"github.com/cozy/prosemirror-go/transform"
	steps "github.com/shodgson/prosemirror-widgets/transform"
)

// Transaction accumulates steps against a document. The first failing step
// poisons the transaction: later calls are ignored and Dispatch returns the
// error.
type Transaction struct {
	schema *model.Schema
	before *model.Node
	doc    *model.Node
	steps  []transform.Step
	maps   []*transform.StepMap
	sel    Selection
	err    error
	meta   map[string]interface{}
}

// Tr starts a transaction on the current state.
func (ed *Editor) Tr() *Transaction {
	return &Transaction{
		schema: ed.schema,
		before: ed.doc,
		doc:    ed.doc,
		sel:    ed.sel,
		meta:   map[string]interface{}{},
	}
}

// Doc returns the document with all steps applied.
func (tr *Transaction) Doc() *model.Node { return tr.doc }

// Before returns the document the transaction started from.
func (tr *Transaction) Before() *model.Node { return tr.before }

// Selection returns the selection after the steps so far.
func (tr *Transaction) Selection() Selection { return tr.sel }

// Steps returns the applied steps.
func (tr *Transaction) Steps() []transform.Step { return tr.steps }

// DocChanged reports whether any step was applied.
func (tr *Transaction) DocChanged() bool { return len(tr.steps) > 0 }

// Err returns the error of the first failed step.
func (tr *Transaction) Err() error { return tr.err }

// SetMeta attaches a value to the transaction for event handlers.
func (tr *Transaction) SetMeta(key string, v interface{}) *Transaction {
	tr.meta[key] = v
	return tr
}

// Meta returns a value set with SetMeta.
func (tr *Transaction) Meta(key string) interface{} { return tr.meta[key] }

// Map maps a position from the starting document through every step.
// deleted reports whether the content at pos was removed.
func (tr *Transaction) Map(pos int, assoc int) (mapped int, deleted bool) {
	for _, m := range tr.maps {
		r := m.MapResult(pos, assoc)
		pos = r.Pos
		deleted = deleted || r.Deleted
	}
	return pos, deleted
}

// Step applies step to the transaction's document.
func (tr *Transaction) Step(step transform.Step) *Transaction {
	if tr.err != nil {
		return tr
	}
	res := step.Apply(tr.doc)
	if res.Failed != "" {
		tr.err = fmt.Errorf("%w: %s", ErrStep, res.Failed)
		return tr
	}
	m := step.GetMap()
	tr.doc = res.Doc
	tr.steps = append(tr.steps, step)
	tr.maps = append(tr.maps, m)
	tr.sel = Selection{From: m.Map(tr.sel.From, 1), To: m.Map(tr.sel.To, 1)}
	return tr
}

func (tr *Transaction) fail(err error) *Transaction {
	if tr.err == nil {
		tr.err = err
	}
	return tr
}

// Delete removes the content between from and to.
func (tr *Transaction) Delete(from, to int) *Transaction {
	if from < 0 || to > tr.doc.Content.Size || from > to {
		return tr.fail(fmt.Errorf("%w: delete %d..%d", ErrPosition, from, to))
	}
	if from == to {
		return tr
	}
	return tr.Step(transform.NewReplaceStep(from, to, model.EmptySlice))
}

// InsertText inserts text at pos, carrying marks.
func (tr *Transaction) InsertText(pos int, text string, marks ...*model.Mark) *Transaction {
	if text == "" {
		return tr
	}
	node := tr.schema.Text(text)
	if len(marks) > 0 {
		node = node.Mark(marks)
	}
	return tr.ReplaceWith(pos, pos, node)
}

// Insert inserts node at pos.
func (tr *Transaction) Insert(pos int, node *model.Node) *Transaction {
	return tr.ReplaceWith(pos, pos, node)
}

// ReplaceWith replaces from..to with the given nodes. Several nodes must all
// be blocks.
func (tr *Transaction) ReplaceWith(from, to int, nodes ...*model.Node) *Transaction {
	if tr.err != nil {
		return tr
	}
	if from < 0 || to > tr.doc.Content.Size || from > to {
		return tr.fail(fmt.Errorf("%w: replace %d..%d", ErrPosition, from, to))
	}
	frag, err := fragmentOf(tr.schema, nodes)
	if err != nil {
		return tr.fail(err)
	}
	return tr.Step(transform.NewReplaceStep(from, to, model.NewSlice(frag, 0, 0)))
}

// Split splits the textblock around pos into two blocks of the same type,
// except that splitting a heading at its end opens a paragraph.
func (tr *Transaction) Split(pos int) *Transaction {
	if tr.err != nil {
		return tr
	}
	rp, err := tr.doc.Resolve(pos)
	if err != nil {
		return tr.fail(fmt.Errorf("%w: %v", ErrPosition, err))
	}
	parent := rp.Parent()
	if !isTextblock(parent) {
		return tr.fail(fmt.Errorf("%w: split outside a textblock", ErrPosition))
	}
	first, err := tr.schema.Node(parent.Type.Name, parent.Attrs)
	if err != nil {
		return tr.fail(err)
	}
	second := first
	if parent.Type.Name == "heading" && rp.ParentOffset == parent.Content.Size {
		if second, err = tr.schema.Node("paragraph", nil); err != nil {
			return tr.fail(err)
		}
	}
	frag, err := fragmentOf(tr.schema, []*model.Node{first, second})
	if err != nil {
		return tr.fail(err)
	}
	tr.Step(transform.NewReplaceStep(pos, pos, model.NewSlice(frag, 1, 1)))
	return tr.SetSelection(pos+2, pos+2)
}

// SetNodeAttrs merges attrs into the attributes of the node at pos.
func (tr *Transaction) SetNodeAttrs(pos int, attrs map[string]interface{}) *Transaction {
	if tr.err != nil {
		return tr
	}
	if pos < 0 || pos >= tr.doc.Content.Size || tr.doc.NodeAt(pos) == nil {
		return tr.fail(fmt.Errorf("%w: no node at %d", ErrNoNode, pos))
	}
	return tr.Step(steps.NewSetAttrsStep(pos, attrs))
}

// AddMark adds mark to the inline content between from and to.
func (tr *Transaction) AddMark(from, to int, mark *model.Mark) *Transaction {
	return tr.Step(transform.NewAddMarkStep(from, to, mark))
}

// RemoveMark removes mark from the inline content between from and to.
func (tr *Transaction) RemoveMark(from, to int, mark *model.Mark) *Transaction {
	return tr.Step(transform.NewRemoveMarkStep(from, to, mark))
}

// SetSelection sets the selection explicitly. Later steps still map it.
func (tr *Transaction) SetSelection(from, to int) *Transaction {
	size := tr.doc.Content.Size
	if from < 0 || to > size || from > to {
		return tr.fail(fmt.Errorf("%w: selection %d..%d", ErrPosition, from, to))
	}
	tr.sel = Selection{From: from, To: to}
	return tr
}

// fragmentOf builds a fragment from nodes. More than one node goes through a
// throwaway doc node, so they must be blocks.
func fragmentOf(schema *model.Schema, nodes []*model.Node) (*model.Fragment, error) {
	switch len(nodes) {
	case 0:
		return model.EmptyFragment, nil
	case 1:
		return model.FragmentFrom(nodes[0])
	}
	content := make([]interface{}, len(nodes))
	for i, n := range nodes {
		content[i] = n
	}
	wrapper, err := schema.Node("doc", nil, content)
	if err != nil {
		return nil, err
	}
	return wrapper.Content, nil
}

func isTextblock(n *model.Node) bool {
	if n == nil || n.IsText() || !n.IsBlock() {
		return false
	}
	content := n.Type.Spec.Content
	return strings.Contains(content, "inline") || strings.HasPrefix(content, "text")
}
