package editor

import (
	"github.com/cozy/prosemirror-go/model"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// GetPos returns the current position of a node view's node. ok is false
// once the node has been removed from the document.
type GetPos func() (pos int, ok bool)

// NodeView renders one node with custom DOM. Update is called with the new
// node after every transaction that touched it; returning false makes the
// editor destroy the view and build a new one.
type NodeView interface {
	Dom() *html.Node
	Update(node *model.Node) bool
	Destroy()
}

// NodeViewFactory builds the view for node.
type NodeViewFactory func(node *model.Node, ed *Editor, getPos GetPos) NodeView

type mountedView struct {
	typeName string
	pos      int
	alive    bool
	node     *model.Node
	view     NodeView
}

func (mv *mountedView) getPos() (int, bool) {
	return mv.pos, mv.alive
}

func (mv *mountedView) destroy() {
	if !mv.alive {
		return
	}
	mv.alive = false
	mv.view.Destroy()
}

// RegisterNodeView renders every node of typeName through factory from now
// on. Existing nodes get their views immediately.
func (ed *Editor) RegisterNodeView(typeName string, factory NodeViewFactory) {
	ed.factories[typeName] = factory
	ed.syncViews(nil)
}

// NodeViews returns the live views, in document order.
func (ed *Editor) NodeViews() []NodeView {
	out := make([]NodeView, 0, len(ed.views))
	for _, mv := range ed.views {
		out = append(out, mv.view)
	}
	return out
}

func (ed *Editor) viewAt(pos int) NodeView {
	for _, mv := range ed.views {
		if mv.pos == pos {
			return mv.view
		}
	}
	return nil
}

// syncViews maps existing views through tr, then reconciles them with the
// nodes of the new document.
func (ed *Editor) syncViews(tr *Transaction) {
	if len(ed.factories) == 0 {
		return
	}
	byPos := map[int]*mountedView{}
	for _, mv := range ed.views {
		if tr != nil {
			pos, deleted := tr.Map(mv.pos, 1)
			if deleted {
				mv.destroy()
				continue
			}
			mv.pos = pos
		}
		byPos[mv.pos] = mv
	}

	var next []*mountedView
	ed.doc.NodesBetween(0, ed.doc.Content.Size, func(n *model.Node, pos int, _ *model.Node, _ int) bool {
		factory, ok := ed.factories[n.Type.Name]
		if !ok {
			return true
		}
		if mv, ok := byPos[pos]; ok && mv.typeName == n.Type.Name {
			delete(byPos, pos)
			if mv.node == n || mv.view.Update(n) {
				mv.node = n
				next = append(next, mv)
				return false
			}
			mv.destroy()
		}
		mv := &mountedView{typeName: n.Type.Name, pos: pos, alive: true, node: n}
		mv.view = factory(n, ed, mv.getPos)
		ed.log.Debug("node view created", zap.String("type", n.Type.Name), zap.Int("pos", pos))
		next = append(next, mv)
		return false
	})
	for _, mv := range byPos {
		mv.destroy()
	}
	ed.views = next
}
