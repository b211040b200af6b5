// Package editor is the host the widgets plug into: a single-document editor
// over the prosemirror-go model with transactions, a chainable command API,
// a synchronous event bus, key-handling plugins and node views.
//
// An Editor is confined to one goroutine. Every entrypoint (Dispatch,
// HandleKeyDown, DispatchDOM, Focus, Blur, Tick) drains the scheduler's
// microtasks before returning.
package editor

import (
	"errors"
	"time"

	"github.com/cozy/prosemirror-go/model"
	"github.com/shodgson/prosemirror-widgets/dom"
	"github.com/shodgson/prosemirror-widgets/loop"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

var (
	// ErrPosition is returned for document positions outside the document or
	// not addressable in the requested way.
	ErrPosition = errors.New("invalid document position")
	// ErrNoNode is returned when no node of the expected type is found.
	ErrNoNode = errors.New("no matching node")
	// ErrStep wraps a step the engine refused to apply.
	ErrStep = errors.New("step failed")
	// ErrDestroyed is returned by operations on a destroyed editor.
	ErrDestroyed = errors.New("editor destroyed")
	// ErrPluginExists is returned when registering a plugin key twice.
	ErrPluginExists = errors.New("plugin already registered")
)

// Event names an editor event.
type Event string

const (
	EventTransaction     Event = "transaction"
	EventSelectionUpdate Event = "selectionUpdate"
	EventFocus           Event = "focus"
	EventBlur            Event = "blur"
	EventDestroy         Event = "destroy"
)

// Handler receives editor events. tr is nil for focus, blur and destroy.
type Handler func(ed *Editor, tr *Transaction)

type subscription struct {
	fn      Handler
	removed bool
}

// Selection is a text selection between two document positions.
type Selection struct {
	From int
	To   int
}

// Empty reports whether the selection is a caret.
func (s Selection) Empty() bool {
	return s.From == s.To
}

// Option configures an Editor.
type Option func(*Editor)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(ed *Editor) { ed.log = l }
}

// WithScheduler sets the scheduler, typically one built on a manual clock in
// tests.
func WithScheduler(s *loop.Scheduler) Option {
	return func(ed *Editor) { ed.sched = s }
}

// WithLayout sets how document positions map to screen coordinates.
func WithLayout(l Layout) Option {
	return func(ed *Editor) { ed.layout = l }
}

// WithDocument sets the DOM document the editor mounts into.
func WithDocument(d *dom.Document) Option {
	return func(ed *Editor) { ed.document = d }
}

// WithSelection sets the initial selection.
func WithSelection(sel Selection) Option {
	return func(ed *Editor) {
		ed.sel = sel
		ed.selSet = true
	}
}

// Editor holds one document and everything attached to it.
type Editor struct {
	schema   *model.Schema
	doc      *model.Node
	sel      Selection
	selSet   bool
	focused  bool
	dead     bool
	log      *zap.Logger
	sched    *loop.Scheduler
	layout   Layout
	document *dom.Document
	root     *html.Node

	handlers  map[Event][]*subscription
	plugins   []Plugin
	factories map[string]NodeViewFactory
	views     []*mountedView
}

// New creates an editor for doc.
func New(schema *model.Schema, doc *model.Node, opts ...Option) *Editor {
	ed := &Editor{
		schema:    schema,
		doc:       doc,
		handlers:  map[Event][]*subscription{},
		factories: map[string]NodeViewFactory{},
	}
	for _, opt := range opts {
		opt(ed)
	}
	if ed.log == nil {
		ed.log = zap.NewNop()
	}
	if ed.sched == nil {
		ed.sched = loop.New(nil)
	}
	if ed.layout == nil {
		ed.layout = LineLayout{CellWidth: 1, LineHeight: 1}
	}
	if ed.document == nil {
		ed.document = dom.NewDocument()
	}
	if ed.selSet {
		ed.sel = ed.clampSelection(ed.sel)
	} else {
		pos := firstTextPos(doc)
		ed.sel = Selection{From: pos, To: pos}
	}
	return ed
}

// Schema returns the document schema.
func (ed *Editor) Schema() *model.Schema { return ed.schema }

// Doc returns the current document.
func (ed *Editor) Doc() *model.Node { return ed.doc }

// Selection returns the current selection.
func (ed *Editor) Selection() Selection { return ed.sel }

// Logger returns the editor's logger.
func (ed *Editor) Logger() *zap.Logger { return ed.log }

// Scheduler returns the editor's scheduler.
func (ed *Editor) Scheduler() *loop.Scheduler { return ed.sched }

// Document returns the DOM document the editor is mounted in.
func (ed *Editor) Document() *dom.Document { return ed.document }

// IsFocused reports whether the editor has focus.
func (ed *Editor) IsFocused() bool { return ed.focused }

// IsDestroyed reports whether Destroy was called.
func (ed *Editor) IsDestroyed() bool { return ed.dead }

// On subscribes fn to ev and returns the unsubscribe func.
func (ed *Editor) On(ev Event, fn Handler) (off func()) {
	s := &subscription{fn: fn}
	ed.handlers[ev] = append(ed.handlers[ev], s)
	return func() {
		if s.removed {
			return
		}
		s.removed = true
		list := ed.handlers[ev]
		for i, x := range list {
			if x == s {
				ed.handlers[ev] = append(list[:i:i], list[i+1:]...)
				break
			}
		}
	}
}

// HandlerCount returns the number of live subscriptions for ev.
func (ed *Editor) HandlerCount(ev Event) int {
	return len(ed.handlers[ev])
}

func (ed *Editor) emit(ev Event, tr *Transaction) {
	list := append([]*subscription(nil), ed.handlers[ev]...)
	for _, s := range list {
		if !s.removed {
			s.fn(ed, tr)
		}
	}
}

func (ed *Editor) settle() {
	ed.sched.RunMicrotasks()
}

// Dispatch applies tr to the editor. A transaction carrying a failed step
// changes nothing and returns that step's error.
func (ed *Editor) Dispatch(tr *Transaction) error {
	if ed.dead {
		return ErrDestroyed
	}
	if tr.err != nil {
		ed.log.Debug("transaction rejected", zap.Error(tr.err))
		return tr.err
	}
	prev := ed.sel
	ed.doc = tr.doc
	ed.sel = ed.clampSelection(tr.sel)
	ed.syncViews(tr)
	ed.log.Debug("transaction dispatched",
		zap.Int("steps", len(tr.steps)),
		zap.Int("from", ed.sel.From),
		zap.Int("to", ed.sel.To))
	ed.emit(EventTransaction, tr)
	if prev != ed.sel {
		ed.emit(EventSelectionUpdate, tr)
	}
	ed.settle()
	return nil
}

// Focus gives the editor focus.
func (ed *Editor) Focus() {
	if ed.dead || ed.focused {
		return
	}
	ed.focused = true
	ed.emit(EventFocus, nil)
	ed.settle()
}

// Blur removes focus from the editor.
func (ed *Editor) Blur() {
	if ed.dead || !ed.focused {
		return
	}
	ed.focused = false
	ed.emit(EventBlur, nil)
	ed.settle()
}

// Tick fires the timers due at now. Hosts call it from their own loop.
func (ed *Editor) Tick(now time.Time) int {
	if ed.dead {
		return 0
	}
	return ed.sched.RunDue(now)
}

// DispatchDOM delivers a DOM event through the editor's document.
func (ed *Editor) DispatchDOM(ev *dom.Event) {
	if ed.dead {
		return
	}
	ed.document.Dispatch(ev)
	ed.settle()
}

// Destroy tears down node views and plugins, emits EventDestroy and drops
// every subscription. The editor is unusable afterwards.
func (ed *Editor) Destroy() {
	if ed.dead {
		return
	}
	for _, mv := range ed.views {
		mv.destroy()
	}
	ed.views = nil
	for i := len(ed.plugins) - 1; i >= 0; i-- {
		ed.plugins[i].Destroy()
	}
	ed.plugins = nil
	ed.emit(EventDestroy, nil)
	ed.dead = true
	ed.handlers = map[Event][]*subscription{}
	dom.Detach(ed.root)
	ed.sched.Stop()
}

// Resolve resolves pos in the current document.
func (ed *Editor) Resolve(pos int) (*model.ResolvedPos, error) {
	if pos < 0 || pos > ed.doc.Content.Size {
		return nil, ErrPosition
	}
	return ed.doc.Resolve(pos)
}

// TextBetween returns the text between from and to, with a newline for each
// block boundary and leaf node.
func (ed *Editor) TextBetween(from, to int) string {
	return ed.doc.TextBetween(from, to, "\n", "\n")
}

// NodeAt returns the node starting at pos, or nil.
func (ed *Editor) NodeAt(pos int) *model.Node {
	if pos < 0 || pos >= ed.doc.Content.Size {
		return nil
	}
	return ed.doc.NodeAt(pos)
}

func (ed *Editor) clampSelection(sel Selection) Selection {
	size := ed.doc.Content.Size
	clamp := func(p int) int {
		if p < 0 {
			return 0
		}
		if p > size {
			return size
		}
		return p
	}
	sel.From, sel.To = clamp(sel.From), clamp(sel.To)
	if sel.From > sel.To {
		sel.From, sel.To = sel.To, sel.From
	}
	return sel
}

func firstTextPos(doc *model.Node) int {
	found := -1
	doc.NodesBetween(0, doc.Content.Size, func(n *model.Node, pos int, _ *model.Node, _ int) bool {
		if found >= 0 {
			return false
		}
		if isTextblock(n) {
			found = pos + 1
			return false
		}
		return true
	})
	if found < 0 {
		return 0
	}
	return found
}
