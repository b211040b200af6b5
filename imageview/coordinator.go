package imageview

import (
	"context"
	"strconv"

	"github.com/cozy/prosemirror-go/model"
	"github.com/shodgson/prosemirror-widgets/dom"
	"github.com/shodgson/prosemirror-widgets/editor"
	"github.com/shodgson/prosemirror-widgets/schema/resizable"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// Status is the state shared by all image views of one editor.
type Status struct {
	// Active is the id of the view showing its handles, or "".
	Active   string
	Resizing bool
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithBounds overrides DefaultBounds.
func WithBounds(b Bounds) Option {
	return func(c *Coordinator) { c.bounds = b }
}

// WithLoader sets the loader used for natural sizes.
func WithLoader(l *Loader) Option {
	return func(c *Coordinator) { c.loader = l }
}

// WithLogger sets the logger. The editor's logger is used otherwise.
func WithLogger(l *zap.Logger) Option {
	return func(c *Coordinator) { c.log = l }
}

// Coordinator owns the image views of one editor. It holds the single
// "which overlay is shown" slot and the resizing flag, and installs the one
// document-level click listener that moves that slot between views.
type Coordinator struct {
	ed     *editor.Editor
	log    *zap.Logger
	bounds Bounds
	loader *Loader

	status  Status
	views   map[string]*View
	order   []*View
	subs    []*func(Status)
	cleanup []func()
}

// Register installs the image node view on ed and returns its coordinator.
// Everything is torn down when the editor is destroyed.
func Register(ed *editor.Editor, opts ...Option) *Coordinator {
	c := &Coordinator{
		ed:     ed,
		bounds: DefaultBounds,
		views:  map[string]*View{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = ed.Logger()
	}
	c.log = c.log.Named("imageview")
	if c.loader == nil {
		c.loader = NewLoader(c.log, 0)
	}
	c.cleanup = append(c.cleanup,
		ed.Document().AddEventListener(nil, dom.Click, c.onDocumentClick),
		ed.On(editor.EventDestroy, func(*editor.Editor, *editor.Transaction) { c.Destroy() }),
	)
	ed.RegisterNodeView(resizable.Image, func(node *model.Node, ed *editor.Editor, getPos editor.GetPos) editor.NodeView {
		return newView(c, node, getPos)
	})
	return c
}

// Bounds returns the size limits applied to drags.
func (c *Coordinator) Bounds() Bounds { return c.bounds }

// Loader returns the natural size loader.
func (c *Coordinator) Loader() *Loader { return c.loader }

// Status returns the shared state.
func (c *Coordinator) Status() Status { return c.status }

// Views returns the mounted views in creation order.
func (c *Coordinator) Views() []*View {
	out := make([]*View, len(c.order))
	copy(out, c.order)
	return out
}

// Subscribe calls fn after every change of the shared state.
func (c *Coordinator) Subscribe(fn func(Status)) (unsubscribe func()) {
	p := &fn
	c.subs = append(c.subs, p)
	return func() {
		for i, s := range c.subs {
			if s == p {
				c.subs = append(c.subs[:i], c.subs[i+1:]...)
				return
			}
		}
	}
}

func (c *Coordinator) publish() {
	subs := append([]*func(Status){}, c.subs...)
	for _, fn := range subs {
		(*fn)(c.status)
	}
}

// Show makes the view with id the only one showing its handles. An empty
// or unknown id hides them all.
func (c *Coordinator) Show(id string) {
	if _, ok := c.views[id]; !ok {
		id = ""
	}
	if c.status.Active == id {
		return
	}
	c.status.Active = id
	for _, v := range c.order {
		v.setSelected(v.id == id)
	}
	c.publish()
}

// HideAll hides every overlay.
func (c *Coordinator) HideAll() { c.Show("") }

func (c *Coordinator) setResizing(on bool) {
	if c.status.Resizing == on {
		return
	}
	c.status.Resizing = on
	if root := c.ed.Root(); root != nil {
		dom.ToggleClass(root, "resizing", on)
	}
	c.publish()
}

func (c *Coordinator) onDocumentClick(ev *dom.Event) {
	if c.status.Resizing {
		return
	}
	for _, v := range c.order {
		if dom.Contains(v.container, ev.Target) {
			c.Show(v.id)
			return
		}
	}
	c.HideAll()
}

func (c *Coordinator) add(v *View) {
	c.views[v.id] = v
	c.order = append(c.order, v)
}

func (c *Coordinator) remove(v *View) {
	delete(c.views, v.id)
	for i, o := range c.order {
		if o == v {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	if c.status.Active == v.id {
		c.status.Active = ""
		c.publish()
	}
}

// Load measures every mounted image that has no natural size yet and fires
// load or error on its img element, the way a browser would once the image
// arrives.
func (c *Coordinator) Load(ctx context.Context) {
	for _, v := range c.Views() {
		if v.loaded || v.failed {
			continue
		}
		size, err := c.loader.Load(ctx, v.attrs.Src)
		if err != nil {
			c.log.Warn("image failed to load", zap.String("src", shorten(v.attrs.Src)), zap.Error(err))
			c.ed.DispatchDOM(&dom.Event{Type: dom.LoadError, Target: v.img})
			continue
		}
		setNatural(v.img, size)
		c.ed.DispatchDOM(&dom.Event{Type: dom.Load, Target: v.img})
	}
}

// Destroy removes the document listener and the editor subscription.
func (c *Coordinator) Destroy() {
	for _, fn := range c.cleanup {
		fn()
	}
	c.cleanup = nil
	c.subs = nil
}

const (
	naturalWidthAttr  = "data-natural-width"
	naturalHeightAttr = "data-natural-height"
)

func setNatural(img *html.Node, size Size) {
	dom.SetAttr(img, naturalWidthAttr, strconv.FormatFloat(size.Width, 'f', -1, 64))
	dom.SetAttr(img, naturalHeightAttr, strconv.FormatFloat(size.Height, 'f', -1, 64))
}

func natural(img *html.Node) (Size, bool) {
	w, ok1 := floatAttr(img, naturalWidthAttr)
	h, ok2 := floatAttr(img, naturalHeightAttr)
	if !ok1 || !ok2 || w <= 0 || h <= 0 {
		return Size{}, false
	}
	return Size{Width: w, Height: h}, true
}

func floatAttr(n *html.Node, key string) (float64, bool) {
	s, ok := dom.Attr(n, key)
	if !ok || s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
