package imageview

import (
	"strconv"

	"github.com/cozy/prosemirror-go/model"
	"github.com/google/uuid"
	"github.com/shodgson/prosemirror-widgets/dom"
	"github.com/shodgson/prosemirror-widgets/editor"
	"github.com/shodgson/prosemirror-widgets/schema/resizable"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// View is the node view of one image node.
type View struct {
	id     string
	c      *Coordinator
	getPos editor.GetPos
	node   *model.Node
	attrs  resizable.ImageAttrs

	container *html.Node
	img       *html.Node
	overlay   *html.Node
	handles   map[Direction]*html.Node

	ratio  float64
	loaded bool
	failed bool

	session   *Session
	moved     bool
	listeners []func()
	drag      []func()
}

func newView(c *Coordinator, node *model.Node, getPos editor.GetPos) *View {
	v := &View{
		id:      uuid.NewString(),
		c:       c,
		getPos:  getPos,
		node:    node,
		attrs:   resizable.ImageAttrsOf(node),
		handles: map[Direction]*html.Node{},
		ratio:   1,
	}
	v.container = dom.Element("div", "class", "image-resizer", "data-id", v.id)
	v.img = dom.Element("img")
	v.overlay = dom.Element("div", "class", "resize-overlay")
	dom.SetStyle(v.overlay, "display", "none")
	v.container.AppendChild(v.img)
	v.container.AppendChild(v.overlay)
	for _, d := range Directions {
		h := dom.Element("div", "class", "resize-handle resize-handle-"+string(d), "data-direction", string(d))
		v.overlay.AppendChild(h)
		v.handles[d] = h
		d := d
		v.listen(h, dom.PointerDown, func(ev *dom.Event) { v.onPointerDown(d, ev) })
	}
	v.listen(v.img, dom.Load, v.onLoad)
	v.listen(v.img, dom.LoadError, v.onLoadError)
	v.applyAttrs()
	if size, ok := c.loader.Cached(v.attrs.Src); ok {
		setNatural(v.img, size)
		v.ratio = size.Ratio()
		v.loaded = true
	}
	c.add(v)
	return v
}

func (v *View) listen(target *html.Node, typ dom.EventType, fn dom.Listener) {
	v.listeners = append(v.listeners, v.c.ed.Document().AddEventListener(target, typ, fn))
}

// ID identifies the view in Status.Active.
func (v *View) ID() string { return v.id }

// Dom implements editor.NodeView.
func (v *View) Dom() *html.Node { return v.container }

// Image returns the img element.
func (v *View) Image() *html.Node { return v.img }

// Handle returns the handle element for d.
func (v *View) Handle(d Direction) *html.Node { return v.handles[d] }

// Selected reports whether the view shows its handles.
func (v *View) Selected() bool { return dom.Style(v.overlay, "display") != "none" }

// AspectRatio returns the natural aspect ratio, 1 until the image loaded.
func (v *View) AspectRatio() float64 { return v.ratio }

// Update implements editor.NodeView.
func (v *View) Update(node *model.Node) bool {
	if node.Type.Name != resizable.Image {
		return false
	}
	prev := v.attrs.Src
	v.node = node
	v.attrs = resizable.ImageAttrsOf(node)
	if v.attrs.Src != prev {
		v.ratio, v.loaded, v.failed = 1, false, false
		dom.RemoveAttr(v.img, naturalWidthAttr)
		dom.RemoveAttr(v.img, naturalHeightAttr)
		if size, ok := v.c.loader.Cached(v.attrs.Src); ok {
			setNatural(v.img, size)
			v.ratio = size.Ratio()
			v.loaded = true
		}
	}
	if v.session == nil {
		v.applyAttrs()
	}
	return true
}

// Destroy implements editor.NodeView.
func (v *View) Destroy() {
	v.endDrag()
	for _, remove := range v.listeners {
		remove()
	}
	v.listeners = nil
	v.c.remove(v)
	dom.Detach(v.container)
}

func (v *View) applyAttrs() {
	dom.SetAttr(v.img, "src", v.attrs.Src)
	setOptional(v.img, "alt", v.attrs.Alt)
	setOptional(v.img, "title", v.attrs.Title)
	setOptionalInt(v.img, "width", v.attrs.Width)
	setOptionalInt(v.img, "height", v.attrs.Height)
}

func (v *View) setSelected(on bool) {
	dom.ToggleClass(v.container, "selected", on)
	if on {
		dom.SetStyle(v.overlay, "display", "")
	} else {
		dom.SetStyle(v.overlay, "display", "none")
	}
}

func (v *View) onLoad(*dom.Event) {
	size, ok := natural(v.img)
	if !ok {
		return
	}
	v.ratio = size.Ratio()
	v.loaded = true
}

func (v *View) onLoadError(*dom.Event) {
	v.ratio = 1
	v.failed = true
}

// renderedSize is the current size of the img element, falling back to
// the natural size per dimension.
func (v *View) renderedSize() Size {
	nat, _ := natural(v.img)
	s := nat
	if w, ok := floatAttr(v.img, "width"); ok {
		s.Width = w
	}
	if h, ok := floatAttr(v.img, "height"); ok {
		s.Height = h
	}
	return s
}

func (v *View) onPointerDown(d Direction, ev *dom.Event) {
	ev.PreventDefault()
	ev.StopPropagation()
	v.endDrag()

	start := v.renderedSize()
	v.session = &Session{
		Direction:   d,
		StartX:      ev.ClientX,
		StartY:      ev.ClientY,
		StartWidth:  start.Width,
		StartHeight: start.Height,
		AspectRatio: v.ratio,
	}
	v.moved = false
	v.c.setResizing(true)
	doc := v.c.ed.Document()
	v.drag = append(v.drag,
		doc.AddEventListener(nil, dom.PointerMove, v.onPointerMove),
		doc.AddEventListener(nil, dom.PointerUp, v.onPointerUp),
	)
}

func (v *View) onPointerMove(ev *dom.Event) {
	if v.session == nil {
		return
	}
	size := v.session.Resize(ev.ClientX, ev.ClientY, v.c.bounds)
	dom.SetAttr(v.img, "width", strconv.FormatFloat(size.Width, 'f', -1, 64))
	dom.SetAttr(v.img, "height", strconv.FormatFloat(size.Height, 'f', -1, 64))
	v.moved = true
}

func (v *View) onPointerUp(*dom.Event) {
	if v.session == nil {
		return
	}
	moved := v.moved
	v.endDrag()
	if !moved {
		return
	}
	w, okW := floatAttr(v.img, "width")
	h, okH := floatAttr(v.img, "height")
	if !okW || !okH {
		return
	}
	pos, ok := v.getPos()
	if !ok {
		v.c.log.Debug("image no longer in document, resize dropped", zap.String("id", v.id))
		return
	}
	width, height := Size{Width: w, Height: h}.Round()
	err := v.c.ed.Chain().
		SetNodeSelection(pos).
		UpdateAttributes(resizable.Image, map[string]interface{}{"width": width, "height": height}).
		Run()
	if err != nil {
		v.c.log.Warn("image resize rejected", zap.Int("pos", pos), zap.Error(err))
	}
}

func (v *View) endDrag() {
	for _, remove := range v.drag {
		remove()
	}
	v.drag = nil
	if v.session != nil {
		v.session = nil
		v.c.setResizing(false)
	}
	v.moved = false
}

func setOptional(n *html.Node, key string, val *string) {
	if val == nil {
		dom.RemoveAttr(n, key)
		return
	}
	dom.SetAttr(n, key, *val)
}

func setOptionalInt(n *html.Node, key string, val *int) {
	if val == nil {
		dom.RemoveAttr(n, key)
		return
	}
	dom.SetAttr(n, key, strconv.Itoa(*val))
}
