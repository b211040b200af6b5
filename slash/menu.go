package slash

import (
	"fmt"
	"strconv"

	"github.com/shodgson/prosemirror-widgets/dom"
	"github.com/shodgson/prosemirror-widgets/editor"
	"golang.org/x/net/html"
)

// Menu renders the palette. The controller only pushes state into it; a
// menu never handles keys itself.
type Menu interface {
	// Show displays items with selected highlighted, anchored below at.
	Show(items []Item, selected int, at editor.Rect)
	Hide()
	// ScrollTo brings item i into view.
	ScrollTo(i int)
	Destroy()
}

// ScrollNearest returns the scroll offset that brings [top, bottom) into a
// viewport of the given height with the least movement.
func ScrollNearest(scrollTop, viewport, top, bottom float64) float64 {
	switch {
	case top < scrollTop:
		return top
	case bottom > scrollTop+viewport:
		if bottom-top > viewport {
			return top
		}
		return bottom - viewport
	}
	return scrollTop
}

// HTMLMenu is a Menu built from DOM elements: a div holding a list with one
// entry per item. Clicking an entry calls onSelect with its index.
type HTMLMenu struct {
	// ItemHeight and ViewportHeight drive scrolling.
	ItemHeight     float64
	ViewportHeight float64

	doc       *dom.Document
	el        *html.Node
	list      *html.Node
	entries   []*html.Node
	scrollTop float64
	onSelect  func(int) bool
	removers  []func()
}

// NewHTMLMenu returns a hidden menu in doc.
func NewHTMLMenu(doc *dom.Document, onSelect func(int) bool) *HTMLMenu {
	m := &HTMLMenu{
		ItemHeight:     36,
		ViewportHeight: 288,
		doc:            doc,
		onSelect:       onSelect,
	}
	m.el = dom.Element("div", "class", "slash-menu")
	dom.SetStyle(m.el, "position", "absolute")
	dom.SetStyle(m.el, "display", "none")
	m.list = dom.Element("ul", "role", "listbox")
	m.el.AppendChild(m.list)
	m.removers = append(m.removers, doc.AddEventListener(m.el, dom.Click, m.onClick))
	return m
}

// Element returns the menu's root element.
func (m *HTMLMenu) Element() *html.Node { return m.el }

// Entries returns the rendered list entries.
func (m *HTMLMenu) Entries() []*html.Node { return m.entries }

// Visible reports whether the menu is displayed.
func (m *HTMLMenu) Visible() bool {
	return m.el.Parent != nil && dom.Style(m.el, "display") != "none"
}

// ScrollTop returns the list's scroll offset.
func (m *HTMLMenu) ScrollTop() float64 { return m.scrollTop }

// Show implements Menu.
func (m *HTMLMenu) Show(items []Item, selected int, at editor.Rect) {
	for m.list.FirstChild != nil {
		m.list.RemoveChild(m.list.FirstChild)
	}
	m.entries = m.entries[:0]
	for i, it := range items {
		li := dom.Element("li", "class", "slash-item", "role", "option", "data-index", strconv.Itoa(i))
		if it.Icon != "" {
			icon := dom.Element("span", "class", "slash-icon")
			icon.AppendChild(dom.Text(it.Icon))
			li.AppendChild(icon)
		}
		title := dom.Element("span", "class", "slash-title")
		title.AppendChild(dom.Text(it.Title))
		li.AppendChild(title)
		if it.Description != "" {
			desc := dom.Element("span", "class", "slash-description")
			desc.AppendChild(dom.Text(it.Description))
			li.AppendChild(desc)
		}
		if i == selected {
			dom.AddClass(li, "selected")
			dom.SetAttr(li, "aria-selected", "true")
		}
		m.list.AppendChild(li)
		m.entries = append(m.entries, li)
	}
	dom.SetStyle(m.el, "left", fmt.Sprintf("%gpx", at.Left))
	dom.SetStyle(m.el, "top", fmt.Sprintf("%gpx", at.Bottom))
	dom.SetStyle(m.el, "display", "")
	if m.el.Parent == nil {
		m.doc.Root.AppendChild(m.el)
	}
}

// Hide implements Menu.
func (m *HTMLMenu) Hide() {
	dom.SetStyle(m.el, "display", "none")
	m.scrollTop = 0
}

// ScrollTo implements Menu.
func (m *HTMLMenu) ScrollTo(i int) {
	top := float64(i) * m.ItemHeight
	m.scrollTop = ScrollNearest(m.scrollTop, m.ViewportHeight, top, top+m.ItemHeight)
	dom.SetAttr(m.list, "data-scroll-top", strconv.FormatFloat(m.scrollTop, 'f', -1, 64))
}

// Destroy implements Menu.
func (m *HTMLMenu) Destroy() {
	for _, remove := range m.removers {
		remove()
	}
	m.removers = nil
	dom.Detach(m.el)
}

func (m *HTMLMenu) onClick(ev *dom.Event) {
	for n := ev.Target; n != nil && n != m.el; n = n.Parent {
		s, ok := dom.Attr(n, "data-index")
		if !ok {
			continue
		}
		i, err := strconv.Atoi(s)
		if err != nil {
			return
		}
		ev.PreventDefault()
		ev.StopPropagation()
		if m.onSelect != nil {
			m.onSelect(i)
		}
		return
	}
}
