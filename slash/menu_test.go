package slash

import (
	"testing"

	"github.com/shodgson/prosemirror-widgets/dom"
	"github.com/shodgson/prosemirror-widgets/editor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScrollNearest(t *testing.T) {
	cases := []struct {
		name                          string
		scroll, viewport, top, bottom float64
		want                          float64
	}{
		{"already visible", 0, 100, 20, 40, 0},
		{"below", 0, 100, 90, 130, 30},
		{"above", 80, 100, 40, 60, 40},
		{"taller than viewport", 0, 100, 150, 300, 150},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ScrollNearest(c.scroll, c.viewport, c.top, c.bottom), c.name)
	}
}

func TestHTMLMenuRendersItems(t *testing.T) {
	doc := dom.NewDocument()
	var picked []int
	m := NewHTMLMenu(doc, func(i int) bool { picked = append(picked, i); return true })
	assert.False(t, m.Visible())

	items := []Item{
		{Title: "Text", Description: "Plain paragraph", Icon: "T"},
		{Title: "Divider"},
	}
	m.Show(items, 1, editor.Rect{Left: 12, Top: 20, Bottom: 40})
	require.True(t, m.Visible())
	assert.Equal(t, "12px", dom.Style(m.Element(), "left"))
	assert.Equal(t, "40px", dom.Style(m.Element(), "top"))

	entries := m.Entries()
	require.Len(t, entries, 2)
	assert.False(t, dom.HasClass(entries[0], "selected"))
	assert.True(t, dom.HasClass(entries[1], "selected"))
	assert.Equal(t,
		`<li class="slash-item" role="option" data-index="0"><span class="slash-icon">T</span><span class="slash-title">Text</span><span class="slash-description">Plain paragraph</span></li>`,
		dom.Render(entries[0]))

	m.Show(items[:1], 0, editor.Rect{})
	assert.Len(t, m.Entries(), 1)
	assert.Len(t, dom.FindByClass(m.Element(), "slash-item"), 1)

	doc.Dispatch(&dom.Event{Type: dom.Click, Target: m.Entries()[0]})
	assert.Equal(t, []int{0}, picked)

	m.Hide()
	assert.False(t, m.Visible())
	m.Destroy()
	assert.Nil(t, m.Element().Parent)
	assert.Zero(t, doc.ListenerCount())
}

func TestHTMLMenuScrollsToNearestEdge(t *testing.T) {
	m := NewHTMLMenu(dom.NewDocument(), nil)
	m.ScrollTo(3)
	assert.Equal(t, 0.0, m.ScrollTop())
	m.ScrollTo(9)
	assert.Equal(t, 72.0, m.ScrollTop())
	m.ScrollTo(5)
	assert.Equal(t, 72.0, m.ScrollTop())
	m.ScrollTo(1)
	assert.Equal(t, 36.0, m.ScrollTop())
}
