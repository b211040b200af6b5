package dom_test

import (
	"testing"

	"github.com/shodgson/prosemirror-widgets/dom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassAndStyleHelpers(t *testing.T) {
	div := dom.Element("div", "class", "a b")
	assert.True(t, dom.HasClass(div, "a"))

	dom.AddClass(div, "c")
	dom.AddClass(div, "c")
	v, _ := dom.Attr(div, "class")
	assert.Equal(t, "a b c", v)

	dom.RemoveClass(div, "a")
	dom.ToggleClass(div, "b", false)
	v, _ = dom.Attr(div, "class")
	assert.Equal(t, "c", v)
	dom.RemoveClass(div, "c")
	_, ok := dom.Attr(div, "class")
	assert.False(t, ok)

	dom.SetStyle(div, "top", "4px")
	dom.SetStyle(div, "left", "2px")
	assert.Equal(t, "4px", dom.Style(div, "top"))
	v, _ = dom.Attr(div, "style")
	assert.Equal(t, "left: 2px; top: 4px", v)
	dom.SetStyle(div, "left", "")
	dom.SetStyle(div, "top", "")
	_, ok = dom.Attr(div, "style")
	assert.False(t, ok)
}

func TestRender(t *testing.T) {
	p := dom.Element("p")
	p.AppendChild(dom.Text("hi"))
	p.AppendChild(dom.Element("img", "src", "a.png"))
	assert.Equal(t, `<p>hi<img src="a.png"/></p>`, dom.Render(p))
}

func TestDispatchBubblesToDocument(t *testing.T) {
	doc := dom.NewDocument()
	outer := dom.Element("div")
	inner := dom.Element("span")
	outer.AppendChild(inner)
	doc.Root.AppendChild(outer)

	var order []string
	doc.AddEventListener(inner, dom.Click, func(*dom.Event) { order = append(order, "inner") })
	doc.AddEventListener(outer, dom.Click, func(*dom.Event) { order = append(order, "outer") })
	doc.AddEventListener(nil, dom.Click, func(*dom.Event) { order = append(order, "document") })

	doc.Dispatch(&dom.Event{Type: dom.Click, Target: inner})
	assert.Equal(t, []string{"inner", "outer", "document"}, order)
}

func TestDispatchDetachedTargetStillReachesDocument(t *testing.T) {
	doc := dom.NewDocument()
	orphan := dom.Element("div")
	hits := 0
	doc.AddEventListener(nil, dom.PointerMove, func(*dom.Event) { hits++ })
	doc.Dispatch(&dom.Event{Type: dom.PointerMove, Target: orphan})
	assert.Equal(t, 1, hits)
}

func TestStopPropagation(t *testing.T) {
	doc := dom.NewDocument()
	el := dom.Element("div")
	doc.Root.AppendChild(el)
	reached := false
	doc.AddEventListener(el, dom.KeyDown, func(e *dom.Event) {
		e.PreventDefault()
		e.StopPropagation()
	})
	doc.AddEventListener(nil, dom.KeyDown, func(*dom.Event) { reached = true })

	ev := &dom.Event{Type: dom.KeyDown, Target: el, Key: "Enter"}
	doc.Dispatch(ev)
	assert.False(t, reached)
	assert.True(t, ev.DefaultPrevented())
	assert.True(t, ev.PropagationStopped())
}

func TestRemoveListenerDuringDispatch(t *testing.T) {
	doc := dom.NewDocument()
	var removeSecond func()
	second := 0
	doc.AddEventListener(nil, dom.PointerUp, func(*dom.Event) { removeSecond() })
	removeSecond = doc.AddEventListener(nil, dom.PointerUp, func(*dom.Event) { second++ })
	require.Equal(t, 2, doc.ListenerCount())

	doc.Dispatch(&dom.Event{Type: dom.PointerUp})
	assert.Equal(t, 0, second)
	assert.Equal(t, 1, doc.DocumentListenerCount())
	removeSecond()
	assert.Equal(t, 1, doc.ListenerCount())
}

func TestFindAndContains(t *testing.T) {
	root := dom.Element("div")
	a := dom.Element("span", "class", "handle")
	b := dom.Element("span", "class", "handle other")
	root.AppendChild(a)
	root.AppendChild(b)
	assert.Equal(t, 2, len(dom.FindByClass(root, "handle")))
	assert.True(t, dom.Contains(root, b))
	assert.False(t, dom.Contains(a, b))
	dom.Detach(b)
	assert.False(t, dom.Contains(root, b))
}
