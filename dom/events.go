package dom

import "golang.org/x/net/html"

// EventType names a DOM event.
type EventType string

const (
	Click       EventType = "click"
	PointerDown EventType = "pointerdown"
	PointerMove EventType = "pointermove"
	PointerUp   EventType = "pointerup"
	KeyDown     EventType = "keydown"
	Load        EventType = "load"
	LoadError   EventType = "error"
)

// Event is a dispatched DOM event.
type Event struct {
	Type    EventType
	Target  *html.Node
	ClientX float64
	ClientY float64
	Key     string

	defaultPrevented bool
	stopped          bool
}

// PreventDefault marks the event as handled.
func (e *Event) PreventDefault() { e.defaultPrevented = true }

// StopPropagation stops the event from reaching further listeners up the
// tree.
func (e *Event) StopPropagation() { e.stopped = true }

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// PropagationStopped reports whether StopPropagation was called.
func (e *Event) PropagationStopped() bool { return e.stopped }

// Listener handles an event.
type Listener func(*Event)

type entry struct {
	fn      Listener
	removed bool
}

// Document owns a tree root and the event listeners registered on it.
// A nil target in AddEventListener means the document itself, which sees
// every event after it has bubbled through the tree.
type Document struct {
	Root      *html.Node
	listeners map[*html.Node]map[EventType][]*entry
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{
		Root:      &html.Node{Type: html.DocumentNode},
		listeners: map[*html.Node]map[EventType][]*entry{},
	}
}

// AddEventListener registers fn for typ on target and returns the func that
// removes it.
func (d *Document) AddEventListener(target *html.Node, typ EventType, fn Listener) (remove func()) {
	if target == nil {
		target = d.Root
	}
	byType, ok := d.listeners[target]
	if !ok {
		byType = map[EventType][]*entry{}
		d.listeners[target] = byType
	}
	e := &entry{fn: fn}
	byType[typ] = append(byType[typ], e)
	return func() {
		if e.removed {
			return
		}
		e.removed = true
		list := d.listeners[target][typ]
		for i, x := range list {
			if x == e {
				d.listeners[target][typ] = append(list[:i:i], list[i+1:]...)
				break
			}
		}
		if len(d.listeners[target][typ]) == 0 {
			delete(d.listeners[target], typ)
		}
		if len(d.listeners[target]) == 0 {
			delete(d.listeners, target)
		}
	}
}

// Dispatch delivers ev to the listeners of its target, then bubbles it up
// the parent chain and finally to document listeners.
func (d *Document) Dispatch(ev *Event) {
	visited := map[*html.Node]bool{}
	for n := ev.Target; n != nil && !ev.stopped; n = n.Parent {
		visited[n] = true
		d.fire(n, ev)
	}
	if !ev.stopped && !visited[d.Root] {
		d.fire(d.Root, ev)
	}
}

func (d *Document) fire(n *html.Node, ev *Event) {
	list := append([]*entry(nil), d.listeners[n][ev.Type]...)
	for _, e := range list {
		if e.removed {
			continue
		}
		e.fn(ev)
	}
}

// ListenerCount returns the number of live listeners, for leak checks.
func (d *Document) ListenerCount() int {
	n := 0
	for _, byType := range d.listeners {
		for _, list := range byType {
			n += len(list)
		}
	}
	return n
}

// DocumentListenerCount returns the number of live document-level listeners.
func (d *Document) DocumentListenerCount() int {
	n := 0
	for _, list := range d.listeners[d.Root] {
		n += len(list)
	}
	return n
}
