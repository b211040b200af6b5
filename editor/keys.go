package editor

import (
	"fmt"
	"unicode/utf8"

	"github.com/cozy/prosemirror-go/model"
	"go.uber.org/zap"
)

// KeyEvent is a key press routed through the editor. Key uses DOM key names:
// a printable character, or "Enter", "Backspace", "ArrowUp" and so on.
type KeyEvent struct {
	Key   string
	Shift bool
	Ctrl  bool
	Alt   bool
	Meta  bool

	defaultPrevented bool
	stopped          bool
}

// PreventDefault stops default input handling.
func (e *KeyEvent) PreventDefault() { e.defaultPrevented = true }

// StopPropagation stops the event from reaching outer handlers.
func (e *KeyEvent) StopPropagation() { e.stopped = true }

// DefaultPrevented reports whether PreventDefault was called.
func (e *KeyEvent) DefaultPrevented() bool { return e.defaultPrevented }

// PropagationStopped reports whether StopPropagation was called.
func (e *KeyEvent) PropagationStopped() bool { return e.stopped }

// Plugin intercepts key presses before default input handling. Returning
// true from HandleKeyDown consumes the key.
type Plugin interface {
	Key() string
	HandleKeyDown(ed *Editor, ev *KeyEvent) bool
	Destroy()
}

// Register adds p after the already registered plugins.
func (ed *Editor) Register(p Plugin) error {
	if ed.dead {
		return ErrDestroyed
	}
	for _, existing := range ed.plugins {
		if existing.Key() == p.Key() {
			return fmt.Errorf("%w: %s", ErrPluginExists, p.Key())
		}
	}
	ed.plugins = append(ed.plugins, p)
	return nil
}

// Unregister removes and destroys the plugin with key.
func (ed *Editor) Unregister(key string) {
	for i, p := range ed.plugins {
		if p.Key() == key {
			ed.plugins = append(ed.plugins[:i:i], ed.plugins[i+1:]...)
			p.Destroy()
			return
		}
	}
}

// Plugin returns the registered plugin with key.
func (ed *Editor) Plugin(key string) (Plugin, bool) {
	for _, p := range ed.plugins {
		if p.Key() == key {
			return p, true
		}
	}
	return nil, false
}

// HandleKeyDown routes ev to the plugins, then to default input handling.
// It reports whether anything handled the key.
func (ed *Editor) HandleKeyDown(ev *KeyEvent) bool {
	if ed.dead {
		return false
	}
	defer ed.settle()
	for _, p := range ed.plugins {
		if p.HandleKeyDown(ed, ev) {
			ev.PreventDefault()
			ev.StopPropagation()
			return true
		}
	}
	handled, err := ed.defaultKey(ev)
	if err != nil {
		ed.log.Debug("key not applied", zap.String("key", ev.Key), zap.Error(err))
	}
	return handled
}

func (ed *Editor) defaultKey(ev *KeyEvent) (bool, error) {
	if ev.Ctrl || ev.Meta || ev.Alt {
		switch ev.Key {
		case "b":
			return true, ed.Chain().ToggleMark("strong").Run()
		case "i":
			return true, ed.Chain().ToggleMark("em").Run()
		}
		return false, nil
	}
	switch ev.Key {
	case "Enter":
		tr := ed.Tr()
		tr.Delete(ed.sel.From, ed.sel.To)
		tr.Split(tr.Selection().From)
		return true, ed.Dispatch(tr)
	case "Backspace":
		return true, ed.backspace()
	case "Delete":
		return true, ed.deleteForward()
	case "ArrowLeft":
		return true, ed.moveCaret(ed.prevCaret(ed.sel.From))
	case "ArrowRight":
		return true, ed.moveCaret(ed.nextCaret(ed.sel.To))
	case "ArrowUp":
		return true, ed.moveCaret(ed.verticalCaret(-1))
	case "ArrowDown":
		return true, ed.moveCaret(ed.verticalCaret(1))
	case "Home", "End":
		block, start, ok := ed.TextblockAt(ed.sel.From)
		if !ok {
			return false, nil
		}
		if ev.Key == "Home" {
			return true, ed.moveCaret(start)
		}
		return true, ed.moveCaret(start + block.Content.Size)
	case "Tab":
		return true, ed.Chain().InsertContent("\t").Run()
	}
	if utf8.RuneCountInString(ev.Key) == 1 {
		if _, _, ok := ed.TextblockAt(ed.sel.From); !ok {
			return false, nil
		}
		return true, ed.Chain().InsertContent(ev.Key).Run()
	}
	return false, nil
}

func (ed *Editor) moveCaret(pos int) error {
	tr := ed.Tr()
	tr.SetSelection(pos, pos)
	return ed.Dispatch(tr)
}

func (ed *Editor) backspace() error {
	if !ed.sel.Empty() {
		return ed.Chain().DeleteSelection().Run()
	}
	pos := ed.sel.From
	block, start, ok := ed.TextblockAt(pos)
	if !ok {
		return nil
	}
	if pos > start {
		text := block.TextBetween(0, pos-start, "", "\n")
		_, size := utf8.DecodeLastRuneInString(text)
		if size == 0 {
			size = 1
		}
		return ed.Chain().DeleteRange(pos-size, pos).Run()
	}
	// At the start of a block: join with the previous textblock, or drop a
	// leaf block (image, divider) sitting right before it.
	if start < 2 {
		return nil
	}
	prev := ed.NodeAt(start - 2)
	if prev != nil && prev.IsLeaf() && prev.IsBlock() {
		return ed.Chain().DeleteRange(start-2, start-1).Run()
	}
	return ed.Chain().DeleteRange(start-2, start).Run()
}

func (ed *Editor) deleteForward() error {
	if !ed.sel.Empty() {
		return ed.Chain().DeleteSelection().Run()
	}
	pos := ed.sel.From
	block, start, ok := ed.TextblockAt(pos)
	if !ok {
		return nil
	}
	end := start + block.Content.Size
	if pos < end {
		text := block.TextBetween(pos-start, block.Content.Size, "", "\n")
		_, size := utf8.DecodeRuneInString(text)
		if size == 0 {
			size = 1
		}
		return ed.Chain().DeleteRange(pos, pos+size).Run()
	}
	if end+2 > ed.doc.Content.Size {
		return nil
	}
	return ed.Chain().DeleteRange(end, end+2).Run()
}

func (ed *Editor) prevCaret(pos int) int {
	if block, start, ok := ed.TextblockAt(pos); ok && pos > start {
		text := block.TextBetween(0, pos-start, "", "\n")
		_, size := utf8.DecodeLastRuneInString(text)
		if size == 0 {
			size = 1
		}
		return pos - size
	}
	for p := pos - 1; p >= 0; p-- {
		if block, start, ok := ed.TextblockAt(p); ok && p == start+block.Content.Size {
			return p
		}
	}
	return pos
}

func (ed *Editor) nextCaret(pos int) int {
	if block, start, ok := ed.TextblockAt(pos); ok && pos < start+block.Content.Size {
		text := block.TextBetween(pos-start, block.Content.Size, "", "\n")
		_, size := utf8.DecodeRuneInString(text)
		if size == 0 {
			size = 1
		}
		return pos + size
	}
	for p := pos + 1; p <= ed.doc.Content.Size; p++ {
		if _, start, ok := ed.TextblockAt(p); ok && p == start {
			return p
		}
	}
	return pos
}

// verticalCaret moves to the neighbouring textblock, keeping the offset
// within the block where possible.
func (ed *Editor) verticalCaret(dir int) int {
	pos := ed.sel.From
	_, start, ok := ed.TextblockAt(pos)
	if !ok {
		return pos
	}
	offset := pos - start
	var blocks []struct {
		start int
		node  *model.Node
	}
	current := -1
	ed.doc.NodesBetween(0, ed.doc.Content.Size, func(n *model.Node, p int, _ *model.Node, _ int) bool {
		if isTextblock(n) {
			if p+1 == start {
				current = len(blocks)
			}
			blocks = append(blocks, struct {
				start int
				node  *model.Node
			}{p + 1, n})
			return false
		}
		return true
	})
	target := current + dir
	if current < 0 || target < 0 || target >= len(blocks) {
		return pos
	}
	b := blocks[target]
	if offset > b.node.Content.Size {
		offset = b.node.Content.Size
	}
	return b.start + offset
}
