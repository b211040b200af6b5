// Package slash implements the slash-command palette: typing "/" at the
// start of a line or after a space opens a filtered list of commands that
// is navigated with the arrow keys and executed with Enter.
package slash

import (
	"time"

	"github.com/shodgson/prosemirror-widgets/editor"
	"github.com/shodgson/prosemirror-widgets/loop"
	"go.uber.org/zap"
)

// PluginKey is the key the controller registers under.
const PluginKey = "slashCommand"

// DefaultImageItemID is the item ID that fires Options.OnImageRequest.
const DefaultImageItemID = "image"

// Options configures a Controller.
type Options struct {
	Items []Item
	// Lookback is how many characters before the caret may hold the
	// trigger. Zero means DefaultLookback.
	Lookback int
	// Debounce delays detection after editor events. Zero means
	// loop.DefaultDebounce.
	Debounce time.Duration
	// Menu renders the palette. Nil means an HTMLMenu in the editor's
	// document.
	Menu Menu
	// OnImageRequest is called after the item with ImageItemID ran, so
	// the host can pick and upload a file.
	OnImageRequest func(ed *editor.Editor)
	ImageItemID    string
	Logger         *zap.Logger
}

// State is a snapshot of the palette session.
type State struct {
	Active   bool
	Range    Range
	Query    string
	Items    []Item
	Selected int
}

// Visible reports whether the menu is on screen.
func (s State) Visible() bool {
	return s.Active && len(s.Items) > 0
}

// Controller is the editor plugin driving the palette. It has a single
// session slot per editor.
type Controller struct {
	ed    *editor.Editor
	opts  Options
	log   *zap.Logger
	menu  Menu
	state State
	deb   *loop.Debouncer
	offs  []func()
	dead  bool
}

// New creates the controller and registers it on ed.
func New(ed *editor.Editor, opts Options) (*Controller, error) {
	if opts.Lookback <= 0 {
		opts.Lookback = DefaultLookback
	}
	if opts.ImageItemID == "" {
		opts.ImageItemID = DefaultImageItemID
	}
	log := opts.Logger
	if log == nil {
		log = ed.Logger()
	}
	c := &Controller{
		ed:   ed,
		opts: opts,
		log:  log.Named("slash"),
		deb:  loop.NewDebouncer(ed.Scheduler(), opts.Debounce),
		menu: opts.Menu,
	}
	if err := ed.Register(c); err != nil {
		return nil, err
	}
	if c.menu == nil {
		c.menu = NewHTMLMenu(ed.Document(), c.Select)
	}
	schedule := func(*editor.Editor, *editor.Transaction) { c.schedule() }
	c.offs = append(c.offs,
		ed.On(editor.EventTransaction, schedule),
		ed.On(editor.EventSelectionUpdate, schedule),
		ed.On(editor.EventFocus, schedule),
		ed.On(editor.EventBlur, func(*editor.Editor, *editor.Transaction) { c.deb.Trigger(c.onBlur) }),
	)
	return c, nil
}

// Key implements editor.Plugin.
func (c *Controller) Key() string { return PluginKey }

// State returns the current session.
func (c *Controller) State() State {
	s := c.state
	s.Items = append([]Item(nil), c.state.Items...)
	return s
}

// SetItems replaces the palette's items. An open session is filtered again
// right away.
func (c *Controller) SetItems(items []Item) {
	c.opts.Items = items
	if c.state.Active {
		c.Refresh()
	}
}

// Menu returns the menu the controller renders into.
func (c *Controller) Menu() Menu { return c.menu }

func (c *Controller) schedule() {
	if c.dead {
		return
	}
	c.deb.Trigger(c.Refresh)
}

func (c *Controller) onBlur() {
	if c.ed.IsFocused() {
		c.Refresh()
		return
	}
	c.deactivate()
}

// Refresh runs trigger detection now.
func (c *Controller) Refresh() {
	if c.dead {
		return
	}
	text, caret, ok := TextBeforeCaret(c.ed)
	var m Match
	if ok {
		m, ok = Detect(text, caret, c.opts.Lookback)
	}
	if !ok {
		c.deactivate()
		return
	}

	items := Filter(c.opts.Items, m.Query)
	selected := 0
	if c.state.Active {
		selected = clamp(c.state.Selected, len(items))
	}
	if !c.state.Active {
		c.log.Debug("session started", zap.Int("from", m.Range.From))
	}
	c.state = State{Active: true, Range: m.Range, Query: m.Query, Items: items, Selected: selected}
	c.render()
}

func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func (c *Controller) deactivate() {
	if !c.state.Active {
		return
	}
	c.state = State{}
	c.menu.Hide()
	c.log.Debug("session ended")
}

func (c *Controller) render() {
	if !c.state.Visible() {
		c.menu.Hide()
		return
	}
	c.menu.Show(c.state.Items, c.state.Selected, c.anchor())
}

// anchor returns the screen rectangle of the slash, falling back to the
// selection rectangle and then the origin.
func (c *Controller) anchor() editor.Rect {
	r, err := c.ed.CoordsAtPos(c.state.Range.From)
	if err == nil {
		return r
	}
	c.log.Debug("no coordinates for trigger", zap.Error(err))
	if r, ok := c.ed.SelectionRect(); ok {
		return r
	}
	return editor.Rect{}
}

// HandleKeyDown implements editor.Plugin. While the menu is visible it
// consumes ArrowUp, ArrowDown, Enter and Escape whatever modifiers are held.
// A detection still waiting on the debounce runs first, so the keys act on
// the text as typed.
func (c *Controller) HandleKeyDown(_ *editor.Editor, ev *editor.KeyEvent) bool {
	if c.dead {
		return false
	}
	c.deb.Flush()
	if !c.state.Visible() {
		return false
	}
	n := len(c.state.Items)
	switch ev.Key {
	case "ArrowDown":
		c.moveTo((c.state.Selected + 1) % n)
	case "ArrowUp":
		if c.state.Selected == 0 {
			c.moveTo(n - 1)
		} else {
			c.moveTo(c.state.Selected - 1)
		}
	case "Enter":
		c.Select(c.state.Selected)
	case "Escape":
		c.cancel()
	default:
		return false
	}
	return true
}

func (c *Controller) moveTo(i int) {
	c.state.Selected = i
	c.render()
	c.menu.ScrollTo(i)
}

// cancel removes the trigger text without running anything.
func (c *Controller) cancel() {
	rng := c.state.Range
	c.deb.Cancel()
	c.deactivate()
	if err := c.ed.Dispatch(c.ed.Tr().Delete(rng.From, rng.To)); err != nil {
		c.log.Warn("could not remove trigger text", zap.Error(err))
	}
}

// Select runs the item at index of the current list: the trigger text is
// deleted, the session ends, and the command runs as a microtask once the
// deletion has been applied. It reports whether the item was scheduled.
// Outside an editor entrypoint the command runs on the next scheduler
// drain.
func (c *Controller) Select(index int) bool {
	if c.dead {
		return false
	}
	c.deb.Flush()
	if !c.state.Active || index < 0 || index >= len(c.state.Items) {
		return false
	}
	item := c.state.Items[index]
	rng := c.state.Range

	err := c.ed.Dispatch(c.ed.Tr().Delete(rng.From, rng.To))
	c.deb.Cancel()
	c.deactivate()
	if err != nil {
		c.log.Warn("could not remove trigger text", zap.String("item", item.Title), zap.Error(err))
		return false
	}

	ed := c.ed
	ed.Scheduler().Defer(func() {
		if ed.IsDestroyed() {
			return
		}
		if item.Command != nil {
			if err := item.Command(ed); err != nil {
				c.log.Warn("command failed", zap.String("item", item.Title), zap.Error(err))
			}
		}
		if item.ID == c.opts.ImageItemID && c.opts.OnImageRequest != nil {
			c.opts.OnImageRequest(ed)
		}
	})
	return true
}

// Destroy implements editor.Plugin.
func (c *Controller) Destroy() {
	if c.dead {
		return
	}
	c.dead = true
	c.deb.Cancel()
	for _, off := range c.offs {
		off()
	}
	c.offs = nil
	c.state = State{}
	c.menu.Destroy()
	c.ed.Unregister(PluginKey)
}
