package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/cozy/prosemirror-go/model"
	"github.com/shodgson/prosemirror-widgets/catalog"
	"github.com/shodgson/prosemirror-widgets/editor"
	"github.com/shodgson/prosemirror-widgets/imageview"
	"github.com/shodgson/prosemirror-widgets/markdown"
	"github.com/shodgson/prosemirror-widgets/schema/resizable"
	"github.com/shodgson/prosemirror-widgets/slash"
	"go.uber.org/zap"
)

// The grow and shrink keys scale the image by this factor.
const scaleStep = 1.1

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	caretStyle    = lipgloss.NewStyle().Reverse(true)
	headingStyle  = lipgloss.NewStyle().Bold(true)
	codeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("180"))
	imageStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	selectedStyle = imageStyle.Reverse(true)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type keyMap struct {
	Save   key.Binding
	Quit   key.Binding
	Grow   key.Binding
	Shrink key.Binding
	Reset  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+q"),
			key.WithHelp("ctrl+q", "quit"),
		),
		Grow: key.NewBinding(
			key.WithKeys("ctrl+right"),
			key.WithHelp("ctrl+→", "grow image"),
		),
		Shrink: key.NewBinding(
			key.WithKeys("ctrl+left"),
			key.WithHelp("ctrl+←", "shrink image"),
		),
		Reset: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "natural size"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Save, k.Grow, k.Shrink, k.Reset, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

type tickMsg time.Time

type catalogMsg catalog.Update

type imageMeasuredMsg struct {
	src  string
	size imageview.Size
	err  error
}

// editModel is the terminal editor: the document as text lines, the slash
// palette below the caret and a prompt for image sources.
type editModel struct {
	ed      *editor.Editor
	palette *slash.Controller
	images  *imageview.Coordinator
	menu    *termMenu
	watcher *catalog.Watcher

	prompt    textinput.Model
	prompting bool
	help      help.Model
	keys      keyMap

	path     string
	status   string
	dirty    bool
	quitting bool
}

func newEditModel(path string, doc *model.Node, items []slash.Item) (*editModel, error) {
	m := &editModel{
		menu: newTermMenu(6),
		help: help.New(),
		keys: defaultKeyMap(),
		path: path,
	}
	// One cell per character and one row per line, so layout coordinates
	// are screen cells.
	m.ed = newEditor(doc, editor.WithLayout(editor.LineLayout{CellWidth: 1, LineHeight: 1, ImageLines: 1}))
	m.images = newImages(m.ed)

	palette, err := slash.New(m.ed, slash.Options{
		Items:          items,
		Lookback:       cfg.Slash.Lookback,
		Debounce:       cfg.GetDebounce(),
		Menu:           m.menu,
		OnImageRequest: m.requestImage,
		Logger:         logger,
	})
	if err != nil {
		m.images.Destroy()
		m.ed.Destroy()
		return nil, err
	}
	m.palette = palette
	m.ed.On(editor.EventTransaction, func(*editor.Editor, *editor.Transaction) { m.dirty = true })

	m.prompt = textinput.New()
	m.prompt.Prompt = "image: "
	m.prompt.Placeholder = "path or URL"

	m.ed.Focus()
	return m, nil
}

// Init implements tea.Model.
func (m *editModel) Init() tea.Cmd {
	return tea.Batch(m.tick(), m.waitForCatalog(), m.measureAll())
}

func (m *editModel) tick() tea.Cmd {
	return tea.Tick(cfg.GetDebounce(), func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *editModel) waitForCatalog() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	updates := m.watcher.Updates()
	return func() tea.Msg {
		u, ok := <-updates
		if !ok {
			return nil
		}
		return catalogMsg(u)
	}
}

// measure resolves the natural size of src off the UI goroutine. The
// result lands in the loader cache, so the views pick it up without I/O.
func (m *editModel) measure(src string) tea.Cmd {
	loader := m.images.Loader()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.GetFetchTimeout())
		defer cancel()
		size, err := loader.Load(ctx, src)
		return imageMeasuredMsg{src: src, size: size, err: err}
	}
}

func (m *editModel) measureAll() tea.Cmd {
	var cmds []tea.Cmd
	seen := map[string]bool{}
	doc := m.ed.Doc()
	doc.NodesBetween(0, doc.Content.Size, func(n *model.Node, _ int, _ *model.Node, _ int) bool {
		if n.Type.Name != resizable.Image {
			return true
		}
		if src := resizable.ImageAttrsOf(n).Src; src != "" && !seen[src] {
			seen[src] = true
			cmds = append(cmds, m.measure(src))
		}
		return false
	})
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m *editModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		m.prompt.Width = msg.Width - len(m.prompt.Prompt) - 1
		return m, nil

	case tickMsg:
		m.ed.Tick(time.Time(msg))
		return m, m.tick()

	case catalogMsg:
		if msg.Err != nil {
			m.status = "catalog: " + msg.Err.Error()
		} else {
			m.palette.SetItems(msg.Items)
			m.status = fmt.Sprintf("catalog reloaded (%d items)", len(msg.Items))
		}
		return m, m.waitForCatalog()

	case imageMeasuredMsg:
		if msg.err != nil {
			logger.Warn("image failed to load", zap.String("src", msg.src), zap.Error(msg.err))
			m.status = "cannot load " + msg.src
			return m, nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), cfg.GetFetchTimeout())
		defer cancel()
		m.images.Load(ctx)
		return m, nil

	case tea.KeyMsg:
		if m.prompting {
			return m.updatePrompt(msg)
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Save):
			m.save()
		case key.Matches(msg, m.keys.Grow):
			m.scaleImage(scaleStep)
		case key.Matches(msg, m.keys.Shrink):
			m.scaleImage(1 / scaleStep)
		case key.Matches(msg, m.keys.Reset):
			m.resetImage()
		default:
			for _, ev := range keyEvents(msg) {
				m.ed.HandleKeyDown(ev)
			}
		}
		if m.prompting {
			return m, m.prompt.Focus()
		}
	}
	return m, nil
}

func (m *editModel) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		src := strings.TrimSpace(m.prompt.Value())
		m.closePrompt()
		if src == "" {
			return m, nil
		}
		return m, m.insertImage(src)
	case tea.KeyEsc:
		m.closePrompt()
		return m, nil
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m *editModel) closePrompt() {
	m.prompting = false
	m.prompt.Blur()
	m.prompt.Reset()
}

func (m *editModel) requestImage(*editor.Editor) {
	m.prompting = true
	m.prompt.Reset()
}

func (m *editModel) insertImage(src string) tea.Cmd {
	err := m.ed.Chain().Focus().InsertContentOfType(resizable.Image, map[string]interface{}{"src": src}).Run()
	if err != nil {
		m.status = "insert image: " + err.Error()
		return nil
	}
	m.status = "inserted " + src
	return m.measure(src)
}

// targetImage picks the image the resize keys act on: the last image
// starting at or before the caret, else the first one after it.
func (m *editModel) targetImage() (int, *model.Node, bool) {
	sel := m.ed.Selection()
	doc := m.ed.Doc()
	pos := -1
	var node *model.Node
	doc.NodesBetween(0, doc.Content.Size, func(n *model.Node, p int, _ *model.Node, _ int) bool {
		if n.Type.Name != resizable.Image {
			return true
		}
		if p <= sel.From || pos < 0 {
			pos, node = p, n
		}
		return false
	})
	return pos, node, pos >= 0
}

func (m *editModel) scaleImage(factor float64) {
	pos, node, ok := m.targetImage()
	if !ok {
		m.status = "no image"
		return
	}
	a := resizable.ImageAttrsOf(node)
	var size imageview.Size
	switch cached, found := m.images.Loader().Cached(a.Src); {
	case a.HasSize():
		size = imageview.Size{Width: float64(*a.Width), Height: float64(*a.Height)}
	case found:
		size = cached
	default:
		m.status = "image size unknown"
		return
	}
	m.keepSelection(func() error {
		return imageview.ResizeFreely(m.ed, pos, size.Width*factor, size.Height*factor, bounds())
	})
	if a = resizable.ImageAttrsOf(m.ed.NodeAt(pos)); a.HasSize() {
		m.status = fmt.Sprintf("image %dx%d", *a.Width, *a.Height)
	}
}

func (m *editModel) resetImage() {
	pos, _, ok := m.targetImage()
	if !ok {
		m.status = "no image"
		return
	}
	m.keepSelection(func() error { return imageview.ResetSize(m.ed, pos) })
	m.status = "image at natural size"
}

// keepSelection runs a command that selects a node and puts the caret back
// where it was.
func (m *editModel) keepSelection(fn func() error) {
	sel := m.ed.Selection()
	if err := fn(); err != nil {
		m.status = err.Error()
		return
	}
	if err := m.ed.Chain().SetTextSelection(sel.From).Run(); err != nil {
		logger.Debug("caret not restored", zap.Error(err))
	}
}

func (m *editModel) save() {
	if m.path == "" {
		m.status = "no file to save to"
		return
	}
	if err := markdown.Save(m.path, m.ed.Doc()); err != nil {
		m.status = err.Error()
		return
	}
	m.dirty = false
	m.status = "saved " + m.path
}

// close tears down the palette, the image views and the editor.
func (m *editModel) close() {
	m.palette.Destroy()
	m.images.Destroy()
	m.ed.Destroy()
}

// View implements tea.Model.
func (m *editModel) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	name := "untitled"
	if m.path != "" {
		name = filepath.Base(m.path)
	}
	if m.dirty {
		name += " *"
	}
	b.WriteString(titleStyle.Render(name))
	b.WriteString("\n\n")
	b.WriteString(strings.Join(m.bodyLines(), "\n"))
	b.WriteString("\n\n")
	if m.prompting {
		b.WriteString(m.prompt.View())
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// bodyLines renders the document one layout row per line, with the palette
// spliced in under its anchor row.
func (m *editModel) bodyLines() []string {
	lines := m.documentLines()
	menu := m.menu.View()
	if menu == "" {
		return lines
	}
	row, col := m.menu.Anchor()
	if row > len(lines) {
		row = len(lines)
	}
	pad := strings.Repeat(" ", col)
	var box []string
	for _, l := range strings.Split(menu, "\n") {
		box = append(box, pad+l)
	}
	out := make([]string, 0, len(lines)+len(box))
	out = append(out, lines[:row]...)
	out = append(out, box...)
	return append(out, lines[row:]...)
}

func (m *editModel) documentLines() []string {
	doc := m.ed.Doc()
	sel := m.ed.Selection()
	caretRow, caretCol := -1, 0
	if sel.Empty() {
		if r, err := m.ed.CoordsAtPos(sel.To); err == nil {
			caretRow, caretCol = int(r.Top), int(r.Left)
		}
	}

	var lines []string
	doc.NodesBetween(0, doc.Content.Size, func(n *model.Node, pos int, parent *model.Node, _ int) bool {
		switch {
		case resizable.IsTextblock(n):
			prefix, style := blockStyle(n, parent)
			indent := strings.Repeat(" ", lipgloss.Width(prefix))
			for i, text := range strings.Split(n.TextBetween(0, n.Content.Size, "", "\n"), "\n") {
				if len(lines) == caretRow {
					text = withCaret(text, caretCol)
				}
				p := prefix
				if i > 0 {
					p = indent
				}
				lines = append(lines, style.Render(p+text))
			}
			return false
		case n.IsLeaf() && n.IsBlock():
			selected := sel.From == pos && sel.To == pos+n.NodeSize()
			lines = append(lines, m.leafLine(n, selected))
			return false
		}
		return true
	})
	return lines
}

func (m *editModel) leafLine(n *model.Node, selected bool) string {
	if n.Type.Name != resizable.Image {
		return statusStyle.Render(strings.Repeat("─", 24))
	}
	a := resizable.ImageAttrsOf(n)
	label := a.Src
	if a.Alt != nil && *a.Alt != "" {
		label = *a.Alt
	}
	var size string
	switch natural, ok := m.images.Loader().Cached(a.Src); {
	case a.HasSize():
		size = fmt.Sprintf("%dx%d", *a.Width, *a.Height)
	case ok:
		w, h := natural.Round()
		size = fmt.Sprintf("%dx%d natural", w, h)
	default:
		size = "unknown size"
	}
	style := imageStyle
	if selected {
		style = selectedStyle
	}
	return style.Render(fmt.Sprintf("[image: %s, %s]", label, size))
}

func blockStyle(n, parent *model.Node) (string, lipgloss.Style) {
	prefix := ""
	if parent != nil {
		switch parent.Type.Name {
		case resizable.ListItem:
			prefix = "• "
		case resizable.Blockquote:
			prefix = "│ "
		}
	}
	switch n.Type.Name {
	case resizable.Heading:
		level := 1
		if l := resizable.IntAttr(n.Attrs, "level"); l != nil {
			level = *l
		}
		return prefix + strings.Repeat("#", level) + " ", headingStyle
	case resizable.CodeBlock:
		return prefix + "  ", codeStyle
	}
	return prefix, lipgloss.NewStyle()
}

func withCaret(text string, col int) string {
	runes := []rune(text)
	if col < 0 {
		col = 0
	}
	if col >= len(runes) {
		return text + caretStyle.Render(" ")
	}
	return string(runes[:col]) + caretStyle.Render(string(runes[col])) + string(runes[col+1:])
}

// keyEvents translates a terminal key press into editor key events. Pasted
// text arrives as several runes and yields one event per rune.
func keyEvents(msg tea.KeyMsg) []*editor.KeyEvent {
	var name string
	switch msg.Type {
	case tea.KeyRunes:
		events := make([]*editor.KeyEvent, 0, len(msg.Runes))
		for _, r := range msg.Runes {
			events = append(events, &editor.KeyEvent{Key: string(r), Alt: msg.Alt})
		}
		return events
	case tea.KeySpace:
		name = " "
	case tea.KeyEnter:
		name = "Enter"
	case tea.KeyBackspace:
		name = "Backspace"
	case tea.KeyDelete:
		name = "Delete"
	case tea.KeyUp:
		name = "ArrowUp"
	case tea.KeyDown:
		name = "ArrowDown"
	case tea.KeyLeft:
		name = "ArrowLeft"
	case tea.KeyRight:
		name = "ArrowRight"
	case tea.KeyHome:
		name = "Home"
	case tea.KeyEnd:
		name = "End"
	case tea.KeyEsc:
		name = "Escape"
	case tea.KeyTab:
		name = "Tab"
	case tea.KeyCtrlB:
		return []*editor.KeyEvent{{Key: "b", Ctrl: true}}
	default:
		return nil
	}
	return []*editor.KeyEvent{{Key: name, Alt: msg.Alt}}
}
