package main

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shodgson/prosemirror-widgets/catalog"
	"github.com/shodgson/prosemirror-widgets/config"
	"github.com/shodgson/prosemirror-widgets/editor"
	"github.com/shodgson/prosemirror-widgets/schema/resizable"
	"github.com/shodgson/prosemirror-widgets/test/builder"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupCLI(t *testing.T) *bytes.Buffer {
	t.Helper()
	cfg = config.DefaultConfig()
	logger = zap.NewNop()
	return new(bytes.Buffer)
}

func command(out *bytes.Buffer) *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetOut(out)
	return cmd
}

func TestResizeCmd(t *testing.T) {
	out := setupCLI(t)
	defer func() { resizeFlags.direction, resizeFlags.ratio, resizeFlags.dx, resizeFlags.dy = "se", 0, 0, 0 }()

	cases := []struct {
		direction     string
		width, height float64
		dx, dy        float64
		want          string
	}{
		{"e", 200, 100, 31, 0, "231x116\n"},
		{"w", 200, 100, 20, 0, "180x90\n"},
		{"se", 200, 100, 10, -20, "210x80\n"},
		{"se", 200, 100, 5000, 0, "2000x100\n"},
		{"nw", 200, 100, 190, 90, "50x50\n"},
	}
	for _, c := range cases {
		out.Reset()
		resizeFlags.direction = c.direction
		resizeFlags.width, resizeFlags.height = c.width, c.height
		resizeFlags.dx, resizeFlags.dy = c.dx, c.dy
		require.NoError(t, runResize(command(out), nil))
		assert.Equal(t, c.want, out.String(), "%s by (%v, %v)", c.direction, c.dx, c.dy)
	}

	resizeFlags.direction = "up"
	assert.Error(t, runResize(command(out), nil))
}

func TestCommandsCmd(t *testing.T) {
	out := setupCLI(t)

	require.NoError(t, runCommands(command(out), []string{"/head"}))
	assert.Contains(t, out.String(), "Heading 1")
	assert.Contains(t, out.String(), "Heading 3")
	assert.NotContains(t, out.String(), "Quote")

	out.Reset()
	require.NoError(t, runCommands(command(out), []string{"zzz"}))
	assert.Equal(t, "No commands match \"zzz\"\n", out.String())
}

func TestCommandsCmdWithCatalog(t *testing.T) {
	out := setupCLI(t)
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	data, err := catalog.Marshal([]catalog.Entry{{ID: "shout", Title: "Shout", Description: "Bold text", Action: "bold"}})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	cfg.Slash.Catalog = path

	require.NoError(t, runCommands(command(out), nil))
	assert.Contains(t, out.String(), "Shout")
	assert.NotContains(t, out.String(), "Heading")
}

func TestRenderCmd(t *testing.T) {
	out := setupCLI(t)
	dir := t.TempDir()
	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 64, 32))))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pic.png"), img.Bytes(), 0o644))
	doc := filepath.Join(dir, "doc.md")
	require.NoError(t, os.WriteFile(doc, []byte("Intro\n\n![pic|40x20](pic.png)\n"), 0o644))
	cfg.Images.BaseDir = dir

	require.NoError(t, runRender(command(out), []string{doc}))
	html := out.String()
	assert.Contains(t, html, "image-resizer")
	assert.Contains(t, html, `width="40"`)
	assert.Contains(t, html, `data-natural-width="64"`)
	assert.Contains(t, html, `data-natural-height="32"`)
}

func TestRenderCmdMissingFile(t *testing.T) {
	out := setupCLI(t)
	assert.Error(t, runRender(command(out), []string{filepath.Join(t.TempDir(), "nope.md")}))
}

func TestOpenDocumentStartsEmpty(t *testing.T) {
	setupCLI(t)
	doc, err := openDocument(filepath.Join(t.TempDir(), "new.md"))
	require.NoError(t, err)
	assert.Equal(t, 1, doc.ChildCount())
	assert.Equal(t, resizable.Paragraph, doc.NodeAt(0).Type.Name)
}

func newTestModel(t *testing.T, path string, d builder.NodeWithTag) *editModel {
	t.Helper()
	setupCLI(t)
	m, err := newEditModel(path, d.Node, catalog.Defaults())
	require.NoError(t, err)
	t.Cleanup(m.close)
	return m
}

func typeText(m *editModel, s string) {
	for _, r := range s {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func press(m *editModel, k tea.KeyType) {
	m.Update(tea.KeyMsg{Type: k})
}

// settle fires every pending timer, including the palette debounce.
func settle(m *editModel) {
	m.Update(tickMsg(time.Now().Add(time.Second)))
}

func TestEditPaletteRunsCommand(t *testing.T) {
	m := newTestModel(t, "", builder.Doc(builder.P()))

	typeText(m, "/head")
	settle(m)
	require.True(t, m.palette.State().Visible())
	assert.Contains(t, m.View(), "Heading 1")

	press(m, tea.KeyDown)
	assert.Equal(t, 1, m.palette.State().Selected)
	press(m, tea.KeyEnter)

	first := m.ed.Doc().NodeAt(0)
	require.Equal(t, resizable.Heading, first.Type.Name)
	assert.Equal(t, 2, *resizable.IntAttr(first.Attrs, "level"))
	assert.Equal(t, "", first.TextContent())
	assert.False(t, m.palette.State().Visible())
	assert.NotContains(t, m.View(), "Heading 1")
}

func TestEditPaletteEscape(t *testing.T) {
	m := newTestModel(t, "", builder.Doc(builder.P("note ")))
	press(m, tea.KeyEnd)

	typeText(m, "/qu")
	settle(m)
	require.True(t, m.palette.State().Visible())
	press(m, tea.KeyEsc)

	assert.False(t, m.palette.State().Visible())
	assert.Equal(t, "note ", m.ed.Doc().TextContent())
}

func TestEditImagePrompt(t *testing.T) {
	m := newTestModel(t, "", builder.Doc(builder.P()))

	typeText(m, "/image")
	settle(m)
	press(m, tea.KeyEnter)
	require.True(t, m.prompting)
	assert.Contains(t, m.View(), "image: ")

	typeText(m, "pic.png")
	press(m, tea.KeyEnter)
	assert.False(t, m.prompting)

	var srcs []string
	doc := m.ed.Doc()
	for i := 0; i < doc.ChildCount(); i++ {
		if child, err := doc.Child(i); err == nil && child.Type.Name == resizable.Image {
			srcs = append(srcs, resizable.ImageAttrsOf(child).Src)
		}
	}
	assert.Equal(t, []string{"pic.png"}, srcs)
	assert.Contains(t, m.View(), "[image: pic.png, unknown size]")
}

func TestEditImagePromptCancel(t *testing.T) {
	m := newTestModel(t, "", builder.Doc(builder.P()))
	m.requestImage(m.ed)
	typeText(m, "x.png")
	press(m, tea.KeyEsc)

	assert.False(t, m.prompting)
	assert.Equal(t, 1, m.ed.Doc().ChildCount())
}

func TestEditResizeKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.md")
	m := newTestModel(t, path, builder.Doc(builder.P("text"), builder.Img(builder.Attrs{"width": 200, "height": 100})))
	caret := m.ed.Selection()

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlRight})
	a := resizable.ImageAttrsOf(m.ed.NodeAt(6))
	require.True(t, a.HasSize())
	assert.Equal(t, 220, *a.Width)
	assert.Equal(t, 110, *a.Height)
	assert.Equal(t, caret, m.ed.Selection())
	assert.Equal(t, "image 220x110", m.status)

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "![|220x110](img.png)")
	assert.False(t, m.dirty)

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.False(t, resizable.ImageAttrsOf(m.ed.NodeAt(6)).HasSize())
	assert.True(t, m.dirty)

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlLeft})
	assert.Equal(t, "image size unknown", m.status)
}

func TestEditQuit(t *testing.T) {
	m := newTestModel(t, "", builder.Doc(builder.P()))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Equal(t, "", m.View())
}

func TestKeyEvents(t *testing.T) {
	evs := keyEvents(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("ab")})
	require.Len(t, evs, 2)
	assert.Equal(t, "a", evs[0].Key)
	assert.Equal(t, "b", evs[1].Key)

	assert.Equal(t, "Escape", keyEvents(tea.KeyMsg{Type: tea.KeyEsc})[0].Key)
	assert.Equal(t, "ArrowUp", keyEvents(tea.KeyMsg{Type: tea.KeyUp})[0].Key)
	bold := keyEvents(tea.KeyMsg{Type: tea.KeyCtrlB})[0]
	assert.True(t, bold.Ctrl)
	assert.Equal(t, "b", bold.Key)
	assert.Nil(t, keyEvents(tea.KeyMsg{Type: tea.KeyF1}))
}

func editorRect(left, top float64) editor.Rect {
	return editor.Rect{Left: left, Top: top, Right: left, Bottom: top + 1}
}

func TestTermMenuScrolls(t *testing.T) {
	m := newTermMenu(2)
	items := catalog.Defaults()
	m.Show(items, 0, editorRect(3, 4))
	assert.Equal(t, 0, m.offset)
	row, col := m.Anchor()
	assert.Equal(t, 5, row)
	assert.Equal(t, 3, col)

	m.Show(items, 3, editorRect(3, 4))
	assert.Equal(t, 2, m.offset)
	m.Show(items, 1, editorRect(3, 4))
	assert.Equal(t, 1, m.offset)
	assert.Contains(t, m.View(), items[1].Title)

	m.Hide()
	assert.Equal(t, "", m.View())
}
