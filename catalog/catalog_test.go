package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shodgson/prosemirror-widgets/editor"
	"github.com/shodgson/prosemirror-widgets/slash"
	"github.com/shodgson/prosemirror-widgets/test/builder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func titles(items []slash.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Title
	}
	return out
}

func TestDefaults(t *testing.T) {
	items := Defaults()
	want := []string{"Text", "Heading 1", "Heading 2", "Heading 3", "Bullet List", "Numbered List", "Quote", "Code Block", "Divider", "Image"}
	if diff := cmp.Diff(want, titles(items)); diff != "" {
		t.Errorf("default titles mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"Heading 1", "Heading 2", "Heading 3"}, titles(slash.Filter(items, "HEADING")))
	assert.Equal(t, []string{"Image"}, titles(slash.Filter(items, "photo")))
	assert.Empty(t, slash.Filter(items, "nothing-matches"))
	assert.Equal(t, slash.DefaultImageItemID, items[len(items)-1].ID)
}

func run(t *testing.T, action string, d builder.NodeWithTag) *editor.Editor {
	t.Helper()
	ed := editor.New(builder.Schema, d.Node, editor.WithSelection(editor.Selection{From: d.Tag["a"], To: d.Tag["a"]}))
	cmd, err := Action(action)
	require.NoError(t, err)
	require.NoError(t, cmd(ed))
	assert.True(t, ed.IsFocused())
	return ed
}

func TestActions(t *testing.T) {
	p, doc := builder.P, builder.Doc
	cases := []struct {
		action string
		want   builder.NodeWithTag
	}{
		{"paragraph", doc(p("hi"))},
		{"heading:2", doc(builder.H2("hi"))},
		{"code_block", doc(builder.Pre("hi"))},
		{"bullet_list", doc(builder.Ul(builder.Li(p("hi"))))},
		{"ordered_list", doc(builder.Ol(builder.Li(p("hi"))))},
		{"blockquote", doc(builder.Blockquote(p("hi")))},
		{"divider", doc(p("hi"), builder.Hr())},
		{"image", doc(p("hi"))},
	}
	for _, c := range cases {
		t.Run(c.action, func(t *testing.T) {
			ed := run(t, c.action, doc(p("hi<a>")))
			assert.Equal(t, c.want.String(), ed.Doc().String())
		})
	}

	ed := run(t, "heading:3", doc(p("hi<a>")))
	assert.True(t, ed.IsActive("heading", map[string]interface{}{"level": 3}))
}

func TestMarkActions(t *testing.T) {
	d := builder.Doc(builder.P("hello"))
	ed := editor.New(builder.Schema, d.Node, editor.WithSelection(editor.Selection{From: 1, To: 6}))
	bold, err := Action("bold")
	require.NoError(t, err)
	require.NoError(t, bold(ed))
	assert.True(t, ed.IsActive("strong", nil))

	italic, err := Action("italic")
	require.NoError(t, err)
	require.NoError(t, italic(ed))
	assert.True(t, ed.IsActive("em", nil))
}

func TestUnknownActions(t *testing.T) {
	for _, name := range []string{"", "table", "heading:0", "heading:7", "heading:x"} {
		_, err := Action(name)
		assert.ErrorIs(t, err, ErrUnknownAction, name)
	}
}

func TestParse(t *testing.T) {
	items, err := Parse([]byte(`
items:
  - title: Todo
    description: Track a task
    icon: "[]"
    keywords: [task, checkbox]
    action: bullet_list
  - id: h
    title: Title
    action: "heading:1"
`))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "bullet_list", items[0].ID)
	assert.Equal(t, []string{"task", "checkbox"}, items[0].Keywords)
	assert.Equal(t, "h", items[1].ID)
	assert.NotNil(t, items[1].Command)

	_, err = Parse([]byte("items:\n  - title: Bad\n    action: explode\n"))
	assert.ErrorIs(t, err, ErrUnknownAction)

	_, err = Parse([]byte("items:\n  - action: paragraph\n"))
	assert.ErrorContains(t, err, "missing title")

	_, err = Parse([]byte("items: [\n"))
	assert.ErrorContains(t, err, "failed to parse catalog")
}

func TestLoadRoundTripsDefaults(t *testing.T) {
	data, err := Marshal(DefaultEntries())
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	items, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, titles(Defaults()), titles(items))

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read catalog")
}
