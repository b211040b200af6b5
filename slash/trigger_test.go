package slash

import (
	"testing"

	"github.com/shodgson/prosemirror-widgets/editor"
	"github.com/shodgson/prosemirror-widgets/test/builder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	cases := []struct {
		name   string
		before string
		ok     bool
		query  string
		from   int
	}{
		{"after space", "hello /tab", true, "tab", 6},
		{"line start", "/", true, "", 0},
		{"line start with query", "/img", true, "img", 0},
		{"no space before slash", "user@domain.com/path", false, "", 0},
		{"second slash", "a /b/c", false, "", 0},
		{"space after query", "a /b ", false, "", 0},
		{"after hard break", "abc\n/q", true, "q", 4},
		{"after nbsp", "x\u00a0/q", true, "q", 3},
		{"tab separator", "x\t/", true, "", 2},
		{"unicode query", "/héad", true, "héad", 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			caret := 100 + len(c.before)
			m, ok := Detect(c.before, caret, DefaultLookback)
			require.Equal(t, c.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, c.query, m.Query)
			assert.Equal(t, Range{From: 100 + c.from, To: caret}, m.Range)
		})
	}
}

func TestDetectLookbackWindow(t *testing.T) {
	long := "abcdefghijklmnopqrstuvwxyz /q"
	_, ok := Detect(long, len(long), DefaultLookback)
	assert.True(t, ok)

	// The slash lies outside the last 20 characters.
	far := " /" + "abcdefghijklmnopqrstuvwxyz"
	_, ok = Detect(far, len(far), DefaultLookback)
	assert.False(t, ok)
	m, ok := Detect(far, len(far), 40)
	require.True(t, ok)
	assert.Equal(t, Range{From: 1, To: len(far)}, m.Range)

	// A window that starts right at a slash counts as a line start.
	edge := "xxxxx/" + "abcdefghijklmnopqrs"
	m, ok = Detect(edge, len(edge), DefaultLookback)
	require.True(t, ok)
	assert.Equal(t, 5, m.Range.From)
}

func TestTextBeforeCaret(t *testing.T) {
	d := builder.Doc(builder.P("one"), builder.P("a", builder.Br(), "b ", builder.Strong("/x<a>y")))
	ed := editor.New(builder.Schema, d.Node, editor.WithSelection(editor.Selection{From: d.Tag["a"], To: d.Tag["a"]}))
	text, caret, ok := TextBeforeCaret(ed)
	require.True(t, ok)
	assert.Equal(t, "a\nb /x", text)
	assert.Equal(t, d.Tag["a"], caret)

	m, ok := Detect(text, caret, DefaultLookback)
	require.True(t, ok)
	assert.Equal(t, "/x", ed.TextBetween(m.Range.From, m.Range.To))

	ranged := editor.New(builder.Schema, d.Node, editor.WithSelection(editor.Selection{From: 1, To: 3}))
	_, _, ok = TextBeforeCaret(ranged)
	assert.False(t, ok)
}
