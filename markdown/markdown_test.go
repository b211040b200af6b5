package markdown

import (
	"path/filepath"
	"testing"

	"github.com/shodgson/prosemirror-widgets/test/builder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	doc = builder.Doc
	p   = builder.P
	h1  = builder.H1
	h2  = builder.H2
	bq  = builder.Blockquote
	img = builder.Img
	em  = builder.Em
)

type attrs = builder.Attrs

func intp(v int) *int { return &v }

func TestSplitAlt(t *testing.T) {
	cases := []struct {
		alt           string
		want          string
		width, height *int
	}{
		{"cat", "cat", nil, nil},
		{"cat|320x200", "cat", intp(320), intp(200)},
		{"cat|320", "cat", intp(320), nil},
		{"cat|x200", "cat", nil, intp(200)},
		{"|64x64", "", intp(64), intp(64)},
		{"a|b", "a|b", nil, nil},
		{"cat|", "cat|", nil, nil},
	}
	for _, c := range cases {
		t.Run(c.alt, func(t *testing.T) {
			alt, w, h := SplitAlt(c.alt)
			assert.Equal(t, c.want, alt)
			assert.Equal(t, c.width, w)
			assert.Equal(t, c.height, h)
			if c.width != nil || c.height != nil {
				assert.Equal(t, c.alt, JoinAlt(alt, w, h))
			}
		})
	}
}

func TestMarkdown(t *testing.T) {
	parse := func(text string, d builder.NodeWithTag) {
		t.Helper()
		actual, err := Parse([]byte(text))
		require.NoError(t, err)
		require.True(t, actual.Eq(d.Node), "%s != %s", actual.String(), d.Node.String())
	}
	serialize := func(d builder.NodeWithTag, text string) {
		t.Helper()
		assert.Equal(t, text, Serialize(d.Node))
	}
	same := func(text string, d builder.NodeWithTag) {
		t.Helper()
		parse(text, d)
		serialize(d, text)
	}

	// plain blocks
	same("hello!", doc(p("hello!")))
	same("# one\n\n## two\n\nthree", doc(h1("one"), h2("two"), p("three")))
	same("> once", doc(bq(p("once"))))
	same("some *words*", doc(p("some ", em("words"))))

	// images become blocks
	same("![x](img.png)", doc(img(attrs{"alt": "x"})))
	same("before\n\n![x](img.png)\n\nafter",
		doc(p("before"), img(attrs{"alt": "x"}), p("after")))

	// sizes travel in the alt text
	same("![x|320x200](img.png)", doc(img(attrs{"alt": "x", "width": 320, "height": 200})))
	same("![x|320](img.png)", doc(img(attrs{"alt": "x", "width": 320})))
	same("![|64x48](img.png)", doc(img(attrs{"width": 64, "height": 48})))
	same(`![x|10x20](img.png "T")`, doc(img(attrs{"alt": "x", "title": "T", "width": 10, "height": 20})))

	// two images in one paragraph
	parse("![a](a.png)![b](b.png)",
		doc(img(attrs{"src": "a.png", "alt": "a"}), img(attrs{"src": "b.png", "alt": "b"})))
}

func TestParseBlocks(t *testing.T) {
	parse := func(text string, d builder.NodeWithTag) {
		t.Helper()
		actual, err := Parse([]byte(text))
		require.NoError(t, err)
		require.True(t, actual.Eq(d.Node), "%s != %s", actual.String(), d.Node.String())
	}

	parse("", doc(p()))
	parse("- one\n- two", doc(builder.Ul(builder.Li(p("one")), builder.Li(p("two")))))
	parse("1. one\n2. two", doc(builder.Ol(builder.Li(p("one")), builder.Li(p("two")))))
	parse("```go\nx := 1\n```", doc(builder.Pre(attrs{"params": "go"}, "x := 1")))
	parse("    indented", doc(builder.Pre("indented")))
	parse("a\n\n---\n\nb", doc(p("a"), builder.Hr(), p("b")))
	parse("**bold** and `code`", doc(p(builder.Strong("bold"), " and ", builder.Code("code"))))
	parse("one\ntwo", doc(p("one two")))
	parse("one  \ntwo", doc(p("one", builder.Br(), "two")))
	parse("# see ![x](img.png)", doc(h1("see x")))
	parse("text ![x](img.png) more", doc(p("text "), img(attrs{"alt": "x"}), p(" more")))
}

func TestParseLinks(t *testing.T) {
	actual, err := Parse([]byte(`[site](https://example.com "Home")`))
	require.NoError(t, err)
	para, err := actual.Child(0)
	require.NoError(t, err)
	link, err := para.Child(0)
	require.NoError(t, err)
	assert.Equal(t, "site", *link.Text)
	require.Len(t, link.Marks, 1)
	assert.Equal(t, "link", link.Marks[0].Type.Name)
	assert.Equal(t, "https://example.com", link.Marks[0].Attrs["href"])
	assert.Equal(t, "Home", link.Marks[0].Attrs["title"])
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.md")
	d := doc(p("intro"), img(attrs{"alt": "chart", "width": 400, "height": 300}), p("outro"))

	require.NoError(t, Save(path, d.Node))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.True(t, loaded.Eq(d.Node), "%s", loaded.String())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.md"))
	assert.Error(t, err)
}
