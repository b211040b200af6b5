// Package markdown loads and saves widget documents as CommonMark.
//
// Images are block nodes in the widgets schema, while CommonMark only knows
// inline images, so parsing lifts every image out of its paragraph. A
// persisted size is written into the alt text, as in
// ![diagram|320x200](d.png).
package markdown

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	pmd "github.com/cozy/prosemirror-go/markdown"
	"github.com/cozy/prosemirror-go/model"
	"github.com/shodgson/prosemirror-widgets/schema/resizable"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/text"
)

var sizeRe = regexp.MustCompile(`\|(\d+)?(?:x(\d+))?$`)

// SplitAlt separates a size suffix from an alt text. "cat|320x200" gives
// "cat", 320 and 200. Either dimension may be missing ("cat|320",
// "cat|x200").
func SplitAlt(alt string) (string, *int, *int) {
	m := sizeRe.FindStringSubmatchIndex(alt)
	if m == nil || (m[2] < 0 && m[4] < 0) {
		return alt, nil, nil
	}
	var width, height *int
	if m[2] >= 0 {
		if v, err := strconv.Atoi(alt[m[2]:m[3]]); err == nil {
			width = &v
		}
	}
	if m[4] >= 0 {
		if v, err := strconv.Atoi(alt[m[4]:m[5]]); err == nil {
			height = &v
		}
	}
	return alt[:m[0]], width, height
}

// JoinAlt is the inverse of SplitAlt.
func JoinAlt(alt string, width, height *int) string {
	switch {
	case width != nil && height != nil:
		return fmt.Sprintf("%s|%dx%d", alt, *width, *height)
	case width != nil:
		return fmt.Sprintf("%s|%d", alt, *width)
	case height != nil:
		return fmt.Sprintf("%s|x%d", alt, *height)
	}
	return alt
}

// Serializer writes widget documents. It is the engine's default serializer
// with images written as blocks that carry their size.
var Serializer = newSerializer()

func newSerializer() *pmd.Serializer {
	nodes := make(map[string]pmd.NodeSerializerFunc, len(pmd.DefaultSerializer.Nodes)+1)
	for name, fn := range pmd.DefaultSerializer.Nodes {
		nodes[name] = fn
	}
	nodes[resizable.Image] = func(state *pmd.SerializerState, node, _ *model.Node, _ int) {
		a := resizable.ImageAttrsOf(node)
		alt := ""
		if a.Alt != nil {
			alt = *a.Alt
		}
		src := strings.ReplaceAll(a.Src, "(", "\\(")
		src = strings.ReplaceAll(src, ")", "\\)")
		title := ""
		if a.Title != nil {
			title = ` "` + strings.ReplaceAll(*a.Title, `"`, `\"`) + `"`
		}
		state.Write(fmt.Sprintf("![%s](%s%s)", JoinAlt(state.Esc(alt), a.Width, a.Height), src, title))
		state.CloseBlock(node)
	}
	return pmd.NewSerializer(nodes, pmd.DefaultSerializer.Marks)
}

// Serialize renders doc as CommonMark.
func Serialize(doc *model.Node) string {
	return Serializer.Serialize(doc)
}

// Parse reads CommonMark into a widgets document.
func Parse(src []byte) (*model.Node, error) {
	root := goldmark.DefaultParser().Parse(text.NewReader(src))
	doc, err := newParser(resizable.Schema, src).document(root)
	if err != nil {
		return nil, fmt.Errorf("failed to parse markdown: %w", err)
	}
	return doc, nil
}

// Load parses the markdown file at path.
func Load(path string) (*model.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(data)
}

// Save writes doc to path as CommonMark with a trailing newline.
func Save(path string, doc *model.Node) error {
	if err := os.WriteFile(path, []byte(Serialize(doc)+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
