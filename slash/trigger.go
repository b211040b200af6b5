package slash

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/cozy/prosemirror-go/model"
	"github.com/shodgson/prosemirror-widgets/editor"
	"github.com/shodgson/prosemirror-widgets/schema/resizable"
)

// DefaultLookback is how many characters before the caret are searched for
// a trigger.
const DefaultLookback = 20

// triggerRe matches a slash at the start of the window or after a space,
// followed by a run of non-space, non-slash characters up to the caret.
var triggerRe = regexp.MustCompile(`(?:^|[\s\p{Z}])/([^/\s\p{Z}]*)$`)

// leafPlaceholder stands in for inline leaves other than hard breaks. It
// occupies one position, like the leaf itself.
const leafPlaceholder = "\x00"

// Range is a span of document positions, from inclusive, to exclusive.
type Range struct {
	From int
	To   int
}

// Match is a detected trigger.
type Match struct {
	Range Range
	Query string
}

// Detect looks for a trigger ending at caret. before is the text of the
// caret's textblock up to the caret, one byte per document position for
// anything that is not text. Only the last lookback characters of the
// current line are considered.
func Detect(before string, caret, lookback int) (Match, bool) {
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	window := before
	if i := strings.LastIndexByte(window, '\n'); i >= 0 {
		window = window[i+1:]
	}
	if n := utf8.RuneCountInString(window); n > lookback {
		skip := n - lookback
		for i := range window {
			if skip == 0 {
				window = window[i:]
				break
			}
			skip--
		}
	}

	loc := triggerRe.FindStringSubmatchIndex(window)
	if loc == nil {
		return Match{}, false
	}
	full := window[loc[0]:loc[1]]
	slash := strings.IndexByte(full, '/')
	return Match{
		Range: Range{From: caret - len(full) + slash, To: caret},
		Query: window[loc[2]:loc[3]],
	}, true
}

// TextBeforeCaret returns the text of the caret's textblock up to the caret
// and the caret position. ok is false for a range selection or a caret
// outside a textblock.
func TextBeforeCaret(ed *editor.Editor) (text string, caret int, ok bool) {
	sel := ed.Selection()
	if !sel.Empty() {
		return "", 0, false
	}
	parent, start, ok := ed.TextblockAt(sel.From)
	if !ok {
		return "", 0, false
	}
	offset := sel.From - start
	var b strings.Builder
	parent.Content.ForEach(func(child *model.Node, pos int, _ int) {
		if pos >= offset {
			return
		}
		switch {
		case child.IsText():
			s := *child.Text
			if end := offset - pos; end < len(s) {
				s = s[:end]
			}
			b.WriteString(s)
		case child.Type.Name == resizable.HardBreak:
			b.WriteString("\n")
		default:
			b.WriteString(strings.Repeat(leafPlaceholder, child.NodeSize()))
		}
	})
	return b.String(), sel.From, true
}
