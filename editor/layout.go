package editor

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cozy/prosemirror-go/model"
)

// Rect is a screen rectangle.
type Rect struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

// Layout resolves document positions to screen coordinates.
type Layout interface {
	CoordsAtPos(doc *model.Node, pos int) (Rect, error)
}

// SelectionRecter is implemented by layouts that can report the bounding
// box of the platform's current text selection.
type SelectionRecter interface {
	SelectionRect(doc *model.Node, sel Selection) (Rect, bool)
}

// CoordsAtPos resolves pos through the editor's layout.
func (ed *Editor) CoordsAtPos(pos int) (Rect, error) {
	if pos < 0 || pos > ed.doc.Content.Size {
		return Rect{}, fmt.Errorf("%w: %d", ErrPosition, pos)
	}
	return ed.layout.CoordsAtPos(ed.doc, pos)
}

// SelectionRect returns the bounding box of the current selection, when the
// layout can tell.
func (ed *Editor) SelectionRect() (Rect, bool) {
	sr, ok := ed.layout.(SelectionRecter)
	if !ok {
		return Rect{}, false
	}
	return sr.SelectionRect(ed.doc, ed.sel)
}

// LineLayout lays the document out as a character grid: one line per
// textblock line (hard breaks start new lines) and one line per leaf block.
// Positions outside textblocks have no coordinates.
type LineLayout struct {
	CellWidth  float64
	LineHeight float64
	// ImageLines is how many lines a leaf block such as an image occupies.
	ImageLines int
}

// CoordsAtPos implements Layout.
func (l LineLayout) CoordsAtPos(doc *model.Node, pos int) (Rect, error) {
	line := 0
	var rect Rect
	found := false
	doc.NodesBetween(0, doc.Content.Size, func(n *model.Node, p int, _ *model.Node, _ int) bool {
		if found {
			return false
		}
		if isTextblock(n) {
			start := p + 1
			if pos >= start && pos <= start+n.Content.Size {
				text := n.TextBetween(0, pos-start, "", "\n")
				row := strings.Count(text, "\n")
				col := utf8.RuneCountInString(text[strings.LastIndex(text, "\n")+1:])
				top := float64(line+row) * l.LineHeight
				left := float64(col) * l.CellWidth
				rect = Rect{Left: left, Top: top, Right: left, Bottom: top + l.LineHeight}
				found = true
				return false
			}
			line += 1 + strings.Count(n.TextContent(), "\n") + countHardBreaks(n)
			return false
		}
		if n.IsLeaf() && n.IsBlock() {
			lines := l.ImageLines
			if lines < 1 {
				lines = 1
			}
			line += lines
			return false
		}
		return true
	})
	if !found {
		return Rect{}, fmt.Errorf("%w: %d is not inside a textblock", ErrPosition, pos)
	}
	return rect, nil
}

// SelectionRect implements SelectionRecter using the selection head.
func (l LineLayout) SelectionRect(doc *model.Node, sel Selection) (Rect, bool) {
	r, err := l.CoordsAtPos(doc, sel.To)
	if err != nil {
		return Rect{}, false
	}
	return r, true
}

func countHardBreaks(n *model.Node) int {
	count := 0
	n.Content.ForEach(func(child *model.Node, _ int, _ int) {
		if child.IsLeaf() && !child.IsText() {
			count++
		}
	})
	return count
}
