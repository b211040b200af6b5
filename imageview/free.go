package imageview

import (
	"errors"
	"fmt"

	"github.com/shodgson/prosemirror-widgets/editor"
	"github.com/shodgson/prosemirror-widgets/schema/resizable"
)

// ErrNotImage is returned when the node at a position is not an image.
var ErrNotImage = errors.New("not an image node")

// ResizeFreely sets the image at pos to width x height without regard to
// its aspect ratio. Both values are clamped to b.
func ResizeFreely(ed *editor.Editor, pos int, width, height float64, b Bounds) error {
	node := ed.NodeAt(pos)
	if node == nil || node.Type.Name != resizable.Image {
		return fmt.Errorf("%w: position %d", ErrNotImage, pos)
	}
	w, h := Size{Width: b.Clamp(width), Height: b.Clamp(height)}.Round()
	return ed.Chain().
		SetNodeSelection(pos).
		UpdateAttributes(resizable.Image, map[string]interface{}{"width": w, "height": h}).
		Run()
}

// ResetSize clears the explicit size of the image at pos so it renders at
// its natural size again.
func ResetSize(ed *editor.Editor, pos int) error {
	node := ed.NodeAt(pos)
	if node == nil || node.Type.Name != resizable.Image {
		return fmt.Errorf("%w: position %d", ErrNotImage, pos)
	}
	return ed.Chain().
		SetNodeSelection(pos).
		UpdateAttributes(resizable.Image, map[string]interface{}{"width": nil, "height": nil}).
		Run()
}
