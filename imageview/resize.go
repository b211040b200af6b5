// Package imageview renders image nodes with eight drag handles and turns
// pointer drags on those handles into width and height attributes.
//
// Edge handles (n, s, e, w) keep the image's natural aspect ratio. Corner
// handles resize both dimensions independently. The live DOM image follows
// every pointer move; the document is only changed once, on pointer up.
package imageview

import (
	"fmt"
	"math"
)

// Direction is the compass point of a resize handle.
type Direction string

const (
	N  Direction = "n"
	NE Direction = "ne"
	E  Direction = "e"
	SE Direction = "se"
	S  Direction = "s"
	SW Direction = "sw"
	W  Direction = "w"
	NW Direction = "nw"
)

// Directions lists the handles clockwise from north.
var Directions = []Direction{N, NE, E, SE, S, SW, W, NW}

// ParseDirection converts a handle name to a Direction.
func ParseDirection(s string) (Direction, error) {
	for _, d := range Directions {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown resize direction %q", s)
}

// Edge reports whether d is a single-edge handle, which keeps the aspect
// ratio.
func (d Direction) Edge() bool {
	return len(d) == 1
}

const (
	// MinSize is the smallest width or height a drag can produce.
	MinSize = 50.0
	// MaxSize is the largest width or height a drag can produce.
	MaxSize = 2000.0
)

// Bounds limits each dimension of a resized image.
type Bounds struct {
	Min float64
	Max float64
}

// DefaultBounds are [MinSize, MaxSize].
var DefaultBounds = Bounds{Min: MinSize, Max: MaxSize}

// Clamp limits v to b.
func (b Bounds) Clamp(v float64) float64 {
	return math.Max(b.Min, math.Min(b.Max, v))
}

// Validate checks that the bounds describe a non-empty positive range.
func (b Bounds) Validate() error {
	if b.Min <= 0 || b.Max < b.Min {
		return fmt.Errorf("invalid resize bounds [%g, %g]", b.Min, b.Max)
	}
	return nil
}

// Size is an image size in pixels.
type Size struct {
	Width  float64
	Height float64
}

// Ratio returns Width / Height, or 1 when the size is degenerate.
func (s Size) Ratio() float64 {
	if s.Width <= 0 || s.Height <= 0 {
		return 1
	}
	return s.Width / s.Height
}

// Round returns the size as whole pixels.
func (s Size) Round() (width, height int) {
	return int(math.Round(s.Width)), int(math.Round(s.Height))
}

// Session is one drag gesture, from pointer down to pointer up.
type Session struct {
	Direction   Direction
	StartX      float64
	StartY      float64
	StartWidth  float64
	StartHeight float64
	AspectRatio float64
}

// Resize computes the clamped size for the pointer at (clientX, clientY).
func (s Session) Resize(clientX, clientY float64, b Bounds) Size {
	dx := clientX - s.StartX
	dy := clientY - s.StartY
	ratio := s.AspectRatio
	if ratio <= 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		ratio = 1
	}

	var w, h float64
	switch s.Direction {
	case E:
		w = s.StartWidth + dx
		h = w / ratio
	case W:
		w = s.StartWidth - dx
		h = w / ratio
	case S:
		h = s.StartHeight + dy
		w = h * ratio
	case N:
		h = s.StartHeight - dy
		w = h * ratio
	case SE:
		w = s.StartWidth + dx
		h = s.StartHeight + dy
	case SW:
		w = s.StartWidth - dx
		h = s.StartHeight + dy
	case NE:
		w = s.StartWidth + dx
		h = s.StartHeight - dy
	case NW:
		w = s.StartWidth - dx
		h = s.StartHeight - dy
	default:
		w, h = s.StartWidth, s.StartHeight
	}
	return Size{Width: b.Clamp(w), Height: b.Clamp(h)}
}
