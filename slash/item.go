package slash

import (
	"strings"

	"github.com/shodgson/prosemirror-widgets/editor"
)

// Item is one entry of the palette.
type Item struct {
	// ID names the item for callbacks such as Options.OnImageRequest.
	ID          string
	Title       string
	Description string
	Icon        string
	Keywords    []string
	// Command runs against the editor once the trigger text is gone.
	Command func(ed *editor.Editor) error
}

// Matches reports whether query is a case-insensitive substring of the
// item's title, description or one of its keywords. An empty query matches
// everything.
func (it Item) Matches(query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(it.Title), q) || strings.Contains(strings.ToLower(it.Description), q) {
		return true
	}
	for _, kw := range it.Keywords {
		if strings.Contains(strings.ToLower(kw), q) {
			return true
		}
	}
	return false
}

// Filter returns the items matching query, in their original order.
func Filter(items []Item, query string) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.Matches(query) {
			out = append(out, it)
		}
	}
	return out
}
