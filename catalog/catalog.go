// Package catalog holds the commands offered by the slash palette: a
// built-in set, and YAML files mapping titles and keywords to named editor
// actions.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shodgson/prosemirror-widgets/editor"
	"github.com/shodgson/prosemirror-widgets/schema/resizable"
	"github.com/shodgson/prosemirror-widgets/slash"
	"gopkg.in/yaml.v3"
)

// ErrUnknownAction is returned for an action name with no editor command.
var ErrUnknownAction = errors.New("unknown action")

// Entry is one catalog item as written in a YAML file.
type Entry struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Icon        string   `yaml:"icon"`
	Keywords    []string `yaml:"keywords"`
	Action      string   `yaml:"action"`
}

// File is the layout of a catalog file.
type File struct {
	Items []Entry `yaml:"items"`
}

// DefaultEntries are the built-in items.
func DefaultEntries() []Entry {
	return []Entry{
		{ID: "text", Title: "Text", Description: "Just start writing with plain text", Icon: "¶", Keywords: []string{"paragraph", "p"}, Action: "paragraph"},
		{ID: "heading1", Title: "Heading 1", Description: "Big section heading", Icon: "H1", Keywords: []string{"title", "big", "large", "h1"}, Action: "heading:1"},
		{ID: "heading2", Title: "Heading 2", Description: "Medium section heading", Icon: "H2", Keywords: []string{"subtitle", "medium", "h2"}, Action: "heading:2"},
		{ID: "heading3", Title: "Heading 3", Description: "Small section heading", Icon: "H3", Keywords: []string{"subtitle", "small", "h3"}, Action: "heading:3"},
		{ID: "bullet_list", Title: "Bullet List", Description: "Create a simple bullet list", Icon: "•", Keywords: []string{"unordered", "point", "ul"}, Action: "bullet_list"},
		{ID: "ordered_list", Title: "Numbered List", Description: "Create a list with numbering", Icon: "1.", Keywords: []string{"ordered", "ol"}, Action: "ordered_list"},
		{ID: "blockquote", Title: "Quote", Description: "Capture a quote", Icon: "❝", Keywords: []string{"blockquote", "citation"}, Action: "blockquote"},
		{ID: "code_block", Title: "Code Block", Description: "Capture a code snippet", Icon: "</>", Keywords: []string{"codeblock", "pre"}, Action: "code_block"},
		{ID: "divider", Title: "Divider", Description: "Visually divide blocks", Icon: "—", Keywords: []string{"horizontal rule", "hr", "separator"}, Action: "divider"},
		{ID: slash.DefaultImageItemID, Title: "Image", Description: "Upload an image", Icon: "🖼", Keywords: []string{"photo", "picture", "media", "img"}, Action: "image"},
	}
}

// Defaults returns the built-in items.
func Defaults() []slash.Item {
	items, err := Items(DefaultEntries())
	if err != nil {
		panic(err)
	}
	return items
}

// Items converts entries to palette items.
func Items(entries []Entry) ([]slash.Item, error) {
	items := make([]slash.Item, 0, len(entries))
	for i, e := range entries {
		it, err := e.Item()
		if err != nil {
			return nil, fmt.Errorf("item %d (%s): %w", i, e.Title, err)
		}
		items = append(items, it)
	}
	return items, nil
}

// Item converts the entry to a palette item.
func (e Entry) Item() (slash.Item, error) {
	if strings.TrimSpace(e.Title) == "" {
		return slash.Item{}, errors.New("missing title")
	}
	cmd, err := Action(e.Action)
	if err != nil {
		return slash.Item{}, err
	}
	id := e.ID
	if id == "" {
		id = e.Action
	}
	return slash.Item{
		ID:          id,
		Title:       e.Title,
		Description: e.Description,
		Icon:        e.Icon,
		Keywords:    append([]string(nil), e.Keywords...),
		Command:     cmd,
	}, nil
}

// Action returns the editor command for an action name. Headings take their
// level after a colon, as in "heading:2".
func Action(name string) (func(*editor.Editor) error, error) {
	name = strings.TrimSpace(name)
	if level, ok := strings.CutPrefix(name, "heading:"); ok {
		n, err := strconv.Atoi(level)
		if err != nil || n < 1 || n > 6 {
			return nil, fmt.Errorf("%w: %q", ErrUnknownAction, name)
		}
		return func(ed *editor.Editor) error {
			return ed.Chain().Focus().SetBlockType(resizable.Heading, map[string]interface{}{"level": n}).Run()
		}, nil
	}
	switch name {
	case "paragraph":
		return func(ed *editor.Editor) error {
			return ed.Chain().Focus().SetBlockType(resizable.Paragraph, nil).Run()
		}, nil
	case "code_block":
		return func(ed *editor.Editor) error {
			return ed.Chain().Focus().SetBlockType(resizable.CodeBlock, nil).Run()
		}, nil
	case "bullet_list", "ordered_list", "blockquote":
		return func(ed *editor.Editor) error {
			return ed.Chain().Focus().WrapIn(name).Run()
		}, nil
	case "divider":
		return func(ed *editor.Editor) error {
			return ed.Chain().Focus().InsertHorizontalRule().Run()
		}, nil
	case "image":
		// The file is picked by the host through the image request callback.
		return func(ed *editor.Editor) error {
			return ed.Chain().Focus().Run()
		}, nil
	case "bold":
		return func(ed *editor.Editor) error {
			return ed.Chain().Focus().ToggleMark("strong").Run()
		}, nil
	case "italic":
		return func(ed *editor.Editor) error {
			return ed.Chain().Focus().ToggleMark("em").Run()
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAction, name)
}

// Parse reads a catalog file.
func Parse(data []byte) ([]slash.Item, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return Items(f.Items)
}

// Load reads the catalog file at path.
func Load(path string) ([]slash.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	items, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}

// Marshal writes entries in the catalog file layout.
func Marshal(entries []Entry) ([]byte, error) {
	return yaml.Marshal(File{Items: entries})
}
