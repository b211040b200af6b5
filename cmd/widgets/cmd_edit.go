package main

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cozy/prosemirror-go/model"
	"github.com/shodgson/prosemirror-widgets/catalog"
	"github.com/shodgson/prosemirror-widgets/markdown"
	"github.com/shodgson/prosemirror-widgets/schema/resizable"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// editCmd opens the terminal editor
var editCmd = &cobra.Command{
	Use:   "edit [file.md]",
	Short: "Edit a markdown document in the terminal",
	Long: `Opens a document in a terminal editor with the slash palette.

Type "/" at the start of a line or after a space to open the palette,
then filter by typing, pick with the arrow keys and Enter, or dismiss
with Escape. The image item asks for a path or URL. ctrl+→ and ctrl+←
resize the image nearest the caret.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEdit,
}

func runEdit(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	doc, err := openDocument(path)
	if err != nil {
		return err
	}
	items, err := loadItems()
	if err != nil {
		return err
	}

	m, err := newEditModel(path, doc, items)
	if err != nil {
		return err
	}
	defer m.close()

	if cfg.Slash.Watch && cfg.Slash.Catalog != "" {
		w, err := catalog.Watch(cmd.Context(), cfg.Slash.Catalog, logger)
		if err != nil {
			logger.Warn("catalog not watched", zap.String("path", cfg.Slash.Catalog), zap.Error(err))
		} else {
			defer w.Close()
			m.watcher = w
		}
	}

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("editor: %w", err)
	}
	return nil
}

// openDocument loads path, or starts an empty document when there is no
// file yet.
func openDocument(path string) (*model.Node, error) {
	if path != "" {
		doc, err := markdown.Load(path)
		if err == nil || !errors.Is(err, os.ErrNotExist) {
			return doc, err
		}
	}
	para, err := resizable.Schema.Node(resizable.Paragraph, nil)
	if err != nil {
		return nil, err
	}
	return resizable.Schema.Node(resizable.Doc, nil, []interface{}{para})
}
