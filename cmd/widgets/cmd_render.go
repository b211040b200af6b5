package main

import (
	"context"
	"fmt"

	"github.com/shodgson/prosemirror-widgets/dom"
	"github.com/shodgson/prosemirror-widgets/markdown"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// renderCmd prints the editor DOM of a document
var renderCmd = &cobra.Command{
	Use:   "render [file.md]",
	Short: "Render a document with its image node views as HTML",
	Long: `Loads a markdown document into the editor, measures every image the
way a browser would and prints the resulting DOM, including resize
handles and natural sizes.`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func runRender(cmd *cobra.Command, args []string) error {
	doc, err := markdown.Load(args[0])
	if err != nil {
		return err
	}
	ed := newEditor(doc)
	defer ed.Destroy()
	images := newImages(ed)

	ed.Render()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.GetFetchTimeout())
	defer cancel()
	images.Load(ctx)

	logger.Debug("rendered document", zap.String("file", args[0]), zap.Int("images", len(images.Views())))
	_, err = fmt.Fprintln(cmd.OutOrStdout(), dom.Render(ed.Root()))
	return err
}
