package main

import (
	"net/http"

	"github.com/cozy/prosemirror-go/model"
	"github.com/shodgson/prosemirror-widgets/catalog"
	"github.com/shodgson/prosemirror-widgets/editor"
	"github.com/shodgson/prosemirror-widgets/imageview"
	"github.com/shodgson/prosemirror-widgets/schema/resizable"
	"github.com/shodgson/prosemirror-widgets/slash"
)

// newEditor opens doc with the configured grid layout.
func newEditor(doc *model.Node, opts ...editor.Option) *editor.Editor {
	layout := editor.LineLayout{
		CellWidth:  cfg.Layout.CellWidth,
		LineHeight: cfg.Layout.LineHeight,
		ImageLines: cfg.Layout.ImageLines,
	}
	opts = append([]editor.Option{editor.WithLogger(logger), editor.WithLayout(layout)}, opts...)
	return editor.New(resizable.Schema, doc, opts...)
}

// newImages mounts resizable image views on ed.
func newImages(ed *editor.Editor) *imageview.Coordinator {
	loader := imageview.NewLoader(logger, cfg.GetCacheTTL())
	loader.BaseDir = cfg.Images.BaseDir
	loader.Client = &http.Client{Timeout: cfg.GetFetchTimeout()}
	return imageview.Register(ed,
		imageview.WithBounds(bounds()),
		imageview.WithLoader(loader),
		imageview.WithLogger(logger),
	)
}

func bounds() imageview.Bounds {
	return imageview.Bounds{Min: cfg.Resize.Min, Max: cfg.Resize.Max}
}

// loadItems returns the configured palette items.
func loadItems() ([]slash.Item, error) {
	if cfg.Slash.Catalog == "" {
		return catalog.Defaults(), nil
	}
	return catalog.Load(cfg.Slash.Catalog)
}
