package cmd

import (
	"github.com/nramenta/deco/internal/markdown"
	"github.com/nramenta/deco/internal/render"
	"github.com/nramenta/deco/internal/site"
	"github.com/nramenta/deco/internal/sitedata"
	"github.com/nramenta/deco/internal/tmpl"
)

// newRenderer wires the services for one run from appConfig.
func newRenderer() *render.Renderer {
	return render.New(render.Options{
		Fs:      appFs,
		Data:    sitedata.NewLoader(appFs, appConfig.DataFile, logger),
		Layouts: tmpl.NewLayoutLoader(appFs, appConfig.LayoutsDir, tmpl.HTMLFuncs()),
		Inline:  tmpl.NewInlineLoader(tmpl.TextFuncs()),
		Markdown: markdown.New(markdown.Options{
			HardWraps:      appConfig.Markdown.HardWraps,
			Typographer:    appConfig.Markdown.Typographer,
			HighlightStyle: appConfig.Markdown.HighlightStyle,
		}),
		Logger: logger,
	})
}

func newBuilder() *site.Builder {
	return site.NewBuilder(appFs, appConfig, newRenderer(), logger)
}
