package templates

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// Toast is a one-time notice rendered above page content.
type Toast struct {
	Kind    string
	Message string
}

// LayoutParams configures the document shell.
type LayoutParams struct {
	Title string
	Lang  string
	Toast *Toast
}

// Layout renders the HTML document shell around the children in ctx.
func Layout(params LayoutParams) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		lang := strings.TrimSpace(params.Lang)
		if lang == "" {
			lang = "en-US"
		}
		hw := &htmlWriter{w: w}
		hw.raw("<!DOCTYPE html><html")
		hw.attr("lang", lang)
		hw.raw(`><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>`)
		hw.text(params.Title)
		hw.raw("</title></head><body><main>")
		if params.Toast != nil && strings.TrimSpace(params.Toast.Message) != "" {
			hw.raw("<div")
			hw.attr("class", classes("toast", "toast-"+strings.TrimSpace(params.Toast.Kind)))
			hw.raw(` role="status">`)
			hw.text(params.Toast.Message)
			hw.raw("</div>")
		}
		if hw.err != nil {
			return hw.err
		}
		if err := templ.GetChildren(ctx).Render(ctx, w); err != nil {
			return err
		}
		hw.raw("</main></body></html>")
		return hw.err
	})
}
