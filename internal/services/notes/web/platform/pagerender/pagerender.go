// Package pagerender centralizes full-page rendering for the notes web layer.
package pagerender

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	flashnotice "github.com/louisbranch/notepad/internal/services/notes/web/platform/flash"
	"github.com/louisbranch/notepad/internal/services/notes/web/platform/httpx"
	"github.com/louisbranch/notepad/internal/services/notes/web/templates"
)

// Page describes one full HTML response.
type Page struct {
	Title      string
	Lang       string
	StatusCode int
	Body       templ.Component
}

type emptyComponent struct{}

func (emptyComponent) Render(context.Context, io.Writer) error {
	return nil
}

// WritePage renders page inside the shared layout, consuming any pending
// flash notice. Nothing is written to w when rendering fails.
func WritePage(w http.ResponseWriter, r *http.Request, loc templates.Localizer, page Page) error {
	if w == nil {
		return nil
	}
	statusCode := page.StatusCode
	if statusCode <= 0 {
		statusCode = http.StatusOK
	}
	body := page.Body
	if body == nil {
		body = emptyComponent{}
	}

	layout := templates.Layout(templates.LayoutParams{
		Title: page.Title,
		Lang:  page.Lang,
		Toast: resolveFlashToast(w, r, loc),
	})
	var buf bytes.Buffer
	if err := layout.Render(templ.WithChildren(httpx.RequestContext(r), body), &buf); err != nil {
		return err
	}
	return httpx.WriteHTML(w, statusCode, buf.Bytes())
}

func resolveFlashToast(w http.ResponseWriter, r *http.Request, loc templates.Localizer) *templates.Toast {
	notice, ok := flashnotice.ReadAndClear(w, r)
	if !ok {
		return nil
	}
	message := strings.TrimSpace(templates.T(loc, notice.Key))
	if message == "" {
		message = strings.TrimSpace(notice.Key)
	}
	if message == "" {
		return nil
	}
	return &templates.Toast{
		Kind:    string(notice.Kind),
		Message: message,
	}
}
