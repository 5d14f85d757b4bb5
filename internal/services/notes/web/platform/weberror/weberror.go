// Package weberror renders the shared error page for the notes web layer.
package weberror

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/louisbranch/notepad/internal/services/notes/web/i18n"
	apperrors "github.com/louisbranch/notepad/internal/services/notes/web/platform/errors"
	"github.com/louisbranch/notepad/internal/services/notes/web/platform/httpx"
	"github.com/louisbranch/notepad/internal/services/notes/web/routepath"
	"github.com/louisbranch/notepad/internal/services/notes/web/templates"
)

// ShouldRenderAppError reports whether status should use the error page.
func ShouldRenderAppError(statusCode int) bool {
	return statusCode == http.StatusNotFound || statusCode >= http.StatusInternalServerError
}

// PublicMessage resolves a user-safe localized error message.
func PublicMessage(loc templates.Localizer, err error) string {
	if err == nil {
		return ""
	}
	if loc != nil {
		if key := apperrors.LocalizationKey(err); key != "" {
			if localized := strings.TrimSpace(loc.Sprintf(key)); localized != "" {
				return localized
			}
		}
	}
	statusCode := apperrors.HTTPStatus(err)
	if statusCode < http.StatusBadRequest {
		statusCode = http.StatusInternalServerError
	}
	return http.StatusText(statusCode)
}

// WriteError maps err to a status and writes the matching response. When
// debug is true the error chain is shown on the page.
func WriteError(w http.ResponseWriter, r *http.Request, err error, debug bool) {
	if w == nil {
		return
	}
	statusCode := apperrors.HTTPStatus(err)
	if ShouldRenderAppError(statusCode) {
		WriteAppError(w, r, statusCode, err, debug)
		return
	}
	loc, _ := i18n.ResolvePrinter(w, r)
	http.Error(w, PublicMessage(loc, err), statusCode)
}

// WriteAppError writes a localized full-page error response.
func WriteAppError(w http.ResponseWriter, r *http.Request, statusCode int, err error, debug bool) {
	if w == nil {
		return
	}
	if !ShouldRenderAppError(statusCode) {
		statusCode = http.StatusInternalServerError
	}

	loc, lang := i18n.ResolvePrinter(w, r)
	detail := ""
	if debug {
		detail = Detail(err)
	}
	layout := templates.Layout(templates.LayoutParams{
		Title: templates.AppErrorPageTitle(statusCode, loc),
		Lang:  lang,
	})
	fragment := templates.AppErrorState(statusCode, loc, routepath.Root, detail)

	var buf bytes.Buffer
	if renderErr := layout.Render(templ.WithChildren(httpx.RequestContext(r), fragment), &buf); renderErr != nil {
		http.Error(w, PublicMessage(loc, err), statusCode)
		return
	}
	_ = httpx.WriteHTML(w, statusCode, buf.Bytes())
}

// Detail flattens err into a single line including wrapped causes that a
// typed error would otherwise hide.
func Detail(err error) string {
	if err == nil {
		return ""
	}
	parts := []string{}
	for current := err; current != nil; {
		if appErr, ok := current.(apperrors.Error); ok && appErr.Cause != nil {
			if msg := strings.TrimSpace(appErr.Message); msg != "" {
				parts = append(parts, msg)
			}
			current = appErr.Cause
			continue
		}
		parts = append(parts, current.Error())
		break
	}
	return strings.Join(parts, ": ")
}
