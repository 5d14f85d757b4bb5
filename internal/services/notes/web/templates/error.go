package templates

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/a-h/templ"
)

const (
	appErrorPageTitleNotFoundKey  = "error.page_title_not_found"
	appErrorPageTitleServerErrKey = "error.page_title_server_error"
	appErrorHeadingNotFoundKey    = "error.title_not_found"
	appErrorHeadingServerErrKey   = "error.title_server_error"
	appErrorMessageNotFoundKey    = "error.message_not_found"
	appErrorMessageServerErrKey   = "error.message_server_error"
	appErrorBackTextKey           = "error.action_back"
	appErrorDebugDetailKey        = "error.debug_detail"
)

// AppErrorPageTitle returns the browser page title for error pages.
func AppErrorPageTitle(statusCode int, loc Localizer) string {
	if normalizeAppErrorStatus(statusCode) == http.StatusNotFound {
		return T(loc, appErrorPageTitleNotFoundKey)
	}
	return T(loc, appErrorPageTitleServerErrKey)
}

// AppErrorState renders the error body. detail is shown verbatim and must
// only be set when debug output is enabled.
func AppErrorState(statusCode int, loc Localizer, backHref string, detail string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if backHref == "" {
			backHref = "/"
		}
		hw := &htmlWriter{w: w}
		hw.raw(`<section class="error-state"><h1>`)
		hw.text(appErrorHeading(statusCode, loc))
		hw.raw("</h1><p>")
		hw.text(appErrorMessage(statusCode, loc))
		hw.raw("</p>")
		if detail = strings.TrimSpace(detail); detail != "" {
			hw.raw(`<details class="error-debug" open><summary>`)
			hw.text(T(loc, appErrorDebugDetailKey))
			hw.raw("</summary><pre>")
			hw.text(detail)
			hw.raw("</pre></details>")
		}
		hw.raw("<a")
		hw.attr("href", backHref)
		hw.raw(">")
		hw.text(T(loc, appErrorBackTextKey))
		hw.raw("</a></section>")
		return hw.err
	})
}

func appErrorHeading(statusCode int, loc Localizer) string {
	if normalizeAppErrorStatus(statusCode) == http.StatusNotFound {
		return T(loc, appErrorHeadingNotFoundKey)
	}
	return T(loc, appErrorHeadingServerErrKey)
}

func appErrorMessage(statusCode int, loc Localizer) string {
	if normalizeAppErrorStatus(statusCode) == http.StatusNotFound {
		return T(loc, appErrorMessageNotFoundKey)
	}
	return T(loc, appErrorMessageServerErrKey)
}

func normalizeAppErrorStatus(statusCode int) int {
	if statusCode == http.StatusNotFound {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
