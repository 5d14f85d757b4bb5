// Package web serves the notes page and its submission endpoint.
package web

import (
	"context"
	"errors"
	"log"
	"mime"
	"net/http"

	"github.com/louisbranch/notepad/internal/platform/requestctx"
	"github.com/louisbranch/notepad/internal/platform/timeouts"
	"github.com/louisbranch/notepad/internal/services/notes/storage"
	"github.com/louisbranch/notepad/internal/services/notes/web/i18n"
	apperrors "github.com/louisbranch/notepad/internal/services/notes/web/platform/errors"
	flashnotice "github.com/louisbranch/notepad/internal/services/notes/web/platform/flash"
	"github.com/louisbranch/notepad/internal/services/notes/web/platform/httpx"
	"github.com/louisbranch/notepad/internal/services/notes/web/platform/pagerender"
	"github.com/louisbranch/notepad/internal/services/notes/web/platform/weberror"
	"github.com/louisbranch/notepad/internal/services/notes/web/routepath"
	"github.com/louisbranch/notepad/internal/services/notes/web/templates"
)

const (
	// maxFormBytes bounds the submission body; a full note is far smaller.
	maxFormBytes = 64 << 10

	noticeSavedKey   = "notes.flash.saved"
	noticeEmptyKey   = "notes.flash.empty"
	noticeTooLongKey = "notes.flash.too_long"
	noticeInvalidKey = "notes.flash.invalid"
	invalidFormKey   = "notes.error.invalid_form"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config defines the handler dependencies.
type Config struct {
	Store storage.NoteStore
	// Health backs /healthz. When nil, Store is used if it implements Pinger.
	Health Pinger
	// Debug exposes error detail on 500 pages.
	Debug  bool
	Logger *log.Logger
}

type handler struct {
	store  storage.NoteStore
	health Pinger
	debug  bool
	logger *log.Logger
}

// NewHandler builds the notes HTTP handler with request id, access log, and
// panic recovery middleware applied.
func NewHandler(config Config) (http.Handler, error) {
	if config.Store == nil {
		return nil, errors.New("note store is required")
	}
	logger := config.Logger
	if logger == nil {
		logger = log.Default()
	}
	health := config.Health
	if health == nil {
		if pinger, ok := config.Store.(Pinger); ok {
			health = pinger
		}
	}
	h := &handler{
		store:  config.Store,
		health: health,
		debug:  config.Debug,
		logger: logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+routepath.Root+"{$}", h.handleList)
	mux.HandleFunc("POST "+routepath.Root+"{$}", h.handleCreate)
	mux.Handle(routepath.Root+"{$}", httpx.MethodNotAllowed(http.MethodGet, http.MethodPost))
	mux.HandleFunc("GET "+routepath.Health, h.handleHealth)
	mux.HandleFunc(routepath.Root, h.handleNotFound)

	return httpx.Chain(mux,
		httpx.RecoverPanic(),
		httpx.RequestID(),
		httpx.AccessLog(logger),
	), nil
}

func (h *handler) handleList(w http.ResponseWriter, r *http.Request) {
	printer, lang := i18n.ResolvePrinter(w, r)
	notes, err := h.store.ListNotes(r.Context())
	if err != nil {
		h.writeStorageError(w, r, "list notes", err)
		return
	}

	items := make([]templates.NoteItem, 0, len(notes))
	for _, note := range notes {
		items = append(items, templates.NoteItem{ID: note.ID, Content: note.Content})
	}
	view := templates.NotesView{
		Notes:      items,
		FormAction: routepath.Root,
		MaxLength:  storage.MaxContentLength,
	}
	err = pagerender.WritePage(w, r, printer, pagerender.Page{
		Title: printer.Sprintf("notes.page_title"),
		Lang:  lang,
		Body:  templates.NotesPage(view, printer),
	})
	if err != nil {
		h.writeStorageError(w, r, "render notes", err)
	}
}

func (h *handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := parseNoteForm(r); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			flashnotice.Write(w, r, flashnotice.NoticeError(noticeTooLongKey))
			httpx.WriteRedirect(w, r, routepath.Root)
			return
		}
		weberror.WriteError(w, r, apperrors.EK(apperrors.KindInvalidInput, invalidFormKey, "parse note form: "+err.Error()), h.debug)
		return
	}

	content, err := storage.NormalizeContent(r.PostForm.Get("content"))
	if err == nil {
		_, err = h.store.CreateNote(r.Context(), content)
	}
	switch {
	case err == nil:
		flashnotice.Write(w, r, flashnotice.NoticeSuccess(noticeSavedKey))
	case errors.Is(err, storage.ErrContentRequired):
		flashnotice.Write(w, r, flashnotice.NoticeWarning(noticeEmptyKey))
	case errors.Is(err, storage.ErrContentTooLong):
		flashnotice.Write(w, r, flashnotice.NoticeError(noticeTooLongKey))
	case errors.Is(err, storage.ErrContentInvalid):
		flashnotice.Write(w, r, flashnotice.NoticeError(noticeInvalidKey))
	default:
		h.writeStorageError(w, r, "create note", err)
		return
	}
	httpx.WriteRedirect(w, r, routepath.Root)
}

// parseNoteForm fills r.PostForm from urlencoded or multipart bodies.
func parseNoteForm(r *http.Request) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err == nil && mediaType == "multipart/form-data" {
		return r.ParseMultipartForm(maxFormBytes)
	}
	return r.ParseForm()
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.StoragePing)
		err := h.health.Ping(ctx)
		cancel()
		if err != nil {
			h.logger.Printf("health check failed request_id=%s err=%v", requestctx.RequestIDFromContext(r.Context()), err)
			_ = httpx.WriteText(w, http.StatusServiceUnavailable, "unavailable\n")
			return
		}
	}
	_ = httpx.WriteText(w, http.StatusOK, "ok\n")
}

func (h *handler) handleNotFound(w http.ResponseWriter, r *http.Request) {
	weberror.WriteError(w, r, apperrors.E(apperrors.KindNotFound, "no route for "+r.URL.Path), h.debug)
}

func (h *handler) writeStorageError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.Printf("%s failed request_id=%s err=%v", op, requestctx.RequestIDFromContext(r.Context()), err)
	weberror.WriteError(w, r, apperrors.Wrap(apperrors.KindUnknown, op, err), h.debug)
}
