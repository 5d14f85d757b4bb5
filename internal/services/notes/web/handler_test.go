package web

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/louisbranch/notepad/internal/services/notes/storage"
	"github.com/louisbranch/notepad/internal/services/notes/storage/sqlstore"
	flashnotice "github.com/louisbranch/notepad/internal/services/notes/web/platform/flash"
)

type fakeNoteStore struct {
	mu        sync.Mutex
	notes     []storage.Note
	nextID    int64
	createErr error
	listErr   error
	pingErr   error
	creates   int
}

func (s *fakeNoteStore) CreateNote(_ context.Context, content string) (storage.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates++
	if s.createErr != nil {
		return storage.Note{}, s.createErr
	}
	s.nextID++
	note := storage.Note{ID: s.nextID, Content: content}
	s.notes = append(s.notes, note)
	return note, nil
}

func (s *fakeNoteStore) ListNotes(context.Context) ([]storage.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]storage.Note, 0, len(s.notes))
	for idx := len(s.notes) - 1; idx >= 0; idx-- {
		out = append(out, s.notes[idx])
	}
	return out, nil
}

func (s *fakeNoteStore) Ping(context.Context) error {
	return s.pingErr
}

func newTestHandler(t *testing.T, config Config) http.Handler {
	t.Helper()
	if config.Logger == nil {
		config.Logger = log.New(io.Discard, "", 0)
	}
	h, err := NewHandler(config)
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	return h
}

func newSQLiteHandler(t *testing.T) http.Handler {
	t.Helper()
	store, err := sqlstore.Open(context.Background(), filepath.Join(t.TempDir(), "notes.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return newTestHandler(t, Config{Store: store})
}

func postNote(t *testing.T, h http.Handler, content string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"content": {content}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func postMultipartNote(t *testing.T, h http.Handler, content string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("content", content); err != nil {
		t.Fatalf("write field: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func flashCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range rr.Result().Cookies() {
		if cookie.Name == flashnotice.CookieName {
			return cookie
		}
	}
	t.Fatalf("no %s cookie in %q", flashnotice.CookieName, rr.Header().Values("Set-Cookie"))
	return nil
}

func getPage(t *testing.T, h http.Handler, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func noteCount(body string) int {
	return strings.Count(body, `<li id="note-`)
}

func TestNewHandlerRequiresStore(t *testing.T) {
	t.Parallel()

	if _, err := NewHandler(Config{}); err == nil {
		t.Fatal("expected error for missing store")
	}
}

func TestPostRedirectsAndListsNewestFirst(t *testing.T) {
	t.Parallel()

	h := newSQLiteHandler(t)
	for _, content := range []string{"Buy milk", "Call mom"} {
		rr := postNote(t, h, content)
		if rr.Code != http.StatusSeeOther {
			t.Fatalf("POST status = %d, want %d", rr.Code, http.StatusSeeOther)
		}
		if got := rr.Header().Get("Location"); got != "/" {
			t.Fatalf("Location = %q, want /", got)
		}
	}

	rr := getPage(t, h)
	if rr.Code != http.StatusOK {
		t.Fatalf("GET status = %d, want %d", rr.Code, http.StatusOK)
	}
	body := rr.Body.String()
	callMom := strings.Index(body, "Call mom")
	buyMilk := strings.Index(body, "Buy milk")
	if callMom < 0 || buyMilk < 0 || callMom > buyMilk {
		t.Fatalf("expected Call mom above Buy milk in %q", body)
	}
	if !strings.Contains(body, "2 notes") {
		t.Fatalf("expected note count in %q", body)
	}
}

func TestListsManySubmissionsInReverseOrder(t *testing.T) {
	t.Parallel()

	h := newSQLiteHandler(t)
	contents := []string{"first", "second", "third", "fourth", "fifth"}
	for _, content := range contents {
		postNote(t, h, content)
	}

	body := getPage(t, h).Body.String()
	last := -1
	for idx := len(contents) - 1; idx >= 0; idx-- {
		pos := strings.Index(body, ">"+contents[idx]+"</li>")
		if pos < 0 {
			t.Fatalf("missing %q in %q", contents[idx], body)
		}
		if pos < last {
			t.Fatalf("%q rendered out of order", contents[idx])
		}
		last = pos
	}
}

func TestEmptySubmissionDoesNotInsert(t *testing.T) {
	t.Parallel()

	store := &fakeNoteStore{}
	h := newTestHandler(t, Config{Store: store})
	postNote(t, h, "Buy milk")

	for _, content := range []string{"", "   ", "\n\t"} {
		rr := postNote(t, h, content)
		if rr.Code != http.StatusSeeOther {
			t.Fatalf("POST %q status = %d, want %d", content, rr.Code, http.StatusSeeOther)
		}
		cookie, err := http.ParseSetCookie(rr.Header().Get("Set-Cookie"))
		if err != nil {
			t.Fatalf("ParseSetCookie() error = %v", err)
		}
		if cookie.Name != flashnotice.CookieName {
			t.Fatalf("cookie = %q, want flash cookie", cookie.Name)
		}
	}
	if store.creates != 1 {
		t.Fatalf("creates = %d, want 1", store.creates)
	}
	if got := noteCount(getPage(t, h).Body.String()); got != 1 {
		t.Fatalf("rendered notes = %d, want 1", got)
	}
}

func TestEmptySubmissionShowsNoticeOnce(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, Config{Store: &fakeNoteStore{}})
	rr := postNote(t, h, "")
	cookie, err := http.ParseSetCookie(rr.Header().Get("Set-Cookie"))
	if err != nil {
		t.Fatalf("ParseSetCookie() error = %v", err)
	}

	withNotice := getPage(t, h, cookie)
	if !strings.Contains(withNotice.Body.String(), "Write something before saving.") {
		t.Fatalf("expected empty notice in %q", withNotice.Body.String())
	}
	cleared, err := http.ParseSetCookie(withNotice.Header().Get("Set-Cookie"))
	if err != nil {
		t.Fatalf("ParseSetCookie() error = %v", err)
	}
	if cleared.MaxAge >= 0 {
		t.Fatalf("expected flash cookie to expire, got %+v", cleared)
	}

	if strings.Contains(getPage(t, h).Body.String(), "toast") {
		t.Fatal("notice rendered without cookie")
	}
}

func TestOverLengthSubmissionIsRejected(t *testing.T) {
	t.Parallel()

	h := newSQLiteHandler(t)
	rr := postNote(t, h, strings.Repeat("a", storage.MaxContentLength+1))
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("POST status = %d, want %d", rr.Code, http.StatusSeeOther)
	}
	cookie, err := http.ParseSetCookie(rr.Header().Get("Set-Cookie"))
	if err != nil {
		t.Fatalf("ParseSetCookie() error = %v", err)
	}

	body := getPage(t, h, cookie).Body.String()
	if got := noteCount(body); got != 0 {
		t.Fatalf("rendered notes = %d, want 0", got)
	}
	if !strings.Contains(body, `class="toast toast-error"`) {
		t.Fatalf("expected error notice in %q", body)
	}
}

func TestMaxLengthMultibyteSubmissionIsStored(t *testing.T) {
	t.Parallel()

	h := newSQLiteHandler(t)
	content := strings.Repeat("é", storage.MaxContentLength)
	postNote(t, h, content)
	if !strings.Contains(getPage(t, h).Body.String(), content) {
		t.Fatal("expected 200 multibyte characters to be stored")
	}
}

func TestSubmissionIsTrimmed(t *testing.T) {
	t.Parallel()

	store := &fakeNoteStore{}
	h := newTestHandler(t, Config{Store: store})
	postNote(t, h, "  Buy milk \n")
	if len(store.notes) != 1 || store.notes[0].Content != "Buy milk" {
		t.Fatalf("notes = %+v, want trimmed Buy milk", store.notes)
	}
}

func TestRepeatedGetIsIdempotent(t *testing.T) {
	t.Parallel()

	h := newSQLiteHandler(t)
	postNote(t, h, "Buy milk")

	first := getPage(t, h).Body.String()
	second := getPage(t, h).Body.String()
	if first != second {
		t.Fatalf("bodies differ:\n%s\n%s", first, second)
	}
}

func TestGetEmptyPage(t *testing.T) {
	t.Parallel()

	rr := getPage(t, newTestHandler(t, Config{Store: &fakeNoteStore{}}))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "Nothing here yet.") || !strings.Contains(body, `name="content"`) {
		t.Fatalf("unexpected empty page %q", body)
	}
}

func TestContentIsEscaped(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, Config{Store: &fakeNoteStore{}})
	postNote(t, h, `<img src=x onerror=alert(1)>`)
	body := getPage(t, h).Body.String()
	if strings.Contains(body, "<img") {
		t.Fatalf("note content rendered unescaped: %q", body)
	}
}

func TestStorageErrorsRenderServerError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		store *fakeNoteStore
		do    func(*testing.T, http.Handler) *httptest.ResponseRecorder
	}{
		{
			name:  "list",
			store: &fakeNoteStore{listErr: errors.New("no such table: notes")},
			do:    func(t *testing.T, h http.Handler) *httptest.ResponseRecorder { return getPage(t, h) },
		},
		{
			name:  "create",
			store: &fakeNoteStore{createErr: errors.New("no such table: notes")},
			do:    func(t *testing.T, h http.Handler) *httptest.ResponseRecorder { return postNote(t, h, "Buy milk") },
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rr := tc.do(t, newTestHandler(t, Config{Store: tc.store}))
			if rr.Code != http.StatusInternalServerError {
				t.Fatalf("status = %d, want %d", rr.Code, http.StatusInternalServerError)
			}
			if rr.Header().Get("Location") != "" {
				t.Fatal("storage failure must not redirect")
			}
			if strings.Contains(rr.Body.String(), "no such table") {
				t.Fatalf("error detail leaked without debug: %q", rr.Body.String())
			}
		})
	}
}

func TestStorageErrorDetailInDebug(t *testing.T) {
	t.Parallel()

	store := &fakeNoteStore{listErr: errors.New("no such table: notes")}
	rr := getPage(t, newTestHandler(t, Config{Store: store, Debug: true}))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusInternalServerError)
	}
	if !strings.Contains(rr.Body.String(), "list notes: no such table: notes") {
		t.Fatalf("expected debug detail in %q", rr.Body.String())
	}
}

func TestUnsupportedMethod(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, Config{Store: &fakeNoteStore{}})
	for _, method := range []string{http.MethodPut, http.MethodDelete, http.MethodPatch} {
		req := httptest.NewRequest(method, "/", nil)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s status = %d, want %d", method, rr.Code, http.StatusMethodNotAllowed)
		}
		if got := rr.Header().Get("Allow"); got != "GET, POST" {
			t.Fatalf("%s Allow = %q", method, got)
		}
	}
}

func TestUnknownPathRendersNotFound(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, Config{Store: &fakeNoteStore{}})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/notes/1", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
	if !strings.Contains(rr.Body.String(), "Page not found") {
		t.Fatalf("expected not found page in %q", rr.Body.String())
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		config     Config
		wantStatus int
	}{
		{name: "store pinger ok", config: Config{Store: &fakeNoteStore{}}, wantStatus: http.StatusOK},
		{name: "store pinger down", config: Config{Store: &fakeNoteStore{pingErr: errors.New("down")}}, wantStatus: http.StatusServiceUnavailable},
		{
			name:       "explicit pinger wins",
			config:     Config{Store: &fakeNoteStore{pingErr: errors.New("down")}, Health: &fakeNoteStore{}},
			wantStatus: http.StatusOK,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rr := httptest.NewRecorder()
			newTestHandler(t, tc.config).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			if rr.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tc.wantStatus)
			}
		})
	}
}

func TestResponsesCarryRequestID(t *testing.T) {
	t.Parallel()

	rr := getPage(t, newTestHandler(t, Config{Store: &fakeNoteStore{}}))
	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected request id header")
	}
}

func TestPageIsLocalized(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, Config{Store: &fakeNoteStore{}})
	req := httptest.NewRequest(http.MethodGet, "/?lang=pt-BR", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	body := rr.Body.String()
	if !strings.Contains(body, "Minhas notas") || !strings.Contains(body, `lang="pt-BR"`) {
		t.Fatalf("expected portuguese page in %q", body)
	}
}

func TestMultipartSubmissionIsStored(t *testing.T) {
	t.Parallel()

	store := &fakeNoteStore{}
	h := newTestHandler(t, Config{Store: store})
	rr := postMultipartNote(t, h, "Buy milk")
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("POST status = %d, want %d", rr.Code, http.StatusSeeOther)
	}
	if len(store.notes) != 1 || store.notes[0].Content != "Buy milk" {
		t.Fatalf("notes = %+v, want one Buy milk", store.notes)
	}
	if !strings.Contains(getPage(t, h).Body.String(), "Buy milk") {
		t.Fatal("expected multipart note on the page")
	}
}

func TestMultipartEmptySubmissionDoesNotInsert(t *testing.T) {
	t.Parallel()

	store := &fakeNoteStore{}
	h := newTestHandler(t, Config{Store: store})
	postMultipartNote(t, h, "  ")
	if store.creates != 0 {
		t.Fatalf("creates = %d, want 0", store.creates)
	}
}

func TestSuccessfulSubmissionShowsSavedNotice(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, Config{Store: &fakeNoteStore{}})
	cookie := flashCookie(t, postNote(t, h, "Buy milk"))

	body := getPage(t, h, cookie).Body.String()
	if !strings.Contains(body, `class="toast toast-success"`) || !strings.Contains(body, "Note saved.") {
		t.Fatalf("expected saved notice in %q", body)
	}
}

func TestOversizedBodyRedirectsWithTooLongNotice(t *testing.T) {
	t.Parallel()

	store := &fakeNoteStore{}
	h := newTestHandler(t, Config{Store: store})
	rr := postNote(t, h, strings.Repeat("a", maxFormBytes+1))
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("POST status = %d, want %d", rr.Code, http.StatusSeeOther)
	}
	if store.creates != 0 {
		t.Fatalf("creates = %d, want 0", store.creates)
	}
	body := getPage(t, h, flashCookie(t, rr)).Body.String()
	if !strings.Contains(body, "That note is too long.") {
		t.Fatalf("expected too-long notice in %q", body)
	}
}

func TestNulContentIsRejected(t *testing.T) {
	t.Parallel()

	h := newSQLiteHandler(t)
	rr := postNote(t, h, "Buy\x00milk")
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("POST status = %d, want %d", rr.Code, http.StatusSeeOther)
	}
	body := getPage(t, h, flashCookie(t, rr)).Body.String()
	if got := noteCount(body); got != 0 {
		t.Fatalf("rendered notes = %d, want 0", got)
	}
	if !strings.Contains(body, "cannot be saved") {
		t.Fatalf("expected invalid-text notice in %q", body)
	}
}

func TestMalformedFormIsBadRequest(t *testing.T) {
	t.Parallel()

	store := &fakeNoteStore{}
	h := newTestHandler(t, Config{Store: store})
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("content=%zz"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
	if !strings.Contains(rr.Body.String(), "could not be read") {
		t.Fatalf("expected localized form error in %q", rr.Body.String())
	}
	if store.creates != 0 {
		t.Fatalf("creates = %d, want 0", store.creates)
	}
}
