// Package flash carries at most one notice from a POST to the page rendered
// after its redirect. The notice rides in a short-lived cookie holding its
// kind and catalog key, never user text.
package flash

import (
	"encoding/base64"
	"net/http"
	"strings"
)

// CookieName is the cookie used for one-time notices.
const CookieName = "notepad_flash"

// separator splits kind from key inside the cookie payload. Catalog keys
// never contain it.
const separator = "|"

// Kind selects how a notice is styled.
type Kind string

const (
	KindSuccess Kind = "success"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
)

var knownKinds = map[Kind]bool{
	KindSuccess: true,
	KindWarning: true,
	KindError:   true,
}

// Notice references one catalog message.
type Notice struct {
	Kind Kind
	Key  string
}

// NoticeSuccess, NoticeWarning, and NoticeError build a Notice of their kind.
func NoticeSuccess(key string) Notice { return Notice{Kind: KindSuccess, Key: key} }
func NoticeWarning(key string) Notice { return Notice{Kind: KindWarning, Key: key} }
func NoticeError(key string) Notice   { return Notice{Kind: KindError, Key: key} }

// Write replaces any pending notice with notice. Invalid notices are dropped.
func Write(w http.ResponseWriter, r *http.Request, notice Notice) {
	if w == nil {
		return
	}
	value, ok := encode(notice)
	if !ok {
		return
	}
	setCookie(w, r, value, 0)
}

// ReadAndClear returns the pending notice, if any, and expires the cookie.
// A cookie that fails to decode is still expired.
func ReadAndClear(w http.ResponseWriter, r *http.Request) (Notice, bool) {
	if r == nil {
		return Notice{}, false
	}
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return Notice{}, false
	}
	Clear(w, r)
	return decode(cookie.Value)
}

// Clear expires the notice cookie.
func Clear(w http.ResponseWriter, r *http.Request) {
	if w == nil {
		return
	}
	setCookie(w, r, "", -1)
}

func setCookie(w http.ResponseWriter, r *http.Request, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   overTLS(r),
		SameSite: http.SameSiteLaxMode,
	})
}

// overTLS trusts only the connection; forwarding headers are ignored.
func overTLS(r *http.Request) bool {
	switch {
	case r == nil:
		return false
	case r.TLS != nil:
		return true
	default:
		return r.URL != nil && strings.EqualFold(r.URL.Scheme, "https")
	}
}

func encode(notice Notice) (string, bool) {
	notice, ok := normalize(notice)
	if !ok {
		return "", false
	}
	payload := string(notice.Kind) + separator + notice.Key
	return base64.RawURLEncoding.EncodeToString([]byte(payload)), true
}

func decode(value string) (Notice, bool) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(value))
	if err != nil {
		return Notice{}, false
	}
	kind, key, found := strings.Cut(string(raw), separator)
	if !found {
		return Notice{}, false
	}
	return normalize(Notice{Kind: Kind(kind), Key: key})
}

func normalize(notice Notice) (Notice, bool) {
	notice.Kind = Kind(strings.ToLower(strings.TrimSpace(string(notice.Kind))))
	notice.Key = strings.TrimSpace(notice.Key)
	if !knownKinds[notice.Kind] || notice.Key == "" || strings.Contains(notice.Key, separator) {
		return Notice{}, false
	}
	return notice, true
}
