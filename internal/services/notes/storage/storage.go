// Package storage defines persistence contracts for notes.
package storage

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"
)

// MaxContentLength is the maximum number of characters a note may hold.
const MaxContentLength = 200

var (
	// ErrContentRequired indicates a note with no content after trimming.
	ErrContentRequired = errors.New("note content is required")
	// ErrContentTooLong indicates content longer than MaxContentLength characters.
	ErrContentTooLong = errors.New("note content is too long")
	// ErrContentInvalid indicates content that is not valid UTF-8 or holds NUL bytes.
	ErrContentInvalid = errors.New("note content is not valid text")
)

// Note is one persisted note. ID is assigned by the backend on insert and
// doubles as the creation-order marker.
type Note struct {
	ID      int64
	Content string
}

// NoteStore persists notes. Notes are append-only.
type NoteStore interface {
	// CreateNote inserts content and returns the stored note with its ID.
	CreateNote(ctx context.Context, content string) (Note, error)
	// ListNotes returns every note, most recently created first.
	ListNotes(ctx context.Context) ([]Note, error)
}

// NormalizeContent trims surrounding whitespace and validates the result.
// NUL and invalid UTF-8 are rejected since backends count or store them
// differently.
func NormalizeContent(raw string) (string, error) {
	if !utf8.ValidString(raw) || strings.ContainsRune(raw, 0) {
		return "", ErrContentInvalid
	}
	content := strings.TrimSpace(raw)
	if content == "" {
		return "", ErrContentRequired
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return "", ErrContentTooLong
	}
	return content, nil
}

// IsValidationError reports whether err came from content validation rather
// than the backend.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrContentRequired) ||
		errors.Is(err, ErrContentTooLong) ||
		errors.Is(err, ErrContentInvalid)
}
