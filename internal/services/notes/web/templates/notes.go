package templates

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// NoteItem is one rendered note.
type NoteItem struct {
	ID      int64
	Content string
}

// NotesView is the data for the notes page body.
type NotesView struct {
	Notes      []NoteItem
	FormAction string
	MaxLength  int
}

// NotesPage renders the submission form followed by notes in the given order.
func NotesPage(view NotesView, loc Localizer) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		action := view.FormAction
		if action == "" {
			action = "/"
		}
		hw := &htmlWriter{w: w}

		hw.raw(`<header class="notes-header"><h1>`)
		hw.text(T(loc, "notes.heading"))
		hw.raw(`</h1><p class="notes-count">`)
		hw.text(T(loc, "notes.count", len(view.Notes)))
		hw.raw("</p></header>")

		hw.raw(`<form class="note-form" method="post"`)
		hw.attr("action", action)
		hw.raw(`><label for="content">`)
		hw.text(T(loc, "notes.form.label"))
		hw.raw(`</label><textarea id="content" name="content" rows="3" required`)
		if view.MaxLength > 0 {
			hw.attr("maxlength", strconv.Itoa(view.MaxLength))
		}
		hw.attr("placeholder", T(loc, "notes.form.placeholder"))
		hw.raw("></textarea>")
		if view.MaxLength > 0 {
			hw.raw(`<small class="note-form-hint">`)
			hw.text(T(loc, "notes.form.hint", view.MaxLength))
			hw.raw("</small>")
		}
		hw.raw(`<button type="submit">`)
		hw.text(T(loc, "notes.form.submit"))
		hw.raw("</button></form>")

		if len(view.Notes) == 0 {
			hw.raw(`<p class="notes-empty">`)
			hw.text(T(loc, "notes.empty"))
			hw.raw("</p>")
			return hw.err
		}

		hw.raw(`<ul class="notes">`)
		for _, note := range view.Notes {
			hw.raw("<li")
			hw.attr("id", "note-"+strconv.FormatInt(note.ID, 10))
			hw.raw(">")
			hw.text(note.Content)
			hw.raw("</li>")
		}
		hw.raw("</ul>")
		return hw.err
	})
}
