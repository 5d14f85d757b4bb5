package i18n

import (
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	registerEnglish(language.AmericanEnglish)
	registerPortuguese(language.BrazilianPortuguese)
}

func registerEnglish(lang language.Tag) {
	message.SetString(lang, "notes.page_title", "Notes")
	message.SetString(lang, "notes.heading", "My Notes")
	message.SetString(lang, "notes.form.label", "New note")
	message.SetString(lang, "notes.form.placeholder", "Write a note")
	message.SetString(lang, "notes.form.submit", "Add note")
	message.SetString(lang, "notes.form.hint", "Up to %d characters.")
	message.SetString(lang, "notes.empty", "Nothing here yet. Add your first note above.")
	_ = message.Set(lang, "notes.count", plural.Selectf(1, "%d",
		"=0", "No notes",
		"one", "1 note",
		"other", "%d notes",
	))

	message.SetString(lang, "notes.flash.saved", "Note saved.")
	message.SetString(lang, "notes.flash.empty", "Write something before saving.")
	message.SetString(lang, "notes.flash.invalid", "That note contains characters that cannot be saved.")
	message.SetString(lang, "notes.error.invalid_form", "The note form could not be read. Please try again.")
	message.SetString(lang, "notes.flash.too_long", "That note is too long. Keep it to 200 characters or fewer.")

	message.SetString(lang, "error.page_title_server_error", "Something went wrong")
	message.SetString(lang, "error.title_server_error", "Something went wrong")
	message.SetString(lang, "error.message_server_error", "Your notes could not be reached right now. Please try again.")
	message.SetString(lang, "error.page_title_not_found", "Page not found")
	message.SetString(lang, "error.title_not_found", "Page not found")
	message.SetString(lang, "error.message_not_found", "There is nothing at this address.")
	message.SetString(lang, "error.action_back", "Back to notes")
	message.SetString(lang, "error.debug_detail", "Debug detail")
}

func registerPortuguese(lang language.Tag) {
	message.SetString(lang, "notes.page_title", "Notas")
	message.SetString(lang, "notes.heading", "Minhas notas")
	message.SetString(lang, "notes.form.label", "Nova nota")
	message.SetString(lang, "notes.form.placeholder", "Escreva uma nota")
	message.SetString(lang, "notes.form.submit", "Adicionar nota")
	message.SetString(lang, "notes.form.hint", "Até %d caracteres.")
	message.SetString(lang, "notes.empty", "Nada por aqui ainda. Adicione sua primeira nota acima.")
	_ = message.Set(lang, "notes.count", plural.Selectf(1, "%d",
		"=0", "Nenhuma nota",
		"one", "1 nota",
		"other", "%d notas",
	))

	message.SetString(lang, "notes.flash.saved", "Nota salva.")
	message.SetString(lang, "notes.flash.empty", "Escreva algo antes de salvar.")
	message.SetString(lang, "notes.flash.invalid", "Essa nota contém caracteres que não podem ser salvos.")
	message.SetString(lang, "notes.error.invalid_form", "Não foi possível ler o formulário. Tente novamente.")
	message.SetString(lang, "notes.flash.too_long", "Essa nota é longa demais. Use no máximo 200 caracteres.")

	message.SetString(lang, "error.page_title_server_error", "Algo deu errado")
	message.SetString(lang, "error.title_server_error", "Algo deu errado")
	message.SetString(lang, "error.message_server_error", "Não foi possível acessar suas notas agora. Tente novamente.")
	message.SetString(lang, "error.page_title_not_found", "Página não encontrada")
	message.SetString(lang, "error.title_not_found", "Página não encontrada")
	message.SetString(lang, "error.message_not_found", "Não há nada neste endereço.")
	message.SetString(lang, "error.action_back", "Voltar para as notas")
	message.SetString(lang, "error.debug_detail", "Detalhe de depuração")
}
