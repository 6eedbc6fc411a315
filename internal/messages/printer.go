// Package messages renders CLI output through a golang.org/x/text catalog so
// the run report can be printed in the configured language.
package messages

import (
	"fmt"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/itprism/itpcron/internal/constants"
)

var supported = []language.Tag{language.English, language.Russian}

var matcher = language.NewMatcher(supported)

var translations = map[language.Tag]map[string]string{
	language.Russian: {
		constants.MsgTotalTime:   "Общее время обработки: %s сек.",
		constants.MsgModeContext: "контекст %s: %s",
		constants.MsgNotCLI:      "Это приложение только для командной строки.",
		"create":                 "создания",
		"update":                 "обновления",
		"execute":                "выполнения",
	},
}

func newCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, entries := range translations {
		for key, msg := range entries {
			// ключи фиксированы, ошибка возможна только при пустом сообщении
			_ = b.SetString(tag, key, msg)
		}
	}
	return b
}

// Printer writes translated lines to an output sink.
type Printer struct {
	w   io.Writer
	p   *message.Printer
	tag language.Tag
}

// NewPrinter creates a printer for lang ("en", "ru", "ru-RU", ...). Unknown
// languages fall back to English.
func NewPrinter(lang string, w io.Writer) *Printer {
	tag, _ := language.MatchStrings(matcher, lang)
	base, _ := tag.Base()
	tag = language.Make(base.String())

	return &Printer{
		w:   w,
		p:   message.NewPrinter(tag, message.Catalog(newCatalog())),
		tag: tag,
	}
}

// Language returns the matched output language.
func (p *Printer) Language() language.Tag {
	return p.tag
}

// Sprintf translates key and formats it with args.
func (p *Printer) Sprintf(key string, args ...any) string {
	return p.p.Sprintf(key, args...)
}

// Line writes the translated key followed by a newline.
func (p *Printer) Line(key string, args ...any) {
	fmt.Fprintln(p.w, p.p.Sprintf(key, args...))
}

// Raw writes text untranslated followed by a newline.
func (p *Printer) Raw(text string) {
	fmt.Fprintln(p.w, text)
}

// Blank writes an empty line.
func (p *Printer) Blank() {
	fmt.Fprintln(p.w)
}
