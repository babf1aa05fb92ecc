package i18n

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var dateLayouts = map[language.Tag]string{
	language.AmericanEnglish:     "01/02/2006",
	language.BrazilianPortuguese: "02/01/2006",
}

// Formatter renders dates and flags for one language.
type Formatter struct {
	tag     language.Tag
	printer *message.Printer
}

// NewFormatter builds a formatter for tag.
func NewFormatter(tag language.Tag) Formatter {
	return Formatter{tag: tag, printer: Printer(tag)}
}

// Date formats t as a short local date.
func (f Formatter) Date(t time.Time) string {
	layout, ok := dateLayouts[f.tag]
	if !ok {
		layout = dateLayouts[Default()]
	}
	return t.Local().Format(layout)
}

// Bool formats value as a localized yes or no.
func (f Formatter) Bool(value bool) string {
	if value {
		return f.printer.Sprintf("core.yes")
	}
	return f.printer.Sprintf("core.no")
}
