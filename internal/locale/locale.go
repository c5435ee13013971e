// Package locale holds the translated text shown to unsupported clients.
package locale

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

const unsupportedClient = "This page must be opened from the %s web browser."

var (
	cat     = catalog.NewBuilder(catalog.Fallback(language.English))
	matcher language.Matcher
	tags    []language.Tag
)

func init() {
	for _, e := range []struct {
		tag language.Tag
		msg string
	}{
		{language.English, unsupportedClient},
		{language.Spanish, "Esta página debe abrirse desde el navegador web de %s."},
		{language.French, "Cette page doit être ouverte depuis le navigateur web de %s."},
		{language.German, "Diese Seite muss im Webbrowser von %s geöffnet werden."},
		{language.Italian, "Questa pagina deve essere aperta dal browser web di %s."},
		{language.Japanese, "このページは%sのウェブブラウザで開いてください。"},
	} {
		if err := cat.SetString(e.tag, unsupportedClient, e.msg); err != nil {
			panic(err)
		}
		tags = append(tags, e.tag)
	}
	matcher = language.NewMatcher(tags)
}

// Tag returns the supported language closest to lang, which may be any
// BCP 47 string such as "es-MX". Unparseable input selects English.
func Tag(lang string) language.Tag {
	t, err := language.Parse(lang)
	if err != nil {
		return language.English
	}
	_, idx, conf := matcher.Match(t)
	if conf == language.No {
		return language.English
	}
	return tags[idx]
}

// Warning returns the unsupported-client message in the language closest to
// lang, naming client as the expected browser.
func Warning(lang, client string) string {
	p := message.NewPrinter(Tag(lang), message.Catalog(cat))
	return p.Sprintf(unsupportedClient, client)
}
