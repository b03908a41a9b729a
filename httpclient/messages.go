package httpclient

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys of the fixed, localized texts.
const (
	msgAuthRequired = "auth_required"
	msgNetwork      = "network_unreachable"
	msgTimeout      = "request_timeout"
	msgGeneric      = "generic_failure"
)

var messages = map[language.Tag]map[string]string{
	language.English: {
		msgAuthRequired: "Your session has expired. Please sign in again.",
		msgNetwork:      "Unable to reach the server. Please check your connection.",
		msgTimeout:      "The request timed out. Please try again.",
		msgGeneric:      "Something went wrong. Please try again.",
	},
	language.Turkish: {
		msgAuthRequired: "Oturumunuzun süresi doldu. Lütfen tekrar giriş yapın.",
		msgNetwork:      "Sunucuya ulaşılamıyor. Lütfen bağlantınızı kontrol edin.",
		msgTimeout:      "İstek zaman aşımına uğradı. Lütfen tekrar deneyin.",
		msgGeneric:      "Bir şeyler ters gitti. Lütfen tekrar deneyin.",
	},
}

// supported lists catalog languages; the first one is the fallback.
var supported = []language.Tag{language.English, language.Turkish}

var (
	messageCatalog = newCatalog()
	matcher        = language.NewMatcher(supported)
)

func newCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, texts := range messages {
		for key, text := range texts {
			if err := b.SetString(tag, key, text); err != nil {
				panic(err)
			}
		}
	}
	return b
}

// newPrinter returns a printer for the best supported match of tag.
func newPrinter(tag language.Tag) *message.Printer {
	_, idx, _ := matcher.Match(tag)
	return message.NewPrinter(supported[idx], message.Catalog(messageCatalog))
}

// SupportedLanguages returns the languages with a message catalog.
func SupportedLanguages() []language.Tag {
	return append([]language.Tag(nil), supported...)
}
