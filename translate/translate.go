// Package translate formats user-visible SPU messages for the host locale.
package translate

import (
	"log"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/message"
)

// DEFAULT_LOCALE is used when the host reports no usable locale.
const DEFAULT_LOCALE = "en-US"

var printer *message.Printer

func init() {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("spu: locale: %v", err)
	}

	SetLocales(locales...)
}

// SetLocales selects the message printer from a preference-ordered list of
// BCP 47 locale names. An empty list selects DEFAULT_LOCALE.
func SetLocales(locales ...string) {
	if len(locales) == 0 {
		locales = []string{DEFAULT_LOCALE}
	}

	printer = message.NewPrinter(message.MatchLanguage(locales...))
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return printer.Sprintf(key, args...)
}
