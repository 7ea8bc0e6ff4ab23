// Package i18n is the localization provider: it maps message keys to display
// text for the active locale and formats money and dates.
//
// Two locales are supported, Indonesian (the default) and English. Switching
// locale only changes how text is produced; it never touches session data.
package i18n

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Locale is a supported display language.
type Locale string

const (
	Indonesian Locale = "id"
	English    Locale = "en"

	// DefaultLocale is used for new sessions unless configured otherwise.
	DefaultLocale = Indonesian
)

// CurrencySymbol prefixes every money amount.
const CurrencySymbol = "Rp"

// Locales lists the supported locales in display order.
func Locales() []Locale {
	return []Locale{Indonesian, English}
}

// Parse returns the locale named by s (case-insensitive, region ignored, so
// "en-GB" is English).
func Parse(s string) (Locale, bool) {
	base, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "-")
	switch Locale(base) {
	case Indonesian:
		return Indonesian, true
	case English:
		return English, true
	}
	return "", false
}

// Tag returns the BCP 47 tag of l.
func (l Locale) Tag() language.Tag {
	if l == English {
		return language.English
	}
	return language.Indonesian
}

// Label is the name of the locale in its own language.
func (l Locale) Label() string {
	if l == English {
		return "English"
	}
	return "Indonesia"
}

// Amounts are always Rupiah, grouped the Indonesian way in both locales.
var moneyPrinter = message.NewPrinter(language.Indonesian)

// Localizer produces display text for one locale. It is safe for concurrent
// use.
type Localizer struct {
	locale  Locale
	printer *message.Printer
}

// New returns a Localizer for l. Unknown locales fall back to DefaultLocale.
func New(l Locale) *Localizer {
	if _, ok := Parse(string(l)); !ok {
		l = DefaultLocale
	}
	return &Localizer{
		locale:  l,
		printer: message.NewPrinter(l.Tag(), message.Catalog(messageCatalog)),
	}
}

// Locale returns the localizer's locale.
func (l *Localizer) Locale() Locale {
	return l.locale
}

// T returns the message for key formatted with args.
func (l *Localizer) T(key string, args ...any) string {
	return l.printer.Sprintf(key, args...)
}

// Money formats v as "Rp 28.500" (at most two fraction digits).
func (l *Localizer) Money(v float64) string {
	return CurrencySymbol + " " + moneyPrinter.Sprint(number.Decimal(v, number.MaxFractionDigits(2)))
}

// Percent formats a percentage value without the sign ("10", "12.5").
func (l *Localizer) Percent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// LongDate formats t as "Jumat, 16 Oktober 2026".
func (l *Localizer) LongDate(t time.Time) string {
	return fmt.Sprintf("%s, %d %s %d",
		weekdays[l.locale][t.Weekday()],
		t.Day(),
		months[l.locale][t.Month()-1],
		t.Year(),
	)
}

// DisplayName returns name, or the ordinal fallback ("Orang 2") when name is
// empty. index is zero-based.
func (l *Localizer) DisplayName(name string, index int) string {
	if name != "" {
		return name
	}
	return l.T("person.fallback", index+1)
}

var foldAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// ASCIIFold strips accents ("Café" becomes "Cafe") and replaces anything that
// is still outside printable ASCII with '?'. Raster fonts only carry ASCII
// glyphs.
func ASCIIFold(s string) string {
	folded, _, err := transform.String(foldAccents, s)
	if err != nil {
		folded = s
	}
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7e {
			return '?'
		}
		return r
	}, folded)
}
