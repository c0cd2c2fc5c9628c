// Package i18n renders user-facing notification text for save outcomes and
// error codes.
//
// Messages are printf-style formats registered with golang.org/x/text so the
// slot number is localized along with the text. Every message takes exactly
// one argument: the 1-based slot number shown to the player.
package i18n

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// BaseLocale is the locale used when a requested locale is not supported.
const BaseLocale = "en-US"

// Outcome keys share the key space with error codes.
const (
	KeySaved      = "SAVE_OK"
	KeyAutoSaved  = "AUTOSAVE_OK"
	KeyQuickSaved = "QUICKSAVE_OK"
	KeyLoaded     = "LOAD_OK"
	KeyDeleted    = "DELETE_OK"
)

// Catalog renders messages for one resolved locale.
type Catalog struct {
	locale  string
	printer *message.Printer
}

var (
	supported = []language.Tag{
		language.MustParse(BaseLocale),
		language.MustParse("pt-BR"),
	}
	matcher = language.NewMatcher(supported)

	builderOnce sync.Once
	builder     *catalog.Builder
	builderErr  error

	catalogsMu sync.Mutex
	catalogs   = map[string]*Catalog{}
)

// GetCatalog returns the catalog closest to locale, falling back to en-US.
func GetCatalog(locale string) *Catalog {
	requested := strings.TrimSpace(locale)
	if requested == "" {
		requested = BaseLocale
	}
	_, index, confidence := matcher.Match(parseOrBase(requested))
	if confidence == language.No {
		index = 0
	}
	tag := supported[index]

	catalogsMu.Lock()
	defer catalogsMu.Unlock()
	if c, ok := catalogs[tag.String()]; ok {
		return c
	}
	c := &Catalog{
		locale:  tag.String(),
		printer: message.NewPrinter(tag, message.Catalog(mustBuilder())),
	}
	catalogs[tag.String()] = c
	return c
}

// Locale returns the resolved locale of this catalog.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders key for the given zero-based slot index.
// Unknown keys render as the key itself.
func (c *Catalog) Format(key string, slot int) string {
	if !knownKey(key) {
		return key
	}
	return c.printer.Sprintf(key, slot+1)
}

// Supported lists the locales with registered messages.
func Supported() []string {
	out := make([]string, 0, len(supported))
	for _, tag := range supported {
		out = append(out, tag.String())
	}
	return out
}

func parseOrBase(locale string) language.Tag {
	tag, err := language.Parse(locale)
	if err != nil {
		return supported[0]
	}
	return tag
}

func knownKey(key string) bool {
	_, ok := enUS[key]
	return ok
}

func mustBuilder() *catalog.Builder {
	builderOnce.Do(func() {
		builder, builderErr = buildCatalog(map[string]map[string]string{
			BaseLocale: enUS,
			"pt-BR":    ptBR,
		})
	})
	if builderErr != nil {
		panic(builderErr)
	}
	return builder
}

func buildCatalog(locales map[string]map[string]string) (*catalog.Builder, error) {
	b := catalog.NewBuilder(catalog.Fallback(supported[0]))
	for locale, messages := range locales {
		tag, err := language.Parse(locale)
		if err != nil {
			return nil, fmt.Errorf("parse locale tag %q: %w", locale, err)
		}
		for key, msg := range messages {
			if err := b.SetString(tag, key, msg); err != nil {
				return nil, fmt.Errorf("register %s/%s: %w", locale, key, err)
			}
		}
	}
	return b, nil
}
