package i18n

import (
	"testing"

	apperrors "github.com/louisbranch/savepoint/internal/platform/errors"
)

func TestGetCatalogFallback(t *testing.T) {
	base := GetCatalog("en-US")
	if base == nil {
		t.Fatal("expected base catalog")
	}
	for _, locale := range []string{"", "missing-locale", "xx-YY"} {
		if got := GetCatalog(locale); got != base {
			t.Fatalf("expected fallback to en-US for %q, got %q", locale, got.Locale())
		}
	}
}

func TestGetCatalogMatchesPortuguese(t *testing.T) {
	cat := GetCatalog("pt-BR")
	if cat.Locale() != "pt-BR" {
		t.Fatalf("expected pt-BR, got %q", cat.Locale())
	}
	if got := cat.Format(KeyLoaded, 0); got != "Espaço 1 carregado." {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestFormatUsesOneBasedSlot(t *testing.T) {
	cat := GetCatalog(BaseLocale)
	if got := cat.Format(KeySaved, 2); got != "Game saved to slot 3." {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestFormatUnknownKey(t *testing.T) {
	if got := GetCatalog(BaseLocale).Format("NOPE", 0); got != "NOPE" {
		t.Fatalf("expected key fallback, got %q", got)
	}
}

func TestEveryCodeHasMessages(t *testing.T) {
	for _, code := range append(apperrors.Codes(), apperrors.CodeUnknown) {
		if _, ok := enUS[string(code)]; !ok {
			t.Fatalf("missing en-US message for %s", code)
		}
		if _, ok := ptBR[string(code)]; !ok {
			t.Fatalf("missing pt-BR message for %s", code)
		}
	}
}
