package catalog

import (
	"testing"
	"testing/fstest"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func TestLoadEmbeddedHasExpectedLocales(t *testing.T) {
	bundle, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded catalogs: %v", err)
	}
	for _, locale := range []string{BaseLocale, "pt-BR"} {
		if !bundle.HasLocale(locale) {
			t.Fatalf("expected locale %s", locale)
		}
	}
	if value, ok := bundle.Message("en-US", "Contact deleted!."); !ok || value != "Contact deleted!." {
		t.Fatalf("unexpected delete message %q (%v)", value, ok)
	}
}

func TestMessageFallsBackToBaseLocale(t *testing.T) {
	bundle, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded catalogs: %v", err)
	}
	value, ok := bundle.Message("fr-FR", "datalist.export")
	if !ok || value != "Export" {
		t.Fatalf("fallback = %q (%v), want Export", value, ok)
	}
	if _, ok := bundle.Message("en-US", " "); ok {
		t.Fatal("blank key should not resolve")
	}
}

func TestRegisterFillsMissingKeysFromBase(t *testing.T) {
	bundle, err := LoadFromFS(fstest.MapFS{
		"locales/en-US/core.yaml": {Data: []byte("locale: \"en-US\"\nnamespace: \"core\"\nmessages:\n  \"core.only_base\": \"base text\"\n  \"core.both\": \"en\"\n")},
		"locales/es-ES/core.yaml": {Data: []byte("locale: \"es-ES\"\nnamespace: \"core\"\nmessages:\n  \"core.both\": \"es\"\n")},
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := bundle.Register(); err != nil {
		t.Fatalf("register: %v", err)
	}
	printer := message.NewPrinter(language.MustParse("es-ES"))
	if got := printer.Sprintf("core.only_base"); got != "base text" {
		t.Fatalf("missing key = %q, want base text", got)
	}
	if got := printer.Sprintf("core.both"); got != "es" {
		t.Fatalf("translated key = %q, want es", got)
	}
}

func TestLoadFromFSRejectsInvalidCatalogs(t *testing.T) {
	tests := map[string]fstest.MapFS{
		"core key outside core": {
			"locales/en-US/web.yaml":  {Data: []byte("locale: \"en-US\"\nnamespace: \"web\"\nmessages:\n  \"core.bad\": \"nope\"\n")},
			"locales/en-US/core.yaml": {Data: []byte("locale: \"en-US\"\nnamespace: \"core\"\nmessages:\n  \"core.good\": \"ok\"\n")},
		},
		"duplicate across namespaces": {
			"locales/en-US/core.yaml": {Data: []byte("locale: \"en-US\"\nnamespace: \"core\"\nmessages:\n  \"a.key\": \"a\"\n")},
			"locales/en-US/web.yaml":  {Data: []byte("locale: \"en-US\"\nnamespace: \"web\"\nmessages:\n  \"a.key\": \"b\"\n")},
		},
		"locale mismatch": {
			"locales/en-US/core.yaml": {Data: []byte("locale: \"pt-BR\"\nnamespace: \"core\"\nmessages:\n  \"a\": \"b\"\n")},
		},
		"missing base locale": {
			"locales/pt-BR/core.yaml": {Data: []byte("locale: \"pt-BR\"\nnamespace: \"core\"\nmessages:\n  \"a\": \"b\"\n")},
		},
		"malformed yaml": {
			"locales/en-US/core.yaml": {Data: []byte("locale: [\n")},
		},
		"empty": {},
	}
	for name, fsys := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadFromFS(fsys); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
