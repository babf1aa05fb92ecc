package main

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	i18ncatalog "github.com/louisbranch/backoffice/internal/platform/i18n/catalog"
)

func TestEmbeddedCatalogsAreComplete(t *testing.T) {
	bundle, err := i18ncatalog.LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded catalogs: %v", err)
	}
	rep, err := buildReport(bundle, i18ncatalog.BaseLocale)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	for _, status := range rep.Locales {
		if !status.complete() {
			t.Errorf("locale %s misses keys: %v", status.Locale, status.MissingKeys)
		}
	}
}

func TestBuildReport(t *testing.T) {
	bundle, err := i18ncatalog.LoadFromFS(fstest.MapFS{
		"locales/en-US/core.yaml": {Data: []byte("locale: \"en-US\"\nnamespace: \"core\"\nmessages:\n  \"core.a\": \"a\"\n  \"core.b\": \"b\"\n")},
		"locales/pt-BR/core.yaml": {Data: []byte("locale: \"pt-BR\"\nnamespace: \"core\"\nmessages:\n  \"core.a\": \"a\"\n  \"core.c\": \"c\"\n")},
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	rep, err := buildReport(bundle, "en-US")
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	want := report{
		BaseLocale: "en-US",
		Locales: []localeStatus{
			{Locale: "en-US", BaseKeys: 2, Translated: 2, Completion: 100},
			{Locale: "pt-BR", BaseKeys: 2, Translated: 1, Completion: 50, MissingKeys: []string{"core.b"}, ExtraKeys: []string{"core.c"}},
		},
	}
	if diff := cmp.Diff(want, rep); diff != "" {
		t.Fatalf("report mismatch (-want +got):\n%s", diff)
	}

	var out strings.Builder
	if err := writeMarkdown(&out, rep); err != nil {
		t.Fatalf("write markdown: %v", err)
	}
	for _, want := range []string{"| `pt-BR` | 2 | 1 | 1 | 1 | 50.0% |", "- `core.b`", "- `core.c`"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("markdown missing %q:\n%s", want, out.String())
		}
	}
}

func TestBuildReportRequiresBaseLocale(t *testing.T) {
	bundle, err := i18ncatalog.LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded catalogs: %v", err)
	}
	if _, err := buildReport(bundle, "fr-FR"); err == nil {
		t.Fatal("expected error for missing base locale")
	}
}
