// Package main reports translation coverage of the console catalogs.
//
// With -check it exits non-zero when a locale misses base locale keys, which
// keeps the pt-BR catalog in step with en-US.
package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	i18ncatalog "github.com/louisbranch/backoffice/internal/platform/i18n/catalog"
)

type report struct {
	BaseLocale string
	Locales    []localeStatus
}

type localeStatus struct {
	Locale      string
	BaseKeys    int
	Translated  int
	Completion  float64
	MissingKeys []string
	ExtraKeys   []string
}

func (s localeStatus) complete() bool {
	return len(s.MissingKeys) == 0
}

func main() {
	baseLocale := flag.String("base-locale", i18ncatalog.BaseLocale, "base locale used as translation source of truth")
	out := flag.String("out", "", "markdown output path (stdout when empty)")
	check := flag.Bool("check", false, "exit with status 1 when a locale misses keys")
	flag.Parse()

	bundle, err := i18ncatalog.LoadEmbedded()
	if err != nil {
		fatalf("load i18n catalogs: %v", err)
	}
	rep, err := buildReport(bundle, *baseLocale)
	if err != nil {
		fatalf("build report: %v", err)
	}
	if err := writeReport(*out, rep); err != nil {
		fatalf("write report: %v", err)
	}
	if *check {
		for _, status := range rep.Locales {
			if !status.complete() {
				fatalf("locale %s misses %d keys", status.Locale, len(status.MissingKeys))
			}
		}
	}
}

func buildReport(bundle *i18ncatalog.Bundle, baseLocale string) (report, error) {
	if !bundle.HasLocale(baseLocale) {
		return report{}, fmt.Errorf("base locale %q is missing from catalogs", baseLocale)
	}
	base := bundle.LocaleMessages(baseLocale)
	rep := report{BaseLocale: baseLocale}
	for _, locale := range bundle.Locales() {
		messages := bundle.LocaleMessages(locale)
		missing := diffKeys(base, messages)
		translated := len(base) - len(missing)
		rep.Locales = append(rep.Locales, localeStatus{
			Locale:      locale,
			BaseKeys:    len(base),
			Translated:  translated,
			Completion:  percent(translated, len(base)),
			MissingKeys: missing,
			ExtraKeys:   diffKeys(messages, base),
		})
	}
	return rep, nil
}

func writeReport(path string, rep report) error {
	if path == "" {
		return writeMarkdown(os.Stdout, rep)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := writeMarkdown(file, rep); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

func writeMarkdown(w io.Writer, rep report) error {
	var b strings.Builder
	b.WriteString("# I18n Status\n\n")
	b.WriteString("Base locale: `" + rep.BaseLocale + "`.\n\n")
	b.WriteString("| Locale | Base Keys | Translated | Missing | Extra | Completion |\n")
	b.WriteString("| --- | ---: | ---: | ---: | ---: | ---: |\n")
	for _, locale := range rep.Locales {
		fmt.Fprintf(&b, "| `%s` | %d | %d | %d | %d | %.1f%% |\n", locale.Locale, locale.BaseKeys, locale.Translated, len(locale.MissingKeys), len(locale.ExtraKeys), locale.Completion)
	}
	for _, locale := range rep.Locales {
		writeKeyList(&b, "Missing keys in `"+locale.Locale+"`", locale.MissingKeys)
		writeKeyList(&b, "Extra keys in `"+locale.Locale+"`", locale.ExtraKeys)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeKeyList(b *strings.Builder, title string, keys []string) {
	if len(keys) == 0 {
		return
	}
	b.WriteString("\n## " + title + "\n\n")
	for _, key := range keys {
		b.WriteString("- `" + key + "`\n")
	}
}

// diffKeys returns the sorted keys of from that are absent in to.
func diffKeys(from, to map[string]string) []string {
	var out []string
	for key := range from {
		if _, ok := to[key]; !ok {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

func percent(numerator int, denominator int) float64 {
	if denominator <= 0 {
		return 100
	}
	value := float64(numerator) * 100 / float64(denominator)
	return math.Round(value*10) / 10
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
