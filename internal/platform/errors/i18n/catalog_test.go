package i18n

import "testing"

func TestGetCatalogFallback(t *testing.T) {
	base := GetCatalog("en")
	if base == nil {
		t.Fatal("expected base catalog")
	}
	fallback := GetCatalog("missing-locale")
	if fallback != base {
		t.Fatal("expected fallback to en catalog")
	}
	if GetCatalog("") != base {
		t.Fatal("expected empty locale to resolve to en catalog")
	}
}

func TestGetCatalogRegionalVariant(t *testing.T) {
	got := GetCatalog("es-MX")
	if got.Locale() != "es" {
		t.Fatalf("expected es catalog for es-MX, got %q", got.Locale())
	}
}

func TestFormatFallbacks(t *testing.T) {
	cat := NewCatalog("test", map[Code]string{
		"code": "hello {{.Name}}",
	})

	if cat.Format("unknown", nil) != "unknown" {
		t.Fatal("expected code fallback when template missing")
	}
	if got := cat.Format("code", nil); got != "hello " {
		t.Fatalf("expected missing metadata to render empty, got %q", got)
	}
	if got := cat.Format("code", map[string]string{"Name": "pos"}); got != "hello pos" {
		t.Fatalf("unexpected render %q", got)
	}
}

func TestBundledCatalogsCoverSameCodes(t *testing.T) {
	for code := range englishMessages {
		if _, ok := spanishMessages[code]; !ok {
			t.Fatalf("spanish catalog missing %s", code)
		}
	}
	if len(englishMessages) != len(spanishMessages) {
		t.Fatalf("catalog sizes differ: en=%d es=%d", len(englishMessages), len(spanishMessages))
	}
}
