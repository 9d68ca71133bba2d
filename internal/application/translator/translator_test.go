package translator

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/kirimku/smartseller-backend/pkg/cache"
)

type fakeMTBackend struct {
	translateFn func(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

func (f *fakeMTBackend) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	return f.translateFn(ctx, text, sourceLang, targetLang)
}

func newTestTranslator(mt MTBackend) *Translator {
	return New(mt, cache.NewInMemoryCache(time.Minute, time.Minute))
}

func TestDetectLanguage(t *testing.T) {
	tr := newTestTranslator(nil)
	cases := map[string]Language{
		"hello world":     LanguageEnglish,
		"こんにちは":          LanguageJapanese,
		"你好世界":            LanguageChinese,
		"カタログ":            LanguageJapanese,
	}
	for text, want := range cases {
		if got := tr.DetectLanguage(text); got != want {
			t.Errorf("DetectLanguage(%q) = %q, want %q", text, got, want)
		}
	}
}

func TestTranslateKeyToEnglishUsesMT(t *testing.T) {
	mt := &fakeMTBackend{translateFn: func(ctx context.Context, text, src, dst string) (string, error) {
		return "Main Color", nil
	}}
	tr := newTestTranslator(mt)

	key, err := tr.TranslateKeyToEnglish(context.Background(), "颜色")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "main_color" {
		t.Errorf("expected snake_case key, got %q", key)
	}
}

func TestTranslateKeyToEnglishFallsBackWithoutMT(t *testing.T) {
	tr := newTestTranslator(nil)
	key, err := tr.TranslateKeyToEnglish(context.Background(), "Main Color Option")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "main_color_option" {
		t.Errorf("expected fallback snake_case, got %q", key)
	}
}

func TestTranslateToJapanesePassesThrough(t *testing.T) {
	tr := newTestTranslator(nil)
	out, err := tr.TranslateToJapanese(context.Background(), "こんにちは", LanguageJapanese)
	if err != nil || out != "こんにちは" {
		t.Errorf("expected pass-through, got %q err=%v", out, err)
	}
}

func TestTranslateToJapaneseErrorsWithoutBackend(t *testing.T) {
	tr := newTestTranslator(nil)
	if _, err := tr.TranslateToJapanese(context.Background(), "hello", LanguageEnglish); err == nil {
		t.Error("expected an error when no MT backend is configured")
	}
}

func TestTranslateVariantValueWithContextCachesResult(t *testing.T) {
	calls := 0
	mt := &fakeMTBackend{translateFn: func(ctx context.Context, text, src, dst string) (string, error) {
		calls++
		return "赤", nil
	}}
	tr := newTestTranslator(mt)

	first, err := tr.TranslateVariantValueWithContext(context.Background(), "red", "color", 32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := tr.TranslateVariantValueWithContext(context.Background(), "red", "color", 32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Errorf("expected cached result to match, got %q vs %q", first, second)
	}
	if calls != 1 {
		t.Errorf("expected exactly one MT call due to caching, got %d", calls)
	}
}

func TestEnforceByteLimitTrimsWholeRunes(t *testing.T) {
	s := strings.Repeat("あ", 20) // 3 bytes per rune
	out := enforceByteLimit(s, 10)
	if len(out) > 10 {
		t.Errorf("expected output within byte limit, got %d bytes", len(out))
	}
	for _, r := range out {
		if r != 'あ' {
			t.Errorf("expected only whole runes in output, got %q", out)
		}
	}
}

func TestCleanTextForRakutenStrict(t *testing.T) {
	tr := newTestTranslator(nil)
	out := tr.CleanTextForRakuten("Hello!!  World***", true)
	if strings.Contains(out, "!") || strings.Contains(out, "*") {
		t.Errorf("expected disallowed punctuation stripped, got %q", out)
	}
	if strings.Contains(out, "  ") {
		t.Errorf("expected whitespace collapsed, got %q", out)
	}
}
