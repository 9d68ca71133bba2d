package materializer

import (
	"strings"
	"testing"
)

func TestSanitizeContentStripsAndReappendsDeliveryMessageOnce(t *testing.T) {
	dirtyDescription := "本文" + deliveryMessage + "続き"
	dirtySales := deliveryMessage + "概要"

	result := sanitizeContent("タイトル", "キャッチ", dirtyDescription, dirtySales)

	if strings.Contains(result.Description, deliveryMessage) {
		t.Errorf("expected delivery message stripped from description, got %q", result.Description)
	}
	if strings.Count(result.SalesDescription, deliveryMessage) != 1 {
		t.Errorf("expected exactly one delivery message in sales description, got %q", result.SalesDescription)
	}
	if !strings.HasSuffix(result.SalesDescription, deliveryMessage) {
		t.Errorf("expected delivery message appended at the end, got %q", result.SalesDescription)
	}
}

func TestSanitizeContentPreservesTitleAndCatchphrase(t *testing.T) {
	result := sanitizeContent("タイトル", "キャッチ", "説明", "概要")
	if result.Title != "タイトル" || result.Catchphrase != "キャッチ" {
		t.Errorf("expected title/catchphrase untouched, got %+v", result)
	}
}
