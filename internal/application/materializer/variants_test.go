package materializer

import "testing"

func TestCartesianIndexes(t *testing.T) {
	got := cartesianIndexes([]int{2, 3})
	want := [][]int{
		{0, 0}, {0, 1}, {0, 2},
		{1, 0}, {1, 1}, {1, 2},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d combinations, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i][0] != want[i][0] || got[i][1] != want[i][1] {
			t.Errorf("combo %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestCartesianIndexesEmptyOnZeroCount(t *testing.T) {
	if got := cartesianIndexes([]int{2, 0, 3}); got != nil {
		t.Errorf("expected nil when any selector has zero values, got %v", got)
	}
	if got := cartesianIndexes(nil); got != nil {
		t.Errorf("expected nil for no selectors, got %v", got)
	}
}

func TestQuantizeInventory(t *testing.T) {
	cases := []struct {
		amount string
		want   int64
	}{
		{"1500", 100},
		{"500", 100},
		{"999", 100},
		{"50", 0},
		{"49", 0},
		{"not-a-number", 0},
		{"  120  ", 0},
	}
	for _, tc := range cases {
		if got := quantizeInventory(tc.amount); got != tc.want {
			t.Errorf("quantizeInventory(%q) = %d, want %d", tc.amount, got, tc.want)
		}
	}
}

func TestMatchInventoryExactToken(t *testing.T) {
	rows := []inventoryRow{
		{KeyT: "红色㊖S", SkuID: "sku-red-s", Price: "10.00", AmountOnSale: "100"},
		{KeyT: "蓝色㊖M", SkuID: "sku-blue-m", Price: "12.00", AmountOnSale: "10"},
	}
	selectors := []builtSelector{
		{Key: "color", SourceNames: []string{"红色", "蓝色"}},
		{Key: "size", SourceNames: []string{"S", "M"}},
	}

	row, ok := matchInventory(rows, selectors, []int{0, 0})
	if !ok {
		t.Fatal("expected a match for 红色/S")
	}
	if row.SkuID != "sku-red-s" {
		t.Errorf("expected sku-red-s, got %s", row.SkuID)
	}

	row, ok = matchInventory(rows, selectors, []int{1, 1})
	if !ok || row.SkuID != "sku-blue-m" {
		t.Errorf("expected sku-blue-m match, got %v ok=%v", row, ok)
	}
}

func TestMatchInventoryFallsBackToFirstSelector(t *testing.T) {
	rows := []inventoryRow{
		{KeyT: "红色", SkuID: "sku-red", Price: "9.00", AmountOnSale: "5"},
	}
	selectors := []builtSelector{
		{Key: "color", SourceNames: []string{"红色"}},
		{Key: "size", SourceNames: []string{"XL"}},
	}

	row, ok := matchInventory(rows, selectors, []int{0, 0})
	if !ok || row.SkuID != "sku-red" {
		t.Errorf("expected fallback match on first selector, got %v ok=%v", row, ok)
	}
}

func TestMatchInventoryNoMatch(t *testing.T) {
	rows := []inventoryRow{
		{KeyT: "绿色", SkuID: "sku-green", Price: "9.00", AmountOnSale: "5"},
	}
	selectors := []builtSelector{
		{Key: "color", SourceNames: []string{"黄色"}},
	}
	if _, ok := matchInventory(rows, selectors, []int{0}); ok {
		t.Error("expected no match")
	}
}

func TestSplitInventoryKey(t *testing.T) {
	got := splitInventoryKey("红色㊖S㊎均码")
	want := []string{"红色", "S", "均码"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}
