package materializer

import "testing"

func sampleDetail() map[string]interface{} {
	return map[string]interface{}{
		"goodsInfo": map[string]interface{}{
			"specification": []interface{}{
				map[string]interface{}{
					"keyT": "颜色",
					"valueT": []interface{}{
						map[string]interface{}{"name": "红色"},
						map[string]interface{}{"name": "蓝色"},
					},
				},
			},
			"goodsInventory": []interface{}{
				map[string]interface{}{
					"keyT": "红色",
					"valueT": map[string]interface{}{
						"skuId":        "sku-1",
						"price":        "9.90",
						"amountOnSale": "120",
					},
				},
			},
			"images": []interface{}{"https://example.com/a.jpg", "", "https://example.com/b.jpg"},
		},
	}
}

func TestExtractSpecification(t *testing.T) {
	specs := extractSpecification(sampleDetail())
	if len(specs) != 1 {
		t.Fatalf("expected 1 spec entry, got %d", len(specs))
	}
	if specs[0].KeyT != "颜色" || len(specs[0].ValueT) != 2 {
		t.Errorf("unexpected spec entry: %+v", specs[0])
	}
}

func TestExtractInventory(t *testing.T) {
	rows := extractInventory(sampleDetail())
	if len(rows) != 1 {
		t.Fatalf("expected 1 inventory row, got %d", len(rows))
	}
	if rows[0].SkuID != "sku-1" || rows[0].Price != "9.90" || rows[0].AmountOnSale != "120" {
		t.Errorf("unexpected inventory row: %+v", rows[0])
	}
}

func TestExtractImagesSkipsEmpty(t *testing.T) {
	images := extractImages(sampleDetail())
	want := []string{"https://example.com/a.jpg", "https://example.com/b.jpg"}
	if len(images) != len(want) {
		t.Fatalf("expected %v, got %v", want, images)
	}
	for i := range want {
		if images[i] != want[i] {
			t.Errorf("index %d: expected %q, got %q", i, want[i], images[i])
		}
	}
}

func TestExtractSpecificationMissingGoodsInfo(t *testing.T) {
	if got := extractSpecification(map[string]interface{}{}); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}
