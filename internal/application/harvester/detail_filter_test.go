package harvester

import "testing"

func TestFilterDetailJsonDropsSourceLanguageAndExcludedKeys(t *testing.T) {
	tree := map[string]interface{}{
		"titleT":      "English title",
		"titleC":      "中文标题",
		"description": "should be dropped everywhere",
		"video":       "should be dropped",
		"goodsInfo": map[string]interface{}{
			"nameC": "中文名称",
			"name":  "kept name",
		},
	}

	out, ok := FilterDetailJson(tree).(map[string]interface{})
	if !ok {
		t.Fatalf("expected a map result, got %T", out)
	}
	if _, present := out["titleT"]; present {
		t.Error("titleT should be excluded unconditionally")
	}
	if _, present := out["titleC"]; present {
		t.Error("C-suffixed keys should be dropped")
	}
	if _, present := out["description"]; present {
		t.Error("description should be excluded")
	}
	goodsInfo, ok := out["goodsInfo"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected goodsInfo to survive, got %v", out["goodsInfo"])
	}
	if _, present := goodsInfo["nameC"]; present {
		t.Error("nested C-suffixed keys should be dropped")
	}
	if goodsInfo["name"] != "kept name" {
		t.Errorf("expected name to survive, got %v", goodsInfo["name"])
	}
}

func TestFilterDetailJsonPreservesSpecificationButStripsExcludedInside(t *testing.T) {
	tree := map[string]interface{}{
		"specification": map[string]interface{}{
			"keyC":  "dropped because C-suffixed on restrip pass",
			"video": "dropped because excluded on restrip pass",
			"keyT":  "kept",
		},
	}

	out, ok := FilterDetailJson(tree).(map[string]interface{})
	if !ok {
		t.Fatalf("expected a map result, got %T", out)
	}
	spec, ok := out["specification"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected specification to survive, got %v", out["specification"])
	}
	if _, present := spec["keyC"]; present {
		t.Error("expected keyC stripped by the second exclusion pass")
	}
	if _, present := spec["video"]; present {
		t.Error("expected video stripped by the second exclusion pass")
	}
	if spec["keyT"] != "kept" {
		t.Errorf("expected keyT to survive, got %v", spec["keyT"])
	}
}

func TestFilterDetailJsonDropsEmptyResults(t *testing.T) {
	tree := map[string]interface{}{
		"titleC": "only excluded content",
	}
	if out := FilterDetailJson(tree); out != nil {
		t.Errorf("expected nil for an entirely-filtered tree, got %v", out)
	}
}
