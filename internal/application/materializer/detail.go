package materializer

import "strings"

// specEntry is one goodsInfo.specification entry: a source-language key
// (keyT) and its set of possible values (§4.3 step 4).
type specEntry struct {
	KeyT   string
	ValueT []valueEntry
}

type valueEntry struct {
	Name string
}

// inventoryRow is one goodsInfo.goodsInventory entry: a compound keyT
// encoding every selector value for that SKU, plus the SKU's own price,
// stock, and identity (§4.3 step 5).
type inventoryRow struct {
	KeyT         string
	SkuID        string
	Price        string
	AmountOnSale string
}

// extractSpecification walks the filtered detail tree for
// goodsInfo.specification, read as an array of {keyT, valueT} entries; a
// specification that is not an array yields no entries.
func extractSpecification(detail map[string]interface{}) []specEntry {
	goodsInfo, _ := detail["goodsInfo"].(map[string]interface{})
	if goodsInfo == nil {
		return nil
	}
	raw, _ := goodsInfo["specification"].([]interface{})
	out := make([]specEntry, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		entry := specEntry{KeyT: asString(m["keyT"])}
		values, _ := m["valueT"].([]interface{})
		for _, v := range values {
			vm, ok := v.(map[string]interface{})
			if !ok {
				continue
			}
			entry.ValueT = append(entry.ValueT, valueEntry{Name: asString(vm["name"])})
		}
		if entry.KeyT != "" && len(entry.ValueT) > 0 {
			out = append(out, entry)
		}
	}
	return out
}

// extractInventory walks goodsInfo.goodsInventory into a flat list of
// rows, each carrying the compound keyT the cartesian matcher parses
// (§4.3 step 5).
func extractInventory(detail map[string]interface{}) []inventoryRow {
	goodsInfo, _ := detail["goodsInfo"].(map[string]interface{})
	if goodsInfo == nil {
		return nil
	}
	raw, _ := goodsInfo["goodsInventory"].([]interface{})
	out := make([]inventoryRow, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		valueT, _ := m["valueT"].(map[string]interface{})
		row := inventoryRow{KeyT: asString(m["keyT"])}
		if valueT != nil {
			row.SkuID = asString(valueT["skuId"])
			row.Price = asString(valueT["price"])
			row.AmountOnSale = asString(valueT["amountOnSale"])
		}
		if row.KeyT != "" {
			out = append(out, row)
		}
	}
	return out
}

// extractImages walks goodsInfo.images into a flat URL list.
func extractImages(detail map[string]interface{}) []string {
	goodsInfo, _ := detail["goodsInfo"].(map[string]interface{})
	if goodsInfo == nil {
		return nil
	}
	raw, _ := goodsInfo["images"].([]interface{})
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// splitInventoryKey splits a compound goodsInventory keyT on the
// upstream's multi-selector separator and whitespace, yielding one token
// per selector (§4.3 step 5).
func splitInventoryKey(keyT string) []string {
	normalized := strings.NewReplacer("㊖", " ", "㊎", " ").Replace(keyT)
	return strings.Fields(normalized)
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}
