package translator

// defaultNormalizationMap is the curated color/size lookup table that
// guarantees deterministic Rakuten display values regardless of MT
// drift (§4.4, §9, GLOSSARY "Normalization map"). MT is only consulted
// when a source token isn't represented here.
func defaultNormalizationMap() map[string]string {
	return map[string]string{
		"黑色": "ブラック",
		"黒色": "ブラック",
		"白色": "ホワイト",
		"红色": "レッド",
		"紅色": "レッド",
		"蓝色": "ブルー",
		"藍色": "ブルー",
		"黄色": "イエロー",
		"绿色": "グリーン",
		"綠色": "グリーン",
		"灰色": "グレー",
		"粉色": "ピンク",
		"粉红色": "ピンク",
		"紫色": "パープル",
		"棕色": "ブラウン",
		"褐色": "ブラウン",
		"金色": "ゴールド",
		"银色": "シルバー",
		"銀色": "シルバー",
		"橙色": "オレンジ",
		"米色": "ベージュ",

		"XS":  "XS",
		"S":   "S",
		"M":   "M",
		"L":   "L",
		"XL":  "XL",
		"XXL": "XXL",
		"均码": "フリーサイズ",
		"均碼": "フリーサイズ",
	}
}
