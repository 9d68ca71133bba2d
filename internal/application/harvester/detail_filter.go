package harvester

import "strings"

// excludedKeys are dropped at any depth of the detail tree, even inside
// a preserved "specification" subtree (§4.2, §9).
var excludedKeys = map[string]bool{
	"video":              true,
	"description":        true,
	"fromPlatform_logo":   true,
	"picUrl":              true,
	"titleT":              true,
}

// preservedKeys name the subtree that filterTree leaves unfiltered; the
// stripExcluded pass still removes C-suffixed (source-language) and
// excluded keys from it (§4.2).
var preservedKeys = map[string]bool{
	"specification": true,
	"specifications": true,
}

// FilterDetailJson keeps only keys whose name does not end in "C"
// (source-language duplicates), drops the explicit excluded set, and
// leaves any "specification"-named subtree unfiltered in the first pass;
// a second pass then strips C-suffixed and excluded keys from the whole
// tree, that subtree included (§9: the preserved branch can re-introduce
// them, so the exclusion pass runs twice).
func FilterDetailJson(tree interface{}) interface{} {
	filtered := filterTree(tree, false)
	return stripExcluded(filtered)
}

func filterTree(node interface{}, insidePreserved bool) interface{} {
	switch v := node.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{})
		for key, val := range v {
			if !insidePreserved {
				if strings.HasSuffix(key, "C") {
					continue
				}
				if excludedKeys[key] {
					continue
				}
			}
			childPreserved := insidePreserved || preservedKeys[key]
			childFiltered := filterTree(val, childPreserved)
			if isEmpty(childFiltered) {
				continue
			}
			out[key] = childFiltered
		}
		if len(out) == 0 {
			return nil
		}
		return out

	case []interface{}:
		out := make([]interface{}, 0, len(v))
		for _, item := range v {
			childFiltered := filterTree(item, insidePreserved)
			if isEmpty(childFiltered) {
				continue
			}
			out = append(out, childFiltered)
		}
		if len(out) == 0 {
			return nil
		}
		return out

	default:
		return v
	}
}

func isEmpty(v interface{}) bool {
	if v == nil {
		return true
	}
	if m, ok := v.(map[string]interface{}); ok {
		return len(m) == 0
	}
	if s, ok := v.([]interface{}); ok {
		return len(s) == 0
	}
	return false
}

// stripExcluded re-applies the exclusion rules across the whole tree
// unconditionally, covering keys a preserved subtree reintroduced.
func stripExcluded(node interface{}) interface{} {
	switch v := node.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{})
		for key, val := range v {
			if strings.HasSuffix(key, "C") || excludedKeys[key] {
				continue
			}
			child := stripExcluded(val)
			if isEmpty(child) {
				continue
			}
			out[key] = child
		}
		if len(out) == 0 {
			return nil
		}
		return out

	case []interface{}:
		out := make([]interface{}, 0, len(v))
		for _, item := range v {
			child := stripExcluded(item)
			if isEmpty(child) {
				continue
			}
			out = append(out, child)
		}
		if len(out) == 0 {
			return nil
		}
		return out

	default:
		return v
	}
}
