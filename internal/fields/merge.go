// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package fields

import "strconv"

// MixedIDsFunc is notified when MergeForUpdate merges a pair of arrays by
// position although elements may not line up: only some elements carry an
// id, or no element does and the lengths differ.
type MixedIDsFunc func(path string)

// MergeForUpdate deep-merges override onto base and returns the result.
// Neither argument is modified.
//
//   - objects merge key by key, recursively;
//   - arrays whose elements all carry an id on both sides merge by id: the
//     result has the elements of override in override order, each merged onto
//     the base element with the same id when there is one;
//   - other arrays merge by position, keeping trailing base elements; onMixed
//     is called when some ids are present, or when none are and both arrays
//     are non-empty with different lengths;
//   - anything else is replaced by override.
//
// onMixed may be nil.
func MergeForUpdate(base, override any, onMixed MixedIDsFunc) any {
	return merge(base, override, "", onMixed)
}

// MergeDocument is MergeForUpdate for top-level documents.
func MergeDocument(base, override map[string]any, onMixed MixedIDsFunc) map[string]any {
	merged, _ := merge(base, override, "", onMixed).(map[string]any)
	return merged
}

func merge(base, override any, path string, onMixed MixedIDsFunc) any {
	switch o := override.(type) {
	case map[string]any:
		b, ok := base.(map[string]any)
		if !ok {
			return o
		}
		out := make(map[string]any, len(b)+len(o))
		for k, v := range b {
			out[k] = v
		}
		for k, v := range o {
			out[k] = merge(b[k], v, joinPath(path, k), onMixed)
		}
		return out

	case []any:
		b, ok := base.([]any)
		if !ok {
			return o
		}
		baseIDs, baseAll := countIDs(b)
		overIDs, overAll := countIDs(o)
		if baseAll && overAll {
			return mergeByID(b, o, path, onMixed)
		}
		if onMixed != nil && misaligned(b, o, baseIDs+overIDs) {
			onMixed(path)
		}
		return mergeByPosition(b, o, path, onMixed)

	default:
		return override
	}
}

func mergeByID(base, override []any, path string, onMixed MixedIDsFunc) []any {
	byID := make(map[string]any, len(base))
	for _, item := range base {
		id, _ := itemID(item)
		byID[StringifyID(id)] = item
	}

	out := make([]any, 0, len(override))
	for i, item := range override {
		id, _ := itemID(item)
		existing, ok := byID[StringifyID(id)]
		if !ok {
			out = append(out, item)
			continue
		}
		out = append(out, merge(existing, item, elemPath(path, i), onMixed))
	}
	return out
}

func mergeByPosition(base, override []any, path string, onMixed MixedIDsFunc) []any {
	n := max(len(base), len(override))
	out := make([]any, 0, n)
	for i := 0; i < n; i++ {
		if i >= len(override) {
			out = append(out, base[i])
			continue
		}
		var b any
		if i < len(base) {
			b = base[i]
		}
		out = append(out, merge(b, override[i], elemPath(path, i), onMixed))
	}
	return out
}

func misaligned(base, override []any, ids int) bool {
	if ids > 0 {
		return true
	}
	return len(base) > 0 && len(override) > 0 && len(base) != len(override)
}

// countIDs returns how many elements of items carry an id and whether all do.
// An empty list counts as fully identified.
func countIDs(items []any) (int, bool) {
	n := 0
	for _, item := range items {
		if _, ok := itemID(item); ok {
			n++
		}
	}
	return n, n == len(items)
}

func itemID(item any) (any, bool) {
	m, ok := item.(map[string]any)
	if !ok {
		return nil, false
	}
	return AsID(m["id"])
}

func elemPath(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}
