package domain

import (
	"encoding/json"
	"errors"
)

// Item is a single vocabulary record. The schema is intentionally open:
// clients may attach arbitrary fields, only "id" is interpreted strictly.
type Item map[string]any

// ID returns the item identifier when present and integral.
func (it Item) ID() (int64, bool) {
	switch v := it["id"].(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return n, true
	case float64:
		n := int64(v)
		if float64(n) != v {
			return 0, false
		}
		return n, true
	case int:
		return int64(v), true
	case int64:
		return v, true
	default:
		return 0, false
	}
}

// Learned reports whether the item counts as learned. Absent fields count
// as not learned; stored values are interpreted by truthiness so that
// legacy documents with numeric or string flags keep their meaning.
func (it Item) Learned() bool {
	switch v := it["learned"].(type) {
	case bool:
		return v
	case json.Number:
		f, err := v.Float64()
		return err == nil && f != 0
	case float64:
		return v != 0
	case int:
		return v != 0
	case string:
		return v != ""
	default:
		return false
	}
}

// WithCategory returns a shallow copy annotated with the owning category
// name. The original item is left untouched.
func (it Item) WithCategory(name string) Item {
	annotated := make(Item, len(it)+1)
	for k, v := range it {
		annotated[k] = v
	}
	annotated["category"] = name
	return annotated
}

// Category is a named grouping of items inside a document. Items share
// references with the document root, so mutating an item is visible when
// the document is serialized again.
type Category struct {
	Name  string
	Items []Item
}

// Document is one stored word-list file, parsed but otherwise untouched.
// Root holds the full JSON tree so unknown top-level fields survive a
// load/save round trip.
type Document struct {
	Name string
	Root map[string]any
}

// Categories returns the typed view over the "words" array. Documents
// without that array are rejected as invalid.
func (d *Document) Categories() ([]Category, error) {
	raw, ok := d.Root["words"]
	if !ok {
		return nil, WrapError(ErrInvalidFormat, "read categories", errors.New("missing 'words' field"))
	}
	entries, ok := raw.([]any)
	if !ok {
		return nil, WrapError(ErrInvalidFormat, "read categories", errors.New("'words' field is not an array"))
	}

	categories := make([]Category, 0, len(entries))
	for _, entry := range entries {
		node, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		name, _ := node["category"].(string)
		category := Category{Name: name}
		if items, ok := node["items"].([]any); ok {
			category.Items = make([]Item, 0, len(items))
			for _, item := range items {
				if m, ok := item.(map[string]any); ok {
					category.Items = append(category.Items, Item(m))
				}
			}
		}
		categories = append(categories, category)
	}
	return categories, nil
}

// FileInfo describes one stored document in a listing.
type FileInfo struct {
	Name string `json:"name"`
	Path string `json:"path"`
	URL  string `json:"url"`
}

// CategoryStats is the learned/total breakdown for one category.
type CategoryStats struct {
	Category   string  `json:"category"`
	Total      int     `json:"total"`
	Learned    int     `json:"learned"`
	Percentage float64 `json:"percentage"`
}

// OverallStats aggregates learning progress across a whole document.
type OverallStats struct {
	TotalItems   int     `json:"total_items"`
	LearnedItems int     `json:"learned_items"`
	Remaining    int     `json:"remaining"`
	Percentage   float64 `json:"percentage"`
}

// FileStats is the full statistics payload for one document.
type FileStats struct {
	Overall    OverallStats    `json:"overall"`
	ByCategory []CategoryStats `json:"by_category"`
}

// CategoryPreview lists a category with its first items verbatim.
type CategoryPreview struct {
	Name         string `json:"name"`
	ItemCount    int    `json:"item_count"`
	LearnedCount int    `json:"learned_count"`
	Items        []Item `json:"items"`
}
