package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/vocabhub/wordlist-api/internal/core/domain"
	"github.com/vocabhub/wordlist-api/internal/core/ports"
)

const categoryPreviewSize = 5

// WordlistUseCase implements every record-store operation over a
// DocumentStore. It holds no document state between calls: each operation
// re-loads from the store, so the backing files stay the system of record.
type WordlistUseCase struct {
	store ports.DocumentStore
	locks keyedMutex
}

func NewWordlistUseCase(store ports.DocumentStore) *WordlistUseCase {
	return &WordlistUseCase{store: store}
}

func (uc *WordlistUseCase) ListWordFiles(ctx context.Context) ([]domain.FileInfo, error) {
	return uc.store.List(ctx)
}

func (uc *WordlistUseCase) GetWordFile(ctx context.Context, name string) (*domain.Document, error) {
	return uc.store.Load(ctx, name)
}

// SearchWordItems scans every item across all categories in document order.
// With an explicit field the field value is coerced to its string form;
// without one only string-valued fields participate.
func (uc *WordlistUseCase) SearchWordItems(ctx context.Context, name, query, field string) ([]domain.Item, error) {
	categories, err := uc.loadCategories(ctx, name)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	results := make([]domain.Item, 0)
	for _, category := range categories {
		for _, item := range category.Items {
			if matchItem(item, needle, field) {
				results = append(results, item.WithCategory(category.Name))
			}
		}
	}
	return results, nil
}

func matchItem(item domain.Item, needle, field string) bool {
	if field != "" {
		value, ok := item[field]
		if !ok {
			return false
		}
		return strings.Contains(strings.ToLower(fmt.Sprint(value)), needle)
	}
	for _, value := range item {
		if text, ok := value.(string); ok && strings.Contains(strings.ToLower(text), needle) {
			return true
		}
	}
	return false
}

// GetWordItem returns the first item whose id matches, scanning categories
// in order and items in order. Duplicate ids resolve to the first hit.
func (uc *WordlistUseCase) GetWordItem(ctx context.Context, name string, id int64) (domain.Item, error) {
	categories, err := uc.loadCategories(ctx, name)
	if err != nil {
		return nil, err
	}
	for _, category := range categories {
		for _, item := range category.Items {
			if itemID, ok := item.ID(); ok && itemID == id {
				return item.WithCategory(category.Name), nil
			}
		}
	}
	return nil, domain.WrapError(domain.ErrItemNotFound, "get item", fmt.Errorf("id=%d in %s", id, name))
}

// UpdateWordItem mutates the first item whose id matches and persists the
// whole document. The per-filename lock serializes concurrent updates to
// the same file so the last-write-wins race cannot drop a mutation.
func (uc *WordlistUseCase) UpdateWordItem(ctx context.Context, name string, id int64, learned *bool, custom map[string]any) (domain.Item, error) {
	unlock := uc.locks.lock(name)
	defer unlock()

	doc, err := uc.store.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	categories, err := doc.Categories()
	if err != nil {
		return nil, err
	}

	for _, category := range categories {
		for _, item := range category.Items {
			itemID, ok := item.ID()
			if !ok || itemID != id {
				continue
			}
			if learned != nil {
				item["learned"] = *learned
			}
			for key, value := range custom {
				item[key] = value
			}
			updated := item.WithCategory(category.Name)
			if err := uc.store.Save(ctx, doc); err != nil {
				return nil, err
			}
			return updated, nil
		}
	}
	return nil, domain.WrapError(domain.ErrItemNotFound, "update item", fmt.Errorf("id=%d in %s", id, name))
}

// WordFileStats aggregates learned/total counts per category and overall.
func (uc *WordlistUseCase) WordFileStats(ctx context.Context, name string) (*domain.FileStats, error) {
	categories, err := uc.loadCategories(ctx, name)
	if err != nil {
		return nil, err
	}

	stats := &domain.FileStats{ByCategory: make([]domain.CategoryStats, 0, len(categories))}
	for _, category := range categories {
		learned := 0
		for _, item := range category.Items {
			if item.Learned() {
				learned++
			}
		}
		total := len(category.Items)
		stats.ByCategory = append(stats.ByCategory, domain.CategoryStats{
			Category:   category.Name,
			Total:      total,
			Learned:    learned,
			Percentage: percentage(learned, total),
		})
		stats.Overall.TotalItems += total
		stats.Overall.LearnedItems += learned
	}
	stats.Overall.Remaining = stats.Overall.TotalItems - stats.Overall.LearnedItems
	stats.Overall.Percentage = percentage(stats.Overall.LearnedItems, stats.Overall.TotalItems)
	return stats, nil
}

// ListWordCategories returns per-category previews with the first items
// verbatim, without the category annotation the search results carry.
func (uc *WordlistUseCase) ListWordCategories(ctx context.Context, name string) ([]domain.CategoryPreview, error) {
	categories, err := uc.loadCategories(ctx, name)
	if err != nil {
		return nil, err
	}

	previews := make([]domain.CategoryPreview, 0, len(categories))
	for _, category := range categories {
		learned := 0
		for _, item := range category.Items {
			if item.Learned() {
				learned++
			}
		}
		preview := domain.CategoryPreview{
			Name:         category.Name,
			ItemCount:    len(category.Items),
			LearnedCount: learned,
			Items:        category.Items[:min(categoryPreviewSize, len(category.Items))],
		}
		previews = append(previews, preview)
	}
	return previews, nil
}

func (uc *WordlistUseCase) loadCategories(ctx context.Context, name string) ([]domain.Category, error) {
	doc, err := uc.store.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	return doc.Categories()
}

// percentage rounds half away from zero to one decimal and reports 0 for
// empty categories instead of dividing by zero.
func percentage(learned, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(learned)/float64(total)*1000) / 10
}
