package ports

import (
	"context"

	"github.com/vocabhub/wordlist-api/internal/core/domain"
)

// WordlistCatalog enumerates the stored documents.
type WordlistCatalog interface {
	ListWordFiles(ctx context.Context) ([]domain.FileInfo, error)
}

// WordlistQueryService is the inbound contract for document reads.
type WordlistQueryService interface {
	GetWordFile(ctx context.Context, name string) (*domain.Document, error)
	SearchWordItems(ctx context.Context, name, query, field string) ([]domain.Item, error)
	GetWordItem(ctx context.Context, name string, id int64) (domain.Item, error)
	WordFileStats(ctx context.Context, name string) (*domain.FileStats, error)
	ListWordCategories(ctx context.Context, name string) ([]domain.CategoryPreview, error)
}

// WordlistUpdater is the inbound contract for item mutation.
type WordlistUpdater interface {
	UpdateWordItem(ctx context.Context, name string, id int64, learned *bool, custom map[string]any) (domain.Item, error)
}
