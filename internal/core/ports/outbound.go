package ports

import (
	"context"

	"github.com/vocabhub/wordlist-api/internal/core/domain"
)

// DocumentStore reads and writes word-list documents on the backing store.
// The store is the system of record: callers re-load on every operation and
// persist by rewriting the whole document.
type DocumentStore interface {
	List(ctx context.Context) ([]domain.FileInfo, error)
	Load(ctx context.Context, name string) (*domain.Document, error)
	Save(ctx context.Context, doc *domain.Document) error
}
