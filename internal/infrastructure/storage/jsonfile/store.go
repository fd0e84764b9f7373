package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/vocabhub/wordlist-api/internal/core/domain"
)

// Observer receives store-level events for metrics. All methods must be
// safe for concurrent use.
type Observer interface {
	DocumentLoaded()
	DocumentSaved()
	SaveFailed()
}

// Store is the filesystem-backed document store. Every Load re-reads the
// file and every Save rewrites it in place; nothing is cached between
// calls.
type Store struct {
	dir     string
	pattern string
	obs     Observer
}

func New(dir, pattern string, obs Observer) (*Store, error) {
	if dir == "" {
		dir = "./data"
	}
	if pattern == "" {
		pattern = "*.json"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid document pattern %q", pattern)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{dir: dir, pattern: pattern, obs: obs}, nil
}

// List enumerates documents matching the configured pattern. An empty
// directory yields an empty listing, never an error.
func (s *Store) List(_ context.Context) ([]domain.FileInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read data dir: %w", err)
	}

	files := make([]domain.FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		matched, err := doublestar.Match(s.pattern, entry.Name())
		if err != nil || !matched {
			continue
		}
		files = append(files, domain.FileInfo{
			Name: entry.Name(),
			Path: filepath.Join(s.dir, entry.Name()),
			URL:  "/file/" + entry.Name(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Load reads and parses one document. Missing files and unparseable
// content both surface as ErrFileNotFound; the caller cannot tell them
// apart and should not need to.
func (s *Store) Load(_ context.Context, name string) (*domain.Document, error) {
	if err := validName(name); err != nil {
		return nil, domain.WrapError(domain.ErrFileNotFound, "load document", err)
	}

	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil, domain.WrapError(domain.ErrFileNotFound, "load document", err)
	}

	// UseNumber keeps large ids intact across a load/save round trip.
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var root map[string]any
	if err := decoder.Decode(&root); err != nil {
		return nil, domain.WrapError(domain.ErrFileNotFound, "parse document", err)
	}

	if s.obs != nil {
		s.obs.DocumentLoaded()
	}
	return &domain.Document{Name: name, Root: root}, nil
}

// Save rewrites the whole document in place. Two-space indentation and
// unescaped HTML keep the stored Korean/Russian text readable.
func (s *Store) Save(_ context.Context, doc *domain.Document) error {
	if err := validName(doc.Name); err != nil {
		return domain.WrapError(domain.ErrPersistence, "save document", err)
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc.Root); err != nil {
		if s.obs != nil {
			s.obs.SaveFailed()
		}
		return domain.WrapError(domain.ErrPersistence, "save document", err)
	}

	if err := os.WriteFile(filepath.Join(s.dir, doc.Name), buf.Bytes(), 0o644); err != nil {
		if s.obs != nil {
			s.obs.SaveFailed()
		}
		return domain.WrapError(domain.ErrPersistence, "save document", err)
	}
	if s.obs != nil {
		s.obs.DocumentSaved()
	}
	return nil
}

// validName rejects anything that could escape the data directory.
func validName(name string) error {
	if name == "" {
		return errors.New("empty document name")
	}
	if name != filepath.Base(name) || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("invalid document name %q", name)
	}
	return nil
}
