package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/vocabhub/wordlist-api/internal/core/domain"
)

const verbsJSON = `{
  "words": [
    {
      "category": "basic",
      "items": [
        {"id": 1, "korean": "가다", "russian": "идти", "learned": false},
        {"id": 2, "korean": "오다", "russian": "приходить", "learned": true}
      ]
    }
  ]
}`

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := New(dir, "*.json", nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return store, dir
}

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
}

func TestListMatchesPatternAndSortsByName(t *testing.T) {
	store, dir := newTestStore(t)
	writeFixture(t, dir, "verbs.json", verbsJSON)
	writeFixture(t, dir, "adjectives.json", verbsJSON)
	writeFixture(t, dir, "notes.txt", "not a document")

	files, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(files))
	}
	if files[0].Name != "adjectives.json" || files[1].Name != "verbs.json" {
		t.Fatalf("expected sorted listing, got %v", files)
	}
	if files[1].URL != "/file/verbs.json" {
		t.Fatalf("unexpected access URL %q", files[1].URL)
	}
}

func TestListEmptyDirectory(t *testing.T) {
	store, _ := newTestStore(t)
	files, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("expected empty listing, got %v", files)
	}
}

func TestLoadMissingFile(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.Load(context.Background(), "absent.json")
	if !domain.IsKind(err, domain.ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
}

func TestLoadMalformedContentSurfacesAsNotFound(t *testing.T) {
	store, dir := newTestStore(t)
	writeFixture(t, dir, "broken.json", "{not json")

	_, err := store.Load(context.Background(), "broken.json")
	if !domain.IsKind(err, domain.ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound for malformed content, got %v", err)
	}
}

func TestLoadRejectsPathTraversal(t *testing.T) {
	store, _ := newTestStore(t)
	for _, name := range []string{"../secrets.json", "a/b.json", "..", ""} {
		if _, err := store.Load(context.Background(), name); !domain.IsKind(err, domain.ErrFileNotFound) {
			t.Fatalf("name %q: expected ErrFileNotFound, got %v", name, err)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store, dir := newTestStore(t)
	writeFixture(t, dir, "verbs.json", verbsJSON)

	doc, err := store.Load(context.Background(), "verbs.json")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := store.Save(context.Background(), doc); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	reloaded, err := store.Load(context.Background(), "verbs.json")
	if err != nil {
		t.Fatalf("reload error = %v", err)
	}
	if !reflect.DeepEqual(doc.Root, reloaded.Root) {
		t.Fatalf("round trip changed the document:\nbefore: %v\nafter:  %v", doc.Root, reloaded.Root)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "verbs.json"))
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	if !strings.Contains(string(raw), "가다") {
		t.Fatalf("expected unescaped UTF-8 text in the saved file")
	}
}

func TestSavePersistsMutation(t *testing.T) {
	store, _ := newTestStore(t)
	doc := &domain.Document{Name: "verbs.json", Root: map[string]any{"words": []any{}}}
	if err := store.Save(context.Background(), doc); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := store.Load(context.Background(), "verbs.json"); err != nil {
		t.Fatalf("expected saved document to load, got %v", err)
	}
}

func TestNewRejectsInvalidPattern(t *testing.T) {
	if _, err := New(t.TempDir(), "[", nil); err == nil {
		t.Fatalf("expected error for invalid pattern")
	}
}

type countingObserver struct {
	loads, saves, failures int
}

func (c *countingObserver) DocumentLoaded() { c.loads++ }
func (c *countingObserver) DocumentSaved()  { c.saves++ }
func (c *countingObserver) SaveFailed()     { c.failures++ }

func TestObserverSeesLoadsAndSaves(t *testing.T) {
	dir := t.TempDir()
	obs := &countingObserver{}
	store, err := New(dir, "*.json", obs)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	writeFixture(t, dir, "verbs.json", verbsJSON)

	doc, err := store.Load(context.Background(), "verbs.json")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := store.Save(context.Background(), doc); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if obs.loads != 1 || obs.saves != 1 || obs.failures != 0 {
		t.Fatalf("unexpected observer counts: %+v", obs)
	}
}
