package ops

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hpungsan/promptbase/internal/errors"
	"github.com/hpungsan/promptbase/internal/prompt"
	"github.com/hpungsan/promptbase/internal/query"
)

func writeImportFile(t *testing.T, dir string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, "import.jsonl")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func TestImport_HappyPath(t *testing.T) {
	store, tmpDir := openTestStore(t)
	ctx := context.Background()

	path := writeImportFile(t, tmpDir,
		`{"_promptbase_export":true,"schema_version":"1.0","exported_at":5000}`,
		`{"id":7,"title":"Kept","body":"b1","is_favorite":true,"created_at":1000,"updated_at":1500}`,
		`{"id":8,"title":"Also","body":"b2","created_at":2000}`,
	)

	out, err := Import(ctx, store, ImportInput{Path: path})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if out.Imported != 2 || out.Skipped != 0 {
		t.Errorf("Imported/Skipped = %d/%d, want 2/0", out.Imported, out.Skipped)
	}

	list, err := List(ctx, store, nil, ListInput{Sort: "created_at", Direction: "asc"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(list.Items))
	}

	first := list.Items[0]
	if first.Title != "Kept" || !first.IsFavorite || first.CreatedAt != 1000 || first.UpdatedAt != 1500 {
		t.Errorf("first = %+v", first)
	}
	second := list.Items[1]
	if second.UpdatedAt != 2000 {
		t.Errorf("second.UpdatedAt = %d, want clamped to created_at 2000", second.UpdatedAt)
	}
}

func TestImport_IDsAreReassigned(t *testing.T) {
	store, tmpDir := openTestStore(t)
	ctx := context.Background()
	existing := mustCreate(t, store, "Existing", "x", false)

	path := writeImportFile(t, tmpDir,
		`{"id":`+itoa(existing)+`,"title":"Incoming","body":"y","created_at":1}`,
	)

	out, err := Import(ctx, store, ImportInput{Path: path})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if out.Imported != 1 {
		t.Fatalf("Imported = %d, want 1", out.Imported)
	}

	p, err := Get(ctx, store, existing)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if p.Title != "Existing" {
		t.Errorf("existing prompt overwritten: %q", p.Title)
	}
}

func TestImport_BadLinesSkipped(t *testing.T) {
	store, tmpDir := openTestStore(t)

	path := writeImportFile(t, tmpDir,
		`{"title":"Good","body":"ok","created_at":10}`,
		`{not json`,
		`{"title":"","body":"no title"}`,
		``,
		`{"title":"Good too","body":"ok"}`,
	)

	out, err := Import(context.Background(), store, ImportInput{Path: path})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if out.Imported != 2 {
		t.Errorf("Imported = %d, want 2", out.Imported)
	}
	if out.Skipped != 2 || len(out.Errors) != 2 {
		t.Fatalf("Skipped = %d, Errors = %+v", out.Skipped, out.Errors)
	}
	if out.Errors[0].Line != 2 || out.Errors[0].Code != "PARSE_ERROR" {
		t.Errorf("Errors[0] = %+v", out.Errors[0])
	}
	if out.Errors[1].Line != 3 || out.Errors[1].Code != "VALIDATION_FAILED" {
		t.Errorf("Errors[1] = %+v", out.Errors[1])
	}
}

func TestImport_MissingFile(t *testing.T) {
	store, tmpDir := openTestStore(t)

	_, err := Import(context.Background(), store, ImportInput{Path: filepath.Join(tmpDir, "nope.jsonl")})
	if !errors.Is(err, errors.ErrFileNotFound) {
		t.Errorf("Import error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestImport_RoundTripWithExport(t *testing.T) {
	src, srcDir := openTestStore(t)
	ctx := context.Background()
	mustCreate(t, src, "A", "alpha", true)
	mustCreate(t, src, "B", "beta", false)

	exp, err := Export(ctx, src, srcDir, ExportInput{})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	dst, _ := openTestStore(t)
	out, err := Import(ctx, dst, ImportInput{Path: exp.Path})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if out.Imported != 2 || out.Skipped != 0 {
		t.Errorf("Imported/Skipped = %d/%d, want 2/0", out.Imported, out.Skipped)
	}

	favs, err := List(ctx, dst, nil, ListInput{FavoritesOnly: true})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(favs.Items) != 1 || favs.Items[0].Title != "A" {
		t.Errorf("favorites after round trip = %+v", favs.Items)
	}
}

// insertLimitStore fails every Insert after the first n.
type insertLimitStore struct {
	Store
	n     int
	calls int
}

func (s *insertLimitStore) Insert(ctx context.Context, p *prompt.Prompt) error {
	s.calls++
	if s.calls > s.n {
		return errors.NewInternal(fmt.Errorf("disk I/O error"))
	}
	return s.Store.Insert(ctx, p)
}

func TestImport_StoreFailureReturnsPartialCounts(t *testing.T) {
	store, tmpDir := openTestStore(t)
	path := writeImportFile(t, tmpDir,
		`{"title":"One","body":"b1"}`,
		`not json`,
		`{"title":"Two","body":"b2"}`,
		`{"title":"Three","body":"b3"}`,
		`{"title":"Four","body":"b4"}`,
	)

	out, err := Import(context.Background(), &insertLimitStore{Store: store, n: 2}, ImportInput{Path: path})
	if !errors.Is(err, errors.ErrInternal) {
		t.Fatalf("Import error = %v, want INTERNAL", err)
	}
	if out == nil {
		t.Fatal("Import returned nil output with a partial import")
	}
	if out.Imported != 2 || out.Skipped != 1 {
		t.Errorf("Imported/Skipped = %d/%d, want 2/1", out.Imported, out.Skipped)
	}

	n, err := store.Count(context.Background(), &query.QuerySpec{})
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != out.Imported {
		t.Errorf("store holds %d prompts, output reports %d imported", n, out.Imported)
	}
}

func TestImport_CancelledReturnsPartialCounts(t *testing.T) {
	store, tmpDir := openTestStore(t)
	path := writeImportFile(t, tmpDir, `{"title":"One","body":"b1"}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := Import(ctx, store, ImportInput{Path: path})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Fatalf("Import error = %v, want INVALID_REQUEST", err)
	}
	if out == nil || out.Imported != 0 {
		t.Errorf("out = %+v, want zero counts", out)
	}
}
