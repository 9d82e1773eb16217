package repository

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"cv-builder/internal/domain"
	"cv-builder/internal/model"

	"github.com/google/uuid"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "cv.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore error: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestSQLiteLoadMissingIsNotFound(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	if _, err := store.Load(context.Background(), "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	doc := model.Placeholder()
	doc.PersonalInfo.PhotoURL = "https://storage.googleapis.com/b/photos/u1/a.jpg"
	if err := store.Save(ctx, "u1", doc); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	got, err := store.Load(ctx, "u1")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !reflect.DeepEqual(got, doc) {
		t.Fatalf("expected round trip equality\nwant %+v\ngot  %+v", doc, got)
	}

	doc.Summary = "updated"
	if err := store.Save(ctx, "u1", doc); err != nil {
		t.Fatalf("second Save error: %v", err)
	}
	got, _ = store.Load(ctx, "u1")
	if got.Summary != "updated" {
		t.Fatalf("expected upsert to replace, got %q", got.Summary)
	}
}

func TestSQLiteEmptyCollectionsSurvive(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	doc := &model.Resume{PersonalInfo: model.PersonalInfo{Name: "A"}}
	if err := store.Save(ctx, "u1", doc); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	got, err := store.Load(ctx, "u1")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got.Experience == nil || len(got.Experience) != 0 {
		t.Fatalf("expected empty experience list, got %#v", got.Experience)
	}
}

func TestSQLiteExportHistoryNewestFirst(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	for i, tpl := range []string{"standard", "ats", "europass"} {
		rec := &domain.ExportRecord{
			ID:        uuid.New(),
			UserID:    "u1",
			Template:  tpl,
			Format:    "A4",
			FileName:  "John_Doe_" + tpl + ".pdf",
			WidthPx:   1588,
			HeightPx:  2246,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.Record(ctx, rec); err != nil {
			t.Fatalf("Record error: %v", err)
		}
	}
	_ = store.Record(ctx, &domain.ExportRecord{ID: uuid.New(), UserID: "u2", Template: "ats", CreatedAt: base})

	got, err := store.List(ctx, "u1", 2)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 2 || got[0].Template != "europass" || got[1].Template != "ats" {
		t.Fatalf("expected two newest exports, got %+v", got)
	}
}
