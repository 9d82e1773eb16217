package usecase

import (
	"bytes"
	"context"
	"errors"
	"image"
	"testing"

	"cv-builder/internal/apperr"
)

func jpegSized(n int) []byte {
	b := make([]byte, n)
	copy(b, []byte{0xFF, 0xD8, 0xFF, 0xE0})
	return b
}

func TestUploadSizeBoundary(t *testing.T) {
	t.Parallel()

	store := newMemoryObjects()
	svc := NewPhotoService(store, PhotoOptions{}, nil, nil)

	uri, err := svc.Upload(context.Background(), "u1", jpegSized(MaxPhotoBytes), "image/jpeg")
	if err != nil {
		t.Fatalf("expected exactly 2 MiB to be accepted, got %v", err)
	}
	if uri == "" || store.puts != 1 {
		t.Fatalf("expected one stored object, got uri=%q puts=%d", uri, store.puts)
	}

	_, err = svc.Upload(context.Background(), "u1", jpegSized(MaxPhotoBytes+1), "image/jpeg")
	var ue *apperr.UploadError
	if !errors.As(err, &ue) || !ue.TooLarge {
		t.Fatalf("expected too-large UploadError, got %v", err)
	}
	if store.puts != 1 {
		t.Fatalf("expected no storage call for rejected upload, got %d puts", store.puts)
	}
}

func TestUploadRejectsOtherTypes(t *testing.T) {
	t.Parallel()

	store := newMemoryObjects()
	svc := NewPhotoService(store, PhotoOptions{}, nil, nil)

	gif := append([]byte("GIF89a"), make([]byte, 32)...)
	if _, err := svc.Upload(context.Background(), "u1", gif, ""); err == nil {
		t.Fatalf("expected GIF to be rejected")
	}
	if _, err := svc.Upload(context.Background(), "u1", jpegSized(64), "image/png"); err == nil {
		t.Fatalf("expected mismatched declared type to be rejected")
	}
	if store.puts != 0 {
		t.Fatalf("expected no storage calls, got %d", store.puts)
	}
}

func TestUploadAcceptsJPGAlias(t *testing.T) {
	t.Parallel()

	svc := NewPhotoService(newMemoryObjects(), PhotoOptions{}, nil, nil)
	if _, err := svc.Upload(context.Background(), "u1", jpegSized(64), "image/jpg"); err != nil {
		t.Fatalf("expected image/jpg to be accepted, got %v", err)
	}
}

func TestUploadDownscalesLargePhotos(t *testing.T) {
	t.Parallel()

	store := newMemoryObjects()
	svc := NewPhotoService(store, PhotoOptions{MaxDimension: 100}, nil, nil)

	uri, err := svc.Upload(context.Background(), "u1", solidPNG(t, 400, 200), "image/png")
	if err != nil {
		t.Fatalf("Upload error: %v", err)
	}
	if store.types[uri] != "image/jpeg" {
		t.Fatalf("expected re-encoded JPEG, got %s", store.types[uri])
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(store.objects[uri]))
	if err != nil {
		t.Fatalf("decode stored photo: %v", err)
	}
	if format != "jpeg" || cfg.Width != 100 || cfg.Height != 50 {
		t.Fatalf("expected 100x50 jpeg, got %dx%d %s", cfg.Width, cfg.Height, format)
	}
}

func TestRemoveWrapsStoreFailure(t *testing.T) {
	t.Parallel()

	store := newMemoryObjects()
	store.err = errors.New("bucket gone")
	svc := NewPhotoService(store, PhotoOptions{}, nil, nil)

	var ue *apperr.UploadError
	if err := svc.Remove(context.Background(), "u1", "mem://photos/u1/a.jpg"); !errors.As(err, &ue) {
		t.Fatalf("expected UploadError, got %v", err)
	}
	if err := svc.Remove(context.Background(), "u1", ""); err != nil {
		t.Fatalf("expected empty uri to be a no-op, got %v", err)
	}
}

func TestRemoveOnlyDeletesOwnPhotos(t *testing.T) {
	t.Parallel()

	store := newMemoryObjects()
	svc := NewPhotoService(store, PhotoOptions{}, nil, nil)
	ctx := context.Background()

	for _, uri := range []string{
		"mem://photos/u2/a.jpg",
		"mem://photos/u1/../u2/a.jpg",
		"mem://photos/u10/a.jpg",
		"https://elsewhere.example/photos/u1/a.jpg",
	} {
		if err := svc.Remove(ctx, "u1", uri); err != nil {
			t.Fatalf("%s: expected foreign photo to be skipped, got %v", uri, err)
		}
	}
	if store.deletes != 0 {
		t.Fatalf("expected no deletes for foreign photos, got %d", store.deletes)
	}

	uri, err := svc.Upload(ctx, "u1", jpegSized(64), "image/jpeg")
	if err != nil {
		t.Fatalf("Upload error: %v", err)
	}
	if !svc.Owns("u1", uri) || svc.Owns("u2", uri) {
		t.Fatalf("expected %s to belong to u1 only", uri)
	}
	if err := svc.Remove(ctx, "u1", uri); err != nil {
		t.Fatalf("Remove error: %v", err)
	}
	if store.deletes != 1 {
		t.Fatalf("expected own photo deleted, got %d deletes", store.deletes)
	}
}
