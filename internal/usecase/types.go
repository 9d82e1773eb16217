package usecase

import (
	"context"

	"cv-builder/internal/domain"
)

// Bitmap is a captured page image.
type Bitmap struct {
	PNG    []byte
	Width  int
	Height int
}

// Capturer rasterizes a standalone HTML page. scale is the supersampling
// factor applied to the device pixel ratio.
type Capturer interface {
	Capture(ctx context.Context, html string, scale float64) (*Bitmap, error)
}

// ExportLog stores the export history.
type ExportLog interface {
	Record(ctx context.Context, r *domain.ExportRecord) error
	List(ctx context.Context, userID string, limit int) ([]domain.ExportRecord, error)
}

// ObjectStore keeps uploaded photos. Put returns the public URI of the
// stored object; Delete accepts that URI. Key maps a URI back to its object
// key and reports false for URIs the store did not hand out.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, uri string) error
	Key(uri string) (string, bool)
}

// Formatter turns a request payload into a structured model reply.
type Formatter interface {
	Format(ctx context.Context, payload map[string]interface{}) (map[string]interface{}, error)
}
