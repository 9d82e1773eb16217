package usecase

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"net/http"
	"net/url"
	"path"
	"strings"

	"cv-builder/internal/apperr"
	"cv-builder/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
)

// MaxPhotoBytes is the largest accepted upload. Exactly this size is
// allowed.
const MaxPhotoBytes = 2 << 20

var photoTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
}

type PhotoOptions struct {
	// MaxDimension downscales larger photos so neither side exceeds it.
	// Zero keeps the original bytes.
	MaxDimension int
	Quality      int
}

// PhotoService validates profile photos and hands them to an ObjectStore.
type PhotoService struct {
	store   ObjectStore
	opts    PhotoOptions
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewPhotoService(store ObjectStore, opts PhotoOptions, logger *zap.Logger, m *metrics.Metrics) *PhotoService {
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = 85
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PhotoService{store: store, opts: opts, logger: logger, metrics: m}
}

// Upload stores a JPEG or PNG photo for userID and returns its URI. All
// checks run before the object store is contacted.
func (p *PhotoService) Upload(ctx context.Context, userID string, data []byte, declaredType string) (string, error) {
	uri, err := p.upload(ctx, userID, data, declaredType)
	p.metrics.Upload(err)
	if err != nil {
		p.logger.Info("photo upload rejected", zap.String("user_id", userID), zap.Error(err))
	}
	return uri, err
}

func (p *PhotoService) upload(ctx context.Context, userID string, data []byte, declaredType string) (string, error) {
	if len(data) == 0 {
		return "", &apperr.UploadError{Reason: "file is empty"}
	}
	if len(data) > MaxPhotoBytes {
		return "", &apperr.UploadError{Reason: fmt.Sprintf("file exceeds %d bytes", MaxPhotoBytes), TooLarge: true}
	}
	sniffed := http.DetectContentType(data)
	ext, ok := photoTypes[sniffed]
	if !ok {
		return "", &apperr.UploadError{Reason: "only JPEG and PNG images are accepted"}
	}
	if declaredType != "" && normalizeType(declaredType) != sniffed {
		return "", &apperr.UploadError{Reason: fmt.Sprintf("declared type %s does not match content %s", declaredType, sniffed)}
	}

	contentType := sniffed
	if p.opts.MaxDimension > 0 {
		resized, changed, err := downscale(data, p.opts.MaxDimension, p.opts.Quality)
		if err != nil {
			return "", &apperr.UploadError{Reason: "image could not be decoded", Err: err}
		}
		if changed {
			data, contentType, ext = resized, "image/jpeg", "jpg"
		}
	}

	key := fmt.Sprintf("%s%s.%s", photoPrefix(userID), uuid.NewString(), ext)
	uri, err := p.store.Put(ctx, key, contentType, data)
	if err != nil {
		return "", &apperr.UploadError{Reason: "storage write failed", Err: err}
	}
	return uri, nil
}

// photoPrefix is the key prefix owned by userID.
func photoPrefix(userID string) string {
	return "photos/" + url.PathEscape(userID) + "/"
}

// Owns reports whether uri is an object this store holds under userID's
// prefix.
func (p *PhotoService) Owns(userID, uri string) bool {
	key, ok := p.store.Key(uri)
	if !ok || key != path.Clean(key) {
		return false
	}
	return strings.HasPrefix(key, photoPrefix(userID))
}

// Remove deletes a photo previously uploaded by userID. A URI outside the
// user's prefix is left alone and logged.
func (p *PhotoService) Remove(ctx context.Context, userID, uri string) error {
	if uri == "" {
		return nil
	}
	if !p.Owns(userID, uri) {
		p.logger.Warn("skipping delete of photo not owned by user", zap.String("user_id", userID), zap.String("uri", uri))
		return nil
	}
	if err := p.store.Delete(ctx, uri); err != nil {
		return &apperr.UploadError{Reason: "storage delete failed", Err: err}
	}
	return nil
}

func normalizeType(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	if t == "image/jpg" || t == "image/pjpeg" {
		return "image/jpeg"
	}
	return t
}

// downscale fits the image inside limit x limit and re-encodes it as JPEG.
// Images already small enough are left untouched.
func downscale(data []byte, limit, quality int) ([]byte, bool, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, false, err
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= limit && h <= limit {
		return nil, false, nil
	}
	if w >= h {
		h = h * limit / w
		w = limit
	} else {
		w = w * limit / h
		h = limit
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality}); err != nil {
		return nil, false, err
	}
	return buf.Bytes(), true, nil
}
