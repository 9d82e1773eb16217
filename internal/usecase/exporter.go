package usecase

import (
	"context"
	"errors"
	"time"

	"cv-builder/internal/apperr"
	"cv-builder/internal/domain"
	"cv-builder/internal/metrics"
	"cv-builder/internal/render"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MinScale is the lowest supersampling factor the capture stage accepts.
const MinScale = 2.0

type ExportRequest struct {
	UserID    string
	OwnerName string
	Surface   *render.Document
	Format    PageFormat
}

type ExportResult struct {
	PDF      []byte
	FileName string
	Geometry Geometry
	Warnings []string
	WidthPx  int
	HeightPx int
}

// Exporter captures the active preview surface and embeds it into a
// single-page PDF. Failures are not retried.
type Exporter struct {
	capturer Capturer
	history  ExportLog
	logger   *zap.Logger
	metrics  *metrics.Metrics
	scale    float64
	now      func() time.Time
}

func NewExporter(c Capturer, history ExportLog, logger *zap.Logger, m *metrics.Metrics, scale float64) *Exporter {
	if scale < MinScale {
		scale = MinScale
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{capturer: c, history: history, logger: logger, metrics: m, scale: scale, now: time.Now}
}

func (e *Exporter) Export(ctx context.Context, req ExportRequest) (*ExportResult, error) {
	start := e.now()
	if req.Format.Name == "" {
		req.Format = A4
	}
	s := &exportState{surface: req.Surface, format: req.Format, scale: e.scale}

	if err := runPipeline(ctx, e.capturer, s); err != nil {
		var ee *apperr.ExportError
		stage := "unknown"
		if errors.As(err, &ee) {
			stage = ee.Stage
		}
		e.logger.Error("export failed", zap.String("user_id", req.UserID), zap.String("stage", stage), zap.Error(err))
		e.metrics.Export(stage, false, 0)
		return nil, err
	}

	tpl := string(req.Surface.Template)
	res := &ExportResult{
		PDF:      s.pdf,
		FileName: FileName(req.OwnerName, tpl),
		Geometry: s.geometry,
		Warnings: s.warnings,
		WidthPx:  s.bitmap.Width,
		HeightPx: s.bitmap.Height,
	}
	if s.geometry.Overflow {
		e.logger.Warn("export overflows page", zap.String("user_id", req.UserID), zap.Float64("image_height_mm", s.geometry.ImageHeightMM))
	}
	e.metrics.Export("", s.geometry.Overflow, e.now().Sub(start))
	e.record(ctx, req, res)
	return res, nil
}

// History returns the most recent exports of a user, newest first.
func (e *Exporter) History(ctx context.Context, userID string, limit int) ([]domain.ExportRecord, error) {
	if e.history == nil {
		return []domain.ExportRecord{}, nil
	}
	recs, err := e.history.List(ctx, userID, limit)
	if err != nil {
		return nil, apperr.Persistence("list exports", err)
	}
	return recs, nil
}

// record is best-effort: a history failure never fails the export.
func (e *Exporter) record(ctx context.Context, req ExportRequest, res *ExportResult) {
	if e.history == nil {
		return
	}
	rec := &domain.ExportRecord{
		ID:        uuid.New(),
		UserID:    req.UserID,
		Template:  string(req.Surface.Template),
		Format:    req.Format.Name,
		FileName:  res.FileName,
		WidthPx:   res.WidthPx,
		HeightPx:  res.HeightPx,
		Overflow:  res.Geometry.Overflow,
		SizeBytes: len(res.PDF),
		CreatedAt: e.now().UTC(),
	}
	if err := e.history.Record(ctx, rec); err != nil {
		e.logger.Warn("failed to record export", zap.String("user_id", req.UserID), zap.Error(err))
	}
}
