package usecase

import (
	"context"
	"errors"

	"cv-builder/internal/apperr"
	"cv-builder/internal/render"
)

// Export pipeline stages, in order. Each failure is reported as an
// apperr.ExportError carrying the stage name.
const (
	StageCapture  = "capture"
	StageGeometry = "geometry"
	StageEmbed    = "embed"
)

// OverflowWarning is attached to a result whose content is taller than the
// page. The export still succeeds.
const OverflowWarning = "content may not fit one page"

var ErrNoSurface = errors.New("no rendered preview to capture")

// exportState is threaded through the stages.
type exportState struct {
	surface  *render.Document
	format   PageFormat
	scale    float64
	bitmap   *Bitmap
	geometry Geometry
	warnings []string
	pdf      []byte
}

type stage struct {
	name string
	run  func(ctx context.Context, c Capturer, s *exportState) error
}

var pipeline = []stage{
	{StageCapture, captureStage},
	{StageGeometry, geometryStage},
	{StageEmbed, embedStage},
}

func captureStage(ctx context.Context, c Capturer, s *exportState) error {
	if s.surface == nil || s.surface.HTML == "" {
		return ErrNoSurface
	}
	bmp, err := c.Capture(ctx, s.surface.HTML, s.scale)
	if err != nil {
		return err
	}
	if bmp == nil || len(bmp.PNG) == 0 {
		return errors.New("capture returned an empty bitmap")
	}
	s.bitmap = bmp
	return nil
}

// geometryStage also performs the warn step: overflow is recorded, never
// fatal.
func geometryStage(_ context.Context, _ Capturer, s *exportState) error {
	g, err := ComputeGeometry(s.bitmap.Width, s.bitmap.Height, s.format)
	if err != nil {
		return err
	}
	s.geometry = g
	if g.Overflow {
		s.warnings = append(s.warnings, OverflowWarning)
	}
	return nil
}

func embedStage(_ context.Context, _ Capturer, s *exportState) error {
	pdf, err := embedBitmap(s.bitmap, s.geometry, s.format)
	if err != nil {
		return err
	}
	s.pdf = pdf
	return nil
}

func runPipeline(ctx context.Context, c Capturer, s *exportState) error {
	for _, st := range pipeline {
		if err := st.run(ctx, c, s); err != nil {
			return apperr.Export(st.name, err)
		}
	}
	return nil
}
