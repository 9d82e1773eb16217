package usecase

import (
	"errors"
	"fmt"
	"strings"
)

// PageFormat is a physical page size in millimetres.
type PageFormat struct {
	Name     string
	WidthMM  float64
	HeightMM float64
}

var (
	A4     = PageFormat{Name: "A4", WidthMM: 210, HeightMM: 297}
	Letter = PageFormat{Name: "Letter", WidthMM: 215.9, HeightMM: 279.4}
)

var ErrUnknownFormat = errors.New("unknown page format")

// ParsePageFormat accepts "A4" or "Letter" in any case. Empty means A4.
func ParsePageFormat(s string) (PageFormat, error) {
	switch strings.ToLower(s) {
	case "", "a4":
		return A4, nil
	case "letter":
		return Letter, nil
	}
	return PageFormat{}, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Geometry places a captured bitmap on one page: the image spans the full
// page width and keeps its aspect ratio.
type Geometry struct {
	PageWidthMM   float64 `json:"pageWidthMm"`
	PageHeightMM  float64 `json:"pageHeightMm"`
	ImageHeightMM float64 `json:"imageHeightMm"`
	Overflow      bool    `json:"overflow"`
}

func ComputeGeometry(widthPx, heightPx int, f PageFormat) (Geometry, error) {
	if widthPx <= 0 || heightPx <= 0 {
		return Geometry{}, fmt.Errorf("bitmap has no area: %dx%d", widthPx, heightPx)
	}
	h := f.WidthMM * float64(heightPx) / float64(widthPx)
	return Geometry{
		PageWidthMM:   f.WidthMM,
		PageHeightMM:  f.HeightMM,
		ImageHeightMM: h,
		Overflow:      h > f.HeightMM,
	}, nil
}

// visibleHeightPx is how many bitmap rows fit on the page.
func (g Geometry) visibleHeightPx(widthPx, heightPx int) int {
	if !g.Overflow {
		return heightPx
	}
	rows := int(float64(widthPx) * g.PageHeightMM / g.PageWidthMM)
	if rows < 1 {
		rows = 1
	}
	if rows > heightPx {
		rows = heightPx
	}
	return rows
}
