package usecase

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"golang.org/x/image/draw"
)

func init() {
	// pdfcpu otherwise creates a config directory under the user's home.
	api.DisableConfigDir()
}

// embedBitmap writes a single-page PDF of format f with the bitmap anchored
// top-left at full page width. Rows below the page edge are cut off.
func embedBitmap(bmp *Bitmap, g Geometry, f PageFormat) ([]byte, error) {
	img := bmp.PNG
	if g.Overflow {
		cropped, err := cropRows(bmp.PNG, g.visibleHeightPx(bmp.Width, bmp.Height))
		if err != nil {
			return nil, err
		}
		img = cropped
	}

	imp, err := api.Import(fmt.Sprintf("formsize:%s, position:tl, scalefactor:1.0 rel", f.Name), types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("import settings: %w", err)
	}
	conf := pdfmodel.NewDefaultConfiguration()

	var out bytes.Buffer
	if err := api.ImportImages(nil, &out, []io.Reader{bytes.NewReader(img)}, imp, conf); err != nil {
		return nil, fmt.Errorf("import image: %w", err)
	}

	n, err := api.PageCount(bytes.NewReader(out.Bytes()), conf)
	if err != nil {
		return nil, fmt.Errorf("verify output: %w", err)
	}
	if n != 1 {
		return nil, fmt.Errorf("expected one page, got %d", n)
	}
	return out.Bytes(), nil
}

// cropRows keeps the top rows of a PNG.
func cropRows(data []byte, rows int) ([]byte, error) {
	src, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode bitmap: %w", err)
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), rows))
	draw.Copy(dst, image.Point{}, src, image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+rows), draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode bitmap: %w", err)
	}
	return buf.Bytes(), nil
}
