package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"path/filepath"
	"time"

	"cv-builder/internal/usecase"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

const (
	// 210mm at 96 CSS px per inch.
	a4WidthCSSPx  = 794
	a4HeightCSSPx = 1123

	DefaultSurfaceSelector = ".page"
)

var ErrImageLoad = errors.New("image failed to load")

// waitImagesJS resolves to the number of <img> elements that failed to
// load. A cross-origin photo without CORS headers counts as failed.
const waitImagesJS = `Promise.all(Array.from(document.images).map(function (img) {
	if (img.complete) { return img.naturalWidth > 0; }
	return new Promise(function (resolve) {
		img.addEventListener('load', function () { resolve(true); });
		img.addEventListener('error', function () { resolve(false); });
	});
})).then(function (r) { return r.filter(function (ok) { return !ok; }).length; })`

// ChromedpCapturer screenshots the rendered surface with headless Chrome.
type ChromedpCapturer struct {
	ExecPath string
	Selector string
	Timeout  time.Duration
}

func NewChromedpCapturer(execPath string, timeout time.Duration) *ChromedpCapturer {
	if execPath == "" {
		execPath = os.Getenv("CHROME_PATH")
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &ChromedpCapturer{ExecPath: execPath, Selector: DefaultSurfaceSelector, Timeout: timeout}
}

func (r *ChromedpCapturer) Capture(ctx context.Context, html string, scale float64) (*usecase.Bitmap, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("hide-scrollbars", true),
	)
	if r.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(r.ExecPath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	cctx, cancelCtx := chromedp.NewContext(allocCtx)
	defer cancelCtx()

	runCtx, cancelRun := context.WithTimeout(cctx, r.Timeout)
	defer cancelRun()

	tmpDir, err := os.MkdirTemp("", "cv-capture-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpDir)

	htmlPath := filepath.Join(tmpDir, "index.html")
	if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
		return nil, err
	}

	var (
		failed int
		buf    []byte
	)
	err = chromedp.Run(runCtx,
		chromedp.EmulateViewport(a4WidthCSSPx, a4HeightCSSPx, chromedp.EmulateScale(scale)),
		chromedp.Navigate("file://"+htmlPath),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(waitImagesJS, &failed, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithAwaitPromise(true)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			if failed > 0 {
				return fmt.Errorf("%w: %d image(s)", ErrImageLoad, failed)
			}
			return nil
		}),
		chromedp.Screenshot(r.Selector, &buf, chromedp.ByQuery),
	)
	if err != nil {
		return nil, err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("decode screenshot: %w", err)
	}
	return &usecase.Bitmap{PNG: buf, Width: cfg.Width, Height: cfg.Height}, nil
}
