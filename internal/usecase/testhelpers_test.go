package usecase

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"

	"cv-builder/internal/domain"
)

func solidPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

type stubCapturer struct {
	mu     sync.Mutex
	bitmap *Bitmap
	err    error
	calls  int
	scales []float64
}

func (s *stubCapturer) Capture(_ context.Context, _ string, scale float64) (*Bitmap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.scales = append(s.scales, scale)
	if s.err != nil {
		return nil, s.err
	}
	cp := *s.bitmap
	return &cp, nil
}

type memoryLog struct {
	mu      sync.Mutex
	records []domain.ExportRecord
	err     error
}

func (m *memoryLog) Record(_ context.Context, r *domain.ExportRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, *r)
	return nil
}

func (m *memoryLog) List(_ context.Context, userID string, limit int) ([]domain.ExportRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ExportRecord
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		if m.records[i].UserID == userID {
			out = append(out, m.records[i])
		}
	}
	return out, nil
}

type memoryObjects struct {
	mu      sync.Mutex
	puts    int
	deletes int
	objects map[string][]byte
	types   map[string]string
	err     error
}

func newMemoryObjects() *memoryObjects {
	return &memoryObjects{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memoryObjects) Put(_ context.Context, key, contentType string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	if m.err != nil {
		return "", m.err
	}
	uri := "mem://" + key
	m.objects[uri] = data
	m.types[uri] = contentType
	return uri, nil
}

func (m *memoryObjects) Key(uri string) (string, bool) {
	return strings.CutPrefix(uri, "mem://")
}

func (m *memoryObjects) Delete(_ context.Context, uri string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	if m.err != nil {
		return m.err
	}
	delete(m.objects, uri)
	return nil
}

type stubFormatter struct {
	mu    sync.Mutex
	out   map[string]interface{}
	err   error
	calls int
	last  map[string]interface{}
}

func (s *stubFormatter) Format(_ context.Context, payload map[string]interface{}) (map[string]interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.last = payload
	return s.out, s.err
}
