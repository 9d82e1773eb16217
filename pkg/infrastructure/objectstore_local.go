package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalObjectStore writes photos under a directory that the HTTP server
// exposes at baseURL.
type LocalObjectStore struct {
	dir     string
	baseURL string
}

func NewLocalObjectStore(dir, baseURL string) (*LocalObjectStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &LocalObjectStore{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (s *LocalObjectStore) path(key string) (string, error) {
	p := filepath.Join(s.dir, filepath.FromSlash(key))
	rel, err := filepath.Rel(s.dir, p)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("key %q escapes media dir", key)
	}
	return p, nil
}

func (s *LocalObjectStore) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	p, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", err
	}
	return s.baseURL + "/" + key, nil
}

func (s *LocalObjectStore) Key(uri string) (string, bool) {
	key, ok := strings.CutPrefix(uri, s.baseURL+"/")
	return key, ok && key != ""
}

func (s *LocalObjectStore) Delete(_ context.Context, uri string) error {
	key, ok := s.Key(uri)
	if !ok {
		return fmt.Errorf("%q is not a local media url", uri)
	}
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
