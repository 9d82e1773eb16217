package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

const gcsPublicHost = "https://storage.googleapis.com/"

// GCSObjectStore keeps photos in a bucket and hands out public object URLs.
type GCSObjectStore struct {
	bucket *storage.BucketHandle
	name   string
}

func NewGCSObjectStore(client *storage.Client, bucket string) *GCSObjectStore {
	return &GCSObjectStore{bucket: client.Bucket(bucket), name: bucket}
}

func (s *GCSObjectStore) URL(key string) string {
	return gcsPublicHost + s.name + "/" + key
}

// Put writes the object only if it does not exist yet. Keys are unique per
// upload, so an existing object is the same upload retried by the client.
func (s *GCSObjectStore) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	w := s.bucket.Object(key).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=31536000"

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write gcs object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed {
			return s.URL(key), nil
		}
		return "", fmt.Errorf("finalize gcs object %s: %w", key, err)
	}
	return s.URL(key), nil
}

// Key returns the object key of a URL handed out by Put.
func (s *GCSObjectStore) Key(uri string) (string, bool) {
	key, ok := strings.CutPrefix(uri, gcsPublicHost+s.name+"/")
	return key, ok && key != ""
}

// Delete removes the object behind uri. A missing object is not an error.
func (s *GCSObjectStore) Delete(ctx context.Context, uri string) error {
	key, ok := s.Key(uri)
	if !ok {
		return fmt.Errorf("%q is not an object of bucket %s", uri, s.name)
	}
	err := s.bucket.Object(key).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusNotFound {
		return nil
	}
	return err
}
