package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

// GCSUploader writes private, write-once objects to one bucket, optionally
// under a key prefix.
type GCSUploader struct {
	client *gcs.Client
	bucket string
	prefix string
}

func NewGCSUploader(ctx context.Context, bucket, prefix string) (*GCSUploader, error) {
	c, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &GCSUploader{client: c, bucket: bucket, prefix: prefix}, nil
}

func (u *GCSUploader) Close() error { return u.client.Close() }

func (u *GCSUploader) Upload(ctx context.Context, obj Object, r io.Reader) (string, error) {
	name := path.Join(u.prefix, obj.Name)
	w := u.client.Bucket(u.bucket).Object(name).
		If(gcs.Conditions{DoesNotExist: true}).
		NewWriter(ctx)
	w.ContentType = obj.ContentType
	w.Metadata = obj.Metadata
	w.CacheControl = "private, max-age=0"

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed {
			return "", fmt.Errorf("%s: %w", name, ErrExists)
		}
		return "", err
	}

	return fmt.Sprintf("gs://%s/%s", u.bucket, name), nil
}
