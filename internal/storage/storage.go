// Package storage writes exported artefacts to object storage.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrExists is returned when an object is already stored under the name.
// Archives are write-once.
var ErrExists = errors.New("storage: object already exists")

type Object struct {
	Name        string
	ContentType string
	Metadata    map[string]string
}

type Uploader interface {
	// Upload returns the stored location, e.g. gs://bucket/name.
	Upload(ctx context.Context, obj Object, r io.Reader) (string, error)
}
