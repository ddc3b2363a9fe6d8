// Package storage pushes locally staged media files to object storage and
// reports the public URL of the stored object.
package storage

import (
	"context"
	"errors"
)

var (
	ErrEmptyPath = errors.New("storage: local path is empty")
	ErrEmptyURL  = errors.New("storage: upload returned no url")
)

type UploadResult struct {
	URL string
	Key string
}

// Uploader stores the file at localPath and returns where it can be fetched.
// Uploader never removes localPath; the caller owns the temp file.
type Uploader interface {
	Upload(ctx context.Context, localPath string) (*UploadResult, error)
}
