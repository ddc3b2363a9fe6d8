package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dom/account-service/internal/logging"
	"github.com/dom/account-service/internal/storage"
)

// LocalFile is a media file staged on local disk by the transport layer.
type LocalFile struct {
	Path     string
	Filename string
	Size     int64
}

// mediaUploader bounds every upload with a timeout and removes the staged
// file once the attempt is over, whatever its outcome.
type mediaUploader struct {
	uploader storage.Uploader
	timeout  time.Duration
	log      logging.Logger
}

func newMediaUploader(uploader storage.Uploader, timeout time.Duration, log logging.Logger) *mediaUploader {
	return &mediaUploader{uploader: uploader, timeout: timeout, log: log}
}

type uploadOutcome struct {
	res *storage.UploadResult
	err error
}

// upload returns the public URL of the stored file. The call is abandoned
// once the timeout elapses even if the uploader ignores ctx.
func (m *mediaUploader) upload(ctx context.Context, file *LocalFile) (string, error) {
	defer m.discard(ctx, file)

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	done := make(chan uploadOutcome, 1)
	go func() {
		res, err := m.uploader.Upload(ctx, file.Path)
		done <- uploadOutcome{res: res, err: err}
	}()

	var out uploadOutcome
	select {
	case out = <-done:
	case <-ctx.Done():
		return "", fmt.Errorf("upload %s: %w", file.Filename, ctx.Err())
	}

	if out.err != nil {
		return "", fmt.Errorf("upload %s: %w", file.Filename, out.err)
	}
	if out.res == nil || out.res.URL == "" {
		return "", storage.ErrEmptyURL
	}
	return out.res.URL, nil
}

// discard removes a staged file that will not be uploaded. Removal failures
// are logged and otherwise ignored.
func (m *mediaUploader) discard(ctx context.Context, file *LocalFile) {
	if file == nil || file.Path == "" {
		return
	}
	if err := os.Remove(file.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		m.log.Warn(ctx, "failed to remove temp upload", "path", file.Path, "error", err)
	}
}
