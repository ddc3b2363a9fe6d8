package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dom/account-service/internal/domain"
	"github.com/dom/account-service/internal/service"
)

const multipartMemory = 8 << 20

// fileStager copies multipart file parts into temp files so the upload
// collaborator can stream them from disk.
type fileStager struct {
	dir      string
	maxBytes int64
}

func (s fileStager) parse(w http.ResponseWriter, r *http.Request) error {
	if s.maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domain.ValidationError("Uploaded files are too large").WithStatus(http.StatusRequestEntityTooLarge)
		}
		return domain.ValidationError("Invalid multipart form").Wrap(err)
	}
	return nil
}

// stage returns nil when the form has no file under field.
func (s fileStager) stage(r *http.Request, field string) (*service.LocalFile, error) {
	src, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, domain.ValidationError(fmt.Sprintf("Invalid %s file", field)).Wrap(err)
	}
	defer src.Close()

	dst, err := os.CreateTemp(s.dir, "upload-*"+safeExt(header.Filename))
	if err != nil {
		return nil, domain.InternalError(fmt.Errorf("create temp file: %w", err))
	}
	defer dst.Close()

	n, err := io.Copy(dst, src)
	if err != nil {
		os.Remove(dst.Name())
		return nil, domain.InternalError(fmt.Errorf("stage %s: %w", field, err))
	}

	return &service.LocalFile{
		Path:     dst.Name(),
		Filename: header.Filename,
		Size:     n,
	}, nil
}

// cleanup removes staged files the service did not consume.
func cleanup(r *http.Request, files ...*service.LocalFile) {
	for _, f := range files {
		if f != nil {
			os.Remove(f.Path)
		}
	}
	if r.MultipartForm != nil {
		r.MultipartForm.RemoveAll()
	}
}

func safeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) > 10 || strings.ContainsAny(ext, `/\`) {
		return ""
	}
	return ext
}
