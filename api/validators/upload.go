package validators

import (
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	pkgerrors "github.com/sellerdesk/sellerdesk-backend/pkg/errors"
)

// UploadedFile is a multipart file plus the MIME type resolved for it.
type UploadedFile struct {
	File        multipart.File
	Filename    string
	ContentType string
	Size        int64
}

func (u *UploadedFile) Close() {
	if u != nil && u.File != nil {
		_ = u.File.Close()
	}
}

var extensionTypes = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// FormFile extracts a multipart file, resolving its MIME type from the part
// header and falling back to the filename extension. maxBytes bounds the
// whole request body.
func FormFile(r *http.Request, field string, maxBytes int64) (*UploadedFile, error) {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)
	}
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart request")
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file field missing").
			WithDetails(map[string]any{"field": field})
	}
	return &UploadedFile{
		File:        file,
		Filename:    header.Filename,
		ContentType: resolveContentType(header),
		Size:        header.Size,
	}, nil
}

// OptionalFormFile behaves like FormFile but returns nil when the field is
// absent from the form.
func OptionalFormFile(r *http.Request, field string, maxBytes int64) (*UploadedFile, error) {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)
	}
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart request")
	}
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid file field").
			WithDetails(map[string]any{"field": field})
	}
	return &UploadedFile{
		File:        file,
		Filename:    header.Filename,
		ContentType: resolveContentType(header),
		Size:        header.Size,
	}, nil
}

func resolveContentType(header *multipart.FileHeader) string {
	raw := header.Header.Get("Content-Type")
	if raw != "" && raw != "application/octet-stream" {
		if mediaType, _, err := mime.ParseMediaType(raw); err == nil {
			return mediaType
		}
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	return extensionTypes[ext]
}
