package usecase

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/vasapolrittideah/account-api/shared/storage"
)

// ImageUsecase uploads and deletes profile images.
type ImageUsecase interface {
	Upload(ctx context.Context, params UploadImageParams) (string, error)
	// Delete removes an image. It reports ignored=true for URLs the store does not own.
	Delete(ctx context.Context, url string) (ignored bool, err error)
}

// UploadImageParams describes an uploaded file.
type UploadImageParams struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type imageUsecase struct {
	store    storage.BlobStore
	maxBytes int64
}

// NewImageUsecase creates a new ImageUsecase. store may be nil when no bucket is configured.
func NewImageUsecase(store storage.BlobStore, maxBytes int64) ImageUsecase {
	return &imageUsecase{store: store, maxBytes: maxBytes}
}

func (u *imageUsecase) Upload(ctx context.Context, params UploadImageParams) (string, error) {
	if u.store == nil {
		return "", ErrBlobStoreDisabled
	}
	if !strings.HasPrefix(params.ContentType, "image/") {
		return "", newValidationError("Only image uploads are allowed")
	}
	if params.Size <= 0 {
		return "", newValidationError("File is empty")
	}
	if params.Size > u.maxBytes {
		return "", newValidationError("File exceeds the maximum size of %d bytes", u.maxBytes)
	}

	return u.store.Upload(ctx, params.Filename, params.ContentType, io.LimitReader(params.Body, u.maxBytes))
}

func (u *imageUsecase) Delete(ctx context.Context, url string) (bool, error) {
	if u.store == nil {
		return false, ErrBlobStoreDisabled
	}
	if strings.TrimSpace(url) == "" {
		return false, newValidationError("No URL provided")
	}

	if err := u.store.Delete(ctx, url); err != nil {
		if errors.Is(err, storage.ErrForeignURL) {
			return true, nil
		}
		if errors.Is(err, storage.ErrEmptyKey) {
			return false, newValidationError("URL does not address an image")
		}
		return false, err
	}

	return false, nil
}
