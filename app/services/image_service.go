package services

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/tradebridge/tradebridge/pkg/apperr"
	"github.com/tradebridge/tradebridge/pkg/auth"
	"github.com/tradebridge/tradebridge/pkg/rbac"
	"github.com/tradebridge/tradebridge/pkg/storage"
)

// MaxImageBytes caps a single product image upload.
const MaxImageBytes int64 = 5 << 20

var imageExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// StoredImage describes an uploaded image.
type StoredImage struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// ImageService stores product images on the configured disk.
type ImageService struct {
	disk storage.Disk
}

// NewImageService returns an ImageService writing to disk.
func NewImageService(disk storage.Disk) *ImageService {
	return &ImageService{disk: disk}
}

// Store reads at most MaxImageBytes from r, sniffs the content type,
// rejects anything but common image formats, and writes it under
// products/<caller id>/.
func (s *ImageService) Store(ctx context.Context, id *auth.Identity, r io.Reader) (*StoredImage, error) {
	if err := rbac.Authorize(id, rbac.UploadImage); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "Could not read upload", err)
	}
	if len(data) == 0 {
		return nil, apperr.Validation(map[string]string{"image": "The image field is required."})
	}
	if int64(len(data)) > MaxImageBytes {
		return nil, apperr.Validation(map[string]string{"image": "The image must not be greater than 5 MB."})
	}

	contentType := http.DetectContentType(data)
	ext, ok := imageExt[contentType]
	if !ok {
		return nil, apperr.Validation(map[string]string{"image": "The image must be a jpeg, png, gif or webp file."})
	}

	key, err := storage.CleanKey("products/" + id.UserID + "/" + uuid.NewString() + ext)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if err := s.disk.Put(ctx, key, bytes.NewReader(data), contentType); err != nil {
		return nil, apperr.Internal(err)
	}
	return &StoredImage{Path: key, URL: s.disk.URL(key)}, nil
}
