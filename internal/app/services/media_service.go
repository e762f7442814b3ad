package services

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/campushub/internal/pkg/apperrors"
	"github.com/yigit/campushub/internal/pkg/filestorage"
)

// image types accepted for avatars, logos and banners, with the stored extension
var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// MediaService validates image uploads and moves them into object storage
type MediaService struct {
	storage  filestorage.ObjectStorage
	maxBytes int64
	logger   zerolog.Logger
}

// NewMediaService creates a new MediaService
func NewMediaService(storage filestorage.ObjectStorage, maxBytes int64, logger zerolog.Logger) *MediaService {
	return &MediaService{
		storage:  storage,
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// UploadedImage is a stored object with its public URL
type UploadedImage struct {
	Object *filestorage.Object
	URL    string
}

// UploadImage reads at most maxBytes from r, sniffs the content type and
// stores the bytes under bucket/<owner>/<uuid><ext>.
func (m *MediaService) UploadImage(ctx context.Context, bucket, owner string, r io.Reader) (*UploadedImage, error) {
	data, err := io.ReadAll(io.LimitReader(r, m.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > m.maxBytes {
		return nil, apperrors.NewCustomError(apperrors.ErrUploadTooLarge,
			fmt.Sprintf("file exceeds the %d byte limit", m.maxBytes))
	}
	if len(data) == 0 {
		return nil, apperrors.NewBadRequestError("file is empty")
	}

	detected := mimetype.Detect(data)
	ext := ""
	contentType := ""
	for ct, e := range imageExtensions {
		if detected.Is(ct) {
			ext, contentType = e, ct
			break
		}
	}
	if ext == "" {
		return nil, apperrors.NewCustomError(apperrors.ErrUnsupportedMediaType,
			fmt.Sprintf("unsupported image type %s; use png, jpeg, gif or webp", detected.String()))
	}

	objectPath := owner + "/" + uuid.NewString() + ext
	obj, err := m.storage.Upload(ctx, bucket, objectPath, bytes.NewReader(data), contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	return &UploadedImage{Object: obj, URL: m.storage.PublicURL(bucket, obj.Path)}, nil
}

// Discard removes an uploaded object after a failed row write. Failures are logged only.
func (m *MediaService) Discard(ctx context.Context, img *UploadedImage) {
	if img == nil || img.Object == nil {
		return
	}
	if err := m.storage.Remove(ctx, img.Object.Bucket, img.Object.Path); err != nil {
		m.logger.Warn().Err(err).Str("bucket", img.Object.Bucket).Str("path", img.Object.Path).Msg("Failed to remove orphaned upload")
	}
}

// RemoveByURL deletes the previous object behind a stored URL when this
// storage issued it. Failures are logged only.
func (m *MediaService) RemoveByURL(ctx context.Context, bucket string, url *string) {
	if url == nil || *url == "" {
		return
	}
	objectPath, ok := m.storage.ObjectPathFromURL(bucket, *url)
	if !ok {
		return
	}
	if err := m.storage.Remove(ctx, bucket, objectPath); err != nil {
		m.logger.Warn().Err(err).Str("bucket", bucket).Str("path", objectPath).Msg("Failed to remove replaced object")
	}
}

// ReplaceImage uploads a new image, hands its URL to save and cleans up:
// on a failed save the new object is removed, on success the previous one is.
func (m *MediaService) ReplaceImage(ctx context.Context, bucket, owner string, r io.Reader, previous *string, save func(url string) error) (string, error) {
	img, err := m.UploadImage(ctx, bucket, owner, r)
	if err != nil {
		return "", err
	}
	if err := save(img.URL); err != nil {
		m.Discard(ctx, img)
		return "", err
	}
	m.RemoveByURL(ctx, bucket, previous)
	return img.URL, nil
}
