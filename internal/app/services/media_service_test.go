package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/campushub/internal/app/models/dto"
	"github.com/yigit/campushub/internal/pkg/apperrors"
	"github.com/yigit/campushub/internal/pkg/filestorage"
)

func TestUploadImageRejectsBadInput(t *testing.T) {
	storage := newMemoryStorage()
	media := NewMediaService(storage, 64, nopLogger())
	ctx := context.Background()

	_, err := media.UploadImage(ctx, filestorage.BucketAvatars, "1", bytes.NewReader(nil))
	assert.True(t, errors.Is(err, apperrors.ErrBadRequest))

	_, err = media.UploadImage(ctx, filestorage.BucketAvatars, "1", strings.NewReader("plain text is not an image"))
	assert.True(t, errors.Is(err, apperrors.ErrUnsupportedMediaType))

	_, err = media.UploadImage(ctx, filestorage.BucketAvatars, "1", bytes.NewReader(pngBytes))
	assert.True(t, errors.Is(err, apperrors.ErrUploadTooLarge))

	assert.Empty(t, storage.objects)
}

func TestUploadImageStoresUnderOwner(t *testing.T) {
	storage := newMemoryStorage()
	media := NewMediaService(storage, 1<<20, nopLogger())

	img, err := media.UploadImage(context.Background(), filestorage.BucketLogos, "college-7", pngReader())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(img.Object.Path, "college-7/"))
	assert.True(t, strings.HasSuffix(img.Object.Path, ".png"))
	assert.Equal(t, "image/png", img.Object.ContentType)
	assert.Equal(t, storage.PublicURL(filestorage.BucketLogos, img.Object.Path), img.URL)
}

func TestReplaceImageCleansUp(t *testing.T) {
	storage := newMemoryStorage()
	media := NewMediaService(storage, 1<<20, nopLogger())
	ctx := context.Background()

	_, err := media.ReplaceImage(ctx, filestorage.BucketAvatars, "1", pngReader(), nil, func(string) error {
		return errors.New("row write failed")
	})
	require.Error(t, err)
	assert.Empty(t, storage.objects, "orphaned upload removed")

	first, err := media.ReplaceImage(ctx, filestorage.BucketAvatars, "1", pngReader(), nil, func(string) error { return nil })
	require.NoError(t, err)

	external := "https://cdn.elsewhere.test/a.png"
	_, err = media.ReplaceImage(ctx, filestorage.BucketAvatars, "1", pngReader(), &external, func(string) error { return nil })
	require.NoError(t, err)
	assert.Len(t, storage.objects, 2, "foreign URLs are never removed")

	_, err = media.ReplaceImage(ctx, filestorage.BucketAvatars, "1", pngReader(), &first, func(string) error { return nil })
	require.NoError(t, err)
	assert.Len(t, storage.objects, 2)
	path, _ := storage.ObjectPathFromURL(filestorage.BucketAvatars, first)
	assert.NotContains(t, storage.objects, filestorage.BucketAvatars+"/"+path)
}

func TestUserProfileUpdateAndAvatar(t *testing.T) {
	f := newFixture()
	id := f.accounts.add("s@example.com", "x", "student", true)
	svc := NewUserService(f.accounts, f.media, nopLogger())
	ctx := context.Background()

	bad := "ftp://example.com/me"
	_, err := svc.UpdateProfile(ctx, id, &dto.UpdateProfileRequest{GithubURL: &bad})
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))

	name, headline, gh := "  Grace Hopper ", "Compiler fan", "https://github.com/grace"
	profile, err := svc.UpdateProfile(ctx, id, &dto.UpdateProfileRequest{
		FullName:  &name,
		Headline:  &headline,
		GithubURL: &gh,
		Skills:    []string{"COBOL", " cobol ", "", "Go"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper", profile.FullName)
	assert.Equal(t, []string{"COBOL", "Go"}, profile.Skills)

	url, err := svc.UploadAvatar(ctx, id, pngReader())
	require.NoError(t, err)
	profile, err = svc.GetProfile(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, profile.AvatarURL)
	assert.Equal(t, url, *profile.AvatarURL)
}
