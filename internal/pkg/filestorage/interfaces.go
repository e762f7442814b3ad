package filestorage

import (
	"context"
	"errors"
	"io"
)

// Buckets used by the application
const (
	BucketAvatars = "avatars"
	BucketLogos   = "logos"
	BucketBanners = "banners"
)

var (
	// ErrInvalidBucket is returned for bucket names outside [a-z0-9-]
	ErrInvalidBucket = errors.New("invalid bucket name")
	// ErrInvalidObjectPath is returned for empty or escaping object paths
	ErrInvalidObjectPath = errors.New("invalid object path")
)

// Object describes an uploaded object
type Object struct {
	Bucket      string
	Path        string // path inside the bucket
	Size        int64
	ContentType string
}

// ObjectStorage is a bucket-scoped blob store. Upload, read back the public
// URL and write it somewhere are separate steps; callers own any cleanup.
type ObjectStorage interface {
	// Upload stores r under bucket/path, replacing an existing object
	Upload(ctx context.Context, bucket, path string, r io.Reader, contentType string) (*Object, error)

	// Remove deletes the object; missing objects are not an error
	Remove(ctx context.Context, bucket, path string) error

	// PublicURL returns the URL clients use to fetch the object
	PublicURL(bucket, path string) string

	// ObjectPathFromURL reverses PublicURL; ok is false for URLs it did not issue
	ObjectPathFromURL(bucket, url string) (string, bool)
}
