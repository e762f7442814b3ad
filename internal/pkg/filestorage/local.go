package filestorage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/yigit/campushub/internal/pkg/logger"
)

// URLPrefix is the route under which LocalStorage objects are served
const URLPrefix = "/storage"

var bucketPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,62}$`)

// LocalStorage stores objects on the local filesystem, one directory per bucket.
type LocalStorage struct {
	basePath string
	baseURL  string
}

// NewLocalStorage creates a new LocalStorage instance.
// basePath is the root directory; baseURL is the public origin of the API
// (e.g. http://localhost:8080) and is joined with URLPrefix.
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

// BasePath returns the root directory, used to serve the files
func (ls *LocalStorage) BasePath() string {
	return ls.basePath
}

// resolve returns the cleaned object path and its location on disk
func (ls *LocalStorage) resolve(bucket, objectPath string) (string, string, error) {
	if !bucketPattern.MatchString(bucket) {
		return "", "", ErrInvalidBucket
	}
	clean := path.Clean("/" + strings.TrimSpace(objectPath))
	clean = strings.TrimPrefix(clean, "/")
	if clean == "" || clean == "." || strings.HasPrefix(clean, "..") {
		return "", "", ErrInvalidObjectPath
	}
	return clean, filepath.Join(ls.basePath, bucket, filepath.FromSlash(clean)), nil
}

// Upload writes the object to disk
func (ls *LocalStorage) Upload(ctx context.Context, bucket, objectPath string, r io.Reader, contentType string) (*Object, error) {
	clean, dstPath, err := ls.resolve(bucket, objectPath)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create bucket directory")
		return nil, fmt.Errorf("failed to create bucket directory: %w", err)
	}

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return nil, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	n, err := io.Copy(dst, r)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to write object")
		_ = os.Remove(dstPath)
		return nil, fmt.Errorf("failed to save object content: %w", err)
	}

	logger.Debug().Str("bucket", bucket).Str("object", clean).Int64("size", n).Msg("Object stored")
	return &Object{
		Bucket:      bucket,
		Path:        clean,
		Size:        n,
		ContentType: contentType,
	}, nil
}

// Remove deletes the object. Deleting a missing object succeeds.
func (ls *LocalStorage) Remove(ctx context.Context, bucket, objectPath string) error {
	_, physicalPath, err := ls.resolve(bucket, objectPath)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Remove(physicalPath); err != nil {
		if os.IsNotExist(err) {
			logger.Warn().Str("path", physicalPath).Msg("Object to delete does not exist")
			return nil
		}
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete object")
		return fmt.Errorf("failed to delete object: %w", err)
	}

	logger.Debug().Str("path", physicalPath).Msg("Object deleted")
	return nil
}

// PublicURL returns baseURL/storage/<bucket>/<path>
func (ls *LocalStorage) PublicURL(bucket, objectPath string) string {
	clean := strings.TrimPrefix(path.Clean("/"+objectPath), "/")
	return ls.baseURL + URLPrefix + "/" + bucket + "/" + clean
}

// ObjectPathFromURL reverses PublicURL. ok is false for foreign URLs.
func (ls *LocalStorage) ObjectPathFromURL(bucket, url string) (string, bool) {
	prefix := ls.baseURL + URLPrefix + "/" + bucket + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}
