//go:generate mockgen -source=cloudinary.go -destination=mock_image_store.go -package=utils

package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Upload folders.
const (
	FolderItemImages  = "lostfound/items"
	FolderProofImages = "lostfound/proofs"
)

// ErrUploadsDisabled is returned by the no-op store when no image backend is configured.
var ErrUploadsDisabled = errors.New("image uploads are not configured")

// ImageStore persists uploaded images and returns their public URL.
type ImageStore interface {
	Upload(ctx context.Context, file io.Reader, folder string) (string, error)
	Delete(ctx context.Context, imageURL string) error
}

type CloudinaryStore struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryStore prefers a CLOUDINARY_URL style DSN and falls back to discrete credentials.
func NewCloudinaryStore(dsn, cloudName, apiKey, apiSecret string) (*CloudinaryStore, error) {
	var (
		cld *cloudinary.Cloudinary
		err error
	)
	if dsn != "" {
		cld, err = cloudinary.NewFromURL(dsn)
	} else {
		cld, err = cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	}
	if err != nil {
		return nil, fmt.Errorf("cloudinary config error: %w", err)
	}
	return &CloudinaryStore{cld: cld}, nil
}

func (s *CloudinaryStore) Upload(ctx context.Context, file io.Reader, folder string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	resp, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{Folder: folder})
	if err != nil {
		return "", fmt.Errorf("upload error: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("upload error: %s", resp.Error.Message)
	}
	return resp.SecureURL, nil
}

func (s *CloudinaryStore) Delete(ctx context.Context, imageURL string) error {
	publicID, err := extractPublicID(imageURL)
	if err != nil {
		return fmt.Errorf("could not extract public ID: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	resp, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("delete error: %w", err)
	}
	if resp.Error.Message != "" {
		return fmt.Errorf("delete error: %s", resp.Error.Message)
	}
	return nil
}

// NoopImageStore rejects uploads and ignores deletes.
type NoopImageStore struct{}

func (NoopImageStore) Upload(context.Context, io.Reader, string) (string, error) {
	return "", ErrUploadsDisabled
}

func (NoopImageStore) Delete(context.Context, string) error { return nil }

var versionSegment = regexp.MustCompile(`^v\d+$`)

// extractPublicID turns
// https://res.cloudinary.com/demo/image/upload/v1234567890/lostfound/items/abc123.jpg
// into lostfound/items/abc123.
func extractPublicID(imageURL string) (string, error) {
	parsed, err := url.Parse(imageURL)
	if err != nil {
		return "", err
	}

	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	start := -1
	for i, p := range parts {
		if p == "upload" {
			start = i + 1
			break
		}
	}
	if start < 0 || start >= len(parts) {
		return "", fmt.Errorf("invalid cloudinary URL format")
	}

	rest := parts[start:]
	if len(rest) > 1 && versionSegment.MatchString(rest[0]) {
		rest = rest[1:]
	}

	joined := path.Join(rest...)
	return strings.TrimSuffix(joined, path.Ext(joined)), nil
}
