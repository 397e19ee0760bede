package gateway

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/itaybe6/Events-Mannagement-sub003/config"
)

// CloudinaryFileGateway stores avatar and event images in Cloudinary.
type CloudinaryFileGateway struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryFileGateway(cfg *config.CloudinaryConfig) (*CloudinaryFileGateway, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary config error: %w", err)
	}
	return &CloudinaryFileGateway{cld: cld}, nil
}

func (g *CloudinaryFileGateway) Upload(ctx context.Context, file io.Reader, folder string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	resp, err := g.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder: folder,
	})
	if err != nil {
		return "", fmt.Errorf("upload error: %w", err)
	}
	return resp.SecureURL, nil
}

func (g *CloudinaryFileGateway) Delete(ctx context.Context, fileURL string) error {
	publicID, err := extractPublicID(fileURL)
	if err != nil {
		return fmt.Errorf("could not extract public ID: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err = g.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID: publicID,
	})
	if err != nil {
		return fmt.Errorf("delete error: %w", err)
	}
	return nil
}

// extractPublicID recovers the Cloudinary public ID from a delivery URL
// such as https://res.cloudinary.com/demo/image/upload/v123/avatars/abc.jpg.
func extractPublicID(fileURL string) (string, error) {
	parsed, err := url.Parse(fileURL)
	if err != nil {
		return "", err
	}

	parts := strings.Split(parsed.Path, "/")
	if len(parts) < 6 {
		return "", fmt.Errorf("invalid cloudinary URL format")
	}

	// Drop the version segment if present.
	rest := parts[4:]
	if strings.HasPrefix(rest[0], "v") {
		rest = rest[1:]
	}

	joined := path.Join(rest...)
	return strings.TrimSuffix(joined, path.Ext(joined)), nil
}
