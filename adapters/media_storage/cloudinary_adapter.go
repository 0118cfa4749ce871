package media_storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-ai/internal/application/service"
	"github.com/khoahotran/portfolio-ai/internal/config"
	"github.com/khoahotran/portfolio-ai/pkg/logger"
)

// Resumes are documents, Cloudinary keeps them as "raw" resources.
const cloudinaryResourceType = "raw"

type cloudinaryAdapter struct {
	cld    *cloudinary.Cloudinary
	folder string
	log    logger.Logger
}

func NewCloudinaryAdapter(cfg config.Config, log logger.Logger) (service.ResumeStorage, error) {
	if cfg.Cloudinary.CloudName == "" {
		return nil, fmt.Errorf("cloudinary cloud_name has not config")
	}

	cld, err := cloudinary.NewFromParams(
		cfg.Cloudinary.CloudName,
		cfg.Cloudinary.ApiKey,
		cfg.Cloudinary.ApiSecret,
	)
	if err != nil {
		return nil, fmt.Errorf("cannot init cloudinary: %w", err)
	}

	log.Info("Connect Cloudinary successfully.", zap.String("folder", cfg.Storage.Folder))
	return &cloudinaryAdapter{cld: cld, folder: cfg.Storage.Folder, log: log}, nil
}

// Upload stores the file under folder/key. Raw resources keep the extension
// as part of the public id.
func (a *cloudinaryAdapter) Upload(ctx context.Context, file io.Reader, key string, contentType string) (string, error) {
	result, err := a.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID:       a.publicID(key),
		ResourceType:   cloudinaryResourceType,
		UniqueFilename: api.Bool(false),
		Overwrite:      api.Bool(false),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload cloudinary: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("cloudinary rejected upload: %s", result.Error.Message)
	}

	a.log.Info("Resume stored in Cloudinary", zap.String("public_id", result.PublicID), zap.String("content_type", contentType))
	return result.SecureURL, nil
}

func (a *cloudinaryAdapter) Delete(ctx context.Context, key string) error {
	_, err := a.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     a.publicID(key),
		ResourceType: cloudinaryResourceType,
	})
	if err != nil {
		return fmt.Errorf("failed to delete cloudinary: %w", err)
	}
	return nil
}

func (a *cloudinaryAdapter) publicID(key string) string {
	key = strings.TrimPrefix(key, "/")
	if a.folder == "" {
		return key
	}
	return path.Join(a.folder, key)
}
