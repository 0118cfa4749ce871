package media_storage

import (
	"context"
	"fmt"

	"github.com/khoahotran/portfolio-ai/internal/application/service"
	"github.com/khoahotran/portfolio-ai/internal/config"
	"github.com/khoahotran/portfolio-ai/pkg/logger"
)

// NewResumeStorage picks the backend named by storage.provider.
func NewResumeStorage(ctx context.Context, cfg config.Config, log logger.Logger) (service.ResumeStorage, error) {
	switch cfg.Storage.Provider {
	case config.StorageCloudinary, "":
		return NewCloudinaryAdapter(cfg, log)
	case config.StorageS3:
		return NewS3Adapter(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Storage.Provider)
	}
}
