package storage

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/storefront/config"
)

// Open builds the disk selected by STORAGE_DISK ("local" or "s3").
func Open(ctx context.Context) (Disk, error) {
	switch driver := config.StorageDefault(); driver {
	case "local", "":
		return NewLocalDisk(config.StorageLocalRoot(), config.StorageURL())
	case "s3":
		return NewS3Disk(ctx, S3Config{
			Bucket:   config.StorageS3Bucket(),
			Region:   config.StorageS3Region(),
			Key:      config.StorageS3Key(),
			Secret:   config.StorageS3Secret(),
			Endpoint: config.StorageS3Endpoint(),
			URL:      config.StorageS3URL(),
		})
	default:
		return nil, fmt.Errorf("storage: unsupported STORAGE_DISK %q (supported: local, s3)", driver)
	}
}
