package storage

import "github.com/bistroboss/bistro/config"

// FromConfig reads STORAGE_* and S3_* settings.
func FromConfig() Options {
	return Options{
		Driver:     config.StorageDisk(),
		LocalRoot:  config.StorageLocalRoot(),
		LocalURL:   config.StorageURL(),
		S3Bucket:   config.StorageS3Bucket(),
		S3Region:   config.StorageS3Region(),
		S3Key:      config.StorageS3Key(),
		S3Secret:   config.StorageS3Secret(),
		S3Endpoint: config.StorageS3Endpoint(),
		S3URL:      config.StorageS3URL(),
	}
}
