package s3

import (
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
)

// UploadConfig tunes the multipart upload used by Create.
type UploadConfig struct {
	// PartSize is the size of each uploaded part in bytes.
	// S3 requires at least 5 MiB.
	PartSize int64

	// Concurrency is the number of parts uploaded in parallel.
	Concurrency int

	// LeavePartsOnError keeps already-uploaded parts around after a
	// failed upload so it can be resumed out of band.
	LeavePartsOnError bool
}

// DefaultUploadConfig returns the upload settings used unless
// overridden via WithUploadConfig.
func DefaultUploadConfig() UploadConfig {
	return UploadConfig{
		PartSize:    8 * 1024 * 1024,
		Concurrency: 5,
	}
}

// WithUploadConfig replaces the store's multipart upload settings.
func (s *Store) WithUploadConfig(cfg UploadConfig) *Store {
	s.upload = cfg
	return s
}

func newUploader(client Client, cfg UploadConfig) *manager.Uploader {
	return manager.NewUploader(client, func(u *manager.Uploader) {
		if cfg.PartSize > 0 {
			u.PartSize = cfg.PartSize
		}
		if cfg.Concurrency > 0 {
			u.Concurrency = cfg.Concurrency
		}
		u.LeavePartsOnError = cfg.LeavePartsOnError
	})
}
