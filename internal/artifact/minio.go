// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const logContentType = "text/plain"

type (
	// Config holds the S3-compatible object store settings.
	Config struct {
		Endpoint  string
		AccessKey string
		SecretKey string
		Region    string
		UseSSL    bool
		Bucket    string
	}

	// MinIOUploader uploads artifacts to an S3-compatible bucket.
	MinIOUploader struct {
		client *minio.Client
		bucket string
		region string
		logger *slog.Logger

		ensureOnce sync.Once
		ensureErr  error
	}
)

// Validate checks that every connection setting is present.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Endpoint) == "" {
		errs = append(errs, errors.New("endpoint is required"))
	} else if strings.Contains(c.Endpoint, "://") {
		errs = append(errs, fmt.Errorf("endpoint must not include scheme: %q", c.Endpoint))
	}
	if strings.TrimSpace(c.AccessKey) == "" {
		errs = append(errs, errors.New("access key is required"))
	}
	if strings.TrimSpace(c.SecretKey) == "" {
		errs = append(errs, errors.New("secret key is required"))
	}
	if strings.TrimSpace(c.Bucket) == "" {
		errs = append(errs, errors.New("bucket is required"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// NewMinIOUploader connects to the object store described by cfg. The bucket
// is created on first upload when it does not exist.
func NewMinIOUploader(cfg Config, logger *slog.Logger) (*MinIOUploader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Region:    cfg.Region,
		Transport: newTransport(),
	})
	if err != nil {
		return nil, fmt.Errorf("creating object store client: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MinIOUploader{client: client, bucket: cfg.Bucket, region: cfg.Region, logger: logger}, nil
}

// Bucket returns the target bucket name.
func (u *MinIOUploader) Bucket() string { return u.bucket }

// Upload stores localPath under ObjectKey(location) in the bucket.
func (u *MinIOUploader) Upload(ctx context.Context, localPath, location string) error {
	key := ObjectKey(location)
	if key == "" {
		return ErrEmptyLocation
	}
	if err := u.ensureBucket(ctx); err != nil {
		return err
	}
	info, err := u.client.FPutObject(ctx, u.bucket, key, localPath, minio.PutObjectOptions{
		ContentType: logContentType,
	})
	if err != nil {
		return fmt.Errorf("uploading %s to %s/%s: %w", localPath, u.bucket, key, err)
	}
	u.logger.Debug("uploaded artifact", "bucket", u.bucket, "key", key, "size", info.Size)
	return nil
}

func (u *MinIOUploader) ensureBucket(ctx context.Context) error {
	u.ensureOnce.Do(func() {
		exists, err := u.client.BucketExists(ctx, u.bucket)
		if err != nil {
			u.ensureErr = fmt.Errorf("checking bucket %s: %w", u.bucket, err)
			return
		}
		if exists {
			return
		}
		if err := u.client.MakeBucket(ctx, u.bucket, minio.MakeBucketOptions{Region: u.region}); err != nil {
			u.ensureErr = fmt.Errorf("creating bucket %s: %w", u.bucket, err)
		}
	})
	return u.ensureErr
}

func newTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}
