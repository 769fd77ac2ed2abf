package mirror

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinIO struct {
	client *minio.Client
	cfg    Config
}

func NewMinIO(cfg Config) (*MinIO, error) {
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
		return nil, fmt.Errorf("create mirror client: %w", err)
	}
	return &MinIO{client: client, cfg: cfg}, nil
}

// Publish uploads the file at localPath, creating the bucket on first use.
func (m *MinIO) Publish(ctx context.Context, localPath string) (string, error) {
	if err := m.ensureBucket(ctx); err != nil {
		return "", err
	}
	key := m.cfg.ObjectKey(filepath.Base(localPath))
	_, err := m.client.FPutObject(ctx, m.cfg.Bucket, key, localPath, minio.PutObjectOptions{
		ContentType: "video/mp4",
	})
	if err != nil {
		return "", fmt.Errorf("upload %s to %s/%s: %w", localPath, m.cfg.Bucket, key, err)
	}
	return m.cfg.Bucket + "/" + key, nil
}

func (m *MinIO) ensureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("mirror bucket exists: %w", err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, m.cfg.Bucket, minio.MakeBucketOptions{Region: m.cfg.Region}); err != nil {
		return fmt.Errorf("create mirror bucket %s: %w", m.cfg.Bucket, err)
	}
	return nil
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
