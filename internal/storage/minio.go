package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig holds the connection info for an S3-compatible object store.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// ScratchDir is where fetched reports are materialized.
	ScratchDir string
}

// MinioStore implements ReportStore on top of any S3-compatible service.
type MinioStore struct {
	client     *minio.Client
	bucket     string
	scratchDir string
}

var _ ReportStore = (*MinioStore)(nil)

func NewMinioStore(cfg MinioConfig) (*MinioStore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("object storage endpoint must be provided")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("object storage bucket must be provided")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting object storage: %w", err)
	}
	scratch := cfg.ScratchDir
	if scratch == "" {
		scratch = os.TempDir()
	}
	return &MinioStore{client: client, bucket: cfg.Bucket, scratchDir: scratch}, nil
}

func (s *MinioStore) Put(ctx context.Context, key, localPath string) (string, error) {
	_, err := s.client.FPutObject(ctx, s.bucket, key, localPath, minio.PutObjectOptions{
		ContentType: "text/csv",
	})
	if err != nil {
		return "", fmt.Errorf("uploading report %s: %w", key, err)
	}
	return key, nil
}

func (s *MinioStore) Fetch(ctx context.Context, key string) (string, error) {
	dest := filepath.Join(s.scratchDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("creating scratch dir for %s: %w", key, err)
	}
	if err := s.client.FGetObject(ctx, s.bucket, key, dest, minio.GetObjectOptions{}); err != nil {
		return "", fmt.Errorf("fetching report %s: %w", key, err)
	}
	return dest, nil
}

// LocalStore is a ReportStore for development and tests: keys are plain paths
// under a base directory and Put/Fetch never leave the local filesystem.
type LocalStore struct {
	BaseDir string
}

var _ ReportStore = (*LocalStore)(nil)

func (s *LocalStore) Put(ctx context.Context, key, localPath string) (string, error) {
	dest := filepath.Join(s.BaseDir, filepath.FromSlash(key))
	if dest == localPath {
		return key, nil
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", err
	}
	data, err := os.ReadFile(localPath)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", err
	}
	return key, nil
}

func (s *LocalStore) Fetch(ctx context.Context, key string) (string, error) {
	path := filepath.Join(s.BaseDir, filepath.FromSlash(key))
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	return path, nil
}
