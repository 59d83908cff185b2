// Package minio provides an S3-compatible ArtifactStore backed by MinIO or
// any S3 endpoint the MinIO client can talk to. Artifacts are stored under
// "<sessionID>/<artifactID>" object keys in a single bucket.
package minio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/tripmesh/tripmesh/artifact"
	"github.com/tripmesh/tripmesh/core"
)

// Config holds the connection settings for the S3-compatible endpoint.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string

	// Timeout bounds each store operation. Defaults to 30 seconds.
	Timeout time.Duration
}

// Store is an ArtifactStore persisting artifacts as S3 objects.
type Store struct {
	api     *minio.Client
	bucket  string
	timeout time.Duration
}

var _ core.ArtifactStore = (*Store)(nil)

// New creates a Store for the given endpoint and bucket. The bucket must
// already exist; use EnsureBucket to create it on startup.
func New(cfg Config) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Store{
		api:     client,
		bucket:  cfg.Bucket,
		timeout: timeout,
	}, nil
}

// EnsureBucket creates the configured bucket if it does not exist.
func (s *Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.api.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return s.api.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
}

func objectKey(sessionID, artifactID string) string {
	return sessionID + "/" + artifactID
}

// Save stores (or overwrites) the artifact bytes for the session and id.
func (s *Store) Save(sessionID, artifactID string, data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	_, err := s.api.PutObject(ctx, s.bucket, objectKey(sessionID, artifactID),
		bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
			ContentType: "application/octet-stream",
		})
	return err
}

// Get returns the stored artifact bytes or artifact.ErrNotFound.
func (s *Store) Get(sessionID, artifactID string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	obj, err := s.api.GetObject(ctx, s.bucket, objectKey(sessionID, artifactID), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if isNoSuchKey(err) {
			return nil, artifact.ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// List returns the artifact ids stored for the session.
func (s *Store) List(sessionID string) ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	prefix := sessionID + "/"
	ids := []string{}
	for obj := range s.api.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		ids = append(ids, strings.TrimPrefix(obj.Key, prefix))
	}
	return ids, nil
}

// Delete removes the artifact if present or returns artifact.ErrNotFound.
func (s *Store) Delete(sessionID, artifactID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	key := objectKey(sessionID, artifactID)
	if _, err := s.api.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return artifact.ErrNotFound
		}
		return err
	}

	return s.api.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}

func isNoSuchKey(err error) bool {
	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		return resp.Code == "NoSuchKey"
	}
	return false
}
