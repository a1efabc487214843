// Package storage reads schematic sources and writes JSON documents on the
// local filesystem or in S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// Store resolves locations to the matching backend. The S3 client is
// created on first use.
type Store struct {
	s3Config map[string]string
	logger   *zap.Logger

	mu sync.Mutex
	s3 S3API
}

// New creates a Store. s3Config is passed to NewS3Client when an s3://
// location is first used.
func New(s3Config map[string]string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{s3Config: s3Config, logger: logger}
}

// NewWithS3 creates a Store around an existing S3 client.
func NewWithS3(client S3API, logger *zap.Logger) *Store {
	s := New(nil, logger)
	s.s3 = client
	return s
}

func (s *Store) s3Client(ctx context.Context) (S3API, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.s3 == nil {
		client, err := NewS3Client(ctx, s.s3Config)
		if err != nil {
			return nil, err
		}
		s.s3 = client
	}
	return s.s3, nil
}

// Open returns a reader for the object at uri. The caller closes it.
func (s *Store) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	loc, err := ParseLocation(uri)
	if err != nil {
		return nil, err
	}

	switch loc.Scheme {
	case SchemeS3:
		client, err := s.s3Client(ctx)
		if err != nil {
			return nil, err
		}
		out, err := client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(loc.Bucket),
			Key:    aws.String(loc.Key),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to get %s: %w", loc, err)
		}
		s.logger.Debug("opened object", zap.String("bucket", loc.Bucket), zap.String("key", loc.Key))
		return out.Body, nil

	default:
		f, err := os.Open(loc.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open file: %w", err)
		}
		return f, nil
	}
}

// ReadAll reads the whole object at uri.
func (s *Store) ReadAll(ctx context.Context, uri string) ([]byte, error) {
	rc, err := s.Open(ctx, uri)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", uri, err)
	}
	return data, nil
}

// Create writes data to uri, replacing any existing object. Local parent
// directories are created as needed.
func (s *Store) Create(ctx context.Context, uri string, data []byte) error {
	loc, err := ParseLocation(uri)
	if err != nil {
		return err
	}

	switch loc.Scheme {
	case SchemeS3:
		client, err := s.s3Client(ctx)
		if err != nil {
			return err
		}
		_, err = client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(loc.Bucket),
			Key:         aws.String(loc.Key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String("application/json"),
		})
		if err != nil {
			return fmt.Errorf("failed to put %s: %w", loc, err)
		}
		s.logger.Debug("wrote object", zap.String("bucket", loc.Bucket), zap.String("key", loc.Key), zap.Int("bytes", len(data)))
		return nil

	default:
		if dir := filepath.Dir(loc.Path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		if err := os.WriteFile(loc.Path, data, 0o644); err != nil {
			return fmt.Errorf("failed to write file: %w", err)
		}
		return nil
	}
}
