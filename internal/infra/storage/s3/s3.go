package s3

import (
	"bytes"
	"context"
	"io"
	"log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"

	"github.com/direct-img/direct-img.link/internal/domain"
)

type Config struct {
	Endpoint   string
	Region     string
	Bucket     string
	AccessKey  string
	SecretKey  string
	UseSSL     bool
	PathStyle  bool
	ExpiryDays int
}

type Storage struct {
	cl     *minio.Client
	bucket string
	logger *log.Logger
}

func New(ctx context.Context, cfg Config, logger *log.Logger) (*Storage, error) {
	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	}
	if cfg.PathStyle {
		opts.BucketLookup = minio.BucketLookupPath
	}
	cl, err := minio.New(cfg.Endpoint, opts)
	if err != nil {
		return nil, err
	}
	s := &Storage{cl: cl, bucket: cfg.Bucket, logger: logger}

	// Object expiry is enforced by the store, not by the application:
	// one lifecycle rule over the whole bucket.
	if cfg.ExpiryDays > 0 {
		lc := lifecycle.NewConfiguration()
		lc.Rules = []lifecycle.Rule{{
			ID:         "expire-images",
			Status:     "Enabled",
			Expiration: lifecycle.Expiration{Days: lifecycle.ExpirationDays(cfg.ExpiryDays)},
		}}
		if err := cl.SetBucketLifecycle(ctx, cfg.Bucket, lc); err != nil {
			// Some backends don't support lifecycle; dangling blobs are
			// harmless, the metadata index expires independently.
			logger.Printf("set lifecycle failed: %v", err)
		}
	}
	return s, nil
}

func (s *Storage) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.cl.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		s.logger.Printf("PUT %q failed: %v", key, err)
	}
	return err
}

// Get returns (nil, nil) when the object does not exist.
func (s *Storage) Get(ctx context.Context, key string) (*domain.ImageBlob, error) {
	obj, err := s.cl.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		s.logger.Printf("GET %q failed: %v", key, err)
		return nil, err
	}
	defer obj.Close()

	info, err := obj.Stat()
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, nil
		}
		s.logger.Printf("STAT %q failed: %v", key, err)
		return nil, err
	}
	data, err := io.ReadAll(obj)
	if err != nil {
		s.logger.Printf("READ %q failed: %v", key, err)
		return nil, err
	}
	return &domain.ImageBlob{Bytes: data, ContentType: info.ContentType}, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	_, err := s.cl.BucketExists(ctx, s.bucket)
	return err
}
