// Package media stores uploaded files in an S3-compatible bucket and hands
// out URLs for playback and display.
package media

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Config collects the S3 connection settings. Endpoint is set when running
// against MinIO; empty means AWS proper.
type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	// PublicURL is the base under which uploaded objects are reachable
	// without signing (public bucket or CDN). Presigned URLs are used when
	// empty.
	PublicURL string
}

// Store wraps the S3 client for media uploads and presigned playback URLs.
type Store struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
	publicURL string
}

// NewStore builds the S3 client from config.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("media: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Store{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.Bucket,
		publicURL: strings.TrimSuffix(cfg.PublicURL, "/"),
	}, nil
}

// Upload writes the object and returns its key.
func (s *Store) Upload(ctx context.Context, key, contentType string, body io.Reader) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("media: put object %s: %w", key, err)
	}
	return nil
}

// UploadImage stores an uploaded image under a dated key and returns its
// display URL. Satisfies the uploader interfaces of the HTTP handlers.
func (s *Store) UploadImage(ctx context.Context, prefix string, file multipart.File, header *multipart.FileHeader) (string, error) {
	key := StorageKey(prefix, header.Filename)
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := s.Upload(ctx, key, contentType, file); err != nil {
		return "", err
	}
	return s.URL(key), nil
}

// UploadVideo stores an uploaded video file and returns its storage key;
// playback goes through presigned URLs, not a public one.
func (s *Store) UploadVideo(ctx context.Context, file multipart.File, header *multipart.FileHeader) (string, error) {
	key := StorageKey("videos", header.Filename)
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "video/mp4"
	}
	if err := s.Upload(ctx, key, contentType, file); err != nil {
		return "", err
	}
	return key, nil
}

// PresignGet returns a time-limited GET URL for the object.
func (s *Store) PresignGet(ctx context.Context, key string) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", fmt.Errorf("media: presign get %s: %w", key, err)
	}
	return req.URL, nil
}

// URL returns the public URL for a key, falling back to the bucket path.
func (s *Store) URL(key string) string {
	if s.publicURL != "" {
		return s.publicURL + "/" + key
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key)
}

// StorageKey builds a dated, collision-free object key keeping the original
// file extension.
func StorageKey(prefix, filename string) string {
	now := time.Now().UTC()
	return fmt.Sprintf("%s/%d/%02d/%02d/%s%s",
		prefix, now.Year(), now.Month(), now.Day(), uuid.New(), strings.ToLower(path.Ext(filename)))
}
