package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var (
	// ErrForeignURL is returned by Delete for URLs that do not point into the bucket.
	ErrForeignURL = errors.New("url does not belong to this blob store")
	ErrEmptyKey   = errors.New("object key is empty")
)

// BlobStore uploads and deletes publicly addressable objects.
type BlobStore interface {
	Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Config holds the connection settings of an S3 compatible bucket.
type S3Config struct {
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	Prefix        string
	PublicBaseURL string
}

// S3BlobStore stores objects in an S3 compatible bucket.
type S3BlobStore struct {
	client  objectAPI
	bucket  string
	prefix  string
	baseURL string
}

// NewS3BlobStore creates a BlobStore backed by S3.
func NewS3BlobStore(ctx context.Context, cfg S3Config) (*S3BlobStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3BlobStore(client, cfg), nil
}

func newS3BlobStore(client objectAPI, cfg S3Config) *S3BlobStore {
	return &S3BlobStore{
		client:  client,
		bucket:  cfg.Bucket,
		prefix:  strings.Trim(cfg.Prefix, "/"),
		baseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}
}

// Upload stores body under a fresh key that keeps the extension of name and
// returns the public URL of the object.
func (s *S3BlobStore) Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	key := uuid.NewString() + strings.ToLower(path.Ext(name))
	if s.prefix != "" {
		key = s.prefix + "/" + key
	}

	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	}); err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	return s.baseURL + "/" + key, nil
}

// Delete removes the object addressed by url.
func (s *S3BlobStore) Delete(ctx context.Context, url string) error {
	key, err := s.keyFromURL(url)
	if err != nil {
		return err
	}

	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}

	return nil
}

func (s *S3BlobStore) keyFromURL(url string) (string, error) {
	if !strings.HasPrefix(url, s.baseURL+"/") {
		return "", ErrForeignURL
	}

	key := strings.TrimPrefix(url, s.baseURL+"/")
	if i := strings.IndexAny(key, "?#"); i >= 0 {
		key = key[:i]
	}
	if key == "" {
		return "", ErrEmptyKey
	}

	return key, nil
}
