package share

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/piwi3910/PanelCut/internal/model"
)

// S3API is the subset of the S3 client the store uses.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	s3.ListObjectsV2APIClient
}

// S3Store keeps each shared result as a JSON object <prefix><id>.json. The
// expiry lives in the object body, so it does not depend on bucket
// lifecycle rules.
type S3Store struct {
	client S3API
	bucket string
	prefix string
	opts   options
}

// NewS3Store wraps an S3 client.
func NewS3Store(client S3API, bucket, prefix string, opts ...Option) *S3Store {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &S3Store{client: client, bucket: bucket, prefix: prefix, opts: o}
}

// NewS3StoreFromEnv builds a store with the default AWS credential chain.
func NewS3StoreFromEnv(ctx context.Context, bucket, prefix string, opts ...Option) (*S3Store, error) {
	if bucket == "" {
		return nil, errors.New("share: s3 bucket is required")
	}
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return NewS3Store(s3.NewFromConfig(cfg), bucket, prefix, opts...), nil
}

func (s *S3Store) key(id string) string {
	return s.prefix + id + ".json"
}

func (s *S3Store) Put(ctx context.Context, result model.OptimizationResult, projectName string) (Ticket, error) {
	entry := s.opts.stamp(result, projectName)
	data, err := json.Marshal(entry)
	if err != nil {
		return Ticket{}, fmt.Errorf("encode shared result: %w", err)
	}

	id := s.opts.newID()
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(id)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
		Expires:     aws.Time(entry.ExpiresAt),
	})
	if err != nil {
		return Ticket{}, fmt.Errorf("failed to upload to s3: %w", err)
	}
	return Ticket{ID: id, ExpiresAt: entry.ExpiresAt}, nil
}

func (s *S3Store) Get(ctx context.Context, id string) (Shared, error) {
	if !validID(id) {
		return Shared{}, ErrNotFound
	}
	entry, err := s.read(ctx, id)
	if err != nil {
		return Shared{}, err
	}
	if entry.expired(s.opts.now()) {
		// Best effort; the object is unreadable either way.
		_ = s.remove(ctx, id)
		return Shared{}, ErrNotFound
	}
	return entry, nil
}

// read downloads and decodes an object without checking its expiry.
func (s *S3Store) read(ctx context.Context, id string) (Shared, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		if isNotFound(err) {
			return Shared{}, ErrNotFound
		}
		return Shared{}, fmt.Errorf("failed to download from s3: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return Shared{}, fmt.Errorf("read shared result: %w", err)
	}
	var entry Shared
	if err := json.Unmarshal(data, &entry); err != nil {
		return Shared{}, fmt.Errorf("decode shared result %s: %w", id, err)
	}
	return entry, nil
}

func (s *S3Store) remove(ctx context.Context, id string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from s3: %w", err)
	}
	return nil
}

// Purge deletes every expired object under the prefix and reports how many
// it deleted. Objects that vanish between listing and reading are skipped.
func (s *S3Store) Purge(ctx context.Context) (int, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})

	now := s.opts.now()
	n := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return n, fmt.Errorf("failed to list s3 objects: %w", err)
		}
		for _, obj := range page.Contents {
			if obj.Key == nil || !strings.HasSuffix(*obj.Key, ".json") {
				continue
			}
			id := strings.TrimSuffix(strings.TrimPrefix(*obj.Key, s.prefix), ".json")
			if !validID(id) {
				continue
			}
			entry, err := s.read(ctx, id)
			if errors.Is(err, ErrNotFound) {
				continue
			}
			if err != nil {
				return n, err
			}
			if !entry.expired(now) {
				continue
			}
			if err := s.remove(ctx, id); err != nil {
				return n, err
			}
			n++
		}
	}
	return n, nil
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}
