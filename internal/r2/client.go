// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package r2

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/staranto/edgectlgo/internal/bucket"
)

// Config identifies one R2 bucket. Endpoint overrides the account-derived
// default, which is https://{account_id}.r2.cloudflarestorage.com.
type Config struct {
	Bucket    string `yaml:"bucket"`
	AccountID string `yaml:"account_id"`
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Profile   string `yaml:"profile"`
}

func (c Config) endpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", c.AccountID)
}

// s3API is the slice of the S3 client the bucket operations need.
type s3API interface {
	GetObject(ctx context.Context, in *s3v2.GetObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3v2.PutObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3v2.DeleteObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3v2.ListObjectsV2Input, optFns ...func(*s3v2.Options)) (*s3v2.ListObjectsV2Output, error)
}

// Client is one bound R2 bucket.
type Client struct {
	api    s3API
	bucket string
}

var _ bucket.Bucket = (*Client)(nil)

// New builds a Client for the configured bucket. Credentials come from the
// shell's AWS setup; cfg supplies the bucket, endpoint, and optional profile
// and region overrides.
func New(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("r2 config requires a bucket")
	}
	if cfg.Endpoint == "" && cfg.AccountID == "" {
		return nil, errors.New("r2 config requires an account_id or endpoint")
	}

	if cfg.Profile != "" {
		opts = append(opts, WithProfile(cfg.Profile))
	}
	if cfg.Region != "" {
		opts = append(opts, WithRegion(cfg.Region))
	}

	awsCfg, err := loadAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for r2: %w", err)
	}

	api := s3v2.NewFromConfig(awsCfg, func(o *s3v2.Options) {
		o.BaseEndpoint = awsv2.String(cfg.endpoint())
		o.UsePathStyle = true
	})

	return &Client{api: api, bucket: cfg.Bucket}, nil
}

// NewFromAPI builds a Client over an existing API implementation.
func NewFromAPI(api s3API, bucketName string) *Client {
	return &Client{api: api, bucket: bucketName}
}

// Get fetches the object and its metadata. A missing key returns nil, nil.
func (c *Client) Get(ctx context.Context, key string) (*bucket.Object, error) {
	out, err := c.api.GetObject(ctx, &s3v2.GetObjectInput{
		Bucket: awsv2.String(c.bucket),
		Key:    awsv2.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}

	obj := &bucket.Object{
		Key:  key,
		ETag: cleanETag(out.ETag),
		Size: awsv2.ToInt64(out.ContentLength),
		HTTPMetadata: bucket.HTTPMetadata{
			ContentType:        awsv2.ToString(out.ContentType),
			CacheControl:       awsv2.ToString(out.CacheControl),
			ContentDisposition: awsv2.ToString(out.ContentDisposition),
			ContentEncoding:    awsv2.ToString(out.ContentEncoding),
			ContentLanguage:    awsv2.ToString(out.ContentLanguage),
		},
		CustomMetadata: out.Metadata,
		Body:           out.Body,
	}
	if out.LastModified != nil {
		obj.LastModified = *out.LastModified
	}
	return obj, nil
}

// Put uploads body under key with the given metadata.
func (c *Client) Put(ctx context.Context, key string, body io.Reader, opts bucket.PutOptions) (*bucket.Object, error) {
	in := &s3v2.PutObjectInput{
		Bucket:   awsv2.String(c.bucket),
		Key:      awsv2.String(key),
		Body:     body,
		Metadata: opts.CustomMetadata,
	}
	if m := opts.HTTPMetadata; m != (bucket.HTTPMetadata{}) {
		in.ContentType = optString(m.ContentType)
		in.CacheControl = optString(m.CacheControl)
		in.ContentDisposition = optString(m.ContentDisposition)
		in.ContentEncoding = optString(m.ContentEncoding)
		in.ContentLanguage = optString(m.ContentLanguage)
	}

	out, err := c.api.PutObject(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("failed to put %s: %w", key, err)
	}

	return &bucket.Object{
		Key:            key,
		ETag:           cleanETag(out.ETag),
		HTTPMetadata:   opts.HTTPMetadata,
		CustomMetadata: opts.CustomMetadata,
	}, nil
}

func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.api.DeleteObject(ctx, &s3v2.DeleteObjectInput{
		Bucket: awsv2.String(c.bucket),
		Key:    awsv2.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// List fetches one page. The helper layer drives the cursor loop; this maps
// the continuation token onto it.
func (c *Client) List(ctx context.Context, opts bucket.ListOptions) (*bucket.ListResult, error) {
	in := &s3v2.ListObjectsV2Input{
		Bucket:            awsv2.String(c.bucket),
		Prefix:            optString(opts.Prefix),
		Delimiter:         optString(opts.Delimiter),
		ContinuationToken: optString(opts.Cursor),
	}
	if opts.Limit > 0 {
		in.MaxKeys = awsv2.Int32(int32(opts.Limit)) //nolint:gosec
	}

	out, err := c.api.ListObjectsV2(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", c.bucket, err)
	}

	result := &bucket.ListResult{
		Truncated: awsv2.ToBool(out.IsTruncated),
		Cursor:    awsv2.ToString(out.NextContinuationToken),
	}
	for _, o := range out.Contents {
		obj := bucket.Object{
			Key:  awsv2.ToString(o.Key),
			Size: awsv2.ToInt64(o.Size),
			ETag: cleanETag(o.ETag),
		}
		if o.LastModified != nil {
			obj.LastModified = *o.LastModified
		}
		result.Objects = append(result.Objects, obj)
	}
	for _, p := range out.CommonPrefixes {
		result.DelimitedPrefixes = append(result.DelimitedPrefixes, awsv2.ToString(p.Prefix))
	}
	return result, nil
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return awsv2.String(s)
}

// cleanETag strips the quotes S3 wraps around ETag values.
func cleanETag(etag *string) string {
	return strings.Trim(awsv2.ToString(etag), `"`)
}
