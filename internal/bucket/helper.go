// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package bucket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/staranto/edgectlgo/internal/platform"
)

const (
	// MaxKeyLength is the longest object key a bucket accepts.
	MaxKeyLength = 1024
	// MaxMetadataBytes bounds the serialized size of a custom metadata record.
	MaxMetadataBytes = 8192
)

// Helper resolves bucket bindings from a platform and layers validation and
// listing convenience on top of them. One Helper per request scope.
type Helper struct {
	platform *platform.Platform
}

func NewHelper(p *platform.Platform) *Helper {
	return &Helper{platform: p}
}

// ValidateBucketName requires a non-empty name after trimming.
func ValidateBucketName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("bucket name must not be empty")
	}
	return nil
}

// ValidateKey requires a non-empty key of at most MaxKeyLength characters.
func ValidateKey(key string) error {
	if key == "" {
		return errors.New("object key must not be empty")
	}
	if len(key) > MaxKeyLength {
		return fmt.Errorf("object key exceeds %d characters (got %d)", MaxKeyLength, len(key))
	}
	return nil
}

// ValidateMetadata bounds the serialized size of a custom metadata record to
// MaxMetadataBytes.
func ValidateMetadata(meta map[string]string) error {
	raw, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("serialize custom metadata: %w", err)
	}
	if len(raw) > MaxMetadataBytes {
		return fmt.Errorf("custom metadata exceeds %d bytes when serialized (got %d)", MaxMetadataBytes, len(raw))
	}
	return nil
}

// Bucket validates the name and resolves the binding. A missing binding (or
// one that is not a bucket) returns nil without error; callers that require
// the bucket use Object/List, which report absence.
func (h *Helper) Bucket(name string) (Bucket, error) {
	if err := ValidateBucketName(name); err != nil {
		return nil, err
	}
	b, _ := h.platform.Binding(name).(Bucket)
	return b, nil
}

// BucketNames returns the sorted names of every env binding that satisfies
// the Bucket contract.
func (h *Helper) BucketNames() []string {
	env, err := h.platform.Env()
	if err != nil {
		return nil
	}

	var names []string
	for name, binding := range env {
		if _, ok := binding.(Bucket); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Object validates both identifiers and fetches the object from the named
// bucket. The result is nil when the key does not exist.
func (h *Helper) Object(ctx context.Context, name, key string) (*Object, error) {
	if err := ValidateBucketName(name); err != nil {
		return nil, err
	}
	if err := ValidateKey(key); err != nil {
		return nil, err
	}

	b, err := h.Bucket(name)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("bucket not found: %s", name)
	}

	obj, err := b.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("get %s from bucket %s: %w", key, name, err)
	}
	return obj, nil
}

// List drains the named bucket: an initial page, then subsequent pages while
// the result is truncated and carries a cursor, concatenated in arrival
// order. The returned cursor is empty once the listing is exhausted, and
// Truncated reports whether more pages existed at merge time.
func (h *Helper) List(ctx context.Context, name string, opts ListOptions) (*ListResult, error) {
	if err := ValidateBucketName(name); err != nil {
		return nil, err
	}

	b, err := h.Bucket(name)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("bucket not found: %s", name)
	}

	merged, err := b.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list bucket %s: %w", name, err)
	}

	for merged.Truncated && merged.Cursor != "" {
		opts.Cursor = merged.Cursor
		page, err := b.List(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("list bucket %s: %w", name, err)
		}
		merged.Objects = append(merged.Objects, page.Objects...)
		merged.DelimitedPrefixes = append(merged.DelimitedPrefixes, page.DelimitedPrefixes...)
		merged.Truncated = page.Truncated
		merged.Cursor = page.Cursor
	}

	return merged, nil
}

// CreateUniqueKey derives a collision-resistant object key from a file name:
// {unix-millis}-{part}.{ext}. The extension is everything after the last
// dot (jpg when there is none). part is the base name, or an 8-character
// random hex token when useFileName is false.
func CreateUniqueKey(fileName string, useFileName bool) string {
	ext := "jpg"
	base := fileName
	if i := strings.LastIndex(fileName, "."); i >= 0 {
		ext = fileName[i+1:]
		base = fileName[:i]
	}

	part := base
	if !useFileName {
		part = strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	}

	return fmt.Sprintf("%d-%s.%s", time.Now().UnixMilli(), part, ext)
}

// HTTPMetadataFor fills the HTTP metadata defaults: contentType falls back
// to application/octet-stream, everything else is carried only when present.
func HTTPMetadataFor(meta HTTPMetadata) HTTPMetadata {
	if meta.ContentType == "" {
		meta.ContentType = "application/octet-stream"
	}
	return meta
}

// CustomMetadataInput is the caller-supplied half of a custom metadata
// record. Zero fields take the documented defaults.
type CustomMetadataInput struct {
	OriginalFileName   string
	UploadedBy         string
	FileSize           int64
	MimeType           string
	Category           string
	Processed          string
	ThumbnailGenerated string
}

// CustomMetadataFor builds the fixed-shape custom metadata record and
// size-validates it. uploadedAt is the current time in RFC3339 UTC; the
// record is string-valued throughout because bucket custom metadata is.
func CustomMetadataFor(in CustomMetadataInput) (map[string]string, error) {
	uploadedBy := in.UploadedBy
	if uploadedBy == "" {
		uploadedBy = "anonymous"
	}
	category := in.Category
	if category == "" {
		category = "general"
	}
	processed := in.Processed
	if processed == "" {
		processed = "false"
	}
	thumbnail := in.ThumbnailGenerated
	if thumbnail == "" {
		thumbnail = "false"
	}

	meta := map[string]string{
		"originalFileName":   in.OriginalFileName,
		"uploadedBy":         uploadedBy,
		"uploadedAt":         time.Now().UTC().Format(time.RFC3339),
		"fileSize":           strconv.FormatInt(in.FileSize, 10),
		"mimeType":           in.MimeType,
		"category":           category,
		"processed":          processed,
		"thumbnailGenerated": thumbnail,
	}

	if err := ValidateMetadata(meta); err != nil {
		return nil, err
	}
	return meta, nil
}
