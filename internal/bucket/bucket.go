// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package bucket provides the typed helper layer over object-storage
// bindings: identifier validation, unique key derivation, metadata shaping,
// and exhaustive paginated listing. The Bucket interface is the binding
// contract concrete stores (internal/r2) implement.
package bucket

import (
	"context"
	"io"
	"time"
)

// Object describes a stored object. Body is non-nil only on Get results;
// list results carry metadata alone.
type Object struct {
	Key            string            `json:"key"`
	Size           int64             `json:"size"`
	ETag           string            `json:"etag"`
	LastModified   time.Time         `json:"last_modified"`
	HTTPMetadata   HTTPMetadata      `json:"http_metadata"`
	CustomMetadata map[string]string `json:"custom_metadata,omitempty"`
	Body           io.ReadCloser     `json:"-"`
}

// HTTPMetadata is the standard HTTP metadata stored alongside an object.
// Empty fields are simply not stored.
type HTTPMetadata struct {
	ContentType        string `json:"content_type,omitempty"`
	CacheControl       string `json:"cache_control,omitempty"`
	ContentDisposition string `json:"content_disposition,omitempty"`
	ContentEncoding    string `json:"content_encoding,omitempty"`
	ContentLanguage    string `json:"content_language,omitempty"`
}

// ListOptions controls one listing page. Cursor is the opaque resume token
// from a previous truncated page.
type ListOptions struct {
	Prefix    string
	Delimiter string
	Cursor    string
	Limit     int
}

// ListResult is one page of a listing, or the merged whole once the helper
// has drained every page. Cursor is empty when the listing is exhausted.
type ListResult struct {
	Objects           []Object `json:"objects"`
	Truncated         bool     `json:"truncated"`
	Cursor            string   `json:"cursor,omitempty"`
	DelimitedPrefixes []string `json:"delimited_prefixes,omitempty"`
}

// PutOptions carries the metadata stored with an uploaded object.
type PutOptions struct {
	HTTPMetadata   HTTPMetadata
	CustomMetadata map[string]string
}

// Bucket is the object-store binding contract. An env binding is classified
// as a bucket iff it satisfies this interface; there is no method-name
// probing. Get returns nil (not an error) when the key does not exist.
type Bucket interface {
	Get(ctx context.Context, key string) (*Object, error)
	Put(ctx context.Context, key string, body io.Reader, opts PutOptions) (*Object, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, opts ListOptions) (*ListResult, error)
}
