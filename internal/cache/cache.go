// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"

	"github.com/apex/log"

	"github.com/staranto/edgectlgo/internal/platform"
)

// NormalizeFunc rewrites a request URL into its cache-key form (stripping
// tracking parameters, collapsing variants, etc.). It must not change the
// origin.
type NormalizeFunc func(*url.URL) *url.URL

// Options are the per-call knobs shared by the helper methods. All fields
// are optional.
type Options struct {
	// NormalizeKey rewrites the URL before it becomes the cache key.
	NormalizeKey NormalizeFunc
	// Headers are set on the response before it is stored by Put.
	Headers map[string]string
	// BaseRequest resolves relative Delete targets.
	BaseRequest *http.Request
	// Method is the lookup method for Delete (GET when empty).
	Method string
	// Debug traces the derived cache key on Delete.
	Debug bool
}

var absoluteURL = regexp.MustCompile(`^https?://`)

// Helper wraps the platform's default cache. The handle is resolved once at
// construction; a platform without cache storage cannot build a Helper.
type Helper struct {
	platform *platform.Platform
	cache    platform.Cache
}

func NewHelper(p *platform.Platform) (*Helper, error) {
	c, err := p.CacheDefault()
	if err != nil {
		return nil, err
	}
	return &Helper{platform: p, cache: c}, nil
}

// NewNamedHelper wraps a named cache instead of the default one.
func NewNamedHelper(p *platform.Platform, name string) (*Helper, error) {
	storage, err := p.CacheStorage()
	if err != nil {
		return nil, err
	}
	c, err := storage.Open(name)
	if err != nil {
		return nil, err
	}
	return &Helper{platform: p, cache: c}, nil
}

// BuildCacheKey derives the cache key request. Non-GET/HEAD requests bypass
// the cache and come back unchanged. Otherwise the URL is normalized (when a
// normalizer is given) and the result must stay on the original origin; the
// key is a clone of the request addressed at the normalized URL.
func (h *Helper) BuildCacheKey(req *http.Request, normalize NormalizeFunc) (*http.Request, error) {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		return req, nil
	}

	u := *req.URL
	normalized := &u
	if normalize != nil {
		if n := normalize(&u); n != nil {
			normalized = n
		}
	}

	if origin(normalized) != origin(req.URL) {
		return nil, fmt.Errorf("cross-origin cache key: %s does not match %s",
			origin(normalized), origin(req.URL))
	}

	key := req.Clone(req.Context())
	key.URL = normalized
	return key, nil
}

// Match looks the request up in the cache. A hit comes back as a rebuilt
// response carrying X-Cache: HIT; a miss is nil, nil.
func (h *Helper) Match(ctx context.Context, req *http.Request, opts *Options) (*http.Response, error) {
	key, err := h.BuildCacheKey(req, normalizer(opts))
	if err != nil {
		return nil, err
	}

	cached, err := h.cache.Match(ctx, key)
	if err != nil || cached == nil {
		return nil, err
	}

	return withHeader(cached, map[string]string{"X-Cache": "HIT"}), nil
}

// Put stores the response under the request's cache key and returns the
// (possibly header-rewritten) response immediately. The actual write is
// registered with the execution context and completes after return; a failed
// write is unobservable to the caller.
func (h *Helper) Put(ctx context.Context, req *http.Request, resp *http.Response, opts *Options) (*http.Response, error) {
	key, err := h.BuildCacheKey(req, normalizer(opts))
	if err != nil {
		return nil, fmt.Errorf("build cache key: %w", err)
	}

	if opts != nil && len(opts.Headers) > 0 {
		resp = withHeader(resp, opts.Headers)
	}

	resp, stored, err := teeResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("clone response for cache: %w", err)
	}

	ectx, err := h.platform.Context()
	if err != nil {
		return nil, err
	}

	// The write outlives the request, so it must not inherit its
	// cancellation.
	writeCtx := context.WithoutCancel(ctx)
	ectx.WaitUntil(func() error {
		return h.cache.Put(writeCtx, key, stored)
	})

	return resp, nil
}

// Delete removes the cache entry for a request, URL, or string target and
// reports whether one was removed. Relative string/URL targets require
// opts.BaseRequest to resolve against.
func (h *Helper) Delete(ctx context.Context, target any, opts *Options) (bool, error) {
	raw, err := deleteTarget(target, opts)
	if err != nil {
		return false, err
	}

	method := http.MethodGet
	if opts != nil && opts.Method != "" {
		method = opts.Method
	}

	lookup, err := http.NewRequestWithContext(ctx, method, raw, nil)
	if err != nil {
		return false, fmt.Errorf("build delete lookup for %s: %w", raw, err)
	}

	key, err := h.BuildCacheKey(lookup, normalizer(opts))
	if err != nil {
		return false, err
	}

	if opts != nil && opts.Debug {
		log.Debugf("cache delete key: %s", key.URL)
	}

	return h.cache.Delete(ctx, key)
}

// deleteTarget resolves the delete target to an absolute URL string.
func deleteTarget(target any, opts *Options) (string, error) {
	var raw string
	switch t := target.(type) {
	case *http.Request:
		return t.URL.String(), nil
	case *url.URL:
		if t.IsAbs() {
			return t.String(), nil
		}
		raw = t.String()
	case string:
		if absoluteURL.MatchString(t) {
			return t, nil
		}
		raw = t
	default:
		return "", fmt.Errorf("unsupported delete target type %T", target)
	}

	if opts == nil || opts.BaseRequest == nil {
		return "", errors.New("base URL required for relative delete")
	}
	resolved, err := opts.BaseRequest.URL.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("resolve relative delete target %s: %w", raw, err)
	}
	return resolved.String(), nil
}

func normalizer(opts *Options) NormalizeFunc {
	if opts == nil {
		return nil
	}
	return opts.NormalizeKey
}

func origin(u *url.URL) string {
	return u.Scheme + "://" + u.Host
}

// withHeader rebuilds the response with the given headers set. The cached
// response's header map may be shared with other readers, so it is copied
// rather than mutated in place.
func withHeader(resp *http.Response, headers map[string]string) *http.Response {
	out := new(http.Response)
	*out = *resp
	out.Header = resp.Header.Clone()
	if out.Header == nil {
		out.Header = http.Header{}
	}
	for k, v := range headers {
		out.Header.Set(k, v)
	}
	return out
}

// teeResponse buffers the body once and hands back two responses over it:
// one for the caller, one for the cache write.
func teeResponse(resp *http.Response) (caller *http.Response, stored *http.Response, err error) {
	var body []byte
	if resp.Body != nil {
		body, err = io.ReadAll(resp.Body)
		if cerr := resp.Body.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return nil, nil, err
		}
	}

	rebuild := func() *http.Response {
		out := new(http.Response)
		*out = *resp
		out.Header = resp.Header.Clone()
		out.Body = io.NopCloser(bytes.NewReader(body))
		out.ContentLength = int64(len(body))
		return out
	}

	return rebuild(), rebuild(), nil
}
