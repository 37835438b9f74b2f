// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package platform

import (
	"context"
	"errors"
	"net/http"
)

// Properties carries the request-scoped edge properties (colo, country,
// TLS version, etc.) as an opaque string-keyed record.
type Properties map[string]any

// Cache is a single named HTTP cache. Match returns nil (not an error) when
// the key has never been stored. Implementations key entries by the request
// URL; method and headers beyond that are ignored.
type Cache interface {
	Match(ctx context.Context, key *http.Request) (*http.Response, error)
	Put(ctx context.Context, key *http.Request, resp *http.Response) error
	Delete(ctx context.Context, key *http.Request) (bool, error)
}

// CacheStorage hands out named caches. Default is the shared cache every
// request scope sees.
type CacheStorage interface {
	Default() Cache
	Open(name string) (Cache, error)
}

// Platform is the read-only per-request descriptor handed to the helpers:
// named bindings, the execution context, edge request properties, and the
// cache storage handle. A zero field is legal at construction; accessors
// error at use when the field they project is absent, so a platform without
// a cache can still serve bucket-only callers.
type Platform struct {
	env    map[string]any
	ctx    *ExecContext
	cf     Properties
	caches CacheStorage
}

// New builds a Platform. Any argument may be nil/empty; the corresponding
// accessor will report it missing.
func New(env map[string]any, ctx *ExecContext, cf Properties, caches CacheStorage) *Platform {
	return &Platform{env: env, ctx: ctx, cf: cf, caches: caches}
}

// Env returns the binding environment.
func (p *Platform) Env() (map[string]any, error) {
	if p.env == nil {
		return nil, errors.New("platform has no environment")
	}
	return p.env, nil
}

// Context returns the execution context used to register deferred work.
func (p *Platform) Context() (*ExecContext, error) {
	if p.ctx == nil {
		return nil, errors.New("platform has no execution context")
	}
	return p.ctx, nil
}

// CFProperties returns the edge request properties.
func (p *Platform) CFProperties() (Properties, error) {
	if p.cf == nil {
		return nil, errors.New("platform has no request properties")
	}
	return p.cf, nil
}

// CacheStorage returns the cache storage handle.
func (p *Platform) CacheStorage() (CacheStorage, error) {
	if p.caches == nil {
		return nil, errors.New("platform has no cache storage")
	}
	return p.caches, nil
}

// CacheDefault returns the default cache from the cache storage handle.
func (p *Platform) CacheDefault() (Cache, error) {
	caches, err := p.CacheStorage()
	if err != nil {
		return nil, err
	}
	return caches.Default(), nil
}

// Binding returns the named env binding, or nil when it is not bound. A
// missing binding is not an error; callers decide whether absence matters.
func (p *Platform) Binding(name string) any {
	if p.env == nil {
		return nil
	}
	return p.env[name]
}
