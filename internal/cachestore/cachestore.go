// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package cachestore backs the platform cache contract with a directory of
// serialized HTTP responses, one named cache per subdirectory.
package cachestore

import (
	"bufio"
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"
	"time"

	"github.com/apex/log"

	"github.com/staranto/edgectlgo/internal/platform"
)

// DefaultName is the cache every Store exposes without opening one by name.
const DefaultName = "default"

// Dir resolves the base cache directory.
// Precedence:
//  1. EDGECTL_CACHE_DIR, if set and non-empty
//  2. os.UserCacheDir()/edgectl
//
// Returns ("", false) if a base cannot be resolved (treat as disabled).
func Dir() (string, bool) {
	if c, ok := os.LookupEnv("EDGECTL_CACHE_DIR"); ok && c != "" {
		return c, true
	}
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "edgectl"), true
	}
	return "", false
}

// Enabled returns true unless EDGECTL_CACHE explicitly disables it ("0"/"false").
func Enabled() bool {
	enabled, _ := os.LookupEnv("EDGECTL_CACHE")
	return enabled == "" || (enabled != "0" && enabled != "false")
}

// Store is a platform.CacheStorage over a base directory. The zero value is
// not usable; construct with New or NewStore.
type Store struct {
	base string
}

// New resolves the base directory from the environment and creates it. The
// second return is false when caching is disabled or no base can be resolved.
func New() (*Store, bool, error) {
	if !Enabled() {
		return nil, false, nil
	}
	base, ok := Dir()
	if !ok {
		return nil, false, nil
	}
	if err := os.MkdirAll(base, 0o755); err != nil { //nolint:mnd
		return nil, false, fmt.Errorf("failed to create cache base directory: %w", err)
	}
	return &Store{base: base}, true, nil
}

// NewStore builds a Store rooted at an explicit directory, bypassing the
// environment gates.
func NewStore(base string) *Store {
	return &Store{base: base}
}

func (s *Store) Default() platform.Cache {
	return &diskCache{dir: filepath.Join(s.base, DefaultName)}
}

func (s *Store) Open(name string) (platform.Cache, error) {
	if name == "" {
		return nil, fmt.Errorf("cache name must not be empty")
	}
	return &diskCache{dir: filepath.Join(s.base, name)}, nil
}

// Purge removes entries older than the provided number of hours across every
// named cache. If hours <= 0 it is a no-op.
func (s *Store) Purge(hours int) error {
	if hours <= 0 {
		log.Debug("cache cleaning disabled")
		return nil
	}
	maxAge := time.Duration(hours) * time.Hour
	if err := filepath.Walk(s.base, func(path string, info os.FileInfo, _ error) error {
		if info == nil || info.IsDir() {
			return nil
		}
		if time.Since(info.ModTime()) > maxAge {
			if err := os.Remove(path); err == nil {
				log.Debugf("removed cache file %s", path)
			} else {
				log.WithError(err).Warnf("failed to remove cache file %s", path)
			}
		}
		return nil
	}); err != nil {
		return fmt.Errorf("failed to purge cache: %w", err)
	}
	return nil
}

// diskCache stores one serialized response per file, named by the MD5 of the
// lookup key.
type diskCache struct {
	dir string
}

func (c *diskCache) entryPath(req *http.Request) string {
	return filepath.Join(c.dir, encodeKey(req.Method+" "+req.URL.String()))
}

func (c *diskCache) Match(_ context.Context, req *http.Request) (*http.Response, error) {
	b, err := os.ReadFile(c.entryPath(req))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}
	resp, err := http.ReadResponse(bufio.NewReader(bytes.NewReader(b)), req)
	if err != nil {
		// A corrupt entry is a miss, not a failure.
		log.WithError(err).Debugf("discarding unreadable cache entry %s", c.entryPath(req))
		return nil, nil
	}
	return resp, nil
}

func (c *diskCache) Put(_ context.Context, req *http.Request, resp *http.Response) error {
	b, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return fmt.Errorf("failed to serialize response: %w", err)
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	// Write-then-rename so a concurrent Match never sees a partial entry.
	tmp, err := os.CreateTemp(c.dir, "entry-*")
	if err != nil {
		return fmt.Errorf("failed to stage cache entry: %w", err)
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.entryPath(req)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to commit cache entry: %w", err)
	}
	return nil
}

func (c *diskCache) Delete(_ context.Context, req *http.Request) (bool, error) {
	err := os.Remove(c.entryPath(req))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to remove cache entry: %w", err)
}

// encodeKey hashes k with MD5 and returns the hex string.
func encodeKey(k string) string {
	h := md5.New()
	_, _ = h.Write([]byte(k))
	return hex.EncodeToString(h.Sum(nil))
}
