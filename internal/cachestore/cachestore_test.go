// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cachestore

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDir(t *testing.T) {
	t.Setenv("EDGECTL_CACHE_DIR", "/tmp/custom-cache")
	dir, ok := Dir()
	assert.True(t, ok)
	assert.Equal(t, "/tmp/custom-cache", dir)

	t.Setenv("EDGECTL_CACHE_DIR", "")
	dir, ok = Dir()
	assert.True(t, ok)
	assert.True(t, strings.HasSuffix(dir, "edgectl"), dir)
}

func TestEnabled(t *testing.T) {
	t.Setenv("EDGECTL_CACHE", "")
	assert.True(t, Enabled())

	t.Setenv("EDGECTL_CACHE", "1")
	assert.True(t, Enabled())

	t.Setenv("EDGECTL_CACHE", "0")
	assert.False(t, Enabled())

	t.Setenv("EDGECTL_CACHE", "false")
	assert.False(t, Enabled())
}

func TestNew_Disabled(t *testing.T) {
	t.Setenv("EDGECTL_CACHE", "0")
	store, ok, err := New()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, store)
}

func TestNew_CreatesBase(t *testing.T) {
	base := filepath.Join(t.TempDir(), "cache")
	t.Setenv("EDGECTL_CACHE", "")
	t.Setenv("EDGECTL_CACHE_DIR", base)

	store, ok, err := New()
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, store)

	info, err := os.Stat(base)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func roundTrip(t *testing.T, store *Store) {
	t.Helper()
	ctx := context.Background()
	cache := store.Default()

	req, _ := http.NewRequest(http.MethodGet, "https://example.com/a", nil)

	// Miss before any write.
	resp, err := cache.Match(ctx, req)
	require.NoError(t, err)
	assert.Nil(t, resp)

	stored := &http.Response{
		Status:     "200 OK",
		StatusCode: http.StatusOK,
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     http.Header{"Content-Type": []string{"text/plain"}},
		Body:       io.NopCloser(strings.NewReader("hello")),
	}
	require.NoError(t, cache.Put(ctx, req, stored))

	resp, err = cache.Match(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/plain", resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))

	removed, err := cache.Delete(ctx, req)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = cache.Delete(ctx, req)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestDiskCache_RoundTrip(t *testing.T) {
	roundTrip(t, NewStore(t.TempDir()))
}

func TestOpen_NamedCachesAreIsolated(t *testing.T) {
	store := NewStore(t.TempDir())
	ctx := context.Background()

	a, err := store.Open("images")
	require.NoError(t, err)
	b, err := store.Open("api")
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodGet, "https://example.com/a", nil)
	require.NoError(t, a.Put(ctx, req, &http.Response{
		Status: "200 OK", StatusCode: http.StatusOK,
		Proto: "HTTP/1.1", ProtoMajor: 1, ProtoMinor: 1,
		Header: http.Header{}, Body: io.NopCloser(strings.NewReader("x")),
	}))

	resp, err := b.Match(ctx, req)
	require.NoError(t, err)
	assert.Nil(t, resp)

	resp, err = a.Match(ctx, req)
	require.NoError(t, err)
	assert.NotNil(t, resp)

	_, err = store.Open("")
	assert.Error(t, err)
}

func TestMatch_CorruptEntryIsMiss(t *testing.T) {
	base := t.TempDir()
	store := NewStore(base)
	cache := store.Default()

	req, _ := http.NewRequest(http.MethodGet, "https://example.com/a", nil)

	dir := filepath.Join(base, DefaultName)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, encodeKey("GET https://example.com/a")),
		[]byte("not an http response"), 0o600))

	resp, err := cache.Match(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, resp)
}

func TestPurge(t *testing.T) {
	base := t.TempDir()
	store := NewStore(base)

	dir := filepath.Join(base, DefaultName)
	require.NoError(t, os.MkdirAll(dir, 0o755))

	old := filepath.Join(dir, "old-entry")
	fresh := filepath.Join(dir, "fresh-entry")
	require.NoError(t, os.WriteFile(old, []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(fresh, []byte("x"), 0o600))

	stale := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(old, stale, stale))

	require.NoError(t, store.Purge(24))

	_, err := os.Stat(old)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(fresh)
	assert.NoError(t, err)

	// hours <= 0 is a no-op.
	require.NoError(t, store.Purge(0))
	_, err = os.Stat(fresh)
	assert.NoError(t, err)
}
