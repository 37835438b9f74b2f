// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package platform

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCache struct{}

func (stubCache) Match(context.Context, *http.Request) (*http.Response, error) { return nil, nil }
func (stubCache) Put(context.Context, *http.Request, *http.Response) error     { return nil }
func (stubCache) Delete(context.Context, *http.Request) (bool, error)          { return false, nil }

type stubStorage struct{}

func (stubStorage) Default() Cache             { return stubCache{} }
func (stubStorage) Open(string) (Cache, error) { return stubCache{}, nil }

func TestAccessors_MissingFields(t *testing.T) {
	p := New(nil, nil, nil, nil)

	_, err := p.Env()
	assert.Error(t, err)

	_, err = p.Context()
	assert.Error(t, err)

	_, err = p.CFProperties()
	assert.Error(t, err)

	_, err = p.CacheStorage()
	assert.Error(t, err)

	_, err = p.CacheDefault()
	assert.Error(t, err)
}

func TestAccessors_PresentFields(t *testing.T) {
	env := map[string]any{"MEDIA": "binding"}
	cf := Properties{"colo": "EWR"}
	p := New(env, NewExecContext(), cf, stubStorage{})

	gotEnv, err := p.Env()
	require.NoError(t, err)
	assert.Equal(t, env, gotEnv)

	_, err = p.Context()
	assert.NoError(t, err)

	gotCF, err := p.CFProperties()
	require.NoError(t, err)
	assert.Equal(t, "EWR", gotCF["colo"])

	cache, err := p.CacheDefault()
	require.NoError(t, err)
	assert.NotNil(t, cache)
}

func TestBinding(t *testing.T) {
	p := New(map[string]any{"MEDIA": 42}, nil, nil, nil)

	assert.Equal(t, 42, p.Binding("MEDIA"))
	assert.Nil(t, p.Binding("MISSING"))

	// A nil environment never panics, just reports absence.
	empty := New(nil, nil, nil, nil)
	assert.Nil(t, empty.Binding("MEDIA"))
}

func TestExecContext_WaitUntil(t *testing.T) {
	ec := NewExecContext()

	var ran atomic.Int32
	ec.WaitUntil(func() error {
		ran.Add(1)
		return nil
	})
	ec.WaitUntil(func() error {
		ran.Add(1)
		return errors.New("swallowed")
	})

	ec.Wait()
	assert.Equal(t, int32(2), ran.Load())
}
