// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/staranto/edgectlgo/internal/attrs"
	"github.com/staranto/edgectlgo/internal/meta"
)

func runStub(t *testing.T, flags []cli.Flag, args []string, action func(*cli.Command)) {
	t.Helper()
	cmd := &cli.Command{
		Name:  "stub",
		Flags: flags,
		Action: func(_ context.Context, c *cli.Command) error {
			action(c)
			return nil
		},
	}
	require.NoError(t, cmd.Run(context.Background(), append([]string{"stub"}, args...)))
}

func TestBuildAttrs(t *testing.T) {
	var got attrs.AttrList
	runStub(t,
		[]cli.Flag{&cli.StringFlag{Name: "attrs"}},
		[]string{"--attrs", "etag::8"},
		func(c *cli.Command) {
			got = BuildAttrs(c, "key", "size")
		})

	require.Len(t, got, 3)
	assert.Equal(t, "key", got[0].Key)
	assert.Equal(t, "size", got[1].Key)
	assert.Equal(t, "etag", got[2].Key)
	assert.Equal(t, "8", got[2].TransformSpec)
}

func TestBuildAttrs_ExtrasOverrideDefaults(t *testing.T) {
	var got attrs.AttrList
	runStub(t,
		[]cli.Flag{&cli.StringFlag{Name: "attrs"}},
		[]string{"--attrs", "key:name:u"},
		func(c *cli.Command) {
			got = BuildAttrs(c, "key", "size")
		})

	// The extra merges into the default instead of duplicating it.
	require.Len(t, got, 2)
	assert.Equal(t, "name", got[0].OutputKey)
	assert.Equal(t, "u", got[0].TransformSpec)
}

func TestRequireBucketFlag(t *testing.T) {
	runStub(t,
		[]cli.Flag{&cli.StringFlag{Name: "bucket"}},
		[]string{"--bucket", "MEDIA"},
		func(c *cli.Command) {
			name, err := RequireBucketFlag(c)
			assert.NoError(t, err)
			assert.Equal(t, "MEDIA", name)
		})

	runStub(t,
		[]cli.Flag{&cli.StringFlag{Name: "bucket"}},
		nil,
		func(c *cli.Command) {
			_, err := RequireBucketFlag(c)
			assert.Error(t, err)
		})
}

func TestGetMeta(t *testing.T) {
	assert.Equal(t, meta.Meta{}, GetMeta(nil))
	assert.Equal(t, meta.Meta{}, GetMeta(&cli.Command{}))

	m := meta.Meta{StartingDir: "/tmp"}
	cmd := &cli.Command{Metadata: map[string]any{"meta": m}}
	assert.Equal(t, m, GetMeta(cmd))

	// Wrong type falls back to the zero value.
	cmd = &cli.Command{Metadata: map[string]any{"meta": "oops"}}
	assert.Equal(t, meta.Meta{}, GetMeta(cmd))
}
