// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/edgectlgo/internal/bucket"
	"github.com/staranto/edgectlgo/internal/meta"
)

// GetCommandAction is the action handler for the "get" subcommand. It
// fetches one object by key. The body goes to stdout or --out; with
// --metadata the body is discarded and the object's metadata is emitted
// through the common output pipeline instead.
func GetCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	if ShortCircuitTLDR(ctx, cmd, "get") {
		return nil
	}
	if DumpSchemaIfRequested(cmd, reflect.TypeOf(bucket.Object{})) {
		return nil
	}

	name, err := RequireBucketFlag(cmd)
	if err != nil {
		return err
	}

	key := cmd.Args().First()
	if key == "" {
		return fmt.Errorf("an object key is required")
	}

	p, err := NewPlatform(ctx, &m)
	if err != nil {
		return err
	}

	helper := bucket.NewHelper(p)
	obj, err := helper.Object(ctx, name, key)
	if err != nil {
		return err
	}
	if obj == nil {
		return fmt.Errorf("object not found: %s", key)
	}
	if obj.Body != nil {
		defer obj.Body.Close()
	}

	if cmd.Bool("metadata") {
		attrs := BuildAttrs(cmd,
			"key", "size", "etag",
			"last_modified:modified",
			".http_metadata.content_type:content_type")
		return EmitJSONSlice([]bucket.Object{*obj}, attrs, cmd)
	}

	out := io.Writer(os.Stdout)
	if path := cmd.String("out"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		defer f.Close()
		out = f
	}

	if obj.Body == nil {
		return nil
	}
	if _, err := io.Copy(out, obj.Body); err != nil {
		return fmt.Errorf("failed to write object body: %w", err)
	}
	return nil
}

// GetCommandBuilder constructs the cli.Command for "get".
func GetCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "get",
		Usage:     "fetch a single object",
		UsageText: `edgectl get KEY [options]`,
		Flags: []cli.Flag{
			NewBucketFlag("get", meta.Config.Source),
			&cli.StringFlag{
				Name:  "out",
				Usage: "write the object body to a file instead of stdout",
			},
			&cli.BoolFlag{
				Name:        "metadata",
				Aliases:     []string{"m"},
				Usage:       "emit the object's metadata instead of its body",
				HideDefault: true,
			},
		},
		Action: GetCommandAction,
		Meta:   meta,
	}).Build()
}
