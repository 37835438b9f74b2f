// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"reflect"

	"github.com/urfave/cli/v3"

	"github.com/staranto/edgectlgo/internal/bucket"
	"github.com/staranto/edgectlgo/internal/meta"
)

// OqCommandAction is the action handler for the "oq" subcommand. It lists
// every object in the selected bucket binding, draining the cursor across
// however many pages the listing spans, and emits output per common flags.
func OqCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	runner := &QueryActionRunner[bucket.Object]{
		CommandName:  "oq",
		SchemaType:   reflect.TypeOf(bucket.Object{}),
		DefaultAttrs: []string{"key", "size", "etag::12", "last_modified:modified"},
		FetchFn: func(ctx context.Context, cmd *cli.Command) (
			[]bucket.Object,
			error,
		) {
			name, err := RequireBucketFlag(cmd)
			if err != nil {
				return nil, err
			}

			p, err := NewPlatform(ctx, &m)
			if err != nil {
				return nil, err
			}

			helper := bucket.NewHelper(p)
			result, listErr := helper.List(ctx, name, bucket.ListOptions{
				Prefix:    cmd.String("prefix"),
				Delimiter: cmd.String("delimiter"),
				Limit:     int(cmd.Int("limit")),
			})
			if listErr != nil {
				return nil, listErr
			}
			return result.Objects, nil
		},
	}
	return runner.Run(ctx, cmd)
}

// OqCommandBuilder constructs the cli.Command for "oq", configuring metadata,
// flags, and the associated action/validator.
func OqCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "oq",
		Usage:     "object query",
		UsageText: `edgectl oq [options]`,
		Flags: []cli.Flag{
			NewBucketFlag("oq", meta.Config.Source),
			&cli.StringFlag{
				Name:    "prefix",
				Aliases: []string{"p"},
				Usage:   "only list keys beginning with prefix",
			},
			&cli.StringFlag{
				Name:  "delimiter",
				Usage: "group keys by delimiter",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"l"},
				Usage:   "page size used while draining the listing",
			},
		},
		Action: OqCommandAction,
		Meta:   meta,
	}).Build()
}

// OqCommandValidator performs validation for "oq" and delegates shared checks
// to GlobalFlagsValidator.
func OqCommandValidator(ctx context.Context, cmd *cli.Command) error {
	return GlobalFlagsValidator(ctx, cmd)
}
