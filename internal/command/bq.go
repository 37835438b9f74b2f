// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"reflect"
	"sort"

	"github.com/urfave/cli/v3"

	"github.com/staranto/edgectlgo/internal/config"
	"github.com/staranto/edgectlgo/internal/meta"
)

// bucketBindingRow is the bq result shape: one row per configured bucket
// binding with the endpoint already resolved.
type bucketBindingRow struct {
	Name      string `json:"name"`
	Bucket    string `json:"bucket"`
	AccountID string `json:"account_id"`
	Endpoint  string `json:"endpoint,omitempty"`
	Region    string `json:"region,omitempty"`
	Profile   string `json:"profile,omitempty"`
}

// BqCommandAction is the action handler for the "bq" subcommand. It lists
// the bucket bindings from the config file, not the provider-side buckets;
// a binding that points at a nonexistent bucket still appears here.
func BqCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner[bucketBindingRow]{
		CommandName:  "bq",
		SchemaType:   reflect.TypeOf(bucketBindingRow{}),
		DefaultAttrs: []string{"name", "bucket", "account_id"},
		FetchFn: func(ctx context.Context, cmd *cli.Command) (
			[]bucketBindingRow,
			error,
		) {
			bindings, err := config.BucketBindings()
			if err != nil {
				return nil, err
			}

			rows := make([]bucketBindingRow, 0, len(bindings))
			for _, b := range bindings {
				rows = append(rows, bucketBindingRow{
					Name:      b.Name,
					Bucket:    b.Bucket,
					AccountID: b.AccountID,
					Endpoint:  b.Endpoint,
					Region:    b.Region,
					Profile:   b.Profile,
				})
			}
			sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
			return rows, nil
		},
	}
	return runner.Run(ctx, cmd)
}

// BqCommandBuilder constructs the cli.Command for "bq".
func BqCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "bq",
		Usage:     "bucket binding query",
		UsageText: `edgectl bq [options]`,
		Action:    BqCommandAction,
		Meta:      meta,
	}).Build()
}
