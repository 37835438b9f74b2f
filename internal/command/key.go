// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/edgectlgo/internal/bucket"
	"github.com/staranto/edgectlgo/internal/meta"
)

// KeyCommandAction is the action handler for the "key" subcommand. It derives
// a collision-resistant object key from a file name and prints it. With
// --use-file-name the base name is kept; otherwise a random token is used.
func KeyCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	if ShortCircuitTLDR(ctx, cmd, "key") {
		return nil
	}

	fileName := cmd.Args().First()
	if fileName == "" {
		return fmt.Errorf("a file name is required")
	}

	fmt.Println(bucket.CreateUniqueKey(fileName, cmd.Bool("use-file-name")))
	return nil
}

// KeyCommandBuilder constructs the cli.Command for "key".
func KeyCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "key",
		Usage:     "derive a unique object key from a file name",
		UsageText: `edgectl key FILENAME [options]`,
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: []cli.Flag{
			tldrFlag,
			&cli.BoolFlag{
				Name:        "use-file-name",
				Aliases:     []string{"n"},
				Usage:       "keep the file's base name in the key",
				HideDefault: true,
			},
		},
		Action: KeyCommandAction,
	}
}
