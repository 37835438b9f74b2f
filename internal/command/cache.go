// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"net/http"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/edgectlgo/internal/cache"
	"github.com/staranto/edgectlgo/internal/cachestore"
	"github.com/staranto/edgectlgo/internal/meta"
)

// CacheCommandAction is the action handler for the "cache" subcommand. It
// covers local cache maintenance: --purge removes entries older than the
// given number of hours, --rm deletes the entry for one URL. Relative --rm
// targets resolve against --base.
func CacheCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	if ShortCircuitTLDR(ctx, cmd, "cache") {
		return nil
	}

	if hours := int(cmd.Int("purge")); hours > 0 {
		store, ok, err := cachestore.New()
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("caching is disabled or no cache directory could be resolved")
		}
		if err := store.Purge(hours); err != nil {
			return err
		}
	}

	if target := cmd.String("rm"); target != "" {
		p, err := NewPlatform(ctx, &m)
		if err != nil {
			return err
		}

		var helper *cache.Helper
		if name := cmd.String("cache"); name != "" && name != cachestore.DefaultName {
			helper, err = cache.NewNamedHelper(p, name)
		} else {
			helper, err = cache.NewHelper(p)
		}
		if err != nil {
			return err
		}

		opts := &cache.Options{Debug: true}
		if base := cmd.String("base"); base != "" {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, base, nil)
			if err != nil {
				return fmt.Errorf("invalid base URL %s: %w", base, err)
			}
			opts.BaseRequest = req
		}

		removed, err := helper.Delete(ctx, target, opts)
		if err != nil {
			return err
		}
		if removed {
			fmt.Println("removed")
		} else {
			fmt.Println("not cached")
		}
	}

	return nil
}

// CacheCommandBuilder constructs the cli.Command for "cache".
func CacheCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "cache",
		Usage:     "local cache maintenance",
		UsageText: `edgectl cache [--purge HOURS] [--rm URL [--base URL]]`,
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: []cli.Flag{
			tldrFlag,
			NewCacheNameFlag("cache", meta.Config.Source),
			&cli.IntFlag{
				Name:  "purge",
				Usage: "remove cache entries older than this many hours",
			},
			&cli.StringFlag{
				Name:  "rm",
				Usage: "remove the cache entry for a URL",
			},
			&cli.StringFlag{
				Name:  "base",
				Usage: "base URL for resolving a relative --rm target",
			},
		},
		Action: CacheCommandAction,
	}
}
