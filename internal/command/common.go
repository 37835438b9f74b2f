// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"reflect"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/edgectlgo/internal/attrs"
	"github.com/staranto/edgectlgo/internal/cachestore"
	"github.com/staranto/edgectlgo/internal/config"
	"github.com/staranto/edgectlgo/internal/meta"
	"github.com/staranto/edgectlgo/internal/output"
	"github.com/staranto/edgectlgo/internal/platform"
	"github.com/staranto/edgectlgo/internal/r2"
	"github.com/staranto/edgectlgo/internal/version"
)

// ShortCircuitTLDR checks the --tldr flag and, if present and available,
// runs `tldr edgectl <subcmd>` and returns true so the caller can exit early.
func ShortCircuitTLDR(ctx context.Context, cmd *cli.Command, subcmd string) bool {
	if cmd.Bool("tldr") {
		if _, err := exec.LookPath("tldr"); err == nil {
			c := exec.CommandContext(ctx, "tldr", "edgectl", subcmd)
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			_ = c.Run()
		}
		return true
	}
	return false
}

// DumpSchemaIfRequested prints the JSON schema for the provided type when
// --schema is set, and returns true if it handled the request.
func DumpSchemaIfRequested(cmd *cli.Command, t reflect.Type) bool {
	if cmd.Bool("schema") {
		output.DumpSchema("", t)
		return true
	}
	return false
}

// BuildAttrs constructs an AttrList with defaults and optional extras from
// --attrs, then applies the global transform spec.
func BuildAttrs(cmd *cli.Command, defaults ...string) (al attrs.AttrList) {
	//nolint:errcheck
	{
		for _, d := range defaults {
			al.Set(d)
		}
		if extras := cmd.String("attrs"); extras != "" {
			al.Set(extras)
		}
		al.SetGlobalTransformSpec()
	}
	return
}

// EmitJSONSlice marshals a slice as JSON and passes it to the common output
// routine.
func EmitJSONSlice(results any, al attrs.AttrList, cmd *cli.Command) error {
	raw, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	output.SliceDiceSpit(*bytes.NewBuffer(raw), al, cmd, "", os.Stdout)
	return nil
}

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// NewPlatform assembles the runtime platform for a command invocation: one
// env binding per configured bucket, the disk-backed cache storage when
// enabled, and a fresh execution context. The result is cached on the meta so
// repeated calls within one invocation share bindings.
func NewPlatform(ctx context.Context, m *meta.Meta) (*platform.Platform, error) {
	if m.Platform != nil {
		return m.Platform, nil
	}

	bindings, err := config.BucketBindings()
	if err != nil {
		return nil, err
	}

	env := make(map[string]any, len(bindings))
	for _, b := range bindings {
		client, err := r2.New(ctx, r2.Config{
			Bucket:    b.Bucket,
			AccountID: b.AccountID,
			Endpoint:  b.Endpoint,
			Region:    b.Region,
			Profile:   b.Profile,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to bind bucket %s: %w", b.Name, err)
		}
		env[b.Name] = client
		log.Debugf("bound bucket %s -> %s", b.Name, b.Bucket)
	}

	var storage platform.CacheStorage
	if store, ok, err := cachestore.New(); err != nil {
		return nil, err
	} else if ok {
		storage = store
	}

	props := platform.Properties{
		"binary":  "edgectl",
		"version": version.Version,
		"config":  m.Config.Source,
	}

	m.Platform = platform.New(env, platform.NewExecContext(), props, storage)
	return m.Platform, nil
}

// QueryCommandBuilder is a helper that constructs a cli.Command for query
// subcommands (oq, bq, get) using a consistent pattern. It accepts the
// command name, usage text, optional UsageText, custom flags, the action
// handler, and meta. The builder automatically wires metadata, adds
// tldr/schema flags, applies global flags, and sets up validators.
type QueryCommandBuilder struct {
	Name      string
	Usage     string
	UsageText string
	Flags     []cli.Flag
	Action    func(context.Context, *cli.Command) error
	Meta      meta.Meta
}

// Build returns a configured cli.Command from the builder.
func (qcb *QueryCommandBuilder) Build() *cli.Command {
	return &cli.Command{
		Name:      qcb.Name,
		Usage:     qcb.Usage,
		UsageText: qcb.UsageText,
		Metadata: map[string]any{
			"meta": qcb.Meta,
		},
		Flags: append(qcb.Flags, append([]cli.Flag{
			tldrFlag,
			schemaFlag,
		}, NewGlobalFlags(qcb.Name)...)...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: qcb.Action,
	}
}

// QueryActionRunner[T] encapsulates the common query action pattern for all
// query subcommands. It handles GetMeta, short-circuit checks, BuildAttrs,
// schema dumping, and output emission, with data fetching provided by
// FetchFn.
type QueryActionRunner[T any] struct {
	CommandName  string
	SchemaType   reflect.Type
	DefaultAttrs []string
	FetchFn      func(context.Context, *cli.Command) ([]T, error)
}

// Run executes the query action with the provided context and command.
func (qar *QueryActionRunner[T]) Run(
	ctx context.Context,
	cmd *cli.Command,
) error {
	// Step 1: GetMeta + debug.
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	// Step 2: Short-circuit checks.
	if ShortCircuitTLDR(ctx, cmd, qar.CommandName) {
		return nil
	}
	if DumpSchemaIfRequested(cmd, qar.SchemaType) {
		return nil
	}

	// Step 3: BuildAttrs + debug.
	attrs := BuildAttrs(cmd, qar.DefaultAttrs...)
	log.Debugf("attrs: %v", attrs)

	// Step 4: Fetch data.
	results, err := qar.FetchFn(ctx, cmd)
	if err != nil {
		return err
	}

	// Step 5: Emit + return.
	if err := EmitJSONSlice(results, attrs, cmd); err != nil {
		return err
	}
	return nil
}

// RequireBucketFlag resolves the --bucket flag, failing with a uniform error
// when it is unset.
func RequireBucketFlag(cmd *cli.Command) (string, error) {
	name := cmd.String("bucket")
	if name == "" {
		return "", fmt.Errorf("a bucket binding is required (--bucket or EDGECTL_BUCKET)")
	}
	return name, nil
}
