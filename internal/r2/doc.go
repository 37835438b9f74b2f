// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package r2 implements the bucket binding contract over Cloudflare R2
// through its S3-compatible API.
package r2
