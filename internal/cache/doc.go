// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package cache is the typed helper over the platform's default HTTP cache:
// cache-key normalization, hit marking, deferred writes, and deletion by
// request, URL, or string target.
package cache
