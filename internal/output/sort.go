// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"sort"
	"strings"
)

// sortKey is one parsed entry of a --sort spec. A leading - sorts the key
// descending and a leading ! compares case-sensitively.
type sortKey struct {
	key           string
	descending    bool
	caseSensitive bool
}

// SortDataset sorts the result set in place per the comma-delimited spec.
// Later keys break ties left by earlier ones. An empty spec leaves the
// dataset in arrival order.
func SortDataset(dataset []map[string]interface{}, spec string) {
	if spec == "" {
		return
	}

	//nolint:prealloc // Invalid entries are discarded, so len is unknown.
	var keys []sortKey
	for _, s := range strings.Split(spec, ",") {
		s = strings.TrimSpace(s)

		k := sortKey{}
		for {
			if strings.HasPrefix(s, "-") {
				k.descending = true
				s = s[1:]
				continue
			}
			if strings.HasPrefix(s, "!") {
				k.caseSensitive = true
				s = s[1:]
				continue
			}
			break
		}

		if s == "" {
			continue
		}
		k.key = s
		keys = append(keys, k)
	}

	sort.SliceStable(dataset, func(i, j int) bool {
		for _, k := range keys {
			cmp := compareValues(dataset[i][k.key], dataset[j][k.key], k.caseSensitive)
			if cmp == 0 {
				continue
			}
			if k.descending {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}

// compareValues orders two cell values. Numbers compare numerically,
// everything else falls back to the string rendering.
func compareValues(a, b interface{}, caseSensitive bool) int {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}

	as := InterfaceToString(a)
	bs := InterfaceToString(b)
	if !caseSensitive {
		as = strings.ToLower(as)
		bs = strings.ToLower(bs)
	}
	return strings.Compare(as, bs)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
