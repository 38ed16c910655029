// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package mapping is the incremental identifier mapping cache. Store holds
// the append-only protein, gene name and ortholog tables; Engine splits a
// query into cached and missing ids, resolves the missing ones externally and
// merges them back; the view methods reduce resolved rows to deduplicated,
// semicolon joined summaries.
package mapping
