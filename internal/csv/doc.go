// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package csv reads and writes the delimited tables used for the persisted
// mapping cache and for tab-separated service responses.
package csv
