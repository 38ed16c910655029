// Copyright (c) 2025 Steve Taranto staranto@gmail.com.
// SPDX-License-Identifier: Apache-2.0

// Package backend persists the mapping tables. Implementations live in the
// local (cache directory) and s3 (bucket and prefix) subpackages.
package backend
