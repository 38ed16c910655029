// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package output renders mapping rows for the commands: it filters, sorts and
// transforms them, then emits a text table, json or yaml.
package output
