// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package cache provides a small file-based cache used to avoid refetching
// remote parameter files that have not changed.
package cache
