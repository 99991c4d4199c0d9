// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package aws loads the AWS configuration once per run and caches the
// service clients built from it.
package aws
