// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package driller walks dotted attribute paths through JSON response
// documents, with explicit indexes and single-element list unwrapping.
package driller
