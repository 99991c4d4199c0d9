// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package command defines the CLI command set for opctl. Each service group
// becomes a command whose subcommands are generated from the operation
// schemas, all driven by one generic action runner.
package command
