// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package meta

import (
	"context"
	"io"
	"os"

	awsx "github.com/staranto/opctl/internal/aws"
	"github.com/staranto/opctl/internal/confirm"
	"github.com/staranto/opctl/internal/config"
)

// Meta are the meta-options that are available on all or most commands.
type Meta struct {
	Args    []string
	Config  config.Type
	Context context.Context

	// Session is the AWS session shared by every call of the invocation. When
	// nil, one is loaded from the command's --region, --profile and
	// --endpoint-url flags on first use.
	Session *awsx.Session

	// Prompter answers confirmation prompts. Nil means a terminal prompt.
	Prompter    confirm.Prompter
	Interactive bool

	Stdin  io.Reader
	Stdout io.Writer
}

// Out returns the writer for results.
func (m Meta) Out() io.Writer {
	if m.Stdout != nil {
		return m.Stdout
	}
	return os.Stdout
}

// In returns the reader for "-" parameter files.
func (m Meta) In() io.Reader {
	if m.Stdin != nil {
		return m.Stdin
	}
	return os.Stdin
}
