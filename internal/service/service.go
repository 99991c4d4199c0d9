// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"fmt"
	"reflect"

	awsx "github.com/staranto/opctl/internal/aws"
	"github.com/staranto/opctl/internal/builder"
	"github.com/staranto/opctl/internal/confirm"
	"github.com/staranto/opctl/internal/dispatch"
	"github.com/staranto/opctl/internal/schema"
)

// Entry is one command: the operation schema, its impact, and how to call
// it.
type Entry struct {
	Op     schema.Operation
	Impact confirm.Impact
	// Output is the SDK response struct type.
	Output reflect.Type
	Invoke func(ctx context.Context, sess *awsx.Session, req builder.Tree) (any, error)
}

// Bind builds an Entry from a client accessor and a dispatch binding.
func Bind[C any](
	op schema.Operation,
	impacts confirm.Table,
	client func(*awsx.Session) C,
	b dispatch.Binding[C],
) Entry {
	return Entry{
		Op:     op,
		Impact: impacts.Of(op.Name),
		Output: b.Output,
		Invoke: func(ctx context.Context, sess *awsx.Session, req builder.Tree) (any, error) {
			return b.Invoke(ctx, client(sess), req)
		},
	}
}

// Group is a command group wrapping one AWS service.
type Group struct {
	// Name is the command group, e.g. "mp".
	Name string
	// Title is the AWS service name.
	Title   string
	Usage   string
	Entries []Entry
}

// Lookup finds an entry by API operation name or command name.
func (g Group) Lookup(name string) (Entry, bool) {
	for _, e := range g.Entries {
		if e.Op.Name == name || e.Op.Command() == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Validate checks every operation schema in the group, that command names
// are unique, and that what-if getters exist.
func (g Group) Validate() error {
	seen := map[string]bool{}
	for _, e := range g.Entries {
		if e.Op.Service != g.Name {
			return fmt.Errorf("%s: belongs to group %q, not %q", e.Op.Name, e.Op.Service, g.Name)
		}
		if err := e.Op.Validate(); err != nil {
			return err
		}
		if seen[e.Op.Command()] {
			return fmt.Errorf("%s: duplicate command %s", g.Name, e.Op.Command())
		}
		seen[e.Op.Command()] = true
		if e.Output == nil || e.Invoke == nil {
			return fmt.Errorf("%s: %s is not bound to a client method", g.Name, e.Op.Name)
		}
		if e.Op.Current != "" {
			if _, ok := g.Lookup(e.Op.Current); !ok {
				return fmt.Errorf("%s: %s: unknown current getter %s", g.Name, e.Op.Name, e.Op.Current)
			}
		}
	}
	return nil
}

// Paged adds the continuation token and page size fields list operations
// share, and marks op as paginated.
func Paged(op schema.Operation) schema.Operation {
	op.Fields = append(op.Fields,
		schema.Field{
			Name:  "next-token",
			Path:  "NextToken",
			Kind:  schema.KindString,
			Usage: "Continuation token from a previous call",
		},
		schema.Field{
			Name:  "max-results",
			Path:  "MaxResults",
			Kind:  schema.KindInt,
			Usage: "Page size",
		},
	)
	op.Pager = &schema.Pager{
		InputToken:  "NextToken",
		OutputToken: "NextToken",
	}
	return op
}
