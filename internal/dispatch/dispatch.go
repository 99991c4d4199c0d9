// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"context"
	"reflect"

	"github.com/apex/log"

	"github.com/staranto/opctl/internal/builder"
)

// Invoker sends an assembled request through a service client and returns
// the typed SDK response as an any.
type Invoker[C any] func(ctx context.Context, client C, req builder.Tree) (any, error)

// Binding ties an operation to the client method that serves it.
type Binding[C any] struct {
	// Output is the SDK response struct type (not the pointer).
	Output reflect.Type
	Invoke Invoker[C]
}

// Method adapts an SDK client method expression, e.g.
// (chimesdkmediapipelines.Client).CreateMediaCapturePipeline or the same
// method on a narrower interface, into a Binding. The request tree is decoded
// into the method's input type and the method is called exactly once.
func Method[C, I, O, P any](
	m func(C, context.Context, *I, ...func(*P)) (*O, error),
) Binding[C] {
	return Binding[C]{
		Output: reflect.TypeOf((*O)(nil)).Elem(),
		Invoke: func(ctx context.Context, client C, req builder.Tree) (any, error) {
			in, err := builder.Decode[I](req)
			if err != nil {
				return nil, err
			}
			log.Debugf("dispatch: %T", in)

			out, err := m(client, ctx, in)
			if err != nil {
				return nil, err
			}
			return out, nil
		},
	}
}
