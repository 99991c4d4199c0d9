// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"context"
	"reflect"
	"strings"

	"github.com/apex/log"

	"github.com/staranto/opctl/internal/builder"
	"github.com/staranto/opctl/internal/schema"
)

// PageFunc performs one call with the given request.
type PageFunc func(context.Context, builder.Tree) (any, error)

// EmitFunc receives each response page. Returning an error stops the loop.
type EmitFunc func(page any) error

// Paginate drives a list operation. The first call uses req as given. While
// auto is true, each response's continuation token is copied into the next
// request and the operation is called again, strictly sequentially, until the
// service returns no token or hands back the token it was just given. Every
// page is emitted exactly once, in order. Context cancellation is checked
// before each call.
func Paginate(
	ctx context.Context,
	req builder.Tree,
	pager schema.Pager,
	auto bool,
	call PageFunc,
	emit EmitFunc,
) error {
	req = req.Clone()
	pages := 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		sent, _ := req.Get(pager.InputToken)
		resp, err := call(ctx, req)
		if err != nil {
			return err
		}
		pages++

		if err := emit(resp); err != nil {
			return err
		}

		next := Token(resp, pager.OutputToken)
		log.Debugf("paginate: page %d, next token %q", pages, next)

		if next == "" || !auto {
			if next != "" {
				log.Warnf("more results are available; rerun with --next-token %s", next)
			}
			return nil
		}

		// Some services echo the cursor on the last page instead of clearing
		// it. Treat that as the end rather than looping forever.
		if s, ok := sent.(string); ok && s == next {
			log.Warnf("service returned the same continuation token twice, stopping")
			return nil
		}

		req.Set(strings.Split(pager.InputToken, "."), next)
	}
}

// Token reads a string (or *string) field from a response struct by name.
func Token(resp any, field string) string {
	v := reflect.ValueOf(resp)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return ""
	}

	f := v.FieldByName(field)
	if !f.IsValid() {
		return ""
	}
	if f.Kind() == reflect.Pointer {
		if f.IsNil() {
			return ""
		}
		f = f.Elem()
	}
	if f.Kind() != reflect.String {
		return ""
	}
	return f.String()
}
