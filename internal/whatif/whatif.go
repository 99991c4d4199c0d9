// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package whatif

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/apex/log"
	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"

	"github.com/staranto/opctl/internal/builder"
	"github.com/staranto/opctl/internal/selector"
)

// Request writes the request that would be sent.
func Request(w io.Writer, operation string, req builder.Tree) error {
	body, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	_, err = fmt.Fprintf(w, "What if: performing %s with\n%s\n", operation, body)
	return err
}

// Diff compares the current resource (an SDK response) against the proposed
// request. Only keys present in the proposed request are compared, minus the
// ignored ones. The result is empty when nothing would change.
func Diff(current any, proposed builder.Tree, color bool, ignore ...string) (string, error) {
	doc, err := selector.Document(current)
	if err != nil {
		return "", err
	}

	skip := map[string]bool{}
	for _, k := range ignore {
		skip[k] = true
	}

	left := map[string]any{}
	right := map[string]any{}
	for k, v := range proposed {
		if skip[k] {
			continue
		}
		right[k] = v
		if cur, ok := doc[k]; ok {
			left[k] = cur
		}
	}

	// Both sides must look like decoded JSON for the differ to compare
	// values rather than Go types.
	if left, err = roundtrip(left); err != nil {
		return "", err
	}
	if right, err = roundtrip(right); err != nil {
		return "", err
	}

	d := gojsondiff.New().CompareObjects(left, right)
	if !d.Modified() {
		log.Debugf("whatif: no changes")
		return "", nil
	}

	f := formatter.NewAsciiFormatter(left, formatter.AsciiFormatterConfig{
		ShowArrayIndex: true,
		Coloring:       color,
	})
	return f.Format(d)
}

// Preview writes the request and, when current is non-nil, the diff against
// it.
func Preview(w io.Writer, operation string, req builder.Tree, current any, color bool, ignore ...string) error {
	if err := Request(w, operation, req); err != nil {
		return err
	}
	if current == nil {
		return nil
	}

	diff, err := Diff(current, req, color, ignore...)
	if err != nil {
		return err
	}
	if diff == "" {
		_, err = fmt.Fprintln(w, "What if: no changes to the current resource")
		return err
	}
	_, err = fmt.Fprintf(w, "What if: changes to the current resource\n%s", diff)
	return err
}

func roundtrip(m map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return out, nil
}
