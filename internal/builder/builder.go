// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package builder

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/staranto/opctl/internal/schema"
)

// Values holds the provided flag values keyed by flag name. A key is present
// only when the caller explicitly supplied the value.
type Values map[string]any

// Has reports whether name was provided.
func (v Values) Has(name string) bool {
	_, ok := v[name]
	return ok
}

// Merge returns a copy of base overlaid with v. Keys in v win.
func (v Values) Merge(base Values) Values {
	out := Values{}
	for k, val := range base {
		out[k] = val
	}
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Tree is a request payload addressed by field path.
type Tree map[string]any

var ErrCoerce = errors.New("invalid value")

// Build assembles a request tree from the provided values. Only provided
// values are inserted and any structure left without leaves is pruned, so a
// nested structure exists in the result only if at least one of its leaves
// was set.
func Build(fields []schema.Field, vals Values) (Tree, error) {
	tree := Tree{}

	for _, f := range fields {
		raw, ok := vals[f.Name]
		if !ok {
			switch {
			case f.Kind == schema.KindToken:
				raw = uuid.New().String()
			case f.Default != nil:
				raw = f.Default
			default:
				continue
			}
		}

		v, err := Coerce(f, raw)
		if err != nil {
			return nil, fmt.Errorf("--%s: %w", f.Name, err)
		}
		if v == nil {
			continue
		}
		tree.Set(f.Segments(), v)
	}

	pruned, ok := Prune(map[string]any(tree))
	if !ok {
		return Tree{}, nil
	}
	return Tree(pruned.(map[string]any)), nil
}

// Set stores value at the path, creating intermediate structures.
func (t Tree) Set(segments []string, value any) {
	cur := map[string]any(t)
	for _, s := range segments[:len(segments)-1] {
		next, ok := cur[s].(map[string]any)
		if !ok {
			next = map[string]any{}
			cur[s] = next
		}
		cur = next
	}
	cur[segments[len(segments)-1]] = value
}

// Get returns the value at a dotted path.
func (t Tree) Get(path string) (any, bool) {
	var cur any = map[string]any(t)
	for _, s := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[s]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Clone returns a deep copy of the tree.
func (t Tree) Clone() Tree {
	return Tree(cloneValue(map[string]any(t)).(map[string]any))
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = cloneValue(e)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// Prune removes nil values, empty lists and structures that hold nothing
// after their own children have been pruned. The second result is false when
// v itself is empty.
func Prune(v any) (any, bool) {
	switch val := v.(type) {
	case nil:
		return nil, false
	case map[string]any:
		out := map[string]any{}
		for k, e := range val {
			if p, ok := Prune(e); ok {
				out[k] = p
			}
		}
		if len(out) == 0 {
			return nil, false
		}
		return out, true
	case []any:
		out := make([]any, 0, len(val))
		for _, e := range val {
			if p, ok := Prune(e); ok {
				out = append(out, p)
			}
		}
		if len(out) == 0 {
			return nil, false
		}
		return out, true
	case []string:
		if len(val) == 0 {
			return nil, false
		}
		return val, true
	default:
		return v, true
	}
}

// Decode converts the tree into a typed request. Field names in the tree
// match the exported field names of T.
func Decode[T any](t Tree) (*T, error) {
	raw, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	out := new(T)
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("failed to decode request: %w", err)
	}
	return out, nil
}

// Coerce converts a raw value from a flag, an env var, a config file or a
// parameter file into the representation the request expects for the
// field's kind. Empty strings and empty lists become nil.
func Coerce(f schema.Field, raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}

	switch f.Kind {
	case schema.KindString, schema.KindToken:
		s := stringOf(raw)
		if s == "" {
			return nil, nil
		}
		return s, nil

	case schema.KindEnum:
		s := stringOf(raw)
		if s == "" {
			return nil, nil
		}
		if len(f.Enum) == 0 {
			return s, nil
		}
		if c, ok := f.CanonicalEnum(s); ok {
			return c, nil
		}
		return nil, fmt.Errorf("%w %q: must be one of %v", ErrCoerce, s, f.Enum)

	case schema.KindInt:
		switch n := raw.(type) {
		case int:
			return int64(n), nil
		case int32:
			return int64(n), nil
		case int64:
			return n, nil
		case float64:
			if n != float64(int64(n)) {
				return nil, fmt.Errorf("%w %v: not an integer", ErrCoerce, n)
			}
			return int64(n), nil
		case string:
			if n == "" {
				return nil, nil
			}
			i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w %q: not an integer", ErrCoerce, n)
			}
			return i, nil
		}

	case schema.KindStringList:
		list := stringList(raw)
		if len(list) == 0 {
			return nil, nil
		}
		return list, nil

	case schema.KindDate:
		switch tv := raw.(type) {
		case time.Time:
			return tv.UTC().Format(time.DateOnly), nil
		case string:
			if tv == "" {
				return nil, nil
			}
			ts, err := parseTime(tv)
			if err != nil {
				return nil, fmt.Errorf("%w %q: %v", ErrCoerce, tv, err)
			}
			return ts.UTC().Format(time.DateOnly), nil
		}

	case schema.KindTags:
		return coerceTags(raw)

	case schema.KindJSON:
		if s, ok := raw.(string); ok {
			if strings.TrimSpace(s) == "" {
				return nil, nil
			}
			var doc any
			if err := json.Unmarshal([]byte(s), &doc); err != nil {
				return nil, fmt.Errorf("%w: not a JSON document: %v", ErrCoerce, err)
			}
			return doc, nil
		}
		return normalize(raw), nil
	}

	return nil, fmt.Errorf("%w %v (%T) for %s", ErrCoerce, raw, raw, f.Kind)
}

// IsEmpty reports whether a provided value carries nothing.
func IsEmpty(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	}
	return false
}

func stringOf(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func stringList(raw any) []string {
	var out []string
	switch v := raw.(type) {
	case []string:
		for _, s := range v {
			out = append(out, splitList(s)...)
		}
	case []any:
		for _, e := range v {
			if s := stringOf(e); s != "" {
				out = append(out, s)
			}
		}
	case string:
		out = splitList(v)
	default:
		out = []string{stringOf(v)}
	}
	return out
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// coerceTags accepts "k=v" strings or a map and produces the SDK's list of
// {Key, Value} structures, sorted by key.
func coerceTags(raw any) (any, error) {
	pairs := map[string]string{}

	switch v := raw.(type) {
	case map[string]any:
		for k, val := range v {
			pairs[k] = stringOf(val)
		}
	case map[string]string:
		for k, val := range v {
			pairs[k] = val
		}
	default:
		for _, kv := range stringList(raw) {
			k, val, ok := strings.Cut(kv, "=")
			if !ok || strings.TrimSpace(k) == "" {
				return nil, fmt.Errorf("%w %q: tags are key=value", ErrCoerce, kv)
			}
			pairs[strings.TrimSpace(k)] = strings.TrimSpace(val)
		}
	}

	if len(pairs) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tags := make([]any, 0, len(keys))
	for _, k := range keys {
		tags = append(tags, map[string]any{"Key": k, "Value": pairs[k]})
	}
	return tags, nil
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(s string) (time.Time, error) {
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, strings.TrimSpace(s)); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("expected RFC3339 or YYYY-MM-DD")
}

// normalize converts YAML-decoded maps (map[any]any) into JSON-friendly
// map[string]any recursively.
func normalize(v any) any {
	switch val := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[fmt.Sprintf("%v", k)] = normalize(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = normalize(e)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = normalize(e)
		}
		return out
	default:
		return v
	}
}
