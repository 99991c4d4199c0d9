// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package filters

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/staranto/opctl/internal/attrs"
	"github.com/staranto/opctl/internal/driller"
)

// EnvDelim overrides the "," separating filter expressions.
const EnvDelim = "OPCTL_FILTER_DELIM"

// ErrInvalidFilter is wrapped by every Parse error.
var ErrInvalidFilter = errors.New("invalid filter")

// Operators, longest first so ">=" is not read as ">".
var operators = []string{">=", "<=", "=", "~", "^", "<", ">", "@", "/"}

// Filter is one --filter expression: Path Op Target, optionally negated with
// a leading "!" on the operator.
type Filter struct {
	Path   string
	Op     string
	Negate bool
	Target string

	re *regexp.Regexp
}

func (f Filter) String() string {
	neg := ""
	if f.Negate {
		neg = "!"
	}
	return f.Path + neg + f.Op + f.Target
}

// Parse splits spec on the delimiter and parses each expression. Paths are
// response document paths as understood by the driller, so
// "Tags.Key=team" or "MediaPipelines[0].Status=Failed" are valid.
func Parse(spec string) ([]Filter, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, nil
	}

	delim := ","
	if d, ok := os.LookupEnv(EnvDelim); ok && d != "" {
		delim = d
	}

	var out []Filter
	for _, expr := range strings.Split(spec, delim) {
		f, err := parseOne(expr)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func parseOne(expr string) (Filter, error) {
	idx, op := -1, ""
	for i := range len(expr) {
		for _, o := range operators {
			if strings.HasPrefix(expr[i:], o) {
				idx, op = i, o
				break
			}
		}
		if idx >= 0 {
			break
		}
	}
	if idx < 0 {
		return Filter{}, fmt.Errorf("%w: %q has no operator", ErrInvalidFilter, expr)
	}

	f := Filter{Path: strings.TrimSpace(expr[:idx]), Op: op, Target: expr[idx+len(op):]}
	if strings.HasSuffix(f.Path, "!") {
		f.Negate = true
		f.Path = strings.TrimSpace(strings.TrimSuffix(f.Path, "!"))
	}
	if f.Path == "" {
		return Filter{}, fmt.Errorf("%w: %q has no path", ErrInvalidFilter, expr)
	}
	if op == "/" {
		re, err := regexp.Compile(f.Target)
		if err != nil {
			return Filter{}, fmt.Errorf("%w: %q: %w", ErrInvalidFilter, expr, err)
		}
		f.re = re
	}
	return f, nil
}

// FilterDataset returns the rows of candidates matching every filter in
// spec, each projected onto al. A filter path naming an attribute's output
// key is resolved to that attribute's path. An invalid spec is an error.
func FilterDataset(candidates gjson.Result, al attrs.AttrList, spec string) ([]map[string]any, error) {
	filters, err := Parse(spec)
	if err != nil {
		return nil, err
	}
	for i := range filters {
		for _, a := range al {
			if a.OutputKey == filters[i].Path {
				filters[i].Path = a.Key
				break
			}
		}
	}

	var rows []map[string]any
	for _, candidate := range candidates.Array() {
		if !Match(candidate, filters) {
			continue
		}
		// Transforms are applied later, by the renderer.
		row := make(map[string]any, len(al))
		for _, a := range al {
			row[a.OutputKey] = driller.Driller(candidate.Raw, a.Key).Value()
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Match reports whether doc satisfies all filters. A path that resolves to
// nothing never matches, negated or not.
func Match(doc gjson.Result, filters []Filter) bool {
	for _, f := range filters {
		v := driller.Driller(doc.Raw, f.Path)
		if !v.Exists() {
			return false
		}
		if f.matches(v) == f.Negate {
			return false
		}
	}
	return true
}

// matches evaluates the filter without negation. Lists match when any
// element does, so "Tags.Key=team" finds a tag among many. For "@" a list
// is a membership test and an object a key test.
func (f Filter) matches(v gjson.Result) bool {
	switch {
	case v.IsArray():
		for _, el := range v.Array() {
			if f.matches(el) {
				return true
			}
		}
		return false
	case v.IsObject():
		if f.Op == "@" {
			return v.Get(gjsonKey(f.Target)).Exists()
		}
		return false
	}

	switch v.Type {
	case gjson.Number:
		if n, err := strconv.ParseFloat(strings.TrimSpace(f.Target), 64); err == nil {
			return compare(f.Op, cmp.Compare(v.Float(), n), f, v.String())
		}
	case gjson.String:
		if t, ok := parseTime(v.Str); ok {
			if target, ok := parseTarget(f.Target); ok {
				return compare(f.Op, t.Compare(target), f, v.Str)
			}
		}
	}
	return compare(f.Op, strings.Compare(v.String(), f.Target), f, v.String())
}

// compare applies op given the ordering c of value against the target.
// Operators that are not orderings fall back to string tests on s.
func compare(op string, c int, f Filter, s string) bool {
	switch op {
	case "=":
		return c == 0
	case "<":
		return c < 0
	case ">":
		return c > 0
	case "<=":
		return c <= 0
	case ">=":
		return c >= 0
	case "~":
		// Enum values are upper case on the wire but rarely typed that way.
		return strings.EqualFold(s, f.Target)
	case "^":
		return strings.HasPrefix(s, f.Target)
	case "@":
		return strings.Contains(s, f.Target)
	case "/":
		return f.re != nil && f.re.MatchString(s)
	}
	return false
}

// now is replaced in tests.
var now = time.Now

func parseTime(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseTarget reads a time target. Besides timestamps and dates, a signed
// duration is relative to now, so "CreatedTimestamp>-24h" keeps the last day.
func parseTarget(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, ok := parseTime(s); ok {
		return t, true
	}
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		if d, err := time.ParseDuration(s); err == nil {
			return now().Add(d), true
		}
	}
	return time.Time{}, false
}

func gjsonKey(k string) string {
	return strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`).Replace(k)
}
