// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package driller

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

var segmentRegex = regexp.MustCompile(`^(.*?)((?:\[\d+\])*)$`)
var indexRegex = regexp.MustCompile(`\[(\d+)\]`)

type segment struct {
	key     string
	indexes []int
}

func parse(path string) []segment {
	var segs []segment
	for _, part := range strings.Split(path, ".") {
		m := segmentRegex.FindStringSubmatch(part)
		seg := segment{key: m[1]}
		for _, idx := range indexRegex.FindAllStringSubmatch(m[2], -1) {
			n, _ := strconv.Atoi(idx[1])
			seg.indexes = append(seg.indexes, n)
		}
		segs = append(segs, seg)
	}
	return segs
}

// Driller resolves path against the JSON document raw. Segments are keys,
// optionally followed by [n] indexes. A list of exactly one element is
// unwrapped, so "Tags.Key" works on a single tag. A longer list without an
// index yields the list, or the list of its elements' values when more
// segments follow. A missing path yields an empty Result.
func Driller(raw string, path string) gjson.Result {
	return drill(gjson.Parse(raw), parse(path))
}

func drill(cur gjson.Result, segs []segment) gjson.Result {
	for i, seg := range segs {
		if seg.key != "" {
			if !cur.IsObject() {
				return gjson.Result{}
			}
			cur = cur.Get(escape(seg.key))
			if !cur.Exists() {
				return gjson.Result{}
			}
		}

		for _, n := range seg.indexes {
			arr := cur.Array()
			if !cur.IsArray() || n >= len(arr) {
				return gjson.Result{}
			}
			cur = arr[n]
		}

		if cur.IsArray() && len(seg.indexes) == 0 {
			arr := cur.Array()
			if len(arr) == 1 {
				cur = arr[0]
				continue
			}
			rest := segs[i+1:]
			if len(rest) == 0 {
				return cur
			}
			return collect(arr, rest)
		}
	}
	return cur
}

func collect(arr []gjson.Result, rest []segment) gjson.Result {
	parts := make([]string, 0, len(arr))
	for _, el := range arr {
		if v := drill(el, rest); v.Exists() {
			parts = append(parts, v.Raw)
		}
	}
	if len(parts) == 0 {
		return gjson.Result{}
	}
	return gjson.Parse("[" + strings.Join(parts, ",") + "]")
}

// escape quotes gjson path syntax so keys are matched literally.
func escape(key string) string {
	var b strings.Builder
	for _, r := range key {
		if strings.ContainsRune(`.*?|#@\!=<>%`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
