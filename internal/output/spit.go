// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v2"

	"github.com/staranto/opctl/internal/attrs"
	"github.com/staranto/opctl/internal/config"
	"github.com/staranto/opctl/internal/filters"
)

// Formats accepted by --output.
var Formats = []string{"text", "json", "raw", "yaml"}

// Options are the rendering flags of a command.
type Options struct {
	Output string
	Filter string
	Sort   string
	Titles bool
	Color  bool
	// Explicit is true when --attrs was given. Otherwise the attrs are
	// derived from the data.
	Explicit bool
}

// OptionsFromCommand reads the rendering flags from cmd.
func OptionsFromCommand(cmd *cli.Command) Options {
	return Options{
		Output:   cmd.String("output"),
		Filter:   cmd.String("filter"),
		Sort:     cmd.String("sort"),
		Titles:   cmd.Bool("titles"),
		Color:    cmd.Bool("color"),
		Explicit: cmd.String("attrs") != "",
	}
}

// metadataField is bookkeeping on every SDK response.
const metadataField = "ResultMetadata"

// maxSchemaDepth bounds DumpSchema on recursive response types.
const maxSchemaDepth = 6

// DumpSchema prints the attribute paths of a response type, usable with
// --attrs, --filter, --sort and --select.
func DumpSchema(w io.Writer, typ reflect.Type) {
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}

	paths := DumpSchemaWalker("", typ, 0, map[reflect.Type]bool{})
	if len(paths) == 0 {
		log.Debugf("no attributes found for type: %s", typ.Name())
		return
	}
	sort.Strings(paths)

	fmt.Fprintln(w, "Schema for", typ.Name(), "--")
	for _, p := range paths {
		fmt.Fprintln(w, p)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w,
		`Paths are relative to the response. When --select picks a property, --attrs
paths are relative to that property, or to each element when it is a list.`)
}

var timeType = reflect.TypeOf(time.Time{})

// DumpSchemaWalker recursively walks a struct type and returns the dotted
// paths of its exported fields. Lists are walked through to their elements.
func DumpSchemaWalker(holder string, typ reflect.Type, depth int, seen map[reflect.Type]bool) []string {
	if seen[typ] {
		return nil
	}
	seen[typ] = true
	defer delete(seen, typ)

	var paths []string
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() || field.Anonymous || field.Name == metadataField {
			continue
		}

		name := field.Name
		if holder != "" {
			name = holder + "." + name
		}
		paths = append(paths, name)

		ft := field.Type
		for ft.Kind() == reflect.Pointer || ft.Kind() == reflect.Slice || ft.Kind() == reflect.Array {
			ft = ft.Elem()
		}
		if ft.Kind() == reflect.Struct && ft != timeType && depth < maxSchemaDepth {
			paths = append(paths, DumpSchemaWalker(name, ft, depth+1, seen)...)
		}
	}
	return paths
}

// SliceDiceSpit filters, transforms, sorts and renders a projected response
// value. Objects and lists of objects become rows; scalars and lists of
// scalars are written as they are.
func SliceDiceSpit(value any, al attrs.AttrList, opts Options, w io.Writer) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}

	// If raw, just dump it and go home.
	if opts.Output == "raw" {
		_, err = fmt.Fprintln(w, string(raw))
		return err
	}

	doc := gjson.ParseBytes(raw)

	single := doc.IsObject()
	if !single && !isRowSet(doc) {
		return spitScalar(doc, value, opts, w)
	}

	dataset := doc
	if single {
		dataset = gjson.Parse("[" + doc.Raw + "]")
	}

	// Work on a copy; the caller reuses al across pages and records.
	al = append(attrs.AttrList{}, al...)
	if !opts.Explicit || len(al.Visible()) == 0 {
		al = append(DefaultAttrs(dataset, opts.Output != "json" && opts.Output != "yaml"), al...)
	}
	_ = al.SetGlobalTransformSpec()

	// Filter out the rows we don't want first so the following steps work on
	// a smaller dataset.
	rows, err := filters.FilterDataset(dataset, al, opts.Filter)
	if err != nil {
		return err
	}

	// Transform each value in each row.
	for _, row := range rows {
		for _, attr := range al {
			if attr.TransformSpec != "" {
				row[attr.OutputKey] = attr.Transform(row[attr.OutputKey])
			}
		}
	}

	SortDataset(rows, opts.Sort)

	switch opts.Output {
	case "json", "yaml":
		visible := visibleRows(rows, al)
		var out any = visible
		if single {
			if len(visible) == 0 {
				return nil
			}
			out = visible[0]
		}
		return encode(w, out, opts.Output)
	default:
		TableWriter(w, rows, al, opts)
		return nil
	}
}

func isRowSet(doc gjson.Result) bool {
	if !doc.IsArray() {
		return false
	}
	arr := doc.Array()
	if len(arr) == 0 {
		return false
	}
	for _, el := range arr {
		if !el.IsObject() {
			return false
		}
	}
	return true
}

func spitScalar(doc gjson.Result, value any, opts Options, w io.Writer) error {
	switch opts.Output {
	case "json", "yaml":
		return encode(w, doc.Value(), opts.Output)
	}

	if !doc.Exists() || doc.Type == gjson.Null {
		return nil
	}
	if doc.IsArray() {
		for _, el := range doc.Array() {
			fmt.Fprintln(w, InterfaceToString(el.Value(), "-"))
		}
		return nil
	}
	fmt.Fprintln(w, InterfaceToString(value, "-"))
	return nil
}

func encode(w io.Writer, v any, format string) error {
	var (
		out []byte
		err error
	)
	if format == "yaml" {
		out, err = yaml.Marshal(v)
	} else {
		out, err = json.Marshal(v)
		out = append(out, '\n')
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s output: %w", format, err)
	}
	_, err = w.Write(out)
	return err
}

// visibleRows drops the attrs kept only for filtering and sorting.
func visibleRows(rows []map[string]interface{}, al attrs.AttrList) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		v := make(map[string]interface{}, len(row))
		for _, attr := range al {
			if attr.Include {
				v[attr.OutputKey] = row[attr.OutputKey]
			}
		}
		out = append(out, v)
	}
	return out
}

// DefaultAttrs derives attrs from the keys of the rows, in sorted order. When
// scalarsOnly is set, keys holding objects or lists are skipped, so text
// tables stay readable.
func DefaultAttrs(dataset gjson.Result, scalarsOnly bool) attrs.AttrList {
	keys := map[string]bool{}
	for _, row := range dataset.Array() {
		row.ForEach(func(k, v gjson.Result) bool {
			if scalarsOnly && (v.IsObject() || v.IsArray()) {
				return true
			}
			keys[k.String()] = true
			return true
		})
	}

	names := make([]string, 0, len(keys))
	for k := range keys {
		names = append(names, k)
	}
	sort.Strings(names)

	al := make(attrs.AttrList, 0, len(names))
	for _, n := range names {
		al = append(al, attrs.Attr{Key: n, OutputKey: n, Include: true})
	}
	return al
}

// SortDataset sorts rows in place by a comma-separated list of keys. A key
// prefixed with - sorts descending; a key prefixed with ! compares strings
// case-sensitively. Later keys break ties.
func SortDataset(rows []map[string]interface{}, spec string) {
	if spec == "" {
		return
	}

	type sortKey struct {
		name          string
		desc          bool
		caseSensitive bool
	}

	var keys []sortKey
	for _, s := range strings.Split(spec, ",") {
		k := sortKey{name: strings.TrimSpace(s)}
		for len(k.name) > 0 && strings.ContainsAny(k.name[:1], "-!") {
			if k.name[0] == '-' {
				k.desc = true
			} else {
				k.caseSensitive = true
			}
			k.name = k.name[1:]
		}
		if k.name != "" {
			keys = append(keys, k)
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		for _, k := range keys {
			c := compare(rows[i][k.name], rows[j][k.name], k.caseSensitive)
			if c == 0 {
				continue
			}
			if k.desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

// compare orders numbers numerically and everything else by its string form.
// Missing values sort first.
func compare(a, b interface{}, caseSensitive bool) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	if x, ok := a.(float64); ok {
		if y, ok := b.(float64); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	}

	sa, sb := InterfaceToString(a), InterfaceToString(b)
	if !caseSensitive {
		sa, sb = strings.ToLower(sa), strings.ToLower(sb)
	}
	return strings.Compare(sa, sb)
}

// TableWriter renders the result set in a tabular form honoring color and
// titles options.
func TableWriter(
	w io.Writer,
	resultSet []map[string]interface{},
	al attrs.AttrList,
	opts Options) {

	if len(resultSet) == 0 {
		return
	}

	var (
		headerStyle  = lipgloss.NewStyle().Align(lipgloss.Left)
		cellStyle    = lipgloss.NewStyle().Padding(0, 0).Align(lipgloss.Left)
		evenRowStyle = cellStyle
		oddRowStyle  = cellStyle
	)

	if opts.Color {
		headerColor, evenColor, oddColor := getColors("colors")

		headerStyle = headerStyle.Foreground(lipgloss.Color(headerColor))
		evenRowStyle = evenRowStyle.Foreground(lipgloss.Color(evenColor))
		oddRowStyle = oddRowStyle.Foreground(lipgloss.Color(oddColor))
	}

	pad, _ := config.GetInt("padding", 1)

	var rows [][]string
	for _, result := range resultSet {
		row := make([]string, 0, len(result))
		for _, attr := range al {
			if !attr.Include {
				continue
			}
			row = append(row, InterfaceToString(result[attr.OutputKey], "-"))
		}
		rows = append(rows, row)
	}

	t := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			var style lipgloss.Style
			switch {
			case row == table.HeaderRow:
				style = headerStyle
			case row%2 == 0:
				style = evenRowStyle
			default:
				style = oddRowStyle
			}

			if col > 0 {
				style = style.PaddingLeft(pad)
			}

			return style
		}).
		Headers().
		Rows(rows...)

	if opts.Titles {
		var headers []string
		for _, attr := range al {
			if attr.Include {
				headers = append(headers, attr.OutputKey)
			}
		}

		// https://github.com/charmbracelet/lipgloss/issues/261
		t = t.Headers(headers...).BorderHeader(false)
	}
	fmt.Fprintln(w, t)
}

// getColors returns configured color values for table rendering.
func getColors(key string) (header string, even string, odd string) {
	header, _ = config.GetString(fmt.Sprintf("%s.title", key), "#f6be00")
	even, _ = config.GetString(fmt.Sprintf("%s.even", key), "#ffffff")
	odd, _ = config.GetString(fmt.Sprintf("%s.odd", key), "#00c8f0")
	return
}

// InterfaceToString converts supported primitive or composite values to a
// string. A custom empty value may be provided.
func InterfaceToString(value interface{}, emptyValue ...string) string {
	if len(emptyValue) == 0 {
		emptyValue = []string{""}
	}

	if value == nil || reflect.ValueOf(value).IsZero() {
		return emptyValue[0]
	}

	switch value := value.(type) {
	case string:
		return value
	case int:
		return strconv.Itoa(value)
	case int64:
		return strconv.FormatInt(value, 10)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	default:
		jsonBytes, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprintf("%v", value)
		}
		return string(jsonBytes)
	}
}
