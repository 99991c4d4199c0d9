// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package output

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/staranto/opctl/internal/attrs"
	"github.com/staranto/opctl/internal/filters"
)

func TestSortDataset(t *testing.T) {
	testData := []map[string]interface{}{
		{"Name": "zebra", "Priority": 3.0, "RuleType": "AccountRule"},
		{"Name": "Alpha", "Priority": 1.0, "RuleType": "OrganizationRule"},
		{"Name": "beta", "Priority": 1.0, "RuleType": "AccountRule"},
	}

	tests := []struct {
		name      string
		spec      string
		wantOrder []string
	}{
		{"ascending by name", "Name", []string{"Alpha", "beta", "zebra"}},
		{"descending by name", "-Name", []string{"zebra", "beta", "Alpha"}},
		{"case sensitive", "!Name", []string{"Alpha", "beta", "zebra"}},
		{"case sensitive descending", "-!Name", []string{"zebra", "beta", "Alpha"}},
		{"numeric with stable ties", "Priority", []string{"Alpha", "beta", "zebra"}},
		{"descending numeric", "-Priority", []string{"zebra", "Alpha", "beta"}},
		{"tie breaker", "RuleType,-Name", []string{"zebra", "beta", "Alpha"}},
		{"missing key sorts first", "Missing,Name", []string{"Alpha", "beta", "zebra"}},
		{"empty spec", "", []string{"zebra", "Alpha", "beta"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := make([]map[string]interface{}, len(testData))
			copy(data, testData)
			SortDataset(data, tt.spec)

			got := make([]string, 0, len(data))
			for _, row := range data {
				got = append(got, row["Name"].(string))
			}
			assert.Equal(t, tt.wantOrder, got)
		})
	}
}

func TestSortDatasetCaseSensitiveOrder(t *testing.T) {
	data := []map[string]interface{}{{"Name": "beta"}, {"Name": "Zulu"}}
	SortDataset(data, "!Name")
	assert.Equal(t, "Zulu", data[0]["Name"], "upper case sorts before lower case")

	SortDataset(data, "Name")
	assert.Equal(t, "beta", data[0]["Name"])
}

func TestInterfaceToString(t *testing.T) {
	tests := []struct {
		name     string
		value    interface{}
		emptyVal string
		want     string
	}{
		{name: "string", value: "InProgress", want: "InProgress"},
		{name: "int", value: 42, want: "42"},
		{name: "int64", value: int64(42), want: "42"},
		{name: "whole float", value: 42.0, want: "42"},
		{name: "fractional float", value: 12.75, want: "12.75"},
		{name: "bool true", value: true, want: "true"},
		{name: "bool false is zero value", value: false, want: ""},
		{name: "nil default", value: nil, want: ""},
		{name: "nil custom", value: nil, emptyVal: "-", want: "-"},
		{name: "slice", value: []string{"a", "b"}, want: `["a","b"]`},
		{name: "map", value: map[string]int{"x": 1}, want: `{"x":1}`},
		{name: "zero value with custom empty", value: 0, emptyVal: "N/A", want: "N/A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			if tt.emptyVal != "" {
				got = InterfaceToString(tt.value, tt.emptyVal)
			} else {
				got = InterfaceToString(tt.value)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

type schemaTag struct {
	Key   *string
	Value *string
}

type schemaRule struct {
	Name     *string
	Priority *int32
	Created  *time.Time
	Tags     []schemaTag
	Parent   *schemaRule
	internal string
}

type schemaOutput struct {
	Rule           *schemaRule
	NextToken      *string
	ResultMetadata struct{ Raw string }
}

func TestDumpSchemaWalker(t *testing.T) {
	got := DumpSchemaWalker("", reflect.TypeOf(schemaOutput{}), 0, map[reflect.Type]bool{})

	assert.ElementsMatch(t, []string{
		"Rule",
		"Rule.Name",
		"Rule.Priority",
		"Rule.Created",
		"Rule.Tags",
		"Rule.Tags.Key",
		"Rule.Tags.Value",
		"Rule.Parent",
		"NextToken",
	}, got, "recursive types stop, metadata and unexported fields are skipped")
}

func TestDumpSchema(t *testing.T) {
	var buf bytes.Buffer
	DumpSchema(&buf, reflect.TypeOf(&schemaOutput{}))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Schema for schemaOutput --\n"))
	assert.Contains(t, out, "\nRule.Tags.Key\n")
	assert.NotContains(t, out, "ResultMetadata")
}

const pipelines = `[
	{"MediaPipelineId": "p-2", "MediaPipelineArn": "arn:aws:chime:us-east-1:1:media-pipeline/p-2", "Status": "Failed", "Tags": [{"Key": "env", "Value": "dev"}]},
	{"MediaPipelineId": "p-1", "MediaPipelineArn": "arn:aws:chime:us-east-1:1:media-pipeline/p-1", "Status": "InProgress", "Tags": [{"Key": "env", "Value": "prod"}]}
]`

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestSliceDiceSpit(t *testing.T) {
	idAndStatus := func() attrs.AttrList {
		var al attrs.AttrList
		require.NoError(t, al.Set("MediaPipelineId:id,Status,!Tags.Value:env"))
		return al
	}

	tests := []struct {
		name  string
		value any
		attrs attrs.AttrList
		opts  Options
		want  string
	}{
		{
			name:  "raw ignores attrs",
			value: decode(t, pipelines),
			attrs: idAndStatus(),
			opts:  Options{Output: "raw", Explicit: true, Filter: "Status=Failed"},
			want:  mustJSON(t, decode(t, pipelines)) + "\n",
		},
		{
			name:  "json applies attrs filter and sort",
			value: decode(t, pipelines),
			attrs: idAndStatus(),
			opts:  Options{Output: "json", Explicit: true, Sort: "id"},
			want:  `[{"Status":"InProgress","id":"p-1"},{"Status":"Failed","id":"p-2"}]` + "\n",
		},
		{
			name:  "json filter on hidden attr",
			value: decode(t, pipelines),
			attrs: idAndStatus(),
			opts:  Options{Output: "json", Explicit: true, Filter: "env=prod"},
			want:  `[{"Status":"InProgress","id":"p-1"}]` + "\n",
		},
		{
			name:  "single object stays an object",
			value: decode(t, `{"RuleArn": "arn:rule", "Name": "nightly", "Priority": 3}`),
			opts:  Options{Output: "json"},
			want:  `{"Name":"nightly","Priority":3,"RuleArn":"arn:rule"}` + "\n",
		},
		{
			name:  "single object filtered away",
			value: decode(t, `{"Name": "nightly"}`),
			opts:  Options{Output: "json", Filter: "Name=other"},
			want:  "",
		},
		{
			name:  "yaml",
			value: decode(t, `{"Name": "nightly", "Status": "Active"}`),
			opts:  Options{Output: "yaml"},
			want:  "Name: nightly\nStatus: Active\n",
		},
		{
			name:  "scalar text",
			value: "arn:aws:chime:us-east-1:1:media-pipeline/p-1",
			opts:  Options{Output: "text"},
			want:  "arn:aws:chime:us-east-1:1:media-pipeline/p-1\n",
		},
		{
			name:  "scalar json",
			value: "p-1",
			opts:  Options{Output: "json"},
			want:  `"p-1"` + "\n",
		},
		{
			name:  "list of scalars",
			value: []any{"111111111111", "222222222222"},
			opts:  Options{Output: "text"},
			want:  "111111111111\n222222222222\n",
		},
		{
			name:  "nil prints nothing",
			value: nil,
			opts:  Options{Output: "text"},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, SliceDiceSpit(tt.value, tt.attrs, tt.opts, &buf))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestSliceDiceSpitTable(t *testing.T) {
	var al attrs.AttrList
	require.NoError(t, al.Set("MediaPipelineId:id,Status::u"))

	var buf bytes.Buffer
	require.NoError(t, SliceDiceSpit(decode(t, pipelines), al, Options{Output: "text", Explicit: true, Titles: true, Sort: "id"}, &buf))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"id", "Status"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"p-1", "INPROGRESS"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"p-2", "FAILED"}, strings.Fields(lines[2]))
}

func TestSliceDiceSpitReusesAttrs(t *testing.T) {
	var al attrs.AttrList
	require.NoError(t, al.Set("*::u,Status"))

	for i := 0; i < 2; i++ {
		var buf bytes.Buffer
		require.NoError(t, SliceDiceSpit(decode(t, `{"Status": "Active"}`), al, Options{Output: "json", Explicit: true}, &buf))
		assert.Equal(t, `{"Status":"ACTIVE"}`+"\n", buf.String())
	}
	assert.Equal(t, "", al[1].TransformSpec, "caller's attrs are not modified")
}

func TestDefaultAttrs(t *testing.T) {
	ds := gjson.Parse(pipelines)

	keys := func(al attrs.AttrList) []string {
		var out []string
		for _, a := range al {
			out = append(out, a.OutputKey)
		}
		return out
	}

	assert.Equal(t, []string{"MediaPipelineArn", "MediaPipelineId", "Status"}, keys(DefaultAttrs(ds, true)))
	assert.Equal(t, []string{"MediaPipelineArn", "MediaPipelineId", "Status", "Tags"}, keys(DefaultAttrs(ds, false)))
}

func TestGetColors(t *testing.T) {
	header, even, odd := getColors("colors")

	assert.NotEmpty(t, header)
	assert.NotEmpty(t, even)
	assert.NotEmpty(t, odd)
}

func BenchmarkSortDataset(b *testing.B) {
	testData := []map[string]interface{}{
		{"Name": "zebra", "Priority": 3.0},
		{"Name": "alpha", "Priority": 1.0},
		{"Name": "beta", "Priority": 2.0},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		data := make([]map[string]interface{}, len(testData))
		copy(data, testData)
		SortDataset(data, "Name")
	}
}

func TestSliceDiceSpit_Filter(t *testing.T) {
	var buf bytes.Buffer
	err := SliceDiceSpit(decode(t, pipelines), nil, Options{Output: "json", Filter: "Tags.Value=prod"}, &buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"MediaPipelineId":"p-1"`)
	assert.NotContains(t, buf.String(), "p-2")

	buf.Reset()
	err = SliceDiceSpit(decode(t, pipelines), nil, Options{Output: "json", Filter: "Status"}, &buf)
	require.ErrorIs(t, err, filters.ErrInvalidFilter)
	assert.Empty(t, buf.String())
}
