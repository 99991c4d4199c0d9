// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package paramfile

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/opctl/internal/builder"
	"github.com/staranto/opctl/internal/cache"
	"github.com/staranto/opctl/internal/schema"
)

type notModified struct{}

func (notModified) Error() string       { return "304 Not Modified" }
func (notModified) HTTPStatusCode() int { return 304 }

type fakeS3 struct {
	body  string
	etag  string
	calls []*s3.GetObjectInput
	err   error
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.calls = append(f.calls, in)
	if f.err != nil {
		return nil, f.err
	}
	if in.IfNoneMatch != nil && awsv2.ToString(in.IfNoneMatch) == f.etag {
		return nil, notModified{}
	}
	return &s3.GetObjectOutput{
		Body: io.NopCloser(strings.NewReader(f.body)),
		ETag: awsv2.String(f.etag),
	}, nil
}

func TestDetect(t *testing.T) {
	assert.Equal(t, JSON, Detect("x.json", nil))
	assert.Equal(t, YAML, Detect("x.YML", nil))
	assert.Equal(t, HCL, Detect("x.hcl", nil))
	assert.Equal(t, JSON, Detect("-", []byte("  [{}]")))
	assert.Equal(t, YAML, Detect("-", []byte("a: 1")))
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		data    string
		want    []builder.Values
		wantErr bool
	}{
		{
			name: "json object",
			file: "p.json",
			data: `{"media-pipeline-id": "p1"}`,
			want: []builder.Values{{"media-pipeline-id": "p1"}},
		},
		{
			name: "json list",
			file: "p.json",
			data: `[{"media-pipeline-id": "p1"}, {"media-pipeline-id": "p2", "max-results": 5}]`,
			want: []builder.Values{{"media-pipeline-id": "p1"}, {"media-pipeline-id": "p2", "max-results": float64(5)}},
		},
		{
			name: "yaml list",
			file: "p.yaml",
			data: "- resource-arn: arn:1\n  tags: [a=b]\n- resource-arn: arn:2\n",
			want: []builder.Values{{"resource-arn": "arn:1", "tags": []any{"a=b"}}, {"resource-arn": "arn:2"}},
		},
		{
			name: "hcl attributes and blocks",
			file: "p.hcl",
			data: "rule-arn = \"arn:0\"\n\ninvocation {\n  rule-arn = \"arn:1\"\n  priority = 2\n}\n",
			want: []builder.Values{{"rule-arn": "arn:0"}, {"rule-arn": "arn:1", "priority": float64(2)}},
		},
		{
			name:    "hcl foreign block",
			file:    "p.hcl",
			data:    "resource \"x\" {}\n",
			wantErr: true,
		},
		{
			name:    "hcl syntax",
			file:    "p.hcl",
			data:    "a = = 1\n",
			wantErr: true,
		},
		{
			name:    "empty",
			file:    "p.yaml",
			data:    "",
			wantErr: true,
		},
		{
			name:    "list of scalars",
			file:    "p.json",
			data:    `["a"]`,
			wantErr: true,
		},
		{
			name:    "bad json",
			file:    "p.json",
			data:    `{`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.file, []byte(tt.data))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Parse("p.yaml", []byte("# nothing\n"))
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestSource_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("stdin", func(t *testing.T) {
		src := Source{Stdin: strings.NewReader(`{"id": "p1"}`)}
		got, err := src.Load(ctx, "-")
		require.NoError(t, err)
		assert.Equal(t, []builder.Values{{"id": "p1"}}, got)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "records.yaml")
		require.NoError(t, os.WriteFile(path, []byte("- id: a\n- id: b\n"), 0o600))

		got, err := Source{}.Load(ctx, path)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Source{}.Load(ctx, filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})

	t.Run("bad s3 location", func(t *testing.T) {
		src := Source{S3: func() Getter { return &fakeS3{} }}
		_, err := src.Load(ctx, "s3://bucket-only")
		assert.ErrorContains(t, err, "expected s3://bucket/key")
	})

	t.Run("s3 without client", func(t *testing.T) {
		_, err := Source{}.Load(ctx, "s3://bucket/key.json")
		assert.ErrorContains(t, err, "no S3 client")
	})

	t.Run("s3 error", func(t *testing.T) {
		t.Setenv(cache.EnvEnabled, "0")
		boom := errors.New("access denied")
		src := Source{S3: func() Getter { return &fakeS3{err: boom} }}
		_, err := src.Load(ctx, "s3://bucket/key.json")
		assert.ErrorIs(t, err, boom)
	})
}

func TestSource_LoadS3Cached(t *testing.T) {
	t.Setenv(cache.EnvDir, t.TempDir())
	t.Setenv(cache.EnvEnabled, "")

	ctx := context.Background()
	fake := &fakeS3{body: `[{"id": "a"}, {"id": "b"}]`, etag: `"abc"`}
	src := Source{S3: func() Getter { return fake }}

	first, err := src.Load(ctx, "s3://bucket/dir/records.json")
	require.NoError(t, err)
	assert.Len(t, first, 2)
	require.Len(t, fake.calls, 1)
	assert.Equal(t, "bucket", awsv2.ToString(fake.calls[0].Bucket))
	assert.Equal(t, "dir/records.json", awsv2.ToString(fake.calls[0].Key))
	assert.Nil(t, fake.calls[0].IfNoneMatch)

	second, err := src.Load(ctx, "s3://bucket/dir/records.json")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	require.Len(t, fake.calls, 2)
	assert.Equal(t, `"abc"`, awsv2.ToString(fake.calls[1].IfNoneMatch))

	fake.etag = `"def"`
	fake.body = `{"id": "c"}`
	third, err := src.Load(ctx, "s3://bucket/dir/records.json")
	require.NoError(t, err)
	assert.Equal(t, []builder.Values{{"id": "c"}}, third)
}

func TestCanonical(t *testing.T) {
	op := schema.Operation{
		Name: "CreateMediaCapturePipeline",
		Fields: []schema.Field{
			{Name: "audio-mux-type", Path: "Chime.Artifacts.Audio.MuxType"},
			{Name: "sink-arn", Path: "SinkArn"},
		},
	}

	got, err := Canonical(op, builder.Values{"Audio_MuxType": "AudioOnly", "sink-arn": "arn"})
	require.NoError(t, err)
	assert.Equal(t, builder.Values{"audio-mux-type": "AudioOnly", "sink-arn": "arn"}, got)

	_, err = Canonical(op, builder.Values{"bogus": 1})
	assert.ErrorIs(t, err, ErrUnknownParam)
}
