// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package paramfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/apex/log"
	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	ctyjson "github.com/zclconf/go-cty/cty/json"
	"gopkg.in/yaml.v3"

	"github.com/staranto/opctl/internal/builder"
	"github.com/staranto/opctl/internal/cache"
	"github.com/staranto/opctl/internal/schema"
)

// Format is a parameter file encoding.
type Format int

const (
	Auto Format = iota
	JSON
	YAML
	HCL
)

// InvocationBlock is the HCL block type holding one record.
const InvocationBlock = "invocation"

var (
	ErrEmpty        = errors.New("parameter file holds no records")
	ErrUnknownParam = errors.New("unknown parameter")
)

// Getter is the part of the S3 client used to fetch s3:// parameter files.
type Getter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Source resolves where parameter files come from.
type Source struct {
	// Stdin is read for the path "-".
	Stdin io.Reader
	// S3 returns the client for s3:// paths. It is only called when needed.
	S3 func() Getter
}

// Load reads and parses a parameter file. path is a local file, "-" for
// stdin, or s3://bucket/key.
func (s Source) Load(ctx context.Context, path string) ([]builder.Values, error) {
	data, err := s.read(ctx, path)
	if err != nil {
		return nil, err
	}
	return Parse(path, data)
}

func (s Source) read(ctx context.Context, path string) ([]byte, error) {
	switch {
	case path == "-":
		in := s.Stdin
		if in == nil {
			in = os.Stdin
		}
		data, err := io.ReadAll(in)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil

	case strings.HasPrefix(path, "s3://"):
		bucket, key, ok := strings.Cut(strings.TrimPrefix(path, "s3://"), "/")
		if !ok || bucket == "" || key == "" {
			return nil, fmt.Errorf("invalid S3 location %q: expected s3://bucket/key", path)
		}
		if s.S3 == nil {
			return nil, fmt.Errorf("no S3 client available for %s", path)
		}
		return s.fetchS3(ctx, path, bucket, key)

	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read parameter file: %w", err)
		}
		return data, nil
	}
}

// cacheDir holds cached S3 parameter files, with their ETags beside them.
var cacheDir = []string{"paramfile"}

// fetchS3 downloads an S3 parameter file. A cached copy is revalidated with
// its ETag so an unchanged object is not downloaded again.
func (s Source) fetchS3(ctx context.Context, path, bucket, key string) ([]byte, error) {
	in := &s3.GetObjectInput{
		Bucket: awsv2.String(bucket),
		Key:    awsv2.String(key),
	}

	cached, hit := cache.Read(cacheDir, path)
	etag, tagged := cache.Read(cacheDir, path+"#etag")
	if hit && tagged && len(etag.Data) > 0 {
		in.IfNoneMatch = awsv2.String(string(etag.Data))
	}

	log.Debugf("paramfile: fetching %s", path)
	out, err := s.S3().GetObject(ctx, in)
	if err != nil {
		var status interface{ HTTPStatusCode() int }
		if in.IfNoneMatch != nil && errors.As(err, &status) && status.HTTPStatusCode() == http.StatusNotModified {
			log.Debugf("paramfile: %s not modified, using cache", path)
			return cached.Data, nil
		}
		return nil, fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if tag := awsv2.ToString(out.ETag); tag != "" {
		if err := cache.Write(cacheDir, path, data); err != nil {
			log.WithError(err).Warn("paramfile: failed to cache S3 object")
		} else if err := cache.Write(cacheDir, path+"#etag", []byte(tag)); err != nil {
			log.WithError(err).Warn("paramfile: failed to cache S3 ETag")
		}
	}
	return data, nil
}

// Detect picks a format from the file name, falling back to sniffing the
// content.
func Detect(name string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return JSON
	case ".yaml", ".yml":
		return YAML
	case ".hcl":
		return HCL
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return JSON
	}
	return YAML
}

// Parse decodes data into records. A single object is one record; a list
// (or repeated invocation blocks in HCL) is one record per element.
func Parse(name string, data []byte) ([]builder.Values, error) {
	var (
		recs []builder.Values
		err  error
	)

	switch Detect(name, data) {
	case JSON:
		var doc any
		if err = json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse %s as JSON: %w", name, err)
		}
		recs, err = records(doc)
	case YAML:
		var doc any
		if err = yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse %s as YAML: %w", name, err)
		}
		recs, err = records(doc)
	case HCL:
		recs, err = parseHCL(name, data)
	}
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrEmpty)
	}

	log.Debugf("paramfile: %d record(s) from %s", len(recs), name)
	return recs, nil
}

func records(doc any) ([]builder.Values, error) {
	switch v := doc.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return []builder.Values{builder.Values(v)}, nil
	case []any:
		out := make([]builder.Values, 0, len(v))
		for i, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("record %d: expected a map, got %T", i, item)
			}
			out = append(out, builder.Values(m))
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected a map or a list of maps, got %T", doc)
}

func parseHCL(name string, data []byte) ([]builder.Values, error) {
	file, diags := hclsyntax.ParseConfig(data, name, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse %s as HCL: %s", name, diags.Error())
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("failed to parse %s as HCL: unexpected body %T", name, file.Body)
	}

	var out []builder.Values
	if len(body.Attributes) > 0 {
		rec, err := hclAttributes(body.Attributes)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}

	for _, block := range body.Blocks {
		if block.Type != InvocationBlock {
			return nil, fmt.Errorf("%s:%d: unexpected block %q, only %q blocks are allowed",
				name, block.TypeRange.Start.Line, block.Type, InvocationBlock)
		}
		rec, err := hclAttributes(block.Body.Attributes)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}

	return out, nil
}

func hclAttributes(attrs hclsyntax.Attributes) (builder.Values, error) {
	rec := builder.Values{}
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("attribute %s: %s", name, diags.Error())
		}
		if val.IsNull() {
			rec[name] = nil
			continue
		}

		raw, err := ctyjson.Marshal(val, val.Type())
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", name, err)
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("attribute %s: %w", name, err)
		}
		rec[name] = v
	}
	return rec, nil
}

// Canonical rewrites record keys (flag names or aliases) to the flag names of
// op. Unknown keys are an error.
func Canonical(op schema.Operation, rec builder.Values) (builder.Values, error) {
	out := builder.Values{}

	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		f, ok := op.Field(k)
		if !ok {
			return nil, fmt.Errorf("%s: %q: %w", op.Command(), k, ErrUnknownParam)
		}
		out[f.Name] = rec[k]
	}
	return out, nil
}
