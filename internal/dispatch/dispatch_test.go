// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"reflect"
	"testing"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	mp "github.com/aws/aws-sdk-go-v2/service/chimesdkmediapipelines"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/staranto/opctl/internal/builder"
	"github.com/staranto/opctl/internal/schema"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type listPage struct {
	Items     []string
	NextToken *string
}

type getter interface {
	GetMediaPipeline(context.Context, *mp.GetMediaPipelineInput, ...func(*mp.Options)) (*mp.GetMediaPipelineOutput, error)
}

type fakeGetter struct {
	calls int
	got   *mp.GetMediaPipelineInput
	err   error
}

func (f *fakeGetter) GetMediaPipeline(_ context.Context, in *mp.GetMediaPipelineInput, _ ...func(*mp.Options)) (*mp.GetMediaPipelineOutput, error) {
	f.calls++
	f.got = in
	if f.err != nil {
		return nil, f.err
	}
	return &mp.GetMediaPipelineOutput{}, nil
}

func TestMethod(t *testing.T) {
	b := Method(getter.GetMediaPipeline)
	assert.Equal(t, reflect.TypeOf(mp.GetMediaPipelineOutput{}), b.Output)

	fake := &fakeGetter{}
	resp, err := b.Invoke(context.Background(), fake, builder.Tree{"MediaPipelineId": "abc"})
	require.NoError(t, err)
	assert.IsType(t, &mp.GetMediaPipelineOutput{}, resp)
	assert.Equal(t, 1, fake.calls)
	assert.Equal(t, "abc", awsv2.ToString(fake.got.MediaPipelineId))
}

func TestMethod_Error(t *testing.T) {
	fake := &fakeGetter{err: errors.New("boom")}
	_, err := Method(getter.GetMediaPipeline).Invoke(context.Background(), fake, builder.Tree{})
	require.EqualError(t, err, "boom")
	assert.Equal(t, 1, fake.calls, "no retries")
}

var pager = schema.Pager{InputToken: "NextToken", OutputToken: "NextToken"}

func pagesOf(tokens ...string) PageFunc {
	return func(_ context.Context, req builder.Tree) (any, error) {
		sent, _ := req.Get("NextToken")
		idx := 0
		if s, ok := sent.(string); ok {
			_, _ = fmt.Sscanf(s, "t%d", &idx)
		}
		p := &listPage{Items: []string{fmt.Sprintf("item%d", idx)}}
		if idx < len(tokens) && tokens[idx] != "" {
			p.NextToken = awsv2.String(tokens[idx])
		}
		return p, nil
	}
}

func collect(t *testing.T, auto bool, call PageFunc, req builder.Tree) ([]string, int, error) {
	t.Helper()
	var items []string
	pages := 0
	err := Paginate(context.Background(), req, pager, auto, call, func(page any) error {
		pages++
		items = append(items, page.(*listPage).Items...)
		return nil
	})
	return items, pages, err
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name      string
		tokens    []string
		auto      bool
		wantItems []string
	}{
		{"single page", nil, true, []string{"item0"}},
		{"three pages", []string{"t1", "t2", ""}, true, []string{"item0", "item1", "item2"}},
		{"no auto iteration", []string{"t1", "t2", ""}, false, []string{"item0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, pages, err := collect(t, tt.auto, pagesOf(tt.tokens...), builder.Tree{})
			require.NoError(t, err)
			assert.Equal(t, tt.wantItems, items)
			assert.Equal(t, len(tt.wantItems), pages)
		})
	}
}

func TestPaginate_RepeatedToken(t *testing.T) {
	calls := 0
	call := func(_ context.Context, _ builder.Tree) (any, error) {
		calls++
		return &listPage{Items: []string{"x"}, NextToken: awsv2.String("same")}, nil
	}

	items, _, err := collect(t, true, call, builder.Tree{})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []string{"x", "x"}, items)
}

func TestPaginate_DoesNotModifyRequest(t *testing.T) {
	req := builder.Tree{"MaxResults": int64(1)}
	_, _, err := collect(t, true, pagesOf("t1", ""), req)
	require.NoError(t, err)
	assert.Equal(t, builder.Tree{"MaxResults": int64(1)}, req)
}

func TestPaginate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	call := func(_ context.Context, _ builder.Tree) (any, error) {
		calls++
		cancel()
		return &listPage{NextToken: awsv2.String(fmt.Sprintf("t%d", calls))}, nil
	}

	err := Paginate(ctx, builder.Tree{}, pager, true, call, func(any) error { return nil })
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestPaginate_Errors(t *testing.T) {
	boom := errors.New("boom")

	err := Paginate(context.Background(), builder.Tree{}, pager, true,
		func(context.Context, builder.Tree) (any, error) { return nil, boom },
		func(any) error { return nil })
	assert.ErrorIs(t, err, boom)

	err = Paginate(context.Background(), builder.Tree{}, pager, true, pagesOf("t1", ""),
		func(any) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestToken(t *testing.T) {
	assert.Equal(t, "abc", Token(&listPage{NextToken: awsv2.String("abc")}, "NextToken"))
	assert.Equal(t, "", Token(&listPage{}, "NextToken"))
	assert.Equal(t, "", Token(&listPage{}, "Missing"))
	assert.Equal(t, "", Token((*listPage)(nil), "NextToken"))
	assert.Equal(t, "", Token("not a struct", "NextToken"))
	assert.Equal(t, "v", Token(struct{ Cursor string }{"v"}, "Cursor"))
}

func TestFriendly(t *testing.T) {
	ec := ErrorContext{Service: "Amazon Chime SDK Media Pipelines", Operation: "GetMediaPipeline", Region: "us-east-9"}

	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, Friendly(nil, ec))
	})

	t.Run("dns", func(t *testing.T) {
		dns := &net.DNSError{Err: "no such host", Name: "media-pipelines-chime.us-east-9.amazonaws.com", IsNotFound: true}
		err := Friendly(fmt.Errorf("send: %w", dns), ec)

		var nre *NameResolutionError
		require.ErrorAs(t, err, &nre)
		assert.Equal(t, dns.Name, nre.Host)
		assert.Contains(t, err.Error(), `is "us-east-9" a region`)
		assert.Contains(t, err.Error(), "check --region")
		assert.ErrorIs(t, err, dns)
	})

	t.Run("dns with endpoint", func(t *testing.T) {
		ec := ec
		ec.Endpoint = "http://localhost:4566"
		err := Friendly(&net.DNSError{Err: "no such host", Name: "localhost"}, ec)
		assert.Contains(t, err.Error(), `check --endpoint-url "http://localhost:4566"`)
	})

	t.Run("service fault", func(t *testing.T) {
		apiErr := &smithy.GenericAPIError{Code: "NotFoundException", Message: "pipeline not found", Fault: smithy.FaultClient}
		err := Friendly(apiErr, ec)

		var se *ServiceError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, "NotFoundException", se.Code)
		assert.Equal(t, "client", se.Fault)
		assert.Equal(t, "Amazon Chime SDK Media Pipelines GetMediaPipeline (us-east-9): NotFoundException: pipeline not found", err.Error())
	})

	t.Run("cancelled", func(t *testing.T) {
		err := Friendly(context.Canceled, ec)
		assert.Equal(t, context.Canceled, err)
	})

	t.Run("generic", func(t *testing.T) {
		boom := errors.New("boom")
		err := Friendly(boom, ec)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, "Amazon Chime SDK Media Pipelines GetMediaPipeline (us-east-9): boom", err.Error())
	})
}
