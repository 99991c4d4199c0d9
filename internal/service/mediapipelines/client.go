// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package mediapipelines

import (
	"context"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	mp "github.com/aws/aws-sdk-go-v2/service/chimesdkmediapipelines"

	awsx "github.com/staranto/opctl/internal/aws"
	"github.com/staranto/opctl/internal/dispatch"
	"github.com/staranto/opctl/internal/schema"
	"github.com/staranto/opctl/internal/service"
)

// ClientName keys the media pipelines client in a session.
const ClientName = "chimesdkmediapipelines"

// API is the subset of the Chime SDK Media Pipelines client the commands use.
type API interface {
	CreateMediaCapturePipeline(context.Context, *mp.CreateMediaCapturePipelineInput, ...func(*mp.Options)) (*mp.CreateMediaCapturePipelineOutput, error)
	GetMediaCapturePipeline(context.Context, *mp.GetMediaCapturePipelineInput, ...func(*mp.Options)) (*mp.GetMediaCapturePipelineOutput, error)
	DeleteMediaCapturePipeline(context.Context, *mp.DeleteMediaCapturePipelineInput, ...func(*mp.Options)) (*mp.DeleteMediaCapturePipelineOutput, error)
	ListMediaCapturePipelines(context.Context, *mp.ListMediaCapturePipelinesInput, ...func(*mp.Options)) (*mp.ListMediaCapturePipelinesOutput, error)
	CreateMediaConcatenationPipeline(context.Context, *mp.CreateMediaConcatenationPipelineInput, ...func(*mp.Options)) (*mp.CreateMediaConcatenationPipelineOutput, error)
	GetMediaPipeline(context.Context, *mp.GetMediaPipelineInput, ...func(*mp.Options)) (*mp.GetMediaPipelineOutput, error)
	DeleteMediaPipeline(context.Context, *mp.DeleteMediaPipelineInput, ...func(*mp.Options)) (*mp.DeleteMediaPipelineOutput, error)
	ListMediaPipelines(context.Context, *mp.ListMediaPipelinesInput, ...func(*mp.Options)) (*mp.ListMediaPipelinesOutput, error)
	UpdateMediaInsightsPipelineStatus(context.Context, *mp.UpdateMediaInsightsPipelineStatusInput, ...func(*mp.Options)) (*mp.UpdateMediaInsightsPipelineStatusOutput, error)
	TagResource(context.Context, *mp.TagResourceInput, ...func(*mp.Options)) (*mp.TagResourceOutput, error)
	UntagResource(context.Context, *mp.UntagResourceInput, ...func(*mp.Options)) (*mp.UntagResourceOutput, error)
	ListTagsForResource(context.Context, *mp.ListTagsForResourceInput, ...func(*mp.Options)) (*mp.ListTagsForResourceOutput, error)
}

var _ API = (*mp.Client)(nil)

// Client returns the session's media pipelines client.
func Client(s *awsx.Session) API {
	return s.Client(ClientName, func(s *awsx.Session) any {
		return mp.NewFromConfig(s.Config, func(o *mp.Options) {
			if s.Endpoint != "" {
				o.BaseEndpoint = awsv2.String(s.Endpoint)
			}
		})
	}).(API)
}

func bind[I, O any](m func(API, context.Context, *I, ...func(*mp.Options)) (*O, error)) func(schema.Operation) service.Entry {
	b := dispatch.Method(m)
	return func(op schema.Operation) service.Entry {
		return service.Bind(op, Impacts, Client, b)
	}
}
