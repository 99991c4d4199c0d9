// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package mediapipelines

import (
	"github.com/staranto/opctl/internal/confirm"
	"github.com/staranto/opctl/internal/schema"
	"github.com/staranto/opctl/internal/service"
)

// Group is the command group name.
const Group = "mp"

var (
	sinkTypes   = []string{"S3Bucket"}
	sourceTypes = []string{"ChimeSdkMeeting"}
	states      = []string{"Enabled", "Disabled"}
	colors      = []string{"Black", "Blue", "Red", "Green", "White", "Yellow"}
	corners     = []string{"TopLeft", "TopRight", "BottomLeft", "BottomRight"}
	tileOrders  = []string{"JoinSequence", "SpeakerSequence"}
)

// Impacts maps each operation to its confirmation impact.
var Impacts = confirm.Table{
	"CreateMediaCapturePipeline":        confirm.Medium,
	"DeleteMediaCapturePipeline":        confirm.High,
	"CreateMediaConcatenationPipeline":  confirm.Medium,
	"DeleteMediaPipeline":               confirm.High,
	"UpdateMediaInsightsPipelineStatus": confirm.Medium,
	"TagResource":                       confirm.Medium,
	"UntagResource":                     confirm.High,
}

const (
	artifacts = "ChimeSdkMeetingConfiguration.ArtifactsConfiguration."
	composite = artifacts + "CompositedVideo."
	gridView  = composite + "GridViewConfiguration."
	streams   = "ChimeSdkMeetingConfiguration.SourceConfiguration.SelectedVideoStreams."
)

func pipelineID(usage string) schema.Field {
	return schema.Field{
		Name:     "media-pipeline-id",
		Path:     "MediaPipelineId",
		Kind:     schema.KindString,
		Aliases:  []string{"id"},
		Usage:    usage,
		Required: true,
	}
}

func resourceARN() schema.Field {
	return schema.Field{
		Name:     "resource-arn",
		Path:     "ResourceARN",
		Kind:     schema.KindString,
		Usage:    "ARN of the media pipeline resource",
		Required: true,
	}
}

func tags() schema.Field {
	return schema.Field{
		Name:  "tags",
		Path:  "Tags",
		Kind:  schema.KindTags,
		Usage: "Tags as key=value, comma separated or repeated",
	}
}

func requestToken() schema.Field {
	return schema.Field{
		Name:  "client-request-token",
		Path:  "ClientRequestToken",
		Kind:  schema.KindToken,
		Usage: "Idempotency token; generated when omitted",
	}
}

func layout(prefix, name string) []schema.Field {
	path := gridView + prefix + "LayoutConfiguration."
	return []schema.Field{
		{Name: name + "-tile-aspect-ratio", Path: path + "TileAspectRatio", Kind: schema.KindString,
			Usage: "Aspect ratio of the tiles, e.g. 16/9"},
		{Name: name + "-tile-count", Path: path + "TileCount", Kind: schema.KindInt,
			Usage: "Maximum number of video tiles"},
		{Name: name + "-tile-order", Path: path + "TileOrder", Kind: schema.KindEnum, Enum: tileOrders,
			Usage: "Order of the video tiles"},
	}
}

func captureFields() []schema.Field {
	fields := []schema.Field{
		{Name: "sink-arn", Path: "SinkArn", Kind: schema.KindString, Required: true,
			Usage: "ARN of the sink, e.g. an S3 bucket"},
		{Name: "sink-type", Path: "SinkType", Kind: schema.KindEnum, Enum: sinkTypes, Required: true,
			Usage: "Destination type of the captured media"},
		{Name: "source-arn", Path: "SourceArn", Kind: schema.KindString, Required: true,
			Usage: "ARN of the source, e.g. a Chime SDK meeting"},
		{Name: "source-type", Path: "SourceType", Kind: schema.KindEnum, Enum: sourceTypes, Required: true,
			Usage: "Source type of the captured media"},
		{Name: "sink-iam-role-arn", Path: "SinkIamRoleArn", Kind: schema.KindString,
			Usage: "Role assumed to write to the sink"},
		{Name: "kms-key-id", Path: "SseAwsKeyManagementParams.AwsKmsKeyId", Kind: schema.KindString,
			Usage: "KMS key used to encrypt captured media"},
		{Name: "kms-encryption-context", Path: "SseAwsKeyManagementParams.AwsKmsEncryptionContext", Kind: schema.KindString,
			Usage: "Base64 encoded KMS encryption context"},

		{Name: "audio-mux-type", Path: artifacts + "Audio.MuxType", Kind: schema.KindEnum,
			Enum:  []string{"AudioOnly", "AudioWithActiveSpeakerVideo", "AudioWithCompositedVideo"},
			Usage: "Audio mux type"},
		{Name: "video-mux-type", Path: artifacts + "Video.MuxType", Kind: schema.KindEnum,
			Enum: []string{"VideoOnly"}, Usage: "Video mux type"},
		{Name: "video-state", Path: artifacts + "Video.State", Kind: schema.KindEnum,
			Enum: states, Usage: "Whether video artifacts are captured"},
		{Name: "content-mux-type", Path: artifacts + "Content.MuxType", Kind: schema.KindEnum,
			Enum: []string{"ContentOnly"}, Usage: "Content share mux type"},
		{Name: "content-state", Path: artifacts + "Content.State", Kind: schema.KindEnum,
			Enum: states, Usage: "Whether content share artifacts are captured"},

		{Name: "composited-layout", Path: composite + "Layout", Kind: schema.KindEnum,
			Enum: []string{"GridView"}, Usage: "Layout of the composited video"},
		{Name: "composited-resolution", Path: composite + "Resolution", Kind: schema.KindEnum,
			Enum: []string{"HD", "FHD"}, Usage: "Resolution of the composited video"},
		{Name: "content-share-layout", Path: gridView + "ContentShareLayout", Kind: schema.KindEnum,
			Enum:  []string{"PresenterOnly", "Horizontal", "Vertical", "ActiveSpeakerOnly"},
			Usage: "Layout used while content is shared"},
		{Name: "canvas-orientation", Path: gridView + "CanvasOrientation", Kind: schema.KindEnum,
			Enum: []string{"Landscape", "Portrait"}, Usage: "Orientation of the canvas"},
		{Name: "active-speaker-position", Path: gridView + "ActiveSpeakerOnlyConfiguration.ActiveSpeakerPosition",
			Kind: schema.KindEnum, Enum: corners, Usage: "Position of the active speaker tile"},
		{Name: "presenter-position", Path: gridView + "PresenterOnlyConfiguration.PresenterPosition",
			Kind: schema.KindEnum, Enum: corners, Usage: "Position of the presenter tile"},
	}

	fields = append(fields, layout("Horizontal", "horizontal")...)
	fields = append(fields, schema.Field{
		Name: "horizontal-tile-position", Path: gridView + "HorizontalLayoutConfiguration.TilePosition",
		Kind: schema.KindEnum, Enum: []string{"Top", "Bottom"}, Usage: "Position of the horizontal tile strip",
	})
	fields = append(fields, layout("Vertical", "vertical")...)
	fields = append(fields, schema.Field{
		Name: "vertical-tile-position", Path: gridView + "VerticalLayoutConfiguration.TilePosition",
		Kind: schema.KindEnum, Enum: []string{"Left", "Right"}, Usage: "Position of the vertical tile strip",
	})

	fields = append(fields,
		schema.Field{Name: "border-color", Path: gridView + "VideoAttribute.BorderColor", Kind: schema.KindEnum,
			Enum: colors, Usage: "Border color of the video tiles"},
		schema.Field{Name: "border-thickness", Path: gridView + "VideoAttribute.BorderThickness", Kind: schema.KindInt,
			Usage: "Border thickness of the video tiles, in pixels"},
		schema.Field{Name: "corner-radius", Path: gridView + "VideoAttribute.CornerRadius", Kind: schema.KindInt,
			Usage: "Corner radius of the video tiles, in pixels"},
		schema.Field{Name: "highlight-color", Path: gridView + "VideoAttribute.HighlightColor", Kind: schema.KindEnum,
			Enum: colors, Usage: "Color of the active speaker highlight"},

		schema.Field{Name: "attendee-ids", Path: streams + "AttendeeIds", Kind: schema.KindStringList,
			Usage: "Attendee IDs whose video streams are captured"},
		schema.Field{Name: "external-user-ids", Path: streams + "ExternalUserIds", Kind: schema.KindStringList,
			Usage: "External user IDs whose video streams are captured"},

		tags(),
		requestToken(),
	)
	return fields
}

// Operations returns the schemas of every media pipelines command.
func Operations() []schema.Operation {
	return []schema.Operation{
		{
			Service:  Group,
			Name:     "CreateMediaCapturePipeline",
			Usage:    "Create a media capture pipeline for a Chime SDK meeting",
			Fields:   captureFields(),
			Primary:  "MediaCapturePipeline",
			PassThru: "source-arn",
			Target:   "source-arn",
		},
		{
			Service: Group,
			Name:    "GetMediaCapturePipeline",
			Usage:   "Get a media capture pipeline",
			Fields:  []schema.Field{pipelineID("ID of the media capture pipeline")},
			Primary: "MediaCapturePipeline",
		},
		{
			Service:  Group,
			Name:     "DeleteMediaCapturePipeline",
			Usage:    "Delete a media capture pipeline",
			Fields:   []schema.Field{pipelineID("ID of the media capture pipeline")},
			PassThru: "media-pipeline-id",
		},
		service.Paged(schema.Operation{
			Service: Group,
			Name:    "ListMediaCapturePipelines",
			Usage:   "List media capture pipelines",
			Primary: "MediaCapturePipelines",
		}),
		{
			Service: Group,
			Name:    "CreateMediaConcatenationPipeline",
			Usage:   "Create a pipeline that concatenates capture artifacts",
			Fields: []schema.Field{
				{Name: "sources", Path: "Sources", Kind: schema.KindJSON, Required: true,
					Usage: "Concatenation sources as JSON"},
				{Name: "sinks", Path: "Sinks", Kind: schema.KindJSON, Required: true,
					Usage: "Concatenation sinks as JSON"},
				tags(),
				requestToken(),
			},
			Primary: "MediaConcatenationPipeline",
		},
		{
			Service: Group,
			Name:    "GetMediaPipeline",
			Usage:   "Get a media pipeline of any kind",
			Fields:  []schema.Field{pipelineID("ID of the media pipeline")},
			Primary: "MediaPipeline",
		},
		{
			Service:  Group,
			Name:     "DeleteMediaPipeline",
			Usage:    "Delete a media pipeline of any kind",
			Fields:   []schema.Field{pipelineID("ID of the media pipeline")},
			PassThru: "media-pipeline-id",
		},
		service.Paged(schema.Operation{
			Service: Group,
			Name:    "ListMediaPipelines",
			Usage:   "List media pipelines",
			Primary: "MediaPipelines",
		}),
		{
			Service: Group,
			Name:    "UpdateMediaInsightsPipelineStatus",
			Usage:   "Pause or resume a media insights pipeline",
			Fields: []schema.Field{
				{Name: "identifier", Path: "Identifier", Kind: schema.KindString, Required: true,
					Usage: "ID or ARN of the media insights pipeline"},
				{Name: "update-status", Path: "UpdateStatus", Kind: schema.KindEnum, Required: true,
					Enum: []string{"Pause", "Resume"}, Usage: "New status"},
			},
			PassThru: "identifier",
		},
		{
			Service:  Group,
			Name:     "TagResource",
			Usage:    "Add tags to a media pipeline resource",
			Fields:   []schema.Field{resourceARN(), withRequired(tags())},
			PassThru: "resource-arn",
		},
		{
			Service: Group,
			Name:    "UntagResource",
			Usage:   "Remove tags from a media pipeline resource",
			Fields: []schema.Field{
				resourceARN(),
				{Name: "tag-keys", Path: "TagKeys", Kind: schema.KindStringList, Required: true,
					Usage: "Keys of the tags to remove"},
			},
			PassThru: "resource-arn",
		},
		{
			Service: Group,
			Name:    "ListTagsForResource",
			Usage:   "List the tags of a media pipeline resource",
			Fields:  []schema.Field{resourceARN()},
			Primary: "Tags",
		},
	}
}

func withRequired(f schema.Field) schema.Field {
	f.Required = true
	return f
}

// Entries binds every operation to its client method.
func Entries() []service.Entry {
	bindings := map[string]func(schema.Operation) service.Entry{
		"CreateMediaCapturePipeline":        bind(API.CreateMediaCapturePipeline),
		"GetMediaCapturePipeline":           bind(API.GetMediaCapturePipeline),
		"DeleteMediaCapturePipeline":        bind(API.DeleteMediaCapturePipeline),
		"ListMediaCapturePipelines":         bind(API.ListMediaCapturePipelines),
		"CreateMediaConcatenationPipeline":  bind(API.CreateMediaConcatenationPipeline),
		"GetMediaPipeline":                  bind(API.GetMediaPipeline),
		"DeleteMediaPipeline":               bind(API.DeleteMediaPipeline),
		"ListMediaPipelines":                bind(API.ListMediaPipelines),
		"UpdateMediaInsightsPipelineStatus": bind(API.UpdateMediaInsightsPipelineStatus),
		"TagResource":                       bind(API.TagResource),
		"UntagResource":                     bind(API.UntagResource),
		"ListTagsForResource":               bind(API.ListTagsForResource),
	}

	ops := Operations()
	out := make([]service.Entry, 0, len(ops))
	for _, op := range ops {
		if b, ok := bindings[op.Name]; ok {
			out = append(out, b(op))
		}
	}
	return out
}

// Service returns the mp command group.
func Service() service.Group {
	return service.Group{
		Name:    Group,
		Title:   "Amazon Chime SDK Media Pipelines",
		Usage:   "Manage Chime SDK media pipelines",
		Entries: Entries(),
	}
}
