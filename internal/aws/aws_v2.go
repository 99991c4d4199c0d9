// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package aws

import (
	"context"
	"fmt"
	"sync"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/config"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
)

// options holds optional overrides for AWS config loading.
type options struct {
	profile  string
	region   string
	endpoint string
	retryer  func() awsv2.Retryer
}

// Option customizes how AWS config is loaded.
// Default behavior (no options) inherits the shell environment and shared
// config chain (AWS_PROFILE, ~/.aws/config, ~/.aws/credentials, IMDS, etc.).
type Option func(*options)

// WithProfile sets the shared config profile. Defaults to AWS_PROFILE/env chain.
func WithProfile(profile string) Option {
	return func(o *options) { o.profile = profile }
}

// WithRegion sets the region override. Defaults to env/profile/metadata chain.
func WithRegion(region string) Option {
	return func(o *options) { o.region = region }
}

// WithEndpointURL points every service client at a custom endpoint, e.g. a
// local emulator.
func WithEndpointURL(url string) Option {
	return func(o *options) { o.endpoint = url }
}

// WithRetryer injects a custom retryer; if not set, SDK defaults are used.
func WithRetryer(newRetryer func() awsv2.Retryer) Option {
	return func(o *options) { o.retryer = newRetryer }
}

// MaxAttempts returns a standard retryer factory capped at n attempts per
// call, including the first.
func MaxAttempts(n int) func() awsv2.Retryer {
	return func() awsv2.Retryer {
		return retry.AddWithMaxAttempts(retry.NewStandard(), n)
	}
}

func loadAWSConfig(ctx context.Context, o options) (awsv2.Config, error) {
	var loadOpts []func(*config.LoadOptions) error
	if o.profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(o.profile))
	}
	if o.region != "" {
		loadOpts = append(loadOpts, config.WithRegion(o.region))
	}
	if o.retryer != nil {
		loadOpts = append(loadOpts, config.WithRetryer(o.retryer))
	}

	return config.LoadDefaultConfig(ctx, loadOpts...)
}

// Session is the AWS configuration for one process run. It is built once by
// the command layer and passed explicitly to every operation; service
// clients are created on first use and then reused.
type Session struct {
	Config   awsv2.Config
	Endpoint string

	mu      sync.Mutex
	clients map[string]any
}

// NewSession loads the AWS config and wraps it in a Session. With no options
// it inherits the shell's AWS setup (AWS_PROFILE, shared config, env, IMDS).
func NewSession(ctx context.Context, opts ...Option) (*Session, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	cfg, err := loadAWSConfig(ctx, o)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Session{Config: cfg, Endpoint: o.endpoint}, nil
}

// Region returns the resolved region.
func (s *Session) Region() string {
	if s == nil {
		return ""
	}
	return s.Config.Region
}

// Register installs a prebuilt client under name. Later Client calls for the
// same name return it instead of building one.
func (s *Session) Register(name string, client any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clients == nil {
		s.clients = map[string]any{}
	}
	s.clients[name] = client
}

// Client returns the cached client for name, building it with build on first
// use.
func (s *Session) Client(name string, build func(*Session) any) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clients == nil {
		s.clients = map[string]any{}
	}
	if c, ok := s.clients[name]; ok {
		return c
	}
	c := build(s)
	s.clients[name] = c
	return c
}

// NewS3 constructs a v2 S3 client from the provided config. Additional service
// options can be supplied via optFns.
func NewS3(cfg awsv2.Config, optFns ...func(*s3v2.Options)) *s3v2.Client {
	return s3v2.NewFromConfig(cfg, optFns...)
}

// S3ClientName keys the S3 client in a session.
const S3ClientName = "s3"

// S3API is the part of the S3 client opctl uses.
type S3API interface {
	GetObject(context.Context, *s3v2.GetObjectInput, ...func(*s3v2.Options)) (*s3v2.GetObjectOutput, error)
}

var _ S3API = (*s3v2.Client)(nil)

// S3 returns the session's S3 client.
func (s *Session) S3() S3API {
	return s.Client(S3ClientName, func(s *Session) any {
		var optFns []func(*s3v2.Options)
		if s.Endpoint != "" {
			optFns = append(optFns, func(o *s3v2.Options) {
				o.BaseEndpoint = awsv2.String(s.Endpoint)
				o.UsePathStyle = true
			})
		}
		return NewS3(s.Config, optFns...)
	}).(S3API)
}
