// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package aws

import (
	"context"
	"path/filepath"
	"testing"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct{}

func (fakeS3) GetObject(context.Context, *s3v2.GetObjectInput, ...func(*s3v2.Options)) (*s3v2.GetObjectOutput, error) {
	return &s3v2.GetObjectOutput{}, nil
}

func TestSession_ClientIsCached(t *testing.T) {
	s := &Session{Config: awsv2.Config{Region: "us-east-1"}}

	builds := 0
	build := func(*Session) any {
		builds++
		return &builds
	}

	first := s.Client("svc", build)
	second := s.Client("svc", build)
	assert.Same(t, first, second)
	assert.Equal(t, 1, builds)
	assert.Equal(t, "us-east-1", s.Region())
}

func TestSession_Register(t *testing.T) {
	s := &Session{}
	s.Register(S3ClientName, fakeS3{})

	assert.IsType(t, fakeS3{}, s.S3())
}

func TestSession_S3Endpoint(t *testing.T) {
	s := &Session{Config: awsv2.Config{Region: "us-east-1"}, Endpoint: "http://localhost:4566"}

	client, ok := s.S3().(*s3v2.Client)
	require.True(t, ok)
	assert.Equal(t, "http://localhost:4566", awsv2.ToString(client.Options().BaseEndpoint))
	assert.True(t, client.Options().UsePathStyle)
}

func TestSession_NilRegion(t *testing.T) {
	var s *Session
	assert.Equal(t, "", s.Region())
}

func TestMaxAttempts(t *testing.T) {
	r := MaxAttempts(5)()
	assert.Equal(t, 5, r.MaxAttempts())
}

func TestNewSession_Options(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))
	t.Setenv("AWS_PROFILE", "")
	t.Setenv("AWS_REGION", "")

	s, err := NewSession(context.Background(),
		WithRegion("eu-central-1"),
		WithEndpointURL("http://localhost:4566"),
		WithRetryer(MaxAttempts(2)),
	)
	require.NoError(t, err)
	assert.Equal(t, "eu-central-1", s.Region())
	assert.Equal(t, "http://localhost:4566", s.Endpoint)
	require.NotNil(t, s.Config.Retryer)
	assert.Equal(t, 2, s.Config.Retryer().MaxAttempts())

	_, err = NewSession(context.Background(), WithProfile("no-such-profile"))
	assert.ErrorContains(t, err, "failed to load AWS config")
}
