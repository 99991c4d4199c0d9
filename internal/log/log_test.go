// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package log

import (
	"bytes"
	"testing"

	"github.com/apex/log"
	"github.com/stretchr/testify/assert"
)

func TestCustomHandler(t *testing.T) {
	var buf bytes.Buffer
	h := &CustomHandler{Writer: &buf}

	err := h.HandleLog(&log.Entry{Level: log.WarnLevel, Message: "same token twice"})
	assert.NoError(t, err)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} W same token twice\n$`, buf.String())
}

func TestInitLogger(t *testing.T) {
	t.Setenv(EnvLevel, "debug")
	InitLogger()
	assert.Equal(t, log.DebugLevel, log.Log.(*log.Logger).Level)

	t.Setenv(EnvLevel, "")
	InitLogger()
	assert.Equal(t, log.WarnLevel, log.Log.(*log.Logger).Level)

	SetVerbose()
	assert.Equal(t, log.InfoLevel, log.Log.(*log.Logger).Level)

	t.Setenv(EnvLevel, "debug")
	InitLogger()
	SetVerbose()
	assert.Equal(t, log.DebugLevel, log.Log.(*log.Logger).Level, "verbose never lowers")
}

func TestLevel(t *testing.T) {
	tests := []struct {
		in   string
		want log.Level
	}{
		{"", log.WarnLevel},
		{"  ", log.WarnLevel},
		{"bogus", log.WarnLevel},
		{"ERROR", log.ErrorLevel},
		{"info", log.InfoLevel},
		{"debug", log.DebugLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Level(tt.in), tt.in)
	}
}

func TestInit_DefaultShowsWarnings(t *testing.T) {
	t.Setenv(EnvLevel, "")
	var buf bytes.Buffer
	Init(&buf)
	t.Cleanup(InitLogger)

	log.Info("hidden")
	log.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), " W shown\n")
}
