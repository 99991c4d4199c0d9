// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
)

// EnvLevel names the environment variable holding the log level.
const EnvLevel = "OPCTL_LOG"

// DefaultLevel is used when OPCTL_LOG is unset or invalid. Warnings carry
// user-facing notices (empty required values, deprecated flags, the cursor
// to resume a partial listing) so they are shown unless silenced.
const DefaultLevel = log.WarnLevel

// InitLogger sets up Apex with a custom handler writing to stderr and a log
// level from the OPCTL_LOG env variable.
func InitLogger() {
	Init(os.Stderr)
}

// Init is InitLogger with the handler writing to w.
func Init(w io.Writer) {
	log.SetHandler(&CustomHandler{Writer: w})
	log.SetLevel(Level(os.Getenv(EnvLevel)))
}

// Level parses a level name, falling back to DefaultLevel.
func Level(name string) log.Level {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultLevel
	}
	lvl, err := log.ParseLevel(strings.ToLower(name))
	if err != nil {
		return DefaultLevel
	}
	return lvl
}

// SetVerbose raises the level to info unless something chattier is already
// set.
func SetVerbose() {
	if l, ok := log.Log.(*log.Logger); ok && l.Level > log.InfoLevel {
		l.Level = log.InfoLevel
	}
}

// CustomHandler formats log messages and writes them to Writer. Results go
// to stdout, so diagnostics must not.
type CustomHandler struct {
	Writer io.Writer
	mu     sync.Mutex
}

// HandleLog implements the log.Handler interface
func (h *CustomHandler) HandleLog(e *log.Entry) error {
	w := h.Writer
	if w == nil {
		w = os.Stderr
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	level := strings.ToUpper(e.Level.String())

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintf(w, "%s %.1s %s\n", timestamp, level, e.Message)
	return err
}
