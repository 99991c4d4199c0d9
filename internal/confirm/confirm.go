// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package confirm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/apex/log"
)

// Impact is how much damage an operation can do.
type Impact int

const (
	None Impact = iota
	Low
	Medium
	High
)

var impactNames = []string{"none", "low", "medium", "high"}

func (i Impact) String() string {
	if int(i) >= 0 && int(i) < len(impactNames) {
		return impactNames[i]
	}
	return fmt.Sprintf("impact(%d)", int(i))
}

// ParseImpact parses none|low|medium|high, case-insensitively.
func ParseImpact(s string) (Impact, error) {
	for i, n := range impactNames {
		if strings.EqualFold(strings.TrimSpace(s), n) {
			return Impact(i), nil
		}
	}
	return None, fmt.Errorf("invalid impact %q: must be one of %v", s, impactNames)
}

// Table maps an API operation name to its impact. Operations missing from
// the table are treated as None.
type Table map[string]Impact

func (t Table) Of(operation string) Impact {
	return t[operation]
}

// Choice is an answer to a confirmation prompt.
type Choice int

const (
	No Choice = iota
	Yes
	YesToAll
	NoToAll
)

// Prompter asks the user whether to perform action on target.
type Prompter interface {
	Confirm(ctx context.Context, action, target string, impact Impact) (Choice, error)
}

var (
	ErrDeclined           = errors.New("declined")
	ErrConfirmationNeeded = errors.New("confirmation required but no terminal is available; rerun with --force")
)

// Gate decides, once per invocation, whether a mutating call may proceed.
// A Gate is reused across the records of a batch so yes-to-all and
// no-to-all answers stick.
type Gate struct {
	// Threshold is the lowest impact that prompts.
	Threshold Impact
	Force     bool
	Prompter  Prompter
	// Interactive reports whether a prompt can be shown.
	Interactive bool

	yesAll bool
	noAll  bool
}

// ShouldProcess returns nil when the call may proceed, ErrDeclined when the
// user said no, or ErrConfirmationNeeded when a prompt was required but
// could not be shown.
func (g *Gate) ShouldProcess(ctx context.Context, impact Impact, action, target string) error {
	if impact == None || g.Force {
		return nil
	}
	if impact < g.Threshold {
		log.Debugf("confirm: %s impact %s below threshold %s", action, impact, g.Threshold)
		return nil
	}
	if g.yesAll {
		return nil
	}
	if g.noAll {
		return ErrDeclined
	}
	if !g.Interactive || g.Prompter == nil {
		return ErrConfirmationNeeded
	}

	choice, err := g.Prompter.Confirm(ctx, action, target, impact)
	if err != nil {
		return err
	}

	switch choice {
	case Yes:
		return nil
	case YesToAll:
		g.yesAll = true
		return nil
	case NoToAll:
		g.noAll = true
		return ErrDeclined
	default:
		return ErrDeclined
	}
}
