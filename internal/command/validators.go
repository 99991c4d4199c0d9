// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/opctl/internal/attrs"
	"github.com/staranto/opctl/internal/confirm"
	"github.com/staranto/opctl/internal/filters"
	"github.com/staranto/opctl/internal/output"
)

// GlobalFlagsValidator checks flag values that need more than one flag, or
// more than a single value, to judge.
func GlobalFlagsValidator(ctx context.Context, c *cli.Command) error {
	var al attrs.AttrList
	if err := al.Set(c.String("attrs")); err != nil {
		return fmt.Errorf("--attrs: %w", err)
	}
	if c.Bool("what-if") && c.Bool("schema") {
		return errors.New("--schema cannot be combined with --what-if")
	}
	return nil
}

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

// JammedFlagValidator verifies that the arg following a flag does not begin
// with '--'.  urfave/cli allows this and I don't see how to turn it off.
func JammedFlagValidator(value any) error {
	if strings.HasPrefix(value.(string), "--") {
		return errors.New("must not begin with '--'")
	}
	return nil
}

func ImpactValidator(value any) error {
	_, err := confirm.ParseImpact(value.(string))
	return err
}

func OutputValidator(value any) error {
	if !slices.Contains(output.Formats, value.(string)) {
		return fmt.Errorf("must be one of %v", output.Formats)
	}
	return nil
}

func FilterValidator(value any) error {
	_, err := filters.Parse(value.(string))
	return err
}

func MaxAttemptsValidator(value any) error {
	if value.(int) < 0 {
		return errors.New("must not be negative")
	}
	return nil
}
