// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"fmt"
	"strings"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/opctl/internal/schema"
)

// NewGlobalFlags returns the flags every operation command carries. ns is
// the command group, used to look up namespaced defaults such as mp.region
// in the config file at path.
func NewGlobalFlags(ns string, path string) (flags []cli.Flag) {
	src := altsrc.StringSourcer(path)

	flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "region",
			Usage:   "AWS region; defaults to the profile's region",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("OPCTL_REGION"),
				cli.EnvVar("AWS_REGION"),
				yaml.YAML(ns+"."+"region", src),
				yaml.YAML("region", src),
			),
		},
		&cli.StringFlag{
			Name:    "profile",
			Usage:   "shared config profile",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("OPCTL_PROFILE"),
				cli.EnvVar("AWS_PROFILE"),
				yaml.YAML(ns+"."+"profile", src),
				yaml.YAML("profile", src),
			),
		},
		&cli.StringFlag{
			Name:    "endpoint-url",
			Usage:   "send requests to this endpoint instead of the AWS one",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("OPCTL_ENDPOINT_URL"),
				yaml.YAML(ns+"."+"endpoint-url", src),
			),
		},
		&cli.IntFlag{
			Name:  "max-attempts",
			Usage: "attempts per AWS call, including retries; 0 keeps the SDK default",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("OPCTL_MAX_ATTEMPTS"),
				yaml.YAML(ns+"."+"max-attempts", src),
				yaml.YAML("max-attempts", src),
			),
			Validator: func(value int) error {
				return FlagValidators(value, MaxAttemptsValidator)
			},
		},
		&cli.StringFlag{
			Name:  "select",
			Usage: "response property to emit: '*' for everything, '^flag' to echo an input",
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator)
			},
		},
		&cli.BoolFlag{
			Name:        "pass-thru",
			Usage:       "deprecated: emit the resource identifier that was passed in",
			HideDefault: true,
		},
		&cli.BoolFlag{
			Name:        "force",
			Usage:       "do not ask for confirmation",
			HideDefault: true,
		},
		&cli.BoolFlag{
			Name:        "what-if",
			Usage:       "show the request that would be sent, and send nothing",
			HideDefault: true,
		},
		&cli.StringFlag{
			Name:  "confirm",
			Usage: "lowest impact that asks for confirmation (none|low|medium|high)",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"confirm", src),
				yaml.YAML("confirm", src),
			),
			Value: "high",
			Validator: func(value string) error {
				return FlagValidators(value, ImpactValidator)
			},
		},
		&cli.StringFlag{
			Name:  "input-file",
			Usage: "JSON, YAML or HCL parameter records: a path, '-' or s3://bucket/key",
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator)
			},
		},
		&cli.StringFlag{
			Name:    "attrs",
			Aliases: []string{"a"},
			Usage:   "comma-separated list of attributes to include in results",
		},
		&cli.BoolWithInverseFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"color", src),
				yaml.YAML("color", src),
			),
			Value: false,
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated filters on response paths, e.g. Status=Failed,Tags.Key=team",
			Validator: func(value string) error {
				return FlagValidators(value, FilterValidator)
			},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format (text|json|raw|yaml)",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"output", src),
				yaml.YAML("output", src),
			),
			Value: "text",
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "comma-separated list of attributes to sort the results by",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"sort", src),
			),
		},
		&cli.BoolWithInverseFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"titles", src),
				yaml.YAML("titles", src),
			),
			Value: false,
		},
		newSchemaFlag(),
		newVerboseFlag(),
	}

	return
}

// Flags keep parse state, so every command gets its own instances.

func newSchemaFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "schema",
		Usage:       "list the attribute paths of the response",
		HideDefault: true,
	}
}

func newVerboseFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "verbose",
		Usage:       "log progress to stderr",
		HideDefault: true,
	}
}

func newNoAutoIterationFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "no-auto-iteration",
		Usage:       "fetch one page only",
		HideDefault: true,
	}
}

// NewFieldFlags turns the fields of op into flags. Each flag also reads a
// default from the config file at path under <group>.<command>.<flag>.
func NewFieldFlags(op schema.Operation, path string) (flags []cli.Flag) {
	for _, f := range op.Fields {
		flags = append(flags, NewFieldFlag(op, f, path))
	}
	if op.Pager != nil {
		flags = append(flags, newNoAutoIterationFlag())
	}
	return
}

// NewFieldFlag builds the flag for one field, typed by its kind.
func NewFieldFlag(op schema.Operation, f schema.Field, path string) cli.Flag {
	src := altsrc.StringSourcer(path)
	sources := cli.NewValueSourceChain(
		yaml.YAML(op.Service+"."+op.Command()+"."+f.Name, src),
	)

	usage := fieldUsage(f)
	aliases := f.AllAliases()

	switch f.Kind {
	case schema.KindInt:
		return &cli.IntFlag{
			Name: f.Name, Aliases: aliases, Usage: usage, Sources: sources,
		}
	case schema.KindStringList, schema.KindTags:
		return &cli.StringSliceFlag{
			Name: f.Name, Aliases: aliases, Usage: usage, Sources: sources,
		}
	default:
		return &cli.StringFlag{
			Name: f.Name, Aliases: aliases, Usage: usage, Sources: sources,
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator)
			},
		}
	}
}

func fieldUsage(f schema.Field) string {
	var b strings.Builder
	b.WriteString(f.Usage)
	if b.Len() == 0 {
		b.WriteString(f.Path)
	}
	switch f.Kind {
	case schema.KindEnum:
		if len(f.Enum) > 0 {
			fmt.Fprintf(&b, " (%s)", strings.Join(f.Enum, "|"))
		}
	case schema.KindTags:
		b.WriteString(" (key=value)")
	case schema.KindJSON:
		b.WriteString(" (JSON)")
	case schema.KindDate:
		b.WriteString(" (YYYY-MM-DD or RFC3339)")
	}
	if f.Default != nil {
		fmt.Fprintf(&b, " (default %v)", f.Default)
	}
	if f.Required {
		b.WriteString(" [required]")
	}
	return b.String()
}
