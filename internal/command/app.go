// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/opctl/internal/config"
	"github.com/staranto/opctl/internal/meta"
	"github.com/staranto/opctl/internal/service"
	"github.com/staranto/opctl/internal/service/automation"
	"github.com/staranto/opctl/internal/service/mediapipelines"
)

// Groups returns every service group opctl knows.
func Groups() []service.Group {
	return []service.Group{
		mediapipelines.Service(),
		automation.Service(),
	}
}

func InitApp(ctx context.Context, args []string) (*cli.Command, error) {
	// The arg[1] immediately following the binary (arg[0]) is the command group
	// and also represents the namespace key to be used when retrieving config
	// values. arg[1] could be -h/--help, so ignore it if it appears to be a
	// flag.
	var ns string
	if len(args) > 1 && !strings.HasPrefix(args[1], "-") {
		ns = args[1]
	}
	config.SetNamespace(ns)

	cfg, _ := config.Load()
	m := meta.Meta{
		Args:    args,
		Config:  cfg,
		Context: ctx,
	}

	return NewApp(m, Groups())
}

// NewApp builds the command tree for groups.
func NewApp(m meta.Meta, groups []service.Group) (*cli.Command, error) {
	app := &cli.Command{
		Name:  "opctl",
		Usage: "AWS operations control",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "version",
				Aliases:     []string{"v"},
				Usage:       "opctl version info",
				HideDefault: true,
			},
		},
	}

	for _, g := range groups {
		if err := g.Validate(); err != nil {
			return nil, fmt.Errorf("invalid operation registry: %w", err)
		}
		app.Commands = append(app.Commands, GroupCommandBuilder(g, m))
	}

	app.Commands = append(app.Commands, CompletionCommandBuilder(app, m))

	// Make sure flags are sorted for the --help text.
	for _, group := range app.Commands {
		for _, cmd := range group.Commands {
			sort.Slice(cmd.Flags, func(i, j int) bool {
				return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
			})
		}
	}

	return app, nil
}

// GroupCommandBuilder returns the command holding one service's operations.
func GroupCommandBuilder(g service.Group, m meta.Meta) *cli.Command {
	group := &cli.Command{
		Name:  g.Name,
		Usage: g.Usage,
		Metadata: map[string]any{
			"meta": m,
		},
	}

	for _, e := range g.Entries {
		b := OperationCommandBuilder{Group: g, Entry: e, Meta: m}
		group.Commands = append(group.Commands, b.Build())
	}

	sort.Slice(group.Commands, func(i, j int) bool {
		return group.Commands[i].Name < group.Commands[j].Name
	})

	return group
}
