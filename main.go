// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/apex/log"

	"github.com/staranto/opctl/internal/command"
	"github.com/staranto/opctl/internal/config"
	mylog "github.com/staranto/opctl/internal/log"
	"github.com/staranto/opctl/internal/version"
)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	mylog.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	args := os.Args

	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "No command specified.")
		args = append(args, "--help")
	} else {
		if !strings.HasPrefix(args[1], "-") {
			config.SetNamespace(args[1])
		}
		args = mangleArguments(args)
	}

	// Short-circuit --version/-v.
	for _, a := range args {
		if a == "--version" || a == "-v" {
			fmt.Println(version.Version)
			return 0
		}
	}

	app, err := command.InitApp(ctx, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	return 0
}

// mangleArguments splices argument presets from the config file into args.
// Every @name is replaced by the words of sets.<name>. Without any @name, the
// sets.defaults preset is inserted after the command, if there is one.
func mangleArguments(args []string) []string {
	// Leave help requests alone.
	if slices.Contains(args, "--help") || slices.Contains(args, "-h") {
		return args
	}

	out := make([]string, 0, len(args))
	found := false
	for _, a := range args {
		if len(a) > 1 && strings.HasPrefix(a, "@") {
			found = true
			out = append(out, preset(a[1:])...)
			continue
		}
		out = append(out, a)
	}

	if !found && len(out) > 2 && out[1] != "completion" &&
		!strings.HasPrefix(out[1], "-") && !strings.HasPrefix(out[2], "-") {
		defaults := preset("defaults")
		out = append(out[:3], append(defaults, out[3:]...)...)
	}

	log.Debugf("args=%v", out)
	return out
}

func preset(name string) []string {
	setArgs, err := config.GetStringSlice("sets." + name)
	if err != nil {
		if name != "defaults" {
			log.Warnf("argument preset @%s not found", name)
		}
		return nil
	}

	var parts []string
	for _, arg := range setArgs {
		parts = append(parts, strings.Fields(arg)...)
	}
	return parts
}
