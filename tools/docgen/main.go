// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	md2man "github.com/cpuguy83/go-md2man/v2/md2man"

	"github.com/staranto/opctl/internal/command"
	"github.com/staranto/opctl/internal/schema"
	"github.com/staranto/opctl/internal/service"
)

// Doc generator:
// - Renders docs/commands/opctl-<group>-<cmd>.md from the operation registry
// - Converts each page to docs/man/share/man1/opctl-<group>-<cmd>.1 via md2man

func main() {
	var (
		repoRoot           string
		writeOnlyIfChanged bool
	)

	flag.StringVar(&repoRoot, "root", ".", "repo root (default current dir)")
	flag.BoolVar(&writeOnlyIfChanged, "only-if-changed", true, "only write files if content changed")
	flag.Parse()

	commandsDir := filepath.Join(repoRoot, "docs", "commands")
	manOutDir := filepath.Join(repoRoot, "docs", "man", "share", "man1")

	for _, dir := range []string{commandsDir, manOutDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fatalf("creating output dir %s: %v", dir, err)
		}
	}

	var processed int
	for _, g := range command.Groups() {
		if err := g.Validate(); err != nil {
			fatalf("invalid registry: %v", err)
		}
		for _, e := range g.Entries {
			name := fmt.Sprintf("opctl-%s-%s", g.Name, e.Op.Command())
			md := []byte(renderMarkdown(g, e))

			mdPath := filepath.Join(commandsDir, name+".md")
			if err := writeFileIfChanged(mdPath, md, writeOnlyIfChanged); err != nil {
				fatalf("writing markdown for %s: %v", name, err)
			}

			manPath := filepath.Join(manOutDir, name+".1")
			if err := writeFileIfChanged(manPath, md2man.Render(md), writeOnlyIfChanged); err != nil {
				fatalf("writing man page for %s: %v", name, err)
			}
			processed++
		}
	}

	if processed == 0 {
		fatalf("no operations registered")
	}
	fmt.Printf("generated %d command pages\n", processed)
}

func fatalf(f string, a ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", a...)
	os.Exit(1)
}

func writeFileIfChanged(path string, new []byte, onlyIfChanged bool) error {
	if !onlyIfChanged {
		return os.WriteFile(path, new, 0o644)
	}
	old, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return os.WriteFile(path, new, 0o644)
		}
		return err
	}
	if bytes.Equal(bytes.TrimSpace(old), bytes.TrimSpace(new)) {
		return nil
	}
	return os.WriteFile(path, new, 0o644)
}

// renderMarkdown builds a man-page shaped markdown document for one
// operation. md2man expects the title line in "name 1" form.
func renderMarkdown(g service.Group, e service.Entry) string {
	op := e.Op
	var b strings.Builder

	fmt.Fprintf(&b, "%% opctl-%s-%s 1\n\n", g.Name, op.Command())
	fmt.Fprintf(&b, "# NAME\n\nopctl %s %s - %s\n\n", g.Name, op.Command(), op.Usage)
	fmt.Fprintf(&b, "# SYNOPSIS\n\n`opctl %s %s [flags]`\n\n", g.Name, op.Command())

	fmt.Fprintf(&b, "# DESCRIPTION\n\nCalls the %s %s API.\n\n", g.Title, op.Name)
	fmt.Fprintf(&b, "Impact: **%s**.", e.Impact)
	switch {
	case op.Primary == "*":
		b.WriteString(" Emits the whole response by default.")
	case op.Primary != "":
		fmt.Fprintf(&b, " Emits `%s` by default.", op.Primary)
	}
	if op.Pager != nil {
		b.WriteString(" Results are paged automatically unless `--no-auto-iteration` is given.")
	}
	b.WriteString("\n\n")

	if len(op.Fields) > 0 {
		b.WriteString("# FLAGS\n\n")
		for _, f := range op.Fields {
			writeField(&b, f)
		}
	}

	b.WriteString("# COMMON FLAGS\n\n")
	b.WriteString("See `opctl " + g.Name + " " + op.Command() + " --help` for --region, --profile, --endpoint-url, ")
	b.WriteString("--select, --force, --what-if, --confirm, --input-file and the output flags.\n")
	return b.String()
}

func writeField(b *strings.Builder, f schema.Field) {
	fmt.Fprintf(b, "**--%s** *%s*", f.Name, f.Kind)
	if f.Required {
		b.WriteString(" (required)")
	}
	b.WriteString("\n: ")
	b.WriteString(f.Usage)
	if len(f.Enum) > 0 {
		fmt.Fprintf(b, " One of: %s.", strings.Join(f.Enum, ", "))
	}
	if f.Default != nil {
		fmt.Fprintf(b, " Default: %v.", f.Default)
	}
	if aliases := f.AllAliases(); len(aliases) > 0 {
		fmt.Fprintf(b, " Aliases: --%s.", strings.Join(aliases, ", --"))
	}
	fmt.Fprintf(b, " Request path: `%s`.\n\n", f.Path)
}
