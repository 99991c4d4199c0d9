// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/opctl/internal/meta"
	"github.com/staranto/opctl/internal/output"
)

// completionTree is the shape of the command tree the scripts complete:
// groups, their commands, and each command's flags.
type completionTree struct {
	groups   []string
	commands map[string][]string
	flags    map[string][]string
}

func newCompletionTree(root *cli.Command) completionTree {
	t := completionTree{
		commands: map[string][]string{},
		flags:    map[string][]string{},
	}

	for _, g := range root.Commands {
		t.groups = append(t.groups, g.Name)
		for _, c := range g.Commands {
			t.commands[g.Name] = append(t.commands[g.Name], c.Name)
			key := g.Name + " " + c.Name
			for _, f := range c.Flags {
				for _, n := range f.Names() {
					if len(n) == 1 {
						t.flags[key] = append(t.flags[key], "-"+n)
					} else {
						t.flags[key] = append(t.flags[key], "--"+n)
					}
				}
			}
			sort.Strings(t.flags[key])
		}
	}
	return t
}

func (t completionTree) keys() []string {
	keys := make([]string, 0, len(t.flags))
	for k := range t.flags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func writeBash(w io.Writer, t completionTree) {
	fmt.Fprintln(w, "# bash completion for opctl")
	fmt.Fprintln(w, "_opctl()")
	fmt.Fprintln(w, "{")
	fmt.Fprintln(w, `    local cur=${COMP_WORDS[COMP_CWORD]} prev=${COMP_WORDS[COMP_CWORD-1]} opts`)
	fmt.Fprintln(w, "    COMPREPLY=()")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "    if [[ ${COMP_CWORD} -eq 1 ]]; then")
	fmt.Fprintf(w, "        COMPREPLY=( $(compgen -W \"%s --help --version\" -- \"$cur\") )\n", strings.Join(t.groups, " "))
	fmt.Fprintln(w, "        return 0")
	fmt.Fprintln(w, "    fi")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "    if [[ ${COMP_CWORD} -eq 2 ]]; then")
	fmt.Fprintln(w, `        case "${COMP_WORDS[1]}" in`)
	for _, g := range t.groups {
		words := t.commands[g]
		if g == "completion" {
			words = []string{"bash", "zsh"}
		}
		fmt.Fprintf(w, "        %s) opts=%q ;;\n", g, strings.Join(words, " "))
	}
	fmt.Fprintln(w, "        esac")
	fmt.Fprintln(w, `        COMPREPLY=( $(compgen -W "$opts" -- "$cur") )`)
	fmt.Fprintln(w, "        return 0")
	fmt.Fprintln(w, "    fi")
	fmt.Fprintln(w)
	fmt.Fprintln(w, `    if [[ "$prev" == "--output" || "$prev" == "-o" ]]; then`)
	fmt.Fprintf(w, "        COMPREPLY=( $(compgen -W %q -- \"$cur\") )\n", strings.Join(output.Formats, " "))
	fmt.Fprintln(w, "        return 0")
	fmt.Fprintln(w, "    fi")
	fmt.Fprintln(w)
	fmt.Fprintln(w, `    case "${COMP_WORDS[1]} ${COMP_WORDS[2]}" in`)
	for _, k := range t.keys() {
		fmt.Fprintf(w, "    %q) opts=%q ;;\n", k, strings.Join(t.flags[k], " "))
	}
	fmt.Fprintln(w, "    esac")
	fmt.Fprintln(w, `    COMPREPLY=( $(compgen -W "$opts" -- "$cur") )`)
	fmt.Fprintln(w, "    return 0")
	fmt.Fprintln(w, "}")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "complete -F _opctl opctl")
}

func writeZsh(w io.Writer, t completionTree) {
	fmt.Fprintln(w, "#compdef opctl")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "_opctl() {")
	fmt.Fprintln(w, "  if (( CURRENT == 2 )); then")
	fmt.Fprintf(w, "    compadd -- %s\n", strings.Join(t.groups, " "))
	fmt.Fprintln(w, "    return")
	fmt.Fprintln(w, "  fi")
	fmt.Fprintln(w, "  if (( CURRENT == 3 )); then")
	fmt.Fprintln(w, "    case $words[2] in")
	for _, g := range t.groups {
		words := t.commands[g]
		if g == "completion" {
			words = []string{"bash", "zsh"}
		}
		fmt.Fprintf(w, "      %s) compadd -- %s ;;\n", g, strings.Join(words, " "))
	}
	fmt.Fprintln(w, "    esac")
	fmt.Fprintln(w, "    return")
	fmt.Fprintln(w, "  fi")
	fmt.Fprintln(w, `  case "$words[2] $words[3]" in`)
	for _, k := range t.keys() {
		fmt.Fprintf(w, "    %q) compadd -- %s ;;\n", k, strings.Join(t.flags[k], " "))
	}
	fmt.Fprintln(w, "  esac")
	fmt.Fprintln(w, "}")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "# If this file is sourced directly (not autoloaded via fpath), ensure compsys is initialized and register the completion")
	fmt.Fprintln(w, "if ! typeset -f compdef >/dev/null 2>&1; then")
	fmt.Fprintln(w, "  autoload -Uz compinit && compinit -i")
	fmt.Fprintln(w, "fi")
	fmt.Fprintln(w, "compdef _opctl opctl")
}

// CompletionCommandAction writes the completion script for the shell named
// by the first argument, or by $SHELL.
func CompletionCommandAction(root *cli.Command) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		m := GetMeta(cmd)
		shell := ""
		if args := cmd.Args().Slice(); len(args) > 0 {
			shell = args[0]
		}
		if shell == "" {
			sh := os.Getenv("SHELL")
			switch {
			case strings.HasSuffix(sh, "zsh"):
				shell = "zsh"
			case strings.HasSuffix(sh, "bash"):
				shell = "bash"
			}
		}

		t := newCompletionTree(root)
		switch shell {
		case "bash":
			writeBash(m.Out(), t)
		case "zsh":
			writeZsh(m.Out(), t)
		default:
			return fmt.Errorf("usage: opctl completion [bash|zsh]")
		}
		return nil
	}
}

func CompletionCommandBuilder(root *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "opctl completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: CompletionCommandAction(root),
	}
}
