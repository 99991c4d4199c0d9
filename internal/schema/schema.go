// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Kind identifies how a flag value is parsed and how it lands in the request.
type Kind int

const (
	KindString Kind = iota
	KindEnum
	KindInt
	KindStringList
	KindDate
	KindTags
	KindJSON
	KindToken
)

var kindNames = map[Kind]string{
	KindString:     "string",
	KindEnum:       "enum",
	KindInt:        "int",
	KindStringList: "list",
	KindDate:       "date",
	KindTags:       "tags",
	KindJSON:       "json",
	KindToken:      "token",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Field declares one request field and the flag that feeds it.
type Field struct {
	// Name is the flag name, e.g. "audio-mux-type".
	Name string
	// Path is the dotted path of the field inside the request, e.g.
	// "ChimeSdkMeetingConfiguration.ArtifactsConfiguration.Audio.MuxType".
	Path string
	Kind Kind
	// Aliases are extra flag names. Underscore aliases derived from Path are
	// added by AllAliases and need not be listed here.
	Aliases  []string
	Usage    string
	Required bool
	// Enum lists the accepted values for KindEnum.
	Enum []string
	// Default is applied when the field was not provided at all.
	Default any
}

// Segments splits the request path.
func (f Field) Segments() []string {
	return strings.Split(f.Path, ".")
}

// AllAliases returns the declared aliases followed by the underscore-joined
// names derived from the request path: the last two segments
// ("Audio_MuxType") and the full path. Names equal to the flag name are
// dropped, as are duplicates.
func (f Field) AllAliases() []string {
	seen := map[string]bool{f.Name: true}
	var out []string
	add := func(s string) {
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		out = append(out, s)
	}

	for _, a := range f.Aliases {
		add(a)
	}

	segs := f.Segments()
	if len(segs) >= 2 {
		add(strings.Join(segs[len(segs)-2:], "_"))
	}
	if len(segs) > 2 {
		add(strings.Join(segs, "_"))
	}
	return out
}

// Matches reports whether name is the flag name or one of its aliases.
func (f Field) Matches(name string) bool {
	if name == f.Name {
		return true
	}
	for _, a := range f.AllAliases() {
		if a == name {
			return true
		}
	}
	return false
}

// CanonicalEnum returns the declared spelling of v, matching
// case-insensitively.
func (f Field) CanonicalEnum(v string) (string, bool) {
	for _, e := range f.Enum {
		if strings.EqualFold(e, v) {
			return e, true
		}
	}
	return "", false
}

// Pager describes how a list operation carries its continuation token.
type Pager struct {
	// InputToken is the request field receiving the cursor.
	InputToken string
	// OutputToken is the response field carrying the next cursor.
	OutputToken string
}

// Operation is the declarative description of one API operation.
type Operation struct {
	// Service is the command group, e.g. "mp".
	Service string
	// Name is the API operation name, e.g. "CreateMediaCapturePipeline".
	Name  string
	Usage string
	// Fields are the request fields exposed as flags.
	Fields []Field
	// Primary is the response field emitted by default. "*" emits the whole
	// response and "" means the operation returns nothing useful, in which
	// case PassThru is echoed when requested.
	Primary string
	// PassThru is the flag echoed by --pass-thru.
	PassThru string
	// Target is the flag whose value names the resource in confirmation
	// prompts. Defaults to PassThru.
	Target string
	// Pager is set for operations that paginate.
	Pager *Pager
	// Current names a read operation of the same service that returns the
	// resource an update operation modifies. Used by --what-if diffs.
	Current string
}

// Command returns the kebab-case command name for the operation.
func (op Operation) Command() string {
	return Kebab(op.Name)
}

// Field looks up a field by flag name or alias.
func (op Operation) Field(name string) (Field, bool) {
	for _, f := range op.Fields {
		if f.Matches(name) {
			return f, true
		}
	}
	return Field{}, false
}

// FieldByPath looks up a field by request path.
func (op Operation) FieldByPath(path string) (Field, bool) {
	for _, f := range op.Fields {
		if f.Path == path {
			return f, true
		}
	}
	return Field{}, false
}

// TargetField returns the name of the flag used to describe the resource in
// prompts.
func (op Operation) TargetField() string {
	if op.Target != "" {
		return op.Target
	}
	return op.PassThru
}

var (
	ErrDuplicateName = errors.New("duplicate flag name")
	ErrEmptyPath     = errors.New("empty request path")
	ErrPathConflict  = errors.New("request path is both a leaf and a structure")
	ErrUnknownField  = errors.New("unknown field")
)

// Validate checks an operation for schema mistakes: duplicate flag names or
// aliases, empty paths, a path that is both a leaf and a parent, and
// references to fields that do not exist.
func (op Operation) Validate() error {
	names := map[string]string{}
	paths := map[string]bool{}

	for _, f := range op.Fields {
		if f.Path == "" {
			return fmt.Errorf("%s: %s: %w", op.Name, f.Name, ErrEmptyPath)
		}
		for _, n := range append([]string{f.Name}, f.AllAliases()...) {
			if other, ok := names[n]; ok {
				return fmt.Errorf("%s: %s (also %s): %w", op.Name, n, other, ErrDuplicateName)
			}
			names[n] = f.Name
		}
		paths[f.Path] = true
	}

	for p := range paths {
		segs := strings.Split(p, ".")
		for i := 1; i < len(segs); i++ {
			if paths[strings.Join(segs[:i], ".")] {
				return fmt.Errorf("%s: %s: %w", op.Name, p, ErrPathConflict)
			}
		}
	}

	for _, ref := range []string{op.PassThru, op.Target} {
		if ref == "" {
			continue
		}
		if _, ok := op.Field(ref); !ok {
			return fmt.Errorf("%s: %s: %w", op.Name, ref, ErrUnknownField)
		}
	}

	if op.Pager != nil {
		if _, ok := op.FieldByPath(op.Pager.InputToken); !ok {
			return fmt.Errorf("%s: pager token %s: %w", op.Name, op.Pager.InputToken, ErrUnknownField)
		}
	}

	return nil
}

// Kebab converts an identifier such as "CreateMediaCapturePipeline" or
// "ResourceARN" into "create-media-capture-pipeline" / "resource-arn".
func Kebab(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('-')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
