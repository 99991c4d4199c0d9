// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package selector

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/apex/log"
	"github.com/tidwall/gjson"

	"github.com/staranto/opctl/internal/builder"
	"github.com/staranto/opctl/internal/schema"
)

// Mode is the kind of projection applied to a response.
type Mode int

const (
	// FullResponse emits the whole response.
	FullResponse Mode = iota
	// NamedField emits one property (or dotted path) of the response.
	NamedField
	// EchoInput emits the value of an input flag, for chaining.
	EchoInput
)

func (m Mode) String() string {
	switch m {
	case FullResponse:
		return "full"
	case NamedField:
		return "field"
	case EchoInput:
		return "echo"
	}
	return "unknown"
}

// Projection chooses what part of a response becomes output.
type Projection struct {
	Mode Mode
	Name string
}

func Full() Projection { return Projection{Mode: FullResponse} }
func Named(name string) Projection { return Projection{Mode: NamedField, Name: name} }
func Echo(flag string) Projection { return Projection{Mode: EchoInput, Name: flag} }
func (p Projection) String() string { return p.Mode.String() + ":" + p.Name }
func (p Projection) IsFull() bool { return p.Mode == FullResponse }
func (p Projection) IsEcho() bool { return p.Mode == EchoInput }
func (p Projection) IsNamed() bool { return p.Mode == NamedField }

var ErrInvalidSelect = errors.New("invalid --select")

// metadataField is the SDK bookkeeping field present on every response.
const metadataField = "ResultMetadata"

// Parse resolves --select and the deprecated --pass-thru into a Projection.
//
//	""        the operation's primary field, or the whole response
//	"*"       the whole response
//	"^flag"   the value of an input flag
//	"Name"    a response property; dotted paths are allowed
func Parse(spec string, passThru bool, op schema.Operation) (Projection, error) {
	spec = strings.TrimSpace(spec)

	if passThru {
		if spec != "" {
			return Projection{}, fmt.Errorf("%w: --pass-thru cannot be combined with --select", ErrInvalidSelect)
		}
		if op.PassThru == "" {
			return Projection{}, fmt.Errorf("%w: %s has no pass-thru parameter", ErrInvalidSelect, op.Command())
		}
		log.Warnf("--pass-thru is deprecated, use --select '^%s'", op.PassThru)
		return Echo(op.PassThru), nil
	}

	if spec == "" {
		spec = op.Primary
	}

	switch {
	case spec == "" || spec == "*":
		return Full(), nil
	case strings.HasPrefix(spec, "^"):
		name := strings.TrimPrefix(spec, "^")
		f, ok := op.Field(name)
		if !ok {
			return Projection{}, fmt.Errorf("%w: %s has no parameter %q", ErrInvalidSelect, op.Command(), name)
		}
		return Echo(f.Name), nil
	default:
		return Named(spec), nil
	}
}

// Validate checks a NamedField projection against the response type, so a
// misspelled --select fails before any call is made.
func (p Projection) Validate(output reflect.Type) error {
	if p.Mode != NamedField {
		return nil
	}

	for output.Kind() == reflect.Pointer {
		output = output.Elem()
	}
	if output.Kind() != reflect.Struct {
		return nil
	}

	head := strings.SplitN(p.Name, ".", 2)[0]
	if head == metadataField {
		return fmt.Errorf("%w: %q is not a response property", ErrInvalidSelect, head)
	}
	if _, ok := output.FieldByName(head); !ok {
		return fmt.Errorf("%w: %q is not a property of %s; properties: %s",
			ErrInvalidSelect, head, output.Name(), strings.Join(Properties(output), ", "))
	}
	return nil
}

// Properties lists the exported response properties of a response type.
func Properties(t reflect.Type) []string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	var out []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Anonymous || f.Name == metadataField {
			continue
		}
		out = append(out, f.Name)
	}
	return out
}

// Apply projects resp. input holds the provided flag values for EchoInput.
func (p Projection) Apply(resp any, input builder.Values) (any, error) {
	switch p.Mode {
	case EchoInput:
		return input[p.Name], nil
	case FullResponse:
		return Document(resp)
	case NamedField:
		raw, err := Encode(resp)
		if err != nil {
			return nil, err
		}
		r := gjson.GetBytes(raw, p.Name)
		if !r.Exists() {
			return nil, nil
		}
		return r.Value(), nil
	}
	return nil, fmt.Errorf("%w: mode %d", ErrInvalidSelect, p.Mode)
}

// Document converts an SDK response into a generic JSON document without the
// SDK's result metadata.
func Document(resp any) (map[string]any, error) {
	raw, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}
	doc := map[string]any{}
	if string(raw) == "null" {
		return doc, nil
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	delete(doc, metadataField)
	return doc, nil
}

// Encode is Document rendered as JSON.
func Encode(resp any) ([]byte, error) {
	doc, err := Document(resp)
	if err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}
