// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/opctl/internal/attrs"
	awsx "github.com/staranto/opctl/internal/aws"
	"github.com/staranto/opctl/internal/builder"
	"github.com/staranto/opctl/internal/cache"
	"github.com/staranto/opctl/internal/config"
	"github.com/staranto/opctl/internal/confirm"
	"github.com/staranto/opctl/internal/dispatch"
	mylog "github.com/staranto/opctl/internal/log"
	"github.com/staranto/opctl/internal/meta"
	"github.com/staranto/opctl/internal/output"
	"github.com/staranto/opctl/internal/paramfile"
	"github.com/staranto/opctl/internal/schema"
	"github.com/staranto/opctl/internal/selector"
	"github.com/staranto/opctl/internal/service"
	"github.com/staranto/opctl/internal/whatif"
)

var ErrMissingRequired = errors.New("missing required parameter")

// BatchError reports the records of an --input-file run that failed. Each
// failure has already been logged.
type BatchError struct {
	Failed int
	Total  int
	Errs   []error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("%d of %d records failed", e.Failed, e.Total)
}

func (e *BatchError) Unwrap() []error { return e.Errs }

// DumpSchemaIfRequested prints the attribute paths of the response type when
// --schema is set, and returns true if it handled the request.
func DumpSchemaIfRequested(cmd *cli.Command, w io.Writer, t reflect.Type) bool {
	if cmd.Bool("schema") {
		output.DumpSchema(w, t)
		return true
	}
	return false
}

// BuildAttrs constructs an AttrList from --attrs.
func BuildAttrs(cmd *cli.Command) (al attrs.AttrList, err error) {
	if extras := cmd.String("attrs"); extras != "" {
		err = al.Set(extras)
	}
	return
}

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// FlagValues collects the operation's fields that were provided on the
// command line, through the environment or through the config file.
func FlagValues(cmd *cli.Command, op schema.Operation) builder.Values {
	vals := builder.Values{}
	for _, f := range op.Fields {
		if cmd.IsSet(f.Name) {
			vals[f.Name] = cmd.Value(f.Name)
		}
	}
	return vals
}

// CheckRequired reports required fields that were not provided. With
// warnOnly the problem is logged and the call goes ahead. A required field
// provided with an empty value is always just a warning.
func CheckRequired(op schema.Operation, vals builder.Values, warnOnly bool) error {
	var missing []string
	for _, f := range op.Fields {
		if !f.Required {
			continue
		}
		v, ok := vals[f.Name]
		if !ok {
			if f.Default == nil {
				missing = append(missing, "--"+f.Name)
			}
			continue
		}
		if builder.IsEmpty(v) {
			log.Warnf("%s: required parameter --%s is empty", op.Command(), f.Name)
		}
	}

	if len(missing) == 0 {
		return nil
	}

	err := fmt.Errorf("%s: %w: %s", op.Command(), ErrMissingRequired, strings.Join(missing, ", "))
	if warnOnly {
		log.Warn(err.Error())
		return nil
	}
	return err
}

// OperationCommandBuilder constructs the cli.Command for one operation of a
// service group.
type OperationCommandBuilder struct {
	Group service.Group
	Entry service.Entry
	Meta  meta.Meta
}

// Build returns a configured cli.Command from the builder.
func (ocb *OperationCommandBuilder) Build() *cli.Command {
	op := ocb.Entry.Op
	runner := &OperationActionRunner{Group: ocb.Group, Entry: ocb.Entry}

	return &cli.Command{
		Name:      op.Command(),
		Usage:     op.Usage,
		UsageText: fmt.Sprintf("opctl %s %s [flags]", op.Service, op.Command()),
		Metadata: map[string]any{
			"meta": ocb.Meta,
		},
		Flags: append(
			NewFieldFlags(op, ocb.Meta.Config.Source),
			NewGlobalFlags(op.Service, ocb.Meta.Config.Source)...,
		),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: runner.Run,
	}
}

// OperationActionRunner runs one operation: it assembles the request from
// flags and parameter records, asks for confirmation, calls the service and
// renders the selected part of the response.
type OperationActionRunner struct {
	Group service.Group
	Entry service.Entry
}

// Run executes the operation with the provided context and command.
func (r *OperationActionRunner) Run(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	op := r.Entry.Op
	log.Debugf("executing %s %s", op.Service, op.Command())

	config.SetNamespace(op.Service)
	if cmd.Bool("verbose") {
		mylog.SetVerbose()
	}

	if DumpSchemaIfRequested(cmd, m.Out(), r.Entry.Output) {
		return nil
	}

	// Everything that can be wrong with the arguments is checked before the
	// first call goes out.
	proj, err := selector.Parse(cmd.String("select"), cmd.Bool("pass-thru"), op)
	if err != nil {
		return err
	}
	if err := proj.Validate(r.Entry.Output); err != nil {
		return err
	}

	threshold, err := confirm.ParseImpact(cmd.String("confirm"))
	if err != nil {
		return fmt.Errorf("--confirm: %w", err)
	}

	al, err := BuildAttrs(cmd)
	if err != nil {
		return fmt.Errorf("--attrs: %w", err)
	}
	log.Debugf("attrs: %v", al.String())

	required, _ := config.GetString("required", "error")

	sess, err := r.session(ctx, cmd, m)
	if err != nil {
		return err
	}

	records, err := r.records(ctx, cmd, m, sess)
	if err != nil {
		return err
	}

	inv := &invocation{
		group:    r.Group,
		entry:    r.Entry,
		sess:     sess,
		gate:     newGate(cmd, m, threshold),
		proj:     proj,
		attrs:    al,
		opts:     output.OptionsFromCommand(cmd),
		whatIf:   cmd.Bool("what-if"),
		auto:     !cmd.Bool("no-auto-iteration"),
		warnOnly: strings.EqualFold(required, "warn"),
		out:      m.Out(),
	}

	if len(records) == 1 {
		err := inv.run(ctx, records[0])
		if errors.Is(err, confirm.ErrDeclined) {
			log.Warnf("%s: skipped", op.Command())
			return nil
		}
		return err
	}

	var errs []error
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		err := inv.run(ctx, rec)
		switch {
		case err == nil:
		case errors.Is(err, confirm.ErrDeclined):
			log.Warnf("%s: record %d skipped", op.Command(), i+1)
		default:
			log.Errorf("%s: record %d: %v", op.Command(), i+1, err)
			errs = append(errs, fmt.Errorf("record %d: %w", i+1, err))
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return &BatchError{Failed: len(errs), Total: len(records), Errs: errs}
}

// session returns the injected session, or loads one from the AWS flags.
func (r *OperationActionRunner) session(ctx context.Context, cmd *cli.Command, m meta.Meta) (*awsx.Session, error) {
	if m.Session != nil {
		return m.Session, nil
	}

	var opts []awsx.Option
	if v := cmd.String("profile"); v != "" {
		opts = append(opts, awsx.WithProfile(v))
	}
	if v := cmd.String("region"); v != "" {
		opts = append(opts, awsx.WithRegion(v))
	}
	if v := cmd.String("endpoint-url"); v != "" {
		opts = append(opts, awsx.WithEndpointURL(v))
	}
	if n := cmd.Int("max-attempts"); n > 0 {
		opts = append(opts, awsx.WithRetryer(awsx.MaxAttempts(n)))
	}
	return awsx.NewSession(ctx, opts...)
}

// records returns one set of values per invocation. Without --input-file
// that is just the flags; with it, each record overlaid with the flags.
func (r *OperationActionRunner) records(
	ctx context.Context,
	cmd *cli.Command,
	m meta.Meta,
	sess *awsx.Session,
) ([]builder.Values, error) {
	op := r.Entry.Op
	flags := FlagValues(cmd, op)

	path := cmd.String("input-file")
	if path == "" {
		return []builder.Values{flags}, nil
	}

	if strings.HasPrefix(path, "s3://") {
		hours, _ := config.GetInt("cache-clean", 24) //nolint:mnd
		if err := cache.Purge(hours); err != nil {
			log.WithError(err).Warn("cache purge failed")
		}
	}

	src := paramfile.Source{
		Stdin: m.In(),
		S3:    func() paramfile.Getter { return sess.S3() },
	}
	recs, err := src.Load(ctx, path)
	if err != nil {
		return nil, err
	}

	out := make([]builder.Values, 0, len(recs))
	for i, rec := range recs {
		c, err := paramfile.Canonical(op, rec)
		if err != nil {
			return nil, fmt.Errorf("%s: record %d: %w", path, i+1, err)
		}
		out = append(out, flags.Merge(c))
	}
	log.Infof("%s: %d records from %s", op.Command(), len(out), path)
	return out, nil
}

func newGate(cmd *cli.Command, m meta.Meta, threshold confirm.Impact) *confirm.Gate {
	prompter, interactive := m.Prompter, m.Interactive
	if prompter == nil {
		p, ok := confirm.NewTeaPrompter()
		prompter, interactive = p, ok
	}
	return &confirm.Gate{
		Threshold:   threshold,
		Force:       cmd.Bool("force"),
		Prompter:    prompter,
		Interactive: interactive,
	}
}

// invocation carries what every record of a run shares.
type invocation struct {
	group    service.Group
	entry    service.Entry
	sess     *awsx.Session
	gate     *confirm.Gate
	proj     selector.Projection
	attrs    attrs.AttrList
	opts     output.Options
	whatIf   bool
	auto     bool
	warnOnly bool
	out      io.Writer
}

func (inv *invocation) run(ctx context.Context, vals builder.Values) error {
	op := inv.entry.Op

	if err := CheckRequired(op, vals, inv.warnOnly); err != nil {
		return err
	}

	req, err := builder.Build(op.Fields, vals)
	if err != nil {
		return fmt.Errorf("%s: %w", op.Command(), err)
	}

	if inv.whatIf {
		return inv.preview(ctx, vals, req)
	}

	target, _ := vals[op.TargetField()].(string)
	if err := inv.gate.ShouldProcess(ctx, inv.entry.Impact, op.Name, target); err != nil {
		return err
	}

	result, err := inv.call(ctx, req, vals)
	if err != nil {
		return err
	}
	return output.SliceDiceSpit(result, inv.attrs, inv.opts, inv.out)
}

func (inv *invocation) errorContext(operation string) dispatch.ErrorContext {
	return dispatch.ErrorContext{
		Service:   inv.group.Title,
		Operation: operation,
		Region:    inv.sess.Region(),
		Endpoint:  inv.sess.Endpoint,
	}
}

// call sends the request, following continuation tokens for list
// operations, and returns the projected result. Pages are concatenated.
func (inv *invocation) call(ctx context.Context, req builder.Tree, vals builder.Values) (any, error) {
	op := inv.entry.Op
	ec := inv.errorContext(op.Name)

	send := func(ctx context.Context, req builder.Tree) (any, error) {
		resp, err := inv.entry.Invoke(ctx, inv.sess, req)
		return resp, dispatch.Friendly(err, ec)
	}

	if op.Pager == nil {
		resp, err := send(ctx, req)
		if err != nil {
			return nil, err
		}
		return inv.proj.Apply(resp, vals)
	}

	if inv.proj.IsEcho() {
		if _, err := send(ctx, req); err != nil {
			return nil, err
		}
		return inv.proj.Apply(nil, vals)
	}

	items := []any{}
	err := dispatch.Paginate(ctx, req, *op.Pager, inv.auto, send, func(page any) error {
		v, err := inv.proj.Apply(page, vals)
		if err != nil {
			return err
		}
		if list, ok := v.([]any); ok {
			items = append(items, list...)
		} else if v != nil {
			items = append(items, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// preview prints the request instead of sending it. For updates it also
// reads the current resource and shows what would change.
func (inv *invocation) preview(ctx context.Context, vals builder.Values, req builder.Tree) error {
	op := inv.entry.Op

	var ignore []string
	for _, f := range op.Fields {
		if f.Kind == schema.KindToken {
			ignore = append(ignore, f.Segments()[0])
		}
	}

	var current any
	if getter, ok := inv.group.Lookup(op.Current); ok && op.Current != "" {
		// The getter's own inputs identify the resource; they never differ.
		for _, f := range getter.Op.Fields {
			ignore = append(ignore, f.Segments()[0])
		}

		resp, err := inv.current(ctx, getter, vals)
		if err != nil {
			log.Warnf("what-if: unable to read the current resource: %v", err)
		} else {
			current = resp
		}
	}

	return whatif.Preview(inv.out, op.Name, req, current, inv.opts.Color, ignore...)
}

func (inv *invocation) current(ctx context.Context, getter service.Entry, vals builder.Values) (any, error) {
	sub := builder.Values{}
	for k, v := range vals {
		if _, ok := getter.Op.Field(k); ok {
			sub[k] = v
		}
	}
	if err := CheckRequired(getter.Op, sub, false); err != nil {
		return nil, err
	}

	req, err := builder.Build(getter.Op.Fields, sub)
	if err != nil {
		return nil, err
	}

	resp, err := getter.Invoke(ctx, inv.sess, req)
	if err != nil {
		return nil, dispatch.Friendly(err, inv.errorContext(getter.Op.Name))
	}
	return resp, nil
}
