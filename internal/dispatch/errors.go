// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/aws/smithy-go"
)

// ErrorContext carries what we know about a call when it fails, so error
// messages can say where things went wrong.
type ErrorContext struct {
	Service   string
	Operation string
	Region    string
	Endpoint  string
}

func (ec ErrorContext) where() string {
	s := ec.Service + " " + ec.Operation
	if ec.Region != "" {
		s += " (" + ec.Region + ")"
	}
	return s
}

// NameResolutionError reports that the service endpoint host could not be
// resolved. This almost always means a wrong region, a wrong endpoint URL, or
// no network, and the raw resolver message says none of that.
type NameResolutionError struct {
	ErrorContext
	Host string
	Err  error
}

func (e *NameResolutionError) Error() string {
	host := e.Host
	if host == "" {
		host = "the service endpoint"
	}
	msg := fmt.Sprintf("%s: unable to resolve %s", e.where(), host)
	if e.Region != "" {
		msg += fmt.Sprintf("; is %q a region where %s is available?", e.Region, e.Service)
	}
	if e.Endpoint != "" {
		msg += fmt.Sprintf(" check --endpoint-url %q.", e.Endpoint)
	} else {
		msg += " check --region and your network/DNS settings."
	}
	return msg
}

func (e *NameResolutionError) Unwrap() error { return e.Err }

// ServiceError is a fault returned by the AWS service itself.
type ServiceError struct {
	ErrorContext
	Code    string
	Message string
	Fault   string
	Err     error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.where(), e.Code, e.Message)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Friendly rewrites an error from an SDK call into one of the errors above.
// Cancellation passes through untouched.
func Friendly(err error, ec ErrorContext) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &NameResolutionError{ErrorContext: ec, Host: dnsErr.Name, Err: err}
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return &ServiceError{
			ErrorContext: ec,
			Code:         apiErr.ErrorCode(),
			Message:      apiErr.ErrorMessage(),
			Fault:        apiErr.ErrorFault().String(),
			Err:          err,
		}
	}

	return fmt.Errorf("%s: %w", ec.where(), err)
}
