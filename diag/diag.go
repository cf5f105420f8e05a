// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package diag is the diagnostic context consumed by the block builder and
// the inference callbacks of the operator registry.
package diag

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/gx-org/anfir/ir"
)

// Severity of a diagnostic.
type Severity int

const (
	// Info reports context that is not a problem.
	Info Severity = iota
	// Warning reports a recoverable problem.
	Warning
	// Error reports a problem that does not abort the current operation.
	Error
	// Fatal reports a problem that aborts the current operation.
	Fatal
)

// String returns the severity name used when formatting diagnostics.
func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Fatal:
		return "fatal"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

type (
	// Context receives diagnostics from the core.
	Context interface {
		// Emit records a diagnostic and continues.
		Emit(sev Severity, span ir.Span, err error)

		// EmitFatal records a diagnostic and returns the error to
		// abort the current operation with.
		EmitFatal(span ir.Span, err error) error
	}

	// Diagnostic is one recorded entry.
	Diagnostic struct {
		Sev  Severity
		Span ir.Span
		Err  error
	}

	// Errors collects diagnostics in emission order.
	Errors struct {
		diags []Diagnostic
		err   error
	}

	discard struct{}
)

var _ Context = (*Errors)(nil)

// Emit records a diagnostic.
func (errs *Errors) Emit(sev Severity, span ir.Span, err error) {
	errs.diags = append(errs.diags, Diagnostic{Sev: sev, Span: span, Err: err})
	if sev >= Error {
		errs.err = multierr.Append(errs.err, err)
	}
}

// EmitFatal records a diagnostic and returns the error to abort with.
func (errs *Errors) EmitFatal(span ir.Span, err error) error {
	errs.Emit(Fatal, span, err)
	return err
}

// Err returns all errors recorded so far combined into one, or nil.
func (errs *Errors) Err() error { return errs.err }

// All returns every recorded diagnostic in emission order.
func (errs *Errors) All() []Diagnostic { return errs.diags }

// Empty returns true if no diagnostic has been recorded.
func (errs *Errors) Empty() bool { return len(errs.diags) == 0 }

// Discard returns a context dropping every non-fatal diagnostic.
// Fatal diagnostics still abort by returning their error.
func Discard() Context { return discard{} }

func (discard) Emit(Severity, ir.Span, error) {}

func (discard) EmitFatal(span ir.Span, err error) error { return err }
