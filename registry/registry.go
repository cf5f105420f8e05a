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

// Package registry is the operator registry interface consumed by the block
// builder. The registry maps operators to their shape and type inference
// rules. The absence of an entry, or of a rule in an entry, is not an error:
// inference then reports "unknown".
package registry

import (
	"github.com/gx-org/anfir/diag"
	"github.com/gx-org/anfir/ir"
)

type (
	// InferShapeFunc infers the shape of a call to an operator.
	// It returns false when the shape cannot be inferred. Problems are
	// reported through the diagnostic context, never by aborting.
	InferShapeFunc func(*ir.Call, diag.Context) (ir.Expr, bool)

	// InferTypeFunc infers the type of a call to an operator.
	// It returns false when the type cannot be inferred.
	InferTypeFunc func(*ir.Call, diag.Context) (ir.Type, bool)

	// Entry is the inference rules attached to one operator.
	// Either rule may be nil.
	Entry struct {
		InferShape InferShapeFunc
		InferType  InferTypeFunc
	}

	// Registry looks up the inference rules of an operator.
	Registry interface {
		// Lookup returns the entry registered for an operator.
		Lookup(op *ir.Op) (Entry, bool)
	}

	// Map is a Registry backed by a map keyed on operator names.
	Map struct {
		entries map[string]Entry
	}
)

var _ Registry = (*Map)(nil)

// NewMap returns an empty operator registry.
func NewMap() *Map {
	return &Map{entries: make(map[string]Entry)}
}

// Register the inference rules of an operator, replacing any previous entry.
func (m *Map) Register(name string, entry Entry) {
	m.entries[name] = entry
}

// Lookup returns the entry registered for an operator.
func (m *Map) Lookup(op *ir.Op) (Entry, bool) {
	entry, ok := m.entries[op.Name]
	return entry, ok
}

// Empty returns a registry with no entry: every inference reports unknown.
func Empty() Registry {
	return NewMap()
}
