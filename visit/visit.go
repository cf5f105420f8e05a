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

// Package visit dispatches an expression to a handler of its variant.
//
// A Dispatcher is parameterized by the traversal signature: the client
// chooses the result type R and an extra argument type A carried to every
// handler. A dispatcher is built once per signature and shared by every
// traversal of that signature; dispatching is a table lookup on the variant
// kind. Variants without a handler fall through to the Default handler.
package visit

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/gx-org/anfir/ir"
	"github.com/gx-org/anfir/ir/exprkind"
)

var (
	// ErrNullNode reports a traversal reaching an absent expression.
	ErrNullNode = errors.New("null node in traversal")

	// ErrUnhandledVariant reports a variant with no handler nor default.
	ErrUnhandledVariant = errors.New("unhandled expression variant")
)

// Nothing is the result type of traversals that only inspect.
type Nothing struct{}

type (
	// Funcs is the set of per-variant handlers of a traversal signature.
	// Any handler may be nil, in which case its variant falls through to
	// Default.
	Funcs[R, A any] struct {
		Constant        func(*ir.Constant, A) (R, error)
		Tuple           func(*ir.Tuple, A) (R, error)
		Var             func(*ir.Var, A) (R, error)
		DataflowVar     func(*ir.DataflowVar, A) (R, error)
		ShapeExpr       func(*ir.ShapeExpr, A) (R, error)
		RuntimeDepShape func(*ir.RuntimeDepShape, A) (R, error)
		ExternFunc      func(*ir.ExternFunc, A) (R, error)
		GlobalVar       func(*ir.GlobalVar, A) (R, error)
		Function        func(*ir.Function, A) (R, error)
		Call            func(*ir.Call, A) (R, error)
		SeqExpr         func(*ir.SeqExpr, A) (R, error)
		If              func(*ir.If, A) (R, error)
		Op              func(*ir.Op, A) (R, error)
		TupleGetItem    func(*ir.TupleGetItem, A) (R, error)

		// Default handles the variants with a nil handler.
		// A nil Default fails with ErrUnhandledVariant.
		Default func(ir.Expr, A) (R, error)
	}

	handler[R, A any] func(ir.Expr, A) (R, error)

	// Dispatcher dispatches expressions to the handlers of one signature.
	Dispatcher[R, A any] struct {
		funcs Funcs[R, A]
		once  sync.Once
		table []handler[R, A]
	}
)

// NewDispatcher returns a dispatcher over the given handlers. The dispatch
// table is built on first use and reused by every Visit call.
func NewDispatcher[R, A any](funcs Funcs[R, A]) *Dispatcher[R, A] {
	return &Dispatcher[R, A]{funcs: funcs}
}

func set[R, A, N any](table []handler[R, A], kind exprkind.Kind, f func(N, A) (R, error)) {
	if f == nil {
		return
	}
	table[kind] = func(e ir.Expr, a A) (R, error) {
		return f(e.(N), a)
	}
}

func (d *Dispatcher[R, A]) init() {
	table := make([]handler[R, A], exprkind.Max()+1)
	set(table, exprkind.Constant, d.funcs.Constant)
	set(table, exprkind.Tuple, d.funcs.Tuple)
	set(table, exprkind.Var, d.funcs.Var)
	set(table, exprkind.DataflowVar, d.funcs.DataflowVar)
	set(table, exprkind.ShapeExpr, d.funcs.ShapeExpr)
	set(table, exprkind.RuntimeDepShape, d.funcs.RuntimeDepShape)
	set(table, exprkind.ExternFunc, d.funcs.ExternFunc)
	set(table, exprkind.GlobalVar, d.funcs.GlobalVar)
	set(table, exprkind.Function, d.funcs.Function)
	set(table, exprkind.Call, d.funcs.Call)
	set(table, exprkind.SeqExpr, d.funcs.SeqExpr)
	set(table, exprkind.If, d.funcs.If)
	set(table, exprkind.Op, d.funcs.Op)
	set(table, exprkind.TupleGetItem, d.funcs.TupleGetItem)
	d.table = table
}

// Visit dispatches an expression to the handler of its variant.
func (d *Dispatcher[R, A]) Visit(expr ir.Expr, arg A) (R, error) {
	var zero R
	if expr == nil {
		return zero, errors.WithStack(ErrNullNode)
	}
	d.once.Do(d.init)
	kind := expr.Kind()
	var h handler[R, A]
	if int(kind) < len(d.table) {
		h = d.table[kind]
	}
	if h != nil {
		return h(expr, arg)
	}
	if d.funcs.Default != nil {
		return d.funcs.Default(expr, arg)
	}
	return zero, errors.Wrapf(ErrUnhandledVariant, "%s", kind)
}
