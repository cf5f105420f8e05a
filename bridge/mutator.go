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

package bridge

import (
	"github.com/pkg/errors"

	"github.com/gx-org/anfir/ir"
	"github.com/gx-org/anfir/mutator"
)

// Mutator adapts a callback mapping over the default rewriting traversal.
type Mutator struct {
	mutator.Base
	hooks map[string]MutateCallback
}

var _ mutator.Mutator = (*Mutator)(nil)

// NewMutator returns a mutator whose hooks named in the mapping run the
// mapped callback instead of the default rewrite. Non-canonical names in
// the mapping are an error.
func NewMutator(hooks map[string]MutateCallback) (*Mutator, error) {
	if err := checkNames(hooks); err != nil {
		return nil, err
	}
	m := &Mutator{hooks: hooks}
	m.Bind(m)
	return m, nil
}

func (m *Mutator) mutate(name string, n node, host func() (ir.Expr, error)) (ir.Expr, error) {
	if cb, ok := m.hooks[name]; ok {
		return asExpr(cb(n))
	}
	return host()
}

// MutateExpr runs the installed callback or dispatches by variant.
func (m *Mutator) MutateExpr(e ir.Expr) (ir.Expr, error) {
	return m.mutate(VisitExpr, e, func() (ir.Expr, error) { return m.Base.MutateExpr(e) })
}

// MutateConstant runs the installed callback or the default hook.
func (m *Mutator) MutateConstant(n *ir.Constant) (ir.Expr, error) {
	return m.mutate(VisitConstant, n, func() (ir.Expr, error) { return m.Base.MutateConstant(n) })
}

// MutateTuple runs the installed callback or the default hook.
func (m *Mutator) MutateTuple(n *ir.Tuple) (ir.Expr, error) {
	return m.mutate(VisitTuple, n, func() (ir.Expr, error) { return m.Base.MutateTuple(n) })
}

// MutateVar runs the installed callback or the default hook.
func (m *Mutator) MutateVar(n *ir.Var) (ir.Expr, error) {
	return m.mutate(VisitVar, n, func() (ir.Expr, error) { return m.Base.MutateVar(n) })
}

// MutateDataflowVar runs the installed callback or the default hook.
func (m *Mutator) MutateDataflowVar(n *ir.DataflowVar) (ir.Expr, error) {
	return m.mutate(VisitDataflowVar, n, func() (ir.Expr, error) { return m.Base.MutateDataflowVar(n) })
}

// MutateShapeExpr runs the installed callback or the default hook.
func (m *Mutator) MutateShapeExpr(n *ir.ShapeExpr) (ir.Expr, error) {
	return m.mutate(VisitShapeExpr, n, func() (ir.Expr, error) { return m.Base.MutateShapeExpr(n) })
}

// MutateRuntimeDepShape runs the installed callback or the default hook.
func (m *Mutator) MutateRuntimeDepShape(n *ir.RuntimeDepShape) (ir.Expr, error) {
	return m.mutate(VisitRuntimeDepShape, n, func() (ir.Expr, error) { return m.Base.MutateRuntimeDepShape(n) })
}

// MutateExternFunc runs the installed callback or the default hook.
func (m *Mutator) MutateExternFunc(n *ir.ExternFunc) (ir.Expr, error) {
	return m.mutate(VisitExternFunc, n, func() (ir.Expr, error) { return m.Base.MutateExternFunc(n) })
}

// MutateGlobalVar runs the installed callback or the default hook.
func (m *Mutator) MutateGlobalVar(n *ir.GlobalVar) (ir.Expr, error) {
	return m.mutate(VisitGlobalVar, n, func() (ir.Expr, error) { return m.Base.MutateGlobalVar(n) })
}

// MutateFunction runs the installed callback or the default hook.
func (m *Mutator) MutateFunction(n *ir.Function) (ir.Expr, error) {
	return m.mutate(VisitFunction, n, func() (ir.Expr, error) { return m.Base.MutateFunction(n) })
}

// MutateCall runs the installed callback or the default hook.
func (m *Mutator) MutateCall(n *ir.Call) (ir.Expr, error) {
	return m.mutate(VisitCall, n, func() (ir.Expr, error) { return m.Base.MutateCall(n) })
}

// MutateSeqExpr runs the installed callback or the default hook.
func (m *Mutator) MutateSeqExpr(n *ir.SeqExpr) (ir.Expr, error) {
	return m.mutate(VisitSeqExpr, n, func() (ir.Expr, error) { return m.Base.MutateSeqExpr(n) })
}

// MutateIf runs the installed callback or the default hook.
func (m *Mutator) MutateIf(n *ir.If) (ir.Expr, error) {
	return m.mutate(VisitIf, n, func() (ir.Expr, error) { return m.Base.MutateIf(n) })
}

// MutateOp runs the installed callback or the default hook.
func (m *Mutator) MutateOp(n *ir.Op) (ir.Expr, error) {
	return m.mutate(VisitOp, n, func() (ir.Expr, error) { return m.Base.MutateOp(n) })
}

// MutateTupleGetItem runs the installed callback or the default hook.
func (m *Mutator) MutateTupleGetItem(n *ir.TupleGetItem) (ir.Expr, error) {
	return m.mutate(VisitTupleGetItem, n, func() (ir.Expr, error) { return m.Base.MutateTupleGetItem(n) })
}

// MutateBindingBlock runs the installed callback or the default hook.
func (m *Mutator) MutateBindingBlock(n ir.Block) (ir.Block, error) {
	cb, ok := m.hooks[VisitBindingBlock]
	if !ok {
		return m.Base.MutateBindingBlock(n)
	}
	r, err := cb(n)
	if err != nil {
		return nil, err
	}
	block, ok := r.(ir.Block)
	if !ok {
		return nil, errors.Errorf("callback returned %T: not a binding block", r)
	}
	return block, nil
}

// MutateType runs the installed callback or the default hook.
func (m *Mutator) MutateType(n ir.Type) (ir.Type, error) {
	cb, ok := m.hooks[VisitType]
	if !ok {
		return m.Base.MutateType(n)
	}
	r, err := cb(n)
	if err != nil {
		return nil, err
	}
	typ, ok := r.(ir.Type)
	if !ok {
		return nil, errors.Errorf("callback returned %T: not a type", r)
	}
	return typ, nil
}
