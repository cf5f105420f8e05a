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
	"github.com/gx-org/anfir/ir"
	"github.com/gx-org/anfir/visitor"
)

// Visitor adapts a callback mapping over the default read-only traversal.
type Visitor struct {
	visitor.Base
	hooks map[string]Callback
}

var _ visitor.Visitor = (*Visitor)(nil)

// NewVisitor returns a visitor whose hooks named in the mapping run the
// mapped callback instead of the default traversal. Non-canonical names in
// the mapping are an error.
func NewVisitor(hooks map[string]Callback) (*Visitor, error) {
	if err := checkNames(hooks); err != nil {
		return nil, err
	}
	v := &Visitor{hooks: hooks}
	v.Bind(v)
	return v, nil
}

func (v *Visitor) run(name string, n node, host func() error) error {
	if cb, ok := v.hooks[name]; ok {
		return cb(n)
	}
	return host()
}

// VisitExpr runs the installed callback or dispatches by variant.
func (v *Visitor) VisitExpr(e ir.Expr) error {
	return v.run(VisitExpr, e, func() error { return v.Base.VisitExpr(e) })
}

// VisitConstant runs the installed callback or the default hook.
func (v *Visitor) VisitConstant(n *ir.Constant) error {
	return v.run(VisitConstant, n, func() error { return v.Base.VisitConstant(n) })
}

// VisitTuple runs the installed callback or the default hook.
func (v *Visitor) VisitTuple(n *ir.Tuple) error {
	return v.run(VisitTuple, n, func() error { return v.Base.VisitTuple(n) })
}

// VisitVar runs the installed callback or the default hook.
func (v *Visitor) VisitVar(n *ir.Var) error {
	return v.run(VisitVar, n, func() error { return v.Base.VisitVar(n) })
}

// VisitDataflowVar runs the installed callback or the default hook.
func (v *Visitor) VisitDataflowVar(n *ir.DataflowVar) error {
	return v.run(VisitDataflowVar, n, func() error { return v.Base.VisitDataflowVar(n) })
}

// VisitShapeExpr runs the installed callback or the default hook.
func (v *Visitor) VisitShapeExpr(n *ir.ShapeExpr) error {
	return v.run(VisitShapeExpr, n, func() error { return v.Base.VisitShapeExpr(n) })
}

// VisitRuntimeDepShape runs the installed callback or the default hook.
func (v *Visitor) VisitRuntimeDepShape(n *ir.RuntimeDepShape) error {
	return v.run(VisitRuntimeDepShape, n, func() error { return v.Base.VisitRuntimeDepShape(n) })
}

// VisitExternFunc runs the installed callback or the default hook.
func (v *Visitor) VisitExternFunc(n *ir.ExternFunc) error {
	return v.run(VisitExternFunc, n, func() error { return v.Base.VisitExternFunc(n) })
}

// VisitGlobalVar runs the installed callback or the default hook.
func (v *Visitor) VisitGlobalVar(n *ir.GlobalVar) error {
	return v.run(VisitGlobalVar, n, func() error { return v.Base.VisitGlobalVar(n) })
}

// VisitFunction runs the installed callback or the default hook.
func (v *Visitor) VisitFunction(n *ir.Function) error {
	return v.run(VisitFunction, n, func() error { return v.Base.VisitFunction(n) })
}

// VisitCall runs the installed callback or the default hook.
func (v *Visitor) VisitCall(n *ir.Call) error {
	return v.run(VisitCall, n, func() error { return v.Base.VisitCall(n) })
}

// VisitSeqExpr runs the installed callback or the default hook.
func (v *Visitor) VisitSeqExpr(n *ir.SeqExpr) error {
	return v.run(VisitSeqExpr, n, func() error { return v.Base.VisitSeqExpr(n) })
}

// VisitIf runs the installed callback or the default hook.
func (v *Visitor) VisitIf(n *ir.If) error {
	return v.run(VisitIf, n, func() error { return v.Base.VisitIf(n) })
}

// VisitOp runs the installed callback or the default hook.
func (v *Visitor) VisitOp(n *ir.Op) error {
	return v.run(VisitOp, n, func() error { return v.Base.VisitOp(n) })
}

// VisitTupleGetItem runs the installed callback or the default hook.
func (v *Visitor) VisitTupleGetItem(n *ir.TupleGetItem) error {
	return v.run(VisitTupleGetItem, n, func() error { return v.Base.VisitTupleGetItem(n) })
}

// VisitBinding runs the installed callback or dispatches by variant.
func (v *Visitor) VisitBinding(n ir.Binding) error {
	return v.run(VisitBinding, n, func() error { return v.Base.VisitBinding(n) })
}

// VisitVarBinding runs the installed callback or the default hook.
func (v *Visitor) VisitVarBinding(n *ir.VarBinding) error {
	return v.run(VisitVarBinding, n, func() error { return v.Base.VisitVarBinding(n) })
}

// VisitMatchShape runs the installed callback or the default hook.
func (v *Visitor) VisitMatchShape(n *ir.MatchShape) error {
	return v.run(VisitMatchShape, n, func() error { return v.Base.VisitMatchShape(n) })
}

// VisitBindingBlock runs the installed callback or dispatches by flavor.
func (v *Visitor) VisitBindingBlock(n ir.Block) error {
	return v.run(VisitBindingBlock, n, func() error { return v.Base.VisitBindingBlock(n) })
}

// VisitBlock runs the installed callback or the default hook.
func (v *Visitor) VisitBlock(n *ir.BindingBlock) error {
	return v.run(VisitBlock, n, func() error { return v.Base.VisitBlock(n) })
}

// VisitDataflowBlock runs the installed callback or the default hook.
func (v *Visitor) VisitDataflowBlock(n *ir.DataflowBlock) error {
	return v.run(VisitDataflowBlock, n, func() error { return v.Base.VisitDataflowBlock(n) })
}

// VisitVarDef runs the installed callback or dispatches by variant.
func (v *Visitor) VisitVarDef(n ir.VarExpr) error {
	return v.run(VisitVarDef, n, func() error { return v.Base.VisitVarDef(n) })
}

// VisitDefVar runs the installed callback or the default hook.
func (v *Visitor) VisitDefVar(n *ir.Var) error {
	return v.run(VisitDefVar, n, func() error { return v.Base.VisitDefVar(n) })
}

// VisitDefDataflowVar runs the installed callback or the default hook.
func (v *Visitor) VisitDefDataflowVar(n *ir.DataflowVar) error {
	return v.run(VisitDefDataflowVar, n, func() error { return v.Base.VisitDefDataflowVar(n) })
}

// VisitType runs the installed callback or the default hook.
func (v *Visitor) VisitType(n ir.Type) error {
	return v.run(VisitType, n, func() error { return v.Base.VisitType(n) })
}

// VisitSpan runs the installed callback or the default hook.
func (v *Visitor) VisitSpan(n ir.Span) error {
	return v.run(VisitSpan, n, func() error { return v.Base.VisitSpan(n) })
}
