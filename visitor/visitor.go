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

// Package visitor provides a read-only recursive traversal of the tree.
//
// A concrete visitor embeds Base, binds itself with Bind, and overrides the
// hooks it needs; the default hooks recurse into children in source order.
// Variable definition sites and use sites go through distinct hooks:
// VisitVarDef fires at definition sites only, VisitVar and VisitDataflowVar
// at use sites only.
package visitor

import (
	"github.com/pkg/errors"

	"github.com/gx-org/anfir/ir"
	"github.com/gx-org/anfir/visit"
)

// Visitor is the hook set of a read-only traversal.
type Visitor interface {
	// VisitExpr dispatches an expression to the hook of its variant.
	VisitExpr(ir.Expr) error

	VisitConstant(*ir.Constant) error
	VisitTuple(*ir.Tuple) error
	VisitVar(*ir.Var) error
	VisitDataflowVar(*ir.DataflowVar) error
	VisitShapeExpr(*ir.ShapeExpr) error
	VisitRuntimeDepShape(*ir.RuntimeDepShape) error
	VisitExternFunc(*ir.ExternFunc) error
	VisitGlobalVar(*ir.GlobalVar) error
	VisitFunction(*ir.Function) error
	VisitCall(*ir.Call) error
	VisitSeqExpr(*ir.SeqExpr) error
	VisitIf(*ir.If) error
	VisitOp(*ir.Op) error
	VisitTupleGetItem(*ir.TupleGetItem) error

	// VisitBinding dispatches a binding to the hook of its variant.
	VisitBinding(ir.Binding) error
	VisitVarBinding(*ir.VarBinding) error
	VisitMatchShape(*ir.MatchShape) error

	// VisitBindingBlock dispatches a block to the hook of its flavor.
	VisitBindingBlock(ir.Block) error
	VisitBlock(*ir.BindingBlock) error
	VisitDataflowBlock(*ir.DataflowBlock) error

	// VisitVarDef fires at variable definition sites.
	VisitVarDef(ir.VarExpr) error
	VisitDefVar(*ir.Var) error
	VisitDefDataflowVar(*ir.DataflowVar) error

	// VisitType fires on annotated types. No-op by default.
	VisitType(ir.Type) error

	// VisitSpan fires on the span of each visited node. No-op by default.
	VisitSpan(ir.Span) error

	// VisitPrimExpr fires on symbolic dimensions. No-op by default.
	VisitPrimExpr(ir.PrimExpr) error
}

// dispatch is the per-signature table shared by every visitor.
var dispatch = visit.NewDispatcher(visit.Funcs[visit.Nothing, Visitor]{
	Constant:        hook((Visitor).VisitConstant),
	Tuple:           hook((Visitor).VisitTuple),
	Var:             hook((Visitor).VisitVar),
	DataflowVar:     hook((Visitor).VisitDataflowVar),
	ShapeExpr:       hook((Visitor).VisitShapeExpr),
	RuntimeDepShape: hook((Visitor).VisitRuntimeDepShape),
	ExternFunc:      hook((Visitor).VisitExternFunc),
	GlobalVar:       hook((Visitor).VisitGlobalVar),
	Function:        hook((Visitor).VisitFunction),
	Call:            hook((Visitor).VisitCall),
	SeqExpr:         hook((Visitor).VisitSeqExpr),
	If:              hook((Visitor).VisitIf),
	Op:              hook((Visitor).VisitOp),
	TupleGetItem:    hook((Visitor).VisitTupleGetItem),
})

func hook[N any](f func(Visitor, N) error) func(N, Visitor) (visit.Nothing, error) {
	return func(n N, v Visitor) (visit.Nothing, error) {
		return visit.Nothing{}, f(v, n)
	}
}

// Base provides the default recursive traversal. Embed it in a visitor and
// call Bind with the outer visitor so that the defaults reach overridden
// hooks.
type Base struct {
	self Visitor
}

// Bind sets the outer visitor reached by the default hooks.
func (b *Base) Bind(self Visitor) { b.self = self }

// VisitExpr dispatches an expression to the hook of its variant.
func (b *Base) VisitExpr(e ir.Expr) error {
	_, err := dispatch.Visit(e, b.self)
	return err
}

// VisitConstant visits the span of the literal.
func (b *Base) VisitConstant(n *ir.Constant) error {
	return b.self.VisitSpan(n.Span())
}

// VisitTuple visits the fields in index order.
func (b *Base) VisitTuple(n *ir.Tuple) error {
	if err := b.self.VisitSpan(n.Span()); err != nil {
		return err
	}
	for _, field := range n.Fields {
		if err := b.self.VisitExpr(field); err != nil {
			return err
		}
	}
	return nil
}

// VisitVar fires at the use site of a variable.
func (b *Base) VisitVar(n *ir.Var) error {
	return b.visitVarUse(n.Span(), n.TypeAnn)
}

// VisitDataflowVar fires at the use site of a dataflow variable.
func (b *Base) VisitDataflowVar(n *ir.DataflowVar) error {
	return b.visitVarUse(n.Span(), n.TypeAnn)
}

func (b *Base) visitVarUse(span ir.Span, ann ir.Type) error {
	if err := b.self.VisitSpan(span); err != nil {
		return err
	}
	if ann == nil {
		return nil
	}
	return b.self.VisitType(ann)
}

// VisitShapeExpr visits the dimensions in index order.
func (b *Base) VisitShapeExpr(n *ir.ShapeExpr) error {
	if err := b.self.VisitSpan(n.Span()); err != nil {
		return err
	}
	for _, dim := range n.Dims {
		if err := b.self.VisitPrimExpr(dim); err != nil {
			return err
		}
	}
	return nil
}

// VisitRuntimeDepShape visits the span of the sentinel.
func (b *Base) VisitRuntimeDepShape(n *ir.RuntimeDepShape) error {
	return b.self.VisitSpan(n.Span())
}

// VisitExternFunc visits the span of the reference.
func (b *Base) VisitExternFunc(n *ir.ExternFunc) error {
	return b.self.VisitSpan(n.Span())
}

// VisitGlobalVar visits the span of the reference.
func (b *Base) VisitGlobalVar(n *ir.GlobalVar) error {
	return b.self.VisitSpan(n.Span())
}

// VisitFunction visits the parameter definitions in order, then the body.
func (b *Base) VisitFunction(n *ir.Function) error {
	if err := b.self.VisitSpan(n.Span()); err != nil {
		return err
	}
	for _, param := range n.Params {
		if err := b.self.VisitVarDef(param); err != nil {
			return err
		}
	}
	if n.RetType != nil {
		if err := b.self.VisitType(n.RetType); err != nil {
			return err
		}
	}
	return b.self.VisitExpr(n.Body)
}

// VisitCall visits the callee, then the arguments in index order.
func (b *Base) VisitCall(n *ir.Call) error {
	if err := b.self.VisitSpan(n.Span()); err != nil {
		return err
	}
	if err := b.self.VisitExpr(n.Callee); err != nil {
		return err
	}
	for _, typeArg := range n.TypeArgs {
		if err := b.self.VisitType(typeArg); err != nil {
			return err
		}
	}
	for _, arg := range n.Args {
		if err := b.self.VisitExpr(arg); err != nil {
			return err
		}
	}
	return nil
}

// VisitSeqExpr visits the blocks in order, then the body.
func (b *Base) VisitSeqExpr(n *ir.SeqExpr) error {
	if err := b.self.VisitSpan(n.Span()); err != nil {
		return err
	}
	for _, block := range n.Blocks {
		if err := b.self.VisitBindingBlock(block); err != nil {
			return err
		}
	}
	return b.self.VisitExpr(n.Body)
}

// VisitIf visits the condition, the then branch, then the else branch.
func (b *Base) VisitIf(n *ir.If) error {
	if err := b.self.VisitSpan(n.Span()); err != nil {
		return err
	}
	if err := b.self.VisitExpr(n.Cond); err != nil {
		return err
	}
	if err := b.self.VisitExpr(n.Then); err != nil {
		return err
	}
	return b.self.VisitExpr(n.Else)
}

// VisitOp visits the span of the operator reference.
func (b *Base) VisitOp(n *ir.Op) error {
	return b.self.VisitSpan(n.Span())
}

// VisitTupleGetItem visits the base tuple expression.
func (b *Base) VisitTupleGetItem(n *ir.TupleGetItem) error {
	if err := b.self.VisitSpan(n.Span()); err != nil {
		return err
	}
	return b.self.VisitExpr(n.Base)
}

// VisitBinding dispatches a binding to the hook of its variant.
func (b *Base) VisitBinding(bnd ir.Binding) error {
	switch bndT := bnd.(type) {
	case *ir.VarBinding:
		return b.self.VisitVarBinding(bndT)
	case *ir.MatchShape:
		return b.self.VisitMatchShape(bndT)
	default:
		return errors.Errorf("binding %T not supported", bnd)
	}
}

// VisitVarBinding visits the bound value, then the variable definition.
func (b *Base) VisitVarBinding(bnd *ir.VarBinding) error {
	if err := b.self.VisitExpr(bnd.Value); err != nil {
		return err
	}
	return b.self.VisitVarDef(bnd.Var)
}

// VisitMatchShape visits the value, the pattern dimensions, then the
// variable definition if the binding introduces one.
func (b *Base) VisitMatchShape(bnd *ir.MatchShape) error {
	if err := b.self.VisitExpr(bnd.Value); err != nil {
		return err
	}
	for _, dim := range bnd.Pattern {
		if err := b.self.VisitPrimExpr(dim); err != nil {
			return err
		}
	}
	if bnd.Var == nil {
		return nil
	}
	return b.self.VisitVarDef(bnd.Var)
}

// VisitBindingBlock dispatches a block to the hook of its flavor.
func (b *Base) VisitBindingBlock(block ir.Block) error {
	switch blockT := block.(type) {
	case *ir.DataflowBlock:
		return b.self.VisitDataflowBlock(blockT)
	case *ir.BindingBlock:
		return b.self.VisitBlock(blockT)
	default:
		return errors.Errorf("binding block %T not supported", block)
	}
}

// VisitBlock visits the bindings in order.
func (b *Base) VisitBlock(block *ir.BindingBlock) error {
	return b.visitBindings(block.List)
}

// VisitDataflowBlock visits the bindings in order.
func (b *Base) VisitDataflowBlock(block *ir.DataflowBlock) error {
	return b.visitBindings(block.List)
}

func (b *Base) visitBindings(bindings []ir.Binding) error {
	for _, bnd := range bindings {
		if err := b.self.VisitBinding(bnd); err != nil {
			return err
		}
	}
	return nil
}

// VisitVarDef dispatches a variable definition site to the hook of its
// variant.
func (b *Base) VisitVarDef(v ir.VarExpr) error {
	switch vT := v.(type) {
	case *ir.DataflowVar:
		return b.self.VisitDefDataflowVar(vT)
	case *ir.Var:
		return b.self.VisitDefVar(vT)
	default:
		return errors.Errorf("variable %T not supported", v)
	}
}

// VisitDefVar fires at the definition site of a variable.
func (b *Base) VisitDefVar(v *ir.Var) error {
	return b.self.VisitSpan(v.Span())
}

// VisitDefDataflowVar fires at the definition site of a dataflow variable.
func (b *Base) VisitDefDataflowVar(v *ir.DataflowVar) error {
	return b.self.VisitSpan(v.Span())
}

// VisitType does nothing.
func (b *Base) VisitType(ir.Type) error { return nil }

// VisitSpan does nothing.
func (b *Base) VisitSpan(ir.Span) error { return nil }

// VisitPrimExpr does nothing.
func (b *Base) VisitPrimExpr(ir.PrimExpr) error { return nil }
