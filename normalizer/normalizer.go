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

// Package normalizer rewrites a tree into administrative normal form.
//
// The normalizer is a mutator composed with a block builder: bindings are
// re-emitted through the builder instead of being rewritten in place, call
// arguments that are not atomic are let-bound to fresh variables, and
// function, sequence and conditional bodies are rewritten under fresh
// scopes. Variables whose binding allocated a fresh variable are remapped
// at every later use site.
package normalizer

import (
	"github.com/pkg/errors"

	"github.com/gx-org/anfir/builder"
	"github.com/gx-org/anfir/ir"
	"github.com/gx-org/anfir/mutator"
)

// Mutator rewrites a tree into administrative normal form by re-emitting it
// into a block builder.
type Mutator struct {
	mutator.Base
	bld   *builder.Builder
	remap map[*ir.Id]ir.VarExpr
}

// New returns a normalizing mutator emitting into the given builder.
func New(bld *builder.Builder) *Mutator {
	m := &Mutator{
		bld:   bld,
		remap: make(map[*ir.Id]ir.VarExpr),
	}
	m.Bind(m)
	return m
}

// Builder returns the block builder the mutator emits into.
func (m *Mutator) Builder() *builder.Builder { return m.bld }

// MutateExpr rewrites an expression, then stamps the inferred annotations
// on the result.
func (m *Mutator) MutateExpr(e ir.Expr) (ir.Expr, error) {
	r, err := m.Base.MutateExpr(e)
	if err != nil {
		return nil, err
	}
	return m.bld.Normalize(r), nil
}

// MutateVar substitutes the use site of a remapped variable.
func (m *Mutator) MutateVar(n *ir.Var) (ir.Expr, error) {
	if mapped, ok := m.remap[n.VID]; ok {
		return mapped, nil
	}
	return n, nil
}

// MutateDataflowVar substitutes the use site of a remapped variable.
func (m *Mutator) MutateDataflowVar(n *ir.DataflowVar) (ir.Expr, error) {
	if mapped, ok := m.remap[n.VID]; ok {
		return mapped, nil
	}
	return n, nil
}

// MutateCall rewrites the callee and the arguments, let-binding any
// argument that is not atomic.
func (m *Mutator) MutateCall(n *ir.Call) (ir.Expr, error) {
	callee, err := m.Self().MutateExpr(n.Callee)
	if err != nil {
		return nil, err
	}
	unchanged := callee == n.Callee
	args := make([]ir.Expr, len(n.Args))
	for i, arg := range n.Args {
		newArg, err := m.Self().MutateExpr(arg)
		if err != nil {
			return nil, err
		}
		newArg, err = m.normalizeArgument(newArg)
		if err != nil {
			return nil, err
		}
		args[i] = newArg
		unchanged = unchanged && newArg == arg
	}
	if unchanged {
		return n, nil
	}
	return &ir.Call{Callee: callee, Args: args, Attrs: n.Attrs, TypeArgs: n.TypeArgs}, nil
}

// normalizeArgument let-binds an expression that may not appear as a call
// argument in normal form. Outside any open frame the expression is
// returned unchanged.
func (m *Mutator) normalizeArgument(e ir.Expr) (ir.Expr, error) {
	if ir.IsAtomic(e) || m.bld.OpenBlocks() == 0 {
		return e, nil
	}
	return m.bld.Emit(e, "")
}

// MutateFunction rewrites the parameter definitions, then the body under a
// fresh scope.
func (m *Mutator) MutateFunction(n *ir.Function) (ir.Expr, error) {
	unchanged := true
	params := make([]*ir.Var, len(n.Params))
	for i, param := range n.Params {
		newParam, err := m.MutateVarDef(param)
		if err != nil {
			return nil, err
		}
		params[i] = newParam.(*ir.Var)
		unchanged = unchanged && newParam == ir.VarExpr(param)
	}
	body, err := m.VisitWithNewScope(n.Body)
	if err != nil {
		return nil, err
	}
	if unchanged && body == n.Body {
		return n, nil
	}
	return &ir.Function{Params: params, Body: body, RetType: n.RetType, Attrs: n.Attrs}, nil
}

// MutateIf rewrites the condition, then each branch under its own scope.
// A branch becomes a sequence expression when bindings were emitted for it.
func (m *Mutator) MutateIf(n *ir.If) (ir.Expr, error) {
	cond, err := m.Self().MutateExpr(n.Cond)
	if err != nil {
		return nil, err
	}
	then, err := m.VisitWithNewScope(n.Then)
	if err != nil {
		return nil, err
	}
	els, err := m.VisitWithNewScope(n.Else)
	if err != nil {
		return nil, err
	}
	if cond == n.Cond && then == n.Then && els == n.Else {
		return n, nil
	}
	return &ir.If{Cond: cond, Then: then, Else: els}, nil
}

// MutateSeqExpr re-emits each block through the builder, then rewrites the
// body under a prologue block collecting the bindings the rewrite emits.
func (m *Mutator) MutateSeqExpr(n *ir.SeqExpr) (ir.Expr, error) {
	unchanged := true
	blocks := make([]ir.Block, 0, len(n.Blocks))
	for _, block := range n.Blocks {
		newBlock, err := m.MutateBindingBlock(block)
		if err != nil {
			return nil, err
		}
		if len(newBlock.Bindings()) > 0 {
			blocks = append(blocks, newBlock)
		}
		unchanged = unchanged && newBlock == block
	}

	m.bld.BeginBindingBlock()
	body, err := m.Self().MutateExpr(n.Body)
	if err != nil {
		return nil, err
	}
	prologue, err := m.bld.EndBlock()
	if err != nil {
		return nil, err
	}
	if len(prologue.Bindings()) > 0 {
		blocks = append(blocks, prologue)
		unchanged = false
	}

	if unchanged && body == n.Body {
		return n, nil
	}
	return &ir.SeqExpr{Blocks: blocks, Body: body}, nil
}

// MutateBindingBlock opens a scope of the block's flavor on the builder,
// re-emits every binding, and seals the scope.
func (m *Mutator) MutateBindingBlock(block ir.Block) (ir.Block, error) {
	if block.Dataflow() {
		m.bld.BeginDataflowBlock()
	} else {
		m.bld.BeginBindingBlock()
	}
	for _, bnd := range block.Bindings() {
		if err := m.MutateBinding(bnd); err != nil {
			return nil, err
		}
	}
	return m.bld.EndBlock()
}

// MutateBinding dispatches a binding to the hook of its variant.
func (m *Mutator) MutateBinding(bnd ir.Binding) error {
	switch bndT := bnd.(type) {
	case *ir.VarBinding:
		return m.MutateVarBinding(bndT)
	case *ir.MatchShape:
		return m.MutateMatchShape(bndT)
	default:
		return errors.Errorf("binding %T not supported", bnd)
	}
}

// MutateVarBinding rewrites the bound value and re-emits the binding.
// When the rewrite changes the value's annotations, a fresh variable with
// the same identifier is emitted instead and every later use of the old
// variable is remapped to it.
func (m *Mutator) MutateVarBinding(bnd *ir.VarBinding) error {
	newValue, err := m.Self().MutateExpr(bnd.Value)
	if err != nil {
		return err
	}
	newVar, err := m.MutateVarDef(bnd.Var)
	if err != nil {
		return err
	}

	// Fast path: re-emit the original binding when nothing changed.
	if newVar == bnd.Var && newValue == bnd.Value {
		_, err := m.bld.EmitNormalized(bnd)
		return err
	}

	temp := m.WithShapeAndType(newVar, newValue.Shape(), newValue.CheckedType())
	if temp != newVar {
		newVar = temp
		m.remap[bnd.Var.Id()] = newVar
	}
	_, err = m.bld.EmitNormalized(&ir.VarBinding{Var: newVar, Value: newValue})
	return err
}

// MutateMatchShape rewrites the value and the pattern and re-emits the
// binding.
func (m *Mutator) MutateMatchShape(bnd *ir.MatchShape) error {
	newValue, err := m.Self().MutateExpr(bnd.Value)
	if err != nil {
		return err
	}
	unchanged := newValue == bnd.Value
	pattern := make([]ir.PrimExpr, len(bnd.Pattern))
	for i, dim := range bnd.Pattern {
		newDim, err := m.Self().MutatePrimExpr(dim)
		if err != nil {
			return err
		}
		pattern[i] = newDim
		unchanged = unchanged && newDim == dim
	}
	newVar := bnd.Var
	if bnd.Var != nil {
		newVar, err = m.MutateVarDef(bnd.Var)
		if err != nil {
			return err
		}
		unchanged = unchanged && newVar == bnd.Var
	}
	if unchanged {
		_, err := m.bld.EmitNormalized(bnd)
		return err
	}
	_, err = m.bld.EmitNormalized(&ir.MatchShape{Value: newValue, Pattern: pattern, Var: newVar})
	return err
}

// MutateVarDef rewrites a variable definition site: its annotations are
// rewritten, and a fresh variable with the same identifier is returned when
// they changed.
func (m *Mutator) MutateVarDef(v ir.VarExpr) (ir.VarExpr, error) {
	typeAnn := v.TypeAnnotation()
	if typeAnn != nil {
		newTypeAnn, err := m.Self().MutateType(typeAnn)
		if err != nil {
			return nil, err
		}
		typeAnn = newTypeAnn
	}
	shapeAnn := v.ShapeAnnotation()
	if shapeAnn != nil {
		newShapeAnn, err := m.Self().MutateExpr(shapeAnn)
		if err != nil {
			return nil, err
		}
		shapeAnn = newShapeAnn
	}
	if typeAnn == v.TypeAnnotation() && shapeAnn == v.ShapeAnnotation() {
		return v, nil
	}
	return remakeVar(v, typeAnn, shapeAnn), nil
}

// VisitWithNewScope rewrites an expression under a fresh binding scope.
// When the rewrite emits bindings, they are collected in a sequence
// expression wrapping the result; a result that is not atomic is itself
// let-bound so the sequence body refers to it by variable.
func (m *Mutator) VisitWithNewScope(e ir.Expr) (ir.Expr, error) {
	m.bld.BeginBindingBlock()
	r, err := m.Self().MutateExpr(e)
	if err != nil {
		return nil, err
	}
	if m.bld.PendingBindings() > 0 && !ir.IsAtomic(r) {
		if _, isSeq := r.(*ir.SeqExpr); !isSeq {
			v, err := m.bld.Emit(r, "")
			if err != nil {
				return nil, err
			}
			r = v
		}
	}
	block, err := m.bld.EndBlock()
	if err != nil {
		return nil, err
	}
	if len(block.Bindings()) == 0 {
		return r, nil
	}
	return &ir.SeqExpr{Blocks: []ir.Block{block}, Body: r}, nil
}

// LookupBinding returns the bound value of a variable recorded by the
// builder, or false for variables without a binding, such as function
// parameters.
func (m *Mutator) LookupBinding(v ir.VarExpr) (ir.Expr, bool) {
	return m.bld.Lookup(v)
}

// WithShapeAndType returns the variable unchanged when its stamped
// annotations already match the given shape and type, else a fresh variable
// with the same identifier carrying them.
func (m *Mutator) WithShapeAndType(v ir.VarExpr, shape ir.Expr, typ ir.Type) ir.VarExpr {
	shapeMatches := v.Shape() == shape || m.bld.CanProveShapeEqual(v.Shape(), shape)
	typeMatches := ir.TypesEqual(v.CheckedType(), typ)
	if shapeMatches && typeMatches {
		return v
	}
	newVar := remakeVar(v, v.TypeAnnotation(), v.ShapeAnnotation())
	newVar.SetShape(shape)
	newVar.SetCheckedType(typ)
	return newVar
}

// remakeVar returns a fresh variable of the same flavor with the same
// identifier and the given user annotations.
func remakeVar(v ir.VarExpr, typeAnn ir.Type, shapeAnn ir.Expr) ir.VarExpr {
	inner := ir.Var{VID: v.Id(), TypeAnn: typeAnn, ShapeAnn: shapeAnn}
	if _, isDataflow := v.(*ir.DataflowVar); isDataflow {
		return &ir.DataflowVar{Var: inner}
	}
	return &inner
}
