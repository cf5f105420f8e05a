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

// Package mutator provides a rewriting traversal of the tree.
//
// The default hooks rebuild each node from the mutated children. When no
// child changed, the original node is returned by identity, so structural
// sharing and stamped annotations are preserved. The per-slot identity
// checks are what make a default-only mutator the identity function.
//
// This mutator rewrites bindings transparently: blocks are rebuilt in place
// and no scope is opened. The normalizer package composes a mutator with a
// block builder to re-emit bindings instead.
package mutator

import (
	"github.com/pkg/errors"

	"github.com/gx-org/anfir/ir"
	"github.com/gx-org/anfir/visit"
)

// Mutator is the hook set of a rewriting traversal.
type Mutator interface {
	// MutateExpr dispatches an expression to the hook of its variant.
	MutateExpr(ir.Expr) (ir.Expr, error)

	MutateConstant(*ir.Constant) (ir.Expr, error)
	MutateTuple(*ir.Tuple) (ir.Expr, error)
	MutateVar(*ir.Var) (ir.Expr, error)
	MutateDataflowVar(*ir.DataflowVar) (ir.Expr, error)
	MutateShapeExpr(*ir.ShapeExpr) (ir.Expr, error)
	MutateRuntimeDepShape(*ir.RuntimeDepShape) (ir.Expr, error)
	MutateExternFunc(*ir.ExternFunc) (ir.Expr, error)
	MutateGlobalVar(*ir.GlobalVar) (ir.Expr, error)
	MutateFunction(*ir.Function) (ir.Expr, error)
	MutateCall(*ir.Call) (ir.Expr, error)
	MutateSeqExpr(*ir.SeqExpr) (ir.Expr, error)
	MutateIf(*ir.If) (ir.Expr, error)
	MutateOp(*ir.Op) (ir.Expr, error)
	MutateTupleGetItem(*ir.TupleGetItem) (ir.Expr, error)

	// MutateBindingBlock rewrites a block. The default rewrites the
	// bound values in place without opening a scope.
	MutateBindingBlock(ir.Block) (ir.Block, error)

	// MutateType rewrites a type annotation. Identity by default.
	MutateType(ir.Type) (ir.Type, error)

	// MutatePrimExpr rewrites a symbolic dimension. Identity by default.
	MutatePrimExpr(ir.PrimExpr) (ir.PrimExpr, error)
}

// dispatch is the per-signature table shared by every mutator.
var dispatch = visit.NewDispatcher(visit.Funcs[ir.Expr, Mutator]{
	Constant:        hook((Mutator).MutateConstant),
	Tuple:           hook((Mutator).MutateTuple),
	Var:             hook((Mutator).MutateVar),
	DataflowVar:     hook((Mutator).MutateDataflowVar),
	ShapeExpr:       hook((Mutator).MutateShapeExpr),
	RuntimeDepShape: hook((Mutator).MutateRuntimeDepShape),
	ExternFunc:      hook((Mutator).MutateExternFunc),
	GlobalVar:       hook((Mutator).MutateGlobalVar),
	Function:        hook((Mutator).MutateFunction),
	Call:            hook((Mutator).MutateCall),
	SeqExpr:         hook((Mutator).MutateSeqExpr),
	If:              hook((Mutator).MutateIf),
	Op:              hook((Mutator).MutateOp),
	TupleGetItem:    hook((Mutator).MutateTupleGetItem),
})

func hook[N any](f func(Mutator, N) (ir.Expr, error)) func(N, Mutator) (ir.Expr, error) {
	return func(n N, m Mutator) (ir.Expr, error) {
		return f(m, n)
	}
}

// Base provides the default identity-preserving rewrite. Embed it in a
// mutator and call Bind with the outer mutator so that the defaults reach
// overridden hooks.
type Base struct {
	self Mutator
}

// Bind sets the outer mutator reached by the default hooks.
func (b *Base) Bind(self Mutator) { b.self = self }

// Self returns the outer mutator set by Bind.
func (b *Base) Self() Mutator { return b.self }

// MutateExpr dispatches an expression to the hook of its variant.
func (b *Base) MutateExpr(e ir.Expr) (ir.Expr, error) {
	return dispatch.Visit(e, b.self)
}

// MutateConstant returns the literal unchanged.
func (b *Base) MutateConstant(n *ir.Constant) (ir.Expr, error) { return n, nil }

// MutateVar returns the use site unchanged.
func (b *Base) MutateVar(n *ir.Var) (ir.Expr, error) { return n, nil }

// MutateDataflowVar returns the use site unchanged.
func (b *Base) MutateDataflowVar(n *ir.DataflowVar) (ir.Expr, error) { return n, nil }

// MutateRuntimeDepShape returns the sentinel unchanged.
func (b *Base) MutateRuntimeDepShape(n *ir.RuntimeDepShape) (ir.Expr, error) { return n, nil }

// MutateExternFunc returns the reference unchanged.
func (b *Base) MutateExternFunc(n *ir.ExternFunc) (ir.Expr, error) { return n, nil }

// MutateGlobalVar returns the reference unchanged.
func (b *Base) MutateGlobalVar(n *ir.GlobalVar) (ir.Expr, error) { return n, nil }

// MutateOp returns the operator reference unchanged.
func (b *Base) MutateOp(n *ir.Op) (ir.Expr, error) { return n, nil }

// MutateTuple rebuilds the tuple from the mutated fields.
func (b *Base) MutateTuple(n *ir.Tuple) (ir.Expr, error) {
	unchanged := true
	fields := make([]ir.Expr, len(n.Fields))
	for i, field := range n.Fields {
		newField, err := b.self.MutateExpr(field)
		if err != nil {
			return nil, err
		}
		fields[i] = newField
		unchanged = unchanged && newField == field
	}
	if unchanged {
		return n, nil
	}
	return &ir.Tuple{Fields: fields}, nil
}

// MutateShapeExpr rebuilds the shape from the mutated dimensions.
func (b *Base) MutateShapeExpr(n *ir.ShapeExpr) (ir.Expr, error) {
	unchanged := true
	dims := make([]ir.PrimExpr, len(n.Dims))
	for i, dim := range n.Dims {
		newDim, err := b.self.MutatePrimExpr(dim)
		if err != nil {
			return nil, err
		}
		dims[i] = newDim
		unchanged = unchanged && newDim == dim
	}
	if unchanged {
		return n, nil
	}
	return &ir.ShapeExpr{Dims: dims}, nil
}

// MutateFunction rebuilds the function from the mutated body.
func (b *Base) MutateFunction(n *ir.Function) (ir.Expr, error) {
	body, err := b.self.MutateExpr(n.Body)
	if err != nil {
		return nil, err
	}
	if body == n.Body {
		return n, nil
	}
	return &ir.Function{Params: n.Params, Body: body, RetType: n.RetType, Attrs: n.Attrs}, nil
}

// MutateCall rebuilds the call from the mutated callee and arguments.
func (b *Base) MutateCall(n *ir.Call) (ir.Expr, error) {
	callee, err := b.self.MutateExpr(n.Callee)
	if err != nil {
		return nil, err
	}
	unchanged := callee == n.Callee
	typeArgs := make([]ir.Type, len(n.TypeArgs))
	for i, typeArg := range n.TypeArgs {
		newTypeArg, err := b.self.MutateType(typeArg)
		if err != nil {
			return nil, err
		}
		typeArgs[i] = newTypeArg
		unchanged = unchanged && newTypeArg == typeArg
	}
	args := make([]ir.Expr, len(n.Args))
	for i, arg := range n.Args {
		newArg, err := b.self.MutateExpr(arg)
		if err != nil {
			return nil, err
		}
		args[i] = newArg
		unchanged = unchanged && newArg == arg
	}
	if unchanged {
		return n, nil
	}
	return &ir.Call{Callee: callee, Args: args, Attrs: n.Attrs, TypeArgs: typeArgs}, nil
}

// MutateSeqExpr rebuilds the sequence from the mutated blocks and body.
// Blocks left empty by the rewrite are dropped.
func (b *Base) MutateSeqExpr(n *ir.SeqExpr) (ir.Expr, error) {
	unchanged := true
	blocks := make([]ir.Block, 0, len(n.Blocks))
	for _, block := range n.Blocks {
		newBlock, err := b.self.MutateBindingBlock(block)
		if err != nil {
			return nil, err
		}
		if len(newBlock.Bindings()) > 0 {
			blocks = append(blocks, newBlock)
		}
		unchanged = unchanged && newBlock == block
	}
	body, err := b.self.MutateExpr(n.Body)
	if err != nil {
		return nil, err
	}
	if unchanged && body == n.Body {
		return n, nil
	}
	return &ir.SeqExpr{Blocks: blocks, Body: body}, nil
}

// MutateIf rebuilds the conditional from the mutated condition and branches.
func (b *Base) MutateIf(n *ir.If) (ir.Expr, error) {
	cond, err := b.self.MutateExpr(n.Cond)
	if err != nil {
		return nil, err
	}
	then, err := b.self.MutateExpr(n.Then)
	if err != nil {
		return nil, err
	}
	els, err := b.self.MutateExpr(n.Else)
	if err != nil {
		return nil, err
	}
	if cond == n.Cond && then == n.Then && els == n.Else {
		return n, nil
	}
	return &ir.If{Cond: cond, Then: then, Else: els}, nil
}

// MutateTupleGetItem rebuilds the projection from the mutated base.
func (b *Base) MutateTupleGetItem(n *ir.TupleGetItem) (ir.Expr, error) {
	base, err := b.self.MutateExpr(n.Base)
	if err != nil {
		return nil, err
	}
	if base == n.Base {
		return n, nil
	}
	return &ir.TupleGetItem{Base: base, Index: n.Index}, nil
}

// MutateBindingBlock rewrites the bound values of the block in place,
// without opening a scope.
func (b *Base) MutateBindingBlock(block ir.Block) (ir.Block, error) {
	unchanged := true
	bindings := make([]ir.Binding, len(block.Bindings()))
	for i, bnd := range block.Bindings() {
		newBnd, err := b.mutateBinding(bnd)
		if err != nil {
			return nil, err
		}
		bindings[i] = newBnd
		unchanged = unchanged && newBnd == bnd
	}
	if unchanged {
		return block, nil
	}
	if block.Dataflow() {
		return &ir.DataflowBlock{BindingBlock: ir.BindingBlock{List: bindings}}, nil
	}
	return &ir.BindingBlock{List: bindings}, nil
}

func (b *Base) mutateBinding(bnd ir.Binding) (ir.Binding, error) {
	switch bndT := bnd.(type) {
	case *ir.VarBinding:
		value, err := b.self.MutateExpr(bndT.Value)
		if err != nil {
			return nil, err
		}
		if value == bndT.Value {
			return bndT, nil
		}
		return &ir.VarBinding{Var: bndT.Var, Value: value}, nil
	case *ir.MatchShape:
		value, err := b.self.MutateExpr(bndT.Value)
		if err != nil {
			return nil, err
		}
		if value == bndT.Value {
			return bndT, nil
		}
		return &ir.MatchShape{Value: value, Pattern: bndT.Pattern, Var: bndT.Var}, nil
	default:
		return nil, errors.Errorf("binding %T not supported", bnd)
	}
}

// MutateType returns the type unchanged.
func (b *Base) MutateType(t ir.Type) (ir.Type, error) { return t, nil }

// MutatePrimExpr returns the dimension unchanged.
func (b *Base) MutatePrimExpr(d ir.PrimExpr) (ir.PrimExpr, error) { return d, nil }
