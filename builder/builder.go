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

// Package builder incrementally constructs administrative-normal-form IR.
//
// A builder owns a stack of open block frames. Emitting appends a binding to
// the top frame, allocating a fresh variable; emitting a call first runs the
// operator's shape and type inference so the tree stays annotated as it is
// assembled. Closing the top frame seals it into a binding block.
//
// Structural misuse (emitting without an open frame, violating dataflow
// scoping) is fatal: it is reported to the diagnostic context and returned
// as an error. Inference weaknesses are not: a call whose operator has no
// registered rules is emitted with the annotations left empty.
package builder

import (
	"github.com/pkg/errors"

	"github.com/gx-org/anfir/base/ordered"
	"github.com/gx-org/anfir/diag"
	"github.com/gx-org/anfir/ir"
	"github.com/gx-org/anfir/names"
	"github.com/gx-org/anfir/oracle"
	"github.com/gx-org/anfir/registry"
)

// Errors reported by the builder. All but ErrUnclosedBlock are fatal.
var (
	// ErrNoOpenBlock reports an emission or lookup without an open frame.
	ErrNoOpenBlock = errors.New("no block is being built")

	// ErrUnclosedBlock reports a builder closed with open frames.
	// The partial content of the frames is discarded.
	ErrUnclosedBlock = errors.New("builder closed with open blocks")

	// ErrUnknownVar reports a lookup of a variable with no binding.
	ErrUnknownVar = errors.New("variable is not in the binding table")

	// ErrBadMatchShapeOperand reports a match-shape on a value whose
	// type is neither a tensor type nor a shape type.
	ErrBadMatchShapeOperand = errors.New("match-shape operand must be a tensor or a shape")

	// ErrOutputOutsideDataflow reports an output emission outside a
	// dataflow block.
	ErrOutputOutsideDataflow = errors.New("output emitted outside a dataflow block")

	// ErrDataflowScopeViolation reports a dataflow variable defined
	// outside a dataflow block, or an ordinary variable bound where a
	// dataflow variable is required.
	ErrDataflowScopeViolation = errors.New("dataflow scope violation")
)

// Default name hints of variables emitted without one.
const (
	dataflowHint = "lv"
	bindingHint  = "gv"
)

type (
	// frame is an open block: bindings accumulated since the matching
	// begin call.
	frame struct {
		bindings []ir.Binding
		dataflow bool
	}

	// Builder constructs binding blocks.
	Builder struct {
		frames []frame
		vars   *ordered.Map[*ir.Id, ir.Expr]
		names  *names.Table
		reg    registry.Registry
		orc    oracle.Oracle
		diags  diag.Context
	}
)

// New returns a builder consulting the given operator registry, symbolic
// equality oracle and diagnostic context. Nil collaborators default to the
// empty registry, the structural oracle and a discarding context.
func New(reg registry.Registry, orc oracle.Oracle, diags diag.Context) *Builder {
	if reg == nil {
		reg = registry.Empty()
	}
	if orc == nil {
		orc = oracle.Structural()
	}
	if diags == nil {
		diags = diag.Discard()
	}
	return &Builder{
		vars:  ordered.NewMap[*ir.Id, ir.Expr](),
		names: names.New(),
		reg:   reg,
		orc:   orc,
		diags: diags,
	}
}

// Names returns the name table owned by the builder.
func (b *Builder) Names() *names.Table { return b.names }

// BeginDataflowBlock opens a dataflow frame on top of the stack.
func (b *Builder) BeginDataflowBlock() {
	b.frames = append(b.frames, frame{dataflow: true})
}

// BeginBindingBlock opens a plain binding frame on top of the stack.
func (b *Builder) BeginBindingBlock() {
	b.frames = append(b.frames, frame{})
}

// EndBlock seals the top frame and returns it as a block.
func (b *Builder) EndBlock() (ir.Block, error) {
	cur, err := b.current()
	if err != nil {
		return nil, err
	}
	b.frames = b.frames[:len(b.frames)-1]
	inner := ir.BindingBlock{List: cur.bindings}
	if cur.dataflow {
		return &ir.DataflowBlock{BindingBlock: inner}, nil
	}
	return &inner, nil
}

// OpenBlocks returns the number of frames still open.
func (b *Builder) OpenBlocks() int { return len(b.frames) }

// PendingBindings returns the number of bindings in the top frame, zero
// when no frame is open.
func (b *Builder) PendingBindings() int {
	if len(b.frames) == 0 {
		return 0
	}
	return len(b.frames[len(b.frames)-1].bindings)
}

// Close discards any frame left open. Open frames are a non-fatal
// diagnostic: their partial content is lost but the builder's tables remain
// valid.
func (b *Builder) Close() error {
	if len(b.frames) == 0 {
		return nil
	}
	err := errors.Wrapf(ErrUnclosedBlock, "%d open", len(b.frames))
	b.diags.Emit(diag.Warning, ir.Span{}, err)
	b.frames = nil
	return err
}

// Emit binds expr to a fresh variable in the top frame and returns the
// variable: a dataflow variable inside a dataflow frame, an ordinary
// variable elsewhere. When expr is a call, its operator's shape and type
// inference runs first and the results are stamped on both the variable and
// a fresh call node recorded in the binding table.
func (b *Builder) Emit(expr ir.Expr, hint string) (ir.VarExpr, error) {
	cur, err := b.current()
	if err != nil {
		return nil, err
	}
	return b.emit(expr, cur.dataflow, hint)
}

func (b *Builder) emit(expr ir.Expr, dataflow bool, hint string) (ir.VarExpr, error) {
	cur, err := b.current()
	if err != nil {
		return nil, err
	}
	if hint == "" {
		hint = bindingHint
		if dataflow {
			hint = dataflowHint
		}
	}
	v := b.newVar(dataflow, hint)
	if call, ok := expr.(*ir.Call); ok {
		expr = b.inferCall(call, v)
	} else {
		// The value is stored as-is; its stamped annotations carry
		// over to the fresh variable.
		if shape := expr.Shape(); shape != nil {
			v.SetShape(shape)
		}
		if typ := expr.CheckedType(); typ != nil {
			v.SetCheckedType(typ)
		}
	}
	cur.bindings = append(cur.bindings, &ir.VarBinding{Var: v, Value: expr})
	b.vars.Store(v.Id(), expr)
	return v, nil
}

// inferCall runs eager shape and type inference for a call being emitted.
// The inferred annotations are stamped on the variable and on a fresh call
// node with the same operands, leaving the caller's node untouched.
func (b *Builder) inferCall(call *ir.Call, v ir.VarExpr) *ir.Call {
	shape, shapeOK := b.inferShape(call)
	typ, typeOK := b.inferType(call)

	newCall := &ir.Call{
		Callee:   call.Callee,
		Args:     call.Args,
		Attrs:    call.Attrs,
		TypeArgs: call.TypeArgs,
	}
	newCall.SetSpan(call.Span())
	if shapeOK {
		v.SetShape(shape)
		newCall.SetShape(shape)
	}
	if typeOK {
		v.SetCheckedType(typ)
		newCall.SetCheckedType(typ)
	}
	return newCall
}

func (b *Builder) newVar(dataflow bool, hint string) ir.VarExpr {
	id := b.names.Fresh(hint)
	if dataflow {
		return &ir.DataflowVar{Var: ir.Var{VID: id}}
	}
	return &ir.Var{VID: id}
}

// EmitBinding appends an existing variable binding to the top frame.
// Inside a dataflow frame the bound variable must be a dataflow variable;
// outside, it must not be.
func (b *Builder) EmitBinding(bnd *ir.VarBinding) (ir.VarExpr, error) {
	cur, err := b.current()
	if err != nil {
		return nil, err
	}
	if err := b.checkBindingScope(cur, bnd.Var); err != nil {
		return nil, err
	}
	cur.bindings = append(cur.bindings, bnd)
	b.vars.Store(bnd.Var.Id(), bnd.Value)
	return bnd.Var, nil
}

func (b *Builder) checkBindingScope(cur *frame, v ir.VarExpr) error {
	_, isDataflow := v.(*ir.DataflowVar)
	if cur.dataflow && !isDataflow {
		return b.fatalf(v.Span(), ErrDataflowScopeViolation,
			"variable %s bound in a dataflow block must be a dataflow variable", v.Id())
	}
	if !cur.dataflow && isDataflow {
		return b.fatalf(v.Span(), ErrDataflowScopeViolation,
			"dataflow variable %s defined outside a dataflow block", v.Id())
	}
	return nil
}

// EmitMatchShape binds the shape of value to pattern, introducing a fresh
// variable. The value must be typed as a tensor or as a shape: for a tensor
// the variable is a tensor of the pattern's rank with the pattern as shape;
// for a shape it is shape-typed and carries no shape.
func (b *Builder) EmitMatchShape(value ir.Expr, pattern []ir.PrimExpr, hint string) (ir.VarExpr, error) {
	cur, err := b.current()
	if err != nil {
		return nil, err
	}
	if hint == "" {
		hint = bindingHint
		if cur.dataflow {
			hint = dataflowHint
		}
	}
	v := b.newVar(cur.dataflow, hint)
	switch typ := value.CheckedType().(type) {
	case *ir.ShapeType:
		v.SetCheckedType(&ir.ShapeType{})
	case *ir.DynTensorType:
		v.SetShape(&ir.ShapeExpr{Dims: pattern})
		v.SetCheckedType(&ir.DynTensorType{Rank: len(pattern), DType: typ.DType})
	default:
		return nil, b.fatalf(value.Span(), ErrBadMatchShapeOperand, "value has type %v", typ)
	}
	cur.bindings = append(cur.bindings, &ir.MatchShape{Value: value, Pattern: pattern, Var: v})
	return v, nil
}

// EmitMatchShapeBinding appends an existing match-shape binding to the top
// frame. A match-shape variable may outlive a dataflow block, so inside a
// dataflow frame the bound variable must not be a dataflow variable.
func (b *Builder) EmitMatchShapeBinding(bnd *ir.MatchShape) (ir.VarExpr, error) {
	cur, err := b.current()
	if err != nil {
		return nil, err
	}
	if bnd.Var != nil && cur.dataflow {
		if _, isDataflow := bnd.Var.(*ir.DataflowVar); isDataflow {
			return nil, b.fatalf(bnd.Var.Span(), ErrDataflowScopeViolation,
				"match-shape cannot bind dataflow variable %s", bnd.Var.Id())
		}
	}
	cur.bindings = append(cur.bindings, bnd)
	return bnd.Var, nil
}

// EmitOutput binds expr to a fresh ordinary variable inside a dataflow
// frame, exporting the value from the block.
func (b *Builder) EmitOutput(expr ir.Expr, hint string) (ir.VarExpr, error) {
	cur, err := b.current()
	if err != nil {
		return nil, err
	}
	if !cur.dataflow {
		return nil, b.fatalf(expr.Span(), ErrOutputOutsideDataflow, "cannot emit output")
	}
	return b.emit(expr, false, hint)
}

// EmitOutputBinding appends an existing binding of an ordinary variable
// inside a dataflow frame.
func (b *Builder) EmitOutputBinding(bnd *ir.VarBinding) (ir.VarExpr, error) {
	cur, err := b.current()
	if err != nil {
		return nil, err
	}
	if !cur.dataflow {
		return nil, b.fatalf(bnd.Var.Span(), ErrOutputOutsideDataflow, "cannot emit output")
	}
	if _, isDataflow := bnd.Var.(*ir.DataflowVar); isDataflow {
		return nil, b.fatalf(bnd.Var.Span(), ErrDataflowScopeViolation,
			"output variable %s must not be a dataflow variable", bnd.Var.Id())
	}
	cur.bindings = append(cur.bindings, bnd)
	b.vars.Store(bnd.Var.Id(), bnd.Value)
	return bnd.Var, nil
}

// EmitNormalized appends an already-normalized binding to the top frame
// without re-running inference. The binding table is updated for variable
// bindings.
func (b *Builder) EmitNormalized(bnd ir.Binding) (ir.VarExpr, error) {
	cur, err := b.current()
	if err != nil {
		return nil, err
	}
	switch bndT := bnd.(type) {
	case *ir.VarBinding:
		// An ordinary variable is allowed in a dataflow frame here:
		// re-emitting a dataflow block reaches its output bindings.
		if _, isDataflow := bndT.Var.(*ir.DataflowVar); isDataflow && !cur.dataflow {
			return nil, b.fatalf(bndT.Var.Span(), ErrDataflowScopeViolation,
				"dataflow variable %s defined outside a dataflow block", bndT.Var.Id())
		}
		cur.bindings = append(cur.bindings, bndT)
		b.vars.Store(bndT.Var.Id(), bndT.Value)
		return bndT.Var, nil
	case *ir.MatchShape:
		cur.bindings = append(cur.bindings, bndT)
		return bndT.Var, nil
	default:
		return nil, b.diags.EmitFatal(ir.Span{}, errors.Errorf("binding %T not supported", bnd))
	}
}

// LookupVar returns the bound value of a variable. An unbound variable is a
// fatal diagnostic, as is a lookup without an open frame.
func (b *Builder) LookupVar(v ir.VarExpr) (ir.Expr, error) {
	if _, err := b.current(); err != nil {
		return nil, err
	}
	value, ok := b.Lookup(v)
	if !ok {
		return nil, b.fatalf(v.Span(), ErrUnknownVar, "%s", v.Id())
	}
	return value, nil
}

// Lookup returns the bound value of a variable, or false when the variable
// has no binding, such as a function parameter.
func (b *Builder) Lookup(v ir.VarExpr) (ir.Expr, bool) {
	return b.vars.Load(v.Id())
}

// CanProveShapeEqual returns true when both expressions are the same
// reference, or when both are shape literals of equal rank whose
// corresponding dimensions are proved equal by the oracle. Anything else is
// a conservative false.
func (b *Builder) CanProveShapeEqual(lhs, rhs ir.Expr) bool {
	if lhs == rhs {
		return true
	}
	lhsShape, lhsOK := lhs.(*ir.ShapeExpr)
	rhsShape, rhsOK := rhs.(*ir.ShapeExpr)
	if !lhsOK || !rhsOK {
		return false
	}
	if len(lhsShape.Dims) != len(rhsShape.Dims) {
		return false
	}
	for i, lhsDim := range lhsShape.Dims {
		if !b.orc.CanProveEqual(lhsDim, rhsShape.Dims[i]) {
			return false
		}
	}
	return true
}

// Normalize stamps the inferred annotations on a call: the shape slot when
// inference produced a shape literal, and the checked type. Other
// expressions are returned unchanged. Normalize is idempotent.
func (b *Builder) Normalize(expr ir.Expr) ir.Expr {
	call, ok := expr.(*ir.Call)
	if !ok {
		return expr
	}
	if shape, ok := b.inferShape(call); ok {
		if shapeExpr, ok := shape.(*ir.ShapeExpr); ok {
			call.SetShape(shapeExpr)
		}
	}
	if typ, ok := b.inferType(call); ok {
		call.SetCheckedType(typ)
	}
	return call
}

// inferShape consults the operator registry for the shape of a call.
// A callee that is not an operator, or an operator without a shape rule,
// reports unknown.
func (b *Builder) inferShape(call *ir.Call) (ir.Expr, bool) {
	op, ok := call.Callee.(*ir.Op)
	if !ok {
		return nil, false
	}
	entry, ok := b.reg.Lookup(op)
	if !ok || entry.InferShape == nil {
		return nil, false
	}
	return entry.InferShape(call, b.diags)
}

// inferType consults the operator registry for the type of a call.
func (b *Builder) inferType(call *ir.Call) (ir.Type, bool) {
	op, ok := call.Callee.(*ir.Op)
	if !ok {
		return nil, false
	}
	entry, ok := b.reg.Lookup(op)
	if !ok || entry.InferType == nil {
		return nil, false
	}
	return entry.InferType(call, b.diags)
}

func (b *Builder) current() (*frame, error) {
	if len(b.frames) == 0 {
		return nil, b.fatalf(ir.Span{}, ErrNoOpenBlock, "cannot access the current block")
	}
	return &b.frames[len(b.frames)-1], nil
}

func (b *Builder) fatalf(span ir.Span, sentinel error, format string, args ...any) error {
	return b.diags.EmitFatal(span, errors.Wrapf(sentinel, format, args...))
}
