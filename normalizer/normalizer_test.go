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

package normalizer_test

import (
	"testing"

	"github.com/gx-org/backend/dtype"

	"github.com/gx-org/anfir/builder"
	"github.com/gx-org/anfir/diag"
	"github.com/gx-org/anfir/ir"
	"github.com/gx-org/anfir/normalizer"
	"github.com/gx-org/anfir/registry"
)

// zerosRegistry registers a "zeros" operator producing a fixed
// one-dimensional tensor.
func zerosRegistry() *registry.Map {
	reg := registry.NewMap()
	reg.Register("zeros", registry.Entry{
		InferShape: func(*ir.Call, diag.Context) (ir.Expr, bool) {
			return &ir.ShapeExpr{Dims: []ir.PrimExpr{ir.Dim(4)}}, true
		},
		InferType: func(*ir.Call, diag.Context) (ir.Type, bool) {
			return &ir.DynTensorType{Rank: 1, DType: dtype.Float32}, true
		},
	})
	return reg
}

func TestANFConversion(t *testing.T) {
	p := &ir.Var{VID: ir.NewId("p")}
	x := &ir.Var{VID: ir.NewId("x")}
	y := &ir.Var{VID: ir.NewId("y")}
	inner := &ir.Call{Callee: &ir.Op{Name: "g"}, Args: []ir.Expr{x}}
	outer := &ir.Call{Callee: &ir.Op{Name: "f"}, Args: []ir.Expr{inner}}
	cond := &ir.If{Cond: p, Then: outer, Else: y}

	m := normalizer.New(builder.New(nil, nil, nil))
	got, err := m.MutateExpr(cond)
	if err != nil {
		t.Fatalf("mutate error: %v", err)
	}

	newIf, ok := got.(*ir.If)
	if !ok {
		t.Fatalf("got %T but want a conditional", got)
	}
	if newIf.Cond != ir.Expr(p) {
		t.Errorf("condition was rewritten")
	}
	if newIf.Else != ir.Expr(y) {
		t.Errorf("atomic else branch was wrapped")
	}

	seq, ok := newIf.Then.(*ir.SeqExpr)
	if !ok {
		t.Fatalf("then branch is a %T but want a sequence", newIf.Then)
	}
	if len(seq.Blocks) != 1 {
		t.Fatalf("then branch has %d blocks but want 1", len(seq.Blocks))
	}
	bindings := seq.Blocks[0].Bindings()
	if len(bindings) != 2 {
		t.Fatalf("then branch has %d bindings but want 2", len(bindings))
	}

	first := bindings[0].(*ir.VarBinding)
	firstCall := first.Value.(*ir.Call)
	if firstCall.Callee.(*ir.Op).Name != "g" {
		t.Errorf("first binding is to %s but want g", firstCall.Callee.(*ir.Op).Name)
	}
	if firstCall.Args[0] != ir.Expr(x) {
		t.Errorf("inner call lost its argument")
	}

	second := bindings[1].(*ir.VarBinding)
	secondCall := second.Value.(*ir.Call)
	if secondCall.Callee.(*ir.Op).Name != "f" {
		t.Errorf("second binding is to %s but want f", secondCall.Callee.(*ir.Op).Name)
	}
	if secondCall.Args[0] != ir.Expr(first.Var) {
		t.Errorf("outer call argument is not the variable of the inner call")
	}

	if seq.Body != ir.Expr(second.Var) {
		t.Errorf("sequence body is not the variable of the outer call")
	}
	if first.Var.Id() == second.Var.Id() {
		t.Errorf("both bindings share one identifier")
	}
}

// anfSample builds an already-normalized dataflow program
//
//	seq { dataflow { v = add(a, b); y = v } } y
func anfSample(t *testing.T) (*ir.SeqExpr, ir.VarExpr) {
	t.Helper()
	a := &ir.Var{VID: ir.NewId("a")}
	b := &ir.Var{VID: ir.NewId("b")}
	bld := builder.New(nil, nil, nil)
	bld.BeginDataflowBlock()
	v, err := bld.Emit(&ir.Call{Callee: &ir.Op{Name: "add"}, Args: []ir.Expr{a, b}}, "")
	if err != nil {
		t.Fatalf("emit error: %v", err)
	}
	y, err := bld.EmitOutput(v, "")
	if err != nil {
		t.Fatalf("emit output error: %v", err)
	}
	block, err := bld.EndBlock()
	if err != nil {
		t.Fatalf("end block error: %v", err)
	}
	return &ir.SeqExpr{Blocks: []ir.Block{block}, Body: y}, y
}

func TestRebuildLaw(t *testing.T) {
	seq, y := anfSample(t)
	m := normalizer.New(builder.New(nil, nil, nil))
	got, err := m.MutateExpr(seq)
	if err != nil {
		t.Fatalf("mutate error: %v", err)
	}
	newSeq, ok := got.(*ir.SeqExpr)
	if !ok {
		t.Fatalf("got %T but want a sequence", got)
	}
	if newSeq.Body != ir.Expr(y) {
		t.Errorf("body was rewritten")
	}
	if len(newSeq.Blocks) != 1 {
		t.Fatalf("got %d blocks but want 1", len(newSeq.Blocks))
	}
	newBlock := newSeq.Blocks[0]
	if !newBlock.Dataflow() {
		t.Errorf("rebuilt block lost its dataflow flag")
	}
	oldBindings := seq.Blocks[0].Bindings()
	newBindings := newBlock.Bindings()
	if len(newBindings) != len(oldBindings) {
		t.Fatalf("got %d bindings but want %d", len(newBindings), len(oldBindings))
	}
	for i, bnd := range oldBindings {
		if newBindings[i] != bnd {
			t.Errorf("binding %d was rebuilt instead of re-emitted", i)
		}
	}
}

func TestRemapLaw(t *testing.T) {
	a := &ir.Var{VID: ir.NewId("a")}
	v := &ir.Var{VID: ir.NewId("v")}
	w := &ir.Var{VID: ir.NewId("w")}
	helper := &ir.Call{Callee: &ir.Op{Name: "g"}, Args: []ir.Expr{a}}
	zeros := &ir.Call{Callee: &ir.Op{Name: "zeros"}, Args: []ir.Expr{helper}}
	block := &ir.BindingBlock{List: []ir.Binding{
		&ir.VarBinding{Var: v, Value: zeros},
		&ir.VarBinding{Var: w, Value: v},
	}}
	seq := &ir.SeqExpr{Blocks: []ir.Block{block}, Body: w}

	m := normalizer.New(builder.New(zerosRegistry(), nil, nil))
	got, err := m.MutateExpr(seq)
	if err != nil {
		t.Fatalf("mutate error: %v", err)
	}
	newSeq := got.(*ir.SeqExpr)
	bindings := newSeq.Blocks[0].Bindings()
	if len(bindings) != 3 {
		t.Fatalf("got %d bindings but want 3", len(bindings))
	}

	// The second binding is the rewritten zeros call, bound to a fresh
	// variable carrying its inferred annotations under v's identifier.
	vBinding := bindings[1].(*ir.VarBinding)
	if vBinding.Var == ir.VarExpr(v) {
		t.Fatalf("binding variable was not replaced despite new annotations")
	}
	if vBinding.Var.Id() != v.VID {
		t.Errorf("fresh variable does not keep the original identifier")
	}
	wantType := &ir.DynTensorType{Rank: 1, DType: dtype.Float32}
	if !ir.TypesEqual(vBinding.Var.CheckedType(), wantType) {
		t.Errorf("fresh variable has checked type %v but want %v", vBinding.Var.CheckedType(), wantType)
	}

	// Every later use of v is remapped to the fresh variable.
	wBinding := bindings[2].(*ir.VarBinding)
	if wBinding.Value != ir.Expr(vBinding.Var) {
		t.Errorf("use of the remapped variable was not substituted")
	}
	mapped, err := m.MutateExpr(v)
	if err != nil {
		t.Fatalf("mutate error: %v", err)
	}
	if mapped != ir.Expr(vBinding.Var) {
		t.Errorf("remap does not cover later use sites")
	}
}

func TestLookupBinding(t *testing.T) {
	seq, _ := anfSample(t)
	m := normalizer.New(builder.New(nil, nil, nil))
	if _, err := m.MutateExpr(seq); err != nil {
		t.Fatalf("mutate error: %v", err)
	}
	binding := seq.Blocks[0].Bindings()[0].(*ir.VarBinding)
	got, ok := m.LookupBinding(binding.Var)
	if !ok {
		t.Fatalf("re-emitted binding not recorded")
	}
	if got != binding.Value {
		t.Errorf("lookup returned %T but want the bound value", got)
	}

	param := &ir.Var{VID: ir.NewId("param")}
	if _, ok := m.LookupBinding(param); ok {
		t.Errorf("unbound variable has a recorded binding")
	}
}

func TestWithShapeAndType(t *testing.T) {
	bld := builder.New(nil, nil, nil)
	m := normalizer.New(bld)

	typ := &ir.DynTensorType{Rank: 1, DType: dtype.Float32}
	shape := &ir.ShapeExpr{Dims: []ir.PrimExpr{ir.Dim(4)}}

	v := &ir.Var{VID: ir.NewId("v")}
	v.SetCheckedType(typ)
	v.SetShape(shape)
	same := m.WithShapeAndType(v, &ir.ShapeExpr{Dims: []ir.PrimExpr{ir.Dim(4)}}, &ir.DynTensorType{Rank: 1, DType: dtype.Float32})
	if same != ir.VarExpr(v) {
		t.Errorf("matching annotations allocated a fresh variable")
	}

	other := m.WithShapeAndType(v, shape, &ir.DynTensorType{Rank: 2, DType: dtype.Float32})
	if other == ir.VarExpr(v) {
		t.Fatalf("changed type did not allocate a fresh variable")
	}
	if other.Id() != v.VID {
		t.Errorf("fresh variable does not keep the identifier")
	}
	if other.CheckedType().(*ir.DynTensorType).Rank != 2 {
		t.Errorf("fresh variable does not carry the new type")
	}

	df := &ir.DataflowVar{Var: ir.Var{VID: ir.NewId("lv")}}
	fresh := m.WithShapeAndType(df, shape, typ)
	if _, ok := fresh.(*ir.DataflowVar); !ok {
		t.Errorf("fresh variable lost the dataflow flavor")
	}
}

func TestFunctionScope(t *testing.T) {
	x := &ir.Var{VID: ir.NewId("x")}
	inner := &ir.Call{Callee: &ir.Op{Name: "g"}, Args: []ir.Expr{x}}
	outer := &ir.Call{Callee: &ir.Op{Name: "f"}, Args: []ir.Expr{inner}}
	fn := &ir.Function{Params: []*ir.Var{x}, Body: outer}

	m := normalizer.New(builder.New(nil, nil, nil))
	got, err := m.MutateExpr(fn)
	if err != nil {
		t.Fatalf("mutate error: %v", err)
	}
	newFn := got.(*ir.Function)
	if newFn == fn {
		t.Fatalf("function with a non-normal body returned unchanged")
	}
	if newFn.Params[0] != x {
		t.Errorf("parameter was rewritten")
	}
	seq, ok := newFn.Body.(*ir.SeqExpr)
	if !ok {
		t.Fatalf("body is a %T but want a sequence", newFn.Body)
	}
	if len(seq.Blocks[0].Bindings()) != 2 {
		t.Errorf("got %d bindings but want 2", len(seq.Blocks[0].Bindings()))
	}

	// An atomic body opens and discards an empty scope.
	atomic := &ir.Function{Params: []*ir.Var{x}, Body: x}
	got, err = m.MutateExpr(atomic)
	if err != nil {
		t.Fatalf("mutate error: %v", err)
	}
	if got != ir.Expr(atomic) {
		t.Errorf("function with an atomic body was rebuilt")
	}
}

func TestNormalizerStampsAnnotations(t *testing.T) {
	call := &ir.Call{Callee: &ir.Op{Name: "zeros"}}
	m := normalizer.New(builder.New(zerosRegistry(), nil, nil))
	got, err := m.MutateExpr(call)
	if err != nil {
		t.Fatalf("mutate error: %v", err)
	}
	if got != ir.Expr(call) {
		t.Fatalf("call with no arguments was rebuilt")
	}
	if got.CheckedType() == nil {
		t.Errorf("rewriting did not stamp the inferred type")
	}
	shape, ok := got.Shape().(*ir.ShapeExpr)
	if !ok || len(shape.Dims) != 1 {
		t.Errorf("rewriting did not stamp the inferred shape")
	}
}
