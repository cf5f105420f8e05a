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

package ir_test

import (
	"testing"

	"github.com/gx-org/backend/dtype"

	"github.com/gx-org/anfir/ir"
	"github.com/gx-org/anfir/ir/exprkind"
)

func TestKinds(t *testing.T) {
	tests := []struct {
		expr ir.Expr
		want exprkind.Kind
	}{
		{expr: &ir.Constant{DType: dtype.Float32}, want: exprkind.Constant},
		{expr: &ir.Tuple{}, want: exprkind.Tuple},
		{expr: &ir.TupleGetItem{}, want: exprkind.TupleGetItem},
		{expr: &ir.Var{VID: ir.NewId("x")}, want: exprkind.Var},
		{expr: &ir.DataflowVar{Var: ir.Var{VID: ir.NewId("x")}}, want: exprkind.DataflowVar},
		{expr: &ir.GlobalVar{VID: ir.NewId("f")}, want: exprkind.GlobalVar},
		{expr: &ir.ExternFunc{Symbol: "memcpy"}, want: exprkind.ExternFunc},
		{expr: &ir.ShapeExpr{}, want: exprkind.ShapeExpr},
		{expr: &ir.RuntimeDepShape{}, want: exprkind.RuntimeDepShape},
		{expr: &ir.Op{Name: "add"}, want: exprkind.Op},
		{expr: &ir.Call{}, want: exprkind.Call},
		{expr: &ir.SeqExpr{}, want: exprkind.SeqExpr},
		{expr: &ir.If{}, want: exprkind.If},
		{expr: &ir.Function{}, want: exprkind.Function},
	}
	for i, test := range tests {
		if got := test.expr.Kind(); got != test.want {
			t.Errorf("test %d: got kind %v but want %v", i, got, test.want)
		}
	}
	if len(tests) != exprkind.Max() {
		t.Errorf("%d kinds tested but %d kinds declared", len(tests), exprkind.Max())
	}
}

func TestAnnotationSlots(t *testing.T) {
	call := &ir.Call{Callee: &ir.Op{Name: "add"}}
	if call.CheckedType() != nil {
		t.Errorf("checked type set before any inference")
	}
	if call.Shape() != nil {
		t.Errorf("shape set before any inference")
	}
	typ := &ir.DynTensorType{Rank: 1, DType: dtype.Float32}
	shape := &ir.ShapeExpr{Dims: []ir.PrimExpr{ir.Dim(4)}}
	call.SetCheckedType(typ)
	call.SetShape(shape)
	if call.CheckedType() != ir.Type(typ) {
		t.Errorf("got checked type %v but want %v", call.CheckedType(), typ)
	}
	if call.Shape() != ir.Expr(shape) {
		t.Errorf("got shape %v but want %v", call.Shape(), shape)
	}
}

func TestTypesEqual(t *testing.T) {
	tensor := &ir.DynTensorType{Rank: 2, DType: dtype.Float32}
	tests := []struct {
		a, b ir.Type
		want bool
	}{
		{a: tensor, b: &ir.DynTensorType{Rank: 2, DType: dtype.Float32}, want: true},
		{a: tensor, b: &ir.DynTensorType{Rank: 1, DType: dtype.Float32}, want: false},
		{a: tensor, b: &ir.DynTensorType{Rank: 2, DType: dtype.Int32}, want: false},
		{a: tensor, b: &ir.ShapeType{}, want: false},
		{a: &ir.ShapeType{}, b: &ir.ShapeType{}, want: true},
		{a: &ir.OpaqueType{}, b: &ir.OpaqueType{}, want: true},
		{
			a:    &ir.TupleType{Elements: []ir.Type{tensor, &ir.ShapeType{}}},
			b:    &ir.TupleType{Elements: []ir.Type{tensor, &ir.ShapeType{}}},
			want: true,
		},
		{
			a:    &ir.TupleType{Elements: []ir.Type{tensor}},
			b:    &ir.TupleType{Elements: []ir.Type{tensor, tensor}},
			want: false,
		},
		{
			a:    &ir.FuncType{Args: []ir.Type{tensor}, Ret: tensor},
			b:    &ir.FuncType{Args: []ir.Type{tensor}, Ret: tensor},
			want: true,
		},
		{
			a:    &ir.FuncType{Args: []ir.Type{tensor}, Ret: tensor},
			b:    &ir.FuncType{Args: []ir.Type{tensor}, Ret: &ir.ShapeType{}},
			want: false,
		},
		{a: nil, b: nil, want: true},
		{a: tensor, b: nil, want: false},
	}
	for i, test := range tests {
		if got := ir.TypesEqual(test.a, test.b); got != test.want {
			t.Errorf("test %d: TypesEqual(%v, %v) = %v but want %v", i, test.a, test.b, got, test.want)
		}
	}
}

func TestIsAtomic(t *testing.T) {
	x := &ir.Var{VID: ir.NewId("x")}
	call := &ir.Call{Callee: &ir.Op{Name: "add"}, Args: []ir.Expr{x, x}}
	tests := []struct {
		expr ir.Expr
		want bool
	}{
		{expr: x, want: true},
		{expr: &ir.DataflowVar{Var: ir.Var{VID: ir.NewId("lv")}}, want: true},
		{expr: &ir.GlobalVar{VID: ir.NewId("f")}, want: true},
		{expr: &ir.Constant{DType: dtype.Float32}, want: true},
		{expr: &ir.Op{Name: "add"}, want: true},
		{expr: &ir.ShapeExpr{Dims: []ir.PrimExpr{ir.Dim(2)}}, want: true},
		{expr: &ir.RuntimeDepShape{}, want: true},
		{expr: &ir.ExternFunc{Symbol: "memcpy"}, want: true},
		{expr: &ir.Tuple{Fields: []ir.Expr{x, x}}, want: true},
		{expr: call, want: false},
		{expr: &ir.Tuple{Fields: []ir.Expr{x, call}}, want: false},
		{expr: &ir.If{Cond: x, Then: x, Else: x}, want: false},
		{expr: &ir.SeqExpr{Body: x}, want: false},
		{expr: &ir.TupleGetItem{Base: x, Index: 0}, want: false},
	}
	for i, test := range tests {
		if got := ir.IsAtomic(test.expr); got != test.want {
			t.Errorf("test %d: IsAtomic(%T) = %v but want %v", i, test.expr, got, test.want)
		}
	}
}

func TestBlocks(t *testing.T) {
	x := &ir.Var{VID: ir.NewId("x")}
	bnd := &ir.VarBinding{Var: x, Value: &ir.Constant{DType: dtype.Float32}}
	plain := &ir.BindingBlock{List: []ir.Binding{bnd}}
	if plain.Dataflow() {
		t.Errorf("plain binding block reports dataflow")
	}
	dataflow := &ir.DataflowBlock{BindingBlock: ir.BindingBlock{List: []ir.Binding{bnd}}}
	if !dataflow.Dataflow() {
		t.Errorf("dataflow block does not report dataflow")
	}
	if len(dataflow.Bindings()) != 1 || dataflow.Bindings()[0] != ir.Binding(bnd) {
		t.Errorf("dataflow block does not return its bindings")
	}
}
