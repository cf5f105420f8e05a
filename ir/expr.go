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

package ir

import (
	"github.com/gx-org/backend/dtype"

	"github.com/gx-org/anfir/ir/exprkind"
)

// Attrs are opaque operator or function attributes.
type Attrs map[string]string

// ----------------------------------------------------------------------------
// Expression variants.
type (
	// Constant is an immediate scalar or dense tensor literal.
	// Data stores the elements row-major in their native encoding;
	// Dims is empty for a scalar.
	Constant struct {
		expr
		DType dtype.DataType
		Dims  []int
		Data  []byte
	}

	// Tuple is a heterogeneous product of expressions.
	Tuple struct {
		expr
		Fields []Expr
	}

	// TupleGetItem projects one field out of a tuple expression.
	TupleGetItem struct {
		expr
		Base  Expr
		Index int
	}

	// Var is a reference to a (possibly impure) binding.
	Var struct {
		expr
		VID      *Id
		TypeAnn  Type // user type annotation, may be nil
		ShapeAnn Expr // user shape annotation, may be nil
	}

	// DataflowVar is a variable whose definition and uses are confined
	// to a single dataflow block.
	DataflowVar struct {
		Var
	}

	// GlobalVar is a reference to a module-level function.
	GlobalVar struct {
		expr
		VID *Id
	}

	// ExternFunc is an externally linked callable.
	ExternFunc struct {
		expr
		Symbol string
	}

	// ShapeExpr is a literal shape.
	ShapeExpr struct {
		expr
		Dims []PrimExpr
	}

	// RuntimeDepShape marks a shape that is only known at runtime.
	RuntimeDepShape struct {
		expr
	}

	// Op is a reference to a registered operator.
	Op struct {
		expr
		Name string
	}

	// Call applies a callee to arguments.
	Call struct {
		expr
		Callee   Expr
		Args     []Expr
		Attrs    Attrs
		TypeArgs []Type
	}

	// SeqExpr sequences binding blocks before a body expression.
	SeqExpr struct {
		expr
		Blocks []Block
		Body   Expr
	}

	// If selects one of two branches given a condition.
	If struct {
		expr
		Cond Expr
		Then Expr
		Else Expr
	}

	// Function is a lambda or module-level function.
	Function struct {
		expr
		Params  []*Var
		Body    Expr
		RetType Type
		Attrs   Attrs
	}
)

// Kind of the expression.
func (*Constant) Kind() exprkind.Kind { return exprkind.Constant }

// Kind of the expression.
func (*Tuple) Kind() exprkind.Kind { return exprkind.Tuple }

// Kind of the expression.
func (*TupleGetItem) Kind() exprkind.Kind { return exprkind.TupleGetItem }

// Kind of the expression.
func (*Var) Kind() exprkind.Kind { return exprkind.Var }

// Kind of the expression.
func (*DataflowVar) Kind() exprkind.Kind { return exprkind.DataflowVar }

// Kind of the expression.
func (*GlobalVar) Kind() exprkind.Kind { return exprkind.GlobalVar }

// Kind of the expression.
func (*ExternFunc) Kind() exprkind.Kind { return exprkind.ExternFunc }

// Kind of the expression.
func (*ShapeExpr) Kind() exprkind.Kind { return exprkind.ShapeExpr }

// Kind of the expression.
func (*RuntimeDepShape) Kind() exprkind.Kind { return exprkind.RuntimeDepShape }

// Kind of the expression.
func (*Op) Kind() exprkind.Kind { return exprkind.Op }

// Kind of the expression.
func (*Call) Kind() exprkind.Kind { return exprkind.Call }

// Kind of the expression.
func (*SeqExpr) Kind() exprkind.Kind { return exprkind.SeqExpr }

// Kind of the expression.
func (*If) Kind() exprkind.Kind { return exprkind.If }

// Kind of the expression.
func (*Function) Kind() exprkind.Kind { return exprkind.Function }

// Id returns the identifier of the variable.
func (v *Var) Id() *Id { return v.VID }

// TypeAnnotation returns the user type annotation, or nil.
func (v *Var) TypeAnnotation() Type { return v.TypeAnn }

// ShapeAnnotation returns the user shape annotation, or nil.
func (v *Var) ShapeAnnotation() Expr { return v.ShapeAnn }

// Id returns the identifier of the global.
func (v *GlobalVar) Id() *Id { return v.VID }

// IsAtomic returns true if the expression needs no let-binding to appear as
// a call argument in administrative normal form: a variable, global,
// constant, operator, literal shape, runtime shape sentinel, extern function,
// or a tuple of atomic expressions.
func IsAtomic(e Expr) bool {
	switch eT := e.(type) {
	case *Var, *DataflowVar, *GlobalVar, *Constant, *Op, *ShapeExpr, *RuntimeDepShape, *ExternFunc:
		return true
	case *Tuple:
		for _, field := range eT.Fields {
			if !IsAtomic(field) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
