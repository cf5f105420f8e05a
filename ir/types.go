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
	"fmt"
	"strings"

	"github.com/gx-org/backend/dtype"
)

// RankUnknown marks a tensor type whose rank is only known at runtime.
const RankUnknown = -1

// ----------------------------------------------------------------------------
// Types definition.
type (
	// Type of an expression. A nil Type means the expression has not
	// been annotated nor inferred yet.
	Type interface {
		Node

		// Equal returns true if other is structurally the same type.
		Equal(Type) bool

		// String representation of the type.
		String() string
	}

	// DynTensorType is the type of a tensor whose shape may only be
	// known at runtime. Rank is RankUnknown when the rank itself is
	// dynamic.
	DynTensorType struct {
		Rank  int
		DType dtype.DataType
	}

	// ShapeType is the type of a shape value.
	ShapeType struct{}

	// TupleType is the type of a tuple expression.
	TupleType struct {
		Elements []Type
	}

	// FuncType is the type of a callable.
	FuncType struct {
		Args []Type
		Ret  Type
	}

	// OpaqueType is the type of values the type system does not inspect.
	OpaqueType struct{}
)

func (*DynTensorType) node() {}
func (*ShapeType) node()     {}
func (*TupleType) node()     {}
func (*FuncType) node()      {}
func (*OpaqueType) node()    {}

// Equal returns true if other is a tensor type with the same rank and dtype.
func (t *DynTensorType) Equal(other Type) bool {
	o, ok := other.(*DynTensorType)
	return ok && o.Rank == t.Rank && o.DType == t.DType
}

func (t *DynTensorType) String() string {
	if t.Rank == RankUnknown {
		return fmt.Sprintf("tensor(?, %v)", t.DType)
	}
	return fmt.Sprintf("tensor(%d, %v)", t.Rank, t.DType)
}

// Equal returns true if other is a shape type.
func (t *ShapeType) Equal(other Type) bool {
	_, ok := other.(*ShapeType)
	return ok
}

func (t *ShapeType) String() string { return "shape" }

// Equal returns true if other is a tuple type with equal element types.
func (t *TupleType) Equal(other Type) bool {
	o, ok := other.(*TupleType)
	if !ok || len(o.Elements) != len(t.Elements) {
		return false
	}
	for i, el := range t.Elements {
		if !typesEqual(el, o.Elements[i]) {
			return false
		}
	}
	return true
}

func (t *TupleType) String() string {
	ss := make([]string, len(t.Elements))
	for i, el := range t.Elements {
		ss[i] = el.String()
	}
	return "(" + strings.Join(ss, ", ") + ")"
}

// Equal returns true if other is a function type with equal argument and
// return types.
func (t *FuncType) Equal(other Type) bool {
	o, ok := other.(*FuncType)
	if !ok || len(o.Args) != len(t.Args) {
		return false
	}
	for i, arg := range t.Args {
		if !typesEqual(arg, o.Args[i]) {
			return false
		}
	}
	return typesEqual(t.Ret, o.Ret)
}

func (t *FuncType) String() string {
	ss := make([]string, len(t.Args))
	for i, arg := range t.Args {
		ss[i] = arg.String()
	}
	ret := "?"
	if t.Ret != nil {
		ret = t.Ret.String()
	}
	return "func(" + strings.Join(ss, ", ") + ") " + ret
}

// Equal returns true if other is an opaque type.
func (t *OpaqueType) Equal(other Type) bool {
	_, ok := other.(*OpaqueType)
	return ok
}

func (t *OpaqueType) String() string { return "opaque" }

// TypesEqual returns true if both types are nil or structurally equal.
func TypesEqual(a, b Type) bool { return typesEqual(a, b) }

func typesEqual(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}
