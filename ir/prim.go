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
	"go/token"
	"strconv"
)

// Symbolic dimension expressions. Shapes are ordered sequences of these
// values. They are values of the shape sublanguage, not nodes of the
// expression tree.
type (
	// PrimExpr is a symbolic dimension expression.
	PrimExpr interface {
		Node
		primExpr()
		String() string
	}

	// IntImm is an integer dimension.
	IntImm struct {
		Value int64
	}

	// SymbolVar is a named symbolic dimension.
	SymbolVar struct {
		Name string
	}

	// BinaryDim combines two dimension expressions with an arithmetic
	// operator. Op is one of token.ADD, token.SUB or token.MUL.
	BinaryDim struct {
		Op   token.Token
		X, Y PrimExpr
	}
)

func (*IntImm) node()        {}
func (*IntImm) primExpr()    {}
func (*SymbolVar) node()     {}
func (*SymbolVar) primExpr() {}
func (*BinaryDim) node()     {}
func (*BinaryDim) primExpr() {}

func (d *IntImm) String() string { return strconv.FormatInt(d.Value, 10) }

func (d *SymbolVar) String() string { return d.Name }

func (d *BinaryDim) String() string {
	return d.X.String() + d.Op.String() + d.Y.String()
}

// Dim returns an integer dimension.
func Dim(value int64) *IntImm {
	return &IntImm{Value: value}
}

// Symbol returns a named symbolic dimension.
func Symbol(name string) *SymbolVar {
	return &SymbolVar{Name: name}
}
