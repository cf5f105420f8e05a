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

// Package oracle is the symbolic-equality oracle interface consumed by the
// block builder to prove that two dimension expressions are equal.
package oracle

import (
	"fmt"
	"go/token"

	"github.com/pkg/errors"

	"github.com/gx-org/anfir/ir"
)

// Oracle proves the equality of symbolic dimension expressions.
// CanProveEqual must be sound: true implies mathematical equality,
// false means unknown.
type Oracle interface {
	CanProveEqual(x, y ir.PrimExpr) bool
}

type structural struct{}

// Structural returns an oracle folding constant subexpressions and comparing
// the rest syntactically. It is sound but incomplete: n+1 and 1+n are not
// proved equal.
func Structural() Oracle {
	return structural{}
}

// CanProveEqual returns true if both expressions fold to the same value and
// the same symbolic residue.
func (structural) CanProveEqual(x, y ir.PrimExpr) bool {
	xVal, xName, err := evalDim(x)
	if err != nil {
		return false
	}
	yVal, yName, err := evalDim(y)
	if err != nil {
		return false
	}
	// Two dimensions are equal if the same value has been computed
	// and they have the same string representation.
	return xVal == yVal && xName == yName
}

func evalBinaryDim(x *ir.BinaryDim) (int64, string, error) {
	xInt, xStr, err := evalDim(x.X)
	if err != nil {
		return 0, "", err
	}
	yInt, yStr, err := evalDim(x.Y)
	if err != nil {
		return 0, "", err
	}
	var val int64
	switch x.Op {
	case token.ADD:
		val = xInt + yInt
	case token.SUB:
		val = xInt - yInt
	case token.MUL:
		val = xInt * yInt
	default:
		return -1, "", errors.Errorf("cannot evaluate dimension: binary op %s not supported", x.Op)
	}
	valStr := ""
	if xStr != "" || yStr != "" {
		if xStr == "" {
			xStr = fmt.Sprint(xInt)
		}
		if yStr == "" {
			yStr = fmt.Sprint(yInt)
		}
		valStr = xStr + x.Op.String() + yStr
		val = 0
	}
	return val, valStr, nil
}

func evalDim(x ir.PrimExpr) (int64, string, error) {
	if x == nil {
		return -1, "", errors.Errorf("cannot evaluate nil dimension")
	}
	switch xT := x.(type) {
	case *ir.IntImm:
		return xT.Value, "", nil
	case *ir.SymbolVar:
		return 0, xT.Name, nil
	case *ir.BinaryDim:
		return evalBinaryDim(xT)
	default:
		return -1, "", errors.Errorf("cannot evaluate dimension: %T not supported", xT)
	}
}
