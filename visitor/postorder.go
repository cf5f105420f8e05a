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

package visitor

import (
	"github.com/pkg/errors"

	"github.com/gx-org/anfir/ir"
	"github.com/gx-org/anfir/visit"
)

// PostOrderVisit applies f to every expression reachable from e, children
// before parents, children in source order. The traversal runs on an
// explicit work stack, so its depth is bounded by the heap and not by the
// control stack. Shared subexpressions are visited once per reference.
func PostOrderVisit(e ir.Expr, f func(ir.Expr)) error {
	if e == nil {
		return errors.WithStack(visit.ErrNullNode)
	}
	type frame struct {
		expr     ir.Expr
		expanded bool
	}
	stack := []frame{{expr: e}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.expanded {
			f(top.expr)
			continue
		}
		stack = append(stack, frame{expr: top.expr, expanded: true})
		kids := children(top.expr)
		for i := len(kids) - 1; i >= 0; i-- {
			if kids[i] == nil {
				return errors.WithStack(visit.ErrNullNode)
			}
			stack = append(stack, frame{expr: kids[i]})
		}
	}
	return nil
}

// children returns the subexpressions visited by the default traversal, in
// source order. Variable definition sites are not children: they are reached
// through VisitVarDef, not VisitExpr.
func children(e ir.Expr) []ir.Expr {
	switch eT := e.(type) {
	case *ir.Tuple:
		return eT.Fields
	case *ir.TupleGetItem:
		return []ir.Expr{eT.Base}
	case *ir.Call:
		kids := make([]ir.Expr, 0, len(eT.Args)+1)
		kids = append(kids, eT.Callee)
		return append(kids, eT.Args...)
	case *ir.If:
		return []ir.Expr{eT.Cond, eT.Then, eT.Else}
	case *ir.SeqExpr:
		var kids []ir.Expr
		for _, block := range eT.Blocks {
			for _, bnd := range block.Bindings() {
				switch bndT := bnd.(type) {
				case *ir.VarBinding:
					kids = append(kids, bndT.Value)
				case *ir.MatchShape:
					kids = append(kids, bndT.Value)
				}
			}
		}
		return append(kids, eT.Body)
	case *ir.Function:
		return []ir.Expr{eT.Body}
	default:
		return nil
	}
}
