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

// Package bridge lets an external interpreter override traversal hooks.
//
// An adapter wraps a mapping from canonical hook names to callbacks. When a
// hook fires, the adapter looks its name up in the mapping: if a callback is
// installed, the callback receives the node; otherwise the hook falls back
// to the host's default behavior. A scripted environment thereby overrides
// a subset of hooks without reimplementing the rest.
package bridge

import (
	"github.com/pkg/errors"

	"github.com/gx-org/anfir/ir"
)

// Canonical hook names accepted in a callback mapping.
const (
	VisitExpr            = "visit_expr"
	VisitConstant        = "visit_constant_"
	VisitTuple           = "visit_tuple_"
	VisitVar             = "visit_var_"
	VisitDataflowVar     = "visit_dataflow_var_"
	VisitShapeExpr       = "visit_shape_expr_"
	VisitRuntimeDepShape = "visit_runtime_dep_shape_"
	VisitExternFunc      = "visit_extern_func_"
	VisitGlobalVar       = "visit_global_var_"
	VisitFunction        = "visit_function_"
	VisitCall            = "visit_call_"
	VisitSeqExpr         = "visit_seq_expr_"
	VisitIf              = "visit_if_"
	VisitOp              = "visit_op_"
	VisitTupleGetItem    = "visit_tuple_getitem_"
	VisitBinding         = "visit_binding"
	VisitVarBinding      = "visit_var_binding_"
	VisitMatchShape      = "visit_match_shape_"
	VisitBindingBlock    = "visit_binding_block"
	VisitBlock           = "visit_binding_block_"
	VisitDataflowBlock   = "visit_dataflow_block_"
	VisitVarDef          = "visit_var_def"
	VisitDefVar          = "visit_var_def_"
	VisitDefDataflowVar  = "visit_dataflow_var_def_"
	VisitType            = "visit_type"
	VisitSpan            = "visit_span"
)

var canonical = map[string]bool{
	VisitExpr:            true,
	VisitConstant:        true,
	VisitTuple:           true,
	VisitVar:             true,
	VisitDataflowVar:     true,
	VisitShapeExpr:       true,
	VisitRuntimeDepShape: true,
	VisitExternFunc:      true,
	VisitGlobalVar:       true,
	VisitFunction:        true,
	VisitCall:            true,
	VisitSeqExpr:         true,
	VisitIf:              true,
	VisitOp:              true,
	VisitTupleGetItem:    true,
	VisitBinding:         true,
	VisitVarBinding:      true,
	VisitMatchShape:      true,
	VisitBindingBlock:    true,
	VisitBlock:           true,
	VisitDataflowBlock:   true,
	VisitVarDef:          true,
	VisitDefVar:          true,
	VisitDefDataflowVar:  true,
	VisitType:            true,
	VisitSpan:            true,
}

func checkNames[C any](hooks map[string]C) error {
	for name := range hooks {
		if !canonical[name] {
			return errors.Errorf("%s is not a canonical hook name", name)
		}
	}
	return nil
}

// node is anything a callback can receive: an expression, a binding, a
// block, a type, a span or a variable definition.
type node = any

// Callback is an external hook of a read-only traversal.
type Callback func(node) error

// MutateCallback is an external hook of a rewriting traversal. It returns
// the node replacing the one it receives.
type MutateCallback func(node) (node, error)

func asExpr(n node, err error) (ir.Expr, error) {
	if err != nil {
		return nil, err
	}
	e, ok := n.(ir.Expr)
	if !ok {
		return nil, errors.Errorf("callback returned %T: not an expression", n)
	}
	return e, nil
}
