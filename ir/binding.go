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

// ----------------------------------------------------------------------------
// Bindings and binding blocks.
type (
	// Binding is one element of a binding block.
	Binding interface {
		Node
		binding()
	}

	// VarBinding is the let form: it binds a value to a variable.
	VarBinding struct {
		Var   VarExpr
		Value Expr
	}

	// MatchShape constrains the runtime shape of Value to match Pattern,
	// optionally binding a fresh variable annotated with the pattern
	// shape. Var is nil when the binding only constrains.
	MatchShape struct {
		Value   Expr
		Pattern []PrimExpr
		Var     VarExpr
	}

	// Block is a straight-line sequence of bindings, either a plain
	// BindingBlock or a DataflowBlock.
	Block interface {
		Node

		// Bindings of the block, in emission order.
		Bindings() []Binding

		// Dataflow returns true for a dataflow block.
		Dataflow() bool
	}

	// BindingBlock is a straight-line sequence of bindings.
	BindingBlock struct {
		List []Binding
	}

	// DataflowBlock is a binding block whose bindings are all pure.
	// DataflowVars may only be defined inside one and must not escape it.
	DataflowBlock struct {
		BindingBlock
	}
)

func (*VarBinding) node()    {}
func (*VarBinding) binding() {}
func (*MatchShape) node()    {}
func (*MatchShape) binding() {}

func (*BindingBlock) node() {}

// Bindings of the block, in emission order.
func (b *BindingBlock) Bindings() []Binding { return b.List }

// Dataflow returns false: the block may contain impure bindings.
func (b *BindingBlock) Dataflow() bool { return false }

// Dataflow returns true: every binding of the block is pure.
func (b *DataflowBlock) Dataflow() bool { return true }
