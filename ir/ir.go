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

// Package ir is the tree of an administrative-normal-form tensor program.
//
// Expressions form a directed acyclic graph with structural sharing:
// a node may be referenced by multiple parents and is never copied on read.
// Nodes are immutable except for the two inference slots (checked type and
// shape), which are stamped once by the block builder and observed by
// everybody afterwards.
package ir

import (
	"go/token"

	"github.com/gx-org/anfir/ir/exprkind"
)

// ----------------------------------------------------------------------------
// Types of node in the tree.
type (
	// Node in the tree.
	Node interface {
		// node marks a structure as a node structure.
		// It prevents external implementations of the interface.
		node()
	}

	// Expr is an expression node.
	Expr interface {
		Node

		// Kind of the concrete variant, used for dispatch.
		Kind() exprkind.Kind

		// CheckedType returns the type stamped by inference, or nil.
		CheckedType() Type

		// SetCheckedType stamps the inferred type of the expression.
		SetCheckedType(Type)

		// Shape returns the shape stamped by inference, or nil.
		// Once stamped, it is a *ShapeExpr or a *RuntimeDepShape.
		Shape() Expr

		// SetShape stamps the inferred shape of the expression.
		SetShape(Expr)

		// Span returns the position of the expression in the source program.
		Span() Span
	}

	// VarExpr is implemented by Var and DataflowVar, the two binding
	// reference variants.
	VarExpr interface {
		Expr

		// Id returns the identifier of the variable.
		Id() *Id

		// TypeAnnotation returns the user type annotation, or nil.
		TypeAnnotation() Type

		// ShapeAnnotation returns the user shape annotation, or nil.
		ShapeAnnotation() Expr
	}
)

// Span is a position range in the source program.
type Span struct {
	Begin, End token.Pos
}

// Id is an opaque identifier carrying a display name.
// Two Ids are the same identifier only if they are the same pointer.
type Id struct {
	name string
}

// NewId returns a fresh identifier with the given display name.
func NewId(name string) *Id {
	return &Id{name: name}
}

// Name returns the display name of the identifier.
func (id *Id) Name() string { return id.name }

func (id *Id) String() string { return id.name }

// expr is embedded by every expression variant. It carries the source span
// and the two inference slots.
type expr struct {
	span  Span
	typ   Type
	shape Expr
}

func (e *expr) node() {}

// CheckedType returns the type stamped by inference, or nil.
func (e *expr) CheckedType() Type { return e.typ }

// SetCheckedType stamps the inferred type of the expression.
func (e *expr) SetCheckedType(t Type) { e.typ = t }

// Shape returns the shape stamped by inference, or nil.
func (e *expr) Shape() Expr { return e.shape }

// SetShape stamps the inferred shape of the expression.
func (e *expr) SetShape(s Expr) { e.shape = s }

// Span returns the position of the expression in the source program.
func (e *expr) Span() Span { return e.span }

// SetSpan sets the position of the expression in the source program.
func (e *expr) SetSpan(s Span) { e.span = s }
