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

// Package names allocates display-name-unique identifiers.
package names

import (
	"slices"

	"golang.org/x/exp/maps"

	"github.com/gx-org/anfir/base/uname"
	"github.com/gx-org/anfir/ir"
)

// Table mints fresh identifiers with unique display names.
// A table has a single owner.
type Table struct {
	unames *uname.Unique
	ids    map[string]*ir.Id
}

// New returns an empty name table.
func New() *Table {
	return &Table{
		unames: uname.New(),
		ids:    make(map[string]*ir.Id),
	}
}

// Fresh returns a new identifier whose display name is hint if hint is
// still available, else hint with the smallest positive suffix making it
// available. Every identifier returned by a table is distinct.
func (t *Table) Fresh(hint string) *ir.Id {
	name := t.unames.Name(hint)
	id := ir.NewId(name)
	t.ids[name] = id
	return id
}

// Used returns the display names minted so far, sorted.
func (t *Table) Used() []string {
	used := maps.Keys(t.ids)
	slices.Sort(used)
	return used
}
