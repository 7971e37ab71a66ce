/*
 * Copyright 2026 stratakit.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package repository

import (
	"context"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"

	"github.com/stratakit/strata/types"
)

// Attrs is a loosely typed attribute map keyed by column or Go field name.
// Create, Update and Upsert accept it; primary-key entries are stripped
// before assignment and unknown names are ignored.
type Attrs map[string]interface{}

// CrudRepository defines the core persistence contract for one entity type.
type CrudRepository[T any] interface {
	// Count returns the number of rows matching the criteria filter.
	// A nil criteria counts the whole table.
	Count(ctx context.Context, criteria *types.Criteria) (int, error)

	// Create builds a new entity from attrs, persists it, and returns it
	// with generated values (id, timestamps) populated.
	Create(ctx context.Context, attrs Attrs) (*T, error)

	// BulkCreate persists one entity per attrs element in a single insert
	// and returns them in input order.
	BulkCreate(ctx context.Context, attrs []Attrs) ([]*T, error)

	// Get fetches an entity by primary key.
	Get(ctx context.Context, id interface{}) (*T, error)

	// GetAll returns every row of the table, unordered.
	GetAll(ctx context.Context) ([]*T, error)

	// Read returns the rows matching the criteria, windowed and ordered.
	// A zero Take falls back to types.DefaultPageSize; a negative Take
	// removes the limit.
	Read(ctx context.Context, criteria *types.Criteria) ([]*T, error)

	// Update fetches the entity by primary key under a no-wait row lock
	// where the dialect supports it, applies attrs, and persists the
	// result.
	Update(ctx context.Context, id interface{}, attrs Attrs) (*T, error)

	// Delete removes the entity by primary key and returns the detached
	// snapshot of what was removed.
	Delete(ctx context.Context, id interface{}) (*T, error)

	// Upsert inserts the entities, updating the given columns on conflict.
	Upsert(ctx context.Context, entities []*T, conflictColumns []string, updateColumns []string) error
}

// PageQueryRepository adds offset pagination on top of the CRUD contract.
type PageQueryRepository[T any] interface {
	// Page runs a count plus a windowed select and assembles the result.
	Page(ctx context.Context, req *types.PageRequest) (*types.Pagination[T], error)
}

// Repository is the full entity repository surface. Query builders are
// exposed for call sites that need raw bun access against the same unit
// of work the repository is bound to.
type Repository[T any] interface {
	CrudRepository[T]
	PageQueryRepository[T]

	// Dialect returns the dialect of the bound database.
	Dialect() schema.Dialect

	// NewSelect returns a select query pre-bound to the entity model.
	NewSelect() *bun.SelectQuery
	// NewInsert returns an insert query on the bound unit of work.
	NewInsert() *bun.InsertQuery
	// NewUpdate returns an update query on the bound unit of work.
	NewUpdate() *bun.UpdateQuery
	// NewDelete returns a delete query on the bound unit of work.
	NewDelete() *bun.DeleteQuery
}
