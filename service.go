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

package strata

import (
	"context"
	"sync"

	"github.com/uptrace/bun"

	"github.com/stratakit/strata/database"
	"github.com/stratakit/strata/repository"
	"github.com/stratakit/strata/types"
)

// Service is a high-level facade over the generic repository, lazily bound
// to the global database connection.
type Service[T any] interface {
	// Count returns the number of entities matching the criteria.
	Count(ctx context.Context, criteria *types.Criteria) (int, error)

	// Create builds and persists a new entity from the attribute map.
	Create(ctx context.Context, attrs repository.Attrs) (*T, error)

	// BulkCreate persists one entity per attribute map in a single insert.
	BulkCreate(ctx context.Context, attrs []repository.Attrs) ([]*T, error)

	// Get returns a single entity by its identifier.
	Get(ctx context.Context, id interface{}) (*T, error)

	// All returns all entities.
	All(ctx context.Context) ([]*T, error)

	// Read returns entities matching the criteria, windowed and ordered.
	Read(ctx context.Context, criteria *types.Criteria) ([]*T, error)

	// Page returns a paginated list of entities.
	Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error)

	// Update applies the attribute map to the entity with the given id.
	Update(ctx context.Context, id interface{}, attrs repository.Attrs) (*T, error)

	// Delete removes an entity by its identifier.
	Delete(ctx context.Context, id interface{}) error

	// SaveOrUpdate upserts entities, updating the given columns on conflict.
	SaveOrUpdate(ctx context.Context, entities []*T, conflictColumns []string, updateColumns []string) error

	// WithinTx runs fn against a repository bound to a transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(ctx context.Context, repo repository.Repository[T]) error) error

	// SelectBuilder returns a Bun select query builder for the entity.
	SelectBuilder() *bun.SelectQuery

	// InsertBuilder returns a Bun insert query builder for the entity.
	InsertBuilder() *bun.InsertQuery

	// UpdateBuilder returns a Bun update query builder for the entity.
	UpdateBuilder() *bun.UpdateQuery

	// DeleteBuilder returns a Bun delete query builder for the entity.
	DeleteBuilder() *bun.DeleteQuery
}

type baseServiceImpl[T any] struct {
	repo   repository.Repository[T]
	shared bool
	once   sync.Once
}

// NewService returns a Service backed by the generic repository and the
// global database connection.
func NewService[T any]() Service[T] {
	return &baseServiceImpl[T]{}
}

// NewSharedService is NewService with mutating operations serialized, for
// callers that share one service across goroutines.
func NewSharedService[T any]() Service[T] {
	return &baseServiceImpl[T]{shared: true}
}

func (s *baseServiceImpl[T]) baseRepo() repository.Repository[T] {
	s.once.Do(func() {
		if s.shared {
			s.repo = repository.NewSharedRepository[T](database.GetDB())
			return
		}
		s.repo = repository.NewRepository[T](database.GetDB())
	})
	return s.repo
}

func (s *baseServiceImpl[T]) Count(ctx context.Context, criteria *types.Criteria) (int, error) {
	return s.baseRepo().Count(ctx, criteria)
}

func (s *baseServiceImpl[T]) Create(ctx context.Context, attrs repository.Attrs) (*T, error) {
	return s.baseRepo().Create(ctx, attrs)
}

func (s *baseServiceImpl[T]) BulkCreate(ctx context.Context, attrs []repository.Attrs) ([]*T, error) {
	return s.baseRepo().BulkCreate(ctx, attrs)
}

func (s *baseServiceImpl[T]) Get(ctx context.Context, id interface{}) (*T, error) {
	return s.baseRepo().Get(ctx, id)
}

func (s *baseServiceImpl[T]) All(ctx context.Context) ([]*T, error) {
	return s.baseRepo().GetAll(ctx)
}

func (s *baseServiceImpl[T]) Read(ctx context.Context, criteria *types.Criteria) ([]*T, error) {
	return s.baseRepo().Read(ctx, criteria)
}

func (s *baseServiceImpl[T]) Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error) {
	return s.baseRepo().Page(ctx, page)
}

func (s *baseServiceImpl[T]) Update(ctx context.Context, id interface{}, attrs repository.Attrs) (*T, error) {
	return s.baseRepo().Update(ctx, id, attrs)
}

func (s *baseServiceImpl[T]) Delete(ctx context.Context, id interface{}) error {
	_, err := s.baseRepo().Delete(ctx, id)
	return err
}

func (s *baseServiceImpl[T]) SaveOrUpdate(ctx context.Context, entities []*T, conflictColumns []string, updateColumns []string) error {
	return s.baseRepo().Upsert(ctx, entities, conflictColumns, updateColumns)
}

func (s *baseServiceImpl[T]) WithinTx(ctx context.Context, fn func(ctx context.Context, repo repository.Repository[T]) error) error {
	s.baseRepo() // bind the global connection before opening a transaction
	return database.GetDB().RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, repository.NewRepository[T](tx))
	})
}

func (s *baseServiceImpl[T]) SelectBuilder() *bun.SelectQuery {
	return s.baseRepo().NewSelect()
}

func (s *baseServiceImpl[T]) InsertBuilder() *bun.InsertQuery {
	return s.baseRepo().NewInsert()
}

func (s *baseServiceImpl[T]) UpdateBuilder() *bun.UpdateQuery {
	return s.baseRepo().NewUpdate()
}

func (s *baseServiceImpl[T]) DeleteBuilder() *bun.DeleteQuery {
	return s.baseRepo().NewDelete()
}
