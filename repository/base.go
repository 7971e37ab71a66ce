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
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/dialect/feature"
	"github.com/uptrace/bun/schema"

	"github.com/stratakit/strata/types"
)

type genericRepositoryImpl[T any] struct {
	db   bun.IDB
	meta *entityMeta[T]
	ins  Instrumenter
}

// NewRepository returns a generic repository bound to the given unit of
// work. The db may be a *bun.DB or a bun.Tx; the repository never opens,
// commits, or rolls back transactions on its own. Instances are intended
// for one logical flow at a time; use NewSharedRepository when several
// goroutines share the same unit of work.
func NewRepository[T any](db bun.IDB) Repository[T] {
	return newGenericRepository[T](db, nopInstrumenter{})
}

// NewInstrumentedRepository is NewRepository with an operation observer.
func NewInstrumentedRepository[T any](db bun.IDB, ins Instrumenter) Repository[T] {
	if ins == nil {
		ins = nopInstrumenter{}
	}
	return newGenericRepository[T](db, ins)
}

func newGenericRepository[T any](db bun.IDB, ins Instrumenter) *genericRepositoryImpl[T] {
	return &genericRepositoryImpl[T]{
		db:   db,
		meta: newEntityMeta[T](db),
		ins:  ins,
	}
}

func (r *genericRepositoryImpl[T]) Dialect() schema.Dialect { return r.db.Dialect() }

func (r *genericRepositoryImpl[T]) NewSelect() *bun.SelectQuery {
	return r.db.NewSelect().Model((*T)(nil))
}

func (r *genericRepositoryImpl[T]) NewInsert() *bun.InsertQuery { return r.db.NewInsert() }

func (r *genericRepositoryImpl[T]) NewUpdate() *bun.UpdateQuery { return r.db.NewUpdate() }

func (r *genericRepositoryImpl[T]) NewDelete() *bun.DeleteQuery { return r.db.NewDelete() }

func (r *genericRepositoryImpl[T]) hasFeature(f feature.Feature) bool {
	return r.db.Dialect().Features().Has(f)
}

func (r *genericRepositoryImpl[T]) observe(ctx context.Context, op Op, id interface{}, start time.Time, err error) {
	r.ins.ObserveOp(ctx, OpEvent{
		Op:      op,
		Entity:  r.meta.name,
		ID:      id,
		Err:     err,
		Elapsed: time.Since(start),
	})
}

func (r *genericRepositoryImpl[T]) Count(ctx context.Context, criteria *types.Criteria) (total int, err error) {
	defer func(start time.Time) { r.observe(ctx, OpCount, nil, start, err) }(time.Now())
	query := r.db.NewSelect().Model((*T)(nil))
	if criteria != nil && criteria.Where != nil {
		query = query.Where(criteria.Where.Expr, criteria.Where.Args...)
	}
	total, err = query.Count(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return total, err
}

func (r *genericRepositoryImpl[T]) Create(ctx context.Context, attrs Attrs) (entity *T, err error) {
	defer func(start time.Time) { r.observe(ctx, OpCreate, r.createdID(entity, err), start, err) }(time.Now())
	entity, err = r.meta.newEntity(attrs)
	if err != nil {
		return nil, &Error{Kind: KindUnknown, Op: OpCreate, Entity: r.meta.name, Attrs: attrs, Cause: err}
	}
	if err = r.insert(ctx, &[]*T{entity}); err != nil {
		return nil, wrapWriteError(OpCreate, r.meta.name, nil, attrs, err)
	}
	return entity, nil
}

func (r *genericRepositoryImpl[T]) BulkCreate(ctx context.Context, attrs []Attrs) (entities []*T, err error) {
	defer func(start time.Time) { r.observe(ctx, OpBulkCreate, nil, start, err) }(time.Now())
	if len(attrs) == 0 {
		return []*T{}, nil
	}
	entities = make([]*T, 0, len(attrs))
	for _, a := range attrs {
		entity, buildErr := r.meta.newEntity(a)
		if buildErr != nil {
			return nil, &Error{Kind: KindUnknown, Op: OpBulkCreate, Entity: r.meta.name, Attrs: a, Cause: buildErr}
		}
		entities = append(entities, entity)
	}
	if err = r.insert(ctx, &entities); err != nil {
		return nil, wrapWriteError(OpBulkCreate, r.meta.name, nil, mergeAttrs(attrs), err)
	}
	return entities, nil
}

// insert runs a single insert for the batch, scanning generated values
// back when the dialect supports INSERT ... RETURNING.
func (r *genericRepositoryImpl[T]) insert(ctx context.Context, entities *[]*T) error {
	query := r.db.NewInsert().Model(entities)
	if r.hasFeature(feature.InsertReturning) || r.hasFeature(feature.Returning) {
		query = query.Returning("*")
	}
	_, err := query.Exec(ctx)
	return err
}

func (r *genericRepositoryImpl[T]) createdID(entity *T, err error) interface{} {
	if err != nil || entity == nil {
		return nil
	}
	return r.meta.pkValue(entity)
}

func (r *genericRepositoryImpl[T]) Get(ctx context.Context, id interface{}) (entity *T, err error) {
	defer func(start time.Time) { r.observe(ctx, OpGet, id, start, err) }(time.Now())
	return r.getByID(ctx, OpGet, id, nil, false)
}

// getByID fetches one row by primary key, optionally under a no-wait row
// lock. Lock contention errors propagate raw from the driver; a missing
// row becomes a not-found error carrying the calling operation's attrs.
func (r *genericRepositoryImpl[T]) getByID(ctx context.Context, op Op, id interface{}, attrs Attrs, forUpdate bool) (*T, error) {
	entity := new(T)
	query := r.db.NewSelect().
		Model(entity).
		Where("? = ?", bun.Ident(r.meta.pkColumn()), id)
	if forUpdate && r.supportsRowLock() {
		query = query.For("UPDATE NOWAIT")
	}
	if err := query.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFoundError(op, r.meta.name, id, attrs)
		}
		return nil, err
	}
	return entity, nil
}

// supportsRowLock reports whether the dialect understands SELECT ... FOR
// UPDATE NOWAIT. SQLite serializes writers at the file level instead.
func (r *genericRepositoryImpl[T]) supportsRowLock() bool {
	switch r.db.Dialect().Name() {
	case dialect.PG, dialect.MySQL:
		return true
	default:
		return false
	}
}

func (r *genericRepositoryImpl[T]) GetAll(ctx context.Context) ([]*T, error) {
	return r.Read(ctx, &types.Criteria{Take: -1})
}

func (r *genericRepositoryImpl[T]) Read(ctx context.Context, criteria *types.Criteria) (entities []*T, err error) {
	defer func(start time.Time) { r.observe(ctx, OpRead, nil, start, err) }(time.Now())
	if criteria == nil {
		criteria = &types.Criteria{}
	}
	entities = make([]*T, 0)
	query := r.db.NewSelect().Model(&entities)
	if criteria.Where != nil {
		query = query.Where(criteria.Where.Expr, criteria.Where.Args...)
	}
	if len(criteria.OrderBy) > 0 {
		query = query.Order(criteria.OrderBy...)
	}
	offset, limit := criteria.Window()
	if offset > 0 {
		query = query.Offset(offset)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err = query.Scan(ctx); err != nil {
		return nil, err
	}
	return entities, nil
}

func (r *genericRepositoryImpl[T]) Update(ctx context.Context, id interface{}, attrs Attrs) (entity *T, err error) {
	defer func(start time.Time) { r.observe(ctx, OpUpdate, id, start, err) }(time.Now())
	entity, err = r.getByID(ctx, OpUpdate, id, attrs, true)
	if err != nil {
		return nil, err
	}
	if err = r.meta.assign(entity, attrs); err != nil {
		return nil, &Error{Kind: KindUnknown, Op: OpUpdate, Entity: r.meta.name, ID: id, Attrs: attrs, Cause: err}
	}
	r.meta.touchUpdatedAt(entity, time.Now())
	if _, err = r.db.NewUpdate().Model(entity).WherePK().Exec(ctx); err != nil {
		return nil, wrapWriteError(OpUpdate, r.meta.name, id, attrs, err)
	}
	return entity, nil
}

func (r *genericRepositoryImpl[T]) Delete(ctx context.Context, id interface{}) (entity *T, err error) {
	defer func(start time.Time) { r.observe(ctx, OpDelete, id, start, err) }(time.Now())
	entity, err = r.getByID(ctx, OpDelete, id, nil, false)
	if err != nil {
		return nil, err
	}
	if _, err = r.db.NewDelete().Model(entity).WherePK().Exec(ctx); err != nil {
		return nil, err
	}
	return entity, nil
}

func (r *genericRepositoryImpl[T]) Upsert(ctx context.Context, entities []*T, conflictColumns []string, updateColumns []string) (err error) {
	defer func(start time.Time) { r.observe(ctx, OpUpsert, nil, start, err) }(time.Now())
	if len(entities) == 0 {
		return nil
	}
	if len(updateColumns) == 0 {
		err = &Error{Kind: KindUnknown, Op: OpUpsert, Entity: r.meta.name,
			Cause: fmt.Errorf("update columns cannot be empty")}
		return err
	}
	switch {
	case r.hasFeature(feature.InsertOnConflict):
		err = r.upsertOnConflict(ctx, entities, conflictColumns, updateColumns)
	case r.hasFeature(feature.InsertOnDuplicateKey):
		err = r.upsertOnDuplicateKey(ctx, entities, updateColumns)
	default:
		err = r.upsertFallback(ctx, entities)
	}
	if err != nil {
		err = wrapWriteError(OpUpsert, r.meta.name, nil, nil, err)
	}
	return err
}

func (r *genericRepositoryImpl[T]) upsertOnConflict(ctx context.Context, entities []*T, conflictColumns []string, updateColumns []string) error {
	if len(conflictColumns) == 0 {
		conflictColumns = []string{r.meta.pkColumn()}
	}
	assignments := make([]string, 0, len(updateColumns))
	for _, column := range updateColumns {
		assignments = append(assignments, fmt.Sprintf("%s = EXCLUDED.%s", bun.Ident(column), bun.Ident(column)))
	}
	_, err := r.db.NewInsert().
		Model(&entities).
		On("CONFLICT (" + strings.Join(conflictColumns, ", ") + ") DO UPDATE").
		Set(strings.Join(assignments, ", ")).
		Exec(ctx)
	return err
}

func (r *genericRepositoryImpl[T]) upsertOnDuplicateKey(ctx context.Context, entities []*T, updateColumns []string) error {
	assignments := make([]string, 0, len(updateColumns))
	for _, column := range updateColumns {
		assignments = append(assignments, fmt.Sprintf("%s = VALUES(%s)", bun.Ident(column), bun.Ident(column)))
	}
	_, err := r.db.NewInsert().
		Model(&entities).
		On("DUPLICATE KEY UPDATE " + strings.Join(assignments, ", ")).
		Exec(ctx)
	return err
}

func (r *genericRepositoryImpl[T]) upsertFallback(ctx context.Context, entities []*T) error {
	for _, entity := range entities {
		if _, err := r.db.NewInsert().Model(entity).Exec(ctx); err != nil {
			if _, updateErr := r.db.NewUpdate().Model(entity).WherePK().Exec(ctx); updateErr != nil {
				return fmt.Errorf("upsert failed: insert error: %v, update error: %v", err, updateErr)
			}
		}
	}
	return nil
}

func (r *genericRepositoryImpl[T]) Page(ctx context.Context, req *types.PageRequest) (page *types.Pagination[T], err error) {
	defer func(start time.Time) { r.observe(ctx, OpPage, nil, start, err) }(time.Now())
	entities := make([]*T, 0)
	query := r.db.NewSelect().Model(&entities)
	if req.GetWhere() != nil {
		query = query.Where(req.GetWhere().Expr, req.GetWhere().Args...)
	}
	page = types.NewDefaultPagination[T](req.GetPage(), req.GetPageSize())
	total, err := query.Count(ctx)
	if err != nil || total == 0 {
		return page, err
	}
	err = query.
		Offset(req.GetOffset()).
		Limit(req.GetPageSize()).
		Order(req.GetOrders()...).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	page.Total = total
	page.Items = entities
	return page, nil
}

// mergeAttrs flattens a bulk attribute list for error reporting; later
// elements win on key collision.
func mergeAttrs(attrs []Attrs) Attrs {
	merged := make(Attrs)
	for _, a := range attrs {
		for k, v := range a {
			merged[k] = v
		}
	}
	return merged
}
