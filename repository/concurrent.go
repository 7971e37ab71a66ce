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
	"golang.org/x/sync/semaphore"
)

// sharedRepositoryImpl serializes every mutating operation through a
// weighted semaphore of capacity one. Reads bypass the gate. Acquire is
// context-aware, so a cancelled caller gives up its slot instead of
// blocking the unit of work forever, and the deferred release guarantees
// the gate reopens on every exit path, panics included.
type sharedRepositoryImpl[T any] struct {
	*genericRepositoryImpl[T]
	gate *semaphore.Weighted
}

// NewSharedRepository returns a repository safe for concurrent goroutines
// sharing one unit of work. Database sessions are not concurrency-safe,
// so mutating calls are admitted one at a time; a caller whose context
// expires while waiting receives the context error without touching the
// session.
func NewSharedRepository[T any](db bun.IDB) Repository[T] {
	return NewSharedInstrumentedRepository[T](db, nil)
}

// NewSharedInstrumentedRepository is NewSharedRepository with an
// operation observer.
func NewSharedInstrumentedRepository[T any](db bun.IDB, ins Instrumenter) Repository[T] {
	if ins == nil {
		ins = nopInstrumenter{}
	}
	return &sharedRepositoryImpl[T]{
		genericRepositoryImpl: newGenericRepository[T](db, ins),
		gate:                  semaphore.NewWeighted(1),
	}
}

func (r *sharedRepositoryImpl[T]) Create(ctx context.Context, attrs Attrs) (*T, error) {
	if err := r.gate.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer r.gate.Release(1)
	return r.genericRepositoryImpl.Create(ctx, attrs)
}

func (r *sharedRepositoryImpl[T]) BulkCreate(ctx context.Context, attrs []Attrs) ([]*T, error) {
	if err := r.gate.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer r.gate.Release(1)
	return r.genericRepositoryImpl.BulkCreate(ctx, attrs)
}

func (r *sharedRepositoryImpl[T]) Update(ctx context.Context, id interface{}, attrs Attrs) (*T, error) {
	if err := r.gate.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer r.gate.Release(1)
	return r.genericRepositoryImpl.Update(ctx, id, attrs)
}

func (r *sharedRepositoryImpl[T]) Delete(ctx context.Context, id interface{}) (*T, error) {
	if err := r.gate.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer r.gate.Release(1)
	return r.genericRepositoryImpl.Delete(ctx, id)
}

func (r *sharedRepositoryImpl[T]) Upsert(ctx context.Context, entities []*T, conflictColumns []string, updateColumns []string) error {
	if err := r.gate.Acquire(ctx, 1); err != nil {
		return err
	}
	defer r.gate.Release(1)
	return r.genericRepositoryImpl.Upsert(ctx, entities, conflictColumns, updateColumns)
}
