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

package repository_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratakit/strata/repository"
)

type captureInstrumenter struct {
	mu     sync.Mutex
	events []repository.OpEvent
}

func (c *captureInstrumenter) ObserveOp(_ context.Context, event repository.OpEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *captureInstrumenter) all() []repository.OpEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]repository.OpEvent, len(c.events))
	copy(out, c.events)
	return out
}

func (c *captureInstrumenter) last() repository.OpEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.events[len(c.events)-1]
}

func TestInstrumenterObservesEveryOperation(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	capture := &captureInstrumenter{}
	repo := repository.NewInstrumentedRepository[Group](db, capture)

	created, err := repo.Create(ctx, repository.Attrs{"name": "G1"})
	require.NoError(t, err)

	_, err = repo.Get(ctx, created.ID)
	require.NoError(t, err)

	_, err = repo.Count(ctx, nil)
	require.NoError(t, err)

	_, err = repo.Read(ctx, nil)
	require.NoError(t, err)

	_, err = repo.Update(ctx, created.ID, repository.Attrs{"name": "G1b"})
	require.NoError(t, err)

	_, err = repo.Delete(ctx, created.ID)
	require.NoError(t, err)

	events := capture.all()
	// Update and Delete re-fetch by primary key through the same code path
	// as Get, so only the top-level operations are observed, once each.
	wantOps := []repository.Op{
		repository.OpCreate,
		repository.OpGet,
		repository.OpCount,
		repository.OpRead,
		repository.OpUpdate,
		repository.OpDelete,
	}
	require.Len(t, events, len(wantOps))
	for i, event := range events {
		assert.Equal(t, wantOps[i], event.Op)
		assert.Equal(t, "Group", event.Entity)
		assert.NoError(t, event.Err)
		assert.GreaterOrEqual(t, event.Elapsed, time.Duration(0))
	}

	assert.Equal(t, created.ID, events[0].ID)
	assert.Equal(t, created.ID, events[1].ID)
	assert.Equal(t, created.ID, events[4].ID)
	assert.Equal(t, created.ID, events[5].ID)
}

func TestInstrumenterObservesFailures(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	capture := &captureInstrumenter{}
	repo := repository.NewInstrumentedRepository[Group](db, capture)

	_, err := repo.Get(ctx, 9999)
	require.Error(t, err)

	event := capture.last()
	assert.Equal(t, repository.OpGet, event.Op)
	assert.Equal(t, "Group", event.Entity)
	assert.Equal(t, 9999, event.ID)
	require.Error(t, event.Err)
	assert.True(t, repository.IsNotFound(event.Err))
}

func TestSharedRepositoryInstrumented(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	capture := &captureInstrumenter{}
	repo := repository.NewSharedInstrumentedRepository[Group](db, capture)

	created, err := repo.Create(ctx, repository.Attrs{"name": "G1"})
	require.NoError(t, err)

	events := capture.all()
	require.Len(t, events, 1)
	assert.Equal(t, repository.OpCreate, events[0].Op)
	assert.Equal(t, created.ID, events[0].ID)
	assert.NoError(t, events[0].Err)
}
