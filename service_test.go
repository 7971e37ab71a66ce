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

package strata_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/stratakit/strata"
	"github.com/stratakit/strata/database"
	"github.com/stratakit/strata/repository"
	"github.com/stratakit/strata/types"
)

type Note struct {
	bun.BaseModel `bun:"table:notes,alias:n"`
	types.Model

	Title string `bun:"title,notnull,unique"`
	Body  string `bun:"body"`
}

func initTestDatabase(t *testing.T) {
	t.Helper()
	database.RegisteredModel(database.NewModelAdapter((*Note)(nil), 1))

	cfg := &database.Config{
		ConnectionConfig:  *database.DefaultConnectionConfig(),
		DataMigrateConfig: database.DataMigrateConfig{EnableMigrateOnStartup: true},
	}
	cfg.ConnectionConfig.Type = "sqlite"
	cfg.ConnectionConfig.DBName = ""

	_, err := database.InitDB(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.CloseDB() })
}

func TestServiceLifecycle(t *testing.T) {
	initTestDatabase(t)
	ctx := context.Background()
	svc := strata.NewService[Note]()

	created, err := svc.Create(ctx, repository.Attrs{"title": "first", "body": "hello"})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	fetched, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", fetched.Title)

	total, err := svc.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	updated, err := svc.Update(ctx, created.ID, repository.Attrs{"body": "edited"})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Body)

	rows, err := svc.Read(ctx, &types.Criteria{
		Where: types.NewPredicate("title = ?", "first"),
	})
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	page, err := svc.Page(ctx, types.NewDefaultPageRequest(1, 5))
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	assert.True(t, repository.IsNotFound(err))
}

func TestServiceWithinTx(t *testing.T) {
	initTestDatabase(t)
	ctx := context.Background()
	svc := strata.NewService[Note]()

	boom := errors.New("boom")
	err := svc.WithinTx(ctx, func(ctx context.Context, repo repository.Repository[Note]) error {
		if _, err := repo.Create(ctx, repository.Attrs{"title": "doomed"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	rolled, err := svc.Count(ctx, &types.Criteria{
		Where: types.NewPredicate("title = ?", "doomed"),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, rolled)

	err = svc.WithinTx(ctx, func(ctx context.Context, repo repository.Repository[Note]) error {
		_, err := repo.Create(ctx, repository.Attrs{"title": "kept"})
		return err
	})
	require.NoError(t, err)

	kept, err := svc.Count(ctx, &types.Criteria{
		Where: types.NewPredicate("title = ?", "kept"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, kept)
}

func TestServiceSaveOrUpdate(t *testing.T) {
	initTestDatabase(t)
	ctx := context.Background()
	svc := strata.NewService[Note]()

	_, err := svc.Create(ctx, repository.Attrs{"title": "pinned", "body": "v1"})
	require.NoError(t, err)

	err = svc.SaveOrUpdate(ctx,
		[]*Note{{Title: "pinned", Body: "v2"}},
		[]string{"title"}, []string{"body"})
	require.NoError(t, err)

	rows, err := svc.Read(ctx, &types.Criteria{
		Where: types.NewPredicate("title = ?", "pinned"),
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "v2", rows[0].Body)
}
