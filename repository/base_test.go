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
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/stratakit/strata/repository"
	"github.com/stratakit/strata/types"
)

func TestCreateIgnoresCallerSuppliedID(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := repository.NewRepository[Group](db)

	created, err := repo.Create(ctx, repository.Attrs{"id": int64(999), "name": "G1"})
	require.NoError(t, err)
	assert.NotEqual(t, int64(999), created.ID)
	assert.NotZero(t, created.ID)

	_, err = repo.Get(ctx, 999)
	assert.True(t, repository.IsNotFound(err))
}

func TestCreateIgnoresUnknownAttrs(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := repository.NewRepository[Group](db)

	created, err := repo.Create(ctx, repository.Attrs{"name": "G1", "no_such_column": 42})
	require.NoError(t, err)
	assert.Equal(t, "G1", created.Name)
}

func TestGetNotFound(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := repository.NewRepository[Group](db)

	_, err := repo.Get(ctx, 12345)
	require.Error(t, err)
	assert.True(t, repository.IsNotFound(err))
	assert.True(t, errors.Is(err, repository.ErrNotFound))

	var repoErr *repository.Error
	require.True(t, errors.As(err, &repoErr))
	assert.Equal(t, repository.OpGet, repoErr.Op)
	assert.Equal(t, "Group", repoErr.Entity)
	assert.Equal(t, 12345, repoErr.ID)
}

func TestReadDefaultPageSize(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := repository.NewRepository[Dummy](db)

	attrs := make([]repository.Attrs, 0, 12)
	for i := 1; i <= 12; i++ {
		v := fmt.Sprintf("foo_%d", i)
		attrs = append(attrs, repository.Attrs{"foo": &v})
	}
	_, err := repo.BulkCreate(ctx, attrs)
	require.NoError(t, err)

	rows, err := repo.Read(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, rows, types.DefaultPageSize)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 12)
}

func TestReadOrderingAndWindow(t *testing.T) {
	db := newTestDB(t)
	seedSchool(t, db)
	ctx := context.Background()
	repo := repository.NewRepository[Student](db)

	asc, err := repo.Read(ctx, &types.Criteria{OrderBy: []string{"id ASC"}, Take: -1})
	require.NoError(t, err)
	require.Len(t, asc, 7)

	desc, err := repo.Read(ctx, &types.Criteria{OrderBy: []string{"id DESC"}, Take: -1})
	require.NoError(t, err)
	require.Len(t, desc, 7)
	for i := range asc {
		assert.Equal(t, asc[i].ID, desc[len(desc)-1-i].ID)
	}

	window, err := repo.Read(ctx, &types.Criteria{OrderBy: []string{"id ASC"}, Skip: 2, Take: 2})
	require.NoError(t, err)
	require.Len(t, window, 2)
	assert.Equal(t, asc[2].ID, window[0].ID)
	assert.Equal(t, asc[3].ID, window[1].ID)
}

func TestReadWithPredicate(t *testing.T) {
	db := newTestDB(t)
	seedSchool(t, db)
	ctx := context.Background()
	repo := repository.NewRepository[Student](db)

	rows, err := repo.Read(ctx, &types.Criteria{
		Where: types.NewPredicate("name LIKE ?", "%_G2"),
		Take:  -1,
	})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestCount(t *testing.T) {
	db := newTestDB(t)
	seedSchool(t, db)
	ctx := context.Background()
	repo := repository.NewRepository[Student](db)

	total, err := repo.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 7, total)

	courses := repository.NewRepository[Course](db)

	in, err := courses.Count(ctx, &types.Criteria{
		Where: types.NewPredicate("name IN (?)", bun.In([]string{"Course_1", "Course_2"})),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, in)

	none, err := courses.Count(ctx, &types.Criteria{
		Where: types.NewPredicate("name = ? AND name = ?", "Course_1", "Course_2"),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, none)
}

func TestUpdate(t *testing.T) {
	db := newTestDB(t)
	seedSchool(t, db)
	ctx := context.Background()
	repo := repository.NewRepository[Student](db)

	students, err := repo.Read(ctx, &types.Criteria{OrderBy: []string{"id ASC"}, Take: 1})
	require.NoError(t, err)
	require.Len(t, students, 1)
	original := students[0]

	updated, err := repo.Update(ctx, original.ID, repository.Attrs{
		"id":   int64(888),
		"name": "Renamed",
	})
	require.NoError(t, err)
	assert.Equal(t, original.ID, updated.ID)
	assert.Equal(t, "Renamed", updated.Name)
	assert.False(t, updated.UpdatedAt.Before(original.UpdatedAt))

	fetched, err := repo.Get(ctx, original.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", fetched.Name)

	_, err = repo.Get(ctx, 888)
	assert.True(t, repository.IsNotFound(err))
}

func TestUpdateNotFound(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := repository.NewRepository[Student](db)

	_, err := repo.Update(ctx, 4242, repository.Attrs{"name": "nobody"})
	require.Error(t, err)
	assert.True(t, repository.IsNotFound(err))

	var repoErr *repository.Error
	require.True(t, errors.As(err, &repoErr))
	assert.Equal(t, repository.OpUpdate, repoErr.Op)
	assert.Equal(t, 4242, repoErr.ID)
	assert.Contains(t, repoErr.Attrs, "name")
	assert.Equal(t, "nobody", repoErr.Attrs["name"])
}

func TestDelete(t *testing.T) {
	db := newTestDB(t)
	seedSchool(t, db)
	ctx := context.Background()
	repo := repository.NewRepository[Student](db)

	before, err := repo.Count(ctx, nil)
	require.NoError(t, err)

	students, err := repo.Read(ctx, &types.Criteria{OrderBy: []string{"id ASC"}, Take: 1})
	require.NoError(t, err)
	victim := students[0]

	deleted, err := repo.Delete(ctx, victim.ID)
	require.NoError(t, err)
	assert.Equal(t, victim.ID, deleted.ID)
	assert.Equal(t, victim.Name, deleted.Name)

	_, err = repo.Get(ctx, victim.ID)
	assert.True(t, repository.IsNotFound(err))

	after, err := repo.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, before-1, after)

	_, err = repo.Delete(ctx, victim.ID)
	assert.True(t, repository.IsNotFound(err))
}

func TestUniqueViolationBecomesIntegrityError(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := repository.NewRepository[Dummy](db)

	v := "taken"
	_, err := repo.Create(ctx, repository.Attrs{"foo": &v})
	require.NoError(t, err)

	_, err = repo.Create(ctx, repository.Attrs{"foo": &v})
	require.Error(t, err)
	assert.True(t, repository.IsIntegrityViolation(err))
	assert.True(t, errors.Is(err, repository.ErrIntegrityViolation))

	var repoErr *repository.Error
	require.True(t, errors.As(err, &repoErr))
	assert.Equal(t, repository.OpCreate, repoErr.Op)
	assert.Equal(t, "Dummy", repoErr.Entity)
	assert.Contains(t, repoErr.Attrs, "foo")
	assert.Error(t, repoErr.Unwrap())
}

func TestBulkCreate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := repository.NewRepository[Course](db)

	created, err := repo.BulkCreate(ctx, []repository.Attrs{
		{"name": "Algebra"},
		{"name": "Biology"},
		{"name": "Chemistry"},
	})
	require.NoError(t, err)
	require.Len(t, created, 3)
	assert.Equal(t, "Algebra", created[0].Name)
	assert.Equal(t, "Chemistry", created[2].Name)
	for _, c := range created {
		assert.NotZero(t, c.ID)
	}

	empty, err := repo.BulkCreate(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestUpsert(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := repository.NewRepository[Locker](db)

	created, err := repo.Create(ctx, repository.Attrs{
		"code": 1,
		"meta": types.JSONObject{"floor": "A"},
	})
	require.NoError(t, err)

	err = repo.Upsert(ctx,
		[]*Locker{{Code: 1, Meta: types.JSONObject{"floor": "B"}}},
		[]string{"code"}, []string{"meta"})
	require.NoError(t, err)

	total, err := repo.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	fetched, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "B", fetched.Meta["floor"])

	err = repo.Upsert(ctx, []*Locker{{Code: 2}}, []string{"code"}, nil)
	assert.Error(t, err)
}

func TestPage(t *testing.T) {
	db := newTestDB(t)
	seedSchool(t, db)
	ctx := context.Background()
	repo := repository.NewRepository[Student](db)

	page, err := repo.Page(ctx, types.NewPageRequestWithOrders(2, 3, []string{"id ASC"}))
	require.NoError(t, err)
	assert.Equal(t, 7, page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 3, page.PageSize)
	require.Len(t, page.Items, 3)

	empty, err := repo.Page(ctx, types.NewPageRequestWithWhere(1, 10,
		types.NewPredicate("name = ?", "nobody")))
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Total)
	assert.Empty(t, empty.Items)
}

func TestManyToManyRelation(t *testing.T) {
	db := newTestDB(t)
	seedSchool(t, db)
	ctx := context.Background()

	students := repository.NewRepository[Student](db)
	courses := repository.NewRepository[Course](db)

	s, err := students.Read(ctx, &types.Criteria{
		Where: types.NewPredicate("name = ?", "S1_G1"),
	})
	require.NoError(t, err)
	require.Len(t, s, 1)

	c, err := courses.Read(ctx, &types.Criteria{
		Where: types.NewPredicate("name IN (?)", bun.In([]string{"Course_1", "Course_2"})),
		Take:  -1,
	})
	require.NoError(t, err)
	require.Len(t, c, 2)

	for _, course := range c {
		_, err := db.NewInsert().
			Model(&StudentCourse{StudentID: s[0].ID, CourseID: course.ID}).
			Exec(ctx)
		require.NoError(t, err)
	}

	var loaded Student
	err = db.NewSelect().
		Model(&loaded).
		Relation("Courses").
		Where("s.id = ?", s[0].ID).
		Scan(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded.Courses, 2)
}
