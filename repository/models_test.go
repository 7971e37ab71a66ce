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
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/stratakit/strata/repository"
	"github.com/stratakit/strata/types"
)

type Group struct {
	bun.BaseModel `bun:"table:groups,alias:g"`

	ID        int64      `bun:"id,pk,autoincrement"`
	Name      string     `bun:"name,notnull,unique"`
	CreatedAt time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
	Students  []*Student `bun:"rel:has-many,join:id=group_id"`
}

type Student struct {
	bun.BaseModel `bun:"table:students,alias:s"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Name      string    `bun:"name,notnull"`
	GroupID   int64     `bun:"group_id"`
	LockerID  int64     `bun:"locker_id,unique"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`

	Group   *Group    `bun:"rel:belongs-to,join:group_id=id"`
	Locker  *Locker   `bun:"rel:belongs-to,join:locker_id=id"`
	Courses []*Course `bun:"m2m:student_courses,join:Student=Course"`
}

type Course struct {
	bun.BaseModel `bun:"table:courses,alias:c"`

	ID   int64  `bun:"id,pk,autoincrement"`
	Name string `bun:"name,notnull,unique"`
}

type Locker struct {
	bun.BaseModel `bun:"table:lockers,alias:l"`

	ID   int64            `bun:"id,pk,autoincrement"`
	Code int              `bun:"code,notnull,unique"`
	Meta types.JSONObject `bun:"meta,type:text"`
}

type StudentCourse struct {
	bun.BaseModel `bun:"table:student_courses,alias:stc"`

	StudentID int64    `bun:"student_id,pk"`
	Student   *Student `bun:"rel:belongs-to,join:student_id=id"`
	CourseID  int64    `bun:"course_id,pk"`
	Course    *Course  `bun:"rel:belongs-to,join:course_id=id"`
}

// Dummy has three independently unique nullable columns, which makes it
// convenient for constraint-violation scenarios.
type Dummy struct {
	bun.BaseModel `bun:"table:dummies,alias:d"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Foo       *string   `bun:"foo,unique"`
	Bar       *string   `bun:"bar,unique"`
	Baz       *string   `bun:"baz,unique"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	db.RegisterModel((*StudentCourse)(nil))
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	for _, model := range []interface{}{
		(*Group)(nil), (*Student)(nil), (*Course)(nil),
		(*Locker)(nil), (*StudentCourse)(nil), (*Dummy)(nil),
	} {
		_, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx)
		require.NoError(t, err)
	}
	return db
}

// seedSchool loads the reference data set: seven lockers, five courses,
// two groups, and seven students split five and two between the groups.
func seedSchool(t *testing.T, db *bun.DB) {
	t.Helper()
	ctx := context.Background()

	lockers := repository.NewRepository[Locker](db)
	for code := 1; code <= 7; code++ {
		_, err := lockers.Create(ctx, repository.Attrs{"code": code})
		require.NoError(t, err)
	}

	courses := repository.NewRepository[Course](db)
	courseAttrs := make([]repository.Attrs, 0, 5)
	for i := 1; i <= 5; i++ {
		courseAttrs = append(courseAttrs, repository.Attrs{"name": fmt.Sprintf("Course_%d", i)})
	}
	_, err := courses.BulkCreate(ctx, courseAttrs)
	require.NoError(t, err)

	groups := repository.NewRepository[Group](db)
	g1, err := groups.Create(ctx, repository.Attrs{"name": "G1"})
	require.NoError(t, err)
	g2, err := groups.Create(ctx, repository.Attrs{"name": "G2"})
	require.NoError(t, err)

	students := repository.NewRepository[Student](db)
	locker := int64(1)
	for i := 1; i <= 5; i++ {
		_, err := students.Create(ctx, repository.Attrs{
			"name":      fmt.Sprintf("S%d_G1", i),
			"group_id":  g1.ID,
			"locker_id": locker,
		})
		require.NoError(t, err)
		locker++
	}
	for i := 1; i <= 2; i++ {
		_, err := students.Create(ctx, repository.Attrs{
			"name":      fmt.Sprintf("S%d_G2", i),
			"group_id":  g2.ID,
			"locker_id": locker,
		})
		require.NoError(t, err)
		locker++
	}
}
