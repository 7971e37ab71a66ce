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

package database

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"sort"
	"time"

	"github.com/uptrace/bun"
)

// MigrationManager creates tables for registered models and executes
// versioned migration steps, tracking applied versions in the database.
type MigrationManager struct {
	db     *bun.DB
	logger Logger
	items  []MigrationItem
}

// Migration represents an applied migration record stored in the database.
type Migration struct {
	bun.BaseModel `bun:"table:schema_migrations"`

	Version     string    `bun:"version,pk"`
	Name        string    `bun:"name"`
	AppliedAt   time.Time `bun:"applied_at"`
	Description string    `bun:"description"`
}

// MigrationFunc is a migration step executed within a transaction.
type MigrationFunc func(ctx context.Context, db bun.IDB) error

// MigrationItem describes a single migration version with up/down functions.
type MigrationItem struct {
	Version     string
	Name        string
	Description string
	Up          MigrationFunc
	Down        MigrationFunc
}

// NewMigrationManager constructs a MigrationManager using the provided Bun
// database and logger.
func NewMigrationManager(db *bun.DB, logger Logger) *MigrationManager {
	return &MigrationManager{db: db, logger: logger}
}

// AddMigration registers a versioned migration step.
func (mm *MigrationManager) AddMigration(item MigrationItem) {
	mm.items = append(mm.items, item)
}

// RunMigrations creates the migration tracking table, creates tables for
// all registered models, and executes pending migration steps in ascending
// version order.
func (mm *MigrationManager) RunMigrations(ctx context.Context) error {
	// silent migration
	if _, ok := os.LookupEnv("BUNDEBUG_MIGRATION"); !ok {
		EnableBunSQLSilent(true)
	}
	defer EnableBunSQLSilent(false)

	if mm.db == nil {
		return fmt.Errorf("database not initialized")
	}

	if err := mm.createMigrationTable(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	if err := mm.createModelTables(ctx, mm.db); err != nil {
		return fmt.Errorf("failed to create model tables: %w", err)
	}

	migrations := make([]MigrationItem, len(mm.items))
	copy(migrations, mm.items)
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	for _, migration := range migrations {
		if err := mm.runMigration(ctx, migration); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", migration.Version, err)
		}
	}

	if mm.logger != nil {
		mm.logger.Info("Database migrations completed!")
	}
	return nil
}

func (mm *MigrationManager) createMigrationTable(ctx context.Context) error {
	_, err := mm.db.NewCreateTable().
		Model((*Migration)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

func (mm *MigrationManager) createModelTables(ctx context.Context, db bun.IDB) error {
	for _, model := range RegisteredModelInstances() {
		if _, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table for %s: %w", getModelName(model), err)
		}
	}
	return nil
}

func (mm *MigrationManager) runMigration(ctx context.Context, migration MigrationItem) error {
	applied, err := mm.isApplied(ctx, migration.Version)
	if err != nil {
		return err
	}
	if applied {
		return nil
	}

	return mm.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if migration.Up != nil {
			if err := migration.Up(ctx, tx); err != nil {
				return err
			}
		}
		record := &Migration{
			Version:     migration.Version,
			Name:        migration.Name,
			AppliedAt:   time.Now(),
			Description: migration.Description,
		}
		_, err := tx.NewInsert().Model(record).Exec(ctx)
		return err
	})
}

func (mm *MigrationManager) isApplied(ctx context.Context, version string) (bool, error) {
	count, err := mm.db.NewSelect().
		Model((*Migration)(nil)).
		Where("version = ?", version).
		Count(ctx)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetAppliedMigrations returns all applied migration records.
func (mm *MigrationManager) GetAppliedMigrations(ctx context.Context) ([]Migration, error) {
	var migrations []Migration
	err := mm.db.NewSelect().
		Model(&migrations).
		Order("version ASC").
		Scan(ctx)
	return migrations, err
}

func getModelName(model interface{}) string {
	t := reflect.TypeOf(model)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
