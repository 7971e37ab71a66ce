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
	"fmt"
	"reflect"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

const updatedAtColumn = "updated_at"

// entityMeta holds the schema introspection results for one entity type.
// It is computed once at repository construction and shared by every call.
type entityMeta[T any] struct {
	typ    reflect.Type
	table  *schema.Table
	name   string
	fields map[string]*schema.Field
	// pkDeny holds the primary-key column and Go field names. Attribute
	// maps are sanitized against it so callers can never set an identity.
	pkDeny map[string]struct{}
}

func newEntityMeta[T any](db bun.IDB) *entityMeta[T] {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	if typ.Kind() != reflect.Struct {
		panic(fmt.Sprintf("repository: entity type %s is not a struct", typ))
	}
	table := db.Dialect().Tables().Get(typ)

	fields := make(map[string]*schema.Field, 2*len(table.Fields))
	for _, f := range table.Fields {
		fields[f.Name] = f
		fields[f.GoName] = f
	}

	deny := make(map[string]struct{}, 2*len(table.PKs))
	for _, pk := range table.PKs {
		deny[pk.Name] = struct{}{}
		deny[pk.GoName] = struct{}{}
	}

	return &entityMeta[T]{
		typ:    typ,
		table:  table,
		name:   table.TypeName,
		fields: fields,
		pkDeny: deny,
	}
}

// newEntity constructs an entity from the attribute map. Primary-key
// entries are dropped and unknown names are ignored.
func (m *entityMeta[T]) newEntity(attrs Attrs) (*T, error) {
	entity := new(T)
	if err := m.assign(entity, attrs); err != nil {
		return nil, err
	}
	return entity, nil
}

// assign copies the sanitized attribute map onto the entity struct.
// Values must be assignable or convertible to the target field type.
func (m *entityMeta[T]) assign(entity *T, attrs Attrs) error {
	strct := reflect.ValueOf(entity).Elem()
	for name, value := range attrs {
		if _, denied := m.pkDeny[name]; denied {
			continue
		}
		field, ok := m.fields[name]
		if !ok {
			continue
		}
		dst := field.Value(strct)
		if value == nil {
			dst.Set(reflect.Zero(dst.Type()))
			continue
		}
		src := reflect.ValueOf(value)
		switch {
		case src.Type().AssignableTo(dst.Type()):
			dst.Set(src)
		case src.Type().ConvertibleTo(dst.Type()):
			dst.Set(src.Convert(dst.Type()))
		default:
			return fmt.Errorf("repository: cannot assign %s to field %s.%s (%s)",
				src.Type(), m.name, field.GoName, dst.Type())
		}
	}
	return nil
}

// touchUpdatedAt refreshes the updated_at column when the entity has one.
func (m *entityMeta[T]) touchUpdatedAt(entity *T, now time.Time) {
	field, ok := m.fields[updatedAtColumn]
	if !ok {
		return
	}
	strct := reflect.ValueOf(entity).Elem()
	dst := field.Value(strct)
	if dst.Type() == reflect.TypeOf(time.Time{}) {
		dst.Set(reflect.ValueOf(now))
	}
}

// pkValue reads the primary-key value from the entity. Only single-column
// primary keys are supported.
func (m *entityMeta[T]) pkValue(entity *T) interface{} {
	if len(m.table.PKs) != 1 {
		return nil
	}
	strct := reflect.ValueOf(entity).Elem()
	return m.table.PKs[0].Value(strct).Interface()
}

// pkColumn returns the primary-key column name.
func (m *entityMeta[T]) pkColumn() string {
	if len(m.table.PKs) != 1 {
		panic(fmt.Sprintf("repository: entity %s must have exactly one primary key column", m.name))
	}
	return m.table.PKs[0].Name
}
