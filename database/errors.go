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
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// SQLErrorClass groups driver errors into the classes the repository layer
// cares about. Classification covers MySQL error numbers, Postgres SQLSTATE
// codes, and SQLite message text.
type SQLErrorClass int

const (
	SQLErrorUnknown SQLErrorClass = iota
	SQLErrorNoRows
	SQLErrorDuplicateKey
	SQLErrorNotNullViolation
	SQLErrorForeignKeyViolation
	SQLErrorCheckViolation
	SQLErrorDataTruncated
	SQLErrorLockNotAvailable
)

func (c SQLErrorClass) String() string {
	switch c {
	case SQLErrorNoRows:
		return "no rows"
	case SQLErrorDuplicateKey:
		return "duplicate key"
	case SQLErrorNotNullViolation:
		return "not-null violation"
	case SQLErrorForeignKeyViolation:
		return "foreign key violation"
	case SQLErrorCheckViolation:
		return "check constraint violation"
	case SQLErrorDataTruncated:
		return "data truncated"
	case SQLErrorLockNotAvailable:
		return "lock not available"
	default:
		return "unknown"
	}
}

// IsConstraintViolation reports whether the class represents a storage
// integrity constraint rejected by the engine.
func (c SQLErrorClass) IsConstraintViolation() bool {
	switch c {
	case SQLErrorDuplicateKey, SQLErrorNotNullViolation,
		SQLErrorForeignKeyViolation, SQLErrorCheckViolation:
		return true
	default:
		return false
	}
}

// ClassifySQLError maps a driver error to its SQLErrorClass. A nil error
// or an unrecognized one classifies as SQLErrorUnknown.
func ClassifySQLError(err error) SQLErrorClass {
	if err == nil {
		return SQLErrorUnknown
	}
	if errors.Is(err, sql.ErrNoRows) {
		return SQLErrorNoRows
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case 1062:
			return SQLErrorDuplicateKey
		case 1048:
			return SQLErrorNotNullViolation
		case 1216, 1217, 1451, 1452:
			return SQLErrorForeignKeyViolation
		case 3819:
			return SQLErrorCheckViolation
		case 1265:
			return SQLErrorDataTruncated
		case 1205, 3572:
			return SQLErrorLockNotAvailable
		default:
			return SQLErrorUnknown
		}
	}

	s := strings.ToLower(err.Error())
	if strings.Contains(s, "sqlstate 23505") ||
		strings.Contains(s, "duplicate key value") ||
		strings.Contains(s, "unique constraint failed") {
		return SQLErrorDuplicateKey
	}
	if strings.Contains(s, "sqlstate 23502") ||
		strings.Contains(s, "not-null constraint") ||
		strings.Contains(s, "not null constraint failed") {
		return SQLErrorNotNullViolation
	}
	if strings.Contains(s, "sqlstate 23503") ||
		strings.Contains(s, "foreign key violation") ||
		strings.Contains(s, "foreign key constraint failed") {
		return SQLErrorForeignKeyViolation
	}
	if strings.Contains(s, "sqlstate 23514") ||
		strings.Contains(s, "check constraint") {
		return SQLErrorCheckViolation
	}
	if strings.Contains(s, "sqlstate 22001") ||
		strings.Contains(s, "string data right truncation") ||
		strings.Contains(s, "data truncated") {
		return SQLErrorDataTruncated
	}
	if strings.Contains(s, "sqlstate 55p03") ||
		strings.Contains(s, "could not obtain lock") ||
		strings.Contains(s, "lock wait timeout") {
		return SQLErrorLockNotAvailable
	}
	return SQLErrorUnknown
}
