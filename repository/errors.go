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
	"errors"
	"fmt"

	"github.com/stratakit/strata/database"
)

// Op identifies the repository operation an error originated from.
type Op string

const (
	OpCount      Op = "COUNT"
	OpCreate     Op = "CREATE"
	OpBulkCreate Op = "BULK_CREATE"
	OpGet        Op = "GET"
	OpRead       Op = "READ"
	OpUpdate     Op = "UPDATE"
	OpDelete     Op = "DELETE"
	OpUpsert     Op = "UPSERT"
	OpPage       Op = "PAGE"
)

// ErrorKind classifies repository failures.
type ErrorKind int

const (
	// KindUnknown wraps any storage-layer failure on a write path that is
	// not a recognized constraint violation.
	KindUnknown ErrorKind = iota
	// KindNotFound means the requested identity does not exist in storage.
	KindNotFound
	// KindIntegrityViolation means the storage engine rejected a write
	// because of a constraint (uniqueness, foreign key, not-null, check).
	KindIntegrityViolation
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindIntegrityViolation:
		return "integrity violation"
	default:
		return "unknown failure"
	}
}

// Error is the repository error type. It records the operation kind, the
// entity type, the identity involved when there is one, and the original
// attribute map of the call for diagnostic replay. The underlying storage
// error stays reachable through Unwrap.
type Error struct {
	Kind   ErrorKind
	Op     Op
	Entity string
	ID     interface{}
	Attrs  Attrs
	Cause  error
}

func (e *Error) Error() string {
	header := fmt.Sprintf("db operation [%s] on entity '%s'", e.Op, e.Entity)
	if e.ID != nil {
		header += fmt.Sprintf(" with id '%v'", e.ID)
	}
	msg := fmt.Sprintf("%s failed: %s", header, e.Kind)
	if e.Cause != nil {
		msg += fmt.Sprintf(" (caused by: %v)", e.Cause)
	}
	return msg
}

// Unwrap returns the underlying storage error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors by kind, so errors.Is(err, ErrNotFound) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinel values for errors.Is checks.
var (
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrIntegrityViolation = &Error{Kind: KindIntegrityViolation}
	ErrUnknown            = &Error{Kind: KindUnknown}
)

// IsNotFound reports whether err is a repository not-found error.
func IsNotFound(err error) bool {
	return isKind(err, KindNotFound)
}

// IsIntegrityViolation reports whether err is a constraint rejection.
func IsIntegrityViolation(err error) bool {
	return isKind(err, KindIntegrityViolation)
}

// IsUnknown reports whether err is a wrapped unrecognized storage failure.
func IsUnknown(err error) bool {
	return isKind(err, KindUnknown)
}

func isKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

func notFoundError(op Op, entity string, id interface{}, attrs Attrs) *Error {
	return &Error{
		Kind:   KindNotFound,
		Op:     op,
		Entity: entity,
		ID:     id,
		Attrs:  attrs,
	}
}

// wrapWriteError remaps a storage failure on a write path: recognized
// constraint rejections become integrity violations, everything else is
// wrapped as an unknown failure. The original cause is preserved.
func wrapWriteError(op Op, entity string, id interface{}, attrs Attrs, cause error) *Error {
	kind := KindUnknown
	if database.ClassifySQLError(cause).IsConstraintViolation() {
		kind = KindIntegrityViolation
	}
	return &Error{
		Kind:   kind,
		Op:     op,
		Entity: entity,
		ID:     id,
		Attrs:  attrs,
		Cause:  cause,
	}
}
