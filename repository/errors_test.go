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
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stratakit/strata/repository"
)

func TestErrorMessage(t *testing.T) {
	cause := fmt.Errorf("disk on fire")
	err := &repository.Error{
		Kind:   repository.KindUnknown,
		Op:     repository.OpCreate,
		Entity: "Student",
		Attrs:  repository.Attrs{"name": "S1"},
		Cause:  cause,
	}
	msg := err.Error()
	assert.Contains(t, msg, "[CREATE]")
	assert.Contains(t, msg, "'Student'")
	assert.Contains(t, msg, "disk on fire")

	withID := &repository.Error{
		Kind:   repository.KindNotFound,
		Op:     repository.OpGet,
		Entity: "Student",
		ID:     7,
	}
	assert.Contains(t, withID.Error(), "with id '7'")
	assert.Contains(t, withID.Error(), "not found")
}

func TestErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := &repository.Error{Kind: repository.KindIntegrityViolation, Cause: cause}
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestErrorKindMatching(t *testing.T) {
	notFound := &repository.Error{Kind: repository.KindNotFound, Op: repository.OpGet}
	integrity := &repository.Error{Kind: repository.KindIntegrityViolation, Op: repository.OpCreate}
	unknown := &repository.Error{Kind: repository.KindUnknown, Op: repository.OpUpdate}

	assert.True(t, errors.Is(notFound, repository.ErrNotFound))
	assert.False(t, errors.Is(notFound, repository.ErrIntegrityViolation))
	assert.True(t, errors.Is(integrity, repository.ErrIntegrityViolation))
	assert.True(t, errors.Is(unknown, repository.ErrUnknown))

	assert.True(t, repository.IsNotFound(notFound))
	assert.True(t, repository.IsIntegrityViolation(integrity))
	assert.True(t, repository.IsUnknown(unknown))
	assert.False(t, repository.IsNotFound(fmt.Errorf("plain")))
}
