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
	"time"

	"github.com/stratakit/strata/database"
)

// OpEvent describes one completed repository operation.
type OpEvent struct {
	Op      Op
	Entity  string
	ID      interface{}
	Err     error
	Elapsed time.Duration
}

// Instrumenter receives a callback after every repository operation.
type Instrumenter interface {
	ObserveOp(ctx context.Context, event OpEvent)
}

type nopInstrumenter struct{}

func (nopInstrumenter) ObserveOp(context.Context, OpEvent) {}

// LoggingInstrumenter reports repository operations to a database logger,
// failures at error level and successes at debug level.
type LoggingInstrumenter struct {
	logger database.Logger
}

// NewLoggingInstrumenter returns an instrumenter writing to logger. A nil
// logger falls back to the package-level database logger.
func NewLoggingInstrumenter(logger database.Logger) *LoggingInstrumenter {
	if logger == nil {
		logger = database.GetLogger()
	}
	return &LoggingInstrumenter{logger: logger}
}

func (l *LoggingInstrumenter) ObserveOp(ctx context.Context, event OpEvent) {
	fields := []interface{}{
		"op", string(event.Op),
		"entity", event.Entity,
		"elapsed", event.Elapsed.String(),
	}
	if event.ID != nil {
		fields = append(fields, "id", event.ID)
	}
	if event.Err != nil {
		fields = append(fields, "error", event.Err.Error())
		l.logger.Error("db operation failed", fields...)
		return
	}
	l.logger.Debug("db operation completed", fields...)
}
