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

package types

// DefaultPageSize bounds unordered full-table reads unless the caller
// explicitly asks for a different window.
const DefaultPageSize = 10

// Predicate describes a WHERE clause fragment and its argument values.
// The expression is passed through to the storage layer verbatim; no
// validation of its content happens above the database driver.
type Predicate struct {
	Expr string
	Args []interface{}
}

// NewPredicate creates a predicate from an expression and its arguments.
func NewPredicate(expr string, args ...interface{}) *Predicate {
	return &Predicate{expr, args}
}

// Criteria describes optional filtering, ordering, and windowing for reads.
// The zero value selects everything, unordered, with the default page size.
type Criteria struct {
	Where   *Predicate
	OrderBy []string // "id ASC", "name DESC"
	Skip    int
	Take    int // 0 means DefaultPageSize, negative means no limit
}

// Window returns the effective offset and limit. A limit of 0 means the
// read is unbounded.
func (c Criteria) Window() (offset, limit int) {
	offset = c.Skip
	if offset < 0 {
		offset = 0
	}
	switch {
	case c.Take == 0:
		limit = DefaultPageSize
	case c.Take < 0:
		limit = 0
	default:
		limit = c.Take
	}
	return offset, limit
}

// PageRequest describes pagination, optional filter, and ordering.
type PageRequest struct {
	page     int
	pageSize int
	where    *Predicate
	orders   []string
}

func (p *PageRequest) GetPageSize() int {
	if p.pageSize < 1 {
		p.pageSize = DefaultPageSize
	}
	return p.pageSize
}

func (p *PageRequest) GetPage() int {
	if p.page < 1 {
		p.page = 1
	}
	return p.page
}

func (p *PageRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

func (p *PageRequest) GetWhere() *Predicate {
	return p.where
}

func (p *PageRequest) GetOrders() []string {
	return p.orders
}

// NewPageRequest constructs a PageRequest with filter and order settings.
func NewPageRequest(page int, pageSize int, where *Predicate, orders []string) *PageRequest {
	return &PageRequest{page, pageSize, where, orders}
}

// NewPageRequestWithWhere constructs a PageRequest with a filter only.
func NewPageRequestWithWhere(page int, pageSize int, where *Predicate) *PageRequest {
	return NewPageRequest(page, pageSize, where, make([]string, 0))
}

// NewPageRequestWithOrders constructs a PageRequest with ordering only.
func NewPageRequestWithOrders(page int, pageSize int, orders []string) *PageRequest {
	return NewPageRequest(page, pageSize, nil, orders)
}

// NewDefaultPageRequest constructs a PageRequest with no filter or ordering.
func NewDefaultPageRequest(page int, pageSize int) *PageRequest {
	return NewPageRequest(page, pageSize, nil, make([]string, 0))
}

// Pagination holds paged result items along with pagination metadata.
type Pagination[T any] struct {
	Page     int
	PageSize int
	Total    int
	Items    []*T
}

// NewDefaultPagination constructs an empty pagination container.
func NewDefaultPagination[T any](page int, pageSize int) *Pagination[T] {
	return &Pagination[T]{page, pageSize, 0, make([]*T, 0)}
}
