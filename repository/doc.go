// Package repository provides a generic, type-parameterized data-access
// layer on top of Bun. A repository pairs one entity type, fixed by its
// type parameter, with one transactional unit of work (a *bun.DB or a
// bun.Tx) for its whole lifetime. It never commits, rolls back, or closes
// that unit of work; the owner does.
//
// Two flavors share one contract: NewRepository for a single logical flow
// per unit of work, and NewSharedRepository for sessions shared between
// concurrently running goroutines, where mutating operations are
// serialized through an internal gate.
package repository
