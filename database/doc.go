// Package database provides connection management, configuration,
// migrations, health checks, query logging, and SQL error classification
// built on top of Bun. A connected *bun.DB (or a bun.Tx started from it)
// is the transactional unit of work consumed by the repository package.
package database
