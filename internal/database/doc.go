// Package database provides PostgreSQL connectivity and repositories.
//
// Uses pgx for connection pooling and inline migrations run at startup.
// Repositories implement domain interfaces: InstanceRepository, HistoryRepository.
package database
