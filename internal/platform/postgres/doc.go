// Package postgres provides PostgreSQL-specific implementations for the data
// storage interfaces defined in the internal/store package, plus the goose
// migration runner for the embedded schema.
package postgres
