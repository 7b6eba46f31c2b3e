// Package store defines the persistence interfaces for users, upload batches
// and tasks, together with the errors every implementation returns. The
// service layer depends only on these interfaces; internal/platform/postgres
// provides the production implementation.
package store
