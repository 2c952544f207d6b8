// Package client contains client-side building blocks for GophTodo.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) to talk
//     to the GophTodo backend: Register/Login/Resume, Ping, task CRUD,
//     Sync and Export.
//  2. A concrete gRPC implementation (see GRPCClient) that manages a
//     connection, injects an access token via an interceptor, transparently
//     refreshes expired tokens, and maps gRPC status codes to sentinel errors.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) for the CLI
//     cache, wiring an SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match with
// errors.Is: ErrUnavailable, ErrUnauthorized, ErrNotFound, ErrValidation,
// ErrAlreadyExists, ErrNotConfigured and ErrLocalDataNotAvailable.
// IsRejection separates definite server answers from transport failures.
//
// # Concurrency
//
// GRPCClient is safe for concurrent use; the sync runner and the REPL share
// one instance. Concurrent calls that hit an expired token refresh it once.
package client
