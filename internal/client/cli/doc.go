// Package cli provides the interactive GophTodo command-line client.
//
// It wires configuration, the local SQLite cache, the API services and a
// REPL. At startup the cached list is restored and a stored session is
// resumed; background workers then reconcile with the server, watch
// connectivity and print due date reminders while the user types commands.
//
// Tasks are referred to by their 1-based position in the full list, as
// printed by "list". Changes apply to the cache immediately; a change the
// server has not confirmed yet is marked with a star.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
