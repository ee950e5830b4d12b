// Package cli provides the interactive shelfsync command-line client.
//
// It wires configuration, the local sqlite library, the remote blob store
// and an interactive REPL that drives synchronization. Typical flow: open
// the database, connect the store, and execute user commands.
//
// Key features:
//   - Enable / disable syncing under a shared key prefix
//   - Push the library with sync (batched, interactive or silent)
//   - Pull remote records with import (sequential, incremental)
//   - Manage the local library: list, add, delete, export
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
