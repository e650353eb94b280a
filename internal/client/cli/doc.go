// Package cli provides the interactive ContractorBook terminal client.
//
// It wires configuration, the local book, the sync orchestrator and the
// receipt scanner behind a REPL. Writes land in the local store immediately
// and are pushed in the background; the prompt shows who is signed in, the
// connection mode and how many records are waiting to sync.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
