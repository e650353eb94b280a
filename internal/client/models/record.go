// Package models defines the client-side domain records of the expense
// tracker: jobs, expenses with line items, users and settings.
package models

// Record is anything the local store keeps and the sync engine moves around.
type Record interface {
	Key() string
	Synced() bool
}

// Syncable is a Record that can produce a copy of itself with a different
// sync flag.
type Syncable[T any] interface {
	Record
	WithSynced(synced bool) T
}
