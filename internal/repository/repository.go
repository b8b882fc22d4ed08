// Package repository handles all interactions with the persistent store.
//
// It defines the store-agnostic TutorialRepository contract and the adapters
// implementing it: hand-written SQL over a pgx pool, and a key/value layout
// over Redis. Nothing here applies business rules; every method is a direct
// translation into store queries.
package repository
