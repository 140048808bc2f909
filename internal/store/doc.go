// Package store persists stocking events and subscriber filter profiles in
// an embedded SQLite database.
//
// Event inserts are keyed by the content-derived event ID and wrapped in a
// single transaction per batch, so an event whose ID was recorded by any
// earlier poll cycle is silently ignored and concurrent cycles can never
// both claim the same event as new.
package store
