// Package kv is the client's persisted key/value state, the local analogue
// of browser storage.
//
// # Overview
//
// Store is a flat string→string map with change notifications. Two
// implementations exist:
//
//   - SQLiteStore: rows in the kv table of the local database. Subscribe
//     polls the watched keys, so writes made by any handle on the same file
//     (another process included) are reported.
//   - MemoryStore: an in-process map used when the database cannot be
//     opened and in tests. Writes are reported immediately.
//
// Notifications coalesce: a subscriber that falls behind may miss
// intermediate values, but the stored value is always written before the
// notification is sent, so re-reading the store on receipt is enough to
// converge.
package kv
