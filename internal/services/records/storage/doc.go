// Package storage defines persistence contracts for records service entities.
//
// HTTP handlers depend on these interfaces so they can be tested against
// in-memory fakes instead of a concrete SQLite schema.
package storage
