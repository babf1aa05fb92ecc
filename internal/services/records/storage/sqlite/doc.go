// Package sqlite implements records storage on SQLite.
package sqlite
