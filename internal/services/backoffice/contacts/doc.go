// Package contacts implements the contact feature of the console: the
// contact list configuration and the detail view with its confirmation
// gated delete.
package contacts
