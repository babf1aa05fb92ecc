// Package i18n resolves the console language for a request and formats
// locale sensitive values.
package i18n
