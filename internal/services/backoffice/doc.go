// Package backoffice hosts the admin console: server rendered pages and HTMX
// fragments over the records API.
package backoffice
