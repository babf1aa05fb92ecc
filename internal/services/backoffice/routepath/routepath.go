// Package routepath defines console URL paths.
package routepath

import (
	"net/url"
	"strings"
)

const (
	Root = "/"
)

const (
	StaticPrefix = "/static/"
	Healthz      = "/healthz"
)

const (
	ModulesPrefix = "/m/"
)

const (
	Contacts       = "/contacts"
	ContactsTable  = "/contacts/table"
	ContactsPrefix = "/contacts/"
)

const (
	Domains       = "/domains"
	DomainsTable  = "/domains/table"
	DomainsExport = "/domains/export"
	DomainsImport = "/domains/import"
)

// Module returns the shell page of a console module.
func Module(name string) string {
	return ModulesPrefix + escapeSegment(name)
}

// ModuleContent returns the lazily loaded content fragment of a module.
func ModuleContent(name string) string {
	return Module(name) + "/content"
}

func Contact(contactID string) string {
	return Contacts + "/" + escapeSegment(contactID)
}

func ContactDelete(contactID string) string {
	return Contact(contactID) + "/delete"
}

// ContactConfirmDelete returns the detail page with the delete modal open.
func ContactConfirmDelete(contactID string) string {
	return Contact(contactID) + "?confirm=delete"
}

func escapeSegment(raw string) string {
	return url.PathEscape(strings.TrimSpace(raw))
}
