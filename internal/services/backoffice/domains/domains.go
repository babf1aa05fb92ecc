// Package domains configures the domain list of the console.
package domains

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/backoffice/internal/services/backoffice/datalist"
	"github.com/louisbranch/backoffice/internal/services/backoffice/integration/restclient"
	"github.com/louisbranch/backoffice/internal/services/backoffice/routepath"
)

// ModuleName is the console module that owns domains.
const ModuleName = "domains"

// endRoute is the module the list breadcrumb trail ends on.
const endRoute = "orders"

// Client is the records API surface the domain list needs.
type Client interface {
	DomainsList(ctx context.Context, query string) (restclient.Page[restclient.Domain], error)
	DomainsExportList(ctx context.Context, query string) (restclient.ExportLink, error)
	DomainsImportCreate(ctx context.Context, records []restclient.DomainImport) (int, error)
}

// ErrEmptyExportURL reports an export response without a download link.
var ErrEmptyExportURL = errors.New("export url is empty")

// ListConfig returns the grid configuration of the domain list. dnsCheck and
// free start hidden; createdAt renders as a locale date.
func ListConfig(client Client) datalist.Config[restclient.Domain, restclient.DomainImport] {
	return datalist.Config[restclient.Domain, restclient.DomainImport]{
		ModelName: ModuleName,
		Columns: []datalist.Column[restclient.Domain]{
			{Field: "name", Header: "domains.column.name", Value: func(d restclient.Domain, _ datalist.Formatter) string { return d.Name }},
			{Field: "title", Header: "domains.column.title", Value: func(d restclient.Domain, _ datalist.Formatter) string { return d.Title }},
			{Field: "description", Header: "domains.column.description", Value: func(d restclient.Domain, _ datalist.Formatter) string { return d.Description }},
			{Field: "url", Header: "domains.column.url", Value: func(d restclient.Domain, _ datalist.Formatter) string { return d.URL }},
			{Field: "dnsCheck", Header: "domains.column.dnsCheck", Hidden: true, Value: func(d restclient.Domain, f datalist.Formatter) string { return f.Bool(d.DNSCheck) }},
			{Field: "free", Header: "domains.column.free", Hidden: true, Value: func(d restclient.Domain, f datalist.Formatter) string { return f.Bool(d.Free) }},
			{Field: "createdAt", Header: "domains.column.createdAt", Value: func(d restclient.Domain, f datalist.Formatter) string {
				if d.CreatedAt.IsZero() {
					return ""
				}
				return f.Date(d.CreatedAt)
			}},
		},
		DefaultSort: datalist.Sort{Field: "createdAt", Direction: datalist.Desc},
		SearchLabel: "domains.search",
		Breadcrumbs: []datalist.Breadcrumb{
			{Label: "core.dashboard", URL: routepath.Root},
			{Label: "module.domains"},
		},
		EndRoute:   endRoute,
		TablePath:  routepath.DomainsTable,
		ExportPath: routepath.DomainsExport,
		ImportPath: routepath.DomainsImport,
		List: func(ctx context.Context, query string) datalist.ListResult[restclient.Domain] {
			page, err := client.DomainsList(ctx, query)
			if err != nil {
				return datalist.ListResult[restclient.Domain]{Err: err}
			}
			return datalist.ListResult[restclient.Domain]{Rows: page.Items, Total: page.Total}
		},
		ExportURL: func(ctx context.Context, query string) (string, error) {
			link, err := client.DomainsExportList(ctx, query)
			if err != nil {
				return "", err
			}
			if strings.TrimSpace(link.URL) == "" {
				return "", ErrEmptyExportURL
			}
			return link.URL, nil
		},
		ImportCreate: func(ctx context.Context, records []restclient.DomainImport) error {
			if _, err := client.DomainsImportCreate(ctx, records); err != nil {
				return fmt.Errorf("import domains: %w", err)
			}
			return nil
		},
	}
}
