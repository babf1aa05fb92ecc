package contacts

import (
	"context"

	"github.com/louisbranch/backoffice/internal/services/backoffice/datalist"
	"github.com/louisbranch/backoffice/internal/services/backoffice/integration/restclient"
	"github.com/louisbranch/backoffice/internal/services/backoffice/routepath"
)

// ListClient loads pages of contacts.
type ListClient interface {
	ContactsList(ctx context.Context, query string) (restclient.Page[restclient.Contact], error)
}

// ListConfig returns the grid configuration of the contact list.
func ListConfig(client ListClient) datalist.Config[restclient.Contact, datalist.NoImport] {
	return datalist.Config[restclient.Contact, datalist.NoImport]{
		ModelName: ModuleName,
		Columns: []datalist.Column[restclient.Contact]{
			{Field: "email", Header: "contacts.column.email", Value: func(c restclient.Contact, _ datalist.Formatter) string { return c.Email }},
			{Field: "phone", Header: "contacts.column.phone", Value: func(c restclient.Contact, _ datalist.Formatter) string { return c.Phone }},
			{Field: "cityName", Header: "contacts.column.city", Value: func(c restclient.Contact, _ datalist.Formatter) string { return c.CityName }},
			{Field: "countryCode", Header: "contacts.column.countryCode", Value: func(c restclient.Contact, _ datalist.Formatter) string {
				if c.CountryCode == nil {
					return ""
				}
				return *c.CountryCode
			}},
		},
		DefaultSort: datalist.Sort{Field: "email", Direction: datalist.Asc},
		SearchLabel: "contacts.search",
		Breadcrumbs: []datalist.Breadcrumb{
			{Label: "core.dashboard", URL: routepath.Root},
			{Label: "module.contacts"},
		},
		EndRoute:  ModuleName,
		TablePath: routepath.ContactsTable,
		RowLink: func(c restclient.Contact) string {
			return routepath.Contact(c.ID)
		},
		List: func(ctx context.Context, query string) datalist.ListResult[restclient.Contact] {
			page, err := client.ContactsList(ctx, query)
			if err != nil {
				return datalist.ListResult[restclient.Contact]{Err: err}
			}
			return datalist.ListResult[restclient.Contact]{Rows: page.Items, Total: page.Total}
		},
	}
}
