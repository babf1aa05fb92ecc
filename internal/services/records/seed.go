package records

import (
	"context"
	"fmt"

	"github.com/louisbranch/backoffice/internal/services/records/query"
	"github.com/louisbranch/backoffice/internal/services/records/storage"
	recordsqlite "github.com/louisbranch/backoffice/internal/services/records/storage/sqlite"
)

func strPtr(value string) *string {
	return &value
}

var demoContacts = []storage.ContactInput{
	{Email: "ana.souza@example.com", Phone: "+55 81 5555 0101", CityName: "Recife", Address1: "Rua da Aurora 120", CountryCode: strPtr("BR")},
	{Email: "jonas.weber@example.com", Phone: "+49 30 5555 0102", CityName: "Berlin", Address1: "Torstraße 8", Address2: "Hinterhaus", CountryCode: strPtr("DE")},
	{Email: "mei.tanaka@example.com", Phone: "+81 3 5555 0103", CityName: "Tokyo", Address1: "2-1 Marunouchi", CountryCode: strPtr("JP")},
	{Email: "no.country@example.com", Phone: "+1 555 0104", CityName: "Unknown"},
}

var demoDomains = []storage.DomainImport{
	{Name: "acme.io", Title: "Acme", Description: "Primary storefront", URL: "https://acme.io", DNSCheck: true},
	{Name: "acme-labs.dev", Title: "Acme Labs", Description: "Experiments", URL: "https://acme-labs.dev", Free: true},
	{Name: "status.acme.io", Title: "Status", Description: "Status page", URL: "https://status.acme.io", DNSCheck: true, Free: true},
}

// SeedDemo inserts sample contacts and domains when the store has none.
func SeedDemo(ctx context.Context, store storage.Store) error {
	plan, err := recordsqlite.ContactsResource.Parse(query.ParamPageSize + "=1")
	if err != nil {
		return err
	}
	contacts, err := store.ListContacts(ctx, plan)
	if err != nil {
		return fmt.Errorf("count contacts: %w", err)
	}
	if contacts.Total == 0 {
		for _, input := range demoContacts {
			if _, err := store.CreateContact(ctx, input); err != nil {
				return fmt.Errorf("create contact %s: %w", input.Email, err)
			}
		}
	}

	plan, err = recordsqlite.DomainsResource.Parse(query.ParamPageSize + "=1")
	if err != nil {
		return err
	}
	domains, err := store.ListDomains(ctx, plan)
	if err != nil {
		return fmt.Errorf("count domains: %w", err)
	}
	if domains.Total == 0 {
		if _, err := store.ImportDomains(ctx, demoDomains); err != nil {
			return fmt.Errorf("import domains: %w", err)
		}
	}
	return nil
}
