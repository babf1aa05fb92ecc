package routepath

import "testing"

func TestTopLevelRoutes(t *testing.T) {
	t.Parallel()

	if Root != "/" {
		t.Fatalf("Root = %q", Root)
	}
	if StaticPrefix != "/static/" {
		t.Fatalf("StaticPrefix = %q", StaticPrefix)
	}
	if Contacts != "/contacts" {
		t.Fatalf("Contacts = %q", Contacts)
	}
	if ContactsTable != "/contacts/table" {
		t.Fatalf("ContactsTable = %q", ContactsTable)
	}
	if Domains != "/domains" {
		t.Fatalf("Domains = %q", Domains)
	}
	if DomainsTable != "/domains/table" {
		t.Fatalf("DomainsTable = %q", DomainsTable)
	}
	if DomainsExport != "/domains/export" {
		t.Fatalf("DomainsExport = %q", DomainsExport)
	}
	if DomainsImport != "/domains/import" {
		t.Fatalf("DomainsImport = %q", DomainsImport)
	}
}

func TestBuilders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		got  string
		want string
	}{
		{got: Module("contacts"), want: "/m/contacts"},
		{got: ModuleContent("domains"), want: "/m/domains/content"},
		{got: Module(" a b "), want: "/m/a%20b"},
		{got: Contact("c-1"), want: "/contacts/c-1"},
		{got: Contact("a/b"), want: "/contacts/a%2Fb"},
		{got: ContactDelete("c-1"), want: "/contacts/c-1/delete"},
		{got: ContactConfirmDelete("c-1"), want: "/contacts/c-1?confirm=delete"},
	}
	for _, tc := range tests {
		if tc.got != tc.want {
			t.Fatalf("route = %q, want %q", tc.got, tc.want)
		}
	}
}
