package domains

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/louisbranch/backoffice/internal/platform/logging"
	"github.com/louisbranch/backoffice/internal/services/backoffice/datalist"
	"github.com/louisbranch/backoffice/internal/services/backoffice/integration/restclient"
)

type fakeClient struct {
	page      restclient.Page[restclient.Domain]
	listErr   error
	link      restclient.ExportLink
	exportErr error
	importErr error
	queries   []string
	imports   [][]restclient.DomainImport
}

func (f *fakeClient) DomainsList(_ context.Context, query string) (restclient.Page[restclient.Domain], error) {
	f.queries = append(f.queries, query)
	return f.page, f.listErr
}

func (f *fakeClient) DomainsExportList(_ context.Context, query string) (restclient.ExportLink, error) {
	f.queries = append(f.queries, query)
	return f.link, f.exportErr
}

func (f *fakeClient) DomainsImportCreate(_ context.Context, records []restclient.DomainImport) (int, error) {
	f.imports = append(f.imports, records)
	return len(records), f.importErr
}

type usFormatter struct{}

func (usFormatter) Date(t time.Time) string { return t.Format("01/02/2006") }

func (usFormatter) Bool(value bool) string { return strconv.FormatBool(value) }

type discardNotifier struct{}

func (discardNotifier) Successf(string, ...string) {}
func (discardNotifier) Errorf(string, ...string)   {}

func visibleFields(cols []datalist.Column[restclient.Domain]) []string {
	fields := make([]string, 0, len(cols))
	for _, col := range cols {
		fields = append(fields, col.Field)
	}
	return fields
}

func TestDNSCheckAndFreeStartHidden(t *testing.T) {
	view := datalist.NewView(ListConfig(&fakeClient{}), discardNotifier{}, logging.Discard())

	want := []string{"name", "title", "description", "url", "createdAt"}
	if diff := cmp.Diff(want, visibleFields(view.VisibleColumns())); diff != "" {
		t.Fatalf("visible columns mismatch (-want +got):\n%s", diff)
	}
	if err := view.ToggleColumn("free"); err != nil {
		t.Fatalf("ToggleColumn: %v", err)
	}
	want = []string{"name", "title", "description", "url", "free", "createdAt"}
	if diff := cmp.Diff(want, visibleFields(view.VisibleColumns())); diff != "" {
		t.Fatalf("visible columns mismatch (-want +got):\n%s", diff)
	}
}

func TestSortChangeReinvokesList(t *testing.T) {
	client := &fakeClient{}
	view := datalist.NewView(ListConfig(client), discardNotifier{}, logging.Discard())
	ctx := context.Background()

	view.Refresh(ctx)
	if _, err := view.SetSort(ctx, "name", datalist.Asc); err != nil {
		t.Fatalf("SetSort: %v", err)
	}
	want := []string{
		"dir=desc&page=1&pageSize=25&sort=createdAt",
		"dir=asc&page=1&pageSize=25&sort=name",
	}
	if diff := cmp.Diff(want, client.queries); diff != "" {
		t.Fatalf("queries mismatch (-want +got):\n%s", diff)
	}
}

func TestCreatedAtFormatsAsDate(t *testing.T) {
	client := &fakeClient{page: restclient.Page[restclient.Domain]{
		Items: []restclient.Domain{{Name: "acme.test", CreatedAt: time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC)}},
		Total: 1,
	}}
	view := datalist.NewView(ListConfig(client), discardNotifier{}, logging.Discard())
	view.Refresh(context.Background())

	grid := view.Grid(usFormatter{})
	if len(grid.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(grid.Rows))
	}
	cells := grid.Rows[0].Cells
	if got := cells[len(cells)-1]; got != "12/31/2024" {
		t.Fatalf("createdAt cell = %q, want 12/31/2024", got)
	}
	if grid.EndRoute != "orders" {
		t.Fatalf("EndRoute = %q, want orders", grid.EndRoute)
	}
	if !grid.CanExport || !grid.CanImport {
		t.Fatal("domain grid should export and import")
	}
}

func TestExportURL(t *testing.T) {
	tests := []struct {
		name    string
		client  *fakeClient
		want    string
		wantErr error
	}{
		{name: "link", client: &fakeClient{link: restclient.ExportLink{URL: "http://records/download"}}, want: "http://records/download"},
		{name: "empty link", client: &fakeClient{}, wantErr: ErrEmptyExportURL},
		{name: "api error", client: &fakeClient{exportErr: restclient.ErrUnavailable}, wantErr: restclient.ErrUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ListConfig(tc.client).ExportURL(context.Background(), "page=1")
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("ExportURL error = %v, want %v", err, tc.wantErr)
			}
			if got != tc.want {
				t.Fatalf("ExportURL = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestImportForwardsRecords(t *testing.T) {
	client := &fakeClient{}
	records := []restclient.DomainImport{{Name: "a.test"}, {Name: "b.test", Free: true}}
	if err := ListConfig(client).ImportCreate(context.Background(), records); err != nil {
		t.Fatalf("ImportCreate: %v", err)
	}
	if diff := cmp.Diff([][]restclient.DomainImport{records}, client.imports); diff != "" {
		t.Fatalf("imports mismatch (-want +got):\n%s", diff)
	}

	client.importErr = restclient.ErrUnavailable
	if err := ListConfig(client).ImportCreate(context.Background(), records); !errors.Is(err, restclient.ErrUnavailable) {
		t.Fatalf("ImportCreate error = %v, want ErrUnavailable", err)
	}
}
