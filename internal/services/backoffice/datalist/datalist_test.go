package datalist

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/louisbranch/backoffice/internal/platform/logging"
)

type item struct {
	Name    string
	Secret  string
	Created time.Time
}

type itemImport struct {
	Name string
}

type notice struct {
	success bool
	key     string
	args    []string
}

type recordingNotifier struct {
	notices []notice
}

func (n *recordingNotifier) Successf(key string, args ...string) {
	n.notices = append(n.notices, notice{success: true, key: key, args: args})
}

func (n *recordingNotifier) Errorf(key string, args ...string) {
	n.notices = append(n.notices, notice{key: key, args: args})
}

type isoFormatter struct{}

func (isoFormatter) Date(t time.Time) string { return t.Format("2006-01-02") }

func (isoFormatter) Bool(value bool) string { return strconv.FormatBool(value) }

type fakeBackend struct {
	queries   []string
	result    ListResult[item]
	export    string
	exportErr error
	imported  [][]itemImport
	importErr error
}

func (b *fakeBackend) config() Config[item, itemImport] {
	return Config[item, itemImport]{
		ModelName: "items",
		Columns: []Column[item]{
			{Field: "name", Header: "items.column.name", Value: func(row item, _ Formatter) string { return row.Name }},
			{Field: "secret", Header: "items.column.secret", Hidden: true, Value: func(row item, _ Formatter) string { return row.Secret }},
			{Field: "createdAt", Header: "items.column.createdAt", Value: func(row item, f Formatter) string { return f.Date(row.Created) }},
		},
		DefaultSort: Sort{Field: "createdAt", Direction: Desc},
		SearchLabel: "items.search",
		TablePath:   "/items/table",
		RowLink:     func(row item) string { return "/items/" + row.Name },
		List: func(_ context.Context, query string) ListResult[item] {
			b.queries = append(b.queries, query)
			return b.result
		},
		ExportURL: func(_ context.Context, query string) (string, error) {
			b.queries = append(b.queries, query)
			return b.export, b.exportErr
		},
		ImportCreate: func(_ context.Context, records []itemImport) error {
			b.imported = append(b.imported, records)
			return b.importErr
		},
	}
}

func newTestView(b *fakeBackend) (*View[item, itemImport], *recordingNotifier) {
	n := &recordingNotifier{}
	return NewView(b.config(), n, logging.Discard()), n
}

func parse(t *testing.T, raw string) url.Values {
	t.Helper()
	values, err := url.ParseQuery(raw)
	if err != nil {
		t.Fatalf("parse query %q: %v", raw, err)
	}
	return values
}

func TestQueryEncode(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  string
	}{
		{name: "defaults", query: Query{}, want: "page=1&pageSize=25"},
		{name: "full", query: Query{Search: " acme ", Sort: Sort{Field: "name", Direction: Desc}, Page: 3, PageSize: 10}, want: "dir=desc&page=3&pageSize=10&search=acme&sort=name"},
		{name: "sort without direction", query: Query{Sort: Sort{Field: "name"}, Page: 1, PageSize: 50}, want: "dir=asc&page=1&pageSize=50&sort=name"},
		{name: "oversized page size", query: Query{Page: 1, PageSize: 5000}, want: "page=1&pageSize=100"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.query.Encode(); got != tc.want {
				t.Fatalf("Encode() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestParseQuery(t *testing.T) {
	def := Sort{Field: "createdAt", Direction: Desc}
	tests := []struct {
		name string
		raw  string
		want Query
	}{
		{name: "empty", raw: "", want: Query{Sort: def, Page: 1, PageSize: DefaultPageSize}},
		{name: "explicit", raw: "search=x&sort=name&dir=DESC&page=2&pageSize=10", want: Query{Search: "x", Sort: Sort{Field: "name", Direction: Desc}, Page: 2, PageSize: 10}},
		{name: "invalid numbers", raw: "page=-1&pageSize=abc&sort=name&dir=sideways", want: Query{Sort: Sort{Field: "name", Direction: Asc}, Page: 1, PageSize: DefaultPageSize}},
		{name: "page size capped", raw: "pageSize=1000000", want: Query{Sort: def, Page: 1, PageSize: MaxPageSize}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseQuery(parse(t, tc.raw), def)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("ParseQuery mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestQueryChangesReinvokeList(t *testing.T) {
	b := &fakeBackend{result: ListResult[item]{Rows: []item{{Name: "a"}}, Total: 60}}
	v, _ := newTestView(b)
	ctx := context.Background()

	v.Refresh(ctx)
	v.SetPage(ctx, 2)
	if _, err := v.SetSort(ctx, "name", Asc); err != nil {
		t.Fatalf("SetSort: %v", err)
	}
	v.SetSearch(ctx, "acme")
	v.SetPageSize(ctx, 50)
	v.SetPageSize(ctx, 1000000)

	want := []string{
		"dir=desc&page=1&pageSize=25&sort=createdAt",
		"dir=desc&page=2&pageSize=25&sort=createdAt",
		"dir=asc&page=2&pageSize=25&sort=name",
		"dir=asc&page=1&pageSize=25&search=acme&sort=name",
		"dir=asc&page=1&pageSize=50&search=acme&sort=name",
		"dir=asc&page=1&pageSize=100&search=acme&sort=name",
	}
	if diff := cmp.Diff(want, b.queries); diff != "" {
		t.Fatalf("list queries mismatch (-want +got):\n%s", diff)
	}
}

func TestSetSortRejectsUnknownColumn(t *testing.T) {
	b := &fakeBackend{}
	v, _ := newTestView(b)
	if _, err := v.SetSort(context.Background(), "nope", Asc); !errors.Is(err, ErrUnknownColumn) {
		t.Fatalf("SetSort error = %v, want ErrUnknownColumn", err)
	}
	if len(b.queries) != 0 {
		t.Fatalf("list calls = %d, want 0", len(b.queries))
	}
}

func TestFailedListKeepsPreviousPage(t *testing.T) {
	b := &fakeBackend{result: ListResult[item]{Rows: []item{{Name: "a"}, {Name: "b"}}, Total: 2}}
	v, _ := newTestView(b)
	ctx := context.Background()
	v.Refresh(ctx)

	b.result = ListResult[item]{Err: errors.New("boom")}
	result := v.SetSearch(ctx, "x")
	if result.Err == nil {
		t.Fatal("expected list error")
	}
	if got := len(v.Rows()); got != 2 {
		t.Fatalf("rows = %d, want previous 2", got)
	}
	if v.Err() == nil {
		t.Fatal("Err() = nil, want recorded failure")
	}
	if !v.Grid(isoFormatter{}).Failed {
		t.Fatal("grid not marked failed")
	}

	b.result = ListResult[item]{}
	v.Refresh(ctx)
	if v.Err() != nil {
		t.Fatalf("Err() = %v, want nil after success", v.Err())
	}
	if len(v.Rows()) != 0 {
		t.Fatalf("rows = %d, want empty page", len(v.Rows()))
	}
}

func TestHiddenColumnsUntilToggled(t *testing.T) {
	v, _ := newTestView(&fakeBackend{})
	fields := func() []string {
		var out []string
		for _, col := range v.VisibleColumns() {
			out = append(out, col.Field)
		}
		return out
	}
	if diff := cmp.Diff([]string{"name", "createdAt"}, fields()); diff != "" {
		t.Fatalf("visible mismatch (-want +got):\n%s", diff)
	}
	if err := v.ToggleColumn("secret"); err != nil {
		t.Fatalf("ToggleColumn: %v", err)
	}
	if diff := cmp.Diff([]string{"name", "secret", "createdAt"}, fields()); diff != "" {
		t.Fatalf("visible mismatch (-want +got):\n%s", diff)
	}
	if err := v.ToggleColumn("missing"); !errors.Is(err, ErrUnknownColumn) {
		t.Fatalf("ToggleColumn error = %v, want ErrUnknownColumn", err)
	}
}

func TestExportUsesCurrentQuery(t *testing.T) {
	b := &fakeBackend{export: "http://records/download?x=1"}
	v, n := newTestView(b)
	v.Restore(parse(t, "search=acme&sort=name&dir=asc&page=2"))

	got, err := v.Export(context.Background())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if got != b.export {
		t.Fatalf("Export() = %q, want %q", got, b.export)
	}
	if diff := cmp.Diff([]string{"dir=asc&page=2&pageSize=25&search=acme&sort=name"}, b.queries); diff != "" {
		t.Fatalf("export queries mismatch (-want +got):\n%s", diff)
	}
	if len(n.notices) != 0 {
		t.Fatalf("notices = %v, want none", n.notices)
	}

	b.exportErr = errors.New("down")
	if _, err := v.Export(context.Background()); err == nil {
		t.Fatal("expected export error")
	}
	want := []notice{{key: MessageExportFailed, args: []string{"items"}}}
	if diff := cmp.Diff(want, n.notices, cmp.AllowUnexported(notice{})); diff != "" {
		t.Fatalf("notices mismatch (-want +got):\n%s", diff)
	}
}

func TestImportContract(t *testing.T) {
	t.Run("success notifies without reloading", func(t *testing.T) {
		b := &fakeBackend{}
		v, n := newTestView(b)
		records := []itemImport{{Name: "a"}, {Name: "b"}}
		if err := v.Import(context.Background(), records); err != nil {
			t.Fatalf("Import: %v", err)
		}
		want := []notice{{success: true, key: MessageImported, args: []string{"2", "items"}}}
		if diff := cmp.Diff(want, n.notices, cmp.AllowUnexported(notice{})); diff != "" {
			t.Fatalf("notices mismatch (-want +got):\n%s", diff)
		}
		if len(b.queries) != 0 {
			t.Fatalf("list calls = %d, want none", len(b.queries))
		}
		if diff := cmp.Diff([][]itemImport{records}, b.imported); diff != "" {
			t.Fatalf("imported mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("failure notifies and keeps state", func(t *testing.T) {
		b := &fakeBackend{importErr: errors.New("rejected")}
		v, n := newTestView(b)
		before := v.Query()
		if err := v.Import(context.Background(), []itemImport{{Name: "a"}}); err == nil {
			t.Fatal("expected import error")
		}
		want := []notice{{key: MessageImportFailed, args: []string{"items"}}}
		if diff := cmp.Diff(want, n.notices, cmp.AllowUnexported(notice{})); diff != "" {
			t.Fatalf("notices mismatch (-want +got):\n%s", diff)
		}
		if len(b.queries) != 0 {
			t.Fatalf("list calls = %d, want none", len(b.queries))
		}
		if diff := cmp.Diff(before, v.Query()); diff != "" {
			t.Fatalf("query changed (-before +after):\n%s", diff)
		}
	})
}

func TestMissingCallbacks(t *testing.T) {
	v := NewView(Config[item, itemImport]{ModelName: "items"}, nil, nil)
	if got := v.Refresh(context.Background()); !errors.Is(got.Err, ErrNotConfigured) {
		t.Fatalf("Refresh error = %v, want ErrNotConfigured", got.Err)
	}
	if _, err := v.Export(context.Background()); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("Export error = %v, want ErrNotConfigured", err)
	}
	if err := v.Import(context.Background(), nil); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("Import error = %v, want ErrNotConfigured", err)
	}
}

func TestGridModel(t *testing.T) {
	created := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
	b := &fakeBackend{result: ListResult[item]{Rows: []item{{Name: "a", Secret: "s", Created: created}}, Total: 30}}
	v, _ := newTestView(b)
	v.Restore(parse(t, "sort=name&dir=asc&page=1&pageSize=10"))
	v.Refresh(context.Background())

	grid := v.Grid(isoFormatter{})
	if grid.PageCount != 3 || grid.Page != 1 || grid.Total != 30 {
		t.Fatalf("paging = %d/%d total %d, want 1/3 total 30", grid.Page, grid.PageCount, grid.Total)
	}
	if grid.PrevURL != "" {
		t.Fatalf("PrevURL = %q, want empty on first page", grid.PrevURL)
	}
	if want := "/items/table?dir=asc&page=2&pageSize=10&sort=name"; grid.NextURL != want {
		t.Fatalf("NextURL = %q, want %q", grid.NextURL, want)
	}

	wantHeaders := []Header{
		{Field: "name", Label: "items.column.name", Sorted: true, Direction: Asc, SortURL: "/items/table?dir=desc&page=1&pageSize=10&sort=name"},
		{Field: "createdAt", Label: "items.column.createdAt", SortURL: "/items/table?dir=asc&page=1&pageSize=10&sort=createdAt"},
	}
	if diff := cmp.Diff(wantHeaders, grid.Headers); diff != "" {
		t.Fatalf("headers mismatch (-want +got):\n%s", diff)
	}

	wantRows := []GridRow{{Cells: []string{"a", "2024-03-09"}, Link: "/items/a"}}
	if diff := cmp.Diff(wantRows, grid.Rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}

	var secret Toggle
	for _, toggle := range grid.Toggles {
		if toggle.Field == "secret" {
			secret = toggle
		}
	}
	if secret.Visible {
		t.Fatal("secret toggle visible, want hidden")
	}
	toggled, err := url.Parse(secret.ToggleURL)
	if err != nil {
		t.Fatalf("parse toggle url: %v", err)
	}
	if got := toggled.Query().Get(ParamColumns); got != "name,secret,createdAt" {
		t.Fatalf("cols = %q, want name,secret,createdAt", got)
	}

	sized, err := url.Parse(grid.PageSizeURL(50))
	if err != nil {
		t.Fatalf("parse page size url: %v", err)
	}
	if got := sized.Query().Get(ParamPageSize); got != strconv.Itoa(50) {
		t.Fatalf("pageSize = %q, want 50", got)
	}
}

func TestRestoreColumnsAndUnknownSort(t *testing.T) {
	v, _ := newTestView(&fakeBackend{})
	v.Restore(parse(t, "sort=bogus&cols=secret"))

	if diff := cmp.Diff(Sort{Field: "createdAt", Direction: Desc}, v.Query().Sort); diff != "" {
		t.Fatalf("sort mismatch (-want +got):\n%s", diff)
	}
	visible := v.VisibleColumns()
	if len(visible) != 1 || visible[0].Field != "secret" {
		t.Fatalf("visible = %+v, want only secret", visible)
	}
}
