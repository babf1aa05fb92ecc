package query

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var testResource = Resource{
	Name: "domains",
	Fields: []Field{
		{Name: "name", Column: "name", Searchable: true},
		{Name: "title", Column: "title", Searchable: true},
		{Name: "free", Column: "free", Type: TypeBool},
		{Name: "createdAt", Column: "created_at", Type: TypeTimestamp},
	},
	KeyColumn:   "id",
	DefaultSort: "createdAt",
	DefaultDesc: true,
}

func TestParseDefaults(t *testing.T) {
	plan, err := testResource.Parse("")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := Plan{OrderBy: "created_at DESC, id ASC", Page: 1, PageSize: DefaultPageSize}
	if diff := cmp.Diff(want, plan); diff != "" {
		t.Fatalf("plan mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSortAndPaging(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		orderBy  string
		page     int
		pageSize int
	}{
		{name: "sort asc", raw: "sort=name&dir=asc", orderBy: "name ASC, id ASC", page: 1, pageSize: DefaultPageSize},
		{name: "sort desc", raw: "sort=title&dir=desc&page=3&pageSize=10", orderBy: "title DESC, id ASC", page: 3, pageSize: 10},
		{name: "unknown sort keeps default", raw: "sort=secret&dir=", orderBy: "created_at DESC, id ASC", page: 1, pageSize: DefaultPageSize},
		{name: "unknown sort honors dir", raw: "sort=secret&dir=asc", orderBy: "created_at ASC, id ASC", page: 1, pageSize: DefaultPageSize},
		{name: "order by wins", raw: "orderBy=name desc, title&sort=title", orderBy: "name DESC, title ASC, id ASC", page: 1, pageSize: DefaultPageSize},
		{name: "invalid order by", raw: "orderBy=password", orderBy: "created_at DESC, id ASC", page: 1, pageSize: DefaultPageSize},
		{name: "page clamps", raw: "page=-2&pageSize=1000", orderBy: "created_at DESC, id ASC", page: 1, pageSize: MaxPageSize},
		{name: "leading question mark", raw: "?page=2", orderBy: "created_at DESC, id ASC", page: 2, pageSize: DefaultPageSize},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			plan, err := testResource.Parse(tc.raw)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if plan.OrderBy != tc.orderBy {
				t.Fatalf("order by = %q, want %q", plan.OrderBy, tc.orderBy)
			}
			if plan.Page != tc.page || plan.PageSize != tc.pageSize {
				t.Fatalf("page = %d/%d, want %d/%d", plan.Page, plan.PageSize, tc.page, tc.pageSize)
			}
		})
	}
}

func TestParseSearchEscapesLikePattern(t *testing.T) {
	plan, err := testResource.Parse("search=50%25_off")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if plan.Where != `(name LIKE ? ESCAPE '\' OR title LIKE ? ESCAPE '\')` {
		t.Fatalf("where = %q", plan.Where)
	}
	want := []any{`%50\%\_off%`, `%50\%\_off%`}
	if diff := cmp.Diff(want, plan.Args); diff != "" {
		t.Fatalf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFilter(t *testing.T) {
	plan, err := testResource.Parse(`search=acme&filter=name = "acme.io" OR title != "x"`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	wantWhere := `(name LIKE ? ESCAPE '\' OR title LIKE ? ESCAPE '\') AND (name = ? OR title != ?)`
	if plan.Where != wantWhere {
		t.Fatalf("where = %q, want %q", plan.Where, wantWhere)
	}
	want := []any{"%acme%", "%acme%", "acme.io", "x"}
	if diff := cmp.Diff(want, plan.Args); diff != "" {
		t.Fatalf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestParseTimestampFilter(t *testing.T) {
	plan, err := testResource.Parse(`filter=createdAt >= timestamp("2026-01-02T03:04:05Z")`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if plan.Where != "created_at >= ?" {
		t.Fatalf("where = %q", plan.Where)
	}
	if diff := cmp.Diff([]any{"2026-01-02T03:04:05.000000000Z"}, plan.Args); diff != "" {
		t.Fatalf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestTimestampTextOrdersChronologically(t *testing.T) {
	whole := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	half := whole.Add(500 * time.Millisecond)
	if !(FormatTimestamp(whole) < FormatTimestamp(half)) {
		t.Fatalf("%q should sort before %q", FormatTimestamp(whole), FormatTimestamp(half))
	}
	if len(FormatTimestamp(whole)) != len(FormatTimestamp(half)) {
		t.Fatal("timestamps should have a fixed width")
	}
	for _, raw := range []string{FormatTimestamp(half), "2024-05-01T10:00:00.5Z", "2024-05-01T07:00:00.5-03:00"} {
		parsed, err := ParseTimestamp(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if !parsed.Equal(half) {
			t.Fatalf("parse %q = %v, want %v", raw, parsed, half)
		}
	}
}

func TestParseRejectsInvalidFilter(t *testing.T) {
	for _, raw := range []string{"filter=unknown = 1", "filter=name =", "%zz"} {
		if _, err := testResource.Parse(raw); !errors.Is(err, ErrInvalid) {
			t.Fatalf("parse %q error = %v, want ErrInvalid", raw, err)
		}
	}
}

func TestPlanOffset(t *testing.T) {
	plan := Plan{Page: 3, PageSize: 20}
	if plan.Limit() != 20 || plan.Offset() != 40 {
		t.Fatalf("limit/offset = %d/%d", plan.Limit(), plan.Offset())
	}
	if (Plan{PageSize: 5}).Offset() != 0 {
		t.Fatal("expected zero offset for unset page")
	}
	if got, want := (Plan{Page: math.MaxInt, PageSize: MaxPageSize}).Offset(), (MaxPage-1)*MaxPageSize; got != want {
		t.Fatalf("offset for huge page = %d, want %d", got, want)
	}
}

func TestParseCapsHugePage(t *testing.T) {
	for _, raw := range []string{
		"page=9223372036854775807&pageSize=100",
		"page=92233720368547758&pageSize=100",
	} {
		plan, err := testResource.Parse(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if plan.Page != MaxPage {
			t.Fatalf("parse %q page = %d, want %d", raw, plan.Page, MaxPage)
		}
		if offset := plan.Offset(); offset < 0 || offset != (MaxPage-1)*MaxPageSize {
			t.Fatalf("parse %q offset = %d", raw, offset)
		}
	}
}
