// Package query parses the grid query string sent by list views and plans the
// SQL fragments a store needs to answer it.
//
// Query strings carry search, sort, dir, page, pageSize and an optional
// AIP-160 filter. Sorting is expressed internally as an AIP-132 order_by
// string so an explicit orderBy parameter follows the same validation path.
package query

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.einride.tech/aip/ordering"
)

// Query string parameter names.
const (
	ParamSearch   = "search"
	ParamSort     = "sort"
	ParamDir      = "dir"
	ParamPage     = "page"
	ParamPageSize = "pageSize"
	ParamFilter   = "filter"
	ParamOrderBy  = "orderBy"
)

// Sort directions accepted by the dir parameter.
const (
	DirAsc  = "asc"
	DirDesc = "desc"
)

const (
	// DefaultPageSize applies when pageSize is missing or invalid.
	DefaultPageSize = 25
	// MaxPageSize caps pageSize.
	MaxPageSize = 100
	// MaxPage caps page so the SQL offset stays well inside int range.
	MaxPage = 10_000_000
)

// TimestampLayout is the fixed width UTC text layout of stored timestamps.
// Equal widths keep SQL text comparison in chronological order.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z"

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp reads a stored timestamp. RFC 3339 text written before the
// fixed width layout is still accepted.
func ParseTimestamp(value string) (time.Time, error) {
	if t, err := time.Parse(TimestampLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// ErrInvalid marks a query the caller must fix, such as a malformed filter.
var ErrInvalid = errors.New("invalid query")

// FieldType is the value type of a queryable field.
type FieldType int

const (
	TypeString FieldType = iota
	TypeBool
	TypeTimestamp
)

// Field maps one grid field name onto its SQL column.
type Field struct {
	Name       string
	Column     string
	Type       FieldType
	Searchable bool
}

// Resource describes the queryable shape of one listed entity.
type Resource struct {
	Name        string
	Fields      []Field
	KeyColumn   string
	DefaultSort string
	DefaultDesc bool
}

// Plan is a parsed query ready to be turned into SQL.
type Plan struct {
	Where    string
	Args     []any
	OrderBy  string
	Page     int
	PageSize int
}

// Limit returns the SQL LIMIT for the plan.
func (p Plan) Limit() int {
	return p.PageSize
}

// Offset returns the SQL OFFSET for the plan.
func (p Plan) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (min(p.Page, MaxPage) - 1) * min(p.PageSize, MaxPageSize)
}

func (r Resource) field(name string) (Field, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (r Resource) fieldNames() []string {
	names := make([]string, 0, len(r.Fields))
	for _, f := range r.Fields {
		names = append(names, f.Name)
	}
	return names
}

// Parse plans raw, a URL encoded grid query string. Unknown sort fields and
// out of range pages fall back to defaults; malformed filters and query
// strings return an error wrapping ErrInvalid.
func (r Resource) Parse(raw string) (Plan, error) {
	values, err := url.ParseQuery(strings.TrimPrefix(strings.TrimSpace(raw), "?"))
	if err != nil {
		return Plan{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	plan := Plan{
		Page:     parsePositive(values.Get(ParamPage), 1),
		PageSize: parsePositive(values.Get(ParamPageSize), DefaultPageSize),
	}
	plan.Page = min(plan.Page, MaxPage)
	plan.PageSize = min(plan.PageSize, MaxPageSize)

	orderBy, err := r.orderBy(values)
	if err != nil {
		return Plan{}, err
	}
	plan.OrderBy = orderBy

	var clauses []string
	if search := strings.TrimSpace(values.Get(ParamSearch)); search != "" {
		clause, args := r.searchCondition(search)
		if clause != "" {
			clauses = append(clauses, clause)
			plan.Args = append(plan.Args, args...)
		}
	}
	if filter := strings.TrimSpace(values.Get(ParamFilter)); filter != "" {
		cond, err := r.filterCondition(filter)
		if err != nil {
			return Plan{}, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		if cond.Clause != "" {
			clauses = append(clauses, cond.Clause)
			plan.Args = append(plan.Args, cond.Params...)
		}
	}
	plan.Where = strings.Join(clauses, " AND ")
	return plan, nil
}

func parsePositive(value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// orderBy resolves the ORDER BY clause. An explicit orderBy parameter wins
// over sort/dir; anything that does not validate falls back to the default.
func (r Resource) orderBy(values url.Values) (string, error) {
	candidate := strings.TrimSpace(values.Get(ParamOrderBy))
	if candidate == "" {
		candidate = r.sortExpression(values.Get(ParamSort), values.Get(ParamDir))
	}

	var ob ordering.OrderBy
	if err := ob.UnmarshalString(candidate); err != nil || ob.ValidateForPaths(r.fieldNames()...) != nil || len(ob.Fields) == 0 {
		ob = ordering.OrderBy{}
		if err := ob.UnmarshalString(r.sortExpression("", "")); err != nil {
			return "", fmt.Errorf("default sort for %s: %w", r.Name, err)
		}
	}

	parts := make([]string, 0, len(ob.Fields)+1)
	for _, f := range ob.Fields {
		field, ok := r.field(f.Path)
		if !ok {
			return "", fmt.Errorf("%w: unknown sort field %q", ErrInvalid, f.Path)
		}
		direction := "ASC"
		if f.Desc {
			direction = "DESC"
		}
		parts = append(parts, field.Column+" "+direction)
	}
	if r.KeyColumn != "" {
		parts = append(parts, r.KeyColumn+" ASC")
	}
	return strings.Join(parts, ", "), nil
}

func (r Resource) sortExpression(sort, dir string) string {
	sort = strings.TrimSpace(sort)
	desc := strings.EqualFold(strings.TrimSpace(dir), DirDesc)
	if _, ok := r.field(sort); !ok {
		sort = r.DefaultSort
		if strings.TrimSpace(dir) == "" {
			desc = r.DefaultDesc
		}
	}
	if desc {
		return sort + " desc"
	}
	return sort
}

func (r Resource) searchCondition(term string) (string, []any) {
	pattern := "%" + escapeLike(term) + "%"
	var parts []string
	var args []any
	for _, f := range r.Fields {
		if !f.Searchable {
			continue
		}
		parts = append(parts, f.Column+` LIKE ? ESCAPE '\'`)
		args = append(args, pattern)
	}
	if len(parts) == 0 {
		return "", nil
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}

func escapeLike(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(term)
}
