package datalist

import (
	"net/url"
	"strconv"
	"strings"
)

// Grid query string parameters understood by the records API.
const (
	ParamSearch   = "search"
	ParamSort     = "sort"
	ParamDir      = "dir"
	ParamPage     = "page"
	ParamPageSize = "pageSize"
	// ParamColumns carries the visible column set. It stays on console URLs
	// and is never sent to List.
	ParamColumns = "cols"
)

// DefaultPageSize is the page size used when none is requested.
const DefaultPageSize = 25

// MaxPageSize is the largest page size the grid requests.
const MaxPageSize = 100

// PageSizes lists the page sizes the grid offers.
var PageSizes = []int{10, 25, 50, MaxPageSize}

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection maps free text onto a Direction, defaulting to Asc.
func ParseDirection(value string) Direction {
	if strings.EqualFold(strings.TrimSpace(value), string(Desc)) {
		return Desc
	}
	return Asc
}

// Opposite returns the other direction.
func (d Direction) Opposite() Direction {
	if d == Desc {
		return Asc
	}
	return Desc
}

// Sort is a sort field and direction.
type Sort struct {
	Field     string
	Direction Direction
}

// Query is the grid query state sent to List and ExportURL.
type Query struct {
	Search   string
	Sort     Sort
	Page     int
	PageSize int
}

// Encode renders the query as the URL encoded string the records API expects.
func (q Query) Encode() string {
	return q.values().Encode()
}

func (q Query) values() url.Values {
	values := url.Values{}
	if search := strings.TrimSpace(q.Search); search != "" {
		values.Set(ParamSearch, search)
	}
	if q.Sort.Field != "" {
		values.Set(ParamSort, q.Sort.Field)
		direction := q.Sort.Direction
		if direction == "" {
			direction = Asc
		}
		values.Set(ParamDir, string(direction))
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	values.Set(ParamPage, strconv.Itoa(page))
	values.Set(ParamPageSize, strconv.Itoa(clampPageSize(q.PageSize)))
	return values
}

// ParseQuery reads grid state from console URL values, applying def when no
// sort is present.
func ParseQuery(values url.Values, def Sort) Query {
	q := Query{
		Search:   strings.TrimSpace(values.Get(ParamSearch)),
		Sort:     def,
		Page:     atoiDefault(values.Get(ParamPage), 1),
		PageSize: clampPageSize(atoiDefault(values.Get(ParamPageSize), DefaultPageSize)),
	}
	if field := strings.TrimSpace(values.Get(ParamSort)); field != "" {
		q.Sort = Sort{Field: field, Direction: ParseDirection(values.Get(ParamDir))}
	}
	return q
}

// clampPageSize maps sizes below one to DefaultPageSize and caps the rest at
// MaxPageSize.
func clampPageSize(size int) int {
	if size < 1 {
		return DefaultPageSize
	}
	return min(size, MaxPageSize)
}

func atoiDefault(value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
