package datalist

import (
	"maps"
	"net/url"
	"strconv"
	"strings"
)

// Grid is the render model of a View.
type Grid struct {
	Model       string
	SearchLabel string
	Search      string
	TablePath   string
	ExportPath  string
	ImportPath  string
	Breadcrumbs []Breadcrumb
	EndRoute    string

	Headers []Header
	Toggles []Toggle
	Rows    []GridRow

	Total     int
	Page      int
	PageCount int
	PageSize  int
	PageSizes []int
	PrevURL   string
	NextURL   string
	// State is the encoded console state, including column visibility.
	State string

	CanExport bool
	CanImport bool

	// Failed is set when the last List call failed; Rows then hold the
	// previously loaded page.
	Failed bool
}

// Header is one visible column header.
type Header struct {
	Field     string
	Label     string
	Sorted    bool
	Direction Direction
	SortURL   string
}

// Toggle is one entry of the column visibility menu.
type Toggle struct {
	Field     string
	Label     string
	Visible   bool
	ToggleURL string
}

// GridRow is one rendered row.
type GridRow struct {
	Cells []string
	Link  string
}

// Grid builds the render model for the current state.
func (v *View[Row, Import]) Grid(f Formatter) Grid {
	visible := v.VisibleColumns()
	grid := Grid{
		Model:       v.cfg.ModelName,
		SearchLabel: v.cfg.SearchLabel,
		Search:      v.query.Search,
		TablePath:   v.cfg.TablePath,
		ExportPath:  v.cfg.ExportPath,
		ImportPath:  v.cfg.ImportPath,
		Breadcrumbs: v.cfg.Breadcrumbs,
		EndRoute:    v.cfg.EndRoute,
		Total:       v.total,
		Page:        v.query.Page,
		PageSize:    v.query.PageSize,
		PageSizes:   PageSizes,
		PageCount:   pageCount(v.total, v.query.PageSize),
		State:       v.StateQuery(),
		CanExport:   v.cfg.ExportURL != nil && v.cfg.ExportPath != "",
		CanImport:   v.cfg.ImportCreate != nil && v.cfg.ImportPath != "",
		Failed:      v.listErr != nil,
	}

	for _, col := range visible {
		header := Header{Field: col.Field, Label: col.Header}
		next := v.query
		next.Page = 1
		if v.query.Sort.Field == col.Field {
			header.Sorted = true
			header.Direction = v.query.Sort.Direction
			next.Sort = Sort{Field: col.Field, Direction: v.query.Sort.Direction.Opposite()}
		} else {
			next.Sort = Sort{Field: col.Field, Direction: Asc}
		}
		header.SortURL = v.url(next, v.visible)
		grid.Headers = append(grid.Headers, header)
	}

	for _, col := range v.cfg.Columns {
		toggled := maps.Clone(v.visible)
		toggled[col.Field] = !toggled[col.Field]
		grid.Toggles = append(grid.Toggles, Toggle{
			Field:     col.Field,
			Label:     col.Header,
			Visible:   v.visible[col.Field],
			ToggleURL: v.url(v.query, toggled),
		})
	}

	for _, row := range v.rows {
		cells := make([]string, 0, len(visible))
		for _, col := range visible {
			if col.Value == nil {
				cells = append(cells, "")
				continue
			}
			cells = append(cells, col.Value(row, f))
		}
		gridRow := GridRow{Cells: cells}
		if v.cfg.RowLink != nil {
			gridRow.Link = v.cfg.RowLink(row)
		}
		grid.Rows = append(grid.Rows, gridRow)
	}

	if v.query.Page > 1 {
		prev := v.query
		prev.Page--
		grid.PrevURL = v.url(prev, v.visible)
	}
	if v.query.Page < grid.PageCount {
		next := v.query
		next.Page++
		grid.NextURL = v.url(next, v.visible)
	}
	return grid
}

func pageCount(total, pageSize int) int {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

func (v *View[Row, Import]) url(q Query, visible map[string]bool) string {
	encoded := v.stateValues(q, visible).Encode()
	if v.cfg.TablePath == "" {
		return "?" + encoded
	}
	return v.cfg.TablePath + "?" + encoded
}

// stateValues encodes q plus the column set when it differs from the
// configured defaults.
func (v *View[Row, Import]) stateValues(q Query, visible map[string]bool) url.Values {
	values := q.values()
	custom := false
	shown := make([]string, 0, len(v.cfg.Columns))
	for _, col := range v.cfg.Columns {
		if visible[col.Field] == col.Hidden {
			custom = true
		}
		if visible[col.Field] {
			shown = append(shown, col.Field)
		}
	}
	if custom {
		values.Set(ParamColumns, strings.Join(shown, ","))
	}
	return values
}

// PageSizeURL returns the URL selecting size on the current state.
func (g Grid) PageSizeURL(size int) string {
	values, _ := url.ParseQuery(g.State)
	values.Set(ParamPageSize, strconv.Itoa(size))
	values.Set(ParamPage, "1")
	return g.TablePath + "?" + values.Encode()
}

// StateQuery encodes the current console state, including column visibility.
func (v *View[Row, Import]) StateQuery() string {
	return v.stateValues(v.query, v.visible).Encode()
}
