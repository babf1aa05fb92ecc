// Package datalist implements a generic searchable, sortable, paginated grid
// over an arbitrary row type.
//
// A feature supplies a Config with its columns and callbacks; a View owns the
// grid state for one render and turns it into a Grid for templates.
package datalist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Notification keys used by list views.
const (
	MessageImported     = "datalist.imported"
	MessageImportFailed = "datalist.import_failed"
	MessageListFailed   = "datalist.list_failed"
	MessageExportFailed = "datalist.export_failed"
)

var (
	// ErrUnknownColumn reports a sort or visibility change naming no column.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrNotConfigured reports a missing callback.
	ErrNotConfigured = errors.New("callback not configured")
)

// Formatter renders locale sensitive values.
type Formatter interface {
	Date(t time.Time) string
	Bool(value bool) string
}

// Column describes one grid column.
type Column[Row any] struct {
	Field string
	// Header is a message catalog key.
	Header string
	// Hidden columns are not rendered until toggled visible.
	Hidden bool
	Value  func(row Row, f Formatter) string
}

// Breadcrumb is one entry of the trail shown above the grid.
type Breadcrumb struct {
	Label string
	URL   string
}

// ListResult is one List outcome. Err != nil is a failed query; no rows and
// a nil Err is an empty page.
type ListResult[Row any] struct {
	Rows  []Row
	Total int
	Err   error
}

// NoImport is the import record type of lists without an import action.
type NoImport = struct{}

// Config is the per-feature grid configuration.
type Config[Row, Import any] struct {
	ModelName   string
	Columns     []Column[Row]
	DefaultSort Sort
	// SearchLabel is a message catalog key.
	SearchLabel string
	Breadcrumbs []Breadcrumb
	// EndRoute is the module the trailing breadcrumb points at.
	EndRoute string
	// TablePath receives grid state changes and renders the grid fragment.
	TablePath string
	// ExportPath and ImportPath are the console routes behind the export
	// and import actions.
	ExportPath string
	ImportPath string
	// RowLink returns the detail URL of a row; nil disables row links.
	RowLink func(row Row) string

	List         func(ctx context.Context, query string) ListResult[Row]
	ExportURL    func(ctx context.Context, query string) (string, error)
	ImportCreate func(ctx context.Context, records []Import) error
}

func (c Config[Row, Import]) column(field string) (Column[Row], bool) {
	for _, col := range c.Columns {
		if col.Field == field {
			return col, true
		}
	}
	return Column[Row]{}, false
}

// Notifier receives list view notifications.
type Notifier interface {
	Successf(key string, args ...string)
	Errorf(key string, args ...string)
}

// View owns the grid state of one list.
type View[Row, Import any] struct {
	cfg      Config[Row, Import]
	notifier Notifier
	logger   *slog.Logger

	query   Query
	visible map[string]bool
	rows    []Row
	total   int
	listErr error
	loaded  bool
}

// NewView builds a view with the configured default sort and visibility.
func NewView[Row, Import any](cfg Config[Row, Import], notifier Notifier, logger *slog.Logger) *View[Row, Import] {
	if logger == nil {
		logger = slog.Default()
	}
	v := &View[Row, Import]{
		cfg:      cfg,
		notifier: notifier,
		logger:   logger,
		query:    Query{Sort: cfg.DefaultSort, Page: 1, PageSize: DefaultPageSize},
		visible:  make(map[string]bool, len(cfg.Columns)),
	}
	for _, col := range cfg.Columns {
		v.visible[col.Field] = !col.Hidden
	}
	return v
}

// Restore loads grid state from console URL values without calling List.
// Unknown sort fields fall back to the default sort.
func (v *View[Row, Import]) Restore(values url.Values) {
	q := ParseQuery(values, v.cfg.DefaultSort)
	if _, ok := v.cfg.column(q.Sort.Field); !ok {
		q.Sort = v.cfg.DefaultSort
	}
	v.query = q
	if raw, ok := values[ParamColumns]; ok {
		shown := map[string]bool{}
		for _, field := range strings.Split(strings.Join(raw, ","), ",") {
			shown[strings.TrimSpace(field)] = true
		}
		for _, col := range v.cfg.Columns {
			v.visible[col.Field] = shown[col.Field]
		}
	}
}

// Query returns the current grid query.
func (v *View[Row, Import]) Query() Query {
	return v.query
}

// SetSearch changes the search term, returns to the first page and refreshes.
func (v *View[Row, Import]) SetSearch(ctx context.Context, search string) ListResult[Row] {
	v.query.Search = strings.TrimSpace(search)
	v.query.Page = 1
	return v.Refresh(ctx)
}

// SetSort changes the sort model and refreshes.
func (v *View[Row, Import]) SetSort(ctx context.Context, field string, direction Direction) (ListResult[Row], error) {
	if _, ok := v.cfg.column(field); !ok {
		return ListResult[Row]{}, fmt.Errorf("%w: %s", ErrUnknownColumn, field)
	}
	if direction != Desc {
		direction = Asc
	}
	v.query.Sort = Sort{Field: field, Direction: direction}
	return v.Refresh(ctx), nil
}

// SetPage moves to page n and refreshes.
func (v *View[Row, Import]) SetPage(ctx context.Context, n int) ListResult[Row] {
	if n < 1 {
		n = 1
	}
	v.query.Page = n
	return v.Refresh(ctx)
}

// SetPageSize changes the page size, returns to the first page and refreshes.
// Sizes above MaxPageSize are capped.
func (v *View[Row, Import]) SetPageSize(ctx context.Context, size int) ListResult[Row] {
	v.query.PageSize = clampPageSize(size)
	v.query.Page = 1
	return v.Refresh(ctx)
}

// ToggleColumn flips the visibility of field.
func (v *View[Row, Import]) ToggleColumn(field string) error {
	if _, ok := v.cfg.column(field); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, field)
	}
	v.visible[field] = !v.visible[field]
	return nil
}

// VisibleColumns returns the columns currently rendered, in configured order.
func (v *View[Row, Import]) VisibleColumns() []Column[Row] {
	out := make([]Column[Row], 0, len(v.cfg.Columns))
	for _, col := range v.cfg.Columns {
		if v.visible[col.Field] {
			out = append(out, col)
		}
	}
	return out
}

// Refresh calls List with the encoded query. A failed List keeps the
// previously loaded page and records the error for display.
func (v *View[Row, Import]) Refresh(ctx context.Context) ListResult[Row] {
	if v.cfg.List == nil {
		result := ListResult[Row]{Err: ErrNotConfigured}
		v.listErr = result.Err
		return result
	}
	result := v.cfg.List(ctx, v.query.Encode())
	if result.Err != nil {
		v.listErr = result.Err
		v.logger.ErrorContext(ctx, "list query failed", "model", v.cfg.ModelName, "error", result.Err)
		return result
	}
	v.rows = result.Rows
	v.total = result.Total
	v.listErr = nil
	v.loaded = true
	return result
}

// Rows returns the currently displayed rows.
func (v *View[Row, Import]) Rows() []Row {
	return v.rows
}

// Total returns the total row count of the displayed result.
func (v *View[Row, Import]) Total() int {
	return v.total
}

// Err returns the last List failure, or nil when the last List succeeded.
func (v *View[Row, Import]) Err() error {
	return v.listErr
}

// Export resolves the download URL for the current query.
func (v *View[Row, Import]) Export(ctx context.Context) (string, error) {
	if v.cfg.ExportURL == nil {
		return "", ErrNotConfigured
	}
	target, err := v.cfg.ExportURL(ctx, v.query.Encode())
	if err != nil {
		v.logger.ErrorContext(ctx, "export failed", "model", v.cfg.ModelName, "error", err)
		v.notify(false, MessageExportFailed, v.cfg.ModelName)
		return "", err
	}
	return target, nil
}

// Import forwards records to ImportCreate. Success notifies with the record
// count; failure notifies. The grid is not reloaded, callers Refresh or
// redirect to the list when they need the new rows.
func (v *View[Row, Import]) Import(ctx context.Context, records []Import) error {
	if v.cfg.ImportCreate == nil {
		return ErrNotConfigured
	}
	if err := v.cfg.ImportCreate(ctx, records); err != nil {
		v.logger.ErrorContext(ctx, "import failed", "model", v.cfg.ModelName, "count", len(records), "error", err)
		v.notify(false, MessageImportFailed, v.cfg.ModelName)
		return err
	}
	v.notify(true, MessageImported, strconv.Itoa(len(records)), v.cfg.ModelName)
	return nil
}

func (v *View[Row, Import]) notify(success bool, key string, args ...string) {
	if v.notifier == nil {
		return
	}
	if success {
		v.notifier.Successf(key, args...)
		return
	}
	v.notifier.Errorf(key, args...)
}
