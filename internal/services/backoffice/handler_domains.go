package backoffice

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/louisbranch/backoffice/internal/platform/logging"
	"github.com/louisbranch/backoffice/internal/services/backoffice/datalist"
	domainsfeature "github.com/louisbranch/backoffice/internal/services/backoffice/domains"
	"github.com/louisbranch/backoffice/internal/services/backoffice/i18n"
	"github.com/louisbranch/backoffice/internal/services/backoffice/integration/restclient"
	"github.com/louisbranch/backoffice/internal/services/backoffice/notify"
	"github.com/louisbranch/backoffice/internal/services/backoffice/routepath"
	"github.com/louisbranch/backoffice/internal/services/backoffice/templates"
)

// messageImportInvalid reports an import payload that is not a JSON array.
const messageImportInvalid = "datalist.import_invalid"

// maxImportBytes bounds the import form body.
const maxImportBytes = 4 << 20

type domainsView = datalist.View[restclient.Domain, restclient.DomainImport]

func (h *Handler) newDomainsView(r *http.Request, collector *notify.Collector) *domainsView {
	return datalist.NewView(domainsfeature.ListConfig(h.client), collector, logging.FromContext(r.Context()))
}

func (h *Handler) HandleDomainsPage(w http.ResponseWriter, r *http.Request) {
	loc, tag := h.localizer(w, r)
	collector := &notify.Collector{}
	grid := h.domainsGrid(r, collector, i18n.NewFormatter(tag))
	view := templates.GridPageView{
		Title:       templates.T(loc, "module.domains"),
		Breadcrumbs: translateBreadcrumbs(loc, grid.Breadcrumbs),
		Grid:        grid,
	}
	page := h.pageContext(w, r, loc, tag, view.Title, domainsfeature.ModuleName, collector)
	renderFull(w, r, page, templates.GridPage(view, loc))
}

func (h *Handler) HandleDomainsTable(w http.ResponseWriter, r *http.Request) {
	loc, tag := h.localizer(w, r)
	grid := h.domainsGrid(r, &notify.Collector{}, i18n.NewFormatter(tag))
	renderFragment(w, r, http.StatusOK, templates.DataGrid(grid, loc))
}

func (h *Handler) domainsGrid(r *http.Request, collector *notify.Collector, f datalist.Formatter) datalist.Grid {
	view := h.newDomainsView(r, collector)
	view.Restore(r.URL.Query())
	ctx, cancel := h.callContext(r.Context())
	defer cancel()
	view.Refresh(ctx)
	return view.Grid(f)
}

// HandleDomainsExport redirects to the export download for the current grid
// state. Failures return to the list with an error notice.
func (h *Handler) HandleDomainsExport(w http.ResponseWriter, r *http.Request) {
	collector := &notify.Collector{}
	view := h.newDomainsView(r, collector)
	view.Restore(r.URL.Query())

	ctx, cancel := h.callContext(r.Context())
	defer cancel()
	target, err := view.Export(ctx)
	if err != nil {
		redirect(w, r, domainsListURL(view), collector.Notices()...)
		return
	}
	redirect(w, r, target)
}

// HandleDomainsImport forwards the submitted records to the records API and
// returns to the list with the outcome as a flash notice.
func (h *Handler) HandleDomainsImport(w http.ResponseWriter, r *http.Request) {
	collector := &notify.Collector{}
	logger := logging.FromContext(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)

	records, err := readImportRecords(r)
	view := h.newDomainsView(r, collector)
	view.Restore(r.PostForm)
	if err != nil {
		logger.WarnContext(r.Context(), "invalid import payload", "error", err)
		collector.Error(messageImportInvalid)
		redirect(w, r, domainsListURL(view), collector.Notices()...)
		return
	}

	ctx, cancel := h.callContext(r.Context())
	defer cancel()
	// Failures are already surfaced through the collector.
	_ = view.Import(ctx, records)
	redirect(w, r, domainsListURL(view), collector.Notices()...)
}

func domainsListURL(view *domainsView) string {
	state := view.StateQuery()
	if state == "" {
		return routepath.Domains
	}
	return routepath.Domains + "?" + state
}

// readImportRecords decodes the uploaded file, or the records field when no
// file was sent, as a JSON array of domain imports.
func readImportRecords(r *http.Request) ([]restclient.DomainImport, error) {
	var payload []byte
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxImportBytes); err != nil {
			return nil, fmt.Errorf("parse import form: %w", err)
		}
		file, _, err := r.FormFile("file")
		switch {
		case err == nil:
			defer file.Close()
			payload, err = io.ReadAll(file)
			if err != nil {
				return nil, fmt.Errorf("read import file: %w", err)
			}
		case errors.Is(err, http.ErrMissingFile):
		default:
			return nil, fmt.Errorf("open import file: %w", err)
		}
	} else if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("parse import form: %w", err)
	}
	if len(strings.TrimSpace(string(payload))) == 0 {
		payload = []byte(r.PostFormValue("records"))
	}
	var records []restclient.DomainImport
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, fmt.Errorf("decode import records: %w", err)
	}
	if records == nil {
		return nil, errors.New("import records must be a JSON array")
	}
	return records, nil
}
