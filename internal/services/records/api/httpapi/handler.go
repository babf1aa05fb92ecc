// Package httpapi serves the records REST API consumed by the backoffice
// console.
package httpapi

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/louisbranch/backoffice/internal/platform/logging"
	"github.com/louisbranch/backoffice/internal/platform/metrics"
	"github.com/louisbranch/backoffice/internal/services/records/query"
	"github.com/louisbranch/backoffice/internal/services/records/storage"
	recordsqlite "github.com/louisbranch/backoffice/internal/services/records/storage/sqlite"
)

const (
	maxImportBytes = 4 << 20
	exportPageSize = query.MaxPageSize
)

// Handler serves the records API routes.
type Handler struct {
	store     storage.Store
	metrics   *metrics.Metrics
	logger    *slog.Logger
	publicURL string
}

// New creates a records API handler. publicURL prefixes export download links;
// when empty, links are relative to the API host.
func New(store storage.Store, m *metrics.Metrics, logger *slog.Logger, publicURL string) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:     store,
		metrics:   m,
		logger:    logger,
		publicURL: strings.TrimRight(strings.TrimSpace(publicURL), "/"),
	}
}

// Routes builds the chi router for the API.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.observe)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", h.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/contacts", h.handleListContacts)
		r.Get("/contacts/{id}", h.handleGetContact)
		r.Delete("/contacts/{id}", h.handleDeleteContact)
		r.Get("/domains", h.handleListDomains)
		r.Get("/domains/export", h.handleExportDomains)
		r.Get("/domains/export/download", h.handleDownloadDomains)
		r.Post("/domains/import", h.handleImportDomains)
		r.Get("/countries", h.handleListCountries)
	})
	return r
}

// observe records request metrics keyed by the matched route pattern.
func (h *Handler) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		ctx := logging.WithLogger(r.Context(), h.logger.With("request_id", middleware.GetReqID(r.Context())))
		next.ServeHTTP(ww, r.WithContext(ctx))

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		h.metrics.ObserveRequest(route, status, time.Since(start))
	})
}

type contactDTO struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	Phone       string  `json:"phone,omitempty"`
	CityName    string  `json:"cityName,omitempty"`
	Address1    string  `json:"address1,omitempty"`
	Address2    string  `json:"address2,omitempty"`
	CountryCode *string `json:"countryCode"`
}

type domainDTO struct {
	Name        string    `json:"name"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	DNSCheck    bool      `json:"dnsCheck"`
	Free        bool      `json:"free"`
	CreatedAt   time.Time `json:"createdAt"`
}

type domainImportDTO struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	DNSCheck    bool   `json:"dnsCheck"`
	Free        bool   `json:"free"`
}

type pageDTO[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

type exportDTO struct {
	URL string `json:"url"`
}

type importResultDTO struct {
	Imported int `json:"imported"`
}

type errorDTO struct {
	Error string `json:"error"`
}

func toContactDTO(contact storage.Contact) contactDTO {
	return contactDTO{
		ID:          contact.ID,
		Email:       contact.Email,
		Phone:       contact.Phone,
		CityName:    contact.CityName,
		Address1:    contact.Address1,
		Address2:    contact.Address2,
		CountryCode: contact.CountryCode,
	}
}

func toDomainDTO(domain storage.Domain) domainDTO {
	return domainDTO{
		Name:        domain.Name,
		Title:       domain.Title,
		Description: domain.Description,
		URL:         domain.URL,
		DNSCheck:    domain.DNSCheck,
		Free:        domain.Free,
		CreatedAt:   domain.CreatedAt,
	}
}

func (h *Handler) handleGetContact(w http.ResponseWriter, r *http.Request) {
	contact, err := h.store.GetContact(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, r, "get contact", err)
		return
	}
	writeJSON(w, http.StatusOK, toContactDTO(contact))
}

func (h *Handler) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	contactID := chi.URLParam(r, "id")
	if err := h.store.DeleteContact(r.Context(), contactID); err != nil {
		h.writeStoreError(w, r, "delete contact", err)
		return
	}
	h.metrics.IncContactsDeleted()
	logging.FromContext(r.Context()).InfoContext(r.Context(), "contact deleted", "contact_id", contactID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListContacts(w http.ResponseWriter, r *http.Request) {
	plan, err := recordsqlite.ContactsResource.Parse(r.URL.Query().Get("query"))
	if err != nil {
		h.writeStoreError(w, r, "parse contacts query", err)
		return
	}
	page, err := h.store.ListContacts(r.Context(), plan)
	if err != nil {
		h.writeStoreError(w, r, "list contacts", err)
		return
	}
	out := pageDTO[contactDTO]{Items: make([]contactDTO, 0, len(page.Items)), Total: page.Total, Page: page.Page, PageSize: page.PageSize}
	for _, contact := range page.Items {
		out.Items = append(out.Items, toContactDTO(contact))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleListDomains(w http.ResponseWriter, r *http.Request) {
	plan, err := recordsqlite.DomainsResource.Parse(r.URL.Query().Get("query"))
	if err != nil {
		h.writeStoreError(w, r, "parse domains query", err)
		return
	}
	page, err := h.store.ListDomains(r.Context(), plan)
	if err != nil {
		h.writeStoreError(w, r, "list domains", err)
		return
	}
	out := pageDTO[domainDTO]{Items: make([]domainDTO, 0, len(page.Items)), Total: page.Total, Page: page.Page, PageSize: page.PageSize}
	for _, domain := range page.Items {
		out.Items = append(out.Items, toDomainDTO(domain))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleExportDomains validates the query and answers with the download URL
// for its CSV rendition.
func (h *Handler) handleExportDomains(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("query")
	if _, err := recordsqlite.DomainsResource.Parse(raw); err != nil {
		h.writeStoreError(w, r, "parse export query", err)
		return
	}
	target := h.publicURL + "/api/domains/export/download?" + url.Values{"query": {raw}}.Encode()
	writeJSON(w, http.StatusOK, exportDTO{URL: target})
}

// handleDownloadDomains streams every row matching the query as CSV, ignoring
// the query's own paging.
func (h *Handler) handleDownloadDomains(w http.ResponseWriter, r *http.Request) {
	plan, err := recordsqlite.DomainsResource.Parse(r.URL.Query().Get("query"))
	if err != nil {
		h.writeStoreError(w, r, "parse export query", err)
		return
	}
	plan.PageSize = exportPageSize
	plan.Page = 1
	first, err := h.store.ListDomains(r.Context(), plan)
	if err != nil {
		h.writeStoreError(w, r, "export domains", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="domains.csv"`)
	writer := csv.NewWriter(w)
	_ = writer.Write([]string{"name", "title", "description", "url", "dnsCheck", "free", "createdAt"})

	page := first
	for {
		for _, domain := range page.Items {
			_ = writer.Write([]string{
				domain.Name,
				domain.Title,
				domain.Description,
				domain.URL,
				strconv.FormatBool(domain.DNSCheck),
				strconv.FormatBool(domain.Free),
				domain.CreatedAt.UTC().Format(time.RFC3339),
			})
		}
		if plan.Page*plan.PageSize >= page.Total || len(page.Items) == 0 {
			break
		}
		plan.Page++
		page, err = h.store.ListDomains(r.Context(), plan)
		if err != nil {
			// Headers are already sent; the truncated file is all we can offer.
			logging.FromContext(r.Context()).ErrorContext(r.Context(), "export domains page", "page", plan.Page, "error", err)
			break
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		logging.FromContext(r.Context()).ErrorContext(r.Context(), "write export csv", "error", err)
	}
}

func (h *Handler) handleImportDomains(w http.ResponseWriter, r *http.Request) {
	var payload []domainImportDTO
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err := decoder.Decode(&payload); err != nil {
		logging.FromContext(r.Context()).WarnContext(r.Context(), "invalid import body", "error", err)
		writeJSON(w, http.StatusBadRequest, errorDTO{Error: "invalid request body"})
		return
	}
	records := make([]storage.DomainImport, 0, len(payload))
	for _, item := range payload {
		if strings.TrimSpace(item.Name) == "" {
			writeJSON(w, http.StatusBadRequest, errorDTO{Error: "domain name is required"})
			return
		}
		records = append(records, storage.DomainImport{
			Name:        item.Name,
			Title:       item.Title,
			Description: item.Description,
			URL:         item.URL,
			DNSCheck:    item.DNSCheck,
			Free:        item.Free,
		})
	}
	n, err := h.store.ImportDomains(r.Context(), records)
	if err != nil {
		h.writeStoreError(w, r, "import domains", err)
		return
	}
	h.metrics.AddDomainsImported(n)
	writeJSON(w, http.StatusCreated, importResultDTO{Imported: n})
}

// handleListCountries answers with a code to display name map. Names are
// localized with the lang parameter and default to English.
func (h *Handler) handleListCountries(w http.ResponseWriter, r *http.Request) {
	codes, err := h.store.ListCountryCodes(r.Context())
	if err != nil {
		h.writeStoreError(w, r, "list countries", err)
		return
	}
	tag := language.English
	if lang := strings.TrimSpace(r.URL.Query().Get("lang")); lang != "" {
		if parsed, err := language.Parse(lang); err == nil {
			tag = parsed
		}
	}
	namer := display.Regions(tag)
	names := make(map[string]string, len(codes))
	for _, code := range codes {
		region, err := language.ParseRegion(code)
		if err != nil {
			continue
		}
		name := namer.Name(region)
		if name == "" {
			name = display.English.Regions().Name(region)
		}
		names[code] = name
	}
	writeJSON(w, http.StatusOK, names)
}

func (h *Handler) writeStoreError(w http.ResponseWriter, r *http.Request, op string, err error) {
	logger := logging.FromContext(r.Context())
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorDTO{Error: "not found"})
	case errors.Is(err, query.ErrInvalid):
		logger.WarnContext(r.Context(), op, "error", err)
		writeJSON(w, http.StatusBadRequest, errorDTO{Error: err.Error()})
	default:
		logger.ErrorContext(r.Context(), op, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorDTO{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
