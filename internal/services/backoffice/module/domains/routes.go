package domains

import (
	"net/http"

	"github.com/louisbranch/backoffice/internal/services/backoffice/routepath"
)

// Service defines domain route handlers consumed by this route module.
type Service interface {
	HandleDomainsPage(w http.ResponseWriter, r *http.Request)
	HandleDomainsTable(w http.ResponseWriter, r *http.Request)
	HandleDomainsExport(w http.ResponseWriter, r *http.Request)
	HandleDomainsImport(w http.ResponseWriter, r *http.Request)
}

// RegisterRoutes wires domain routes into the provided mux.
func RegisterRoutes(mux *http.ServeMux, service Service) {
	if mux == nil || service == nil {
		return
	}
	mux.HandleFunc("GET "+routepath.Domains, service.HandleDomainsPage)
	mux.HandleFunc("GET "+routepath.DomainsTable, service.HandleDomainsTable)
	mux.HandleFunc("GET "+routepath.DomainsExport, service.HandleDomainsExport)
	mux.HandleFunc("POST "+routepath.DomainsImport, service.HandleDomainsImport)
}
