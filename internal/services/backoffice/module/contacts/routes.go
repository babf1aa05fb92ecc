package contacts

import (
	"net/http"
	"strings"

	"github.com/louisbranch/backoffice/internal/services/backoffice/module/sharedpath"
	"github.com/louisbranch/backoffice/internal/services/backoffice/routepath"
)

// Service defines contact route handlers consumed by this route module.
type Service interface {
	HandleContactsPage(w http.ResponseWriter, r *http.Request)
	HandleContactsTable(w http.ResponseWriter, r *http.Request)
	HandleContactDetail(w http.ResponseWriter, r *http.Request, contactID string)
	HandleContactDelete(w http.ResponseWriter, r *http.Request, contactID string)
}

// RegisterRoutes wires contact routes into the provided mux.
func RegisterRoutes(mux *http.ServeMux, service Service) {
	if mux == nil || service == nil {
		return
	}
	mux.HandleFunc(routepath.Contacts, service.HandleContactsPage)
	mux.HandleFunc(routepath.ContactsTable, service.HandleContactsTable)
	mux.HandleFunc(routepath.ContactsPrefix, func(w http.ResponseWriter, r *http.Request) {
		HandleContactPath(w, r, service)
	})
}

// HandleContactPath parses contact detail subroutes and dispatches to service handlers.
func HandleContactPath(w http.ResponseWriter, r *http.Request, service Service) {
	if service == nil {
		http.NotFound(w, r)
		return
	}
	if sharedpath.RedirectTrailingSlash(w, r) {
		return
	}

	path := strings.TrimPrefix(r.URL.Path, routepath.ContactsPrefix)
	parts := sharedpath.SplitPathParts(path)
	if len(parts) == 2 && parts[1] == "delete" {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		service.HandleContactDelete(w, r, parts[0])
		return
	}
	if len(parts) == 1 {
		service.HandleContactDetail(w, r, parts[0])
		return
	}
	http.NotFound(w, r)
}
