// Package shell wires the console entry routes: the root redirect and the
// lazily loaded module pages.
package shell

import (
	"net/http"

	"github.com/louisbranch/backoffice/internal/services/backoffice/routepath"
)

// Service defines shell route handlers consumed by this route module.
type Service interface {
	HandleRoot(w http.ResponseWriter, r *http.Request)
	HandleModuleShell(w http.ResponseWriter, r *http.Request, module string)
	HandleModuleContent(w http.ResponseWriter, r *http.Request, module string)
}

// RegisterRoutes wires shell routes into the provided mux.
func RegisterRoutes(mux *http.ServeMux, service Service) {
	if mux == nil || service == nil {
		return
	}
	mux.HandleFunc("GET "+routepath.Root+"{$}", service.HandleRoot)
	mux.HandleFunc("GET "+routepath.ModulesPrefix+"{module}", func(w http.ResponseWriter, r *http.Request) {
		service.HandleModuleShell(w, r, r.PathValue("module"))
	})
	mux.HandleFunc("GET "+routepath.ModulesPrefix+"{module}/content", func(w http.ResponseWriter, r *http.Request) {
		service.HandleModuleContent(w, r, r.PathValue("module"))
	})
}
