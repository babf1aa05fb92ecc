package backoffice

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/louisbranch/backoffice/internal/services/backoffice/moduleloader"
	"github.com/louisbranch/backoffice/internal/services/backoffice/notify"
	"github.com/louisbranch/backoffice/internal/services/backoffice/routepath"
	"github.com/louisbranch/backoffice/internal/services/backoffice/templates"
)

// errNoRecordsClient reports a module loaded without a records client.
var errNoRecordsClient = errors.New("records client is not configured")

// moduleDeps are the dependencies handed to module loaders.
type moduleDeps struct {
	Client RecordsClient
	Logger *slog.Logger
}

func (h *Handler) newModuleRegistry() *moduleloader.Registry[moduleDeps] {
	return moduleloader.New(
		moduleDeps{Client: h.client, Logger: h.logger},
		map[moduleloader.Kind]moduleloader.Loader[moduleDeps]{
			moduleloader.Contacts: h.loadContactsModule,
			moduleloader.Domains:  h.loadDomainsModule,
		},
		moduleloader.WithLogger(h.logger),
		moduleloader.WithFallback(h.moduleFallback),
	)
}

func (h *Handler) loadContactsModule(_ context.Context, deps moduleDeps) (moduleloader.Module, error) {
	if deps.Client == nil {
		return nil, errNoRecordsClient
	}
	return moduleloader.NewModule(string(moduleloader.Contacts), http.HandlerFunc(h.HandleContactsTable)), nil
}

func (h *Handler) loadDomainsModule(_ context.Context, deps moduleDeps) (moduleloader.Module, error) {
	if deps.Client == nil {
		return nil, errNoRecordsClient
	}
	return moduleloader.NewModule(string(moduleloader.Domains), http.HandlerFunc(h.HandleDomainsTable)), nil
}

func (h *Handler) moduleFallback(w http.ResponseWriter, r *http.Request, _ moduleloader.Kind) {
	loc, _ := h.localizer(w, r)
	renderFragment(w, r, http.StatusInternalServerError, templates.ModuleFallback(loc))
}

// HandleRoot sends the console entry point to the first module.
func (h *Handler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, routepath.Module(string(moduleloader.Contacts)), http.StatusFound)
}

// HandleModuleShell renders the layout with a placeholder that loads the
// module content on first display.
func (h *Handler) HandleModuleShell(w http.ResponseWriter, r *http.Request, module string) {
	loc, tag := h.localizer(w, r)
	content := routepath.ModuleContent(module)
	if r.URL.RawQuery != "" {
		content += "?" + r.URL.RawQuery
	}
	title := ""
	if kind, ok := moduleloader.ParseKind(module); ok {
		title = templates.T(loc, "module."+string(kind))
	}
	page := h.pageContext(w, r, loc, tag, title, module, &notify.Collector{})
	renderFull(w, r, page, templates.LazyLoad(content, templates.T(loc, "core.loading")))
}

// HandleModuleContent serves the module fragment through the registry.
func (h *Handler) HandleModuleContent(w http.ResponseWriter, r *http.Request, module string) {
	h.modules.ServeModule(w, r, module)
}
