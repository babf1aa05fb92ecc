package backoffice

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/louisbranch/backoffice/internal/platform/logging"
	"github.com/louisbranch/backoffice/internal/platform/timeouts"
	contactsfeature "github.com/louisbranch/backoffice/internal/services/backoffice/contacts"
	"github.com/louisbranch/backoffice/internal/services/backoffice/countryref"
	domainsfeature "github.com/louisbranch/backoffice/internal/services/backoffice/domains"
	"github.com/louisbranch/backoffice/internal/services/backoffice/i18n"
	contactsmodule "github.com/louisbranch/backoffice/internal/services/backoffice/module/contacts"
	domainsmodule "github.com/louisbranch/backoffice/internal/services/backoffice/module/domains"
	shellmodule "github.com/louisbranch/backoffice/internal/services/backoffice/module/shell"
	"github.com/louisbranch/backoffice/internal/services/backoffice/moduleloader"
	"github.com/louisbranch/backoffice/internal/services/backoffice/notify"
	"github.com/louisbranch/backoffice/internal/services/backoffice/routepath"
	"github.com/louisbranch/backoffice/internal/services/backoffice/static"
	"github.com/louisbranch/backoffice/internal/services/backoffice/templates"
)

// RecordsClient is the records API surface the console consumes.
type RecordsClient interface {
	contactsfeature.Client
	contactsfeature.ListClient
	domainsfeature.Client
	countryref.Source
}

// Handler routes console requests.
type Handler struct {
	client  RecordsClient
	logger  *slog.Logger
	timeout time.Duration
	modules *moduleloader.Registry[moduleDeps]
}

// NewHandler builds the HTTP handler for the console. A zero timeout uses
// timeouts.Request for every records API call.
func NewHandler(client RecordsClient, logger *slog.Logger, timeout time.Duration) (http.Handler, error) {
	if client == nil {
		return nil, errors.New("records client is required")
	}
	if err := i18n.Load(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = timeouts.Request
	}
	h := &Handler{client: client, logger: logger, timeout: timeout}
	h.modules = h.newModuleRegistry()
	return h.routes(), nil
}

// routes wires the HTTP routes for the console handler.
func (h *Handler) routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET "+routepath.StaticPrefix, http.StripPrefix(routepath.StaticPrefix, http.FileServerFS(static.FS)))
	mux.HandleFunc("GET "+routepath.Healthz, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	shellmodule.RegisterRoutes(mux, h)
	contactsmodule.RegisterRoutes(mux, h)
	domainsmodule.RegisterRoutes(mux, h)
	mux.HandleFunc(routepath.Root, h.handleNotFound)
	return middleware.RequestID(middleware.Recoverer(h.withRequestLogger(mux)))
}

// withRequestLogger stores a request scoped logger in the context and logs
// each finished request.
func (h *Handler) withRequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := h.logger.With("request_id", middleware.GetReqID(r.Context()))
		r = r.WithContext(logging.WithLogger(r.Context(), logger))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logger.DebugContext(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

// handleNotFound renders the not found page for unmatched paths.
func (h *Handler) handleNotFound(w http.ResponseWriter, r *http.Request) {
	loc, tag := h.localizer(w, r)
	page := h.pageContext(w, r, loc, tag, templates.T(loc, "core.error.not_found"), "", &notify.Collector{})
	templ.Handler(templates.Layout(page, templates.NotFound(loc)), templ.WithStatus(http.StatusNotFound)).ServeHTTP(w, r)
}

// callContext bounds one records API call.
func (h *Handler) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, h.timeout)
}

func (h *Handler) localizer(w http.ResponseWriter, r *http.Request) (*message.Printer, language.Tag) {
	tag, persist := i18n.ResolveTag(r)
	if persist {
		i18n.SetLanguageCookie(w, tag)
	}
	return i18n.Printer(tag), tag
}

// pageContext builds the layout context. Pending flash notices and notices
// raised while handling this request become toasts.
func (h *Handler) pageContext(w http.ResponseWriter, r *http.Request, loc *message.Printer, tag language.Tag, title string, active string, raised *notify.Collector) templates.PageContext {
	page := templates.PageContext{
		Lang:         tag.String(),
		Loc:          loc,
		CurrentPath:  r.URL.Path,
		CurrentQuery: r.URL.RawQuery,
		Title:        title,
	}
	for _, kind := range moduleloader.Kinds() {
		page.Nav = append(page.Nav, templates.NavItem{
			Label:  templates.T(loc, "module."+string(kind)),
			URL:    routepath.Module(string(kind)),
			Active: string(kind) == active,
		})
	}
	for _, supported := range i18n.Supported() {
		page.Languages = append(page.Languages, templates.LanguageOption{
			Tag:    supported.String(),
			Label:  templates.T(loc, "core.language."+supported.String()),
			Active: supported == tag,
		})
	}
	notices := append(notify.ReadAndClear(w, r), raised.Notices()...)
	page.Toasts = toasts(loc, notices)
	return page
}

func toasts(loc *message.Printer, notices []notify.Notice) []templates.Toast {
	out := make([]templates.Toast, 0, len(notices))
	for _, n := range notices {
		args := make([]any, 0, len(n.Args))
		for _, arg := range n.Args {
			args = append(args, arg)
		}
		out = append(out, templates.Toast{Kind: string(n.Kind), Text: templates.T(loc, n.Key, args...)})
	}
	return out
}

// renderFull renders content inside the layout.
func renderFull(w http.ResponseWriter, r *http.Request, page templates.PageContext, content templ.Component) {
	templ.Handler(templates.Layout(page, content)).ServeHTTP(w, r)
}

// renderFragment renders an HTMX fragment with status.
func renderFragment(w http.ResponseWriter, r *http.Request, status int, fragment templ.Component) {
	templ.Handler(fragment, templ.WithStatus(status)).ServeHTTP(w, r)
}

// redirect sends the user to target, carrying notices in the flash cookie.
// HTMX requests receive HX-Redirect so the browser performs a full navigation.
func redirect(w http.ResponseWriter, r *http.Request, target string, notices ...notify.Notice) {
	notify.Write(w, r, notices...)
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// isHTMXRequest reports whether the request originated from HTMX.
func isHTMXRequest(r *http.Request) bool {
	if r == nil {
		return false
	}
	return r.Header.Get("HX-Request") == "true"
}

// pathNavigator records the navigation target chosen by a view.
type pathNavigator struct {
	path string
}

func (n *pathNavigator) Navigate(path string) {
	n.path = path
}
