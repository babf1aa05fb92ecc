package backoffice

import (
	"net/http"
	"strings"

	"github.com/louisbranch/backoffice/internal/platform/logging"
	contactsfeature "github.com/louisbranch/backoffice/internal/services/backoffice/contacts"
	"github.com/louisbranch/backoffice/internal/services/backoffice/countryref"
	"github.com/louisbranch/backoffice/internal/services/backoffice/datalist"
	"github.com/louisbranch/backoffice/internal/services/backoffice/i18n"
	"github.com/louisbranch/backoffice/internal/services/backoffice/notify"
	"github.com/louisbranch/backoffice/internal/services/backoffice/routepath"
	"github.com/louisbranch/backoffice/internal/services/backoffice/templates"
)

func (h *Handler) HandleContactsPage(w http.ResponseWriter, r *http.Request) {
	loc, tag := h.localizer(w, r)
	collector := &notify.Collector{}
	grid := h.contactsGrid(r, collector, i18n.NewFormatter(tag))
	view := templates.GridPageView{
		Title:       templates.T(loc, "module.contacts"),
		Breadcrumbs: translateBreadcrumbs(loc, grid.Breadcrumbs),
		Grid:        grid,
	}
	page := h.pageContext(w, r, loc, tag, view.Title, contactsfeature.ModuleName, collector)
	renderFull(w, r, page, templates.GridPage(view, loc))
}

func (h *Handler) HandleContactsTable(w http.ResponseWriter, r *http.Request) {
	loc, tag := h.localizer(w, r)
	grid := h.contactsGrid(r, &notify.Collector{}, i18n.NewFormatter(tag))
	renderFragment(w, r, http.StatusOK, templates.DataGrid(grid, loc))
}

func (h *Handler) contactsGrid(r *http.Request, collector *notify.Collector, f datalist.Formatter) datalist.Grid {
	view := datalist.NewView(contactsfeature.ListConfig(h.client), collector, logging.FromContext(r.Context()))
	view.Restore(r.URL.Query())
	ctx, cancel := h.callContext(r.Context())
	defer cancel()
	view.Refresh(ctx)
	return view.Grid(f)
}

// HandleContactDetail renders the contact card. The confirm query opens the
// delete confirmation on top of it.
func (h *Handler) HandleContactDetail(w http.ResponseWriter, r *http.Request, contactID string) {
	loc, tag := h.localizer(w, r)
	collector := &notify.Collector{}
	logger := logging.FromContext(r.Context())

	ctx, cancel := h.callContext(r.Context())
	defer cancel()
	resolver := countryref.New(h.client, collector,
		countryref.WithLanguage(tag.String()),
		countryref.WithLogger(logger),
	)
	detail := contactsfeature.NewDetailView(contactsfeature.Deps{
		Client:    h.client,
		Resolver:  resolver,
		Notifier:  collector,
		Navigator: &pathNavigator{},
		Logger:    logger,
	}, contactID)
	defer detail.Close()
	if err := detail.Start(ctx); err != nil {
		logger.ErrorContext(ctx, "start contact detail", "error", err)
	}
	detail.Wait()
	if r.URL.Query().Get("confirm") == "delete" {
		// A contact that did not load stays without a modal.
		_ = detail.RequestDelete()
	}

	view := contactDetailView(loc, detail.Snapshot())
	page := h.pageContext(w, r, loc, tag, templates.T(loc, "contacts.title"), contactsfeature.ModuleName, collector)
	renderFull(w, r, page, templates.ContactDetail(view, loc))
}

// HandleContactDelete runs the confirmed delete and redirects with the
// outcome as a flash notice.
func (h *Handler) HandleContactDelete(w http.ResponseWriter, r *http.Request, contactID string) {
	collector := &notify.Collector{}
	logger := logging.FromContext(r.Context())
	navigator := &pathNavigator{}

	ctx, cancel := h.callContext(r.Context())
	defer cancel()
	detail := contactsfeature.NewDetailView(contactsfeature.Deps{
		Client:    h.client,
		Notifier:  collector,
		Navigator: navigator,
		Logger:    logger,
	}, contactID)
	defer detail.Close()
	if err := detail.Start(ctx); err != nil {
		logger.ErrorContext(ctx, "start contact delete", "error", err)
	}
	detail.Wait()

	back := routepath.Contact(contactID)
	if err := detail.RequestDelete(); err != nil {
		logger.WarnContext(ctx, "delete requested before contact loaded", "contact_id", contactID, "error", err)
		collector.Error(contactsfeature.MessageDeleteFailed)
		redirect(w, r, back, collector.Notices()...)
		return
	}
	// Confirm logs and notifies its own failures.
	if err := detail.Confirm(ctx); err != nil {
		redirect(w, r, back, collector.Notices()...)
		return
	}
	target := navigator.path
	if target == "" {
		target = routepath.Module(contactsfeature.ModuleName)
	}
	redirect(w, r, target, collector.Notices()...)
}

func contactDetailView(loc templates.Localizer, snap contactsfeature.Snapshot) templates.ContactDetailView {
	view := templates.ContactDetailView{
		ID:             snap.ID,
		Loaded:         snap.Loaded,
		Email:          snap.Contact.Email,
		Phone:          snap.Contact.Phone,
		City:           snap.Contact.CityName,
		Address1:       snap.Contact.Address1,
		Address2:       snap.Contact.Address2,
		CountryPending: snap.CountryPending,
		Confirming:     snap.State == contactsfeature.ConfirmingDelete,
		ConfirmURL:     routepath.ContactConfirmDelete(snap.ID),
		DeleteURL:      routepath.ContactDelete(snap.ID),
		CancelURL:      routepath.Contact(snap.ID),
		BackURL:        routepath.Module(contactsfeature.ModuleName),
		Breadcrumbs: []templates.Breadcrumb{
			{Label: templates.T(loc, "core.dashboard"), URL: routepath.Root},
			{Label: templates.T(loc, "module.contacts"), URL: routepath.Module(contactsfeature.ModuleName)},
			{Label: contactLabel(snap)},
		},
	}
	if snap.Country.Status == countryref.Resolved {
		view.Country = snap.Country.Name
	}
	return view
}

func contactLabel(snap contactsfeature.Snapshot) string {
	if email := strings.TrimSpace(snap.Contact.Email); email != "" {
		return email
	}
	return snap.ID
}

// translateBreadcrumbs localizes list breadcrumb labels.
func translateBreadcrumbs(loc templates.Localizer, items []datalist.Breadcrumb) []templates.Breadcrumb {
	out := make([]templates.Breadcrumb, 0, len(items))
	for _, item := range items {
		out = append(out, templates.Breadcrumb{Label: templates.T(loc, item.Label), URL: item.URL})
	}
	return out
}
