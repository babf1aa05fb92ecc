package contacts

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/louisbranch/backoffice/internal/platform/logging"
	"github.com/louisbranch/backoffice/internal/services/backoffice/countryref"
	"github.com/louisbranch/backoffice/internal/services/backoffice/integration/restclient"
)

type fakeClient struct {
	mu        sync.Mutex
	contact   restclient.Contact
	detailErr error
	deleteErr error
	gate      chan struct{}
	deleted   []string
	fetched   []string
}

func (f *fakeClient) ContactsDetail(ctx context.Context, id string) (restclient.Contact, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, id)
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return restclient.Contact{}, ctx.Err()
		}
	}
	return f.contact, f.detailErr
}

func (f *fakeClient) ContactsDelete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

type fakeSource struct {
	mapping map[string]string
	err     error
	calls   int
}

func (f *fakeSource) CountriesList(context.Context, string) (map[string]string, error) {
	f.calls++
	return f.mapping, f.err
}

type recordingNotifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (n *recordingNotifier) Success(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, message)
}

func (n *recordingNotifier) Error(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, message)
}

type recordingNavigator struct {
	paths []string
}

func (n *recordingNavigator) Navigate(path string) {
	n.paths = append(n.paths, path)
}

type fixture struct {
	client      *fakeClient
	source      *fakeSource
	notifier    *recordingNotifier
	navigator   *recordingNavigator
	transitions []bool
	view        *DetailView
}

func newFixture(t *testing.T, client *fakeClient, source *fakeSource) *fixture {
	t.Helper()
	f := &fixture{client: client, source: source, notifier: &recordingNotifier{}, navigator: &recordingNavigator{}}
	resolver := countryref.New(source, f.notifier,
		countryref.WithLogger(logging.Discard()),
		countryref.WithLoadingObserver(func(loading bool) { f.transitions = append(f.transitions, loading) }),
	)
	f.view = NewDetailView(Deps{
		Client:    client,
		Resolver:  resolver,
		Notifier:  f.notifier,
		Navigator: f.navigator,
		Logger:    logging.Discard(),
	}, "c-1")
	t.Cleanup(f.view.Close)
	return f
}

func (f *fixture) load(t *testing.T) {
	t.Helper()
	if err := f.view.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	f.view.Wait()
}

func strPtr(value string) *string { return &value }

func TestNullCountryNeverLoads(t *testing.T) {
	source := &fakeSource{mapping: map[string]string{"BR": "Brazil"}}
	f := newFixture(t, &fakeClient{contact: restclient.Contact{ID: "c-1", Email: "a@example.com"}}, source)
	f.load(t)

	snap := f.view.Snapshot()
	if snap.State != Idle || !snap.Loaded {
		t.Fatalf("snapshot = %+v, want loaded idle", snap)
	}
	if snap.Country.Status != countryref.Skipped || snap.Country.Name != "" {
		t.Fatalf("country = %+v, want skipped blank", snap.Country)
	}
	if snap.CountryPending {
		t.Fatal("country pending, want hidden loading flag")
	}
	if len(f.transitions) != 0 {
		t.Fatalf("loading transitions = %v, want none", f.transitions)
	}
	if source.calls != 0 {
		t.Fatalf("country list calls = %d, want 0", source.calls)
	}
}

func TestCountryResolvedToDisplayName(t *testing.T) {
	source := &fakeSource{mapping: map[string]string{"BR": "Brazil"}}
	f := newFixture(t, &fakeClient{contact: restclient.Contact{ID: "c-1", Email: "a@example.com", CountryCode: strPtr("BR")}}, source)
	f.load(t)

	snap := f.view.Snapshot()
	if snap.Country.Status != countryref.Resolved || snap.Country.Name != "Brazil" {
		t.Fatalf("country = %+v, want Brazil", snap.Country)
	}
	if diff := cmp.Diff([]bool{true, false}, f.transitions); diff != "" {
		t.Fatalf("loading transitions mismatch (-want +got):\n%s", diff)
	}
	if snap.CountryPending {
		t.Fatal("country pending after resolution")
	}
}

func TestCountryListUnavailable(t *testing.T) {
	source := &fakeSource{mapping: map[string]string{}}
	f := newFixture(t, &fakeClient{contact: restclient.Contact{ID: "c-1", Email: "a@example.com", CountryCode: strPtr("BR")}}, source)
	f.load(t)

	if diff := cmp.Diff([]string{"Server error: country list not available."}, f.notifier.errors); diff != "" {
		t.Fatalf("error notices mismatch (-want +got):\n%s", diff)
	}
	snap := f.view.Snapshot()
	if snap.Country.Status != countryref.Unavailable || snap.Country.Name != "" {
		t.Fatalf("country = %+v, want unavailable", snap.Country)
	}
	if !snap.CountryPending {
		t.Fatal("country resolved, want field to stay unresolved")
	}
}

func TestFetchFailureStaysLoadingSilently(t *testing.T) {
	f := newFixture(t, &fakeClient{detailErr: restclient.ErrUnavailable}, &fakeSource{})
	f.load(t)

	snap := f.view.Snapshot()
	if snap.State != Loading || snap.Loaded {
		t.Fatalf("snapshot = %+v, want loading", snap)
	}
	if len(f.notifier.errors) != 0 || len(f.notifier.successes) != 0 {
		t.Fatalf("notices = %v %v, want none", f.notifier.successes, f.notifier.errors)
	}
	if err := f.view.RequestDelete(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("RequestDelete error = %v, want ErrInvalidTransition", err)
	}
}

func TestConfirmDeleteSuccess(t *testing.T) {
	client := &fakeClient{contact: restclient.Contact{ID: "c-1", Email: "a@example.com"}}
	f := newFixture(t, client, &fakeSource{})
	f.load(t)

	if err := f.view.RequestDelete(); err != nil {
		t.Fatalf("RequestDelete: %v", err)
	}
	if got := f.view.State(); got != ConfirmingDelete {
		t.Fatalf("state = %s, want confirming_delete", got)
	}
	if err := f.view.Confirm(context.Background()); err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	if diff := cmp.Diff([]string{"c-1"}, client.deleted); diff != "" {
		t.Fatalf("delete calls mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{MessageDeleted}, f.notifier.successes); diff != "" {
		t.Fatalf("success notices mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"/m/contacts"}, f.navigator.paths); diff != "" {
		t.Fatalf("navigation mismatch (-want +got):\n%s", diff)
	}
	if got := f.view.State(); got != Deleted {
		t.Fatalf("state = %s, want deleted", got)
	}
	if err := f.view.RequestDelete(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("RequestDelete after delete = %v, want ErrInvalidTransition", err)
	}
}

func TestConfirmDeleteFailureReturnsToIdle(t *testing.T) {
	client := &fakeClient{contact: restclient.Contact{ID: "c-1", Email: "a@example.com"}, deleteErr: restclient.ErrUnavailable}
	f := newFixture(t, client, &fakeSource{})
	f.load(t)

	if err := f.view.RequestDelete(); err != nil {
		t.Fatalf("RequestDelete: %v", err)
	}
	err := f.view.Confirm(context.Background())
	if !errors.Is(err, restclient.ErrUnavailable) {
		t.Fatalf("Confirm error = %v, want ErrUnavailable", err)
	}
	if len(client.deleted) != 1 {
		t.Fatalf("delete calls = %d, want 1", len(client.deleted))
	}
	if diff := cmp.Diff([]string{MessageDeleteFailed}, f.notifier.errors); diff != "" {
		t.Fatalf("error notices mismatch (-want +got):\n%s", diff)
	}
	if len(f.navigator.paths) != 0 {
		t.Fatalf("navigation = %v, want none", f.navigator.paths)
	}
	snap := f.view.Snapshot()
	if snap.State != Idle || snap.Contact.Email != "a@example.com" {
		t.Fatalf("snapshot = %+v, want idle with contact displayed", snap)
	}
}

func TestCancelIssuesNoDelete(t *testing.T) {
	client := &fakeClient{contact: restclient.Contact{ID: "c-1", Email: "a@example.com"}}
	f := newFixture(t, client, &fakeSource{})
	f.load(t)
	before := f.view.Snapshot()

	if err := f.view.RequestDelete(); err != nil {
		t.Fatalf("RequestDelete: %v", err)
	}
	if err := f.view.Cancel(); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if len(client.deleted) != 0 {
		t.Fatalf("delete calls = %d, want 0", len(client.deleted))
	}
	if diff := cmp.Diff(before, f.view.Snapshot()); diff != "" {
		t.Fatalf("snapshot changed (-before +after):\n%s", diff)
	}
}

func TestInvalidTransitions(t *testing.T) {
	f := newFixture(t, &fakeClient{contact: restclient.Contact{ID: "c-1", Email: "a@example.com"}}, &fakeSource{})
	f.load(t)

	if err := f.view.Cancel(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Cancel from idle = %v, want ErrInvalidTransition", err)
	}
	if err := f.view.Confirm(context.Background()); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Confirm from idle = %v, want ErrInvalidTransition", err)
	}
	if err := f.view.Start(context.Background()); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("second Start = %v, want ErrInvalidTransition", err)
	}
	if len(f.client.deleted) != 0 {
		t.Fatalf("delete calls = %d, want 0", len(f.client.deleted))
	}
}

func TestCloseSuppressesUpdates(t *testing.T) {
	client := &fakeClient{contact: restclient.Contact{ID: "c-1", Email: "a@example.com"}, gate: make(chan struct{})}
	f := newFixture(t, client, &fakeSource{})
	if err := f.view.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	f.view.Close()
	f.view.Wait()

	snap := f.view.Snapshot()
	if snap.Loaded || snap.State != Loading {
		t.Fatalf("snapshot = %+v, want untouched after close", snap)
	}
	if err := f.view.RequestDelete(); !errors.Is(err, ErrClosed) {
		t.Fatalf("RequestDelete after close = %v, want ErrClosed", err)
	}
	if err := f.view.Start(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("Start after close = %v, want ErrClosed", err)
	}
}

func TestStateString(t *testing.T) {
	tests := map[State]string{
		Loading:          "loading",
		Idle:             "idle",
		ConfirmingDelete: "confirming_delete",
		Deleting:         "deleting",
		Deleted:          "deleted",
		State(99):        "invalid",
	}
	for state, want := range tests {
		if got := state.String(); got != want {
			t.Fatalf("State(%d).String() = %q, want %q", int(state), got, want)
		}
	}
}
