package contacts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/louisbranch/backoffice/internal/services/backoffice/countryref"
	"github.com/louisbranch/backoffice/internal/services/backoffice/integration/restclient"
	"github.com/louisbranch/backoffice/internal/services/backoffice/routepath"
)

// ModuleName is the console module that owns contacts.
const ModuleName = "contacts"

// Notification texts raised by the delete flow.
const (
	MessageDeleted      = "Contact deleted!."
	MessageDeleteFailed = "Server error: contact not deleted."
)

var (
	// ErrInvalidTransition reports an operation not allowed in the current state.
	ErrInvalidTransition = errors.New("invalid detail view transition")
	// ErrClosed reports an operation on a view that was closed.
	ErrClosed = errors.New("detail view closed")
)

// State is the detail view lifecycle state.
type State int

const (
	// Loading is the initial state and the state kept when the fetch fails.
	Loading State = iota
	// Idle means the contact is loaded and no action is pending.
	Idle
	// ConfirmingDelete means the delete modal is open.
	ConfirmingDelete
	// Deleting means a confirmed delete call is in flight.
	Deleting
	// Deleted is terminal; the caller must navigate away.
	Deleted
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Idle:
		return "idle"
	case ConfirmingDelete:
		return "confirming_delete"
	case Deleting:
		return "deleting"
	case Deleted:
		return "deleted"
	default:
		return "invalid"
	}
}

// Client is the records API surface the detail view needs.
type Client interface {
	ContactsDetail(ctx context.Context, id string) (restclient.Contact, error)
	ContactsDelete(ctx context.Context, id string) error
}

// CountryResolver resolves the contact country code.
type CountryResolver interface {
	Resolve(ctx context.Context, code *string) countryref.Resolution
	Loading() bool
}

// Notifier surfaces user notifications.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// Navigator moves the user to another console path.
type Navigator interface {
	Navigate(path string)
}

// Deps are the collaborators of a DetailView. Resolver may be nil when the
// caller does not display the country.
type Deps struct {
	Client    Client
	Resolver  CountryResolver
	Notifier  Notifier
	Navigator Navigator
	Logger    *slog.Logger
}

// Snapshot is a consistent copy of the view state for rendering.
type Snapshot struct {
	ID      string
	State   State
	Loaded  bool
	Contact restclient.Contact
	Country countryref.Resolution
	// CountryPending is true while the country field must stay hidden.
	CountryPending bool
}

// DetailView loads one contact and drives its delete flow. The identifier is
// fixed at construction.
type DetailView struct {
	id     string
	deps   Deps
	logger *slog.Logger

	mu      sync.Mutex
	state   State
	contact restclient.Contact
	loaded  bool
	country countryref.Resolution
	closed  bool
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewDetailView builds a view for the contact id.
func NewDetailView(deps Deps, id string) *DetailView {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &DetailView{
		id:     strings.TrimSpace(id),
		deps:   deps,
		logger: logger.With("contact_id", strings.TrimSpace(id)),
		state:  Loading,
	}
}

// ID returns the contact identifier.
func (v *DetailView) ID() string {
	return v.id
}

// Start launches the fetch. The task ends when ctx ends or Close is called.
func (v *DetailView) Start(ctx context.Context) error {
	if v.deps.Client == nil {
		return errors.New("contacts client is not configured")
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return ErrClosed
	}
	if v.started {
		return fmt.Errorf("%w: already started", ErrInvalidTransition)
	}
	taskCtx, cancel := context.WithCancel(ctx)
	v.started = true
	v.cancel = cancel
	v.done = make(chan struct{})
	go v.load(taskCtx)
	return nil
}

func (v *DetailView) load(ctx context.Context) {
	defer close(v.done)

	contact, err := v.deps.Client.ContactsDetail(ctx, v.id)
	if err != nil {
		if !v.isClosed() {
			v.logger.ErrorContext(ctx, "load contact", "error", err)
		}
		return
	}

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.contact = contact
	v.loaded = true
	v.state = Idle
	v.mu.Unlock()

	if v.deps.Resolver == nil {
		return
	}
	resolution := v.deps.Resolver.Resolve(ctx, contact.CountryCode)
	v.mu.Lock()
	if !v.closed {
		v.country = resolution
	}
	v.mu.Unlock()
}

// Wait blocks until the fetch started by Start has finished.
func (v *DetailView) Wait() {
	v.mu.Lock()
	done := v.done
	v.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Close cancels the fetch and suppresses every later state update.
func (v *DetailView) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.closed = true
	if v.cancel != nil {
		v.cancel()
	}
}

func (v *DetailView) isClosed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}

// State returns the current lifecycle state.
func (v *DetailView) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Snapshot returns the current state for rendering.
func (v *DetailView) Snapshot() Snapshot {
	v.mu.Lock()
	snap := Snapshot{
		ID:      v.id,
		State:   v.state,
		Loaded:  v.loaded,
		Contact: v.contact,
		Country: v.country,
	}
	v.mu.Unlock()
	if v.deps.Resolver != nil {
		snap.CountryPending = v.deps.Resolver.Loading()
	}
	return snap
}

// RequestDelete opens the confirmation step.
func (v *DetailView) RequestDelete() error {
	return v.transition(Idle, ConfirmingDelete)
}

// Cancel closes the confirmation step without side effects.
func (v *DetailView) Cancel() error {
	return v.transition(ConfirmingDelete, Idle)
}

func (v *DetailView) transition(from, to State) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return ErrClosed
	}
	if v.state != from {
		return fmt.Errorf("%w: %s to %s from %s", ErrInvalidTransition, from, to, v.state)
	}
	v.state = to
	return nil
}

// Confirm issues the delete call once. Success notifies, navigates to the
// contacts module and ends in Deleted. Failure notifies and returns to Idle
// with the contact still loaded.
func (v *DetailView) Confirm(ctx context.Context) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrClosed
	}
	if v.state != ConfirmingDelete {
		state := v.state
		v.mu.Unlock()
		return fmt.Errorf("%w: confirm from %s", ErrInvalidTransition, state)
	}
	v.state = Deleting
	id := v.contact.ID
	if id == "" {
		id = v.id
	}
	v.mu.Unlock()

	err := v.deps.Client.ContactsDelete(ctx, id)

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrClosed
	}
	if err != nil {
		v.state = Idle
		v.mu.Unlock()
		v.logger.ErrorContext(ctx, "delete contact", "error", err)
		if v.deps.Notifier != nil {
			v.deps.Notifier.Error(MessageDeleteFailed)
		}
		return fmt.Errorf("delete contact %s: %w", id, err)
	}
	v.state = Deleted
	v.mu.Unlock()

	v.logger.InfoContext(ctx, "contact deleted")
	if v.deps.Notifier != nil {
		v.deps.Notifier.Success(MessageDeleted)
	}
	if v.deps.Navigator != nil {
		v.deps.Navigator.Navigate(routepath.Module(ModuleName))
	}
	return nil
}
