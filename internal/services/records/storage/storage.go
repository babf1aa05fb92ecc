package storage

import (
	"context"
	"errors"
	"time"

	"github.com/louisbranch/backoffice/internal/services/records/query"
)

// ErrNotFound indicates a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Contact is one stored contact.
type Contact struct {
	ID          string
	Email       string
	Phone       string
	CityName    string
	Address1    string
	Address2    string
	CountryCode *string
	CreatedAt   time.Time
}

// ContactInput carries the fields accepted when creating a contact.
type ContactInput struct {
	Email       string
	Phone       string
	CityName    string
	Address1    string
	Address2    string
	CountryCode *string
}

// Domain is one stored domain row.
type Domain struct {
	ID          string
	Name        string
	Title       string
	Description string
	URL         string
	DNSCheck    bool
	Free        bool
	CreatedAt   time.Time
}

// DomainImport is one record of a domain import batch.
type DomainImport struct {
	Name        string
	Title       string
	Description string
	URL         string
	DNSCheck    bool
	Free        bool
}

// Page is one page of list results.
type Page[T any] struct {
	Items    []T
	Total    int
	Page     int
	PageSize int
}

// ContactStore persists contacts.
type ContactStore interface {
	GetContact(ctx context.Context, id string) (Contact, error)
	CreateContact(ctx context.Context, input ContactInput) (Contact, error)
	DeleteContact(ctx context.Context, id string) error
	ListContacts(ctx context.Context, plan query.Plan) (Page[Contact], error)
}

// DomainStore persists domains.
type DomainStore interface {
	ListDomains(ctx context.Context, plan query.Plan) (Page[Domain], error)
	ImportDomains(ctx context.Context, records []DomainImport) (int, error)
}

// CountryStore exposes the ISO 3166 region codes the service knows about.
type CountryStore interface {
	ListCountryCodes(ctx context.Context) ([]string, error)
}

// Store is a composite interface for records storage concerns.
type Store interface {
	ContactStore
	DomainStore
	CountryStore
	Close() error
}
