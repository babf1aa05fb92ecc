package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/backoffice/internal/platform/id"
	"github.com/louisbranch/backoffice/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/backoffice/internal/services/records/query"
	"github.com/louisbranch/backoffice/internal/services/records/storage"
	"github.com/louisbranch/backoffice/internal/services/records/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides a SQLite-backed store implementing records storage interfaces.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open opens a SQLite store at the provided path and applies migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := "file:" + filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if _, err := sqlitemigrate.Apply(ctx, sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

// Contacts and domains are listed through the same query planner; these
// resources describe what the grid may search and sort on.
var (
	ContactsResource = query.Resource{
		Name: "contacts",
		Fields: []query.Field{
			{Name: "email", Column: "email", Searchable: true},
			{Name: "phone", Column: "phone", Searchable: true},
			{Name: "cityName", Column: "city_name", Searchable: true},
			{Name: "countryCode", Column: "country_code"},
			{Name: "createdAt", Column: "created_at", Type: query.TypeTimestamp},
		},
		KeyColumn:   "id",
		DefaultSort: "email",
	}
	DomainsResource = query.Resource{
		Name: "domains",
		Fields: []query.Field{
			{Name: "name", Column: "name", Searchable: true},
			{Name: "title", Column: "title", Searchable: true},
			{Name: "description", Column: "description", Searchable: true},
			{Name: "url", Column: "url", Searchable: true},
			{Name: "dnsCheck", Column: "dns_check", Type: query.TypeBool},
			{Name: "free", Column: "free", Type: query.TypeBool},
			{Name: "createdAt", Column: "created_at", Type: query.TypeTimestamp},
		},
		KeyColumn:   "id",
		DefaultSort: "createdAt",
		DefaultDesc: true,
	}
)

const contactColumns = "id, email, phone, city_name, address1, address2, country_code, created_at"

// GetContact loads one contact by id.
func (s *Store) GetContact(ctx context.Context, contactID string) (storage.Contact, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Contact{}, err
	}
	contactID = strings.TrimSpace(contactID)
	if contactID == "" {
		return storage.Contact{}, fmt.Errorf("contact id is required")
	}
	row := s.sqlDB.QueryRowContext(ctx, "SELECT "+contactColumns+" FROM contacts WHERE id = ?", contactID)
	contact, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Contact{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.Contact{}, fmt.Errorf("get contact: %w", err)
	}
	return contact, nil
}

// CreateContact stores a new contact with a generated id.
func (s *Store) CreateContact(ctx context.Context, input storage.ContactInput) (storage.Contact, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Contact{}, err
	}
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return storage.Contact{}, fmt.Errorf("contact email is required")
	}
	contactID, err := id.NewID()
	if err != nil {
		return storage.Contact{}, fmt.Errorf("generate contact id: %w", err)
	}
	var countryCode *string
	if input.CountryCode != nil && strings.TrimSpace(*input.CountryCode) != "" {
		code := strings.ToUpper(strings.TrimSpace(*input.CountryCode))
		countryCode = &code
	}
	contact := storage.Contact{
		ID:          contactID,
		Email:       email,
		Phone:       strings.TrimSpace(input.Phone),
		CityName:    strings.TrimSpace(input.CityName),
		Address1:    strings.TrimSpace(input.Address1),
		Address2:    strings.TrimSpace(input.Address2),
		CountryCode: countryCode,
		CreatedAt:   s.now().UTC(),
	}
	_, err = s.sqlDB.ExecContext(ctx,
		"INSERT INTO contacts ("+contactColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		contact.ID, contact.Email, contact.Phone, contact.CityName, contact.Address1, contact.Address2,
		nullableString(contact.CountryCode), query.FormatTimestamp(contact.CreatedAt),
	)
	if err != nil {
		return storage.Contact{}, fmt.Errorf("insert contact: %w", err)
	}
	return contact, nil
}

// DeleteContact removes one contact. Missing contacts return storage.ErrNotFound.
func (s *Store) DeleteContact(ctx context.Context, contactID string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	contactID = strings.TrimSpace(contactID)
	if contactID == "" {
		return fmt.Errorf("contact id is required")
	}
	result, err := s.sqlDB.ExecContext(ctx, "DELETE FROM contacts WHERE id = ?", contactID)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete contact rows: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListContacts returns one page of contacts for plan.
func (s *Store) ListContacts(ctx context.Context, plan query.Plan) (storage.Page[storage.Contact], error) {
	if err := s.ready(ctx); err != nil {
		return storage.Page[storage.Contact]{}, err
	}
	page := storage.Page[storage.Contact]{Page: plan.Page, PageSize: plan.PageSize}
	total, err := s.count(ctx, "contacts", plan)
	if err != nil {
		return page, err
	}
	page.Total = total

	rows, err := s.sqlDB.QueryContext(ctx, selectPage("SELECT "+contactColumns+" FROM contacts", plan), pageArgs(plan)...)
	if err != nil {
		return page, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return page, fmt.Errorf("scan contact: %w", err)
		}
		page.Items = append(page.Items, contact)
	}
	if err := rows.Err(); err != nil {
		return page, fmt.Errorf("iterate contacts: %w", err)
	}
	return page, nil
}

const domainColumns = "id, name, title, description, url, dns_check, free, created_at"

// ListDomains returns one page of domains for plan.
func (s *Store) ListDomains(ctx context.Context, plan query.Plan) (storage.Page[storage.Domain], error) {
	if err := s.ready(ctx); err != nil {
		return storage.Page[storage.Domain]{}, err
	}
	page := storage.Page[storage.Domain]{Page: plan.Page, PageSize: plan.PageSize}
	total, err := s.count(ctx, "domains", plan)
	if err != nil {
		return page, err
	}
	page.Total = total

	rows, err := s.sqlDB.QueryContext(ctx, selectPage("SELECT "+domainColumns+" FROM domains", plan), pageArgs(plan)...)
	if err != nil {
		return page, fmt.Errorf("list domains: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			domain    storage.Domain
			createdAt string
		)
		if err := rows.Scan(&domain.ID, &domain.Name, &domain.Title, &domain.Description, &domain.URL,
			&domain.DNSCheck, &domain.Free, &createdAt); err != nil {
			return page, fmt.Errorf("scan domain: %w", err)
		}
		if domain.CreatedAt, err = query.ParseTimestamp(createdAt); err != nil {
			return page, fmt.Errorf("parse domain created_at: %w", err)
		}
		page.Items = append(page.Items, domain)
	}
	if err := rows.Err(); err != nil {
		return page, fmt.Errorf("iterate domains: %w", err)
	}
	return page, nil
}

// ImportDomains upserts a batch of domains by name in one transaction and
// returns how many records were written.
func (s *Store) ImportDomains(ctx context.Context, records []storage.DomainImport) (int, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	for i, record := range records {
		if strings.TrimSpace(record.Name) == "" {
			return 0, fmt.Errorf("domain %d: name is required", i)
		}
	}
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO domains (`+domainColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(name) DO UPDATE SET
    title = excluded.title,
    description = excluded.description,
    url = excluded.url,
    dns_check = excluded.dns_check,
    free = excluded.free`)
	if err != nil {
		return 0, fmt.Errorf("prepare import: %w", err)
	}
	defer stmt.Close()

	createdAt := query.FormatTimestamp(s.now())
	for _, record := range records {
		domainID, err := id.NewID()
		if err != nil {
			return 0, fmt.Errorf("generate domain id: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, domainID, strings.TrimSpace(record.Name), record.Title,
			record.Description, record.URL, record.DNSCheck, record.Free, createdAt); err != nil {
			return 0, fmt.Errorf("import domain %q: %w", record.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return len(records), nil
}

// ListCountryCodes returns every known region code in ascending order.
func (s *Store) ListCountryCodes(ctx context.Context) ([]string, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, "SELECT code FROM countries ORDER BY code")
	if err != nil {
		return nil, fmt.Errorf("list countries: %w", err)
	}
	defer rows.Close()
	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("scan country: %w", err)
		}
		codes = append(codes, code)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate countries: %w", err)
	}
	return codes, nil
}

func (s *Store) count(ctx context.Context, table string, plan query.Plan) (int, error) {
	statement := "SELECT COUNT(*) FROM " + table
	if plan.Where != "" {
		statement += " WHERE " + plan.Where
	}
	var total int
	if err := s.sqlDB.QueryRowContext(ctx, statement, plan.Args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return total, nil
}

func selectPage(base string, plan query.Plan) string {
	statement := base
	if plan.Where != "" {
		statement += " WHERE " + plan.Where
	}
	if plan.OrderBy != "" {
		statement += " ORDER BY " + plan.OrderBy
	}
	return statement + " LIMIT ? OFFSET ?"
}

func pageArgs(plan query.Plan) []any {
	args := make([]any, 0, len(plan.Args)+2)
	args = append(args, plan.Args...)
	return append(args, plan.Limit(), plan.Offset())
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (storage.Contact, error) {
	var (
		contact     storage.Contact
		countryCode sql.NullString
		createdAt   string
	)
	if err := row.Scan(&contact.ID, &contact.Email, &contact.Phone, &contact.CityName,
		&contact.Address1, &contact.Address2, &countryCode, &createdAt); err != nil {
		return storage.Contact{}, err
	}
	if countryCode.Valid {
		code := countryCode.String
		contact.CountryCode = &code
	}
	parsed, err := query.ParseTimestamp(createdAt)
	if err != nil {
		return storage.Contact{}, fmt.Errorf("parse contact created_at: %w", err)
	}
	contact.CreatedAt = parsed
	return contact, nil
}

func nullableString(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}

var _ storage.Store = (*Store)(nil)
