// Package restclient is the typed client the console uses to reach the
// records API.
package restclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"resty.dev/v3"

	"github.com/louisbranch/backoffice/internal/platform/timeouts"
)

const tracerName = "github.com/louisbranch/backoffice/internal/services/backoffice/integration/restclient"

var (
	// ErrNotFound reports a 404 from the records API.
	ErrNotFound = errors.New("record not found")
	// ErrUnavailable reports a transport failure or a 5xx from the records API.
	ErrUnavailable = errors.New("records API unavailable")
)

// APIError carries a non-2xx records API response.
type APIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		body = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, body)
}

// Is maps status codes onto the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrUnavailable:
		return e.StatusCode >= http.StatusInternalServerError
	default:
		return false
	}
}

// Contact mirrors the records API contact payload.
type Contact struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	Phone       string  `json:"phone,omitempty"`
	CityName    string  `json:"cityName,omitempty"`
	Address1    string  `json:"address1,omitempty"`
	Address2    string  `json:"address2,omitempty"`
	CountryCode *string `json:"countryCode"`
}

// Domain mirrors the records API domain payload.
type Domain struct {
	Name        string    `json:"name"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	DNSCheck    bool      `json:"dnsCheck"`
	Free        bool      `json:"free"`
	CreatedAt   time.Time `json:"createdAt"`
}

// DomainImport is one record of an import batch.
type DomainImport struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	DNSCheck    bool   `json:"dnsCheck"`
	Free        bool   `json:"free"`
}

// Page is one page of list results.
type Page[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// ExportLink is the download target for an export.
type ExportLink struct {
	URL string `json:"url"`
}

type importResult struct {
	Imported int `json:"imported"`
}

// Client calls the records API. It is safe for concurrent use.
type Client struct {
	http   *resty.Client
	tracer trace.Tracer
}

// New builds a client for baseURL. Each call is bounded by timeout; zero uses
// timeouts.Request.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("records base URL is required")
	}
	if timeout <= 0 {
		timeout = timeouts.Request
	}
	hc := &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	rc := resty.NewWithClient(hc).
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Client{http: rc, tracer: otel.Tracer(tracerName)}, nil
}

// Close releases idle connections held by the client.
func (c *Client) Close() error {
	if c == nil || c.http == nil {
		return nil
	}
	return c.http.Close()
}

func (c *Client) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return c.tracer.Start(ctx, "records."+op, trace.WithSpanKind(trace.SpanKindClient), trace.WithAttributes(attrs...))
}

// do sends req and classifies the outcome. Transport errors wrap ErrUnavailable.
func do(span trace.Span, op string, send func() (*resty.Response, error)) error {
	resp, err := send()
	if err != nil {
		err = fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode()))
	if resp.IsError() {
		apiErr := &APIError{Op: op, StatusCode: resp.StatusCode(), Body: resp.String()}
		span.SetStatus(codes.Error, apiErr.Error())
		return apiErr
	}
	return nil
}

// ContactsDetail loads one contact.
func (c *Client) ContactsDetail(ctx context.Context, id string) (Contact, error) {
	ctx, span := c.start(ctx, "ContactsDetail", attribute.String("contact.id", id))
	defer span.End()

	var out Contact
	err := do(span, "contacts detail", func() (*resty.Response, error) {
		return c.http.R().SetContext(ctx).SetPathParam("id", id).SetResult(&out).Get("/api/contacts/{id}")
	})
	return out, err
}

// ContactsDelete deletes one contact.
func (c *Client) ContactsDelete(ctx context.Context, id string) error {
	ctx, span := c.start(ctx, "ContactsDelete", attribute.String("contact.id", id))
	defer span.End()

	return do(span, "contacts delete", func() (*resty.Response, error) {
		return c.http.R().SetContext(ctx).SetPathParam("id", id).Delete("/api/contacts/{id}")
	})
}

// ContactsList loads one page of contacts for a grid query string.
func (c *Client) ContactsList(ctx context.Context, query string) (Page[Contact], error) {
	ctx, span := c.start(ctx, "ContactsList", attribute.String("grid.query", query))
	defer span.End()

	var out Page[Contact]
	err := do(span, "contacts list", func() (*resty.Response, error) {
		return c.http.R().SetContext(ctx).SetQueryParam("query", query).SetResult(&out).Get("/api/contacts")
	})
	return out, err
}

// DomainsList loads one page of domains for a grid query string.
func (c *Client) DomainsList(ctx context.Context, query string) (Page[Domain], error) {
	ctx, span := c.start(ctx, "DomainsList", attribute.String("grid.query", query))
	defer span.End()

	var out Page[Domain]
	err := do(span, "domains list", func() (*resty.Response, error) {
		return c.http.R().SetContext(ctx).SetQueryParam("query", query).SetResult(&out).Get("/api/domains")
	})
	return out, err
}

// DomainsExportList resolves the download link for a grid query string.
func (c *Client) DomainsExportList(ctx context.Context, query string) (ExportLink, error) {
	ctx, span := c.start(ctx, "DomainsExportList", attribute.String("grid.query", query))
	defer span.End()

	var out ExportLink
	err := do(span, "domains export", func() (*resty.Response, error) {
		return c.http.R().SetContext(ctx).SetQueryParam("query", query).SetResult(&out).Get("/api/domains/export")
	})
	return out, err
}

// DomainsImportCreate sends an import batch and returns how many records the
// API stored.
func (c *Client) DomainsImportCreate(ctx context.Context, records []DomainImport) (int, error) {
	ctx, span := c.start(ctx, "DomainsImportCreate", attribute.Int("import.count", len(records)))
	defer span.End()

	if records == nil {
		records = []DomainImport{}
	}
	var out importResult
	err := do(span, "domains import", func() (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(records).
			SetResult(&out).
			Post("/api/domains/import")
	})
	return out.Imported, err
}

// CountriesList loads the country code to display name mapping, localized
// for lang when the API supports it.
func (c *Client) CountriesList(ctx context.Context, lang string) (map[string]string, error) {
	ctx, span := c.start(ctx, "CountriesList", attribute.String("lang", lang))
	defer span.End()

	out := map[string]string{}
	err := do(span, "countries list", func() (*resty.Response, error) {
		req := c.http.R().SetContext(ctx).SetResult(&out)
		if lang = strings.TrimSpace(lang); lang != "" {
			req.SetQueryParam("lang", lang)
		}
		return req.Get("/api/countries")
	})
	return out, err
}
