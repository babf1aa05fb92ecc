package moduleloader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/louisbranch/backoffice/internal/platform/logging"
)

type deps struct {
	greeting string
}

func textModule(id string) Module {
	return NewModule(id, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("module " + id))
	}))
}

func serve(r *Registry[deps], name string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/m/"+name+"/content", nil)
	rec := httptest.NewRecorder()
	r.ServeModule(rec, req, name)
	return rec
}

func fallback(w http.ResponseWriter, _ *http.Request, kind Kind) {
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte("fallback " + string(kind)))
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		name string
		want Kind
		ok   bool
	}{
		{name: "contacts", want: Contacts, ok: true},
		{name: " Domains ", want: Domains, ok: true},
		{name: "orders"},
		{name: ""},
	}
	for _, tc := range tests {
		got, ok := ParseKind(tc.name)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ParseKind(%q) = %q, %v; want %q, %v", tc.name, got, ok, tc.want, tc.ok)
		}
	}
}

func TestServeModuleMountsOneModule(t *testing.T) {
	var contactsCalls, domainsCalls atomic.Int32
	r := New(deps{greeting: "hi"}, map[Kind]Loader[deps]{
		Contacts: func(_ context.Context, d deps) (Module, error) {
			contactsCalls.Add(1)
			return textModule("contacts " + d.greeting), nil
		},
		Domains: func(context.Context, deps) (Module, error) {
			domainsCalls.Add(1)
			return textModule("domains"), nil
		},
	}, WithLogger(logging.Discard()))

	rec := serve(r, "contacts")
	if rec.Code != http.StatusOK || rec.Body.String() != "module contacts hi" {
		t.Fatalf("response = %d %q", rec.Code, rec.Body.String())
	}
	if contactsCalls.Load() != 1 || domainsCalls.Load() != 0 {
		t.Fatalf("loader calls = %d/%d, want 1/0", contactsCalls.Load(), domainsCalls.Load())
	}
}

func TestUnknownModuleRendersNothing(t *testing.T) {
	r := New(deps{}, map[Kind]Loader[deps]{
		Contacts: func(context.Context, deps) (Module, error) { return textModule("contacts"), nil },
	}, WithLogger(logging.Discard()))

	for _, name := range []string{"orders", "", "domains"} {
		rec := serve(r, name)
		if rec.Code != http.StatusOK || rec.Body.Len() != 0 {
			t.Fatalf("%q response = %d %q, want empty 200", name, rec.Code, rec.Body.String())
		}
	}
}

func TestLoaderRunsOnce(t *testing.T) {
	var calls atomic.Int32
	gate := make(chan struct{})
	r := New(deps{}, map[Kind]Loader[deps]{
		Domains: func(context.Context, deps) (Module, error) {
			calls.Add(1)
			<-gate
			return textModule("domains"), nil
		},
	}, WithLogger(logging.Discard()))

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Load(context.Background(), Domains); err != nil {
				t.Errorf("Load: %v", err)
			}
		}()
	}
	close(gate)
	wg.Wait()
	if _, err := r.Load(context.Background(), Domains); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("loader calls = %d, want 1", got)
	}
}

func TestLoadErrorRendersFallback(t *testing.T) {
	var calls atomic.Int32
	r := New(deps{}, map[Kind]Loader[deps]{
		Contacts: func(context.Context, deps) (Module, error) {
			calls.Add(1)
			return nil, errors.New("boom")
		},
	}, WithLogger(logging.Discard()), WithFallback(fallback))

	rec := serve(r, "contacts")
	if rec.Code != http.StatusInternalServerError || rec.Body.String() != "fallback contacts" {
		t.Fatalf("response = %d %q", rec.Code, rec.Body.String())
	}
	serve(r, "contacts")
	if got := calls.Load(); got != 2 {
		t.Fatalf("loader calls = %d, want failures not memoized", got)
	}
}

func TestPanicsRenderFallback(t *testing.T) {
	tests := []struct {
		name   string
		loader Loader[deps]
	}{
		{
			name: "loader panic",
			loader: func(context.Context, deps) (Module, error) {
				panic("loader exploded")
			},
		},
		{
			name: "nil module",
			loader: func(context.Context, deps) (Module, error) {
				return nil, nil
			},
		},
		{
			name: "serve panic",
			loader: func(context.Context, deps) (Module, error) {
				return NewModule("contacts", http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
					panic("render exploded")
				})), nil
			},
		},
		{
			name: "nil handler",
			loader: func(context.Context, deps) (Module, error) {
				return NewModule("contacts", nil), nil
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := New(deps{}, map[Kind]Loader[deps]{Contacts: tc.loader}, WithLogger(logging.Discard()), WithFallback(fallback))
			rec := serve(r, "contacts")
			if rec.Code != http.StatusInternalServerError || rec.Body.String() != "fallback contacts" {
				t.Fatalf("response = %d %q", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestLoadPanicIsError(t *testing.T) {
	r := New(deps{}, map[Kind]Loader[deps]{
		Contacts: func(context.Context, deps) (Module, error) { panic("boom") },
	}, WithLogger(logging.Discard()))
	if _, err := r.Load(context.Background(), Contacts); !errors.Is(err, ErrPanic) {
		t.Fatalf("Load error = %v, want ErrPanic", err)
	}
	if _, err := r.Load(context.Background(), Domains); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("Load error = %v, want ErrUnknownKind", err)
	}
}

func TestDefaultFallback(t *testing.T) {
	r := New(deps{}, map[Kind]Loader[deps]{
		Contacts: func(context.Context, deps) (Module, error) { return nil, errors.New("down") },
	}, WithLogger(logging.Discard()))
	rec := serve(r, "contacts")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}
