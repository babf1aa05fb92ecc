package shell

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakeService struct {
	lastCall   string
	lastModule string
}

func (f *fakeService) HandleRoot(http.ResponseWriter, *http.Request) {
	f.lastCall = "root"
}

func (f *fakeService) HandleModuleShell(_ http.ResponseWriter, _ *http.Request, module string) {
	f.lastCall = "module_shell"
	f.lastModule = module
}

func (f *fakeService) HandleModuleContent(_ http.ResponseWriter, _ *http.Request, module string) {
	f.lastCall = "module_content"
	f.lastModule = module
}

func TestRegisterRoutes(t *testing.T) {
	t.Parallel()

	svc := &fakeService{}
	mux := http.NewServeMux()
	RegisterRoutes(mux, svc)

	tests := []struct {
		path       string
		wantCode   int
		wantCall   string
		wantModule string
	}{
		{path: "/", wantCode: http.StatusOK, wantCall: "root"},
		{path: "/m/contacts", wantCode: http.StatusOK, wantCall: "module_shell", wantModule: "contacts"},
		{path: "/m/orders/content", wantCode: http.StatusOK, wantCall: "module_content", wantModule: "orders"},
		{path: "/unknown", wantCode: http.StatusNotFound},
		{path: "/m/contacts/content/extra", wantCode: http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			svc.lastCall = ""
			svc.lastModule = ""
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != tc.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantCode)
			}
			if svc.lastCall != tc.wantCall {
				t.Fatalf("lastCall = %q, want %q", svc.lastCall, tc.wantCall)
			}
			if svc.lastModule != tc.wantModule {
				t.Fatalf("lastModule = %q, want %q", svc.lastModule, tc.wantModule)
			}
		})
	}
}
