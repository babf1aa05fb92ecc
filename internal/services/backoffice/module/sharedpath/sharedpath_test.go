package sharedpath

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSplitPathParts(t *testing.T) {
	t.Parallel()

	tests := map[string][]string{
		"":           {},
		"c-1":        {"c-1"},
		"/c-1/":      {"c-1"},
		"c-1/delete": {"c-1", "delete"},
		" a // b ":   {"a", "b"},
	}
	for input, want := range tests {
		if diff := cmp.Diff(want, SplitPathParts(input)); diff != "" {
			t.Fatalf("SplitPathParts(%q) mismatch (-want +got):\n%s", input, diff)
		}
	}
}

func TestRedirectTrailingSlash(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		target   string
		wantOK   bool
		wantCode int
		wantLoc  string
	}{
		{name: "no trailing slash", target: "/contacts", wantCode: http.StatusOK},
		{name: "root", target: "/", wantCode: http.StatusOK},
		{name: "trailing slash", target: "/contacts/c-1/", wantOK: true, wantCode: http.StatusMovedPermanently, wantLoc: "/contacts/c-1"},
		{name: "keeps query", target: "/contacts/c-1/?confirm=delete", wantOK: true, wantCode: http.StatusMovedPermanently, wantLoc: "/contacts/c-1?confirm=delete"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			if got := RedirectTrailingSlash(rec, req); got != tc.wantOK {
				t.Fatalf("RedirectTrailingSlash = %v, want %v", got, tc.wantOK)
			}
			if rec.Code != tc.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantCode)
			}
			if got := rec.Header().Get("Location"); got != tc.wantLoc {
				t.Fatalf("Location = %q, want %q", got, tc.wantLoc)
			}
		})
	}
}
