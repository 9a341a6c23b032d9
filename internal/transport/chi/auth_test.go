package chi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func authProtected(t *testing.T, apiKeys []string) *httptest.Server {
	t.Helper()
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	ts := httptest.NewServer(BearerAuthMiddleware(apiKeys)(ok))
	t.Cleanup(ts.Close)
	return ts
}

func doGet(t *testing.T, url, authorization string) int {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	_ = resp.Body.Close()
	return resp.StatusCode
}

func TestBearerAuthValidKey(t *testing.T) {
	ts := authProtected(t, []string{"key-1", "key-2"})
	if status := doGet(t, ts.URL+"/api/v1/investigators", "Bearer key-2"); status != http.StatusOK {
		t.Errorf("status = %d, want 200", status)
	}
}

func TestBearerAuthRejections(t *testing.T) {
	ts := authProtected(t, []string{"key-1"})

	tests := []struct {
		name          string
		authorization string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic a2V5LTE="},
		{"unknown key", "Bearer nope"},
		{"bare token", "key-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if status := doGet(t, ts.URL+"/api/v1/investigators", tt.authorization); status != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", status)
			}
		})
	}
}

func TestBearerAuthDisabledWhenNoKeys(t *testing.T) {
	ts := authProtected(t, nil)
	if status := doGet(t, ts.URL+"/api/v1/investigators", ""); status != http.StatusOK {
		t.Errorf("status = %d, want 200 with auth disabled", status)
	}
}

func TestBearerAuthExemptPaths(t *testing.T) {
	ts := authProtected(t, []string{"key-1"})
	for _, path := range []string{"/health", "/metrics"} {
		if status := doGet(t, ts.URL+path, ""); status != http.StatusOK {
			t.Errorf("status for %s = %d, want 200 without credentials", path, status)
		}
	}
}
