package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                              "/",
		"/metrics":                      "/metrics",
		"/api/v1/auth/login":            "/api/v1/auth/login",
		"/api/v1/claims/01H0abc":        "/api/v1/claims/:id",
		"/api/v1/claims/01H0abc/status": "/api/v1/claims/:id/status",
		"/api/v1/claims/a/b/c":          "/api/v1/claims/a/b/c",
		"/api/v1/claims/01H0abc?x=1":    "/api/v1/claims/:id",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}
