package gate

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
)

const (
	authedCookie = `{"state":{"user":{"id":"u1"},"token":"tok","isAuthenticated":true},"version":0}`
	noToken      = `{"state":{"user":{"id":"u1"},"isAuthenticated":true},"version":0}`
	loggedOut    = `{"state":{"isAuthenticated":false},"version":0}`
)

func TestAuthenticated(t *testing.T) {
	tests := []struct {
		name   string
		cookie string
		want   bool
	}{
		{"empty", "", false},
		{"garbage", "not json", false},
		{"no state", `{"version":0}`, false},
		{"logged out", loggedOut, false},
		{"missing token", noToken, false},
		{"authenticated", authedCookie, true},
		{"url encoded", url.QueryEscape(authedCookie), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Authenticated(tt.cookie); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		path    string
		cookie  string
		enforce bool
		want    Action
	}{
		{"/", authedCookie, true, Allow},
		{"/", "", true, Allow},
		{"/login", authedCookie, true, RedirectDashboard},
		{"/register", authedCookie, true, RedirectDashboard},
		{"/login", "", true, Allow},
		{"/login", noToken, true, Allow},
		{"/dashboard", authedCookie, true, Allow},
		{"/dashboard", "", true, RedirectLogin},
		{"/dashboard", "{broken", true, RedirectLogin},
		{"/dashboard", "", false, Allow},
	}

	for _, tt := range tests {
		t.Run(tt.path+" "+tt.want.String(), func(t *testing.T) {
			g := Gate{EnforcePrivate: tt.enforce}
			if got := g.Evaluate(tt.path, tt.cookie); got != tt.want {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(New().Middleware())
	ok := func(c *gin.Context) { c.String(http.StatusOK, "ok") }
	router.GET("/login", ok)
	router.GET("/dashboard", ok)
	router.GET("/api/suggestions", ok)

	tests := []struct {
		path         string
		cookie       string
		wantStatus   int
		wantLocation string
	}{
		{"/login", authedCookie, http.StatusTemporaryRedirect, "/dashboard"},
		{"/dashboard", "", http.StatusTemporaryRedirect, "/login"},
		{"/dashboard", authedCookie, http.StatusOK, ""},
		{"/api/suggestions", "", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: CookieName, Value: url.QueryEscape(tt.cookie)})
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if loc := w.Header().Get("Location"); loc != tt.wantLocation {
				t.Errorf("expected location %q, got %q", tt.wantLocation, loc)
			}
		})
	}
}
