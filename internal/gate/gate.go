// Package gate decides, per request path, whether a visitor may see a page
// based on the persisted session carried in the "auth-storage" cookie.
package gate

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// CookieName is the cookie holding the persisted session snapshot.
const CookieName = "auth-storage"

const (
	LoginPath     = "/login"
	RegisterPath  = "/register"
	DashboardPath = "/dashboard"
)

// Action is the outcome of a gate check.
type Action int

const (
	// Allow serves the request.
	Allow Action = iota
	// RedirectDashboard sends an authenticated visitor away from a
	// public-only page.
	RedirectDashboard
	// RedirectLogin sends an anonymous visitor away from a private page.
	RedirectLogin
)

func (a Action) String() string {
	switch a {
	case RedirectDashboard:
		return "redirect " + DashboardPath
	case RedirectLogin:
		return "redirect " + LoginPath
	default:
		return "allow"
	}
}

// Gate evaluates page requests.
type Gate struct {
	// EnforcePrivate redirects anonymous visitors of private paths to the
	// login page.
	EnforcePrivate bool
}

// New returns a gate that protects private paths.
func New() Gate {
	return Gate{EnforcePrivate: true}
}

// IsPublic reports whether path is reachable without a session.
func IsPublic(path string) bool {
	return path == "/" || path == LoginPath || path == RegisterPath
}

// Authenticated reports whether cookie holds a snapshot with
// isAuthenticated set and a non-empty token. Missing or malformed values
// count as anonymous.
func Authenticated(cookie string) bool {
	if cookie == "" {
		return false
	}
	if unescaped, err := url.QueryUnescape(cookie); err == nil {
		cookie = unescaped
	}

	var env struct {
		State *struct {
			Token           string `json:"token"`
			IsAuthenticated bool   `json:"isAuthenticated"`
		} `json:"state"`
	}
	if err := json.Unmarshal([]byte(cookie), &env); err != nil || env.State == nil {
		return false
	}
	return env.State.IsAuthenticated && env.State.Token != ""
}

// Evaluate decides what to do with a request for path.
func (g Gate) Evaluate(path, cookie string) Action {
	authed := Authenticated(cookie)
	public := IsPublic(path)

	switch {
	case public && authed && path != "/":
		return RedirectDashboard
	case !public && !authed && g.EnforcePrivate:
		return RedirectLogin
	default:
		return Allow
	}
}

// Middleware applies the gate to every request except API routes.
func (g Gate) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if path == "/api" || strings.HasPrefix(path, "/api/") || path == "/favicon.ico" {
			c.Next()
			return
		}

		cookie, _ := c.Cookie(CookieName)
		switch g.Evaluate(path, cookie) {
		case RedirectDashboard:
			c.Redirect(http.StatusTemporaryRedirect, DashboardPath)
			c.Abort()
		case RedirectLogin:
			c.Redirect(http.StatusTemporaryRedirect, LoginPath)
			c.Abort()
		default:
			c.Next()
		}
	}
}
