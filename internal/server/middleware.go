package server

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"tailscale.com/client/tailscale/apitype"
)

type contextKey int

const userInfoKey contextKey = iota

// UserInfo is the caller's identity as resolved by the Identity middleware.
// Login doubles as the user id for storage.
type UserInfo struct {
	Login       string `json:"login"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email,omitempty"`
	PhotoURL    string `json:"photo_url,omitempty"`
}

// WhoIser resolves a tailnet peer address to its owner. *local.Client
// satisfies it.
type WhoIser interface {
	WhoIs(ctx context.Context, remoteAddr string) (*apitype.WhoIsResponse, error)
}

// Identity returns middleware that stores the caller's UserInfo in the
// request context. Sources are tried in order: Tailscale WhoIs (when whois
// returns a client), the X-User-* headers of a fronting identity proxy,
// then devUser. Requests that match none carry no identity. whois is
// called per request, so the tailnet client may be attached after routing
// is set up.
func Identity(whois func() WhoIser, devUser string, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var client WhoIser
			if whois != nil {
				client = whois()
			}
			next.ServeHTTP(w, withIdentity(r, client, devUser, log))
		})
	}
}

func withIdentity(r *http.Request, whois WhoIser, devUser string, log *slog.Logger) *http.Request {
	info, ok := resolveIdentity(r, whois, devUser, log)
	if !ok {
		return r
	}
	return r.WithContext(context.WithValue(r.Context(), userInfoKey, info))
}

func resolveIdentity(r *http.Request, whois WhoIser, devUser string, log *slog.Logger) (UserInfo, bool) {
	if whois != nil {
		who, err := whois.WhoIs(r.Context(), r.RemoteAddr)
		if err == nil && who.UserProfile != nil && who.UserProfile.LoginName != "" {
			p := who.UserProfile
			return UserInfo{
				Login:       p.LoginName,
				DisplayName: p.DisplayName,
				Email:       p.LoginName,
				PhotoURL:    p.ProfilePicURL,
			}, true
		}
		if err != nil {
			log.Warn("tailscale whois failed", "remote", r.RemoteAddr, "error", err)
		}
	}

	if uid := strings.TrimSpace(r.Header.Get("X-User-ID")); uid != "" {
		return UserInfo{
			Login:       uid,
			DisplayName: r.Header.Get("X-User-Name"),
			Email:       r.Header.Get("X-User-Email"),
			PhotoURL:    r.Header.Get("X-User-Photo"),
		}, true
	}

	if devUser != "" {
		return UserInfo{Login: devUser, DisplayName: "Local Dev User"}, true
	}
	return UserInfo{}, false
}

// userInfoFromContext returns the identity set by Identity, if any.
func userInfoFromContext(r *http.Request) (UserInfo, bool) {
	info, ok := r.Context().Value(userInfoKey).(UserInfo)
	return info, ok && info.Login != ""
}

// mustUser writes a 401 and returns false when the request has no identity.
func mustUser(w http.ResponseWriter, r *http.Request) (UserInfo, bool) {
	info, ok := userInfoFromContext(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not signed in"})
		return UserInfo{}, false
	}
	return info, true
}

// APIKeyAuth returns middleware that requires apiKey in the X-API-Key
// header or as a bearer token.
func APIKeyAuth(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				key = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			}
			if key == "" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing API key"})
				return
			}
			if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
				writeJSON(w, http.StatusForbidden, map[string]string{"error": "invalid API key"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogging returns middleware that logs each request.
func RequestLogging(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			log.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"duration", time.Since(start).String(),
			)
		})
	}
}

// CORS adds permissive CORS headers for local development.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key, Authorization, X-User-ID, X-User-Email, X-User-Name, X-User-Photo, Mcp-Session-Id")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusWriter wraps ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Flush lets streamed MCP responses through the wrapper.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
