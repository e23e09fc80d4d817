package clients

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/butrintmetaj7/shop-client/internal/domain"
)

// TokenSource exposes the in-memory session token. An empty string means no
// token is held.
type TokenSource interface {
	Token() string
}

// RequestID stamps every outgoing request with a fresh X-Request-ID so server
// logs can be correlated with client logs.
func RequestID() Middleware {
	return func(next Doer) Doer {
		return func(req *http.Request) (*http.Response, error) {
			req.Header.Set("X-Request-ID", uuid.NewString())
			return next(req)
		}
	}
}

// DefaultHeaders fills in Content-Type and Accept unless the request already
// carries them.
func DefaultHeaders() Middleware {
	return func(next Doer) Doer {
		return func(req *http.Request) (*http.Response, error) {
			if req.Header.Get("Content-Type") == "" {
				req.Header.Set("Content-Type", "application/json")
			}
			if req.Header.Get("Accept") == "" {
				req.Header.Set("Accept", "application/json")
			}
			return next(req)
		}
	}
}

// BearerAuth attaches the Authorization header. The in-memory session token
// wins; when it is empty the raw persisted token is used instead, covering
// the window before the session has finished restoring itself. With no token
// at all the request is left untouched.
func BearerAuth(tokens TokenSource, store domain.KVStore) Middleware {
	return func(next Doer) Doer {
		return func(req *http.Request) (*http.Response, error) {
			token := ""
			if tokens != nil {
				token = tokens.Token()
			}
			if token == "" && store != nil {
				if stored, ok := store.Get(domain.AuthTokenKey); ok {
					token = stored
				}
			}
			if token != "" {
				req.Header.Set("Authorization", "Bearer "+token)
			}
			return next(req)
		}
	}
}

// Unauthorized invokes hook after any response with HTTP status 401. The
// response itself is passed through unchanged so the caller still sees the
// failure; the hook must therefore be safe to run repeatedly. Transport
// errors carry no response and are not inspected.
func Unauthorized(logger *logrus.Logger, hook func()) Middleware {
	return func(next Doer) Doer {
		return func(req *http.Request) (*http.Response, error) {
			resp, err := next(req)
			if err == nil && resp != nil && resp.StatusCode == http.StatusUnauthorized && hook != nil {
				logger.Warnf("APIClient: %s %s returned 401, clearing session", req.Method, req.URL.Path)
				hook()
			}
			return resp, err
		}
	}
}
