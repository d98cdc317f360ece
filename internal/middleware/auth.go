package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/vendorlens/diligence-api/internal/audit"
	apperrors "github.com/vendorlens/diligence-api/internal/errors"
	"github.com/vendorlens/diligence-api/internal/token"
)

type contextKey string

const UsernameContextKey contextKey = "username"

// RefreshTokenHeader carries the long-lived token used to renew an expired
// access token without re-login.
const RefreshTokenHeader = "Refresh-Token"

func GetUsername(ctx context.Context) string {
	if username, ok := ctx.Value(UsernameContextKey).(string); ok {
		return username
	}
	return ""
}

// AuthMiddleware is a stateless verify-or-renew gate. It never touches the
// credential store; renewal state travels inside the refresh token itself.
type AuthMiddleware struct {
	issuer *token.Issuer
}

func NewAuthMiddleware(issuer *token.Issuer) *AuthMiddleware {
	return &AuthMiddleware{issuer: issuer}
}

func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := extractBearer(r)
		if raw == "" {
			writeError(w, apperrors.TokenMissing())
			return
		}

		claims, err := m.issuer.Verify(raw)
		switch {
		case err == nil:
			// Refresh tokens must never authorize a protected call directly.
			if claims.Kind != token.KindAccess {
				writeError(w, apperrors.TokenInvalid("Invalid token type"))
				return
			}
			next.ServeHTTP(w, r.WithContext(withUsername(r.Context(), claims.Username)))

		case errors.Is(err, token.ErrExpired):
			m.renew(w, r, next)

		default:
			audit.LogFromRequest(r, audit.Event{Type: audit.EventAuthFailure})
			writeError(w, apperrors.TokenInvalid("Invalid token"))
		}
	})
}

// renew handles the expired-renewable state: verify the refresh token, mint a
// fresh pair, execute the wrapped call and attach the pair to its response.
func (m *AuthMiddleware) renew(w http.ResponseWriter, r *http.Request, next http.Handler) {
	refresh := r.Header.Get(RefreshTokenHeader)
	if refresh == "" {
		writeError(w, apperrors.AccessTokenExpired())
		return
	}

	claims, err := m.issuer.Verify(refresh)
	if errors.Is(err, token.ErrExpired) {
		writeError(w, apperrors.RefreshTokenExpired())
		return
	}
	if err != nil {
		audit.LogFromRequest(r, audit.Event{Type: audit.EventAuthFailure})
		writeError(w, apperrors.RefreshTokenInvalid("Invalid refresh token"))
		return
	}
	if claims.Kind != token.KindRefresh {
		writeError(w, apperrors.RefreshTokenInvalid("Invalid refresh token type"))
		return
	}

	pair, err := m.issuer.IssuePair(claims.Username)
	if err != nil {
		log.Error().Err(err).Msg("auth middleware: failed to issue token pair")
		writeError(w, apperrors.Internal("Failed to renew tokens"))
		return
	}

	audit.LogFromRequest(r, audit.Event{Type: audit.EventTokenRefresh, Username: claims.Username})

	rec := &responseBuffer{header: make(http.Header)}
	next.ServeHTTP(rec, r.WithContext(withUsername(r.Context(), claims.Username)))
	rec.flush(w, pair)
}

func withUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, UsernameContextKey, username)
}

func extractBearer(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// responseBuffer captures the wrapped handler's response so the renewed token
// pair can be merged into its JSON body before anything reaches the client.
type responseBuffer struct {
	header http.Header
	body   bytes.Buffer
	status int
}

func (b *responseBuffer) Header() http.Header {
	return b.header
}

func (b *responseBuffer) WriteHeader(status int) {
	if b.status == 0 {
		b.status = status
	}
}

func (b *responseBuffer) Write(p []byte) (int, error) {
	if b.status == 0 {
		b.status = http.StatusOK
	}
	return b.body.Write(p)
}

func (b *responseBuffer) flush(w http.ResponseWriter, pair *token.Pair) {
	status := b.status
	if status == 0 {
		status = http.StatusOK
	}

	var payload map[string]any
	if err := json.Unmarshal(b.body.Bytes(), &payload); err != nil {
		// Non-object body: pass through untouched rather than lose the response.
		for k, v := range b.header {
			w.Header()[k] = v
		}
		w.WriteHeader(status)
		w.Write(b.body.Bytes())
		return
	}

	payload["new_tokens"] = pair
	writeJSON(w, status, payload)
}
