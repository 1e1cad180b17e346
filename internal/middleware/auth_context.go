package middleware

import (
	"context"
	"net/http"
	"strings"

	"mediation-cms/internal/access"
	"mediation-cms/internal/ports/auth"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// TokenCookie es la cookie que setea el login del dashboard.
const TokenCookie = "token"

// AuthContext:
// - Si verifier != nil => toma Bearer token (o cookie "token"), Verify() y setea claims.
// - Si verifier == nil => modo dev: X-Debug-User-ID / X-Debug-User-Role.
// - Sin claims el request sigue como anónimo; cada servicio decide vía access.Policy.
func AuthContext(verifier auth.AuthVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil {
				if uid := strings.TrimSpace(r.Header.Get("X-Debug-User-ID")); uid != "" {
					claims := auth.Claims{
						UserID: uid,
						Role:   strings.TrimSpace(r.Header.Get("X-Debug-User-Role")),
					}
					next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
					return
				}

				next.ServeHTTP(w, r)
				return
			}

			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				if c, err := r.Cookie(TokenCookie); err == nil {
					token = strings.TrimSpace(c.Value)
				}
			}
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := verifier.Verify(r.Context(), token)
			if err != nil {
				// Token inválido = anónimo. El servicio decide 401/403/404.
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func WithClaims(ctx context.Context, c auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

func GetClaims(ctx context.Context) (auth.Claims, bool) {
	v := ctx.Value(claimsKey)
	if v == nil {
		return auth.Claims{}, false
	}
	c, ok := v.(auth.Claims)
	return c, ok
}

// RequesterFrom arma el access.Requester que los handlers pasan a los servicios.
// Un rol desconocido deja al usuario autenticado pero sin privilegios de rol.
func RequesterFrom(ctx context.Context) access.Requester {
	c, ok := GetClaims(ctx)
	if !ok || strings.TrimSpace(c.UserID) == "" {
		return access.Anonymous()
	}
	role, _ := access.ParseRole(c.Role)
	return access.Requester{UserID: strings.TrimSpace(c.UserID), Role: role}
}

func bearerToken(authHeader string) string {
	if strings.TrimSpace(authHeader) == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
