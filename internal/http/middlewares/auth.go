package middlewares

import (
	"net/http"
	"strings"

	httperrors "github.com/dropDatabas3/turnero/internal/http/errors"
	jwtx "github.com/dropDatabas3/turnero/internal/jwt"
	"github.com/dropDatabas3/turnero/internal/observability/logger"
)

// RequireAuth valida el token Bearer y deja el tenant autenticado en el
// contexto. Sin token o con token inválido responde 401.
func RequireAuth(issuer *jwtx.Issuer) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				httperrors.WriteError(w, httperrors.ErrTokenMissing)
				return
			}

			tenantID, err := issuer.Parse(raw)
			if err != nil {
				logger.From(r.Context()).Debug("token rejected", logger.Err(err))
				httperrors.WriteError(w, httperrors.ErrTokenInvalid)
				return
			}

			ctx := withTenantID(r.Context(), tenantID)
			// Enriquecer el logger del request con el tenant
			ctx = logger.ToContext(ctx, logger.From(ctx).With(logger.TenantID(tenantID)))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
