package middlewares

import "context"

type ctxKey string

const (
	// ctxTenantIDKey guarda el tenant autenticado (claim sub del token)
	ctxTenantIDKey ctxKey = "tenant_id"
	// ctxRequestIDKey guarda el request ID
	ctxRequestIDKey ctxKey = "request_id"
)

// withTenantID inyecta el tenant autenticado en el contexto (interno)
func withTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, ctxTenantIDKey, tenantID)
}

// setRequestID inyecta el request ID en el contexto (interno)
func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// GetTenantID obtiene el tenant autenticado del contexto.
// Retorna cadena vacía si la ruta no pasó por RequireAuth.
func GetTenantID(ctx context.Context) string {
	if v := ctx.Value(ctxTenantIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetRequestID obtiene el request ID del contexto.
// Retorna cadena vacía si no hay request ID.
func GetRequestID(ctx context.Context) string {
	if v := ctx.Value(ctxRequestIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
