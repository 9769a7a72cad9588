package audit

import (
	"context"
	"time"

	"github.com/dropDatabas3/turnero/internal/observability/logger"
)

// Log writes a structured audit event. In the future this can be wired to DB or external sink.
func Log(ctx context.Context, event string, fields map[string]any) {
	if fields == nil {
		fields = map[string]any{}
	}
	fields["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	logger.From(ctx).Info("audit",
		logger.String("event", event),
		logger.Any("details", fields),
	)
}
