package internal

import (
	"context"
	"time"
)

type ctxKey string

const ContextAccountKey ctxKey = "accountID"

// AccountIDFromContext returns the authenticated account id, or 0 when absent.
func AccountIDFromContext(ctx context.Context) int64 {
	if ctx == nil {
		return 0
	}
	if accountID, ok := ctx.Value(ContextAccountKey).(int64); ok {
		return accountID
	}
	return 0
}

func ContextWithAccountID(ctx context.Context, accountID int64) context.Context {
	return context.WithValue(ctx, ContextAccountKey, accountID)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
