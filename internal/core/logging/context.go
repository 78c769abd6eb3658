package logging

import "context"

type contextKey string

const (
	ticketKey    contextKey = "ticket"
	operationKey contextKey = "op"
)

// WithTicket adds a ticket name to the context.
func WithTicket(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, ticketKey, name)
}

// WithOperation adds a lifecycle operation name (create, pause, ...) to the context.
func WithOperation(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, operationKey, op)
}

// GetTicket retrieves the ticket name from the context.
// Returns empty string if not present.
func GetTicket(ctx context.Context) string {
	if name, ok := ctx.Value(ticketKey).(string); ok {
		return name
	}
	return ""
}

// GetOperation retrieves the operation name from the context.
// Returns empty string if not present.
func GetOperation(ctx context.Context) string {
	if op, ok := ctx.Value(operationKey).(string); ok {
		return op
	}
	return ""
}
