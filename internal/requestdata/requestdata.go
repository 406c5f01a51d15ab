package requestdata

import (
	"context"

	"github.com/google/uuid"
)

type contextKey struct{}

var requestDataKey contextKey

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	val := ctx.Value(requestDataKey)
	if rd, ok := val.(*RequestData); ok {
		return rd
	}
	return nil
}

// RequestData carries the authenticated caller through the request context.
// Privileged callers (staff tokens) may see hidden sets; everyone else is
// limited to public && public_parent.
type RequestData struct {
	TokenString string
	UserID      uuid.UUID
	Privileged  bool
}

// Privileged reports whether the context belongs to a staff caller.
func Privileged(ctx context.Context) bool {
	rd := GetRequestData(ctx)
	return rd != nil && rd.Privileged
}
