package auth

import (
	"context"
	"errors"
)

// Authentication happens upstream (API gateway); by the time a request
// reaches this service the gateway has already verified the token and
// forwards the resolved identity and role in trusted headers.

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	UserIDHeader = "X-Fitsphere-User-ID"
	RoleHeader   = "X-Fitsphere-User-Role"
)

var ErrNoCaller = errors.New("no caller in context")

type Caller struct {
	UserID string
	Role   string
}

func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}

type callerContextKey struct{}

func ContextWithCaller(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, callerContextKey{}, caller)
}

func CallerFromContext(ctx context.Context) (Caller, error) {
	caller, ok := ctx.Value(callerContextKey{}).(Caller)
	if !ok || caller.UserID == "" {
		return Caller{}, ErrNoCaller
	}
	return caller, nil
}
