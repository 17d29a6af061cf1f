package auth

import "context"

type Role string

const (
	RoleGuest Role = "guest"
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Caller is the authenticated (or anonymous) actor behind a request. It is
// passed explicitly into every service operation; nothing reads it from
// ambient state.
type Caller struct {
	ID   string
	Role Role
}

func Guest() Caller {
	return Caller{Role: RoleGuest}
}

func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}

func (c Caller) IsAuthenticated() bool {
	return c.Role == RoleAdmin || c.Role == RoleUser
}

func (c Caller) IsGuest() bool {
	return !c.IsAuthenticated()
}

type callerKeyType struct{}

var callerKey callerKeyType

func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey, c)
}

// CallerFrom returns the request's caller, defaulting to guest.
func CallerFrom(ctx context.Context) Caller {
	if c, ok := ctx.Value(callerKey).(Caller); ok {
		return c
	}
	return Guest()
}
