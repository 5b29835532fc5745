package domain

import "context"

// ID is used across domain entities.
type ID int64

// Roles dispatched by the login collaborator.
const (
	RoleTravelAgent   = "travel_agent_role"
	RoleCompany       = "transportation_company_role"
	RoleBoardingAgent = "boarding_agent_role"
)

// Session carries the acting user resolved by the session collaborator.
type Session struct {
	UserID    ID     `json:"userId"`
	CompanyID ID     `json:"companyId"`
	Role      string `json:"role"`
}

// Valid reports whether both identifiers needed to own a booking are present.
func (s Session) Valid() bool {
	return s.UserID > 0 && s.CompanyID > 0
}

type sessionKey struct{}

// WithSession stores s on ctx.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFromContext returns the session stored by WithSession.
func SessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}

type requestIDKey struct{}

// WithRequestID stores the request id so lower layers can tag log lines.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns "" when no id was stored.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
