package models

import (
	"context"
	"time"
)

// Session is one snapshot of the driver's authentication state.
type Session struct {
	IsAuthenticated bool
	// IsLoading is true while the session is being hydrated (refreshed
	// against the backend). Gating decisions wait for it to clear.
	IsLoading       bool
	CurrentClientID *string

	UserID        string
	UpstreamToken string
	ExpiresAt     time.Time
}

func Loading() Session {
	return Session{IsLoading: true}
}

func Unauthenticated() Session {
	return Session{}
}

func Authenticated(clientID, userID, upstreamToken string, expiresAt time.Time) Session {
	return Session{
		IsAuthenticated: true,
		CurrentClientID: &clientID,
		UserID:          userID,
		UpstreamToken:   upstreamToken,
		ExpiresAt:       expiresAt,
	}
}

// ClientID returns the tenant or "" when there is none.
func (s Session) ClientID() string {
	if s.CurrentClientID == nil {
		return ""
	}
	return *s.CurrentClientID
}

type sessionKey struct{}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext returns the session stored by the guard; the zero Session
// (unauthenticated) when absent.
func FromContext(ctx context.Context) Session {
	s, _ := ctx.Value(sessionKey{}).(Session)
	return s
}
