package entity

import "time"

// Status describes whether the vault can be used yet.
type Status struct {
	SetupCompleted    bool
	EncryptionEnabled bool
}

// Session is a freshly issued session token.
type Session struct {
	Token     string
	Reason    string
	ExpiresAt time.Time
}

// EventType names a published security event.
type EventType string

const (
	EventSetupCompleted EventType = "auth.setup.completed"
	EventLoginSucceeded EventType = "auth.login.succeeded"
	EventLoginFailed    EventType = "auth.login.failed"
	// EventLoginLocked is published once, by the failed attempt that
	// exhausts the login budget.
	EventLoginLocked EventType = "auth.login.locked"
)

func (e EventType) String() string {
	return string(e)
}

// SecurityEvent is what the auth module reports to the message broker.
type SecurityEvent struct {
	Type       EventType
	Client     string
	OccurredAt time.Time
	Remaining  int
	RetryAfter int
}
