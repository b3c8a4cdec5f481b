package models

// SessionState says whether the current user is known yet, and if so
// whether anyone is signed in.
type SessionState int

const (
	// Unresolved: the startup identity check has not landed yet.
	Unresolved SessionState = iota
	Authenticated
	Anonymous
)

func (s SessionState) String() string {
	switch s {
	case Unresolved:
		return "unresolved"
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}
