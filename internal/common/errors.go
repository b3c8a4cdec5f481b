// Package common holds small helpers shared by client layers: turning errors
// into user-facing text and scrubbing secrets from memory.
package common

import "errors"

// UserMessager is implemented by errors that carry text safe to show a user,
// such as an API rejection message or a validation hint.
type UserMessager interface {
	UserMessage() string
}

// UserMessage returns the user-facing text carried anywhere in err's chain,
// or fallback when nothing in the chain provides one.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var um UserMessager
	if errors.As(err, &um) {
		if msg := um.UserMessage(); msg != "" {
			return msg
		}
	}
	return fallback
}
