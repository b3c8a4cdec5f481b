// Package models defines the client-side data shapes exchanged with the
// social API and persisted in the local store.
package models

import "time"

// Identity is the signed-in user as reported by the API. The client never
// edits it in place; a fresh fetch or login response replaces it wholesale.
type Identity struct {
	ID        string    `json:"_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Bio       string    `json:"bio,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Posts     []Post    `json:"posts,omitempty"`
}

// Clone returns a deep copy so callers cannot mutate a store's identity.
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	c := *i
	if i.Posts != nil {
		c.Posts = make([]Post, len(i.Posts))
		for n := range i.Posts {
			c.Posts[n] = i.Posts[n].Clone()
		}
	}
	return &c
}
