package session

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
)

// computeHint looks for a cached identity snapshot or a live-looking session
// cookie. Read errors count as no evidence.
func (s *Store) computeHint(ctx context.Context) bool {
	id, err := s.cache.LoadIdentity(ctx)
	if err != nil {
		s.log.Warn(ctx, "could not read identity snapshot", "error", err)
	}
	if id != nil {
		return true
	}

	value, ok, err := s.cache.SessionCookie(ctx, s.cookieName)
	if err != nil {
		s.log.Warn(ctx, "could not read persisted cookies", "error", err)
		return false
	}
	return ok && !s.expiredToken(value)
}

// expiredToken reports whether value is a JWT whose exp has passed. The
// signature is not checked: the server decides validity, this only spares a
// loading screen for a cookie that is certainly dead.
func (s *Store) expiredToken(value string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(value, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !s.now().Before(exp.Time)
}
