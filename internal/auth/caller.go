package auth

import "github.com/anonto42/future-media/backend/internal/apperrors"

// Caller identifies who is invoking a procedure. It is passed explicitly into every
// service call; nothing reads identity from ambient state.
type Caller struct {
	UserID          string
	IsAuthenticated bool
}

// Anonymous is the caller for requests without credentials.
var Anonymous = Caller{}

// UserCaller returns an authenticated caller for userID.
func UserCaller(userID string) Caller {
	return Caller{UserID: userID, IsAuthenticated: true}
}

// Require returns UNAUTHORIZED unless the caller is authenticated.
func (c Caller) Require() error {
	if !c.IsAuthenticated || c.UserID == "" {
		return apperrors.Unauthorized("")
	}
	return nil
}

// Is reports whether the caller is the given user.
func (c Caller) Is(userID string) bool {
	return c.IsAuthenticated && c.UserID == userID
}
