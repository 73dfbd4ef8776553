package domain

import "time"

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// Identity is the already-authenticated caller of an operation. The service
// layer never authenticates, it only authorizes against this.
type Identity struct {
	UserID  int64
	IsAdmin bool
}

// Owns reports whether the identity may act on a resource owned by userID.
func (i Identity) Owns(userID int64) bool {
	return i.UserID == userID || i.IsAdmin
}
