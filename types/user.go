package types

import (
	"time"
)

// User is the backend's representation of an account.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Session is the locally persisted identity of the signed-in user. It is the
// backend's user record plus the login code that seeded it. At most one
// Session exists per device; the session manager is its sole writer.
type Session struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FullName  string `json:"full_name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	WxCode    string `json:"wx_code,omitempty"`
}

// SessionFromUser builds a Session from a backend user record.
func SessionFromUser(u User, wxCode string) Session {
	return Session{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		AvatarURL: u.AvatarURL,
		WxCode:    wxCode,
	}
}

// UserCreate is the account-creation payload for POST /users/.
type UserCreate struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"full_name,omitempty"`
	Password string `json:"password"`
	IsActive bool   `json:"is_active"`
}

// UserUpdate is the partial-update payload for PUT /users/{id}. Nil fields
// are omitted so the backend only touches what the caller set.
type UserUpdate struct {
	Email     *string `json:"email,omitempty"`
	Username  *string `json:"username,omitempty"`
	FullName  *string `json:"full_name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	Password  *string `json:"password,omitempty"`
	IsActive  *bool   `json:"is_active,omitempty"`
}

// UserResponse is the backend's single-user envelope: {data, message}.
type UserResponse struct {
	Data    User   `json:"data"`
	Message string `json:"message,omitempty"`
}

// UserListResponse is the backend's paginated listing for GET /users/.
type UserListResponse struct {
	Items []User `json:"items"`
	Total int    `json:"total"`
	Page  int    `json:"page"`
	Size  int    `json:"size"`
	Pages int    `json:"pages"`
}
