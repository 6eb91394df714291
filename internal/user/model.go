package user

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Role      Role      `json:"role"`
	Confirmed bool      `json:"confirmed"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UpdateProfileInput carries the personal-cabinet fields; nil leaves a field as is.
type UpdateProfileInput struct {
	UserID  int64
	Name    *string
	Phone   *string
	Address *string
}

func (in UpdateProfileInput) HasChanges() bool {
	return in.Name != nil || in.Phone != nil || in.Address != nil
}
