package users

import "time"

type Role string

const (
	RoleStaff   Role = "staff"
	RoleManager Role = "manager"
)

type User struct {
	ID        int64
	Username  string
	FullName  string
	Role      Role
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CanApprove — утверждать планы может только менеджер.
func (u *User) CanApprove() bool {
	return u != nil && u.Active && u.Role == RoleManager
}
