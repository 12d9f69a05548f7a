package user

import "time"

// Role — роль пользователя в системе
type Role string

const (
	RoleRider  Role = "rider"
	RoleDriver Role = "driver"
)

// Valid проверяет, что роль из закрытого списка
func (r Role) Valid() bool {
	return r == RoleRider || r == RoleDriver
}

// User — учетная запись. PasswordHash наружу не сериализуется.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity — аутентифицированный вызывающий, то что видит ядро
type Identity struct {
	ID       string
	Username string
	Role     Role
}

// Identity возвращает представление пользователя для бизнес-логики
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Username: u.Username, Role: u.Role}
}

// HasRole проверяет наличие роли
func (i Identity) HasRole(role Role) bool {
	return i.Role == role
}
