package domain

import "time"

// UserRole papel do usuário no painel administrativo
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
	RoleSuper UserRole = "super" // super administrador
)

// User representa um usuário do painel administrativo
type User struct {
	ID           string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email        string     `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Username     string     `json:"username,omitempty" gorm:"type:varchar(100)"`
	PasswordHash string     `json:"-" gorm:"type:varchar(255)"` // não retornado ao frontend
	Role         UserRole   `json:"role" gorm:"type:varchar(20);default:'user';index"`
	IsActive     bool       `json:"isActive" gorm:"default:true"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
}

// IsAdmin indica se o usuário possui privilégios administrativos
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuper
}

// IsSuper indica se o usuário é super administrador
func (u *User) IsSuper() bool {
	return u.Role == RoleSuper
}
