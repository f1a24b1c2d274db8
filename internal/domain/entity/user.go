package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin    = "ADMIN"
	RoleManager  = "MANAGER"
	RoleEmployee = "EMPLOYEE"
)

// User representa un usuario del back-office. Login por Username.
type User struct {
	ID           string
	Username     string
	FullName     string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
