package auth

import "errors"

// RBAC роли
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Permissions список разрешений
var Permissions = map[string][]string{
	RoleAdmin: {
		"users:read",
		"users:write",
		"applications:read",
		"applications:decide",
		"subscriptions:decide",
		"catalog:write",
		"system:admin",
	},
	RoleUser: {
		"users:read:self",
		"users:write:self",
		"applications:read:self",
		"applications:write:self",
		"subscriptions:request:self",
	},
}

// HasPermission проверяет есть ли у роли указанное разрешение
func HasPermission(role, permission string) bool {
	permissions, exists := Permissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// IsAdmin проверяет является ли пользователь администратором
func IsAdmin(claims *Claims) bool {
	return claims.Role == RoleAdmin
}

// ValidateRole проверяет валидность роли
func ValidateRole(role string) error {
	switch role {
	case RoleAdmin, RoleUser:
		return nil
	default:
		return errors.New("invalid role")
	}
}
