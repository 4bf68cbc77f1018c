package entity

import "time"

// Roles válidos para User.
const (
	RoleSuperusuario   = "superusuario"   // gestiona períodos y ve actas de todos los CESFAM
	RoleAdministrativo = "administrativo" // acotado a sus propias actas
)

// User representa un funcionario que ingresa actas; pertenece a un CESFAM.
type User struct {
	ID           string
	Username     string
	PasswordHash string // bcrypt hash
	Email        string
	Cesfam       string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ValidRole informa si role es uno de los roles conocidos.
func ValidRole(role string) bool {
	return role == RoleSuperusuario || role == RoleAdministrativo
}
