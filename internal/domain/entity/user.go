package entity

import "time"

// Roles válidos para User. Cada etapa del flujo está restringida a un rol:
// revisión documental, caja, asentamiento/entrega y administración.
const (
	RoleAdmin       = "admin"
	RoleRevisor     = "revisor"
	RoleCajero      = "cajero"
	RoleRegistrador = "registrador"
)

// User representa un funcionario de la oficina. Su ID es el actor que queda
// asentado en cada transición de estado y en cada NCF emitido.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string // admin, revisor, cajero, registrador
	Status       string // active, inactive, suspended
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
