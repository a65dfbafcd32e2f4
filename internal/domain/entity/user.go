package entity

import "time"

// User representa un usuario registrado, dueño de su propio inventario de medicinas.
// El email es único (case-insensitive) y es la dirección de entrega de las alertas.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
