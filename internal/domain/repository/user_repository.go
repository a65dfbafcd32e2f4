package repository

import (
	"context"

	"github.com/jhoicas/medtrack-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
// List devuelve todos los usuarios: lo consume el job de alertas de vencimiento,
// que recorre el inventario completo una vez al día.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	List(ctx context.Context) ([]*entity.User, error)
}
