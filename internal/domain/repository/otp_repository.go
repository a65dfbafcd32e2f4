package repository

import (
	"context"

	"github.com/jhoicas/medtrack-api/internal/domain/entity"
)

// OtpRepository define el puerto de persistencia para códigos OTP de registro.
type OtpRepository interface {
	// Replace elimina los OTP anteriores del email e inserta el nuevo.
	Replace(ctx context.Context, otp *entity.OtpVerification) error
	Find(ctx context.Context, email, code string) (*entity.OtpVerification, error)
	DeleteByEmail(ctx context.Context, email string) error
}
