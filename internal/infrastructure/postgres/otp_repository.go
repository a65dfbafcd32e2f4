package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/medtrack-api/internal/domain/entity"
	"github.com/jhoicas/medtrack-api/internal/domain/repository"
)

var _ repository.OtpRepository = (*OtpRepo)(nil)

// OtpRepo implementación del puerto OtpRepository sobre PostgreSQL.
type OtpRepo struct {
	q Querier
}

// NewOtpRepository construye el adaptador de persistencia para OTPs de registro.
func NewOtpRepository(q Querier) *OtpRepo {
	return &OtpRepo{q: q}
}

// Replace elimina los OTP anteriores del email e inserta el nuevo.
func (r *OtpRepo) Replace(ctx context.Context, otp *entity.OtpVerification) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM otp_verifications WHERE email = $1`, otp.Email); err != nil {
		return fmt.Errorf("delete old otps: %w", err)
	}
	query := `
		INSERT INTO otp_verifications (id, email, otp, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.q.Exec(ctx, query, otp.ID, otp.Email, otp.OTP, otp.ExpiresAt, otp.CreatedAt); err != nil {
		return fmt.Errorf("insert otp: %w", err)
	}
	return nil
}

// Find busca un OTP por email y código. Devuelve (nil, nil) si no existe.
func (r *OtpRepo) Find(ctx context.Context, email, code string) (*entity.OtpVerification, error) {
	query := `
		SELECT id, email, otp, expires_at, created_at
		FROM otp_verifications WHERE email = $1 AND otp = $2`
	var o entity.OtpVerification
	err := r.q.QueryRow(ctx, query, email, code).Scan(&o.ID, &o.Email, &o.OTP, &o.ExpiresAt, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find otp: %w", err)
	}
	return &o, nil
}

// DeleteByEmail elimina todos los OTP de un email (limpieza tras registro).
func (r *OtpRepo) DeleteByEmail(ctx context.Context, email string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM otp_verifications WHERE email = $1`, email); err != nil {
		return fmt.Errorf("delete otps: %w", err)
	}
	return nil
}
