package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/medtrack-api/internal/application/dto"
	"github.com/jhoicas/medtrack-api/internal/application/ports"
	"github.com/jhoicas/medtrack-api/internal/domain"
	"github.com/jhoicas/medtrack-api/internal/domain/entity"
	"github.com/jhoicas/medtrack-api/internal/domain/repository"
	"github.com/jhoicas/medtrack-api/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

// Vigencias de los artefactos de auth.
const (
	otpTTL          = 10 * time.Minute
	resetTokenTTL   = 15 // minutos
	sessionTokenTTL = 24 * 60
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret string
	Issuer string
}

// UseCase casos de uso de autenticación: registro con OTP, login y
// restablecimiento de password. Los correos salen por el Notifier inyectado.
type UseCase struct {
	userRepo     repository.UserRepository
	otpRepo      repository.OtpRepository
	notifier     ports.Notifier
	jwtCfg       JWTConfig
	resetBaseURL string
}

// NewUseCase construye el caso de uso de auth. resetBaseURL es el prefijo del
// enlace de restablecimiento que se envía por correo (frontend).
func NewUseCase(
	userRepo repository.UserRepository,
	otpRepo repository.OtpRepository,
	notifier ports.Notifier,
	jwtCfg JWTConfig,
	resetBaseURL string,
) *UseCase {
	return &UseCase{
		userRepo:     userRepo,
		otpRepo:      otpRepo,
		notifier:     notifier,
		jwtCfg:       jwtCfg,
		resetBaseURL: strings.TrimRight(resetBaseURL, "/"),
	}
}

// normalizeEmail aplica la regla de unicidad: minúsculas y sin espacios.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RequestOTP genera un OTP de 6 dígitos, lo persiste (reemplazando los
// anteriores del email) y lo envía por correo. Falla si el email ya está registrado.
func (uc *UseCase) RequestOTP(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return domain.ErrInvalidInput
	}
	existing, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return domain.ErrEmailAlreadyExists
	}

	code, err := randomOTP()
	if err != nil {
		return fmt.Errorf("generar OTP: %w", err)
	}
	now := time.Now()
	otp := &entity.OtpVerification{
		ID:        uuid.New().String(),
		Email:     email,
		OTP:       code,
		ExpiresAt: now.Add(otpTTL),
		CreatedAt: now,
	}
	if err := uc.otpRepo.Replace(ctx, otp); err != nil {
		return err
	}

	body := fmt.Sprintf("<p>Your OTP is <b>%s</b>. It is valid for 10 minutes.</p>", code)
	return uc.notifier.Send(ctx, email, "Your MedTrack Registration OTP", body)
}

// Register verifica el OTP, hashea el password con bcrypt y crea el usuario.
func (uc *UseCase) Register(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	email := normalizeEmail(in.Email)
	if in.Name == "" || email == "" || in.Password == "" || in.OTP == "" {
		return nil, domain.ErrInvalidInput
	}

	record, err := uc.otpRepo.Find(ctx, email, in.OTP)
	if err != nil {
		return nil, err
	}
	if record == nil || record.ExpiresAt.Before(time.Now()) {
		return nil, domain.ErrInvalidOTP
	}

	existing, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         in.Name,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	// OTPs consumidos: limpieza best-effort, el registro ya quedó.
	_ = uc.otpRepo.DeleteByEmail(ctx, email)

	return toUserResponse(user), nil
}

// Login verifica email/password, genera JWT (1 día) y retorna token + usuario.
func (uc *UseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Email, uc.jwtCfg.Issuer, sessionTokenTTL)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{Token: token, User: *toUserResponse(user)}, nil
}

// ForgotPassword envía por correo un enlace de restablecimiento con un token
// de 15 minutos.
func (uc *UseCase) ForgotPassword(ctx context.Context, email string) error {
	user, err := uc.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Email, uc.jwtCfg.Issuer, resetTokenTTL)
	if err != nil {
		return err
	}
	resetLink := fmt.Sprintf("%s/reset-password/%s", uc.resetBaseURL, token)
	body := fmt.Sprintf(
		"<p>Hi %s,</p>"+
			"<p>You requested a password reset. Click the link below to reset your password:</p>"+
			`<a href="%s" target="_blank">%s</a>`+
			"<p>This link will expire in 15 minutes.</p>"+
			"<p>Regards,<br/>MedTrack Team</p>",
		user.Name, resetLink, resetLink,
	)
	return uc.notifier.Send(ctx, user.Email, "Reset Your MedTrack Password", body)
}

// ResetPassword valida el token del enlace y actualiza el password.
func (uc *UseCase) ResetPassword(ctx context.Context, token, password string) error {
	if strings.TrimSpace(password) == "" {
		return domain.ErrInvalidInput
	}
	userID, _, err := jwt.Parse(uc.jwtCfg.Secret, token)
	if err != nil {
		return domain.ErrUnauthorized
	}
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return uc.userRepo.UpdatePassword(ctx, user.ID, string(hash))
}

// Me devuelve el perfil del usuario autenticado.
func (uc *UseCase) Me(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return toUserResponse(user), nil
}

// randomOTP genera un código de 6 dígitos con crypto/rand.
func randomOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
}
