package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrInvalidOTP         = errors.New("código OTP inválido o expirado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrNegativeQuantity   = errors.New("la cantidad no puede ser negativa")
)
