package entity

import "time"

// OtpVerification código de un solo uso para verificar el email en el registro.
// Expira a los 10 minutos; al solicitar uno nuevo se invalidan los anteriores.
type OtpVerification struct {
	ID        string
	Email     string
	OTP       string // 6 dígitos
	ExpiresAt time.Time
	CreatedAt time.Time
}
