// Package auth contiene los DTOs de autenticación de cuentas.
package auth

// SendOTPRequest es el body de POST /api/auth/send-otp.
type SendOTPRequest struct {
	Email string `json:"email"`
}

// SendOTPResponse confirma el envío del código.
type SendOTPResponse struct {
	Message string `json:"message"`
}

// RegisterRequest es el body de POST /api/auth/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	OTP      string `json:"otp"`
}

// LoginRequest es el body de POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse devuelve el access token emitido.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	TenantName  string `json:"tenant_name,omitempty"`
}
