package upstream

import "encoding/json"

// LoginRequest is forwarded to "{tenant}/login".
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is what login and refresh-token return.
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
	UserID       string `json:"userId"`
	Name         string `json:"name,omitempty"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Document string `json:"document,omitempty"`
	Password string `json:"password"`
}

type PasswordResetRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Email    string `json:"email"`
	Code     string `json:"code"`
	Password string `json:"password"`
}

// Vehicle mirrors the backend vehicle document. Plate and LicensePlate carry
// the same value while the backend migrates between the two names.
type Vehicle struct {
	ID           string `json:"id"`
	LicensePlate string `json:"licensePlate"`
	Plate        string `json:"plate"`
	Model        string `json:"model"`
	Brand        string `json:"brand"`
	Year         int    `json:"year"`
	Type         string `json:"type"`
}

// errorBody is the backend's error envelope.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Checklist payloads are relayed verbatim; the gateway does not interpret them.
type Document = json.RawMessage
