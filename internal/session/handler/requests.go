package handler

import (
	"strings"

	"checklist/internal/upstream"
	dErrors "checklist/pkg/domain-errors"
	"checklist/pkg/validation"
)

// Every auth request names the tenant it targets.

type LoginRequest struct {
	ClientID string `json:"clientId" validate:"required,max=100,tenant"`
	Username string `json:"username" validate:"required,max=255"`
	Password string `json:"password" validate:"required,notblank"`
}

func (r *LoginRequest) Normalize() {
	if r == nil {
		return
	}
	r.ClientID = strings.TrimSpace(r.ClientID)
	r.Username = strings.TrimSpace(r.Username)
}

func (r *LoginRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

func (r *LoginRequest) upstream() upstream.LoginRequest {
	return upstream.LoginRequest{Username: r.Username, Password: r.Password}
}

type RegisterRequest struct {
	ClientID string `json:"clientId" validate:"required,max=100,tenant"`
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Document string `json:"document,omitempty" validate:"omitempty,max=32"`
	Password string `json:"password" validate:"required,notblank"`
}

func (r *RegisterRequest) Normalize() {
	if r == nil {
		return
	}
	r.ClientID = strings.TrimSpace(r.ClientID)
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Document = strings.TrimSpace(r.Document)
}

func (r *RegisterRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

func (r *RegisterRequest) upstream() upstream.RegisterRequest {
	return upstream.RegisterRequest{Name: r.Name, Email: r.Email, Document: r.Document, Password: r.Password}
}

type PasswordResetRequest struct {
	ClientID string `json:"clientId" validate:"required,max=100,tenant"`
	Email    string `json:"email" validate:"required,email,max=255"`
}

func (r *PasswordResetRequest) Normalize() {
	if r == nil {
		return
	}
	r.ClientID = strings.TrimSpace(r.ClientID)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r *PasswordResetRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

type ResetPasswordRequest struct {
	ClientID string `json:"clientId" validate:"required,max=100,tenant"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Code     string `json:"code" validate:"required,max=64"`
	Password string `json:"password" validate:"required,notblank"`
}

func (r *ResetPasswordRequest) Normalize() {
	if r == nil {
		return
	}
	r.ClientID = strings.TrimSpace(r.ClientID)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Code = strings.TrimSpace(r.Code)
}

func (r *ResetPasswordRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}
