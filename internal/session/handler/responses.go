package handler

import (
	"time"

	"checklist/internal/session/models"
	settingsModels "checklist/internal/settings/models"
	"checklist/internal/transition"
)

type SessionResponse struct {
	Authenticated bool               `json:"authenticated"`
	ClientID      *string            `json:"clientId"`
	UserID        string             `json:"userId,omitempty"`
	ExpiresAt     *time.Time         `json:"expiresAt,omitempty"`
	Offline       bool               `json:"offline"`
	Transition    *transition.Notice `json:"transition"`
}

type LoginViewResponse struct {
	Screen        string  `json:"screen"`
	Authenticated bool    `json:"authenticated"`
	ClientID      *string `json:"clientId"`
}

type DashboardResponse struct {
	Screen string `json:"screen"`
	SessionResponse
	Settings settingsModels.ChecklistSettings `json:"settings"`
}

type LoginResponse struct {
	Authenticated bool      `json:"authenticated"`
	ClientID      string    `json:"clientId"`
	UserID        string    `json:"userId"`
	Name          string    `json:"name,omitempty"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

type AcceptedResponse struct {
	Status string `json:"status"`
}

func toSessionResponse(s models.Session, record transition.Record, offline bool) SessionResponse {
	resp := SessionResponse{
		Authenticated: s.IsAuthenticated,
		ClientID:      s.CurrentClientID,
		UserID:        s.UserID,
		Offline:       offline,
	}
	if !s.ExpiresAt.IsZero() {
		resp.ExpiresAt = &s.ExpiresAt
	}
	if notice, ok := record.Notice(true); ok {
		resp.Transition = &notice
	}
	return resp
}
