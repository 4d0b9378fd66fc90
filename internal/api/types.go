package api

import (
	"github.com/hackgods/clinidesk/internal/auth"
	"github.com/hackgods/clinidesk/internal/schedule"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	UserID      string        `json:"user_id"`
	UserType    auth.UserType `json:"user_type"`
	HomePath    string        `json:"home_path"`
}

type MeResponse struct {
	UserID   string        `json:"user_id"`
	UserType auth.UserType `json:"user_type"`
	Username string        `json:"username"`
	Email    string        `json:"email"`
	HomePath string        `json:"home_path"`
}

type DashboardResponse struct {
	UserID   string        `json:"user_id"`
	UserType auth.UserType `json:"user_type"`
	HomePath string        `json:"home_path"`
}

type OpenEditorRequest struct {
	ID *schedule.EventID `json:"id,omitempty"`
}

type DeleteResponse struct {
	Removed bool `json:"removed"`
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}
