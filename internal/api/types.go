package api

import "time"

// TokenRequest exchanges an access key for a REST bearer token.
type TokenRequest struct {
	AccessKey string `json:"access_key"`
}

// TokenResponse carries the issued bearer token.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ErrorResponse is the REST error shape.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
