// Package models provides the JSON bodies of the redirect API.
package models

import (
	domain "redirector/internal/domain/models"
)

// ErrorResponse - body of every failed call.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// IssueTokenResponse - body of a successful create-token call.
type IssueTokenResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

// RedeemTokenRequest - body of a verify-token call.
type RedeemTokenRequest struct {
	Token string `json:"token"`
}

// RedeemTokenResponse - body of a successful verify-token call.
type RedeemTokenResponse struct {
	Success     bool   `json:"success"`
	RedirectURL string `json:"redirectUrl"`
}

// SelectResponse - body of a successful select call.
type SelectResponse struct {
	Success bool                  `json:"success"`
	Link    domain.RedirectTarget `json:"link"`
}

// PingResponse - body of the health check.
type PingResponse struct {
	Status string `json:"status"`
}
