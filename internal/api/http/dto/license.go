package dto

import (
	"time"

	"github.com/EternisAI/silo-license/internal/licenses"
)

type ActivateRequest struct {
	Key string `json:"key" binding:"required"`
}

type ActivateResponse struct {
	Status    string     `json:"status"`
	Token     string     `json:"token,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Message   string     `json:"message"`
}

type VerifyRequest struct {
	Token string `json:"token" binding:"required"`
}

type VerifyResponse struct {
	Valid   bool       `json:"valid"`
	Reason  string     `json:"reason,omitempty"`
	Key     string     `json:"key,omitempty"`
	Owner   string     `json:"owner,omitempty"`
	Expires *time.Time `json:"expires,omitempty"`
}

type CreateLicenseRequest struct {
	Key       string `json:"key" binding:"omitempty,max=128"`
	Owner     string `json:"owner" binding:"omitempty,max=255"`
	DaysValid *int   `json:"days_valid" binding:"omitempty,min=1"`
	Prefix    string `json:"prefix" binding:"omitempty,max=32"`
	Note      string `json:"note" binding:"omitempty,max=1024"`
}

type RevokeLicenseRequest struct {
	Key string `json:"key" binding:"required"`
}

type LicenseResponse struct {
	Key       string    `json:"key"`
	Owner     string    `json:"owner"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Revoked   bool      `json:"revoked"`
	Note      string    `json:"note,omitempty"`
}

type LicenseMessageResponse struct {
	Message string `json:"message"`
	LicenseResponse
}

type ListLicensesResponse struct {
	Count    int               `json:"count"`
	Licenses []LicenseResponse `json:"licenses"`
}

func NewLicenseResponse(l licenses.License) LicenseResponse {
	return LicenseResponse{
		Key:       l.Key,
		Owner:     l.Owner,
		CreatedAt: l.CreatedAt,
		ExpiresAt: l.ExpiresAt,
		Revoked:   l.Revoked,
		Note:      l.Note,
	}
}
