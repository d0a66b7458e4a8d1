package model

import "go-forum/pkg/apierror"

type APIResponse struct {
	Success bool               `json:"success"`
	Data    any                `json:"data,omitempty"`
	Error   *apierror.APIError `json:"error,omitempty"`
	Meta    *Meta              `json:"meta,omitempty"`
}

type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// MessageResponse is the flat body returned by the registration and session endpoints.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}

func NewMeta(page int, limit int, total int) Meta {
	totalPages := 0
	if total > 0 && limit > 0 {
		totalPages = (total + limit - 1) / limit
	}

	return Meta{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}
