package models

type RegisterTokenRequest struct {
	Token string `json:"token" binding:"required"`
}
