package model

import "github.com/google/uuid"

type AuthRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	ID uuid.UUID `json:"id"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type CreatePostRequest struct {
	Text string `json:"text"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
