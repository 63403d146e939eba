package api

import (
	"context"

	"github.com/Veraticus/finflow/internal/model"
)

// LoginResponse is the body returned by POST /auth/login.
type LoginResponse struct {
	User      model.User `json:"usuario"`
	Token     string     `json:"token"`
	Type      string     `json:"type"`
	Message   string     `json:"message"`
	ExpiresIn int64      `json:"expiresIn"`
}

// RegisterRequest is the body of POST /auth/registro.
type RegisterRequest struct {
	Individual *model.Individual `json:"pessoaFisica,omitempty"`
	Company    *model.Company    `json:"pessoaJuridica,omitempty"`
	Email      string            `json:"email"`
	Password   string            `json:"senha"`
	Type       model.UserType    `json:"tipoUsuario"`
}

// AuthService wraps the unauthenticated /auth endpoints.
type AuthService struct {
	client *Client
}

// NewAuthService creates an AuthService.
func NewAuthService(c *Client) *AuthService {
	return &AuthService{client: c}
}

// Login exchanges credentials for a bearer token and the user profile.
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"senha"`
	}{Email: email, Password: password}
	return post[LoginResponse](ctx, s.client, "/auth/login", body, false)
}

// Register creates a new account.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (model.User, error) {
	return post[model.User](ctx, s.client, "/auth/registro", req, false)
}
