package usecase

import (
	"context"

	"gatehouse/internal/domain/entity"
)

// LoginInput defines the data required to log in. Login accepts either a
// username or an email address; the implementation classifies it.
type LoginInput struct {
	Login    string
	Password string
}

// LoginOutput returns the session handle and access token after a successful
// login.
type LoginOutput struct {
	SessionHandle string
	AccessToken   string
	Identity      *entity.Identity
}

// AuthUsecase defines the interface for credential verification operations.
type AuthUsecase interface {
	// Login verifies the submitted credentials and establishes a session.
	// All failure modes surface as the same invalid-credentials error.
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)
}
