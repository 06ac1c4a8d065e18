// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"gatehouse/internal/domain/entity"
)

// RegisterInput defines the data required to register a new identity.
// Validation tags describe the full account policy; every violated rule is
// reported, not just the first.
type RegisterInput struct {
	Username        string `validate:"required,min=3,max=20"`
	Email           string `validate:"required,email"`
	Password        string `validate:"required,min=6,max=20"`
	PasswordConfirm string `validate:"required,eqfield=Password"`
}

// RegisterOutput returns the newly created identity's basic information.
// Credential material is never part of the output.
type RegisterOutput struct {
	Identity *entity.Identity
}

// IdentityUsecase defines the interface for account provisioning operations.
// This is the contract that the delivery layer will depend on.
type IdentityUsecase interface {
	Register(ctx context.Context, input *RegisterInput) (*RegisterOutput, error)
}
