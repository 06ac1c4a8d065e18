// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"fmt"
	"log/slog"

	"gatehouse/internal/domain/entity"
	domainerrors "gatehouse/internal/domain/errors"
	"gatehouse/internal/domain/repository"
	"gatehouse/internal/domain/service"
	"gatehouse/internal/errors"
	"gatehouse/internal/usecase"

	"github.com/go-playground/validator/v10"
	"go.uber.org/fx"
)

// identityService implements the IdentityUsecase interface.
type identityService struct {
	txManager    repository.TransactionManager
	identityRepo repository.IdentityRepository
	hasher       service.CredentialHasher
	validate     *validator.Validate
	logger       *slog.Logger
}

// IdentityServiceParams holds dependencies for identityService, injected by Fx.
type IdentityServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	IdentityRepo repository.IdentityRepository
	Hasher       service.CredentialHasher
	Logger       *slog.Logger
}

// NewIdentityService is the constructor for identityService.
func NewIdentityService(params IdentityServiceParams) usecase.IdentityUsecase {
	return &identityService{
		txManager:    params.TxManager,
		identityRepo: params.IdentityRepo,
		hasher:       params.Hasher,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		logger:       params.Logger,
	}
}

// Register orchestrates the complete account provisioning process.
func (srv *identityService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	srv.logger.Info("Starting registration", slog.String("username", input.Username))

	validationErr := srv.validateRegisterInput(input)

	// Uniqueness checks run even when format checks failed, so the caller
	// receives every violation in one round trip.
	if err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return srv.collectUniquenessViolations(ctx, repoFactory.IdentityRepo(), input, validationErr)
	}); err != nil {
		srv.logger.Error("Failed to check identity uniqueness", slog.String("username", input.Username), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to check identity uniqueness")
	}

	if validationErr.HasErrors() {
		srv.logger.Warn("Registration rejected", slog.String("username", input.Username), slog.Int("fields", len(validationErr.Fields)))

		return nil, validationErr
	}

	// Derive outside the transaction: key derivation is deliberately slow and
	// must not hold a database connection.
	hash, salt, err := srv.hasher.Derive(ctx, input.Password)
	if err != nil {
		srv.logger.Error("Failed to derive credential", slog.String("username", input.Username), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to derive credential")
	}

	registered := buildNewIdentity(input.Username, input.Email, hash, salt)
	if err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return repoFactory.IdentityRepo().Create(ctx, registered)
	}); err != nil {
		// A racing create can slip past the pre-check; the storage layer's
		// unique constraint is the arbiter.
		if errors.Is(err, repository.ErrDuplicateKey) {
			srv.logger.Warn("Registration lost a uniqueness race", slog.String("username", input.Username))

			return nil, domainerrors.ErrDuplicateIdentity.WrapMessage("identity created concurrently")
		}
		srv.logger.Error("Failed to execute registration transaction", slog.String("username", input.Username), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute registration transaction")
	}

	srv.logger.Debug("Registration completed", slog.Any("identityID", registered.ID))

	// The output never carries credential material.
	public := *registered
	public.Credential = entity.Credential{}

	return &usecase.RegisterOutput{Identity: &public}, nil
}

// validateRegisterInput collects every failed format rule into one
// ValidationError.
func (srv *identityService) validateRegisterInput(input *usecase.RegisterInput) *domainerrors.ValidationError {
	validationErr := domainerrors.NewValidationError()

	err := srv.validate.Struct(input)
	if err == nil {
		return validationErr
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		validationErr.Add("input", "invalid registration input")

		return validationErr
	}

	for _, fieldErr := range fieldErrs {
		validationErr.Add(fieldName(fieldErr.Field()), describeViolation(fieldErr))
	}

	return validationErr
}

// collectUniquenessViolations appends taken-username and taken-email findings
// to the validation error. Repository misses are the success path here.
func (srv *identityService) collectUniquenessViolations(
	ctx context.Context,
	identityRepo repository.IdentityRepository,
	input *usecase.RegisterInput,
	validationErr *domainerrors.ValidationError,
) error {
	if input.Username != "" {
		_, err := identityRepo.FindByUsername(ctx, input.Username)
		switch {
		case err == nil:
			validationErr.Add("username", "username is already taken")
		case !errors.Is(err, repository.ErrIdentityNotFound):
			return errors.Wrap(err, "failed to check username uniqueness")
		}
	}

	if input.Email != "" {
		_, err := identityRepo.FindByEmail(ctx, input.Email)
		switch {
		case err == nil:
			validationErr.Add("email", "email is already registered")
		case !errors.Is(err, repository.ErrIdentityNotFound):
			return errors.Wrap(err, "failed to check email uniqueness")
		}
	}

	return nil
}

func buildNewIdentity(username, email, hash, salt string) *entity.Identity {
	return &entity.Identity{
		Username: username,
		Email:    email,
		Credential: entity.Credential{
			PasswordHash: hash,
			Salt:         salt,
		},
	}
}

func fieldName(structField string) string {
	switch structField {
	case "Username":
		return "username"
	case "Email":
		return "email"
	case "Password":
		return "password"
	case "PasswordConfirm":
		return "passwordConfirm"
	default:
		return structField
	}
}

func describeViolation(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fieldErr.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fieldErr.Param())
	case "email":
		return "must be a valid email address"
	case "eqfield":
		return "must match the password"
	default:
		return fmt.Sprintf("failed the %s rule", fieldErr.Tag())
	}
}
