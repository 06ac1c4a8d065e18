package impl

import (
	"context"
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

// authService implements the AuthUsecase interface.
type authService struct {
	identityRepo repository.IdentityRepository
	hasher       service.CredentialHasher
	tokenService service.TokenService
	sessions     usecase.SessionUsecase
	validate     *validator.Validate
	logger       *slog.Logger
}

// AuthServiceParams holds dependencies for authService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	IdentityRepo repository.IdentityRepository
	Hasher       service.CredentialHasher
	TokenService service.TokenService
	Sessions     usecase.SessionUsecase
	Logger       *slog.Logger
}

// NewAuthService is the constructor for authService.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		identityRepo: params.IdentityRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		sessions:     params.Sessions,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		logger:       params.Logger,
	}
}

// Login verifies the submitted credentials and establishes a session. The
// not-found path still runs a full-cost verification against a dummy
// credential so response timing does not reveal whether the account exists.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	srv.logger.Debug("Starting login")

	identity, err := srv.lookupIdentity(ctx, input.Login)
	if err != nil {
		if errors.Is(err, repository.ErrIdentityNotFound) {
			srv.burnDummyVerification(ctx, input.Password)
			srv.logger.Warn("Login failed", slog.Any("error", domainerrors.ErrInvalidCredentials))

			return nil, domainerrors.ErrInvalidCredentials.WrapMessage("login failed")
		}
		srv.logger.Error("Failed to look up identity during login", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to look up identity during login")
	}

	match, err := srv.hasher.Verify(ctx, input.Password, identity.Credential.PasswordHash, identity.Credential.Salt)
	if err != nil {
		srv.logger.Error("Failed to verify credential", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to verify credential")
	}
	if !match {
		srv.logger.Warn("Login failed", slog.Any("error", domainerrors.ErrInvalidCredentials))

		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("login failed")
	}

	issued, err := srv.sessions.Issue(ctx, identity.ID)
	if err != nil {
		srv.logger.Error("Failed to issue session during login", slog.Any("identityID", identity.ID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to issue session during login")
	}

	accessToken, err := srv.tokenService.GenerateAccessToken(identity.ID)
	if err != nil {
		srv.logger.Error("Failed to generate access token", slog.Any("identityID", identity.ID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to generate access token")
	}

	srv.logger.Debug("Login succeeded", slog.Any("identityID", identity.ID))

	// The output never carries credential material.
	public := *identity
	public.Credential = entity.Credential{}

	return &usecase.LoginOutput{
		SessionHandle: issued.Handle,
		AccessToken:   accessToken,
		Identity:      &public,
	}, nil
}

// lookupIdentity classifies the login string as an email address or a
// username and resolves it accordingly.
func (srv *authService) lookupIdentity(ctx context.Context, login string) (*entity.Identity, error) {
	if srv.validate.Var(login, "required,email") == nil {
		return srv.identityRepo.FindByEmail(ctx, login)
	}

	return srv.identityRepo.FindByUsername(ctx, login)
}

// burnDummyVerification performs one verification of normal cost. The result
// is discarded; only the elapsed time matters.
func (srv *authService) burnDummyVerification(ctx context.Context, password string) {
	dummyHash, dummySalt := srv.hasher.DummyHash()
	if _, err := srv.hasher.Verify(ctx, password, dummyHash, dummySalt); err != nil {
		srv.logger.Error("Dummy verification failed", slog.Any("error", err))
	}
}
