package impl

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"gatehouse/internal/domain/entity"
	domainerrors "gatehouse/internal/domain/errors"
	"gatehouse/internal/domain/repository"
	"gatehouse/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRegisterInput() *usecase.RegisterInput {
	return &usecase.RegisterInput{
		Username:        "alice",
		Email:           "alice@example.com",
		Password:        "password123",
		PasswordConfirm: "password123",
	}
}

func TestIdentityService_Register_Success(t *testing.T) {
	stores := newTestStores()
	svc := newTestIdentityService(t, stores)
	ctx := context.Background()

	output, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)
	require.NotNil(t, output.Identity)
	assert.NotEqual(t, uuid.Nil, output.Identity.ID)
	assert.Equal(t, "alice", output.Identity.Username)

	// Credential material never leaves the store.
	assert.True(t, output.Identity.Credential.Empty())

	stored, err := stores.identities.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.NotEmpty(t, stored.Credential.PasswordHash)
	assert.NotEqual(t, "password123", stored.Credential.PasswordHash)
	assert.NotContains(t, stored.Credential.PasswordHash, "password123")
}

func TestIdentityService_Register_AcceptsAnyUsernameCharacters(t *testing.T) {
	stores := newTestStores()
	svc := newTestIdentityService(t, stores)

	// Usernames are constrained by length and uniqueness only.
	for i, username := range []string{"al-ice", "al.ice", "al ice", "愛麗絲三世"} {
		output, err := svc.Register(context.Background(), &usecase.RegisterInput{
			Username:        username,
			Email:           fmt.Sprintf("user%d@example.com", i),
			Password:        "password123",
			PasswordConfirm: "password123",
		})
		require.NoError(t, err, username)
		assert.Equal(t, username, output.Identity.Username)
	}
}

func TestIdentityService_Register_AggregatesAllViolations(t *testing.T) {
	stores := newTestStores()
	svc := newTestIdentityService(t, stores)

	_, err := svc.Register(context.Background(), &usecase.RegisterInput{
		Username:        "al",
		Email:           "not-an-email",
		Password:        "abc",
		PasswordConfirm: "abcd",
	})
	require.Error(t, err)

	var validationErr *domainerrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "username")
	assert.Contains(t, validationErr.Fields, "email")
	assert.Contains(t, validationErr.Fields, "password")
	assert.Contains(t, validationErr.Fields, "passwordConfirm")
}

func TestIdentityService_Register_TakenUsernameAndEmail(t *testing.T) {
	stores := newTestStores()
	svc := newTestIdentityService(t, stores)
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)

	_, err = svc.Register(ctx, validRegisterInput())
	require.Error(t, err)

	var validationErr *domainerrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "username")
	assert.Contains(t, validationErr.Fields, "email")
}

func TestIdentityService_Register_ReportsFormatAndUniquenessTogether(t *testing.T) {
	stores := newTestStores()
	svc := newTestIdentityService(t, stores)
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)

	// Same username, broken password rules: both findings in one error.
	_, err = svc.Register(ctx, &usecase.RegisterInput{
		Username:        "alice",
		Email:           "second@example.com",
		Password:        "abc",
		PasswordConfirm: "mismatch",
	})
	require.Error(t, err)

	var validationErr *domainerrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "username")
	assert.Contains(t, validationErr.Fields, "password")
	assert.Contains(t, validationErr.Fields, "passwordConfirm")
	assert.NotContains(t, validationErr.Fields, "email")
}

// racingIdentityRepo simulates an identity created between the uniqueness
// pre-check and the insert.
type racingIdentityRepo struct {
	repository.IdentityRepository
}

func (r *racingIdentityRepo) Create(_ context.Context, _ *entity.Identity) error {
	return repository.ErrDuplicateKey
}

func (r *racingIdentityRepo) FindByUsername(_ context.Context, _ string) (*entity.Identity, error) {
	return nil, repository.ErrIdentityNotFound
}

func (r *racingIdentityRepo) FindByEmail(_ context.Context, _ string) (*entity.Identity, error) {
	return nil, repository.ErrIdentityNotFound
}

type stubRepositoryFactory struct {
	identityRepo repository.IdentityRepository
	sessionRepo  repository.SessionRepository
}

func (f *stubRepositoryFactory) IdentityRepo() repository.IdentityRepository { return f.identityRepo }
func (f *stubRepositoryFactory) SessionRepo() repository.SessionRepository   { return f.sessionRepo }

type stubTxManager struct {
	factory *stubRepositoryFactory
}

func (tm *stubTxManager) Execute(_ context.Context, fn func(repos repository.RepositoryFactory) error) error {
	return fn(tm.factory)
}

func TestIdentityService_Register_LostRaceIsDuplicateIdentity(t *testing.T) {
	racingRepo := &racingIdentityRepo{}
	svc := NewIdentityService(IdentityServiceParams{
		TxManager:    &stubTxManager{factory: &stubRepositoryFactory{identityRepo: racingRepo}},
		IdentityRepo: racingRepo,
		Hasher:       newTestHasher(t),
		Logger:       discardLogger(),
	})

	_, err := svc.Register(context.Background(), validRegisterInput())
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrDuplicateIdentity)

	// A lost race is not a validation failure.
	var validationErr *domainerrors.ValidationError
	assert.False(t, errors.As(err, &validationErr))
}
