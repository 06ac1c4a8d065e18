package postgres

import (
	"context"
	"time"

	"gatehouse/internal/domain/entity"
	"gatehouse/internal/domain/repository"
	"gatehouse/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// sessionRepository implements repository.SessionRepository using GORM.
// Per-session mutations are single UPDATE statements, so the database
// serializes them per row.
type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository is the constructor for sessionRepository.
func NewSessionRepository(db *gorm.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

// Create persists a new session record.
func (repo *sessionRepository) Create(ctx context.Context, session *entity.Session) error {
	sessionM := fromSessionDomain(session)

	if err := repo.db.WithContext(ctx).Create(sessionM).Error; err != nil {
		return errors.Wrap(err, "failed to create session")
	}

	return nil
}

// FindByID retrieves a session by its record ID.
func (repo *sessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Session, error) {
	var sessionM model.SessionModel
	err := repo.db.WithContext(ctx).Where("id = ?", id).First(&sessionM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrSessionNotFound
		}

		return nil, errors.Wrap(err, "failed to find session")
	}

	return toSessionDomain(&sessionM), nil
}

// FindByIdentityID retrieves all sessions belonging to an identity.
func (repo *sessionRepository) FindByIdentityID(ctx context.Context, identityID uuid.UUID) ([]*entity.Session, error) {
	var models []model.SessionModel
	err := repo.db.WithContext(ctx).
		Where("identity_id = ?", identityID).
		Order("issued_at").
		Find(&models).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to find sessions by identity id")
	}

	sessions := make([]*entity.Session, 0, len(models))
	for i := range models {
		sessions = append(sessions, toSessionDomain(&models[i]))
	}

	return sessions, nil
}

// ExtendExpiry moves a session's expiry forward. The revoked guard keeps a
// terminated session terminated even if a validate raced a revoke.
func (repo *sessionRepository) ExtendExpiry(ctx context.Context, id uuid.UUID, expiresAt time.Time) error {
	result := repo.db.WithContext(ctx).
		Model(&model.SessionModel{}).
		Where("id = ? AND revoked = false", id).
		Update("expires_at", expiresAt)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to extend session expiry")
	}
	if result.RowsAffected == 0 {
		return repository.ErrSessionNotFound
	}

	return nil
}

// Revoke marks a session permanently invalid. Idempotent.
func (repo *sessionRepository) Revoke(ctx context.Context, id uuid.UUID) error {
	err := repo.db.WithContext(ctx).
		Model(&model.SessionModel{}).
		Where("id = ?", id).
		Update("revoked", true).Error
	if err != nil {
		return errors.Wrap(err, "failed to revoke session")
	}

	return nil
}

// RevokeByIdentityID marks every session of an identity invalid.
func (repo *sessionRepository) RevokeByIdentityID(ctx context.Context, identityID uuid.UUID) error {
	err := repo.db.WithContext(ctx).
		Model(&model.SessionModel{}).
		Where("identity_id = ?", identityID).
		Update("revoked", true).Error
	if err != nil {
		return errors.Wrap(err, "failed to revoke sessions by identity id")
	}

	return nil
}

// DeleteTerminated removes revoked sessions and sessions expired before the
// given instant.
func (repo *sessionRepository) DeleteTerminated(ctx context.Context, before time.Time) (int, error) {
	result := repo.db.WithContext(ctx).
		Where("revoked = true OR expires_at <= ?", before).
		Delete(&model.SessionModel{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to delete terminated sessions")
	}

	return int(result.RowsAffected), nil
}

// --- Mapper functions ---

func toSessionDomain(data *model.SessionModel) *entity.Session {
	if data == nil {
		return nil
	}

	return &entity.Session{
		ID:         data.ID,
		IdentityID: data.IdentityID,
		TokenHash:  data.TokenHash,
		IssuedAt:   data.IssuedAt,
		ExpiresAt:  data.ExpiresAt,
		Revoked:    data.Revoked,
	}
}

func fromSessionDomain(data *entity.Session) *model.SessionModel {
	if data == nil {
		return nil
	}

	return &model.SessionModel{
		ID:         data.ID,
		IdentityID: data.IdentityID,
		TokenHash:  data.TokenHash,
		IssuedAt:   data.IssuedAt,
		ExpiresAt:  data.ExpiresAt,
		Revoked:    data.Revoked,
	}
}
