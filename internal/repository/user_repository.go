package repository

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"authportal/internal/model"
)

// UserRepository is the credential store. Lookups and updates never return
// an error to the caller; failures are folded into the result status and
// logged here.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) LookupResult
	UpdatePasswordHash(ctx context.Context, email, hash string) UpdateResult
	ClearPasswordHash(ctx context.Context, email string) UpdateResult
	Invite(ctx context.Context, user *model.User) error
}

type userRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB, logger *slog.Logger) UserRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &userRepository{db: db, logger: logger.With("component", "credential_store")}
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) LookupResult {
	var user model.User
	err := r.db.WithContext(ctx).Where("email = ?", email).Take(&user).Error
	switch {
	case err == nil:
		return LookupResult{Status: LookupFound, User: &user}
	case errors.Is(err, gorm.ErrRecordNotFound):
		return LookupResult{Status: LookupNotFound}
	default:
		r.logger.ErrorContext(ctx, "query user by email", "email", email, "error", err)
		return LookupResult{Status: LookupUnavailable, Err: err}
	}
}

func (r *userRepository) UpdatePasswordHash(ctx context.Context, email, hash string) UpdateResult {
	return r.updateHash(ctx, email, hash)
}

// ClearPasswordHash returns an account to the invited state.
func (r *userRepository) ClearPasswordHash(ctx context.Context, email string) UpdateResult {
	return r.updateHash(ctx, email, gorm.Expr("NULL"))
}

func (r *userRepository) updateHash(ctx context.Context, email string, value interface{}) UpdateResult {
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("email = ?", email).
		Update("password_hash", value)
	if res.Error != nil {
		r.logger.ErrorContext(ctx, "update password hash", "email", email, "error", res.Error)
		return UpdateResult{Status: UpdateUnavailable, Err: res.Error}
	}
	if res.RowsAffected != 1 {
		return UpdateResult{Status: UpdateNoRows}
	}
	return UpdateResult{Status: UpdateApplied}
}

// Invite inserts an account with no password, or refreshes the group of an
// existing one without touching its hash.
func (r *userRepository) Invite(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{"user_group"}),
		}).
		Create(user).Error
}
