package loyalty

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fornodoro/backend/pkg/db/models"
)

// Repository manages the loyalty ledger and the materialized balance on users.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindUserForUpdate(ctx context.Context, userID uuid.UUID) (*models.User, error)
	Apply(ctx context.Context, user *models.User, entry *models.LoyaltyTransaction) error
	Balance(ctx context.Context, userID uuid.UUID) (int, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.LoyaltyTransaction, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a loyalty repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// FindUserForUpdate locks the user row so concurrent earns and redemptions
// serialize on the balance.
func (r *repository) FindUserForUpdate(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Apply inserts the ledger entry and moves the materialized balance in one
// statement pair. Callers must hold the user row lock.
func (r *repository) Apply(ctx context.Context, user *models.User, entry *models.LoyaltyTransaction) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", user.ID).
		UpdateColumn("loyalty_points", gorm.Expr("loyalty_points + ?", entry.Points)).Error
}

func (r *repository) Balance(ctx context.Context, userID uuid.UUID) (int, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Select("loyalty_points").
		First(&user, "id = ?", userID).Error; err != nil {
		return 0, err
	}
	return user.LoyaltyPoints, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.LoyaltyTransaction, error) {
	var entries []models.LoyaltyTransaction
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
