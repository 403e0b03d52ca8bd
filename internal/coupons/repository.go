package coupons

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fornodoro/backend/pkg/db/models"
)

// Repository manages coupon persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
	FindByCodeForUpdate(ctx context.Context, code string) (*models.Coupon, error)
	HasUserRedemption(ctx context.Context, couponID, userID uuid.UUID) (bool, error)
	CommitUse(ctx context.Context, coupon *models.Coupon, redemption *models.CouponRedemption) error
	List(ctx context.Context, includeInactive bool) ([]models.Coupon, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error)
	Create(ctx context.Context, coupon *models.Coupon) error
	Update(ctx context.Context, coupon *models.Coupon) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a coupon repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := r.db.WithContext(ctx).First(&coupon, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

// FindByCodeForUpdate takes a row lock so concurrent checkouts serialize on
// the shared usage counter.
func (r *repository) FindByCodeForUpdate(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&coupon, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *repository) HasUserRedemption(ctx context.Context, couponID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CouponRedemption{}).
		Where("coupon_id = ? AND user_id = ?", couponID, userID).
		Count(&count).Error
	return count > 0, err
}

// CommitUse increments the usage counter and records the redemption in one go.
// Callers must hold the row lock from FindByCodeForUpdate.
func (r *repository) CommitUse(ctx context.Context, coupon *models.Coupon, redemption *models.CouponRedemption) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Model(&models.Coupon{}).
		Where("id = ?", coupon.ID).
		UpdateColumn("current_uses", gorm.Expr("current_uses + 1")).Error; err != nil {
		return err
	}
	return tx.Create(redemption).Error
}

func (r *repository) List(ctx context.Context, includeInactive bool) ([]models.Coupon, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if !includeInactive {
		query = query.Where("is_active = TRUE")
	}
	var coupons []models.Coupon
	if err := query.Find(&coupons).Error; err != nil {
		return nil, err
	}
	return coupons, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := r.db.WithContext(ctx).First(&coupon, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *repository) Create(ctx context.Context, coupon *models.Coupon) error {
	return r.db.WithContext(ctx).Create(coupon).Error
}

func (r *repository) Update(ctx context.Context, coupon *models.Coupon) error {
	return r.db.WithContext(ctx).Save(coupon).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Coupon{}).Error
}
