package inquiries

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/printcraft/printcraft-backend/pkg/db/models"
	"github.com/printcraft/printcraft-backend/pkg/pagination"
)

// Repository handles inquiry persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateGroup(ctx context.Context, group *models.InquiryGroup) error
	UpdateGroup(ctx context.Context, group *models.InquiryGroup) error
	FindGroupByID(ctx context.Context, id uuid.UUID) (*models.InquiryGroup, error)
	ListGroupsByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.InquiryGroup, error)
	ListGroups(ctx context.Context, query ListQuery, params pagination.Params) ([]models.InquiryGroup, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an inquiry repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateGroup(ctx context.Context, group *models.InquiryGroup) error {
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *repository) UpdateGroup(ctx context.Context, group *models.InquiryGroup) error {
	return r.db.WithContext(ctx).Save(group).Error
}

func (r *repository) FindGroupByID(ctx context.Context, id uuid.UUID) (*models.InquiryGroup, error) {
	var group models.InquiryGroup
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&group, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &group, nil
}

func (r *repository) ListGroupsByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.InquiryGroup, error) {
	params = pagination.Normalize(params)
	var groups []models.InquiryGroup
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *repository) ListGroups(ctx context.Context, query ListQuery, params pagination.Params) ([]models.InquiryGroup, error) {
	params = pagination.Normalize(params)
	tx := r.db.WithContext(ctx).Preload("Items")
	if query.Status != nil {
		tx = tx.Where("status = ?", *query.Status)
	}
	var groups []models.InquiryGroup
	if err := tx.
		Order("created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}
