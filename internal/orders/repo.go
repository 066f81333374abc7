package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/printcraft/printcraft-backend/pkg/db/models"
	"github.com/printcraft/printcraft-backend/pkg/enums"
	"github.com/printcraft/printcraft-backend/pkg/pagination"
)

// Repository handles order, milestone, and transaction persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) error
	UpdateOrder(ctx context.Context, order *models.Order) error
	UpdateGatewayOrderID(ctx context.Context, orderID uuid.UUID, gatewayOrderID string) error
	ApplyPayment(ctx context.Context, orderID uuid.UUID, expectedPaid, newPaid decimal.Decimal, status enums.PaymentStatus) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByInquiryID(ctx context.Context, inquiryID uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, error)
	List(ctx context.Context, query ListOrdersQuery, params pagination.Params) ([]models.Order, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) error
	CreateMilestones(ctx context.Context, milestones []models.OrderMilestone) error
	FindMilestone(ctx context.Context, orderID, milestoneID uuid.UUID) (*models.OrderMilestone, error)
	MarkMilestonePaid(ctx context.Context, milestoneID uuid.UUID, paidAt time.Time) (bool, error)
	CreateTransaction(ctx context.Context, txn *models.Transaction) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an order repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Omit("Milestones", "Transactions").Create(order).Error
}

func (r *repository) UpdateOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Omit("Milestones", "Transactions").Save(order).Error
}

func (r *repository) UpdateGatewayOrderID(ctx context.Context, orderID uuid.UUID, gatewayOrderID string) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("gateway_order_id", gatewayOrderID).Error
}

// ApplyPayment advances the order's paid total and derived status, guarded by
// the amount_paid value the caller read. A concurrent settlement moves the
// base and the update matches zero rows.
func (r *repository) ApplyPayment(ctx context.Context, orderID uuid.UUID, expectedPaid, newPaid decimal.Decimal, status enums.PaymentStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND amount_paid = ?", orderID, expectedPaid).
		Updates(map[string]any{
			"amount_paid":    newPaid,
			"payment_status": status,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("Milestones", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC")
		}).
		Preload("Transactions", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByInquiryID(ctx context.Context, inquiryID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		First(&order, "inquiry_id = ?", inquiryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, error) {
	params = pagination.Normalize(params)
	var orders []models.Order
	if err := r.db.WithContext(ctx).
		Preload("Milestones", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC")
		}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) List(ctx context.Context, query ListOrdersQuery, params pagination.Params) ([]models.Order, error) {
	params = pagination.Normalize(params)
	tx := r.db.WithContext(ctx).
		Preload("Milestones", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC")
		})
	if query.PaymentStatus != nil {
		tx = tx.Where("payment_status = ?", *query.PaymentStatus)
	}
	if query.FulfillmentStatus != nil {
		tx = tx.Where("fulfillment_status = ?", *query.FulfillmentStatus)
	}
	if query.UserID != nil {
		tx = tx.Where("user_id = ?", *query.UserID)
	}
	var orders []models.Order
	if err := tx.
		Order("created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// DeleteOrder removes the order and its dependent rows. Callers run this
// inside a transaction; sqlite test databases have no FK cascades, so the
// dependents are deleted explicitly.
func (r *repository) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("order_id = ?", id).Delete(&models.Transaction{}).Error; err != nil {
		return err
	}
	if err := db.Where("order_id = ?", id).Delete(&models.OrderMilestone{}).Error; err != nil {
		return err
	}
	return db.Delete(&models.Order{}, "id = ?", id).Error
}

func (r *repository) CreateMilestones(ctx context.Context, milestones []models.OrderMilestone) error {
	if len(milestones) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&milestones).Error
}

func (r *repository) FindMilestone(ctx context.Context, orderID, milestoneID uuid.UUID) (*models.OrderMilestone, error) {
	var milestone models.OrderMilestone
	if err := r.db.WithContext(ctx).
		First(&milestone, "id = ? AND order_id = ?", milestoneID, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &milestone, nil
}

// MarkMilestonePaid flips the milestone to paid only if it is still unpaid,
// reporting whether this call won the flip.
func (r *repository) MarkMilestonePaid(ctx context.Context, milestoneID uuid.UUID, paidAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.OrderMilestone{}).
		Where("id = ? AND is_paid = ?", milestoneID, false).
		Updates(map[string]any{
			"is_paid":             true,
			"paid_at":             paidAt,
			"verification_status": enums.VerificationStatusApproved,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}
