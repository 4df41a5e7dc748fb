package repository

import (
	"context"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/model"
	"gorm.io/gorm"
)

var ErrOrderNotFound = errors.New("ORDER_NOT_FOUND")
var ErrOrderDuplicate = errors.New("ORDER_DUPLICATE")
var ErrNoRowsAffected = errors.New("NO_ROWS_AFFECTED")

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByID(id int64) (*model.Order, error)
	GetByIdempotencyKey(userID uint64, key string) (*model.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error
	UpdateStatusGuarded(ctx context.Context, orderID int64, to model.OrderStatus, from ...model.OrderStatus) error
	ClaimForDelivery(ctx context.Context, orderID int64, attempt int, staleBefore time.Time) error
	MarkPaid(ctx context.Context, orderID int64, paidAt time.Time) error
	FindFulfillable(limit int) ([]model.Order, error)
	MarkQueued(ctx context.Context, orderID int64, queuedAt time.Time) error
}

type Order struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &Order{db: db}
}

func (o *Order) Create(ctx context.Context, order *model.Order) error {
	db := GetTx(ctx, o.db)
	err := db.Create(order).Error
	if err == nil {
		return nil
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return ErrOrderDuplicate
	}

	return err
}

func (o *Order) GetByID(id int64) (*model.Order, error) {
	var order model.Order

	err := o.db.Where("id = ?", id).First(&order).Error
	if err == nil {
		return &order, nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}

	return nil, err
}

func (o *Order) GetByIdempotencyKey(userID uint64, key string) (*model.Order, error) {
	var order model.Order

	err := o.db.Where("user_id = ? AND idempotency_key = ?", userID, key).First(&order).Error
	if err == nil {
		return &order, nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}

	return nil, err
}

func (o *Order) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	db := GetTx(ctx, o.db)

	result := db.Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]any{"status": status, "updated_at": time.Now()})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrOrderNotFound
	}

	return nil
}

// UpdateStatusGuarded moves the order to the target status only when it is
// currently in one of the given source statuses. Losing callers observe
// ErrNoRowsAffected instead of overwriting a concurrent transition.
func (o *Order) UpdateStatusGuarded(ctx context.Context, orderID int64, to model.OrderStatus, from ...model.OrderStatus) error {
	db := GetTx(ctx, o.db)

	result := db.Model(&model.Order{}).
		Where("id = ? AND status IN ?", orderID, from).
		Updates(map[string]any{"status": to, "updated_at": time.Now()})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNoRowsAffected
	}

	return nil
}

// ClaimForDelivery moves the order into PROCESSING and records the attempt.
// An order already in PROCESSING can only be reclaimed once its last attempt
// is older than staleBefore, so two consumers never deliver it concurrently.
func (o *Order) ClaimForDelivery(ctx context.Context, orderID int64, attempt int, staleBefore time.Time) error {
	db := GetTx(ctx, o.db)

	result := db.Model(&model.Order{}).
		Where("id = ?", orderID).
		Where("status IN ? OR (status = ? AND last_attempt_at < ?)",
			[]model.OrderStatus{model.OrderStatusPaid, model.OrderStatusPending},
			model.OrderStatusProcessing, staleBefore).
		Updates(map[string]any{
			"status":          model.OrderStatusProcessing,
			"attempt_count":   attempt,
			"last_attempt_at": time.Now(),
			"updated_at":      time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNoRowsAffected
	}

	return nil
}

func (o *Order) MarkPaid(ctx context.Context, orderID int64, paidAt time.Time) error {
	db := GetTx(ctx, o.db)

	result := db.Model(&model.Order{}).
		Where("id = ? AND status = ?", orderID, model.OrderStatusPending).
		Updates(map[string]any{
			"status":     model.OrderStatusPaid,
			"paid_at":    paidAt,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNoRowsAffected
	}

	return nil
}

// FindFulfillable returns orders ready for the relay pipeline: paid orders,
// plus zero-priced orders that never enter the payment flow.
func (o *Order) FindFulfillable(limit int) ([]model.Order, error) {
	var orders []model.Order

	err := o.db.
		Where("queued_at IS NULL").
		Where("status = ? OR (status = ? AND price = 0)", model.OrderStatusPaid, model.OrderStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (o *Order) MarkQueued(ctx context.Context, orderID int64, queuedAt time.Time) error {
	db := GetTx(ctx, o.db)

	result := db.Model(&model.Order{}).
		Where("id = ? AND queued_at IS NULL", orderID).
		Updates(map[string]any{"queued_at": queuedAt, "updated_at": time.Now()})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNoRowsAffected
	}

	return nil
}
