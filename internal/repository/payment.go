package repository

import (
	"context"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/model"
	"gorm.io/gorm"
)

var ErrPaymentNotFound = errors.New("PAYMENT_NOT_FOUND")
var ErrPaymentDuplicate = errors.New("PAYMENT_DUPLICATE")

type PaymentRepository interface {
	Create(ctx context.Context, record *model.PaymentRecord) error
	GetByOutTradeNo(outTradeNo string) (*model.PaymentRecord, error)
	MarkCompleted(ctx context.Context, outTradeNo string, transactionID string) error
	MarkClosed(ctx context.Context, outTradeNo string) error
	FindStalePending(olderThan time.Time, limit int) ([]model.PaymentRecord, error)
}

type Payment struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &Payment{db: db}
}

func (p *Payment) Create(ctx context.Context, record *model.PaymentRecord) error {
	db := GetTx(ctx, p.db)
	err := db.Create(record).Error
	if err == nil {
		return nil
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return ErrPaymentDuplicate
	}

	return err
}

func (p *Payment) GetByOutTradeNo(outTradeNo string) (*model.PaymentRecord, error) {
	var record model.PaymentRecord

	err := p.db.Where("out_trade_no = ?", outTradeNo).First(&record).Error
	if err == nil {
		return &record, nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPaymentNotFound
	}

	return nil, err
}

// MarkCompleted is the single settlement gate shared by the webhook and the
// query path: only a record still PENDING transitions, so whichever caller
// arrives second observes ErrNoRowsAffected and must not apply side effects.
func (p *Payment) MarkCompleted(ctx context.Context, outTradeNo string, transactionID string) error {
	db := GetTx(ctx, p.db)

	result := db.Model(&model.PaymentRecord{}).
		Where("out_trade_no = ? AND status = ?", outTradeNo, model.PaymentStatusPending).
		Updates(map[string]any{
			"status":         model.PaymentStatusCompleted,
			"transaction_id": transactionID,
			"updated_at":     time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNoRowsAffected
	}

	return nil
}

func (p *Payment) MarkClosed(ctx context.Context, outTradeNo string) error {
	db := GetTx(ctx, p.db)

	result := db.Model(&model.PaymentRecord{}).
		Where("out_trade_no = ? AND status = ?", outTradeNo, model.PaymentStatusPending).
		Updates(map[string]any{"status": model.PaymentStatusClosed, "updated_at": time.Now()})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNoRowsAffected
	}

	return nil
}

func (p *Payment) FindStalePending(olderThan time.Time, limit int) ([]model.PaymentRecord, error) {
	var records []model.PaymentRecord

	err := p.db.
		Where("status = ? AND created_at < ?", model.PaymentStatusPending, olderThan).
		Order("created_at ASC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	return records, nil
}
