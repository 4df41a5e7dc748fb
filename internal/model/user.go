package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	UserRoleUser  = "user"
	UserRoleAdmin = "admin"
)

type User struct {
	ID        uint64          `gorm:"primaryKey;autoIncrement;column:id;<-:create"`
	Phone     string          `gorm:"column:phone;type:varchar(20);uniqueIndex"`
	Role      string          `gorm:"column:role;type:varchar(10);not null;default:'user'"`
	Balance   decimal.Decimal `gorm:"column:balance;type:decimal(10,2);not null;default:0"`
	CreatedAt time.Time       `gorm:"column:created_at"`
	UpdatedAt time.Time       `gorm:"column:updated_at"`
}

func (User) TableName() string {
	return "users"
}
