package v1

import (
	"time"

	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/model"
)

type OrderResponse struct {
	OrderID       int64      `json:"order_id"`
	OrderType     string     `json:"order_type"`
	ContactTarget string     `json:"contact_target"`
	ContactMethod string     `json:"contact_method,omitempty"`
	Content       string     `json:"content,omitempty"`
	ScheduledTime *time.Time `json:"scheduled_time,omitempty"`
	Status        string     `json:"status"`
	Price         string     `json:"price"`
	Remark        string     `json:"remark,omitempty"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func NewOrderResponse(row *model.Order) OrderResponse {
	resp := OrderResponse{
		OrderID:       row.ID,
		OrderType:     string(row.Type),
		ContactTarget: row.ContactTarget,
		ContactMethod: row.ContactMethod,
		Content:       row.Content,
		ScheduledTime: row.ScheduledTime,
		Status:        string(row.Status),
		Price:         row.Price.StringFixed(2),
		PaidAt:        row.PaidAt,
		CreatedAt:     row.CreatedAt,
	}
	if row.Remark != nil {
		resp.Remark = *row.Remark
	}
	return resp
}
