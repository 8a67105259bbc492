package models

import (
	"time"

	"gorm.io/datatypes"
)

type ReservationStatus string

const (
	ReservationStatusPendingPayment ReservationStatus = "pending_payment"
	ReservationStatusPaid           ReservationStatus = "paid"
)

// Reservation links a user to a bike under a plan and tracks payment.
// Price is the plan price at creation time and is never recomputed.
type Reservation struct {
	ID        string            `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string            `json:"userID" gorm:"type:varchar(36);not null;index"`
	BikeID    string            `json:"bikeID" gorm:"type:varchar(64);not null;index"`
	PlanKey   string            `json:"plan" gorm:"column:plan_key;type:varchar(20);not null"`
	Status    ReservationStatus `json:"status" gorm:"type:varchar(20);not null"`
	Price     float64           `json:"price" gorm:"not null"`
	CreatedAt time.Time         `json:"createdAt"`
	PaidAt    *time.Time        `json:"paidAt,omitempty"`

	// Checkout correlation, e.g. the provider's session id.
	Metadata datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
}
