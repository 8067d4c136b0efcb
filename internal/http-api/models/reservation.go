package models

import "time"

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationFulfilled ReservationStatus = "fulfilled"
	ReservationCancelled ReservationStatus = "cancelled"
)

type Reservation struct {
	ID              int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          int64             `gorm:"not null;uniqueIndex:idx_pending_reservation,where:status = 'pending'" json:"user_id"`
	BookID          int64             `gorm:"not null;uniqueIndex:idx_pending_reservation,where:status = 'pending';index" json:"book_id"`
	ReservationDate time.Time         `gorm:"not null" json:"reservation_date"`
	Status          ReservationStatus `gorm:"size:20;not null;default:'pending';check:chk_reservations_status,status IN ('pending','fulfilled','cancelled')" json:"status"`

	// Associations
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Book *Book `gorm:"foreignKey:BookID" json:"book,omitempty"`
}

func (Reservation) TableName() string {
	return "reservations"
}
