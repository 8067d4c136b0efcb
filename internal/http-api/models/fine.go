package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type FineStatus string

const (
	FineUnpaid FineStatus = "unpaid"
	FinePaid   FineStatus = "paid"
)

// Fine is the ledger entry written when a return is late.
type Fine struct {
	ID                int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID            int64           `gorm:"not null;index" json:"user_id"`
	BorrowingRecordID int64           `gorm:"not null;uniqueIndex" json:"borrowing_record_id"`
	Amount            decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	IssueDate         time.Time       `gorm:"not null" json:"issue_date"`
	PaidDate          *time.Time      `json:"paid_date"`
	Status            FineStatus      `gorm:"size:20;not null;default:'unpaid';check:chk_fines_status,status IN ('unpaid','paid')" json:"status"`

	// Associations
	User            *User            `gorm:"foreignKey:UserID" json:"user,omitempty"`
	BorrowingRecord *BorrowingRecord `gorm:"foreignKey:BorrowingRecordID" json:"borrowing_record,omitempty"`
}

func (Fine) TableName() string {
	return "fines"
}

// All lists the models managed by AutoMigrate, parents first.
func All() []any {
	return []any{&User{}, &Book{}, &BorrowingRecord{}, &Reservation{}, &Fine{}}
}
