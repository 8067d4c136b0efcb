package models

import "time"

type User struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"size:200;not null" json:"name"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role         Role      `gorm:"size:20;not null;check:chk_users_role,role IN ('admin','librarian','student')" json:"role"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"` // Not show in JSON
	CreatedAt    time.Time `json:"created_at"`
}

func (User) TableName() string {
	return "users"
}
