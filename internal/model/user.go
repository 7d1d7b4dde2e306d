package model

import (
	"time"

	"gorm.io/gorm/schema"
)

// User is an account owned by the wider application. This service only looks it up by phone.
type User struct {
	ID          string    `json:"id" gorm:"primaryKey;type:text"`
	PhoneNumber string    `json:"phone_number" gorm:"uniqueIndex;type:text;not null"`
	Name        string    `json:"name,omitempty" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at,omitempty" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at,omitempty" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for the User model, respecting the Namer.
func (User) TableName(namer schema.Namer) string {
	return namer.TableName("users")
}
