package models

import "time"

// Model is the common primary key and timestamp block. Unlike gorm.Model it
// serializes with lower-case keys.
type Model struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
