package domain

import "time"

type Product struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:120;not null;index" json:"title"`
	Price     float64   `gorm:"not null" json:"price"`
	Published bool      `gorm:"not null;default:false" json:"published"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
