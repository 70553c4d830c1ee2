package models

import "time"

// Product é um item do catálogo usado como contexto no prompt da IA.
type Product struct {
	ID          int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	Name        string     `gorm:"not null" json:"name"`
	Description string     `gorm:"type:text" json:"description"`
	Price       float64    `json:"price"`
	Active      bool       `gorm:"not null;default:true" json:"active"`
	CreatedAt   *time.Time `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}
