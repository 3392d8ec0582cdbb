// Package inventory manages the sales listings behind the farm site: animals
// offered for sale and farm products.
package inventory

import "time"

// Animal is one animal listed for sale.
type Animal struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"not null" json:"name"`
	Species     string     `gorm:"not null;index" json:"species"`
	Breed       string     `json:"breed,omitempty"`
	Sex         string     `json:"sex,omitempty"`
	BirthDate   *time.Time `json:"birth_date,omitempty"`
	Price       *float64   `json:"price,omitempty"`
	Description string     `json:"description,omitempty"`
	PhotoURL    string     `json:"photo_url,omitempty"`
	IsAvailable bool       `gorm:"default:true;index" json:"is_available"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Product is one farm product listing, priced per unit.
type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Category    string    `gorm:"index" json:"category,omitempty"`
	Price       *float64  `json:"price,omitempty"`
	Unit        string    `json:"unit,omitempty"`
	Description string    `json:"description,omitempty"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	IsAvailable bool      `gorm:"default:true;index" json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
