package models

// Product is the products-service record.
type Product struct {
	ID    int64   `json:"id" gorm:"primaryKey"`
	Name  string  `json:"name" gorm:"size:100;not null"`
	Price float64 `json:"price"`
}

// EntityID implements lookup.Entity.
func (p Product) EntityID() int64 { return p.ID }
