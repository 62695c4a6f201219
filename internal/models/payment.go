package models

// Payment records one payment against an order. The amount is taken from
// the order's total at creation time.
type Payment struct {
	ID      int64   `json:"id" gorm:"primaryKey"`
	OrderID int64   `json:"order_id"`
	Amount  float64 `json:"amount"`
	Method  string  `json:"method" gorm:"size:50"`
	Status  string  `json:"status" gorm:"size:50"`
}
