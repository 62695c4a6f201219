package models

// User is the users-service record. Only id and name are consumed by the
// order aggregation.
type User struct {
	ID    int64  `json:"id" gorm:"primaryKey"`
	Name  string `json:"name" gorm:"size:100;not null"`
	Email string `json:"email" gorm:"size:100;not null"`
}

// EntityID implements lookup.Entity.
func (u User) EntityID() int64 { return u.ID }
