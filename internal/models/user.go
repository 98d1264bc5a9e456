package models

import "time"

// DefaultStatus is assigned to users saved without an explicit status.
const DefaultStatus = "ACTIVE"

// User represents a registered user of the contact service.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null;index" validate:"required,nonblank,max=255"`
	Email     string    `json:"email" gorm:"type:varchar(255);not null;uniqueIndex" validate:"required,email,max=255"`
	Password  string    `json:"password" gorm:"type:varchar(255);not null" validate:"required,max=72"` // bcrypt hash once stored
	Phone     string    `json:"phone" gorm:"type:varchar(50)" validate:"omitempty,max=50"`
	Role      string    `json:"role" gorm:"type:varchar(100);index" validate:"omitempty,max=100"`
	About     string    `json:"about" gorm:"type:varchar(500)" validate:"omitempty,max=500"`
	Address   string    `json:"address" gorm:"type:varchar(255)" validate:"omitempty,max=255"`
	City      string    `json:"city" gorm:"type:varchar(100);index" validate:"omitempty,max=100"`
	State     string    `json:"state" gorm:"type:varchar(100)" validate:"omitempty,max=100"`
	Country   string    `json:"country" gorm:"type:varchar(100);index" validate:"omitempty,max=100"`
	Status    string    `json:"status" gorm:"type:varchar(50);index" validate:"omitempty,max=50"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;<-:create"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName pins the table name used by GORM.
func (User) TableName() string {
	return "users"
}
