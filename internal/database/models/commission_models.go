package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SellerAssignment is one row of the monthly seller mapping sheet. Position
// keeps the sheet order, which decides who wins ambiguous matches.
type SellerAssignment struct {
	ID            string  `gorm:"type:varchar(36);primaryKey"`
	UploadMonth   string  `gorm:"type:varchar(7);index;not null"`
	Position      int     `gorm:"not null;default:0"`
	CustomerName  string  `gorm:"not null"`
	CustomerEmail *string
	SellerID      *string `gorm:"index"`
	SellerName    string  `gorm:"not null"`
	Product       *string
	UploadedBy    *string
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

func (SellerAssignment) TableName() string {
	return "seller_lead_mapping"
}

func (a *SellerAssignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
