package models

import (
	"time"
)

// User maps an external identity (chat account, OS login) to a ledger-local id.
type User struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	ExternalID string `gorm:"uniqueIndex;not null" json:"external_id"`
	Username   string `gorm:"not null" json:"username"`
}
