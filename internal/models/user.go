package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	ID         uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	ExternalID string                      `gorm:"type:text;uniqueIndex;not null" json:"externalId"`
	Email      string                      `gorm:"type:text;index" json:"email"`
	FirstName  string                      `gorm:"type:text" json:"firstName"`
	LastName   string                      `gorm:"type:text" json:"lastName"`
	ImageURL   string                      `gorm:"type:text" json:"imageUrl"`
	Industry   string                      `gorm:"type:text;index" json:"industry,omitempty"`
	Bio        string                      `gorm:"type:text" json:"bio,omitempty"`
	Experience *int                        `json:"experience,omitempty"`
	Skills     datatypes.JSONSlice[string] `json:"skills"`
	CreatedAt  time.Time                   `json:"createdAt"`
	UpdatedAt  time.Time                   `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Identity is what the identity provider knows about the caller.
type Identity struct {
	ExternalID string
	Email      string
	FirstName  string
	LastName   string
	ImageURL   string
}
