package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Favorite is a denormalized snapshot of an artist at the moment of
// favoriting. The catalog fields are never refreshed afterwards.
// At most one row exists per (user, artistId); the check is a linear
// scan of the user's list before insert, not a storage constraint.
type Favorite struct {
	ID          uuid.UUID `json:"-" gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID `json:"-" gorm:"type:uuid;index;not null"`
	ArtistID    string    `json:"artistId" gorm:"type:varchar(64);not null"`
	Name        string    `json:"name" gorm:"type:varchar(255)"`
	Thumbnail   string    `json:"thumbnail" gorm:"type:text"`
	Birthday    string    `json:"birthday" gorm:"type:varchar(32)"`
	Deathday    string    `json:"deathday" gorm:"type:varchar(32)"`
	Nationality string    `json:"nationality" gorm:"type:varchar(128)"`
	// Set server-side at insertion, immutable. Removing and re-adding
	// an artist creates a new row with a new timestamp.
	AddedAt time.Time `json:"addedAt" gorm:"not null;index"`
}

func (f *Favorite) BeforeCreate(_ *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if f.AddedAt.IsZero() {
		f.AddedAt = time.Now().UTC()
	}
	return nil
}

func (Favorite) TableName() string {
	return "favorites"
}
