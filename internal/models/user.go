package models

type User struct {
	BaseModel
	FullName     string `json:"fullname" gorm:"type:varchar(255);not null"`
	Email        string `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string `json:"-" gorm:"type:text;not null"`
	// Derived from the email once at registration and persisted,
	// never recomputed afterwards.
	ProfileImageURL string     `json:"profileImageUrl" gorm:"type:text;not null"`
	Favorites       []Favorite `json:"favorites" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}
