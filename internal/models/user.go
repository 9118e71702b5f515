package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Experience levels a user can declare on their profile.
const (
	ExperienceBeginner     = "beginner"
	ExperienceIntermediate = "intermediate"
	ExperienceAdvanced     = "advanced"
	ExperienceChef         = "chef"
)

type User struct {
	ID           uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Username     string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	FirstName    string    `gorm:"size:100" json:"first_name"`
	LastName     string    `gorm:"size:100" json:"last_name"`

	// Profile
	Bio             string `gorm:"size:500" json:"bio"`
	AvatarURL       string `gorm:"size:255" json:"avatar_url"`
	Country         string `gorm:"size:100" json:"country"`
	ExperienceLevel string `gorm:"size:20;default:'beginner'" json:"experience_level"`
	PublicProfile   bool   `gorm:"default:true" json:"public_profile"`

	// Social links
	InstagramURL string `gorm:"size:255" json:"instagram_url,omitempty"`
	YoutubeURL   string `gorm:"size:255" json:"youtube_url,omitempty"`
	BlogURL      string `gorm:"size:255" json:"blog_url,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// FullName joins first and last name, trimming when either is empty.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
