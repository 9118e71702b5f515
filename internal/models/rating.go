package models

import (
	"time"

	"github.com/google/uuid"
)

// Rating is a 1-5 star score with an optional comment. One per
// (user, recipe); authors cannot rate their own recipes.
type Rating struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserID    uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_user_recipe_rating" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	RecipeID  uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_user_recipe_rating" json:"recipe_id"`
	Score     int       `gorm:"not null" json:"score"`
	Comment   string    `gorm:"size:500" json:"comment"`
}
