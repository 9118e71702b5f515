package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tastebook/backend/internal/models"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrProfilePrivate = errors.New("this profile is private")
)

// ProfileService reads and updates user profiles.
type ProfileService struct {
	db *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

// Get returns the requester's own profile.
func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByUsername returns another user's profile when it is public.
func (s *ProfileService) GetByUsername(ctx context.Context, requester *uuid.UUID, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !user.PublicProfile && (requester == nil || *requester != user.ID) {
		return nil, ErrProfilePrivate
	}
	return &user, nil
}

// UpdateProfileInput uses pointers so omitted fields stay untouched.
type UpdateProfileInput struct {
	FirstName       *string `json:"first_name" binding:"omitempty,max=50"`
	LastName        *string `json:"last_name" binding:"omitempty,max=50"`
	Bio             *string `json:"bio" binding:"omitempty,max=500"`
	Country         *string `json:"country" binding:"omitempty,max=100"`
	ExperienceLevel *string `json:"experience_level" binding:"omitempty,oneof=beginner intermediate advanced chef"`
	PublicProfile   *bool   `json:"public_profile"`
	AvatarURL       *string `json:"avatar_url" binding:"omitempty,max=255"`
	InstagramURL    *string `json:"instagram_url" binding:"omitempty,max=255"`
	YoutubeURL      *string `json:"youtube_url" binding:"omitempty,max=255"`
	BlogURL         *string `json:"blog_url" binding:"omitempty,max=255"`
}

// Update applies the supplied profile fields.
func (s *ProfileService) Update(ctx context.Context, userID uuid.UUID, in UpdateProfileInput) (*models.User, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.FirstName != nil {
		updates["first_name"] = *in.FirstName
	}
	if in.LastName != nil {
		updates["last_name"] = *in.LastName
	}
	if in.Bio != nil {
		updates["bio"] = *in.Bio
	}
	if in.Country != nil {
		updates["country"] = *in.Country
	}
	if in.ExperienceLevel != nil {
		updates["experience_level"] = *in.ExperienceLevel
	}
	if in.PublicProfile != nil {
		updates["public_profile"] = *in.PublicProfile
	}
	if in.AvatarURL != nil {
		updates["avatar_url"] = *in.AvatarURL
	}
	if in.InstagramURL != nil {
		updates["instagram_url"] = *in.InstagramURL
	}
	if in.YoutubeURL != nil {
		updates["youtube_url"] = *in.YoutubeURL
	}
	if in.BlogURL != nil {
		updates["blog_url"] = *in.BlogURL
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return user, nil
}

// SetAvatarURL stores a freshly uploaded avatar location.
func (s *ProfileService) SetAvatarURL(ctx context.Context, userID uuid.UUID, url string) error {
	return s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("avatar_url", url).Error
}
