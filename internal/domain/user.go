package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type User struct {
	ID           uuid.UUID                      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Username     string                         `json:"username" gorm:"uniqueIndex;not null"`
	Fullname     string                         `json:"fullname" gorm:"index;not null"`
	Email        string                         `json:"email" gorm:"uniqueIndex;not null"`
	Avatar       string                         `json:"avatar" gorm:"not null"`
	CoverImage   string                         `json:"coverImage" gorm:"not null;default:''"`
	WatchHistory datatypes.JSONSlice[uuid.UUID] `json:"watchHistory" gorm:"type:jsonb;not null;default:'[]'"`
	PasswordHash string                         `json:"-" gorm:"not null"`
	RefreshToken *string                        `json:"-"`
	CreatedAt    time.Time                      `json:"createdAt"`
	UpdatedAt    time.Time                      `json:"updatedAt"`
}

// PublicUser is the caller-facing projection of a User. It never carries the
// password hash or the refresh token.
type PublicUser struct {
	ID           uuid.UUID   `json:"id"`
	Username     string      `json:"username"`
	Fullname     string      `json:"fullname"`
	Email        string      `json:"email"`
	Avatar       string      `json:"avatar"`
	CoverImage   string      `json:"coverImage"`
	WatchHistory []uuid.UUID `json:"watchHistory"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

func (u *User) Public() *PublicUser {
	history := make([]uuid.UUID, len(u.WatchHistory))
	copy(history, u.WatchHistory)

	return &PublicUser{
		ID:           u.ID,
		Username:     u.Username,
		Fullname:     u.Fullname,
		Email:        u.Email,
		Avatar:       u.Avatar,
		CoverImage:   u.CoverImage,
		WatchHistory: history,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// HasRefreshToken reports whether the user currently holds an active session.
func (u *User) HasRefreshToken() bool {
	return u.RefreshToken != nil && *u.RefreshToken != ""
}

// ProfilePatch lists the non-credential fields a profile update may touch.
// Nil fields are left unchanged.
type ProfilePatch struct {
	Fullname   *string
	Email      *string
	Avatar     *string
	CoverImage *string
}

func (p ProfilePatch) IsEmpty() bool {
	return p.Fullname == nil && p.Email == nil && p.Avatar == nil && p.CoverImage == nil
}
