package repository

import (
	"context"
	"errors"

	"github.com/dom/account-service/internal/domain"
	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// UserRepository is the credential store. Every update method touches only
// the columns it names, so a password hash is never rewritten by unrelated
// saves.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	// GetByUsernameOrEmail matches a user whose username equals username or
	// whose email equals email. Blank arguments never match.
	GetByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, patch domain.ProfilePatch) (*domain.User, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	// UpdateRefreshToken stores token as the user's only active refresh
	// token. A nil token clears it.
	UpdateRefreshToken(ctx context.Context, id uuid.UUID, token *string) error
	// RotateRefreshToken replaces current with next only while current is
	// still the stored token. It returns ErrNotFound when it is not.
	RotateRefreshToken(ctx context.Context, id uuid.UUID, current, next string) error
}

type Repositories struct {
	User UserRepository
}
