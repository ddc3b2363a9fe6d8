package service

import (
	"context"
	"errors"
	"strings"

	"github.com/dom/account-service/internal/domain"
	"github.com/dom/account-service/internal/logging"
	"github.com/dom/account-service/internal/repository"
	"github.com/google/uuid"
)

// ProfileService reads and mutates the non-credential fields of an
// authenticated user.
type ProfileService struct {
	users repository.UserRepository
	media *mediaUploader
	log   logging.Logger
}

func NewProfileService(users repository.UserRepository, media *mediaUploader, log logging.Logger) *ProfileService {
	return &ProfileService{
		users: users,
		media: media,
		log:   log.With("component", "profile_service"),
	}
}

type UpdateDetailsInput struct {
	Fullname string
	Email    string
}

func (s *ProfileService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*domain.PublicUser, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Public(), nil
}

func (s *ProfileService) UpdateDetails(ctx context.Context, userID uuid.UUID, input UpdateDetailsInput) (*domain.PublicUser, error) {
	fullname := strings.TrimSpace(input.Fullname)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	var patch domain.ProfilePatch
	if fullname != "" {
		patch.Fullname = &fullname
	}
	if email != "" {
		patch.Email = &email
	}
	if patch.IsEmpty() {
		return nil, domain.ValidationError("Fullname or email is required")
	}

	return s.applyPatch(ctx, userID, patch)
}

func (s *ProfileService) UpdateAvatar(ctx context.Context, userID uuid.UUID, file *LocalFile) (*domain.PublicUser, error) {
	url, err := s.uploadSingle(ctx, file, "Avatar file is missing", "Error while uploading avatar")
	if err != nil {
		return nil, err
	}
	return s.applyPatch(ctx, userID, domain.ProfilePatch{Avatar: &url})
}

func (s *ProfileService) UpdateCoverImage(ctx context.Context, userID uuid.UUID, file *LocalFile) (*domain.PublicUser, error) {
	url, err := s.uploadSingle(ctx, file, "Cover image file is missing", "Error while uploading cover image")
	if err != nil {
		return nil, err
	}
	return s.applyPatch(ctx, userID, domain.ProfilePatch{CoverImage: &url})
}

// GetWatchHistory returns the ids of watched videos, oldest first.
func (s *ProfileService) GetWatchHistory(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	history := make([]uuid.UUID, len(user.WatchHistory))
	copy(history, user.WatchHistory)
	return history, nil
}

func (s *ProfileService) uploadSingle(ctx context.Context, file *LocalFile, missingMsg, failedMsg string) (string, error) {
	if file == nil || file.Path == "" {
		return "", domain.ValidationError(missingMsg)
	}
	url, err := s.media.upload(ctx, file)
	if err != nil {
		return "", domain.UploadError(failedMsg, err)
	}
	return url, nil
}

func (s *ProfileService) applyPatch(ctx context.Context, userID uuid.UUID, patch domain.ProfilePatch) (*domain.PublicUser, error) {
	user, err := s.users.UpdateProfile(ctx, userID, patch)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, domain.ConflictError("User with this email already exists")
		case errors.Is(err, repository.ErrNotFound):
			return nil, domain.NotFoundError("User does not exist")
		default:
			return nil, domain.InternalError(err)
		}
	}

	s.log.Info(ctx, "profile updated", "user_id", userID)
	return user.Public(), nil
}

func (s *ProfileService) getUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NotFoundError("User does not exist")
		}
		return nil, domain.InternalError(err)
	}
	return user, nil
}
