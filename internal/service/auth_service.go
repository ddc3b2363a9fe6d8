package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/dom/account-service/internal/auth"
	"github.com/dom/account-service/internal/domain"
	"github.com/dom/account-service/internal/logging"
	"github.com/dom/account-service/internal/repository"
	"github.com/google/uuid"
)

// Session lifecycle events pushed to the user's connected clients.
const (
	EventSessionStarted  = "SESSION_STARTED"
	EventSessionEnded    = "SESSION_ENDED"
	EventPasswordChanged = "PASSWORD_CHANGED"
)

// SessionNotifier delivers session lifecycle events. Notify must not block.
type SessionNotifier interface {
	Notify(userID uuid.UUID, eventType string, payload interface{})
}

type nopNotifier struct{}

func (nopNotifier) Notify(uuid.UUID, string, interface{}) {}

type AuthService struct {
	users    repository.UserRepository
	hasher   *auth.Hasher
	issuer   *auth.TokenIssuer
	verifier *auth.TokenVerifier
	media    *mediaUploader
	notifier SessionNotifier
	log      logging.Logger
}

func NewAuthService(
	users repository.UserRepository,
	hasher *auth.Hasher,
	issuer *auth.TokenIssuer,
	verifier *auth.TokenVerifier,
	media *mediaUploader,
	notifier SessionNotifier,
	log logging.Logger,
) *AuthService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &AuthService{
		users:    users,
		hasher:   hasher,
		issuer:   issuer,
		verifier: verifier,
		media:    media,
		notifier: notifier,
		log:      log.With("component", "auth_service"),
	}
}

type RegisterInput struct {
	Username string
	Fullname string
	Email    string
	Password string
	Avatar   *LocalFile
	Cover    *LocalFile
}

func (in *RegisterInput) normalize() {
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	in.Fullname = strings.TrimSpace(in.Fullname)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
}

func (in *RegisterInput) missingFields() []string {
	var missing []string
	if in.Fullname == "" {
		missing = append(missing, "Fullname is required")
	}
	if in.Email == "" {
		missing = append(missing, "Email is required")
	}
	if in.Username == "" {
		missing = append(missing, "Username is required")
	}
	if strings.TrimSpace(in.Password) == "" {
		missing = append(missing, "Password is required")
	}
	return missing
}

type LoginInput struct {
	Username string
	Email    string
	Password string
}

type AuthResult struct {
	User   *domain.PublicUser
	Tokens *auth.TokenPair
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.PublicUser, error) {
	input.normalize()

	// staged files the flow never reaches must not linger on disk
	defer s.media.discard(ctx, input.Avatar)
	defer s.media.discard(ctx, input.Cover)

	if missing := input.missingFields(); len(missing) > 0 {
		return nil, domain.ValidationError(missing[0], missing...)
	}

	_, err := s.users.GetByUsernameOrEmail(ctx, input.Username, input.Email)
	switch {
	case err == nil:
		return nil, domain.ConflictError("User with this username or email already exists")
	case !errors.Is(err, repository.ErrNotFound):
		return nil, domain.InternalError(err)
	}

	if input.Avatar == nil || input.Avatar.Path == "" {
		return nil, domain.ValidationError("Avatar file is required")
	}

	avatarURL, err := s.media.upload(ctx, input.Avatar)
	if err != nil {
		return nil, domain.UploadError("Error uploading avatar", err)
	}

	var coverURL string
	if input.Cover != nil && input.Cover.Path != "" {
		coverURL, err = s.media.upload(ctx, input.Cover)
		if err != nil {
			s.log.Warn(ctx, "cover image upload failed", "username", input.Username, "error", err)
			coverURL = ""
		}
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, domain.InternalError(err)
	}

	user := &domain.User{
		Username:     input.Username,
		Fullname:     input.Fullname,
		Email:        input.Email,
		Avatar:       avatarURL,
		CoverImage:   coverURL,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, domain.ConflictError("User with this username or email already exists")
		}
		return nil, domain.InternalError(err)
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID, "username", user.Username)
	return user.Public(), nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	username := strings.ToLower(strings.TrimSpace(input.Username))
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if username == "" && email == "" {
		return nil, domain.ValidationError("Username or email is required")
	}
	if strings.TrimSpace(input.Password) == "" {
		return nil, domain.ValidationError("Password is required")
	}

	user, err := s.users.GetByUsernameOrEmail(ctx, username, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NotFoundError("User does not exist")
		}
		return nil, domain.InternalError(err)
	}

	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		return nil, domain.UnauthorizedError("Username or password is incorrect").WithStatus(http.StatusBadRequest)
	}

	tokens, err := s.startSession(ctx, user)
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(user.ID, EventSessionStarted, nil)
	s.log.Info(ctx, "user logged in", "user_id", user.ID)

	return &AuthResult{User: user.Public(), Tokens: tokens}, nil
}

// Logout clears the stored refresh token. Repeating it leaves the same state.
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.UpdateRefreshToken(ctx, userID, nil); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.NotFoundError("User does not exist")
		}
		return domain.InternalError(err)
	}

	s.notifier.Notify(userID, EventSessionEnded, nil)
	s.log.Info(ctx, "user logged out", "user_id", userID)
	return nil
}

// RefreshAccessToken exchanges the user's current refresh token for a new
// pair. The presented token is superseded, so replaying it fails.
func (s *AuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	if refreshToken == "" {
		return nil, domain.UnauthorizedError("Unauthorized request")
	}

	claims, err := s.verifier.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, domain.UnauthorizedError("Refresh token is expired or invalid").Wrap(err)
	}

	user, err := s.users.GetByID(ctx, claims.UserUUID())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.UnauthorizedError("Invalid refresh token")
		}
		return nil, domain.InternalError(err)
	}

	if !user.HasRefreshToken() ||
		subtle.ConstantTimeCompare([]byte(*user.RefreshToken), []byte(refreshToken)) != 1 {
		s.log.Warn(ctx, "refresh token reuse rejected", "user_id", user.ID)
		return nil, domain.UnauthorizedError("Refresh token is expired or used")
	}

	tokens, err := s.issuer.IssuePair(user)
	if err != nil {
		return nil, domain.InternalError(err)
	}

	// A concurrent refresh or logout may have replaced the token since it
	// was read; only one caller wins the swap.
	if err := s.users.RotateRefreshToken(ctx, user.ID, refreshToken, tokens.RefreshToken); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Warn(ctx, "refresh token reuse rejected", "user_id", user.ID)
			return nil, domain.UnauthorizedError("Refresh token is expired or used")
		}
		return nil, domain.InternalError(err)
	}
	return tokens, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		var missing []string
		if oldPassword == "" {
			missing = append(missing, "Old password is required")
		}
		if newPassword == "" {
			missing = append(missing, "New password is required")
		}
		return domain.ValidationError(missing[0], missing...)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.NotFoundError("User does not exist")
		}
		return domain.InternalError(err)
	}

	if !s.hasher.Verify(oldPassword, user.PasswordHash) {
		return domain.UnauthorizedError("Invalid old password").WithStatus(http.StatusBadRequest)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return domain.InternalError(err)
	}
	if err := s.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return domain.InternalError(err)
	}

	s.notifier.Notify(userID, EventPasswordChanged, nil)
	s.log.Info(ctx, "password changed", "user_id", userID)
	return nil
}

// startSession issues a fresh pair and stores its refresh token as the
// user's only active one.
func (s *AuthService) startSession(ctx context.Context, user *domain.User) (*auth.TokenPair, error) {
	tokens, err := s.issuer.IssuePair(user)
	if err != nil {
		return nil, domain.InternalError(err)
	}

	if err := s.users.UpdateRefreshToken(ctx, user.ID, &tokens.RefreshToken); err != nil {
		return nil, domain.InternalError(err)
	}
	user.RefreshToken = &tokens.RefreshToken
	return tokens, nil
}
