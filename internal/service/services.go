package service

import (
	"fmt"

	"github.com/dom/account-service/internal/auth"
	"github.com/dom/account-service/internal/config"
	"github.com/dom/account-service/internal/logging"
	"github.com/dom/account-service/internal/repository"
	"github.com/dom/account-service/internal/storage"
)

type Services struct {
	Auth     *AuthService
	Profile  *ProfileService
	Verifier *auth.TokenVerifier
}

func NewServices(
	repos *repository.Repositories,
	cfg *config.Config,
	uploader storage.Uploader,
	notifier SessionNotifier,
	log logging.Logger,
) (*Services, error) {
	hasher, err := auth.NewHasher(cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("password hasher: %w", err)
	}

	tokenCfg := auth.TokenConfig{
		AccessSecret:  cfg.AccessTokenSecret,
		AccessTTL:     cfg.AccessTokenExpiry,
		RefreshSecret: cfg.RefreshTokenSecret,
		RefreshTTL:    cfg.RefreshTokenExpiry,
	}
	issuer := auth.NewTokenIssuer(tokenCfg)
	verifier := auth.NewTokenVerifier(tokenCfg)
	media := newMediaUploader(uploader, cfg.UploadTimeout, log)

	return &Services{
		Auth:     NewAuthService(repos.User, hasher, issuer, verifier, media, notifier, log),
		Profile:  NewProfileService(repos.User, media, log),
		Verifier: verifier,
	}, nil
}
