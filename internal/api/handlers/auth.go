package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/dom/account-service/internal/api/middleware"
	"github.com/dom/account-service/internal/api/response"
	"github.com/dom/account-service/internal/auth"
	"github.com/dom/account-service/internal/domain"
	"github.com/dom/account-service/internal/logging"
	"github.com/dom/account-service/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
	cookies     CookieSettings
	stager      fileStager
	log         logging.Logger
}

func NewAuthHandler(authService *service.AuthService, cookies CookieSettings, uploadDir string, maxUploadBytes int64, log logging.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookies:     cookies,
		stager:      fileStager{dir: uploadDir, maxBytes: maxUploadBytes},
		log:         log,
	}
}

type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type LoginResponse struct {
	User         *domain.PublicUser `json:"user"`
	AccessToken  string             `json:"accessToken"`
	RefreshToken string             `json:"refreshToken"`
}

// Register expects multipart/form-data with the text fields and an "avatar"
// file; "coverImage" is optional.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := h.stager.parse(w, r); err != nil {
		response.Error(w, r, h.log, err)
		return
	}

	avatar, err := h.stager.stage(r, "avatar")
	if err != nil {
		cleanup(r)
		response.Error(w, r, h.log, err)
		return
	}
	cover, err := h.stager.stage(r, "coverImage")
	defer cleanup(r, avatar, cover)
	if err != nil {
		response.Error(w, r, h.log, err)
		return
	}

	fullname := r.FormValue("fullname")
	if fullname == "" {
		fullname = r.FormValue("fullName")
	}

	user, err := h.authService.Register(r.Context(), service.RegisterInput{
		Username: r.FormValue("username"),
		Fullname: fullname,
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
		Avatar:   avatar,
		Cover:    cover,
	})
	if err != nil {
		response.Error(w, r, h.log, err)
		return
	}

	response.JSON(w, http.StatusCreated, user, "User registered successfully")
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, h.log, domain.ValidationError("Invalid request body"))
		return
	}

	result, err := h.authService.Login(r.Context(), service.LoginInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Error(w, r, h.log, err)
		return
	}

	h.cookies.setSession(w, result.Tokens)
	response.JSON(w, http.StatusOK, LoginResponse{
		User:         result.User,
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
	}, "User logged in successfully")
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Error(w, r, h.log, domain.UnauthorizedError("Unauthorized request"))
		return
	}

	if err := h.authService.Logout(r.Context(), userID); err != nil {
		response.Error(w, r, h.log, err)
		return
	}

	h.cookies.clearSession(w)
	response.JSON(w, http.StatusOK, struct{}{}, "User logged out")
}

// RefreshToken reads the refresh token from its cookie or, for clients that
// cannot hold cookies, from the JSON body.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var token string
	if c, err := r.Cookie(RefreshTokenCookie); err == nil {
		token = c.Value
	}
	if token == "" && r.Body != nil {
		var req RefreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			token = req.RefreshToken
		}
	}

	tokens, err := h.authService.RefreshAccessToken(r.Context(), token)
	if err != nil {
		response.Error(w, r, h.log, err)
		return
	}

	h.cookies.setSession(w, tokens)
	response.JSON(w, http.StatusOK, auth.TokenPair{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, "Access token refreshed")
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Error(w, r, h.log, domain.UnauthorizedError("Unauthorized request"))
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, h.log, domain.ValidationError("Invalid request body"))
		return
	}

	if err := h.authService.ChangePassword(r.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		response.Error(w, r, h.log, err)
		return
	}

	response.JSON(w, http.StatusOK, struct{}{}, "Password changed successfully")
}
