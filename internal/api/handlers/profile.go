package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dom/account-service/internal/api/middleware"
	"github.com/dom/account-service/internal/api/response"
	"github.com/dom/account-service/internal/domain"
	"github.com/dom/account-service/internal/logging"
	"github.com/dom/account-service/internal/service"
	"github.com/google/uuid"
)

type ProfileHandler struct {
	profileService *service.ProfileService
	stager         fileStager
	log            logging.Logger
}

func NewProfileHandler(profileService *service.ProfileService, uploadDir string, maxUploadBytes int64, log logging.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		stager:         fileStager{dir: uploadDir, maxBytes: maxUploadBytes},
		log:            log,
	}
}

type UpdateDetailsRequest struct {
	Fullname string `json:"fullname"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// CurrentUser answers from the user the auth middleware already loaded.
func (h *ProfileHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Error(w, r, h.log, domain.UnauthorizedError("Unauthorized request"))
		return
	}
	response.JSON(w, http.StatusOK, user, "Current user fetched successfully")
}

func (h *ProfileHandler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Error(w, r, h.log, domain.UnauthorizedError("Unauthorized request"))
		return
	}

	var req UpdateDetailsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, h.log, domain.ValidationError("Invalid request body"))
		return
	}
	fullname := req.Fullname
	if fullname == "" {
		fullname = req.FullName
	}

	user, err := h.profileService.UpdateDetails(r.Context(), userID, service.UpdateDetailsInput{
		Fullname: fullname,
		Email:    req.Email,
	})
	if err != nil {
		response.Error(w, r, h.log, err)
		return
	}

	response.JSON(w, http.StatusOK, user, "Account details updated successfully")
}

func (h *ProfileHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "avatar", h.profileService.UpdateAvatar, "Avatar image updated successfully")
}

func (h *ProfileHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "coverImage", h.profileService.UpdateCoverImage, "Cover image updated successfully")
}

func (h *ProfileHandler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Error(w, r, h.log, domain.UnauthorizedError("Unauthorized request"))
		return
	}

	history, err := h.profileService.GetWatchHistory(r.Context(), userID)
	if err != nil {
		response.Error(w, r, h.log, err)
		return
	}

	response.JSON(w, http.StatusOK, history, "Watch history fetched successfully")
}

type imageUpdater func(ctx context.Context, userID uuid.UUID, file *service.LocalFile) (*domain.PublicUser, error)

func (h *ProfileHandler) updateImage(w http.ResponseWriter, r *http.Request, field string, update imageUpdater, message string) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Error(w, r, h.log, domain.UnauthorizedError("Unauthorized request"))
		return
	}

	if err := h.stager.parse(w, r); err != nil {
		response.Error(w, r, h.log, err)
		return
	}

	file, err := h.stager.stage(r, field)
	defer cleanup(r, file)
	if err != nil {
		response.Error(w, r, h.log, err)
		return
	}

	user, err := update(r.Context(), userID, file)
	if err != nil {
		response.Error(w, r, h.log, err)
		return
	}

	response.JSON(w, http.StatusOK, user, message)
}
