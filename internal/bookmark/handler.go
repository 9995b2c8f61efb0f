package bookmark

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mynews/mynews-api/internal/auth"
	"github.com/mynews/mynews-api/internal/httputil"
	"github.com/mynews/mynews-api/internal/logging"
)

// Handler contains HTTP handlers for the bookmark endpoints. All routes
// sit behind the auth guard, so the user id is always in the context.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Add handles bookmark creation
// @Summary      Add bookmark
// @Description  Save a bookmark for the authenticated user.
// @Tags         bookmarks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body Dto true "Bookmark fields"
// @Success      200 {object} Bookmark
// @Failure      400 {object} httputil.ErrorResponse "Validation error"
// @Failure      401 {object} httputil.ErrorResponse
// @Failure      500 {object} httputil.ErrorResponse
// @Router       /bookmarks [post]
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var dto Dto
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		logger.Warn("invalid bookmark request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	b, err := h.service.Add(r.Context(), userID, dto)
	if err != nil {
		var validationErr *auth.ValidationError
		if errors.As(err, &validationErr) {
			logger.Warn("bookmark rejected: validation error")
			httputil.RespondValidationError(w, "Input data validation failed", validationErr.Fields)
			return
		}
		logger.Error("failed to add bookmark", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to add bookmark", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("bookmark added", "user_id", userID, "bookmark_id", b.ID)
	httputil.RespondJSON(w, b, http.StatusOK)
}

// Remove handles bookmark deletion
// @Summary      Remove bookmark
// @Description  Delete a bookmark owned by the authenticated user.
// @Tags         bookmarks
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Bookmark id"
// @Success      204 "No Content"
// @Failure      401 {object} httputil.ErrorResponse
// @Failure      404 {object} httputil.ErrorResponse "No bookmark with that id for this user"
// @Failure      500 {object} httputil.ErrorResponse
// @Router       /bookmarks/{id} [delete]
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.RespondErrorWithCode(w, "bookmark not found", httputil.CodeBookmarkNotFound, http.StatusNotFound)
		return
	}

	if err := h.service.Remove(r.Context(), userID, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			logger.Warn("bookmark removal failed: not found", "user_id", userID, "bookmark_id", id)
			httputil.RespondErrorWithCode(w, "bookmark not found", httputil.CodeBookmarkNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to remove bookmark", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to remove bookmark", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("bookmark removed", "user_id", userID, "bookmark_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// List handles listing the authenticated user's bookmarks
// @Summary      List bookmarks
// @Description  Return all bookmarks owned by the authenticated user.
// @Tags         bookmarks
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} Bookmark
// @Failure      401 {object} httputil.ErrorResponse
// @Failure      500 {object} httputil.ErrorResponse
// @Router       /bookmarks [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	bookmarks, err := h.service.List(r.Context(), userID)
	if err != nil {
		logger.Error("failed to list bookmarks", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list bookmarks", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, bookmarks, http.StatusOK)
}
