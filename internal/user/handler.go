package user

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mynews/mynews-api/internal/httputil"
	"github.com/mynews/mynews-api/internal/logging"
)

// Handler exposes the read-only users endpoints
type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// List handles listing all users
// @Summary      List users
// @Description  Return all users. Password hashes and tokens are never included.
// @Tags         users
// @Produce      json
// @Success      200 {array} User
// @Failure      500 {object} httputil.ErrorResponse
// @Router       /users [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	users, err := h.repo.List(r.Context())
	if err != nil {
		logger.Error("failed to list users", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list users", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, users, http.StatusOK)
}

// GetByID handles fetching a single user
// @Summary      Get user by id
// @Description  Return the user with the given id, or null when absent.
// @Tags         users
// @Produce      json
// @Param        id path int true "User id"
// @Success      200 {object} User
// @Failure      500 {object} httputil.ErrorResponse
// @Router       /users/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		// Non-numeric ids behave like missing users
		httputil.RespondJSON(w, nil, http.StatusOK)
		return
	}

	u, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondJSON(w, nil, http.StatusOK)
			return
		}
		logger.Error("failed to get user", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to get user", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, u, http.StatusOK)
}
