// internal/notification/handler.go
package notification

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"fitclub/internal/api"
	"fitclub/internal/apperr"
	"fitclub/internal/auth"
)

type Handler struct {
	service  Service
	logger   *zap.Logger
	validate *validator.Validate
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger, validate: validator.New()}
}

// HandleCreate is the direct admin broadcast path.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title         string      `json:"title" validate:"required"`
		Message       string      `json:"message" validate:"required"`
		Type          Type        `json:"type" validate:"required"`
		TargetAll     bool        `json:"target_all"`
		TargetMembers []uuid.UUID `json:"target_members"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteValidationError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.WriteValidationError(w, err)
		return
	}
	if !req.TargetAll && len(req.TargetMembers) == 0 {
		api.WriteValidationError(w, apperr.BadRequest("NO_TARGETS", "either target_all or target_members is required"))
		return
	}

	created, err := h.service.Create(r.Context(), CreateInput{
		Title:         req.Title,
		Message:       req.Message,
		Type:          req.Type,
		TargetAll:     req.TargetAll,
		TargetMembers: req.TargetMembers,
	})
	if err != nil {
		api.WriteError(w, h.logger, err)
		return
	}

	h.logger.Info("notification created", zap.String("notification_id", created.ID.String()))
	api.WriteSuccess(w, http.StatusCreated, created)
}

// HandleListMine returns the authenticated member's feed.
func (h *Handler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	claims, ok := api.ClaimsFrom(r.Context())
	if !ok {
		api.WriteError(w, h.logger, auth.ErrInvalidToken)
		return
	}

	notifications, err := h.service.ListForMember(r.Context(), claims.MemberID)
	if err != nil {
		api.WriteError(w, h.logger, err)
		return
	}
	api.WriteSuccess(w, http.StatusOK, notifications)
}
