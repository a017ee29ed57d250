// internal/event/handler.go
package event

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
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

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string `json:"title" validate:"required"`
		Description string `json:"description" validate:"required"`
		EventType   Type   `json:"event_type" validate:"required"`
		Location    string `json:"location" validate:"required"`
		Date        string `json:"date" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteValidationError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.WriteValidationError(w, err)
		return
	}
	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		api.WriteValidationError(w, apperr.BadRequest("INVALID_DATE", "date must be RFC 3339"))
		return
	}

	created, err := h.service.Create(r.Context(), CreateInput{
		Title:       req.Title,
		Description: req.Description,
		EventType:   req.EventType,
		Location:    req.Location,
		Date:        date,
	})
	if err != nil {
		api.WriteError(w, h.logger, err)
		return
	}

	h.logger.Info("event created", zap.String("event_id", created.ID.String()))
	api.WriteSuccess(w, http.StatusCreated, created)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.WriteValidationError(w, apperr.BadRequest("INVALID_ID", "invalid event id"))
		return
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		EventType   *Type   `json:"event_type"`
		Location    *string `json:"location"`
		Date        *string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteValidationError(w, err)
		return
	}

	updated, err := h.service.Update(r.Context(), id, UpdateInput(req))
	if err != nil {
		api.WriteError(w, h.logger, err)
		return
	}

	api.WriteSuccess(w, http.StatusOK, updated)
}

func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.WriteValidationError(w, apperr.BadRequest("INVALID_ID", "invalid event id"))
		return
	}

	// The reason body is optional.
	var req struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		api.WriteValidationError(w, err)
		return
	}

	result, err := h.service.Cancel(r.Context(), id, req.Reason)
	if err != nil {
		api.WriteError(w, h.logger, err)
		return
	}

	h.logger.Info("event cancelled",
		zap.String("event_id", id.String()),
		zap.String("notification_id", result.NotificationID.String()))
	api.WriteSuccess(w, http.StatusOK, result)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.WriteValidationError(w, apperr.BadRequest("INVALID_ID", "invalid event id"))
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		api.WriteError(w, h.logger, err)
		return
	}

	api.WriteSuccess(w, http.StatusOK, map[string]string{"message": "event deleted successfully"})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.WriteValidationError(w, apperr.BadRequest("INVALID_ID", "invalid event id"))
		return
	}

	detail, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		api.WriteError(w, h.logger, err)
		return
	}

	api.WriteSuccess(w, http.StatusOK, detail)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	events, err := h.service.GetAll(r.Context())
	if err != nil {
		api.WriteError(w, h.logger, err)
		return
	}
	api.WriteSuccess(w, http.StatusOK, events)
}

func (h *Handler) HandleRegisterMember(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.WriteValidationError(w, apperr.BadRequest("INVALID_ID", "invalid event id"))
		return
	}
	claims, ok := api.ClaimsFrom(r.Context())
	if !ok {
		api.WriteError(w, h.logger, auth.ErrInvalidToken)
		return
	}

	reg, err := h.service.RegisterMember(r.Context(), id, claims.MemberID)
	if err != nil {
		api.WriteError(w, h.logger, err)
		return
	}

	api.WriteSuccess(w, http.StatusCreated, reg)
}

func (h *Handler) HandleRegisterGuest(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.WriteValidationError(w, apperr.BadRequest("INVALID_ID", "invalid event id"))
		return
	}

	var req struct {
		Name  string `json:"name" validate:"required"`
		Phone string `json:"phone" validate:"required,numeric"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteValidationError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.WriteValidationError(w, err)
		return
	}

	reg, err := h.service.RegisterGuest(r.Context(), id, req.Name, req.Phone)
	if err != nil {
		api.WriteError(w, h.logger, err)
		return
	}

	api.WriteSuccess(w, http.StatusCreated, reg)
}
