// internal/treat/handler.go
package treat

import (
	"encoding/json"
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

func (h *Handler) HandlePropose(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date     string `json:"date" validate:"required"`
		Location string `json:"location"`
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
	claims, ok := api.ClaimsFrom(r.Context())
	if !ok {
		api.WriteError(w, h.logger, auth.ErrInvalidToken)
		return
	}

	proposal, err := h.service.Propose(r.Context(), claims.MemberID, date, req.Location)
	if err != nil {
		api.WriteError(w, h.logger, err)
		return
	}

	h.logger.Info("treat proposed",
		zap.String("treat_id", proposal.Treat.ID.String()),
		zap.String("host_id", claims.MemberID.String()))
	api.WriteSuccess(w, http.StatusCreated, proposal)
}

func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.WriteValidationError(w, apperr.BadRequest("INVALID_ID", "invalid treat id"))
		return
	}

	proposal, err := h.service.Approve(r.Context(), id)
	if err != nil {
		api.WriteError(w, h.logger, err)
		return
	}

	h.logger.Info("treat approved", zap.String("treat_id", id.String()))
	api.WriteSuccess(w, http.StatusOK, proposal)
}

func (h *Handler) HandleChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.WriteValidationError(w, apperr.BadRequest("INVALID_ID", "invalid treat id"))
		return
	}

	var req struct {
		Status Status `json:"status" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteValidationError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.WriteValidationError(w, err)
		return
	}

	proposal, err := h.service.ChangeStatus(r.Context(), id, req.Status)
	if err != nil {
		api.WriteError(w, h.logger, err)
		return
	}

	api.WriteSuccess(w, http.StatusOK, proposal)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.WriteValidationError(w, apperr.BadRequest("INVALID_ID", "invalid treat id"))
		return
	}
	claims, ok := api.ClaimsFrom(r.Context())
	if !ok {
		api.WriteError(w, h.logger, auth.ErrInvalidToken)
		return
	}

	if err := h.service.Delete(r.Context(), id, claims.MemberID); err != nil {
		api.WriteError(w, h.logger, err)
		return
	}

	api.WriteSuccess(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *Handler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	claims, ok := api.ClaimsFrom(r.Context())
	if !ok {
		api.WriteError(w, h.logger, auth.ErrInvalidToken)
		return
	}

	proposals, err := h.service.ListForHost(r.Context(), claims.MemberID)
	if err != nil {
		api.WriteError(w, h.logger, err)
		return
	}
	api.WriteSuccess(w, http.StatusOK, proposals)
}

func (h *Handler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	proposals, err := h.service.ListAll(r.Context())
	if err != nil {
		api.WriteError(w, h.logger, err)
		return
	}
	api.WriteSuccess(w, http.StatusOK, proposals)
}
