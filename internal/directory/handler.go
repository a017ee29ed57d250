// internal/directory/handler.go
package directory

import (
	"encoding/json"
	"net/http"

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

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name" validate:"required"`
		Phone    string `json:"phone" validate:"required,numeric"`
		Password string `json:"password" validate:"required,min=6"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteValidationError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.WriteValidationError(w, err)
		return
	}

	result, err := h.service.Register(r.Context(), req.Name, req.Phone, req.Password)
	if err != nil {
		api.WriteError(w, h.logger, err)
		return
	}

	h.logger.Info("member registered", zap.String("member_id", result.Member.ID.String()))
	api.WriteSuccess(w, http.StatusCreated, result)
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Identifier string `json:"identifier" validate:"required"`
		Password   string `json:"password" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteValidationError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.WriteValidationError(w, err)
		return
	}

	result, err := h.service.Login(r.Context(), req.Identifier, req.Password)
	if err != nil {
		api.WriteError(w, h.logger, err)
		return
	}

	api.WriteSuccess(w, http.StatusOK, result)
}

func (h *Handler) HandlePromote(w http.ResponseWriter, r *http.Request) {
	targetID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.WriteValidationError(w, apperr.BadRequest("INVALID_ID", "invalid member id"))
		return
	}
	claims, ok := api.ClaimsFrom(r.Context())
	if !ok {
		api.WriteError(w, h.logger, auth.ErrInvalidToken)
		return
	}

	member, err := h.service.PromoteToLeader(r.Context(), targetID, claims.MemberID)
	if err != nil {
		api.WriteError(w, h.logger, err)
		return
	}

	h.logger.Info("member promoted",
		zap.String("member_id", member.ID.String()),
		zap.String("acting_id", claims.MemberID.String()))
	api.WriteSuccess(w, http.StatusOK, member)
}

func (h *Handler) HandleDemote(w http.ResponseWriter, r *http.Request) {
	targetID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.WriteValidationError(w, apperr.BadRequest("INVALID_ID", "invalid member id"))
		return
	}

	member, err := h.service.Demote(r.Context(), targetID)
	if err != nil {
		api.WriteError(w, h.logger, err)
		return
	}

	api.WriteSuccess(w, http.StatusOK, member)
}

func (h *Handler) HandleCreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name" validate:"required"`
		Username string `json:"username" validate:"required"`
		Phone    string `json:"phone" validate:"required,numeric"`
		Password string `json:"password" validate:"required,min=6"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteValidationError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.WriteValidationError(w, err)
		return
	}
	claims, ok := api.ClaimsFrom(r.Context())
	if !ok {
		api.WriteError(w, h.logger, auth.ErrInvalidToken)
		return
	}

	result, err := h.service.CreateAdmin(r.Context(), req.Name, req.Username, req.Phone, req.Password, claims.MemberID)
	if err != nil {
		api.WriteError(w, h.logger, err)
		return
	}

	h.logger.Info("admin created", zap.String("member_id", result.Member.ID.String()))
	api.WriteSuccess(w, http.StatusCreated, result)
}

func (h *Handler) HandleListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.service.ListMembers(r.Context())
	if err != nil {
		api.WriteError(w, h.logger, err)
		return
	}
	api.WriteSuccess(w, http.StatusOK, members)
}
