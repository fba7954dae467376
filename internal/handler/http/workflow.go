package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hivx/My-store/internal/domain"
	"github.com/hivx/My-store/internal/service"
	"github.com/hivx/My-store/pkg/httputil"
	"github.com/hivx/My-store/pkg/validator"
)

// WorkflowHandler handles HTTP requests for order workflow endpoints.
type WorkflowHandler struct {
	service *service.WorkflowService
	logger  *slog.Logger
}

// NewWorkflowHandler creates a new workflow HTTP handler.
func NewWorkflowHandler(svc *service.WorkflowService, logger *slog.Logger) *WorkflowHandler {
	return &WorkflowHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// SetShippingRequest is the JSON request body for setting delivery details.
type SetShippingRequest struct {
	Name         string `json:"name" validate:"required"`
	Phone        string `json:"phone" validate:"required"`
	Province     string `json:"province" validate:"required"`
	Address      string `json:"address" validate:"required"`
	Instructions string `json:"instructions"`
}

// CancelRequest is the JSON request body for cancelling a workflow.
type CancelRequest struct {
	Reason string `json:"reason"`
}

// --- Handlers ---

// StartWorkflow handles POST /api/v1/workflows
func (h *WorkflowHandler) StartWorkflow(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	workflow, err := h.service.Start(r.Context(), sessionID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: workflow})
}

// GetWorkflow handles GET /api/v1/workflows/{id}
func (h *WorkflowHandler) GetWorkflow(w http.ResponseWriter, r *http.Request) {
	workflow, ok := h.authorizedWorkflow(w, r)
	if !ok {
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: workflow})
}

// AdvanceWorkflow handles POST /api/v1/workflows/{id}/advance
func (h *WorkflowHandler) AdvanceWorkflow(w http.ResponseWriter, r *http.Request) {
	workflow, ok := h.authorizedWorkflow(w, r)
	if !ok {
		return
	}

	advanced, err := h.service.Advance(r.Context(), workflow.ID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: advanced})
}

// SetShipping handles PUT /api/v1/workflows/{id}/shipping
func (h *WorkflowHandler) SetShipping(w http.ResponseWriter, r *http.Request) {
	workflow, ok := h.authorizedWorkflow(w, r)
	if !ok {
		return
	}

	var req SetShippingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	updated, err := h.service.SetShipping(r.Context(), workflow.ID, &domain.ShippingInfo{
		Name:         req.Name,
		Phone:        req.Phone,
		Province:     req.Province,
		Address:      req.Address,
		Instructions: req.Instructions,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: updated})
}

// ConfirmShipping handles POST /api/v1/workflows/{id}/confirm
func (h *WorkflowHandler) ConfirmShipping(w http.ResponseWriter, r *http.Request) {
	workflow, ok := h.authorizedWorkflow(w, r)
	if !ok {
		return
	}

	confirmed, err := h.service.ConfirmShipping(r.Context(), workflow.ID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: confirmed})
}

// CancelWorkflow handles POST /api/v1/workflows/{id}/cancel
func (h *WorkflowHandler) CancelWorkflow(w http.ResponseWriter, r *http.Request) {
	workflow, ok := h.authorizedWorkflow(w, r)
	if !ok {
		return
	}

	// Body is optional: cancelling without a reason is fine.
	var req CancelRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeBadRequest(w, "invalid request body: "+err.Error())
			return
		}
	}

	cancelled, err := h.service.Cancel(r.Context(), workflow.ID, req.Reason)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cancelled})
}

// --- Helpers ---

// authorizedWorkflow loads the workflow from the URL and verifies the caller's
// session owns it. Returns false if it already wrote an error response.
func (h *WorkflowHandler) authorizedWorkflow(w http.ResponseWriter, r *http.Request) (*domain.Workflow, bool) {
	sessionID, ok := sessionIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return nil, false
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeBadRequest(w, "workflow id is required")
		return nil, false
	}

	workflow, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return nil, false
	}

	if workflow.SessionID != sessionID {
		httputil.WriteJSON(w, http.StatusForbidden, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "FORBIDDEN", Message: "you do not have access to this workflow"},
		})
		return nil, false
	}

	return workflow, true
}
