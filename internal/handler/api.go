package handler

import (
	"net/http"

	"github.com/attaboy/strokecheck/internal/auth"
	"github.com/attaboy/strokecheck/internal/form"
	"github.com/attaboy/strokecheck/internal/service"
)

// APIHandler serves the JSON API.
type APIHandler struct {
	authSvc    *service.AuthService
	predictSvc *service.PredictionService
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(authSvc *service.AuthService, predictSvc *service.PredictionService) *APIHandler {
	return &APIHandler{authSvc: authSvc, predictSvc: predictSvc}
}

// Login handles POST /api/v1/auth/login.
func (h *APIHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input form.Credentials
	if err := DecodeJSON(r, &input); err != nil {
		RespondJSON(w, http.StatusBadRequest, map[string]string{
			"code":    "VALIDATION_ERROR",
			"message": "invalid request body",
		})
		return
	}

	result, err := h.authSvc.IssueToken(r.Context(), input, ClientIP(r))
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, result)
}

// Predict handles POST /api/v1/predict.
func (h *APIHandler) Predict(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	p, err := h.predictSvc.PredictJSON(r.Context(), auth.UsernameFromContext(r.Context()), body)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, p)
}
