package handler

import (
	"log/slog"
	"net/http"

	"github.com/attaboy/strokecheck/internal/auth"
	"github.com/attaboy/strokecheck/internal/domain"
	"github.com/attaboy/strokecheck/internal/form"
	"github.com/attaboy/strokecheck/internal/service"
)

// PageHandler serves the HTML surface.
type PageHandler struct {
	authSvc    *service.AuthService
	predictSvc *service.PredictionService
	tracker    *auth.Tracker
	render     *Renderer
	logger     *slog.Logger
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(
	authSvc *service.AuthService,
	predictSvc *service.PredictionService,
	tracker *auth.Tracker,
	render *Renderer,
	logger *slog.Logger,
) *PageHandler {
	return &PageHandler{
		authSvc:    authSvc,
		predictSvc: predictSvc,
		tracker:    tracker,
		render:     render,
		logger:     logger,
	}
}

// Home handles GET / and GET /home.
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	data := PageData{Title: "Home"}
	if s, ok := h.tracker.Authenticated(r); ok {
		data.Username = s.Username
	}
	h.render.Render(w, http.StatusOK, PageHome, data)
}

// LoginForm handles GET /login.
func (h *PageHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, http.StatusOK, PageLogin, PageData{Title: "Log in"})
}

// Login handles POST /login.
func (h *PageHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render.Render(w, http.StatusBadRequest, PageLogin, PageData{Title: "Log in", Error: service.MsgInvalidCredentials})
		return
	}
	c := form.ParseCredentials(r.PostForm)

	if err := h.authSvc.Login(r.Context(), w, c, ClientIP(r)); err != nil {
		h.render.Render(w, statusFor(err), PageLogin, PageData{
			Title: "Log in",
			Error: errorMessage(err),
			Form:  r.PostForm,
		})
		return
	}
	http.Redirect(w, r, "/index", http.StatusFound)
}

// RegisterForm handles GET /register.
func (h *PageHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, http.StatusOK, PageRegister, PageData{Title: "Register"})
}

// Register handles POST /register.
func (h *PageHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render.Render(w, http.StatusBadRequest, PageRegister, PageData{Title: "Register", Error: service.MsgCredentialsRequired})
		return
	}
	c := form.ParseCredentials(r.PostForm)

	if err := h.authSvc.Register(r.Context(), c); err != nil {
		if statusFor(err) >= http.StatusInternalServerError {
			LoggerFrom(r.Context(), h.logger).Error("registration failed", "username", c.Username, "error", err)
		}
		h.render.Render(w, statusFor(err), PageRegister, PageData{
			Title: "Register",
			Error: errorMessage(err),
			Form:  r.PostForm,
		})
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

// Logout handles GET /logout.
func (h *PageHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authSvc.Logout(r.Context(), w, r)
	http.Redirect(w, r, "/login", http.StatusFound)
}

// Index handles GET /index and GET /result.
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, http.StatusOK, PageIndex, PageData{
		Title:    "Prediction",
		Username: auth.UsernameFromContext(r.Context()),
	})
}

// Predict handles POST /predict and POST /result. Errors are shown inline
// on the prediction page.
func (h *PageHandler) Predict(w http.ResponseWriter, r *http.Request) {
	username := auth.UsernameFromContext(r.Context())
	data := PageData{Title: "Prediction", Username: username}

	if err := r.ParseForm(); err != nil {
		data.Error = "invalid form submission"
		h.render.Render(w, http.StatusOK, PageIndex, data)
		return
	}
	data.Form = r.PostForm

	p, err := h.predictSvc.PredictForm(r.Context(), username, r.PostForm)
	if err != nil {
		LoggerFrom(r.Context(), h.logger).Debug("prediction rejected", "username", username, "error", err)
		data.Error = errorMessage(err)
	} else {
		data.Prediction = &p
	}
	h.render.Render(w, http.StatusOK, PageIndex, data)
}

// statusFor maps err to the status of a re-rendered page.
func statusFor(err error) int {
	if appErr, ok := domain.AsAppError(err); ok {
		return appErr.Status
	}
	return http.StatusInternalServerError
}
