package handlers

import (
	"net/http"

	"go_phrase_texter/internal/middleware"
	"go_phrase_texter/internal/model"
	"go_phrase_texter/internal/service"
	"go_phrase_texter/internal/webutil"
)

type UserHandler struct {
	service service.UserService
}

func NewUserHandler(s service.UserService) *UserHandler {
	return &UserHandler{service: s}
}

// Register creates an unconfirmed user and texts the confirmation link.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context()).With("handler", "Register")

	var req model.RegisterRequest
	if err := webutil.DecodeJSONBody(w, r, &req); err != nil {
		logger.Warn("Invalid registration request", "error", err)
		webutil.HandleError(w, logger, err)
		return
	}

	user, err := h.service.Register(r.Context(), &req)
	deliveryErr, err := deliveryError(logger, user != nil, err)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Registration successful", "user_id", user.UserID)
	webutil.RespondWithJSON(w, http.StatusCreated, &model.RegisterResponse{
		User:          model.NewUserResponse(user),
		DeliveryError: deliveryErr,
	})
}

// Confirm handles POST /users/confirm with the user_id and token from the
// texted link.
func (h *UserHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context()).With("handler", "Confirm")

	var req model.ConfirmRequest
	if err := webutil.DecodeJSONBody(w, r, &req); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	if err := h.service.Confirm(r.Context(), req.UserID, req.Token); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Your account is confirmed. You can log in now.",
	})
}

// Login returns a JWT for a confirmed user.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context()).With("handler", "Login")

	var req model.LoginRequest
	if err := webutil.DecodeJSONBody(w, r, &req); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, resp)
}

// GetMe handles GET /users/me for the user in the access token.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	user, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, model.NewUserResponse(user))
}
