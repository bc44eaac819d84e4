package handlers

import (
	"net/http"
	"strings"

	"go_phrase_texter/internal/middleware"
	"go_phrase_texter/internal/model"
	"go_phrase_texter/internal/service"
	"go_phrase_texter/internal/webutil"
)

type SMSWebhookHandler struct {
	attempts service.AttemptService
}

func NewSMSWebhookHandler(attempts service.AttemptService) *SMSWebhookHandler {
	return &SMSWebhookHandler{attempts: attempts}
}

// ReceiveSMS takes an inbound text posted as a form with From and Body and
// treats it as an answer to the sender's latest query.
func (h *SMSWebhookHandler) ReceiveSMS(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context()).With("handler", "ReceiveSMS")

	if err := r.ParseForm(); err != nil {
		webutil.HandleError(w, logger, model.NewAppError("INVALID_REQUEST_BODY", "The form body could not be parsed.", "", model.ErrInvalidInput))
		return
	}
	from := strings.TrimSpace(r.PostForm.Get("From"))
	body := strings.TrimSpace(r.PostForm.Get("Body"))

	var missing []string
	if from == "" {
		missing = append(missing, "From")
	}
	if body == "" {
		missing = append(missing, "Body")
	}
	if len(missing) > 0 {
		webutil.HandleError(w, logger, model.NewAppError("VALIDATION_ERROR", "From and Body are required.", strings.Join(missing, ","), model.ErrInvalidInput))
		return
	}

	attempt, err := h.attempts.ReceiveMessage(r.Context(), from, body)
	deliveryErr, err := deliveryError(logger, attempt != nil, err)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, &model.AttemptResponse{Attempt: attempt, DeliveryError: deliveryErr})
}
