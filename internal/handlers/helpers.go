package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"go_phrase_texter/internal/model"
	"go_phrase_texter/internal/webutil"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// deliveryFailedMessage is what clients see for a failed text. The underlying
// error can name another user's phone number and is only logged.
const deliveryFailedMessage = "Saved, but a text message could not be delivered."

// deliveryError separates a text delivery failure from a real failure. When
// the resource was saved, a delivery failure is reported in the response body
// rather than as an error status.
func deliveryError(logger *slog.Logger, saved bool, err error) (string, error) {
	if err == nil {
		return "", nil
	}
	if saved && errors.Is(err, model.ErrDeliveryFailed) {
		logger.Warn("Saved but text delivery failed", "error", err)
		return deliveryFailedMessage, nil
	}
	return "", err
}

func parseUUIDParam(w http.ResponseWriter, r *http.Request, logger *slog.Logger, name string) (uuid.UUID, bool) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		logger.Warn("Invalid ID format in URL", "param", name, "value", raw)
		webutil.HandleError(w, logger, model.NewAppError("INVALID_URL_PARAM", "The "+name+" is not a valid ID.", name, model.ErrInvalidInput))
		return uuid.Nil, false
	}
	return id, true
}
