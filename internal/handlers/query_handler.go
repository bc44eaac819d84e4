package handlers

import (
	"net/http"

	"go_phrase_texter/internal/middleware"
	"go_phrase_texter/internal/model"
	"go_phrase_texter/internal/service"
	"go_phrase_texter/internal/webutil"
)

type QueryHandler struct {
	inquisitor service.Inquisitor
	attempts   service.AttemptService
}

func NewQueryHandler(inquisitor service.Inquisitor, attempts service.AttemptService) *QueryHandler {
	return &QueryHandler{inquisitor: inquisitor, attempts: attempts}
}

// GetLatestQuery handles GET /queries/latest. 404 NO_QUERY until the first
// query goes out.
func (h *QueryHandler) GetLatestQuery(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context()).With("handler", "GetLatestQuery")

	query, err := h.inquisitor.LatestQuery(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	if query == nil {
		webutil.HandleError(w, logger, model.NewAppError("NO_QUERY", "No query has been sent yet.", "", model.ErrNotFound))
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, query)
}

// PostAttempt grades an answer to the query and advances its challenge.
func (h *QueryHandler) PostAttempt(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context()).With("handler", "PostAttempt")

	queryID, ok := parseUUIDParam(w, r, logger, "query_id")
	if !ok {
		return
	}

	var req model.PostAttemptRequest
	if err := webutil.DecodeJSONBody(w, r, &req); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	attempt, challenge, err := h.attempts.CreateAndProcess(r.Context(), queryID, req.Text)
	deliveryErr, err := deliveryError(logger, attempt != nil, err)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusCreated, &model.AttemptResponse{
		Attempt:       attempt,
		Challenge:     challenge,
		DeliveryError: deliveryErr,
	})
}
