package handlers

import (
	"net/http"

	"go_phrase_texter/internal/middleware"
	"go_phrase_texter/internal/model"
	"go_phrase_texter/internal/service"
	"go_phrase_texter/internal/webutil"
)

type ChallengeHandler struct {
	service    service.ChallengeService
	inquisitor service.Inquisitor
}

func NewChallengeHandler(s service.ChallengeService, inquisitor service.Inquisitor) *ChallengeHandler {
	return &ChallengeHandler{service: s, inquisitor: inquisitor}
}

// ListChallenges lists challenges, optionally filtered by ?status=.
func (h *ChallengeHandler) ListChallenges(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context()).With("handler", "ListChallenges")

	var status *model.ChallengeStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := model.ChallengeStatus(raw)
		status = &s
	}

	challenges, err := h.service.ListChallenges(r.Context(), status)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	if challenges == nil {
		challenges = []*model.Challenge{}
	}

	logger.Info("Challenges listed", "count", len(challenges))
	webutil.RespondWithJSON(w, http.StatusOK, challenges)
}

// PostChallenge creates a challenge owned by the caller. It is activated
// right away when there is room.
func (h *ChallengeHandler) PostChallenge(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context()).With("handler", "PostChallenge")

	creatorID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	var req model.PostChallengeRequest
	if err := webutil.DecodeJSONBody(w, r, &req); err != nil {
		logger.Warn("Invalid challenge request", "error", err)
		webutil.HandleError(w, logger, err)
		return
	}

	challenge, err := h.service.CreateAndActivate(r.Context(), creatorID, &req)
	deliveryErr, err := deliveryError(logger, challenge != nil, err)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Challenge posted", "challenge_id", challenge.ChallengeID, "status", challenge.Status)
	webutil.RespondWithJSON(w, http.StatusCreated, &model.ChallengeResponse{Challenge: challenge, DeliveryError: deliveryErr})
}

// GetChallenge handles GET /challenges/{challenge_id}.
func (h *ChallengeHandler) GetChallenge(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context()).With("handler", "GetChallenge")

	challengeID, ok := parseUUIDParam(w, r, logger, "challenge_id")
	if !ok {
		return
	}

	challenge, err := h.service.GetChallenge(r.Context(), challengeID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, challenge)
}

// PatchChallenge edits texts or the required streak. Only the creator may.
func (h *ChallengeHandler) PatchChallenge(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context()).With("handler", "PatchChallenge")

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	challengeID, ok := parseUUIDParam(w, r, logger, "challenge_id")
	if !ok {
		return
	}

	var req model.PatchChallengeRequest
	if err := webutil.DecodeJSONBody(w, r, &req); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	challenge, err := h.service.UpdateChallenge(r.Context(), userID, challengeID, &req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, challenge)
}

// DeleteChallenge handles DELETE /challenges/{challenge_id}. Only the creator
// may delete; a freed active slot is refilled from the queue.
func (h *ChallengeHandler) DeleteChallenge(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context()).With("handler", "DeleteChallenge")

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	challengeID, ok := parseUUIDParam(w, r, logger, "challenge_id")
	if !ok {
		return
	}

	if err := h.service.DeleteChallenge(r.Context(), userID, challengeID); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Challenge deleted", "challenge_id", challengeID)
	w.WriteHeader(http.StatusNoContent)
}

// PostChallengeQuery sends a query for one challenge immediately, outside
// the scheduler's window.
func (h *ChallengeHandler) PostChallengeQuery(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context()).With("handler", "PostChallengeQuery")

	challengeID, ok := parseUUIDParam(w, r, logger, "challenge_id")
	if !ok {
		return
	}

	query, err := h.inquisitor.SendChallengeQuery(r.Context(), challengeID)
	deliveryErr, err := deliveryError(logger, query != nil, err)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusCreated, &model.QueryResponse{Query: query, DeliveryError: deliveryErr})
}
