package webutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go_phrase_texter/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", model.ErrNotFound, http.StatusNotFound},
		{"invalid input", model.ErrInvalidInput, http.StatusBadRequest},
		{"conflict", model.ErrConflict, http.StatusConflict},
		{"stale object is a conflict", model.ErrStaleObject, http.StatusConflict},
		{"unauthorized", model.ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", model.ErrForbidden, http.StatusForbidden},
		{"rate limited", model.ErrTooManyRequests, http.StatusTooManyRequests},
		{"delivery failed", fmt.Errorf("%w: carrier down", model.ErrDeliveryFailed), http.StatusBadGateway},
		{"app error unwraps", model.NewAppError("ALREADY_ATTEMPTED", "x", "", model.ErrConflict), http.StatusConflict},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestHandleError(t *testing.T) {
	t.Run("app error exposes its detail", func(t *testing.T) {
		rr := httptest.NewRecorder()
		HandleError(rr, discard, model.NewAppError("CHALLENGE_NOT_FOUND", "Challenge not found.", "challenge_id", model.ErrNotFound))

		assert.Equal(t, http.StatusNotFound, rr.Code)
		var resp model.APIErrorResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "CHALLENGE_NOT_FOUND", resp.Error.Code)
		assert.Equal(t, "challenge_id", resp.Error.Field)
	})

	t.Run("plain error is hidden", func(t *testing.T) {
		rr := httptest.NewRecorder()
		HandleError(rr, discard, errors.New("pq: connection refused"))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "connection refused")
		assert.Contains(t, rr.Body.String(), "INTERNAL_SERVER_ERROR")
	})
}

type sampleRequest struct {
	Username    string `json:"username" validate:"required"`
	PhoneNumber string `json:"phone_number" validate:"required,e164"`
	Streak      *int   `json:"required_streak_for_completion,omitempty" validate:"omitempty,min=1"`
}

func TestDecodeJSONBody(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantCode   string
		wantFields string
	}{
		{name: "valid", body: `{"username":"drew","phone_number":"+15550000001"}`},
		{name: "empty body", body: ``, wantCode: "INVALID_REQUEST_BODY"},
		{name: "malformed", body: `{"username":`, wantCode: "INVALID_REQUEST_BODY"},
		{name: "unknown field", body: `{"username":"drew","phone_number":"+15550000001","admin":true}`, wantCode: "INVALID_REQUEST_BODY"},
		{name: "missing fields", body: `{}`, wantCode: "VALIDATION_ERROR", wantFields: "username,phone_number"},
		{name: "bad phone", body: `{"username":"drew","phone_number":"555-0001"}`, wantCode: "VALIDATION_ERROR", wantFields: "phone_number"},
		{name: "streak below one", body: `{"username":"drew","phone_number":"+15550000001","required_streak_for_completion":0}`, wantCode: "VALIDATION_ERROR", wantFields: "required_streak_for_completion"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst sampleRequest

			err := DecodeJSONBody(httptest.NewRecorder(), req, &dst)

			if tt.wantCode == "" {
				require.NoError(t, err)
				assert.Equal(t, "drew", dst.Username)
				return
			}
			assert.ErrorIs(t, err, model.ErrInvalidInput)
			var appErr *model.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.wantCode, appErr.Detail.Code)
			if tt.wantFields != "" {
				assert.Equal(t, tt.wantFields, appErr.Detail.Field)
			}
		})
	}
}

func TestValidationMessagesAreEnglish(t *testing.T) {
	err := Validator.Struct(&sampleRequest{PhoneNumber: "+15550000001"})
	require.Error(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"phone_number":"+15550000001"}`))
	err = DecodeJSONBody(httptest.NewRecorder(), req, &sampleRequest{})

	var appErr *model.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Username is required.", appErr.Detail.Message)
}
