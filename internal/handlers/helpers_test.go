package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"go_phrase_texter/internal/config"
	"go_phrase_texter/internal/handlers"
	"go_phrase_texter/internal/middleware"
	"go_phrase_texter/internal/model"
	servicemocks "go_phrase_texter/internal/service/mocks"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type httpRequestDetails struct {
	Method  string
	Path    string
	Body    interface{}
	Headers map[string]string
}

type routerFixture struct {
	cfg        *config.Config
	users      *servicemocks.UserService
	challenges *servicemocks.ChallengeService
	attempts   *servicemocks.AttemptService
	inquisitor *servicemocks.Inquisitor
	server     *httptest.Server
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	cfg := &config.Config{
		JWT:       config.JWTConfig{SecretKey: "test-secret", AccessTokenTTL: 15 * time.Minute},
		RateLimit: config.RateLimitConfig{RPS: 100, Burst: 100},
		Webhook:   config.WebhookConfig{Secret: "webhook-secret", Tolerance: 5 * time.Minute},
	}
	f := &routerFixture{
		cfg:        cfg,
		users:      new(servicemocks.UserService),
		challenges: new(servicemocks.ChallengeService),
		attempts:   new(servicemocks.AttemptService),
		inquisitor: new(servicemocks.Inquisitor),
	}

	router := handlers.NewRouter(handlers.RouterDeps{
		Config:      cfg,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		RateLimiter: middleware.NewRateLimiter(cfg.RateLimit),
		Users:       handlers.NewUserHandler(f.users),
		Challenges:  handlers.NewChallengeHandler(f.challenges, f.inquisitor),
		Queries:     handlers.NewQueryHandler(f.inquisitor, f.attempts),
		SMSWebhook:  handlers.NewSMSWebhookHandler(f.attempts),
	})
	f.server = httptest.NewServer(router)
	t.Cleanup(func() {
		f.server.Close()
		f.users.AssertExpectations(t)
		f.challenges.AssertExpectations(t)
		f.attempts.AssertExpectations(t)
		f.inquisitor.AssertExpectations(t)
	})
	return f
}

func (f *routerFixture) authHeaders(t *testing.T, userID uuid.UUID) map[string]string {
	t.Helper()
	claims := &model.JWTCustomClaims{
		Username: "drew",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    config.AppName,
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(f.cfg.JWT.SecretKey))
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + token}
}

// sendRequest sends the request, checks the status code and returns the body.
func sendRequest(t *testing.T, server *httptest.Server, details httpRequestDetails, expectedCode int) []byte {
	t.Helper()

	var reqBody io.Reader
	contentType := ""
	switch b := details.Body.(type) {
	case nil:
	case string:
		reqBody = strings.NewReader(b)
		contentType = "application/json"
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err, "Failed to marshal request body")
		reqBody = bytes.NewReader(raw)
		contentType = "application/json"
	}

	req, err := http.NewRequest(details.Method, server.URL+details.Path, reqBody)
	require.NoError(t, err, "Failed to create request")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for key, value := range details.Headers {
		req.Header.Set(key, value)
	}

	resp, err := server.Client().Do(req)
	require.NoError(t, err, "Failed to execute request")
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "Failed to read response body")
	assert.Equal(t, expectedCode, resp.StatusCode, "Status code mismatch: %s", respBody)
	return respBody
}

// postSMS posts form to the SMS webhook signed with secret. An empty secret
// sends the request unsigned.
func postSMS(t *testing.T, server *httptest.Server, secret string, form url.Values) *http.Response {
	t.Helper()
	body := form.Encode()
	req, err := http.NewRequest(http.MethodPost, server.URL+"/api/v1/webhooks/sms", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if secret != "" {
		timestamp := strconv.FormatInt(time.Now().Unix(), 10)
		req.Header.Set(middleware.WebhookTimestampHeader, timestamp)
		req.Header.Set(middleware.WebhookSignatureHeader, middleware.SignWebhook(secret, timestamp, []byte(body)))
	}

	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func verifyErrorCode(t *testing.T, body []byte, wantCode string) {
	t.Helper()
	var errResp model.APIErrorResponse
	require.NoError(t, json.Unmarshal(body, &errResp), "body: %s", body)
	assert.Equal(t, wantCode, errResp.Error.Code)
}
