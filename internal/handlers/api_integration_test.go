//go:build integration

package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"go_phrase_texter/internal/config"
	"go_phrase_texter/internal/grader"
	"go_phrase_texter/internal/handlers"
	"go_phrase_texter/internal/middleware"
	"go_phrase_texter/internal/model"
	"go_phrase_texter/internal/repository"
	"go_phrase_texter/internal/service"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingMessenger struct {
	mu    sync.Mutex
	texts map[string][]string
}

func (m *recordingMessenger) Text(ctx context.Context, phoneNumber, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.texts == nil {
		m.texts = make(map[string][]string)
	}
	m.texts[phoneNumber] = append(m.texts[phoneNumber], body)
	return nil
}

func (m *recordingMessenger) last(phoneNumber string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	texts := m.texts[phoneNumber]
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}

func startPostgres(t *testing.T, logger *slog.Logger) *gorm.DB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	require.NoError(t, err, "Could not construct pool")
	pool.MaxWait = 120 * time.Second

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "15-alpine",
		Env: []string{
			"POSTGRES_USER=user",
			"POSTGRES_PASSWORD=secret",
			"POSTGRES_DB=phrase_texter",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err, "Could not start PostgreSQL resource")
	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("Could not purge resource: %s", err)
		}
	})

	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		host = "localhost"
	}
	dbURL := fmt.Sprintf("postgres://user:secret@%s:%s/phrase_texter?sslmode=disable", host, resource.GetPort("5432/tcp"))

	var db *gorm.DB
	err = pool.Retry(func() error {
		var errRetry error
		db, errRetry = repository.NewDB(config.DatabaseConfig{Driver: "postgres", URL: dbURL}, logger)
		return errRetry
	})
	require.NoError(t, err, "Could not connect to PostgreSQL")
	return db
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v), "body: %s", body)
	return v
}

type apiEnv struct {
	server    *httptest.Server
	messenger *recordingMessenger
	cfg       *config.Config
	db        *gorm.DB
}

func integrationConfig(maxActive, retryLimit int) *config.Config {
	return &config.Config{
		App: config.AppConfig{MaxActive: maxActive, DefaultRequiredStreak: 1, FrontendURL: "localhost:4200", AttemptRetryLimit: retryLimit},
		Inquisitor: config.InquisitorConfig{
			TimeZone: "UTC", StartHour: 0, EndHour: 24, MinInterval: time.Hour,
			ResendProbability: 0.1, LearningLanguageWeight: 0.66,
		},
		JWT:       config.JWTConfig{SecretKey: "integration-secret", AccessTokenTTL: time.Hour},
		RateLimit: config.RateLimitConfig{RPS: 1000, Burst: 1000},
		Webhook:   config.WebhookConfig{Secret: "integration-webhook-secret", Tolerance: time.Minute},
	}
}

// newAPIEnv serves the full stack against a fresh Postgres container.
func newAPIEnv(t *testing.T, cfg *config.Config) *apiEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db := startPostgres(t, logger)
	messenger := &recordingMessenger{}

	challengeRepo := repository.NewGormChallengeRepository()
	queryRepo := repository.NewGormQueryRepository()
	userRepo := repository.NewGormUserRepository()
	attemptRepo := repository.NewGormAttemptRepository()

	userSvc := service.NewUserService(db, userRepo, messenger, cfg)
	challengeSvc := service.NewChallengeService(db, challengeRepo, userRepo, messenger, cfg)
	attemptSvc := service.NewAttemptService(db, queryRepo, attemptRepo, userRepo, challengeSvc, messenger, cfg)
	inquisitor := service.NewInquisitor(db, challengeRepo, queryRepo, messenger, cfg, service.NewSeededRandom(7), nil)

	server := httptest.NewServer(handlers.NewRouter(handlers.RouterDeps{
		Config:      cfg,
		Logger:      logger,
		DB:          db,
		RateLimiter: middleware.NewRateLimiter(cfg.RateLimit),
		Users:       handlers.NewUserHandler(userSvc),
		Challenges:  handlers.NewChallengeHandler(challengeSvc, inquisitor),
		Queries:     handlers.NewQueryHandler(inquisitor, attemptSvc),
		SMSWebhook:  handlers.NewSMSWebhookHandler(attemptSvc),
	}))
	t.Cleanup(server.Close)

	return &apiEnv{server: server, messenger: messenger, cfg: cfg, db: db}
}

// signUp registers, confirms and logs in a user and returns auth headers.
func (e *apiEnv) signUp(t *testing.T, username, phone string) map[string]string {
	t.Helper()
	sendRequest(t, e.server, httpRequestDetails{Method: http.MethodPost, Path: "/api/v1/users", Body: map[string]string{
		"username": username, "phone_number": phone, "password": "password123",
	}}, http.StatusCreated)

	link := e.messenger.last(phone)
	_, rawQuery, found := strings.Cut(link, "?")
	require.True(t, found, "confirmation text has no link: %q", link)
	params, err := url.ParseQuery(rawQuery)
	require.NoError(t, err)

	sendRequest(t, e.server, httpRequestDetails{Method: http.MethodPost, Path: "/api/v1/users/confirm", Body: map[string]string{
		"user_id": params.Get("user_id"), "token": params.Get("token"),
	}}, http.StatusOK)
	login := decode[model.LoginResponse](t, sendRequest(t, e.server, httpRequestDetails{Method: http.MethodPost, Path: "/api/v1/auth/login", Body: map[string]string{
		"username": username, "password": "password123",
	}}, http.StatusOK))
	return map[string]string{"Authorization": "Bearer " + login.AccessToken}
}

func TestAPI_ChallengeRoundTrip(t *testing.T) {
	env := newAPIEnv(t, integrationConfig(2, 3))
	server, messenger := env.server, env.messenger

	sendRequest(t, server, httpRequestDetails{Method: http.MethodGet, Path: "/health"}, http.StatusOK)

	const phone = "+15550000001"
	sendRequest(t, server, httpRequestDetails{Method: http.MethodPost, Path: "/api/v1/users", Body: map[string]string{
		"username": "drew", "phone_number": phone, "password": "password123",
	}}, http.StatusCreated)

	link := messenger.last(phone)
	_, rawQuery, found := strings.Cut(link, "?")
	require.True(t, found, "confirmation text has no link: %q", link)
	params, err := url.ParseQuery(rawQuery)
	require.NoError(t, err)

	sendRequest(t, server, httpRequestDetails{Method: http.MethodPost, Path: "/api/v1/auth/login", Body: map[string]string{
		"username": "drew", "password": "password123",
	}}, http.StatusForbidden)
	sendRequest(t, server, httpRequestDetails{Method: http.MethodPost, Path: "/api/v1/users/confirm", Body: map[string]string{
		"user_id": params.Get("user_id"), "token": params.Get("token"),
	}}, http.StatusOK)
	login := decode[model.LoginResponse](t, sendRequest(t, server, httpRequestDetails{Method: http.MethodPost, Path: "/api/v1/auth/login", Body: map[string]string{
		"username": "drew", "password": "password123",
	}}, http.StatusOK))
	auth := map[string]string{"Authorization": "Bearer " + login.AccessToken}

	var created []*model.Challenge
	for _, texts := range [][2]string{{"hola", "hello"}, {"adiós", "goodbye"}, {"gracias", "thank you"}} {
		resp := decode[model.ChallengeResponse](t, sendRequest(t, server, httpRequestDetails{Method: http.MethodPost, Path: "/api/v1/challenges", Headers: auth, Body: map[string]string{
			"learning_language_text": texts[0], "native_language_text": texts[1],
		}}, http.StatusCreated))
		created = append(created, resp.Challenge)
	}
	assert.Equal(t, model.StatusActive, created[0].Status)
	assert.Equal(t, model.StatusActive, created[1].Status)
	assert.Equal(t, model.StatusQueued, created[2].Status)
	assert.Equal(t, "New challenge added! 'gracias' / 'thank you'.", messenger.last(phone))

	sendRequest(t, server, httpRequestDetails{Method: http.MethodPost, Path: "/api/v1/challenges/" + created[2].ChallengeID.String() + "/queries", Headers: auth}, http.StatusBadRequest)

	queryResp := decode[model.QueryResponse](t, sendRequest(t, server, httpRequestDetails{Method: http.MethodPost, Path: "/api/v1/challenges/" + created[0].ChallengeID.String() + "/queries", Headers: auth}, http.StatusCreated))
	query := queryResp.Query
	assert.Equal(t, query.Prompt(created[0]), messenger.last(phone))

	attemptPath := "/api/v1/queries/" + query.QueryID.String() + "/attempts"
	answer := grader.ExpectedAnswer(created[0], query.Language)
	graded := decode[model.AttemptResponse](t, sendRequest(t, server, httpRequestDetails{Method: http.MethodPost, Path: attemptPath, Headers: auth, Body: map[string]string{"text": strings.ToUpper(answer) + "!"}}, http.StatusCreated))
	assert.True(t, graded.Attempt.Correct)
	assert.Equal(t, model.ResultCorrectActiveSufficient, graded.Attempt.ResultStatus)
	assert.Equal(t, model.StatusComplete, graded.Challenge.Status)

	sendRequest(t, server, httpRequestDetails{Method: http.MethodPost, Path: attemptPath, Headers: auth, Body: map[string]string{"text": answer}}, http.StatusConflict)

	promoted := decode[model.Challenge](t, sendRequest(t, server, httpRequestDetails{Method: http.MethodGet, Path: "/api/v1/challenges/" + created[2].ChallengeID.String(), Headers: auth}, http.StatusOK))
	assert.Equal(t, model.StatusActive, promoted.Status)

	active := decode[[]model.Challenge](t, sendRequest(t, server, httpRequestDetails{Method: http.MethodGet, Path: "/api/v1/challenges?status=active", Headers: auth}, http.StatusOK))
	assert.Len(t, active, 2)

	// The SMS webhook answers the latest query for the sender.
	next := decode[model.QueryResponse](t, sendRequest(t, server, httpRequestDetails{Method: http.MethodPost, Path: "/api/v1/challenges/" + created[1].ChallengeID.String() + "/queries", Headers: auth}, http.StatusCreated))
	form := url.Values{"From": {phone}, "Body": {"no idea"}}

	unsigned := postSMS(t, server, "", form)
	assert.Equal(t, http.StatusUnauthorized, unsigned.StatusCode)

	resp := postSMS(t, server, env.cfg.Webhook.Secret, form)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	expected := grader.ExpectedAnswer(created[1], next.Query.Language)
	assert.Equal(t, fmt.Sprintf("Incorrect. The answer was %q.", expected), messenger.last(phone))
}

// Concurrent creations race on count(active); serializable transactions with
// retries must still fill exactly MAX_ACTIVE slots.
func TestAPI_ConcurrentCreatesRespectCapacity(t *testing.T) {
	const writers = 8
	env := newAPIEnv(t, integrationConfig(2, 2*writers))
	auth := env.signUp(t, "casey", "+15550000002")

	var wg sync.WaitGroup
	codes := make([]int, writers)
	for i := range writers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			raw, err := json.Marshal(map[string]string{
				"learning_language_text": fmt.Sprintf("frase %d", i),
				"native_language_text":   fmt.Sprintf("phrase %d", i),
			})
			if err != nil {
				return
			}
			req, err := http.NewRequest(http.MethodPost, env.server.URL+"/api/v1/challenges", bytes.NewReader(raw))
			if err != nil {
				return
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", auth["Authorization"])
			resp, err := env.server.Client().Do(req)
			if err != nil {
				return
			}
			defer resp.Body.Close()
			codes[i] = resp.StatusCode
		}(i)
	}
	wg.Wait()

	for i, code := range codes {
		assert.Equal(t, http.StatusCreated, code, "writer %d", i)
	}

	var active, queued int64
	require.NoError(t, env.db.Model(&model.Challenge{}).Where("status = ?", model.StatusActive).Count(&active).Error)
	require.NoError(t, env.db.Model(&model.Challenge{}).Where("status = ?", model.StatusQueued).Count(&queued).Error)
	assert.EqualValues(t, 2, active)
	assert.EqualValues(t, writers-2, queued)
}

// Concurrent correct answers to different queries of one challenge must each
// land on the streak exactly once.
func TestAPI_ConcurrentAttemptsCountEveryAnswer(t *testing.T) {
	const answers = 4
	env := newAPIEnv(t, integrationConfig(2, 4*answers))
	auth := env.signUp(t, "robin", "+15550000003")

	challenge := decode[model.ChallengeResponse](t, sendRequest(t, env.server, httpRequestDetails{Method: http.MethodPost, Path: "/api/v1/challenges", Headers: auth, Body: map[string]interface{}{
		"learning_language_text": "buenos días", "native_language_text": "good morning", "required_streak_for_completion": 10,
	}}, http.StatusCreated)).Challenge
	require.Equal(t, model.StatusActive, challenge.Status)

	queries := make([]*model.Query, answers)
	for i := range queries {
		queries[i] = decode[model.QueryResponse](t, sendRequest(t, env.server, httpRequestDetails{Method: http.MethodPost, Path: "/api/v1/challenges/" + challenge.ChallengeID.String() + "/queries", Headers: auth}, http.StatusCreated)).Query
	}

	var wg sync.WaitGroup
	codes := make([]int, answers)
	for i, q := range queries {
		wg.Add(1)
		go func(i int, q *model.Query) {
			defer wg.Done()
			raw, err := json.Marshal(map[string]string{"text": grader.ExpectedAnswer(challenge, q.Language)})
			if err != nil {
				return
			}
			req, err := http.NewRequest(http.MethodPost, env.server.URL+"/api/v1/queries/"+q.QueryID.String()+"/attempts", bytes.NewReader(raw))
			if err != nil {
				return
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", auth["Authorization"])
			resp, err := env.server.Client().Do(req)
			if err != nil {
				return
			}
			defer resp.Body.Close()
			codes[i] = resp.StatusCode
		}(i, q)
	}
	wg.Wait()

	for i, code := range codes {
		assert.Equal(t, http.StatusCreated, code, "answer %d", i)
	}

	final := decode[model.Challenge](t, sendRequest(t, env.server, httpRequestDetails{Method: http.MethodGet, Path: "/api/v1/challenges/" + challenge.ChallengeID.String(), Headers: auth}, http.StatusOK))
	assert.Equal(t, answers, final.CurrentStreak)
	assert.Equal(t, model.StatusActive, final.Status)
}
