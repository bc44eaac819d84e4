package service_test

import (
	"fmt"
	"testing"
	"time"

	"go_phrase_texter/internal/config"
	"go_phrase_texter/internal/model"
	"go_phrase_texter/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a private in-memory database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			MaxActive:             10,
			DefaultRequiredStreak: 5,
			FrontendURL:           "localhost:4200",
			AttemptRetryLimit:     3,
		},
		Inquisitor: config.InquisitorConfig{
			TimeZone:               "America/Los_Angeles",
			StartHour:              8,
			EndHour:                23,
			MinInterval:            time.Hour,
			ResendProbability:      0.1,
			LearningLanguageWeight: 0.66,
		},
		JWT: config.JWTConfig{
			SecretKey:      "test-secret",
			AccessTokenTTL: 15 * time.Minute,
		},
	}
}

func seedUser(t *testing.T, db *gorm.DB, username, phone string) *model.User {
	t.Helper()
	user := &model.User{
		UserID:       uuid.New(),
		Username:     username,
		PhoneNumber:  phone,
		PasswordHash: "x",
		Confirmed:    true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// seedChallenge inserts a challenge directly, bypassing capacity checks.
func seedChallenge(t *testing.T, db *gorm.DB, creator, student *model.User, status model.ChallengeStatus, streak, required int) *model.Challenge {
	t.Helper()
	c := &model.Challenge{
		ChallengeID:                 uuid.New(),
		LearningLanguageText:        "hola " + uuid.NewString()[:8],
		NativeLanguageText:          "hello",
		Status:                      status,
		CurrentStreak:               streak,
		RequiredStreakForCompletion: required,
		CreatorID:                   creator.UserID,
		StudentID:                   student.UserID,
	}
	require.NoError(t, db.Omit("Creator", "Student", "Queries").Create(c).Error)
	// Keep creation order strictly increasing.
	time.Sleep(2 * time.Millisecond)
	return c
}

func seedQuery(t *testing.T, db *gorm.DB, c *model.Challenge, lang model.QueryLanguage, sentAt time.Time) *model.Query {
	t.Helper()
	q := &model.Query{
		QueryID:     uuid.New(),
		ChallengeID: c.ChallengeID,
		Language:    lang,
		LastSentAt:  sentAt,
	}
	require.NoError(t, db.Omit("Challenge", "Attempt").Create(q).Error)
	time.Sleep(2 * time.Millisecond)
	return q
}

func reloadChallenge(t *testing.T, db *gorm.DB, id uuid.UUID) *model.Challenge {
	t.Helper()
	var c model.Challenge
	require.NoError(t, db.Where("challenge_id = ?", id).First(&c).Error)
	return &c
}

func countByStatus(t *testing.T, db *gorm.DB, status model.ChallengeStatus) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&model.Challenge{}).Where("status = ?", status).Count(&n).Error)
	return n
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

// scriptedRandom replays fixed values; when a script runs out it returns 0.
type scriptedRandom struct {
	floats []float64
	ints   []int
}

func (r *scriptedRandom) Float64() float64 {
	if len(r.floats) == 0 {
		return 0
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func (r *scriptedRandom) IntN(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v % n
}
