// internal/config/constants.go
package config

import "time"

const (
	AppName    = "phrase-texter"
	AppVersion = "1.0.0"
)

const (
	DefaultDatabaseDriver = "postgres"
	DefaultServerPort     = ":8080"
	DefaultLogLevel       = "info"
	DefaultFrontendURL    = "localhost:4200"

	DefaultMaxActive         = 10
	DefaultRequiredStreak    = 5
	DefaultAttemptRetryLimit = 3

	DefaultTimeZone               = "America/Los_Angeles"
	DefaultStartHour              = 8
	DefaultEndHour                = 23
	DefaultMinInterval            = time.Hour
	DefaultResendProbability      = 0.1
	DefaultLearningLanguageWeight = 0.66
	DefaultTickInterval           = time.Minute

	DefaultAccessTokenTTL = 24 * time.Hour

	DefaultRateLimitRPS   = 1.0
	DefaultRateLimitBurst = 5

	DefaultWebhookTolerance = 5 * time.Minute
)
