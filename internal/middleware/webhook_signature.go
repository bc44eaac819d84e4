package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go_phrase_texter/internal/model"
	"go_phrase_texter/internal/webutil"
)

const (
	WebhookTimestampHeader = "X-Webhook-Timestamp"
	WebhookSignatureHeader = "X-Webhook-Signature"

	webhookSignaturePrefix = "v1,"
	maxWebhookBodyBytes    = 64 << 10
)

// SignWebhook returns the signature header value for body sent at timestamp
// (unix seconds): "v1," followed by hex HMAC-SHA256 of "<timestamp>.<body>".
func SignWebhook(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	return webhookSignaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// WebhookSignatureMiddleware lets a request through only when it carries a
// valid signature made with secret within tolerance of now. An empty secret
// rejects everything. The body is restored for the next handler.
func WebhookSignatureMiddleware(secret string, tolerance time.Duration, now func() time.Time) func(http.Handler) http.Handler {
	if now == nil {
		now = time.Now
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := GetLogger(r.Context())

			if secret == "" {
				logger.Warn("Webhook rejected: no webhook secret configured")
				webutil.HandleError(w, logger, model.NewAppError("WEBHOOK_DISABLED", "Inbound webhooks are not enabled.", "", model.ErrForbidden))
				return
			}

			timestamp := r.Header.Get(WebhookTimestampHeader)
			signature := r.Header.Get(WebhookSignatureHeader)
			if timestamp == "" || !strings.HasPrefix(signature, webhookSignaturePrefix) {
				logger.Warn("Webhook rejected: missing signature headers")
				webutil.HandleError(w, logger, model.NewAppError("MISSING_SIGNATURE", "Webhook signature headers are required.", "", model.ErrUnauthorized))
				return
			}

			sentAt, err := strconv.ParseInt(timestamp, 10, 64)
			if err != nil || absDuration(now().Sub(time.Unix(sentAt, 0))) > tolerance {
				logger.Warn("Webhook rejected: timestamp outside tolerance", "timestamp", timestamp)
				webutil.HandleError(w, logger, model.NewAppError("INVALID_SIGNATURE", "The webhook signature is invalid.", "", model.ErrForbidden))
				return
			}

			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes))
			if err != nil {
				webutil.HandleError(w, logger, model.NewAppError("INVALID_REQUEST_BODY", "The request body could not be read.", "", model.ErrInvalidInput))
				return
			}

			expected := SignWebhook(secret, timestamp, body)
			if !hmac.Equal([]byte(expected), []byte(signature)) {
				logger.Warn("Webhook rejected: signature mismatch")
				webutil.HandleError(w, logger, model.NewAppError("INVALID_SIGNATURE", "The webhook signature is invalid.", "", model.ErrForbidden))
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r)
		})
	}
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
