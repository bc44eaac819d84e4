// Package metrics holds the prometheus collectors for domain events.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "phrase_texter"

const (
	KindNew    = "new"
	KindResend = "resend"
	KindManual = "manual"
)

var (
	// QueriesSent counts delivered quiz texts by kind.
	QueriesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_sent_total",
			Help:      "Number of quiz queries delivered to students",
		},
		[]string{"kind"},
	)
	AttemptsGraded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attempts_graded_total",
			Help:      "Number of attempts graded, by result status",
		},
		[]string{"result_status"},
	)
	ChallengesCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "challenges_completed_total",
			Help:      "Number of challenges that reached their required streak",
		},
	)
	ChallengesPromoted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "challenges_promoted_total",
			Help:      "Number of challenges moved into the active set",
		},
	)
	MessagesFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_failed_total",
			Help:      "Number of text messages the transport failed to deliver",
		},
	)
)

// Register adds the domain collectors to reg. Call it once from main.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		QueriesSent,
		AttemptsGraded,
		ChallengesCompleted,
		ChallengesPromoted,
		MessagesFailed,
	)
}
