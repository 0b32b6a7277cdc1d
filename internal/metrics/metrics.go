// Package metrics exposes gameplay counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Economy metrics
var (
	PressesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNamePressesTotal,
			Help: HelpTextPressesTotal,
		},
		[]string{LabelSource},
	)

	UpgradesPurchased = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameUpgradesPurchased,
			Help: HelpTextUpgradesPurchased,
		},
		[]string{LabelUpgrade},
	)

	KeysUnlocked = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameKeysUnlocked,
			Help: HelpTextKeysUnlocked,
		},
	)

	LifetimePresses = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameLifetimePresses,
			Help: HelpTextLifetimePresses,
		},
	)
)

// Challenge metrics
var (
	ChallengesCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameChallengesCompleted,
			Help: HelpTextChallengesCompleted,
		},
		[]string{LabelKind},
	)

	ChallengeScore = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameChallengeScore,
			Help:    HelpTextChallengeScore,
			Buckets: ChallengeScoreBuckets,
		},
		[]string{LabelKind},
	)
)

// Persistence metrics
var (
	SavesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameSavesTotal,
			Help: HelpTextSavesTotal,
		},
		[]string{LabelResult},
	)
)
