package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(codesGenerated, redemptionsTotal, tokenChecks, codesExpiredUnused, tokensActive)
}

var (
	codesGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unlock_codes_generated_total",
			Help: "Codes issued, by duration spec.",
		},
		[]string{"duration_spec"},
	)

	redemptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redemptions_total",
			Help: "Redemption attempts by outcome (success/malformed/not_found/already_redeemed/expired/issuance_failed/storage_error).",
		},
		[]string{"outcome"},
	)

	tokenChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "token_checks_total",
			Help: "Token liveness checks by result (active/expired/not_found).",
		},
		[]string{"result"},
	)

	codesExpiredUnused = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "unlock_codes_expired_unused",
			Help: "Codes past their validity window that were never redeemed.",
		},
	)

	tokensActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "premium_tokens_active",
			Help: "Tokens whose stored expiry is still in the future.",
		},
	)
)

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func IncCodeGenerated(spec string) { codesGenerated.WithLabelValues(norm(spec)).Inc() }

func IncRedemption(outcome string) { redemptionsTotal.WithLabelValues(norm(outcome)).Inc() }

func IncTokenCheck(result string) { tokenChecks.WithLabelValues(norm(result)).Inc() }

func SetCodesExpiredUnused(n int) { codesExpiredUnused.Set(float64(n)) }

func SetTokensActive(n int) { tokensActive.Set(float64(n)) }
