package main

import (
	"log/slog"
	"net/http"

	"keyworker/internal/gateway"
	"keyworker/internal/platform/config"
	"keyworker/internal/platform/metrics"
	"keyworker/pkg/platform/circuit"
	"keyworker/pkg/platform/retry"
)

type gateways struct {
	prisonerSearch *gateway.PrisonerSearch
	prisonAPI      *gateway.PrisonAPI
	complexity     *gateway.ComplexityOfNeedAPI
	caseNotes      *gateway.CaseNotesAPI
	register       *gateway.PrisonRegister
}

// newGateways builds one client per upstream, each with its own breaker and
// the shared retry policy.
func newGateways(cfg config.GatewayConfig, log *slog.Logger, m *metrics.Metrics) gateways {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	policy := retry.Policy{
		MaxAttempts: cfg.RetryAttempts,
		Backoff:     cfg.RetryBackoff,
		Retryable:   gateway.IsRetryable,
	}
	client := func(name, baseURL string) *gateway.Client {
		return gateway.NewClient(name, baseURL,
			gateway.WithHTTPClient(httpClient),
			gateway.WithRetry(policy),
			gateway.WithBreaker(circuit.New(name)),
			gateway.WithMetrics(m),
			gateway.WithLogger(log),
		)
	}
	return gateways{
		prisonerSearch: gateway.NewPrisonerSearch(client("prisoner-search", cfg.PrisonerSearchURL)),
		prisonAPI:      gateway.NewPrisonAPI(client("prison-api", cfg.PrisonAPIURL)),
		complexity:     gateway.NewComplexityOfNeedAPI(client("complexity-of-need", cfg.ComplexityOfNeedURL)),
		caseNotes:      gateway.NewCaseNotesAPI(client("case-notes", cfg.CaseNotesURL)),
		register:       gateway.NewPrisonRegister(client("prison-register", cfg.PrisonRegisterURL)),
	}
}
