// Package imageprobe checks image URLs over HTTP before they are shown
package imageprobe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/alchemorsel/discovery/internal/infrastructure/config"
	"github.com/alchemorsel/discovery/internal/ports/outbound"
	apperrors "github.com/alchemorsel/discovery/pkg/errors"
	"github.com/alchemorsel/discovery/pkg/healthcheck"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// LatencyObserver records probe outcomes
type LatencyObserver interface {
	ProbeObserved(outcome string, elapsed time.Duration)
}

// Probe outcomes reported to LatencyObserver
const (
	OutcomeReachable   = "reachable"
	OutcomeUnreachable = "unreachable"
	OutcomeRejected    = "rejected"
	OutcomeBreakerOpen = "breaker_open"
)

// statusError is a definitive answer from the image host
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.code)
}

// Prober issues HEAD requests through a rate limiter and a circuit breaker
type Prober struct {
	client   *http.Client
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker[struct{}]
	observer LatencyObserver
	logger   *zap.Logger
}

var _ outbound.ImageProber = (*Prober)(nil)

// NewProber creates a prober from the images configuration
func NewProber(cfg config.ImagesConfig, observer LatencyObserver, logger *zap.Logger) *Prober {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("image-prober")

	timeout := cfg.ProbeTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 10
	}

	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "image-probe",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// A 4xx is the host answering; only transport errors and 5xx count
		IsSuccessful: func(err error) bool {
			var se *statusError
			return err == nil || (errors.As(err, &se) && se.code < http.StatusInternalServerError)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Prober{
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		limiter:  rate.NewLimiter(limit, burst),
		breaker:  breaker,
		observer: observer,
		logger:   logger,
	}
}

// Probe returns nil when url answers with a 2xx status
func (p *Prober) Probe(ctx context.Context, url string) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}

	start := time.Now()
	_, err := p.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, p.check(ctx, url)
	})
	p.observe(err, time.Since(start))

	if err != nil {
		return apperrors.NewImageUnreachableError(url, err)
	}
	return nil
}

func (p *Prober) check(ctx context.Context, url string) error {
	code, err := p.do(ctx, http.MethodHead, url)
	if err != nil {
		return err
	}
	// Some hosts refuse HEAD
	if code == http.StatusMethodNotAllowed {
		if code, err = p.do(ctx, http.MethodGet, url); err != nil {
			return err
		}
	}
	if code < 200 || code > 299 {
		return &statusError{code: code}
	}
	return nil
}

func (p *Prober) do(ctx context.Context, method, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	return resp.StatusCode, nil
}

func (p *Prober) observe(err error, elapsed time.Duration) {
	outcome := OutcomeReachable
	var se *statusError
	switch {
	case err == nil:
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		outcome = OutcomeBreakerOpen
	case errors.As(err, &se):
		outcome = OutcomeRejected
	default:
		outcome = OutcomeUnreachable
	}

	p.logger.Debug("Probed image", zap.String("outcome", outcome), zap.Duration("elapsed", elapsed))
	if p.observer != nil {
		p.observer.ProbeObserved(outcome, elapsed)
	}
}

// State exposes the breaker state for health reporting
func (p *Prober) State() string {
	return p.breaker.State().String()
}

// Checker reports the breaker as a health check. An open breaker degrades
// the service; fallback images keep every recipe displayable.
func (p *Prober) Checker() healthcheck.Checker {
	return healthcheck.NewCustomChecker("image_host", func(ctx context.Context) (healthcheck.Status, string, interface{}) {
		state := p.breaker.State()
		counts := p.breaker.Counts()
		metadata := map[string]interface{}{
			"state":                state.String(),
			"consecutive_failures": counts.ConsecutiveFailures,
		}
		switch state {
		case gobreaker.StateOpen:
			return healthcheck.StatusDegraded, "Image host circuit open", metadata
		case gobreaker.StateHalfOpen:
			return healthcheck.StatusDegraded, "Image host circuit recovering", metadata
		default:
			return healthcheck.StatusHealthy, "", metadata
		}
	})
}
