package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"rotor-hq/rotor/pkg/credential"
	"rotor-hq/rotor/pkg/providers"
)

// state names one step of the per-request state machine. States only
// drive logging; transitions are encoded in Dispatch itself.
type state string

const (
	stateSelecting state = "selecting"
	stateCalling   state = "calling"
	stateRetrying  state = "retrying"
)

// Policy holds the two retry tunables. The delay is fixed per attempt;
// there is deliberately no backoff growth.
type Policy struct {
	// MaxAttempts is the attempt budget per request.
	MaxAttempts int

	// RetryDelay is the fixed wait between attempts.
	RetryDelay time.Duration
}

// DefaultPolicy mirrors the historical defaults: ten attempts, thirty
// seconds apart.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 10,
		RetryDelay:  30 * time.Second,
	}
}

// Request is one inbound chat request, already validated by the HTTP
// layer.
type Request struct {
	// Prompt is the user prompt.
	Prompt string

	// SystemPrompt is the system instruction (may be empty).
	SystemPrompt string

	// Providers optionally constrains credential selection to these
	// provider tags. Empty means any provider.
	Providers []string
}

// Result is a successful dispatch.
type Result struct {
	// Content is the provider's reply text.
	Content string

	// TokenType is the provider tag of the credential that produced it.
	TokenType string

	// CredentialID identifies the credential used (never the secret).
	CredentialID string

	// Attempts is how many provider calls the request took.
	Attempts int
}

// Observer receives dispatch lifecycle events. Implemented by the
// metrics collector; a nil Observer disables observation.
type Observer interface {
	// ObserveSelection records one selector outcome: "selected",
	// "none_eligible" or "error".
	ObserveSelection(outcome string)

	// ObserveAttempt records one provider call outcome: "success",
	// "rate_limited", "unauthorized", "transient" or "permanent".
	ObserveAttempt(provider, outcome string)

	// ObserveRequest records a completed dispatch.
	ObserveRequest(provider, status string, duration time.Duration)
}

// AttemptLogger receives a record of every completed attempt, success or
// failure. Implemented by the audit recorder; nil disables it. The
// implementation must not block.
type AttemptLogger interface {
	LogAttempt(ctx context.Context, credentialID, providerType, systemPrompt, prompt, outcome string)
}

// Orchestrator runs the dispatch state machine for each request:
//
//	SELECTING -> CALLING -> SUCCESS
//	                     -> FATAL      (unauthorized/permanent, or nothing eligible)
//	                     -> RETRYING -> SELECTING   (rate-limited/transient, budget left)
//	                                 -> EXHAUSTED   (budget spent)
//
// All state is request-local except the credential store behind the
// selector; a retry delay suspends only the issuing request.
type Orchestrator struct {
	selector *credential.Selector
	registry *providers.Registry
	policy   atomic.Pointer[Policy]

	observer Observer
	audit    AttemptLogger

	// sleep waits out the retry delay, honoring cancellation.
	// Replaceable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithObserver attaches a metrics observer.
func WithObserver(o Observer) Option {
	return func(orc *Orchestrator) { orc.observer = o }
}

// WithAttemptLogger attaches an audit logger.
func WithAttemptLogger(a AttemptLogger) Option {
	return func(orc *Orchestrator) { orc.audit = a }
}

// NewOrchestrator creates an orchestrator over the given selector and
// client registry.
func NewOrchestrator(selector *credential.Selector, registry *providers.Registry, policy Policy, opts ...Option) *Orchestrator {
	orc := &Orchestrator{
		selector: selector,
		registry: registry,
		sleep:    sleepCtx,
	}
	orc.policy.Store(&policy)

	for _, opt := range opts {
		opt(orc)
	}
	return orc
}

// SetPolicy replaces the retry policy. Safe to call while requests are
// in flight; each request snapshots the policy once at dispatch start.
func (o *Orchestrator) SetPolicy(p Policy) {
	o.policy.Store(&p)
}

// Policy returns the current retry policy.
func (o *Orchestrator) Policy() Policy {
	return *o.policy.Load()
}

// Dispatch runs one request to completion. It returns:
//
//   - credential.ErrNoneEligible when no credential is available; this
//     is not retried, since nothing changes until a cooldown expires
//   - the classified provider error for unauthorized/permanent outcomes
//   - *ExhaustedError when the attempt budget runs out
//   - the context error if the request is cancelled while selecting or
//     waiting out a retry delay
func (o *Orchestrator) Dispatch(ctx context.Context, req *Request) (*Result, error) {
	policy := o.Policy()
	start := time.Now()

	for attempt := 1; ; attempt++ {
		// SELECTING
		cred, err := o.selector.Select(ctx, req.Providers)
		if err != nil {
			o.observeSelection(err)
			o.observeRequest("none", "no_credential", start)
			return nil, err
		}
		o.observeSelection(nil)

		log := slog.With(
			"credential_id", cred.ID,
			"provider", cred.ProviderType,
			"attempt", attempt,
			"max_attempts", policy.MaxAttempts,
		)
		log.Debug("credential selected", "state", stateSelecting)

		client, err := o.registry.Get(cred.ProviderType)
		if err != nil {
			// A credential whose type has no client variant is a
			// configuration problem, fatal for this request.
			log.Error("no client for provider type", "error", err)
			o.observeRequest(cred.ProviderType, "fatal", start)
			return nil, err
		}

		// CALLING
		log.Debug("calling provider", "state", stateCalling)
		reply, err := client.Send(ctx, cred.Secret, &providers.ChatRequest{
			Prompt:       req.Prompt,
			SystemPrompt: req.SystemPrompt,
		})
		if err == nil {
			// SUCCESS
			o.observeAttempt(cred.ProviderType, "success")
			o.logAttempt(ctx, cred, req, reply)
			o.observeRequest(cred.ProviderType, "success", start)

			log.Info("dispatch succeeded",
				"attempts", attempt,
				"reply_len", len(reply),
			)
			return &Result{
				Content:      reply,
				TokenType:    cred.ProviderType,
				CredentialID: cred.ID,
				Attempts:     attempt,
			}, nil
		}

		outcome := classify(err)
		o.observeAttempt(cred.ProviderType, outcome)
		o.logAttempt(ctx, cred, req, "error: "+err.Error())

		if !providers.Retryable(err) {
			// FATAL. The credential stays selectable after its
			// cooldown; it is not disabled here.
			log.Warn("dispatch failed, not retriable",
				"outcome", outcome,
				"error", err,
			)
			o.observeRequest(cred.ProviderType, outcome, start)
			return nil, err
		}

		// RETRYING
		if attempt >= policy.MaxAttempts {
			// EXHAUSTED
			log.Warn("attempt budget exhausted",
				"attempts", attempt,
				"error", err,
			)
			o.observeRequest(cred.ProviderType, "exhausted", start)
			return nil, &ExhaustedError{Attempts: attempt, LastErr: err}
		}

		log.Info("retrying after delay",
			"state", stateRetrying,
			"outcome", outcome,
			"delay", policy.RetryDelay,
			"error", err,
		)
		if err := o.sleep(ctx, policy.RetryDelay); err != nil {
			o.observeRequest(cred.ProviderType, "cancelled", start)
			return nil, err
		}
	}
}

// classify maps a provider error onto its observation outcome label.
func classify(err error) string {
	var (
		authErr *providers.AuthError
		rlErr   *providers.RateLimitError
		trErr   *providers.TransientError
	)
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &authErr):
		return "unauthorized"
	case errors.As(err, &rlErr):
		return "rate_limited"
	case errors.As(err, &trErr):
		return "transient"
	default:
		return "permanent"
	}
}

func (o *Orchestrator) observeSelection(err error) {
	if o.observer == nil {
		return
	}
	switch {
	case err == nil:
		o.observer.ObserveSelection("selected")
	case errors.Is(err, credential.ErrNoneEligible):
		o.observer.ObserveSelection("none_eligible")
	default:
		o.observer.ObserveSelection("error")
	}
}

func (o *Orchestrator) observeAttempt(provider, outcome string) {
	if o.observer != nil {
		o.observer.ObserveAttempt(provider, outcome)
	}
}

func (o *Orchestrator) observeRequest(provider, status string, start time.Time) {
	if o.observer != nil {
		o.observer.ObserveRequest(provider, status, time.Since(start))
	}
}

func (o *Orchestrator) logAttempt(ctx context.Context, cred *credential.Credential, req *Request, outcome string) {
	if o.audit != nil {
		o.audit.LogAttempt(ctx, cred.ID, cred.ProviderType, req.SystemPrompt, req.Prompt, outcome)
	}
}

// sleepCtx waits for d or until ctx is cancelled, whichever comes first.
// It suspends only the calling goroutine.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
