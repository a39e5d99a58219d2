// Package synth produces a recommendation set for a profile. Generation goes
// through an llm.Provider; any failure along the way yields the fallback set,
// so Recommend always has a well-formed answer.
package synth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/stylist/internal/llm"
	"github.com/dshills/stylist/internal/metrics"
	"github.com/dshills/stylist/internal/profile"
	"github.com/dshills/stylist/internal/prompt"
	"github.com/dshills/stylist/internal/schema"
)

// DefaultTemperature is the sampling temperature for every request.
const DefaultTemperature = 0.7

// DefaultTimeout bounds a single generation call when Options.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// Reason tags why a generation attempt fell back.
type Reason string

const (
	ReasonNoCredential     Reason = "no_credential"
	ReasonProviderError    Reason = "provider_error"
	ReasonMalformedPayload Reason = "malformed_payload"
	ReasonSchemaViolation  Reason = "schema_violation"
)

// Failure describes a failed generation attempt.
type Failure struct {
	Reason Reason
	Err    error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return string(f.Reason)
	}
	return fmt.Sprintf("%s: %v", f.Reason, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// Result is the outcome of Generate: a validated set, or a failure.
// Exactly one of Set and Failure is non-nil.
type Result struct {
	Set     *schema.RecommendationSet
	Failure *Failure
}

// OK reports whether generation succeeded.
func (r Result) OK() bool { return r.Failure == nil && r.Set != nil }

// Resolve returns the generated set, or the fallback set on failure.
func (r Result) Resolve() schema.RecommendationSet {
	if r.OK() {
		return *r.Set
	}
	return Fallback()
}

// Request is one recommendation call. APIKey, when set, is used for this
// call only and never replaces the ambient credential.
type Request struct {
	Profile profile.Profile
	APIKey  string
}

// Options configures a Synthesizer.
type Options struct {
	// Settings select the provider and carry the ambient credential.
	Settings llm.Settings
	// Factory builds providers. Nil means llm.NewProvider.
	Factory     llm.Factory
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
	// Metrics is optional.
	Metrics *metrics.Metrics
	// Logger is used when the request context carries no logger.
	Logger zerolog.Logger
	// Debug, when non-nil, receives both prompts for every call.
	Debug io.Writer
}

// Synthesizer generates recommendation sets. It is safe for concurrent use.
type Synthesizer struct {
	opts Options

	once       sync.Once
	ambient    llm.Provider
	ambientErr error
}

// New returns a Synthesizer. The ambient provider is built on first use.
func New(opts Options) *Synthesizer {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Temperature == 0 {
		opts.Temperature = DefaultTemperature
	}
	if opts.Settings.Model == "" {
		opts.Settings.Model = llm.DefaultModel(opts.Settings.Provider)
	}
	return &Synthesizer{opts: opts}
}

// Recommend returns a recommendation set for req. It never fails: every
// failure is logged, counted, and answered with Fallback().
func (s *Synthesizer) Recommend(ctx context.Context, req Request) schema.RecommendationSet {
	res := s.Generate(ctx, req)
	provider := s.providerName()

	if !res.OK() {
		f := res.Failure
		if f == nil {
			f = &Failure{Reason: ReasonProviderError, Err: errors.New("no result")}
		}
		s.logger(ctx).Warn().
			Err(f.Err).
			Str("reason", string(f.Reason)).
			Str("provider", provider).
			Str("model", s.opts.Settings.Model).
			Msg("serving fallback recommendations")
		if m := s.opts.Metrics; m != nil {
			m.Fallbacks.WithLabelValues(string(f.Reason)).Inc()
			m.GenerationRequests.WithLabelValues(provider, metrics.OutcomeFallback).Inc()
		}
		return Fallback()
	}

	if m := s.opts.Metrics; m != nil {
		m.GenerationRequests.WithLabelValues(provider, metrics.OutcomeSuccess).Inc()
	}
	return *res.Set
}

// Generate makes one generation attempt and reports its outcome explicitly.
// It issues at most one outbound request and never retries.
func (s *Synthesizer) Generate(ctx context.Context, req Request) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = fail(ReasonProviderError, fmt.Errorf("synth: provider panic: %v", r))
		}
	}()

	p, err := s.provider(req)
	if err != nil {
		if errors.Is(err, llm.ErrNoCredential) {
			return fail(ReasonNoCredential, err)
		}
		return fail(ReasonProviderError, err)
	}

	userPrompt := prompt.Build(req.Profile)
	if s.opts.Debug != nil {
		fmt.Fprintf(s.opts.Debug, "=== DEBUG: system prompt ===\n%s\n", prompt.SystemInstruction)
		fmt.Fprintf(s.opts.Debug, "=== DEBUG: user prompt ===\n%s\n", userPrompt)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	log := s.logger(ctx)
	start := time.Now()
	raw, err := p.Complete(callCtx, prompt.SystemInstruction, userPrompt, s.opts.MaxTokens, s.opts.Temperature)
	elapsed := time.Since(start)
	if m := s.opts.Metrics; m != nil {
		m.GenerationDuration.WithLabelValues(s.providerName()).Observe(elapsed.Seconds())
	}
	if err != nil {
		return fail(ReasonProviderError, fmt.Errorf("synth: complete: %w", err))
	}
	if strings.TrimSpace(raw) == "" {
		return fail(ReasonProviderError, llm.ErrEmptyResponse)
	}
	log.Debug().
		Dur("elapsed", elapsed).
		Int("prompt_bytes", len(userPrompt)).
		Int("response_bytes", len(raw)).
		Msg("generation response received")

	set, verrs := llm.ValidateResponse(raw)
	if len(verrs) > 0 {
		if llm.IsParseFailure(verrs) {
			return fail(ReasonMalformedPayload, llm.ValidationErrors(verrs))
		}
		return fail(ReasonSchemaViolation, llm.ValidationErrors(verrs))
	}
	return Result{Set: set}
}

func fail(reason Reason, err error) Result {
	return Result{Failure: &Failure{Reason: reason, Err: err}}
}

// provider returns the handle for req. A per-request credential gets a fresh
// handle scoped to this call; otherwise the shared ambient handle is used.
func (s *Synthesizer) provider(req Request) (llm.Provider, error) {
	if key := strings.TrimSpace(req.APIKey); key != "" {
		settings := s.opts.Settings
		settings.APIKey = key
		return s.factory()(settings)
	}
	s.once.Do(func() {
		s.ambient, s.ambientErr = s.factory()(s.opts.Settings)
	})
	return s.ambient, s.ambientErr
}

func (s *Synthesizer) factory() llm.Factory {
	if s.opts.Factory != nil {
		return s.opts.Factory
	}
	return llm.NewProvider
}

func (s *Synthesizer) providerName() string {
	if s.opts.Settings.Provider == "" {
		return llm.ProviderGroq
	}
	return strings.ToLower(s.opts.Settings.Provider)
}

// logger prefers the request-scoped logger carried by ctx.
func (s *Synthesizer) logger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &s.opts.Logger
}
