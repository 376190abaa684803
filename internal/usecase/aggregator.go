// File: internal/usecase/aggregator.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"job-insight-chat/internal/domain"
	"job-insight-chat/internal/domain/model"
	"job-insight-chat/internal/domain/ports/adapter"
	"job-insight-chat/internal/infra/logging"
	"job-insight-chat/internal/infra/metrics"
)

const sentenceTerminators = ".!?…。！？"

// shouldFlush is the throttle: flush when interval has passed since the last
// flush or when the fragment ends a sentence.
func shouldFlush(now, lastFlush time.Time, fragment string, interval time.Duration) bool {
	return now.Sub(lastFlush) >= interval || strings.ContainsAny(fragment, sentenceTerminators)
}

// streamAccumulator is the per-task buffer and throttle state.
type streamAccumulator struct {
	buf       strings.Builder
	fragments int
	lastFlush time.Time
	interval  time.Duration
}

func newStreamAccumulator(start time.Time, interval time.Duration) *streamAccumulator {
	return &streamAccumulator{lastFlush: start, interval: interval}
}

// add appends a fragment and reports whether a flush is due.
func (a *streamAccumulator) add(fragment string, now time.Time) bool {
	a.buf.WriteString(fragment)
	a.fragments++
	return shouldFlush(now, a.lastFlush, fragment, a.interval)
}

func (a *streamAccumulator) flushed(now time.Time) { a.lastFlush = now }

func (a *streamAccumulator) text() string { return a.buf.String() }

type AggregatorConfig struct {
	HistoryLimit  int
	FlushInterval time.Duration
	Timeout       time.Duration
	CreditCost    int64
	Dev           bool
}

// ResponseAggregator runs one generation task: placeholder, throttled
// progress writes, terminal write, then settlement on success.
type ResponseAggregator struct {
	window     *ContextWindowBuilder
	prompts    adapter.PromptAssembler
	source     adapter.GenerationSource
	tokens     adapter.TokenCounter
	lifecycle  *StatusLifecycle
	settlement *CreditSettlement
	cfg        AggregatorConfig
	log        *zerolog.Logger
	now        func() time.Time
}

func NewResponseAggregator(
	window *ContextWindowBuilder,
	prompts adapter.PromptAssembler,
	source adapter.GenerationSource,
	tokens adapter.TokenCounter,
	lifecycle *StatusLifecycle,
	settlement *CreditSettlement,
	cfg AggregatorConfig,
	logger *zerolog.Logger,
) *ResponseAggregator {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = GenerationHistoryLimit
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 100 * time.Millisecond
	}
	if cfg.CreditCost <= 0 {
		cfg.CreditCost = 1
	}
	return &ResponseAggregator{
		window:     window,
		prompts:    prompts,
		source:     source,
		tokens:     tokens,
		lifecycle:  lifecycle,
		settlement: settlement,
		cfg:        cfg,
		log:        logger,
		now:        time.Now,
	}
}

// terminalWriteTimeout bounds the final patch, which runs detached from the
// task context so an expired deadline cannot leave the message PENDING.
const terminalWriteTimeout = 10 * time.Second

func (a *ResponseAggregator) Generate(ctx context.Context, task model.GenerationTask) error {
	ctx = logging.WithJobID(logging.WithUserID(ctx, task.UserID), task.JobID)
	log := logging.With(ctx, a.log)
	defer logging.TraceDuration(log, "ResponseAggregator.Generate")()
	log.Debug().Str("task_id", task.ID).Str("message", logging.Redact(task.Message, a.cfg.Dev)).Msg("generation started")

	history, err := a.window.Build(ctx, task.JobID, a.cfg.HistoryLimit)
	if err != nil {
		metrics.IncGeneration("failed")
		return fmt.Errorf("%w: load history: %v", domain.ErrPersistenceFailure, err)
	}

	placeholder, err := a.lifecycle.Open(ctx, task.UserID, task.JobID)
	if err != nil {
		metrics.IncGeneration("failed")
		return fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}
	ctx = logging.WithMessageID(ctx, placeholder.ID)
	log = logging.With(ctx, a.log)

	genCtx, cancel := ctx, context.CancelFunc(func() {})
	if a.cfg.Timeout > 0 {
		genCtx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
	}
	text, streamErr := a.consume(genCtx, log, placeholder.ID, task, history)
	cancel()

	termCtx, termCancel := context.WithTimeout(context.WithoutCancel(ctx), terminalWriteTimeout)
	defer termCancel()

	if streamErr != nil {
		log.Error().Err(streamErr).Msg("generation failed")
		metrics.IncGeneration("failed")
		if err := a.lifecycle.Fail(termCtx, placeholder.ID); err != nil {
			return errors.Join(streamErr, fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err))
		}
		return streamErr
	}

	if err := a.lifecycle.Complete(termCtx, placeholder.ID, text); err != nil {
		metrics.IncGeneration("failed")
		// Leave no PENDING behind; if this write fails too, the first error wins.
		_ = a.lifecycle.Fail(termCtx, placeholder.ID)
		return fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}
	metrics.IncGeneration("completed")
	log.Info().Int("chars", len(text)).Msg("generation completed")

	_ = a.settlement.Settle(termCtx, task.UserID, placeholder.ID, a.cfg.CreditCost)
	return nil
}

// consume drives the fragment stream. A due flush is written as soon as the
// fragment arrives, unless the source marked it as the last one.
func (a *ResponseAggregator) consume(ctx context.Context, log *zerolog.Logger, messageID string, task model.GenerationTask, history []model.Turn) (string, error) {
	prompt, err := a.prompts.Assemble(task.Job, history, task.Message)
	if err != nil {
		return "", err
	}
	promptTokens := 0
	if a.tokens != nil {
		promptTokens = a.tokens.CountTokens(prompt)
	}

	start := a.now()
	acc := newStreamAccumulator(start, a.cfg.FlushInterval)
	success := false
	defer func() {
		metrics.ObserveStream(prompt.Model, promptTokens, acc.fragments, time.Since(start).Milliseconds(), success)
	}()

	for fragment, err := range a.source.Stream(ctx, prompt) {
		if err != nil {
			return "", &domain.StreamError{Fragments: acc.fragments, Err: err}
		}
		if acc.add(fragment.Text, a.now()) && !fragment.Last {
			a.flush(ctx, log, messageID, acc)
		}
	}
	if ctx.Err() != nil {
		return "", &domain.StreamError{Fragments: acc.fragments, Err: ctx.Err()}
	}
	success = true
	return acc.text(), nil
}

func (a *ResponseAggregator) flush(ctx context.Context, log *zerolog.Logger, messageID string, acc *streamAccumulator) {
	if err := a.lifecycle.Progress(ctx, messageID, acc.text()+TypingSuffix); err != nil {
		metrics.IncFlush("skipped")
		log.Warn().Err(err).Msg("intermediate flush failed; continuing")
		return
	}
	metrics.IncFlush("ok")
	acc.flushed(a.now())
}
