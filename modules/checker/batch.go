package checker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rajuuu28ia/akusayangkamu/pkg/generator"
	"github.com/rajuuu28ia/akusayangkamu/pkg/logger"
	"github.com/rajuuu28ia/akusayangkamu/pkg/namestore"
)

// Orchestrator drives batched verification of generated candidates. Each run
// dedupes against the session store, splits the remainder into fixed-size
// batches, verifies a batch with bounded concurrency under a per-batch
// timeout, and pauses between batches proportionally to batch size so a
// large run does not read as a request flood.
type Orchestrator struct {
	checker *Checker
	store   *namestore.Store
	cfg     Config
	log     *slog.Logger
}

// NewOrchestrator wires a checker and a session store into a batch runner.
// When store is nil a private one is created from cfg.
func NewOrchestrator(chk *Checker, store *namestore.Store, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = logger.Discard()
	}
	cfg := chk.cfg
	if store == nil {
		store = namestore.New(
			namestore.WithTTL(cfg.SessionTTL),
			namestore.WithGrace(cfg.SessionGrace),
			namestore.WithSweepInterval(cfg.SessionSweep),
			namestore.WithLogger(log),
		)
	}
	return &Orchestrator{
		checker: chk,
		store:   store,
		cfg:     cfg,
		log:     log.With(logger.Component("orchestrator")),
	}
}

// Store exposes the session store, mainly so callers sharing one store
// across orchestrators can close it on shutdown.
func (o *Orchestrator) Store() *namestore.Store {
	return o.store
}

// Run verifies candidates derived from base. Candidates already recorded in
// the session are skipped; the rest are recorded before dispatch so a crash
// mid-run never reprocesses them. The session is marked complete when the
// run finishes. Run returns the partial result with ctx.Err() when cancelled.
func (o *Orchestrator) Run(ctx context.Context, base string, candidates []generator.Candidate) (*BatchResult, error) {
	base = generator.Normalize(base)
	result := &BatchResult{
		RunID:     uuid.NewString(),
		BaseName:  base,
		Outcomes:  make(map[string]Outcome, len(candidates)),
		StartedAt: time.Now(),
	}
	log := o.log.With(slog.String("run_id", result.RunID), slog.String("base", base))

	texts := make([]string, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, cand := range candidates {
		text := generator.Normalize(cand.Text)
		if _, dup := seen[text]; dup {
			continue
		}
		seen[text] = struct{}{}
		texts = append(texts, text)
	}

	fresh := o.store.Filter(base, texts)
	if skipped := len(texts) - len(fresh); skipped > 0 {
		result.Skipped = diffPreserveOrder(texts, fresh)
		log.Info("skipped previously processed candidates", slog.Int("count", skipped))
	}

	log.Info("run started",
		slog.Int("candidates", len(fresh)),
		slog.Int("batch_size", o.cfg.BatchSize))

	var mu sync.Mutex
	for start := 0; start < len(fresh); start += o.cfg.BatchSize {
		if err := ctx.Err(); err != nil {
			result.CompletedAt = time.Now()
			return result, err
		}

		end := min(start+o.cfg.BatchSize, len(fresh))
		batch := fresh[start:end]
		for _, text := range batch {
			o.store.Record(base, text)
		}

		bctx, cancel := context.WithTimeout(ctx, o.cfg.BatchTimeout)
		g := new(errgroup.Group)
		g.SetLimit(o.cfg.Concurrency)
		for _, text := range batch {
			g.Go(func() error {
				out := o.checker.Check(bctx, text)
				mu.Lock()
				result.Outcomes[text] = out
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()
		cancel()

		if end < len(fresh) {
			if err := sleep(ctx, o.interBatchDelay(len(batch))); err != nil {
				result.CompletedAt = time.Now()
				return result, err
			}
		}
	}

	o.store.Complete(base)
	result.CompletedAt = time.Now()
	log.Info("run finished",
		slog.Int("verified", len(result.Outcomes)),
		slog.Duration("took", result.CompletedAt.Sub(result.StartedAt)))
	return result, nil
}

// interBatchDelay grows with batch size: a flat base plus a tenth of the
// base delay per candidate in the batch just finished.
func (o *Orchestrator) interBatchDelay(batchLen int) time.Duration {
	return o.cfg.BatchDelayBase + time.Duration(batchLen)*o.cfg.BatchDelayBase/10
}

// diffPreserveOrder returns the members of all that are absent from kept,
// in their original order.
func diffPreserveOrder(all, kept []string) []string {
	keptSet := make(map[string]struct{}, len(kept))
	for _, k := range kept {
		keptSet[k] = struct{}{}
	}
	var out []string
	for _, a := range all {
		if _, ok := keptSet[a]; !ok {
			out = append(out, a)
		}
	}
	return out
}
