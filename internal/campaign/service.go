package campaign

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"veriseq/internal/campaign/metrics"
	"veriseq/internal/ledger"
	dErrors "veriseq/pkg/domain-errors"
)

// Service plans campaigns, fans their harnesses out over a worker pool, and
// records every completed harness in the run ledger. The ledger append is
// synchronous and fail-closed: a harness whose record cannot be written
// fails the campaign. Streaming to the optional record channel is
// best-effort and never blocks a run.
type Service struct {
	registry *Registry
	runner   *Runner
	store    Store
	ledger   ledger.Store

	claims  Claimer
	stream  chan<- ledger.Record
	workers int
	timeout time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer

	mu      sync.Mutex
	cancels map[uuid.UUID]context.CancelFunc
}

type ServiceOption func(*Service)

// WithClaimer coordinates harness ownership across replicas.
func WithClaimer(c Claimer) ServiceOption {
	return func(s *Service) { s.claims = c }
}

// WithStream mirrors every appended ledger record onto ch. Sends are
// non-blocking; a full channel drops the mirror, never the record.
func WithStream(ch chan<- ledger.Record) ServiceOption {
	return func(s *Service) { s.stream = ch }
}

// WithWorkers sets how many harnesses run concurrently.
func WithWorkers(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithHarnessTimeout bounds each harness run. Zero disables the deadline.
func WithHarnessTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

func NewService(registry *Registry, runner *Runner, store Store, ledgerStore ledger.Store, opts ...ServiceOption) *Service {
	s := &Service{
		registry: registry,
		runner:   runner,
		store:    store,
		ledger:   ledgerStore,
		workers:  4,
		logger:   slog.Default(),
		tracer:   otel.Tracer("veriseq/campaign"),
		cancels:  make(map[uuid.UUID]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Spaces lists the registered spaces.
func (s *Service) Spaces() []Space { return s.registry.Spaces() }

// Plan returns the harnesses a campaign over the named space would run.
func (s *Service) Plan(space string, chunks int) ([]Harness, error) {
	return s.registry.Harnesses(space, chunks)
}

// Get returns a campaign by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Campaign, error) {
	return s.store.Get(ctx, id)
}

// List returns all campaigns in creation order.
func (s *Service) List(ctx context.Context) ([]Campaign, error) {
	return s.store.List(ctx)
}

// Records returns ledger records matching the filter.
func (s *Service) Records(ctx context.Context, f ledger.Filter) ([]ledger.Record, error) {
	return s.ledger.List(ctx, f)
}

// Start creates a campaign and begins executing it in the background. The
// returned campaign is in StatePending; poll Get for progress.
func (s *Service) Start(ctx context.Context, space string, chunks int, resume bool) (Campaign, error) {
	if _, err := s.registry.Harnesses(space, chunks); err != nil {
		return Campaign{}, err
	}

	c := Campaign{
		ID:        uuid.New(),
		Space:     space,
		Chunks:    chunks,
		Resume:    resume,
		State:     StatePending,
		CreatedAt: time.Now().UTC(),
		Summary:   ledger.Summary{ByStatus: map[ledger.Status]int{}},
	}
	if err := s.store.Create(ctx, c); err != nil {
		return Campaign{}, err
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.mu.Lock()
	s.cancels[c.ID] = cancel
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.cancels, c.ID)
			s.mu.Unlock()
			cancel()
		}()
		if err := s.Run(runCtx, c.ID); err != nil {
			s.logger.Error("campaign run ended with error", "campaign", c.ID, "error", err)
		}
	}()

	return c, nil
}

// Cancel stops a running campaign. In-flight harnesses stop without
// writing ledger records.
func (s *Service) Cancel(id uuid.UUID) error {
	s.mu.Lock()
	cancel, ok := s.cancels[id]
	s.mu.Unlock()
	if !ok {
		return dErrors.Newf(dErrors.CodeNotFound, "campaign %s is not running", id)
	}
	cancel()
	return nil
}

// Run executes the campaign synchronously until done, cancelled, or failed.
func (s *Service) Run(ctx context.Context, id uuid.UUID) error {
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	harnesses, err := s.registry.Harnesses(c.Space, c.Chunks)
	if err != nil {
		return s.finish(c, nil, 0, err)
	}

	now := time.Now().UTC()
	c.State = StateRunning
	c.StartedAt = &now
	if err := s.store.Update(ctx, c); err != nil {
		return err
	}

	s.metrics.CampaignStarted()
	defer s.metrics.CampaignFinished()

	ctx, span := s.tracer.Start(ctx, "campaign.run",
		trace.WithAttributes(
			attribute.String("campaign.id", c.ID.String()),
			attribute.String("campaign.space", c.Space),
			attribute.Int("campaign.chunks", len(harnesses)),
		))
	defer span.End()

	var (
		resMu    sync.Mutex
		outcomes []Outcome
		skipped  int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, h := range harnesses {
		g.Go(func() error {
			out, ran, err := s.runHarness(gctx, c, h)
			if err != nil {
				return err
			}
			resMu.Lock()
			defer resMu.Unlock()
			if ran {
				outcomes = append(outcomes, out)
			} else {
				skipped++
			}
			return nil
		})
	}
	runErr := g.Wait()
	if runErr != nil {
		span.SetStatus(codes.Error, runErr.Error())
	}
	return s.finish(c, outcomes, skipped, runErr)
}

// runHarness runs one harness end to end: resume check, claim, run, record.
// ran is false when the harness was skipped.
func (s *Service) runHarness(ctx context.Context, c Campaign, h Harness) (out Outcome, ran bool, err error) {
	ctx, span := s.tracer.Start(ctx, "campaign.harness",
		trace.WithAttributes(
			attribute.String("harness.name", h.Name),
			attribute.String("harness.space", h.Space),
			attribute.Int64("harness.bound", int64(h.Bound())),
		))
	defer span.End()

	if c.Resume {
		done, err := s.ledger.HasSuccess(ctx, h.Name)
		if err != nil {
			return Outcome{}, false, fmt.Errorf("resume check for %q: %w", h.Name, err)
		}
		if done {
			span.SetAttributes(attribute.Bool("harness.skipped", true))
			s.metrics.IncrementSkipped(h.Space)
			s.logger.Debug("skipping harness, ledger already records success", "harness", h.Name)
			return Outcome{}, false, nil
		}
	}

	if s.claims != nil {
		ok, err := s.claims.TryClaim(ctx, h.Name)
		if err != nil {
			return Outcome{}, false, err
		}
		if !ok {
			span.SetAttributes(attribute.Bool("harness.skipped", true))
			s.logger.Debug("harness claimed by another executor", "harness", h.Name)
			return Outcome{}, false, nil
		}
		defer func() {
			if relErr := s.claims.Release(context.WithoutCancel(ctx), h.Name); relErr != nil {
				s.logger.Warn("failed to release harness claim", "harness", h.Name, "error", relErr)
			}
		}()
	}

	runCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	outcome, err := s.runner.Run(runCtx, h)
	if err != nil {
		// cancellation: nothing is recorded for this harness
		return Outcome{}, false, err
	}
	span.SetAttributes(
		attribute.String("harness.status", string(outcome.Status)),
		attribute.Int64("harness.explored", int64(outcome.Explored)),
	)

	rec := outcome.Record(time.Now().UTC())
	if err := s.ledger.Append(context.WithoutCancel(ctx), rec); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Outcome{}, false, fmt.Errorf("append ledger record for %q: %w", h.Name, err)
	}
	if s.stream != nil {
		select {
		case s.stream <- rec:
		default:
			s.logger.Warn("ledger stream buffer full, dropping mirror", "harness", h.Name)
		}
	}

	s.metrics.ObserveHarness(h.Space, string(outcome.Status), outcome.Explored,
		time.Duration(outcome.Seconds*float64(time.Second)))
	s.logger.Info("harness finished",
		"harness", h.Name,
		"status", outcome.Status,
		"explored", outcome.Explored,
		"seconds", outcome.Seconds)
	return outcome, true, nil
}

// finish folds the outcomes into the campaign row. The update deliberately
// uses a fresh context: a cancelled campaign still records its final state.
func (s *Service) finish(c Campaign, outcomes []Outcome, skipped int, runErr error) error {
	now := time.Now().UTC()
	c.FinishedAt = &now
	c.Skipped = skipped

	records := make([]ledger.Record, 0, len(outcomes))
	for _, o := range outcomes {
		records = append(records, o.Record(now))
	}
	c.Summary = ledger.Summarize(records)

	switch {
	case runErr == nil:
		// completed is a whole-space claim: every harness that ran here
		// must have reached SUCCESS. Skipped harnesses are covered by a
		// prior SUCCESS record or by a peer process whose verdict lands
		// in the shared ledger.
		if short := c.Summary.Total - c.Summary.ByStatus[ledger.StatusSuccess]; short > 0 {
			c.State = StateFailed
			c.Error = fmt.Sprintf("%d of %d harnesses did not reach SUCCESS", short, c.Summary.Total)
		} else {
			c.State = StateCompleted
		}
	case errors.Is(runErr, context.Canceled):
		c.State = StateCancelled
		c.Error = runErr.Error()
	default:
		c.State = StateFailed
		c.Error = runErr.Error()
	}

	if err := s.store.Update(context.Background(), c); err != nil {
		s.logger.Error("failed to persist campaign result", "campaign", c.ID, "error", err)
		if runErr == nil {
			return err
		}
	}
	s.logger.Info("campaign finished",
		"campaign", c.ID,
		"space", c.Space,
		"state", c.State,
		"harnesses", c.Summary.Total,
		"skipped", skipped)
	return runErr
}
