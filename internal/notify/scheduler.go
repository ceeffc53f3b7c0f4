package notify

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/kozoukioden/HatimChainApp/internal/domain"
	"github.com/kozoukioden/HatimChainApp/internal/services"
)

const (
	defaultSweepTimeout = 30 * time.Second
	defaultMaxFailures  = 5
)

var (
	remindersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chain_reminders_total",
			Help: "Chain reminders by lead and outcome (sent, failed, dropped).",
		},
		[]string{"lead", "outcome"},
	)
	remindersPending = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chain_reminders_pending",
		Help: "Reminders planned but not yet delivered.",
	})
)

func init() {
	prometheus.MustRegister(remindersTotal, remindersPending)
}

// ChainSource feeds a sweep. ListOpen must return every open chain, not a
// capped window; Get confirms the state of a chain the listing did not
// return and fails with services.ErrChainNotFound once it is gone.
// *services.ChainService satisfies it.
type ChainSource interface {
	ListOpen(ctx context.Context, now time.Time) ([]domain.Chain, error)
	Get(ctx context.Context, id string) (*domain.Chain, error)
}

// SweepResult counts what one sweep did.
type SweepResult struct {
	Planned int
	Sent    int
	Failed  int
	Dropped int
	Purged  int64
}

type entry struct {
	Reminder
	failures int
}

// Scheduler keeps the pending reminder set and dispatches due reminders.
// A reminder is planned only while its trigger time is still ahead, so a
// chain created three hours before its end gets no 3h reminder, and each
// reminder ID is delivered at most once per process.
//
// Scheduler also implements services.EventSink: created chains are planned
// straight away, completed or deleted chains lose their pending reminders.
type Scheduler struct {
	Source ChainSource
	Sender Sender

	// Purge, when set, runs after each sweep to drop expired idempotency
	// records.
	Purge func(ctx context.Context, now time.Time) (int64, error)

	SweepTimeout time.Duration
	// MaxFailures drops a reminder after this many failed sends.
	MaxFailures int
	Now         func() time.Time

	mu      sync.Mutex
	pending map[string]*entry
	sent    map[string]time.Time // reminder id -> chain end date
	cron    *cron.Cron
}

// NewScheduler builds a Scheduler with default limits.
func NewScheduler(src ChainSource, sender Sender) *Scheduler {
	return &Scheduler{
		Source:       src,
		Sender:       sender,
		SweepTimeout: defaultSweepTimeout,
		MaxFailures:  defaultMaxFailures,
		Now:          time.Now,
		pending:      make(map[string]*entry),
		sent:         make(map[string]time.Time),
	}
}

func (s *Scheduler) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Scheduler) maxFailures() int {
	if s.MaxFailures > 0 {
		return s.MaxFailures
	}
	return defaultMaxFailures
}

// Publish reacts to chain events. It never blocks on the sender.
func (s *Scheduler) Publish(_ context.Context, ev domain.ChainEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch ev.Kind {
	case domain.EventCreated, domain.EventUpdated:
		s.planLocked(ev.Chain, s.now())
	case domain.EventCompleted, domain.EventDeleted:
		s.dropChainLocked(ev.Chain.ID)
	}
	remindersPending.Set(float64(len(s.pending)))
}

// planLocked adds the chain's future reminders that are neither pending nor
// already sent. It returns how many were added.
func (s *Scheduler) planLocked(c domain.Chain, now time.Time) int {
	if s.pending == nil {
		s.pending = make(map[string]*entry)
		s.sent = make(map[string]time.Time)
	}
	n := 0
	for _, r := range PlanReminders(c, now) {
		if _, done := s.sent[r.ID]; done {
			continue
		}
		if _, ok := s.pending[r.ID]; ok {
			continue
		}
		s.pending[r.ID] = &entry{Reminder: r}
		n++
	}
	return n
}

func (s *Scheduler) dropChainLocked(chainID string) int {
	n := 0
	for id, e := range s.pending {
		if e.ChainID == chainID {
			delete(s.pending, id)
			remindersTotal.WithLabelValues(e.Lead, "dropped").Inc()
			n++
		}
	}
	return n
}

// Pending returns the planned reminders ordered by trigger time.
func (s *Scheduler) Pending() []Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Reminder, 0, len(s.pending))
	for _, e := range s.pending {
		out = append(out, e.Reminder)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].At.Equal(out[j].At) {
			return out[i].ID < out[j].ID
		}
		return out[i].At.Before(out[j].At)
	})
	return out
}

// Sweep plans reminders for every open chain, drops the ones whose chain is
// gone or finished, and sends those that are due. A listing failure aborts
// the sweep before anything is sent.
func (s *Scheduler) Sweep(ctx context.Context) (SweepResult, error) {
	var res SweepResult
	if s.Source == nil || s.Sender == nil {
		return res, errors.New("notify: scheduler needs a source and a sender")
	}
	now := s.now()

	chains, err := s.Source.ListOpen(ctx, now)
	if err != nil {
		return res, err
	}

	s.mu.Lock()
	listed := make(map[string]struct{}, len(chains))
	for _, c := range chains {
		if c.IsCompleted {
			continue
		}
		listed[c.ID] = struct{}{}
		res.Planned += s.planLocked(c, now)
	}
	var unlisted []string
	seen := make(map[string]struct{})
	for _, e := range s.pending {
		if _, ok := listed[e.ChainID]; ok {
			continue
		}
		if _, ok := seen[e.ChainID]; !ok {
			seen[e.ChainID] = struct{}{}
			unlisted = append(unlisted, e.ChainID)
		}
	}
	s.mu.Unlock()

	closed := s.closedChains(ctx, unlisted, now)

	s.mu.Lock()
	var due []Reminder
	for id, e := range s.pending {
		if _, gone := closed[e.ChainID]; gone || !now.Before(e.EndDate) {
			delete(s.pending, id)
			remindersTotal.WithLabelValues(e.Lead, "dropped").Inc()
			res.Dropped++
			continue
		}
		if !e.At.After(now) {
			due = append(due, e.Reminder)
		}
	}
	s.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].At.Before(due[j].At) })
	for _, r := range due {
		sendErr := s.Sender.Send(ctx, r)

		s.mu.Lock()
		e, still := s.pending[r.ID]
		switch {
		case sendErr == nil:
			delete(s.pending, r.ID)
			s.sent[r.ID] = r.EndDate
			remindersTotal.WithLabelValues(r.Lead, "sent").Inc()
			res.Sent++
		case still:
			e.failures++
			remindersTotal.WithLabelValues(r.Lead, "failed").Inc()
			res.Failed++
			if e.failures >= s.maxFailures() {
				delete(s.pending, r.ID)
				remindersTotal.WithLabelValues(r.Lead, "dropped").Inc()
				res.Dropped++
			}
		}
		s.mu.Unlock()

		if sendErr != nil {
			log.Warn().Err(sendErr).Str("reminder_id", r.ID).Str("chain_id", r.ChainID).Msg("reminder not delivered")
		} else {
			log.Info().Str("reminder_id", r.ID).Str("chain_id", r.ChainID).Msg("reminder delivered")
		}
	}

	s.mu.Lock()
	for id, end := range s.sent {
		if !now.Before(end) {
			delete(s.sent, id)
		}
	}
	remindersPending.Set(float64(len(s.pending)))
	s.mu.Unlock()

	if s.Purge != nil {
		n, err := s.Purge(ctx, now.UTC())
		if err != nil {
			log.Warn().Err(err).Msg("idempotency purge failed")
		}
		res.Purged = n
	}
	return res, nil
}

// closedChains looks up chains that have pending reminders but were missing
// from the open listing, typically because they were created after it ran.
// Only a chain confirmed deleted, completed or ended is reported; lookup
// errors keep the reminders for the next sweep.
func (s *Scheduler) closedChains(ctx context.Context, ids []string, now time.Time) map[string]struct{} {
	closed := make(map[string]struct{})
	for _, id := range ids {
		c, err := s.Source.Get(ctx, id)
		switch {
		case errors.Is(err, services.ErrChainNotFound):
			closed[id] = struct{}{}
		case err != nil:
			log.Warn().Err(err).Str("chain_id", id).Msg("reminder chain lookup failed")
		case c.IsCompleted || !now.Before(c.EndDate):
			closed[id] = struct{}{}
		}
	}
	return closed
}

func (s *Scheduler) runOnce() {
	timeout := s.SweepTimeout
	if timeout <= 0 {
		timeout = defaultSweepTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	res, err := s.Sweep(ctx)
	if err != nil {
		log.Error().Err(err).Msg("reminder sweep failed")
		return
	}
	log.Debug().
		Int("planned", res.Planned).
		Int("sent", res.Sent).
		Int("failed", res.Failed).
		Int("dropped", res.Dropped).
		Int64("purged", res.Purged).
		Msg("reminder sweep")
}

// Start runs a sweep on the cron spec (standard five fields or descriptors
// such as "@every 1m"). Overlapping sweeps are skipped.
func (s *Scheduler) Start(spec string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return errors.New("notify: scheduler already started")
	}
	c := cron.New(
		cron.WithLogger(cronLogger{}),
		cron.WithChain(cron.Recover(cronLogger{}), cron.SkipIfStillRunning(cronLogger{})),
	)
	if _, err := c.AddFunc(spec, s.runOnce); err != nil {
		return err
	}
	c.Start()
	s.cron = c
	return nil
}

// Stop halts the schedule and waits for a running sweep, or for ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c == nil {
		return nil
	}
	select {
	case <-c.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger routes robfig/cron logs through zerolog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
