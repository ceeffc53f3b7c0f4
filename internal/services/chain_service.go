// Package services – ChainService
//
// This file implements ChainService, the application-level component that
// owns the chain lifecycle and the part claim/complete protocol. Reads go
// straight to the repository; every part transition is a read-modify-write
// of the whole chain document guarded by a version compare-and-swap. A lost
// race is retried against a fresh read, so a successful claim can never be
// silently overwritten by a concurrent writer.
//
// Observability: all public methods are OpenTelemetry-instrumented and part
// transitions are counted in chain_part_transitions_total{op,outcome}.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/kozoukioden/HatimChainApp/internal/domain"
	"github.com/kozoukioden/HatimChainApp/internal/repo"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultPageSize    = 300
	DefaultOpTimeout   = 15 * time.Second
	DefaultMaxAttempts = 3
	DefaultRecentLimit = 10
)

var partTransitions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "chain_part_transitions_total",
		Help: "Part transition attempts by operation and outcome.",
	},
	[]string{"op", "outcome"},
)

func init() {
	prometheus.MustRegister(partTransitions)
}

// ChainRepo defines the repository contract required by ChainService.
type ChainRepo interface {
	CreateChain(ctx context.Context, db *gorm.DB, c *domain.Chain) (*domain.Chain, error)
	GetChain(ctx context.Context, db *gorm.DB, id string) (*domain.Chain, error)
	ListChains(ctx context.Context, db *gorm.DB, limit int) ([]domain.Chain, error)
	RecentChains(ctx context.Context, db *gorm.DB, limit int) ([]domain.Chain, error)
	ListChainsByUser(ctx context.Context, db *gorm.DB, userID string, limit int) ([]domain.Chain, error)
	ListOpenChains(ctx context.Context, db *gorm.DB, now time.Time) ([]domain.Chain, error)

	// UpdateChainDocument must fail with repo.ErrVersionConflict when the
	// stored version differs from expected.
	UpdateChainDocument(ctx context.Context, db *gorm.DB, c *domain.Chain, expected int64) error
	DeleteChain(ctx context.Context, db *gorm.DB, id string) error
}

// EventSink receives chain events after they are persisted. Publish must not
// block for long; it runs on the request path.
type EventSink interface {
	Publish(ctx context.Context, ev domain.ChainEvent)
}

// Outcome reports the result of a part transition. Changed is true only when
// the new state was persisted; otherwise Reason says why nothing happened.
// Chain is the latest state the service saw, when there was one.
type Outcome struct {
	Changed bool
	Reason  domain.Reason
	Chain   *domain.Chain
}

// ChainService provides chain operations on top of a ChainRepo.
type ChainService struct {
	DB   *gorm.DB
	Repo ChainRepo

	// PageSize caps full listings. Chains past the cap are not returned.
	PageSize int
	// OpTimeout bounds each operation including retries.
	OpTimeout time.Duration
	// MaxAttempts is how many times a transition is tried on version conflicts.
	MaxAttempts int

	Events EventSink
	Now    func() time.Time
}

// NewChainService constructs a ChainService with default limits.
func NewChainService(db *gorm.DB, r ChainRepo) *ChainService {
	return &ChainService{
		DB:          db,
		Repo:        r,
		PageSize:    DefaultPageSize,
		OpTimeout:   DefaultOpTimeout,
		MaxAttempts: DefaultMaxAttempts,
		Now:         time.Now,
	}
}

func (s *ChainService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *ChainService) pageSize() int {
	if s.PageSize > 0 {
		return s.PageSize
	}
	return DefaultPageSize
}

func (s *ChainService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.OpTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.OpTimeout)
}

func (s *ChainService) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer("services/ChainService").Start(ctx, name, trace.WithAttributes(attrs...))
}

// unavailable wraps a persistence failure so callers can offer a retry.
func unavailable(span trace.Span, what string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, what)
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, what, err)
}

func (s *ChainService) publish(ctx context.Context, ev domain.ChainEvent) {
	if s.Events == nil {
		return
	}
	ev.At = s.now().UTC()
	s.Events.Publish(ctx, ev)
}

// Create validates spec and persists a new chain. Validation happens before
// any write; on failure the returned error wraps both ErrInvalidChain and
// the *domain.SpecError.
func (s *ChainService) Create(ctx context.Context, spec domain.ChainSpec) (*domain.Chain, error) {
	ctx, span := s.start(ctx, "Create",
		attribute.String("user.id", spec.OwnerID),
		attribute.String("chain.type", string(spec.Type)),
	)
	defer span.End()

	now := s.now()
	spec.Normalize(now)
	if err := spec.Validate(now); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidChain, err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	c, err := s.Repo.CreateChain(ctx, s.DB, domain.NewChain(spec, now))
	if err != nil {
		return nil, unavailable(span, "create chain", err)
	}
	span.SetAttributes(attribute.String("chain.id", c.ID))
	log.Info().Str("chain_id", c.ID).Str("user_id", c.CreatedBy).Str("type", string(c.Type)).Int("parts", c.TotalParts).Msg("chain created")

	s.publish(ctx, domain.ChainEvent{Kind: domain.EventCreated, Chain: *c, UserID: c.CreatedBy})
	return c, nil
}

// Get returns a chain by ID. IsCompleted is re-derived from the parts so a
// stale cached flag is never served.
func (s *ChainService) Get(ctx context.Context, id string) (*domain.Chain, error) {
	ctx, span := s.start(ctx, "Get", attribute.String("chain.id", id))
	defer span.End()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	c, err := s.Repo.GetChain(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrChainNotFound
	}
	if err != nil {
		return nil, unavailable(span, "get chain", err)
	}
	if c.Recompute() {
		log.Warn().Str("chain_id", c.ID).Bool("is_completed", c.IsCompleted).Msg("stale completion flag corrected on read")
	}
	if err := c.CheckInvariants(); err != nil {
		log.Warn().Err(err).Str("chain_id", c.ID).Msg("chain document violates invariants")
	}
	return c, nil
}

// Progress returns the chain's progress snapshot along with the chain.
func (s *ChainService) Progress(ctx context.Context, id string) (domain.Progress, *domain.Chain, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return domain.Progress{}, nil, err
	}
	return domain.GetProgress(c), c, nil
}

// List returns up to PageSize chains filtered, searched and sorted by q.
func (s *ChainService) List(ctx context.Context, q domain.ListQuery) ([]domain.Chain, error) {
	ctx, span := s.start(ctx, "List",
		attribute.String("filter", q.Filter),
		attribute.String("sort", string(q.Sort)),
	)
	defer span.End()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	all, err := s.Repo.ListChains(ctx, s.DB, s.pageSize())
	if err != nil {
		return nil, unavailable(span, "list chains", err)
	}
	recomputeAll(all)
	out := q.Apply(all)
	span.SetAttributes(attribute.Int("result.count", len(out)))
	return out, nil
}

// ListOpen returns every chain that is still open at now (not completed,
// ending after now), soonest end first. Unlike List it is not capped.
func (s *ChainService) ListOpen(ctx context.Context, now time.Time) ([]domain.Chain, error) {
	ctx, span := s.start(ctx, "ListOpen")
	defer span.End()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	all, err := s.Repo.ListOpenChains(ctx, s.DB, now)
	if err != nil {
		return nil, unavailable(span, "list open chains", err)
	}
	recomputeAll(all)
	out := all[:0]
	for _, c := range all {
		if !c.IsCompleted {
			out = append(out, c)
		}
	}
	span.SetAttributes(attribute.Int("result.count", len(out)))
	return out, nil
}

// ListByUser returns chains the user created or joined, newest first.
func (s *ChainService) ListByUser(ctx context.Context, userID string) ([]domain.Chain, error) {
	ctx, span := s.start(ctx, "ListByUser", attribute.String("user.id", userID))
	defer span.End()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	out, err := s.Repo.ListChainsByUser(ctx, s.DB, userID, s.pageSize())
	if err != nil {
		return nil, unavailable(span, "list user chains", err)
	}
	recomputeAll(out)
	return out, nil
}

// SearchByCode returns chains whose ID or title contains code.
func (s *ChainService) SearchByCode(ctx context.Context, code string) ([]domain.Chain, error) {
	ctx, span := s.start(ctx, "SearchByCode", attribute.String("code", code))
	defer span.End()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	all, err := s.Repo.ListChains(ctx, s.DB, s.pageSize())
	if err != nil {
		return nil, unavailable(span, "search chains", err)
	}
	out := make([]domain.Chain, 0)
	for i := range all {
		if domain.MatchesCode(&all[i], code) {
			out = append(out, all[i])
		}
	}
	recomputeAll(out)
	return out, nil
}

// Recent returns the newest chains first. limit <= 0 means DefaultRecentLimit.
func (s *ChainService) Recent(ctx context.Context, limit int) ([]domain.Chain, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > s.pageSize() {
		limit = s.pageSize()
	}
	ctx, span := s.start(ctx, "Recent", attribute.Int("limit", limit))
	defer span.End()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	out, err := s.Repo.RecentChains(ctx, s.DB, limit)
	if err != nil {
		return nil, unavailable(span, "recent chains", err)
	}
	recomputeAll(out)
	return out, nil
}

// Delete removes a chain. Only the owner may delete it.
func (s *ChainService) Delete(ctx context.Context, id, actorID string) error {
	ctx, span := s.start(ctx, "Delete",
		attribute.String("chain.id", id),
		attribute.String("user.id", actorID),
	)
	defer span.End()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	c, err := s.Repo.GetChain(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrChainNotFound
	}
	if err != nil {
		return unavailable(span, "get chain", err)
	}
	if c.CreatedBy != actorID {
		return ErrNotPermitted
	}

	if err := s.Repo.DeleteChain(ctx, s.DB, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrChainNotFound
		}
		return unavailable(span, "delete chain", err)
	}
	log.Info().Str("chain_id", id).Str("user_id", actorID).Msg("chain deleted")
	s.publish(ctx, domain.ChainEvent{Kind: domain.EventDeleted, Chain: *c, UserID: actorID})
	return nil
}

// UserStats aggregates the user's activity over the chains they created or
// joined.
func (s *ChainService) UserStats(ctx context.Context, userID string) (domain.UserStats, error) {
	chains, err := s.ListByUser(ctx, userID)
	if err != nil {
		return domain.UserStats{UserID: userID}, err
	}
	return domain.AggregateUserStats(chains, userID), nil
}

// ClaimPart moves part n from available to taken for userID and adds the
// user to the participants.
func (s *ChainService) ClaimPart(ctx context.Context, chainID string, n int, userID, userName string) (Outcome, error) {
	return s.transition(ctx, domain.OpClaim, chainID, n, userID, userName)
}

// CompletePart marks part n completed. Only the user holding the part may
// complete it.
func (s *ChainService) CompletePart(ctx context.Context, chainID string, n int, userID string) (Outcome, error) {
	return s.transition(ctx, domain.OpComplete, chainID, n, userID, "")
}

// ForceCompletePart lets the chain owner complete an available or taken part.
func (s *ChainService) ForceCompletePart(ctx context.Context, chainID string, n int, actorID string) (Outcome, error) {
	return s.transition(ctx, domain.OpForceComplete, chainID, n, actorID, "")
}

// ReleasePart returns a taken part to available. The holder or the owner may
// release it.
func (s *ChainService) ReleasePart(ctx context.Context, chainID string, n int, actorID string) (Outcome, error) {
	return s.transition(ctx, domain.OpRelease, chainID, n, actorID, "")
}

func (s *ChainService) transition(ctx context.Context, op domain.Op, chainID string, n int, userID, userName string) (Outcome, error) {
	ctx, span := s.start(ctx, "Part."+string(op),
		attribute.String("chain.id", chainID),
		attribute.Int("part", n),
		attribute.String("user.id", userID),
	)
	defer span.End()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	attempts := s.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var last *domain.Chain
	for i := 1; i <= attempts; i++ {
		c, err := s.Repo.GetChain(ctx, s.DB, chainID)
		if errors.Is(err, repo.ErrNotFound) {
			return s.finish(span, op, Outcome{Reason: domain.ReasonNotFound}), nil
		}
		if err != nil {
			partTransitions.WithLabelValues(string(op), "error").Inc()
			return Outcome{}, unavailable(span, "read chain", err)
		}

		expected := c.Version
		if reason := c.Apply(op, n, userID, userName); reason != domain.ReasonNone {
			return s.finish(span, op, Outcome{Reason: reason, Chain: c}), nil
		}

		err = s.Repo.UpdateChainDocument(ctx, s.DB, c, expected)
		switch {
		case err == nil:
			log.Info().Str("chain_id", chainID).Int("part", n).Str("user_id", userID).Str("op", string(op)).Int("attempt", i).Msg("part transition")
			kind := domain.EventUpdated
			if c.IsCompleted {
				kind = domain.EventCompleted
			}
			s.publish(ctx, domain.ChainEvent{Kind: kind, Chain: *c, Op: op, Part: n, UserID: userID})
			return s.finish(span, op, Outcome{Changed: true, Chain: c}), nil
		case errors.Is(err, repo.ErrVersionConflict):
			log.Debug().Str("chain_id", chainID).Int("part", n).Str("op", string(op)).Int("attempt", i).Msg("version conflict, retrying")
			last = c
		case errors.Is(err, repo.ErrNotFound):
			return s.finish(span, op, Outcome{Reason: domain.ReasonNotFound}), nil
		default:
			partTransitions.WithLabelValues(string(op), "error").Inc()
			return Outcome{}, unavailable(span, "write chain", err)
		}
	}

	log.Warn().Str("chain_id", chainID).Int("part", n).Str("op", string(op)).Int("attempts", attempts).Msg("gave up after version conflicts")
	return s.finish(span, op, Outcome{Reason: domain.ReasonConflict, Chain: last}), nil
}

func (s *ChainService) finish(span trace.Span, op domain.Op, out Outcome) Outcome {
	label := "changed"
	if !out.Changed {
		label = string(out.Reason)
	}
	partTransitions.WithLabelValues(string(op), label).Inc()
	span.SetAttributes(
		attribute.Bool("changed", out.Changed),
		attribute.String("reason", string(out.Reason)),
	)
	return out
}

func recomputeAll(cs []domain.Chain) {
	for i := range cs {
		cs[i].Recompute()
	}
}
