// internal/steal/resolver.go
package steal

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/launchcast/stealgame/internal/models"
	"github.com/sirupsen/logrus"
)

// WagerDivisor fixes the wager at 1/10 of the attacker's balance at the
// start of the command.
const WagerDivisor = 10

// RoundGetter looks a round up by id.
type RoundGetter interface {
	GetRound(ctx context.Context, id int64) (*models.Round, error)
}

// PointsStore is the ledger surface the resolver mutates. ApplyDelta
// must be a single atomic conditional update (points = points + delta);
// the resolver never does a split read-modify-write.
type PointsStore interface {
	GetEntry(ctx context.Context, roundID int64, userID uuid.UUID) (*models.PointsEntry, error)
	ApplyDelta(ctx context.Context, roundID int64, userID uuid.UUID, delta int64) (int64, error)
	TotalPoints(ctx context.Context, roundID int64) (int64, error)
}

// ActionStore persists the append-only steal records.
type ActionStore interface {
	// Exists reports whether a record with the replay key already exists.
	Exists(ctx context.Context, roundID int64, attackerID, targetID uuid.UUID, castRef string) (bool, error)
	InsertAction(ctx context.Context, rec *models.ActionRecord) error
}

// EventPublisher receives a best-effort event per resolved target, e.g.
// the redis notification queue. May be nil.
type EventPublisher interface {
	PublishStealAction(ctx context.Context, rec models.ActionRecord) error
}

// Outcome is the result for a single target within one command.
type Outcome struct {
	TargetID    uuid.UUID `json:"target_id"`
	Successful  bool      `json:"successful"`
	Skipped     bool      `json:"skipped,omitempty"` // replay no-op
	FailReason  string    `json:"fail_reason,omitempty"`
	Amount      int64     `json:"amount"`
	Probability float64   `json:"probability,omitempty"`
	ActionID    uuid.UUID `json:"action_id,omitempty"`
}

// Resolution is the overall result of one resolve call.
type Resolution struct {
	Outcomes        []Outcome `json:"outcomes"`
	AttackerBalance int64     `json:"attacker_balance"`
}

// Resolver runs the steal economy: wager sizing, win probability,
// zero-sum transfers, and the append-only action log.
type Resolver struct {
	rounds  RoundGetter
	points  PointsStore
	actions ActionStore
	events  EventPublisher
	logger  *logrus.Logger

	// rng yields a uniform value in [0,1). Injected so outcomes are
	// testable; defaults to math/rand/v2.
	rng func() float64
}

func NewResolver(rounds RoundGetter, points PointsStore, actions ActionStore, events EventPublisher, logger *logrus.Logger) *Resolver {
	return &Resolver{
		rounds:  rounds,
		points:  points,
		actions: actions,
		events:  events,
		logger:  logger,
		rng:     rand.Float64,
	}
}

// SetRNG overrides the uniform source. Test hook.
func (r *Resolver) SetRNG(rng func() float64) { r.rng = rng }

// Resolve processes targets strictly in order. Each step reads the
// attacker's running balance as mutated by the steps before it, so a
// later target's odds depend on earlier outcomes within the same call.
// This is a design property of the game; do not batch the loop.
//
// Per-target persistence failures are logged and reported in that
// target's outcome without aborting the remaining targets; there is no
// cross-target transaction.
func (r *Resolver) Resolve(ctx context.Context, roundID int64, attackerID uuid.UUID, targetIDs []uuid.UUID, castRef string) (*Resolution, error) {
	rd, err := r.rounds.GetRound(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to load round %d: %w", roundID, err)
	}
	if rd == nil || rd.Status != models.RoundActive {
		return nil, ErrRoundNotActive
	}

	attacker, err := r.points.GetEntry(ctx, roundID, attackerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attacker entry: %w", err)
	}
	if attacker == nil || attacker.Points <= 0 {
		return nil, ErrAttackerHasNoStake
	}

	total, err := r.points.TotalPoints(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to total round points: %w", err)
	}

	// The wager is fixed from the balance at entry; only the odds track
	// the running balance.
	wager := attacker.Points / WagerDivisor
	running := attacker.Points

	res := &Resolution{Outcomes: make([]Outcome, 0, len(targetIDs))}
	for _, targetID := range targetIDs {
		res.Outcomes = append(res.Outcomes, r.resolveTarget(ctx, rd, attackerID, targetID, castRef, wager, total, &running))
	}
	res.AttackerBalance = running
	return res, nil
}

func (r *Resolver) resolveTarget(ctx context.Context, rd *models.Round, attackerID, targetID uuid.UUID, castRef string, wager, total int64, running *int64) Outcome {
	out := Outcome{TargetID: targetID}

	replayed, err := r.actions.Exists(ctx, rd.ID, attackerID, targetID, castRef)
	if err != nil {
		r.logger.WithError(err).WithField("target", targetID).Warn("replay check failed")
		out.FailReason = "replay check failed"
		return out
	}
	if replayed {
		out.Skipped = true
		return out
	}

	// A run of losses earlier in the same command can exhaust the
	// balance; the wager must never drive it below zero.
	if *running < wager {
		out.FailReason = "attacker has no points left to wager"
		return out
	}

	target, err := r.points.GetEntry(ctx, rd.ID, targetID)
	if err != nil {
		r.logger.WithError(err).WithField("target", targetID).Warn("failed to load target entry")
		out.FailReason = "target lookup failed"
		return out
	}
	if target == nil || target.Points <= 0 {
		out.FailReason = "target has no points to steal"
		return out
	}

	var a, d float64
	if total > 0 {
		a = float64(*running) / float64(total)
		d = float64(target.Points) / float64(total)
	}
	probability := WinProbability(a, d)
	out.Probability = probability
	successful := r.rng() < probability

	stealAmount := wager
	if target.Points < stealAmount {
		stealAmount = target.Points
	}

	// The wager always moves; only the direction depends on the draw.
	var attackerDelta, targetDelta, amount int64
	if successful {
		attackerDelta, targetDelta, amount = stealAmount, -stealAmount, stealAmount
	} else {
		attackerDelta, targetDelta, amount = -wager, wager, wager
	}

	newBalance, err := r.points.ApplyDelta(ctx, rd.ID, attackerID, attackerDelta)
	if err != nil {
		r.logger.WithError(err).WithField("target", targetID).Error("failed to apply attacker delta")
		out.FailReason = "balance update failed"
		return out
	}
	if _, err := r.points.ApplyDelta(ctx, rd.ID, targetID, targetDelta); err != nil {
		r.logger.WithError(err).WithField("target", targetID).Error("failed to apply target delta")
		// Compensate the attacker so the pair stays zero-sum.
		if _, compErr := r.points.ApplyDelta(ctx, rd.ID, attackerID, -attackerDelta); compErr != nil {
			r.logger.WithError(compErr).Error("failed to compensate attacker delta")
		}
		out.FailReason = "balance update failed"
		return out
	}
	*running = newBalance

	rec := models.ActionRecord{
		ID:         uuid.New(),
		RoundID:    rd.ID,
		AttackerID: attackerID,
		TargetID:   targetID,
		Amount:     amount,
		Successful: successful,
		CastRef:    castRef,
	}
	if err := r.actions.InsertAction(ctx, &rec); err != nil {
		r.logger.WithError(err).WithField("target", targetID).Error("failed to record steal action")
		out.FailReason = "action record failed"
		return out
	}

	if r.events != nil {
		if err := r.events.PublishStealAction(ctx, rec); err != nil {
			r.logger.WithError(err).Warn("failed to publish steal event")
		}
	}

	out.Successful = successful
	out.Amount = amount
	out.ActionID = rec.ID
	return out
}
