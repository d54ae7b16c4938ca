// internal/webhook/processor.go
package webhook

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/launchcast/stealgame/internal/identity"
	"github.com/launchcast/stealgame/internal/models"
	"github.com/launchcast/stealgame/internal/publish"
	"github.com/launchcast/stealgame/internal/steal"
	"github.com/sirupsen/logrus"
)

// Client-input failures. All are terminal for the request; the external
// sender owns retries.
var (
	ErrSignatureInvalid = errors.New("invalid webhook signature")
	ErrNotStealCommand  = errors.New("not a steal command")
	ErrBadPayload       = errors.New("malformed webhook payload")
	ErrNoTargetsParsed  = errors.New("no targets parsed from command")
	ErrUnknownTargets   = errors.New("no targets matched known users")
	ErrRoundNotFound    = errors.New("token or active round not found")
)

// StatusFor maps a processing error onto an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrSignatureInvalid),
		errors.Is(err, ErrNotStealCommand),
		errors.Is(err, ErrBadPayload),
		errors.Is(err, ErrNoTargetsParsed),
		errors.Is(err, steal.ErrRoundNotActive),
		errors.Is(err, steal.ErrAttackerHasNoStake):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnknownTargets), errors.Is(err, ErrRoundNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// UserStore resolves target names and activates attackers.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
}

// ReplyStore back-fills the reply reference on action records after the
// outbound reply is published.
type ReplyStore interface {
	AttachReply(ctx context.Context, castRef, replyRef string) error
}

// RoundSource locates the latest ACTIVE round for a token.
type RoundSource interface {
	LatestActive(ctx context.Context, tokenID int64) (*models.Round, error)
}

// StealResolver is the economy core (internal/steal).
type StealResolver interface {
	Resolve(ctx context.Context, roundID int64, attackerID uuid.UUID, targetIDs []uuid.UUID, castRef string) (*steal.Resolution, error)
}

// Processor is the linear state machine that turns a signed inbound
// cast into a resolved steal and a published reply. No internal retries
// at any step.
type Processor struct {
	secret    string
	users     UserStore
	replies   ReplyStore
	rounds    RoundSource
	resolver  StealResolver
	identity  identity.Resolver
	publisher publish.Publisher
	logger    *logrus.Logger
}

func NewProcessor(secret string, users UserStore, replies ReplyStore, rounds RoundSource, resolver StealResolver, id identity.Resolver, pub publish.Publisher, logger *logrus.Logger) *Processor {
	return &Processor{
		secret:    secret,
		users:     users,
		replies:   replies,
		rounds:    rounds,
		resolver:  resolver,
		identity:  id,
		publisher: pub,
		logger:    logger,
	}
}

// Process verifies, parses, resolves and replies. Client errors return
// one of the taxonomy errors above before any balance is touched; the
// publish step failing does not undo the resolution.
func (p *Processor) Process(ctx context.Context, rawBody []byte, signature string) (*steal.Resolution, error) {
	// 1. Verify.
	if !VerifySignature(rawBody, signature, p.secret) {
		return nil, ErrSignatureInvalid
	}

	payload, err := ParsePayload(rawBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}

	// 2. Gate on the invisible marker.
	if !HasMarker(payload.Data.Text) {
		return nil, ErrNotStealCommand
	}

	// 3. Resolve the attacker, creating the local user on demand.
	attacker, err := p.identity.ResolveOrCreate(ctx, payload.Data.Author.FID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve attacker fid %d: %w", payload.Data.Author.FID, err)
	}
	if attacker.Status != models.UserActive {
		if err := p.users.SetStatus(ctx, attacker.ID, models.UserActive); err != nil {
			p.logger.WithError(err).WithField("user", attacker.ID).Warn("failed to mark attacker active")
		}
	}

	// 4. Parse target names.
	cmd, ok := ParseCommand(payload.Data.Text)
	if !ok {
		return nil, ErrNoTargetsParsed
	}

	// 5. Resolve names to local users, preserving command order.
	targetIDs := make([]uuid.UUID, 0, len(cmd.TargetNames))
	targetNames := make(map[uuid.UUID]string, len(cmd.TargetNames))
	for _, name := range cmd.TargetNames {
		u, err := p.users.GetByUsername(ctx, name)
		if err != nil {
			p.logger.WithError(err).WithField("name", name).Warn("target lookup failed")
			continue
		}
		if u == nil || u.ID == attacker.ID {
			continue
		}
		targetIDs = append(targetIDs, u.ID)
		targetNames[u.ID] = u.Username
	}
	if len(targetIDs) == 0 {
		return nil, ErrUnknownTargets
	}

	// 6. Resolve the token instance and its latest active round.
	urls := make([]string, 0, len(payload.Data.Embeds))
	for _, e := range payload.Data.Embeds {
		urls = append(urls, e.URL)
	}
	tokenID, ok := ParseTokenID(urls)
	if !ok {
		return nil, ErrRoundNotFound
	}
	rd, err := p.rounds.LatestActive(ctx, tokenID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up round for token %d: %w", tokenID, err)
	}
	if rd == nil {
		return nil, ErrRoundNotFound
	}

	// 7. Resolve, keyed by the inbound cast hash.
	resolution, err := p.resolver.Resolve(ctx, rd.ID, attacker.ID, targetIDs, payload.Data.Hash)
	if err != nil {
		return nil, err
	}

	// 8. Compose and publish the reply, then back-fill the reply ref.
	text := ComposeSummary(attacker.Username, targetNames, resolution)
	replyRef, err := p.publisher.PublishReply(ctx, payload.Data.Hash, text, fmt.Sprintf("https://launchcast.xyz/token/%d/steal", tokenID))
	if err != nil {
		p.logger.WithError(err).Warn("failed to publish steal reply")
		return resolution, nil
	}
	if err := p.replies.AttachReply(ctx, payload.Data.Hash, replyRef); err != nil {
		p.logger.WithError(err).Warn("failed to attach reply ref")
	}
	return resolution, nil
}

// ComposeSummary renders the per-target outcomes into the reply text.
func ComposeSummary(attackerName string, targetNames map[uuid.UUID]string, res *steal.Resolution) string {
	var b strings.Builder
	for _, out := range res.Outcomes {
		name := targetNames[out.TargetID]
		switch {
		case out.Skipped:
			continue
		case out.FailReason != "":
			fmt.Fprintf(&b, "@%s couldn't steal from @%s (%s)\n", attackerName, name, out.FailReason)
		case out.Successful:
			fmt.Fprintf(&b, "@%s stole %d points from @%s!\n", attackerName, out.Amount, name)
		default:
			fmt.Fprintf(&b, "@%s failed to steal from @%s and lost %d points\n", attackerName, name, out.Amount)
		}
	}
	fmt.Fprintf(&b, "New balance: %d points", res.AttackerBalance)
	return b.String()
}
