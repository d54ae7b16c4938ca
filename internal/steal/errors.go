// internal/steal/errors.go
package steal

import "errors"

var (
	// ErrRoundNotActive is returned when the round a steal targets is
	// missing or no longer ACTIVE.
	ErrRoundNotActive = errors.New("round is not active")

	// ErrAttackerHasNoStake is returned when the attacker has no points
	// entry in the round or a non-positive balance. No balances are
	// mutated in that case.
	ErrAttackerHasNoStake = errors.New("attacker has no points to steal with")
)
