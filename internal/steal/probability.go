// internal/steal/probability.go
package steal

const (
	// MinWinProbability and MaxWinProbability bound every steal attempt:
	// no attack is hopeless and none is a sure thing.
	MinWinProbability = 0.05
	MaxWinProbability = 0.80

	// EvenWinProbability applies at parity.
	EvenWinProbability = 0.50

	// smallHoldingCap is the standing below which a lone non-zero side
	// is still treated as not-quite-deterministic.
	smallHoldingCap = 0.10
)

// WinProbability maps the attacker's and defender's standings onto a
// win chance. Standings a and d are normalized shares (each player's
// fraction of the total points in the round) and must be >= 0.
//
// The curve is piecewise linear and symmetric around parity: equal
// standings give exactly 0.50, a dominant attacker approaches 0.80 and
// a dominated one approaches 0.05. When only one side holds anything,
// the advantage ramps with that side's absolute standing up to
// smallHoldingCap, so dust-sized holdings do not decide the outcome
// outright.
func WinProbability(a, d float64) float64 {
	switch {
	case a == d:
		// Covers a == d == 0 as well.
		return EvenWinProbability
	case d == 0 && a > 0:
		ramp := a / smallHoldingCap
		if ramp > 1 {
			ramp = 1
		}
		return clampProbability(EvenWinProbability + 0.30*ramp)
	case a == 0 && d > 0:
		ramp := d / smallHoldingCap
		if ramp > 1 {
			ramp = 1
		}
		return clampProbability(EvenWinProbability - 0.45*ramp)
	}

	share := a / (a + d)
	var p float64
	if share < 0.5 {
		p = MinWinProbability + (EvenWinProbability-MinWinProbability)*(share/0.5)
	} else {
		p = EvenWinProbability + (MaxWinProbability-EvenWinProbability)*((share-0.5)/0.5)
	}
	return clampProbability(p)
}

func clampProbability(p float64) float64 {
	if p < MinWinProbability {
		return MinWinProbability
	}
	if p > MaxWinProbability {
		return MaxWinProbability
	}
	return p
}
