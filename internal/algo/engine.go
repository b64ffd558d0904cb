package algo

import (
	"fmt"
	"math"
	"time"

	"github.com/moneropulse/xvb-arbiter/internal/config"
	"github.com/moneropulse/xvb-arbiter/internal/types"
)

// FailCountThreshold is the circuit breaker: once the donation endpoint has
// accumulated this many failures the engine stops donating until a clean
// sync resets the counter.
const FailCountThreshold = 3

// Inputs is the read-only snapshot the engine decides from. All fields
// default to safe values: a zeroed Inputs decides P2POOL.
type Inputs struct {
	// CurrentHashrate is the short-window average, reacting fast to drops.
	// It sizes the donated slice.
	CurrentHashrate float64
	// StableHashrate is the long-window average used for tier
	// qualification, so a brief spike never commits the fleet to a tier it
	// cannot hold.
	StableHashrate float64
	// SharesInWindow counts qualifying shares inside the local pool's
	// current PPLNS window. Zero means donating would risk the payout
	// position.
	SharesInWindow int
	// FailCount is the accumulated donation-endpoint failure counter.
	FailCount int
	// Avg1h and Avg24h are the donation pool's reported averages for our
	// identity.
	Avg1h  float64
	Avg24h float64
}

// Decision is the engine output: the mode to run for the coming cycle and,
// for SPLIT, how much of the cycle goes to XvB. It is never persisted; only
// its effects are.
type Decision struct {
	Mode        types.Mode
	XvbDuration time.Duration
	// TargetHashrate is the qualified tier threshold, zero when none.
	TargetHashrate float64
	// Reason is a short human-readable explanation for logs.
	Reason string
}

// Decide evaluates the switching rules in strict order, first match wins.
// It is a pure function with no error path: every exceptional input
// degrades to the safe default (P2POOL, 0).
func Decide(in Inputs, cfg *config.AlgoConfig) Decision {
	if !cfg.Enabled {
		return Decision{Mode: types.ModeP2Pool, Reason: "xvb switching disabled"}
	}

	if in.SharesInWindow == 0 {
		return Decision{Mode: types.ModeP2Pool, Reason: "zero shares in PPLNS window"}
	}

	if in.FailCount >= FailCountThreshold {
		return Decision{
			Mode:   types.ModeP2Pool,
			Reason: fmt.Sprintf("donation endpoint circuit breaker open (%d failures)", in.FailCount),
		}
	}

	target := targetHashrate(in.StableHashrate*cfg.TierHeadroom, cfg.Tiers)
	if target == 0 {
		return Decision{Mode: types.ModeP2Pool, Reason: "no donation tier qualified"}
	}

	fulfilled := in.Avg24h >= target && in.Avg1h >= target*(1-cfg.Margin1h)
	if !fulfilled {
		return Decision{
			Mode:           types.ModeXvb,
			XvbDuration:    cfg.CycleLength,
			TargetHashrate: target,
			Reason:         fmt.Sprintf("tier target %.0f H/s not met, catching up", target),
		}
	}

	if in.CurrentHashrate == 0 {
		return Decision{Mode: types.ModeP2Pool, TargetHashrate: target, Reason: "no live hashrate"}
	}

	needed := neededTime(in.CurrentHashrate, target, cfg)
	if needed < cfg.MinSendTime {
		needed = cfg.MinSendTime
	}
	if needed >= cfg.CycleLength || cfg.CycleLength-needed < cfg.MinP2PoolSlice {
		// A split whose P2Pool remainder is a sliver wastes two switches;
		// promote to a full donation cycle.
		return Decision{
			Mode:           types.ModeXvb,
			XvbDuration:    cfg.CycleLength,
			TargetHashrate: target,
			Reason:         "maintenance slice covers the whole cycle",
		}
	}

	return Decision{
		Mode:           types.ModeSplit,
		XvbDuration:    needed,
		TargetHashrate: target,
		Reason:         fmt.Sprintf("maintaining tier with %s donated per cycle", needed),
	}
}

// targetHashrate returns the highest tier threshold covered by the given
// safe capacity. Tiers with a zero threshold never qualify; they are the
// free tier.
func targetHashrate(safeCapacity float64, tiers []config.TierConfig) float64 {
	for _, tier := range tiers {
		if tier.MinHashrate > 0 && safeCapacity >= tier.MinHashrate {
			return tier.MinHashrate
		}
	}
	return 0
}

// neededTime computes how long the fleet must point at XvB this cycle so
// the rolling average stays above target. The buffer oversizes the slice
// because the target is a floor, and the switch overhead compensates for
// non-instant pool switching.
func neededTime(currentHR, target float64, cfg *config.AlgoConfig) time.Duration {
	cycleMs := float64(cfg.CycleLength.Milliseconds())
	neededMs := math.Ceil(target * (1 + cfg.Buffer) / currentHR * cycleMs)
	return time.Duration(neededMs)*time.Millisecond + cfg.SwitchOverhead
}
