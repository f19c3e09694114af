package bonds

import "github.com/holiman/uint256"

var (
	secondsPerDay = uint256.NewInt(SecondsPerDay)
	basisPoints   = uint256.NewInt(BasisPoints)
)

func checkedMul(a, b uint64) (uint64, error) {
	prod, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(a), uint256.NewInt(b))
	if overflow || !prod.IsUint64() {
		return 0, newError(CodeNumericalOverflow, "")
	}
	return prod.Uint64(), nil
}

func checkedAdd(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, newError(CodeNumericalOverflow, "")
	}
	return sum, nil
}

func checkedSub(a, b uint64) (uint64, error) {
	if b > a {
		return 0, newError(CodeNumericalOverflow, "")
	}
	return a - b, nil
}

// Accrual is the breakdown of a reward computation.
type Accrual struct {
	Elapsed   uint64 `json:"elapsed"`
	Raw       uint64 `json:"raw"`
	Penalized bool   `json:"penalized"`
	Capped    bool   `json:"capped"`
	Reward    uint64 `json:"reward"`
}

// Accrue computes what a position earns between lastClaim and now. Elapsed
// time is taken as unsigned, so a clock that runs backwards overflows the
// rate product and yields no reward. Rewards are linear in elapsed seconds,
// reduced by penaltyBps inside the penalty window and clamped so that
// alreadyClaimed never exceeds limit.
func Accrue(lastClaim, now int64, dailyRate uint64, penaltyBps uint16, limit, alreadyClaimed uint64) (Accrual, error) {
	out := Accrual{Elapsed: uint64(now - lastClaim)}

	prod, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(dailyRate), uint256.NewInt(out.Elapsed))
	if overflow || !prod.IsUint64() {
		return out, newError(CodeNoRewardsToClaim, "bond")
	}
	raw := new(uint256.Int).Div(prod, secondsPerDay).Uint64()
	if raw == 0 {
		return out, newError(CodeNoRewardsToClaim, "bond")
	}
	out.Raw = raw
	out.Reward = raw

	if out.Elapsed < PenaltyWindow {
		keep, err := checkedSub(BasisPoints, uint64(penaltyBps))
		if err != nil {
			return out, err
		}
		scaled, err := checkedMul(raw, keep)
		if err != nil {
			return out, err
		}
		out.Reward = new(uint256.Int).Div(uint256.NewInt(scaled), basisPoints).Uint64()
		out.Penalized = true
	}

	total, err := checkedAdd(alreadyClaimed, out.Reward)
	if err != nil {
		return out, err
	}
	if total > limit {
		remaining, err := checkedSub(limit, alreadyClaimed)
		if err != nil {
			return out, err
		}
		out.Reward = remaining
		out.Capped = true
	}
	return out, nil
}

// ComputeReward returns only the payable reward of Accrue.
func ComputeReward(lastClaim, now int64, dailyRate uint64, penaltyBps uint16, limit, alreadyClaimed uint64) (uint64, error) {
	acc, err := Accrue(lastClaim, now, dailyRate, penaltyBps, limit, alreadyClaimed)
	if err != nil {
		return 0, err
	}
	return acc.Reward, nil
}

// SplitDeposit divides total by basis-point weights. Each share is truncated
// independently and the remainder, if any, is not assigned to any share.
func SplitDeposit(weights [3]uint16, total uint64) [3]uint64 {
	var shares [3]uint64
	amount := uint256.NewInt(total)
	for i, w := range weights {
		share := new(uint256.Int).Mul(amount, uint256.NewInt(uint64(w)))
		share.Div(share, basisPoints)
		shares[i] = share.Uint64()
	}
	return shares
}
