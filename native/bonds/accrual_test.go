package bonds

import (
	"math"
	"testing"
)

func TestAccruePenaltyInsideWindow(t *testing.T) {
	acc, err := Accrue(0, 43_200, 1_000_000_000, 500, 20*unit, 0)
	if err != nil {
		t.Fatalf("accrue: %v", err)
	}
	if acc.Elapsed != 43_200 || acc.Raw != 500_000_000 {
		t.Fatalf("unexpected raw accrual: %+v", acc)
	}
	if !acc.Penalized || acc.Capped || acc.Reward != 475_000_000 {
		t.Fatalf("unexpected reward: %+v", acc)
	}
}

func TestAccruePenaltyWindowBoundary(t *testing.T) {
	window := int64(PenaltyWindow)
	inside, err := Accrue(0, window-1, 86_400, 500, math.MaxUint64, 0)
	if err != nil {
		t.Fatalf("accrue inside: %v", err)
	}
	if !inside.Penalized {
		t.Fatalf("claim one second before the window ends must be penalized")
	}
	at, err := Accrue(0, window, 86_400, 500, math.MaxUint64, 0)
	if err != nil {
		t.Fatalf("accrue at boundary: %v", err)
	}
	if at.Penalized || at.Reward != uint64(window) {
		t.Fatalf("claim at the window boundary must be unpenalized: %+v", at)
	}
}

func TestAccrueNoRewards(t *testing.T) {
	cases := map[string]struct {
		last, now int64
		rate      uint64
	}{
		"zero elapsed":      {last: 100, now: 100, rate: 55_000_000},
		"truncated to zero": {last: 0, now: 1, rate: 1},
		"zero rate":         {last: 0, now: 1_000_000, rate: 0},
		"clock behind":      {last: 100, now: 99, rate: 55_000_000},
		"product overflow":  {last: 0, now: math.MaxInt64, rate: math.MaxUint64},
	}
	for name, tc := range cases {
		_, err := Accrue(tc.last, tc.now, tc.rate, 500, 20*unit, 0)
		if code, ok := CodeOf(err); !ok || code != CodeNoRewardsToClaim {
			t.Fatalf("%s: expected no rewards, got %v", name, err)
		}
	}
}

func TestAccrueClampsToCap(t *testing.T) {
	acc, err := Accrue(0, int64(6*SecondsPerDay), 50_000_000, 500, 2_000_000_000, 1_800_000_000)
	if err != nil {
		t.Fatalf("accrue: %v", err)
	}
	if acc.Raw != 300_000_000 || acc.Penalized {
		t.Fatalf("unexpected raw accrual: %+v", acc)
	}
	if !acc.Capped || acc.Reward != 200_000_000 {
		t.Fatalf("reward must clamp to the remaining cap: %+v", acc)
	}
}

func TestAccrueAlreadyOverCap(t *testing.T) {
	_, err := Accrue(0, int64(6*SecondsPerDay), 50_000_000, 500, 100, 200)
	if code, ok := CodeOf(err); !ok || code != CodeNumericalOverflow {
		t.Fatalf("expected overflow when claimed exceeds cap, got %v", err)
	}
}

func TestAccrueRejectsPenaltyAboveBasis(t *testing.T) {
	_, err := Accrue(0, 100, 86_400, 10_001, math.MaxUint64, 0)
	if code, ok := CodeOf(err); !ok || code != CodeNumericalOverflow {
		t.Fatalf("expected overflow, got %v", err)
	}
}

func TestAccrueFullPenaltyIsNotAnError(t *testing.T) {
	acc, err := Accrue(0, 100, 86_400, 10_000, math.MaxUint64, 0)
	if err != nil {
		t.Fatalf("accrue: %v", err)
	}
	if acc.Reward != 0 || acc.Raw != 100 {
		t.Fatalf("unexpected accrual: %+v", acc)
	}
}

func TestComputeReward(t *testing.T) {
	reward, err := ComputeReward(0, 43_200, 1_000_000_000, 500, 20*unit, 0)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if reward != 475_000_000 {
		t.Fatalf("unexpected reward: %d", reward)
	}
}

func TestSplitDeposit(t *testing.T) {
	shares := SplitDeposit(DefaultDepositSplit, 10*unit)
	if shares != [3]uint64{4 * unit, 4 * unit, 2 * unit} {
		t.Fatalf("unexpected shares: %v", shares)
	}
	shares = SplitDeposit([3]uint16{3333, 3333, 3334}, 10)
	if shares != [3]uint64{3, 3, 3} {
		t.Fatalf("shares must truncate independently: %v", shares)
	}
}
